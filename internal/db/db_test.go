package db

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_OpenAndClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "journal.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}

	if err := db.Flush(); err != nil {
		t.Errorf("Flush failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Failed to close database: %v", err)
	}
}

func TestDB_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.LogDaemonEvent("run-1", "start", 42, "first"); err != nil {
		t.Fatalf("LogDaemonEvent failed: %v", err)
	}
	db.Close()

	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	start, err := db.GetLastStart()
	if err != nil {
		t.Fatalf("GetLastStart failed: %v", err)
	}
	if start == nil || start.RunID != "run-1" || start.PID != 42 {
		t.Errorf("GetLastStart() = %+v, want run-1 with pid 42", start)
	}
}

func TestDB_LogDaemonEvent(t *testing.T) {
	db := openTestDB(t)

	events := []struct {
		runID     string
		eventType string
		pid       int
		details   string
	}{
		{"run-1", "start", 100, "version: devel"},
		{"run-1", "signals", 100, "SIGHUP=ignored"},
		{"run-2", "start", 200, "version: devel"},
	}
	for _, e := range events {
		if err := db.LogDaemonEvent(e.runID, e.eventType, e.pid, e.details); err != nil {
			t.Fatalf("LogDaemonEvent failed: %v", err)
		}
	}

	got, err := db.GetRecentDaemonEvents(10)
	if err != nil {
		t.Fatalf("GetRecentDaemonEvents failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	// Newest first
	if got[0].RunID != "run-2" || got[0].PID != 200 {
		t.Errorf("newest event = %+v, want run-2/200", got[0])
	}
	if got[1].EventType != "signals" || got[1].Details != "SIGHUP=ignored" {
		t.Errorf("second event = %+v, want signals event", got[1])
	}
	if got[2].Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}

	limited, err := db.GetRecentDaemonEvents(1)
	if err != nil {
		t.Fatalf("GetRecentDaemonEvents failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d events", len(limited))
	}
}

func TestDB_GetLastStart_Empty(t *testing.T) {
	db := openTestDB(t)

	start, err := db.GetLastStart()
	if err != nil {
		t.Fatalf("GetLastStart failed: %v", err)
	}
	if start != nil {
		t.Errorf("GetLastStart() = %+v, want nil", start)
	}
}

func TestDB_LogHeartbeat(t *testing.T) {
	db := openTestDB(t)

	for _, c := range []int32{5, 10, 15} {
		if err := db.LogHeartbeat("run-1", c, 0); err != nil {
			t.Fatalf("LogHeartbeat failed: %v", err)
		}
	}

	last, err := db.GetLastHeartbeat("run-1")
	if err != nil {
		t.Fatalf("GetLastHeartbeat failed: %v", err)
	}
	if last == nil || last.Counter != 15 {
		t.Errorf("GetLastHeartbeat() = %+v, want counter 15", last)
	}

	none, err := db.GetLastHeartbeat("run-unknown")
	if err != nil {
		t.Fatalf("GetLastHeartbeat failed: %v", err)
	}
	if none != nil {
		t.Errorf("GetLastHeartbeat(unknown) = %+v, want nil", none)
	}
}

func TestDB_LogHeartbeat_Prunes(t *testing.T) {
	db := openTestDB(t)

	for i := int32(1); i <= 20; i++ {
		if err := db.LogHeartbeat("run-1", i*5, 5); err != nil {
			t.Fatalf("LogHeartbeat failed: %v", err)
		}
	}

	n, err := db.CountHeartbeats("run-1")
	if err != nil {
		t.Fatalf("CountHeartbeats failed: %v", err)
	}
	if n != 5 {
		t.Errorf("CountHeartbeats() = %d, want 5", n)
	}

	last, _ := db.GetLastHeartbeat("run-1")
	if last == nil || last.Counter != 100 {
		t.Errorf("newest heartbeat = %+v, want counter 100", last)
	}
}
