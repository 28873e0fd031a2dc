package daemon

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.olrik.dev/sentinel/internal/core"
	"go.olrik.dev/sentinel/internal/db"
)

func TestParentMonitorCreation(t *testing.T) {
	d := New(core.GetDefaultConfig())
	monitor := NewParentMonitor(d)

	if monitor.lastPPID != os.Getppid() {
		t.Errorf("lastPPID = %d, want %d", monitor.lastPPID, os.Getppid())
	}
	if monitor.daemon != d {
		t.Error("Expected monitor.daemon to reference the daemon instance")
	}
}

func TestParentMonitorCheck(t *testing.T) {
	var buf bytes.Buffer
	d := New(core.GetDefaultConfig())
	d.logger = slog.New(slog.NewTextHandler(&buf, nil))
	d.identity = Identity{PID: 77}

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path, 0)
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	d.journal = j

	ppid := 500
	monitor := NewParentMonitor(d)
	monitor.lastPPID = 500
	monitor.getppid = func() int { return ppid }

	monitor.Check(5)
	if buf.Len() != 0 {
		t.Errorf("unchanged parent should not log, got %q", buf.String())
	}

	ppid = 1
	monitor.Check(10)
	if !strings.Contains(buf.String(), `msg="Parent process changed" old_ppid=500 new_ppid=1`) {
		t.Errorf("missing reparent line: %q", buf.String())
	}
	if monitor.lastPPID != 1 {
		t.Errorf("lastPPID = %d, want 1", monitor.lastPPID)
	}

	buf.Reset()
	monitor.Check(15)
	if buf.Len() != 0 {
		t.Errorf("reparent should be reported once, got %q", buf.String())
	}

	j.Close()
	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("db.Open failed: %v", err)
	}
	defer database.Close()

	events, err := database.GetRecentDaemonEvents(10)
	if err != nil {
		t.Fatalf("GetRecentDaemonEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].EventType != "reparent" || events[0].Details != "parent 500 -> 1" {
		t.Errorf("events = %+v, want a single reparent event", events)
	}
}
