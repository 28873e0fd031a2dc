package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"
	"go.olrik.dev/sentinel/internal/core"
	"go.olrik.dev/sentinel/internal/db"
)

// runStatus is what the status command knows about the latest daemon run.
type runStatus struct {
	Start *db.DaemonEvent
	Last  *db.Heartbeat
	Alive bool
}

func NewStatusCommand() *cobra.Command {
	var journalPath string

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the latest daemon run recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openJournal(journalPath)
			if err != nil {
				return err
			}
			defer database.Close()

			start, err := database.GetLastStart()
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			if start == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No daemon run recorded.")
				return nil
			}

			last, err := database.GetLastHeartbeat(start.RunID)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}

			alive, err := process.PidExists(int32(start.PID))
			if err != nil {
				return fmt.Errorf("check pid %d: %w", start.PID, err)
			}

			renderStatus(cmd.OutOrStdout(), runStatus{Start: start, Last: last, Alive: alive}, time.Now())
			return nil
		},
	}
	statusCmd.Flags().StringVarP(&journalPath, "journal", "j", "", "journal database (defaults to journal.path from the config)")

	return statusCmd
}

func renderStatus(w io.Writer, s runStatus, now time.Time) {
	state := "not running"
	if s.Alive {
		state = "running"
	}

	fmt.Fprintf(w, "Run:       %s\n", s.Start.RunID)
	fmt.Fprintf(w, "PID:       %d (%s)\n", s.Start.PID, state)
	fmt.Fprintf(w, "Started:   %s\n", humanize.RelTime(s.Start.Timestamp, now, "ago", "from now"))
	if s.Last == nil {
		fmt.Fprintln(w, "Last tick: none")
		return
	}
	fmt.Fprintf(w, "Last tick: counter %d, %s\n", s.Last.Counter, humanize.RelTime(s.Last.Timestamp, now, "ago", "from now"))
}

// openJournal opens an existing journal for reading. It never creates one.
func openJournal(path string) (*db.DB, error) {
	if path == "" {
		path = core.Config.Journal.Path
	}
	if path == "" {
		return nil, fmt.Errorf("no journal configured (set journal.path in the config or pass --journal)")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("journal not found: %w", err)
	}
	return db.Open(path)
}
