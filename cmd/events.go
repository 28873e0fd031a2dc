package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.olrik.dev/sentinel/internal/db"
)

func NewEventsCommand() *cobra.Command {
	var journalPath string
	var limit int

	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "List recent daemon events from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			database, err := openJournal(journalPath)
			if err != nil {
				return err
			}
			defer database.Close()

			events, err := database.GetRecentDaemonEvents(limit)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events recorded.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderEvents(events, time.Now()))
			return nil
		},
	}
	eventsCmd.Flags().StringVarP(&journalPath, "journal", "j", "", "journal database (defaults to journal.path from the config)")
	eventsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of events to show")

	return eventsCmd
}

func renderEvents(events []db.DaemonEvent, now time.Time) string {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			humanize.RelTime(e.Timestamp, now, "ago", "from now"),
			shortRunID(e.RunID),
			e.EventType,
			strconv.Itoa(e.PID),
			e.Details,
		})
	}
	return renderTable(
		[]string{"When", "Run", "Event", "PID", "Details"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
