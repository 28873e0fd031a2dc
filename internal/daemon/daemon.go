package daemon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.olrik.dev/sentinel/internal/core"
	"go.olrik.dev/sentinel/internal/heartbeat"
	"go.olrik.dev/sentinel/internal/signals"
)

// Daemon ignores interactive and supervisory signals, then ticks forever.
type Daemon struct {
	cfg      *core.Configuration
	out      io.Writer
	logger   *slog.Logger
	journal  *Journal
	identity Identity
	results  []signals.Result
}

// New creates a daemon writing diagnostics to stderr.
func New(cfg *core.Configuration) *Daemon {
	if cfg == nil {
		cfg = core.GetDefaultConfig()
	}
	return &Daemon{
		cfg:    cfg,
		out:    os.Stderr,
		logger: slog.Default(),
	}
}

// Run hardens signals, reports the process identity and enters the
// heartbeat loop. It only returns if ctx is done, which never happens for
// the context the run command passes; the process normally ends by SIGKILL.
func (d *Daemon) Run(ctx context.Context) error {
	d.setupLogging(d.out)
	d.logger.Info("Start successful", "version", core.FormatVersion(core.Version))

	d.results = signals.Harden(signals.Requested)
	signals.LogResults(d.logger, d.results)

	d.identity = CurrentIdentity()
	d.identity.Log(d.logger)

	d.openJournal()

	observers := []heartbeat.Observer{NewParentMonitor(d).Check}
	if d.journal != nil {
		observers = append(observers, d.journal.Heartbeat)
	}
	loop, err := heartbeat.NewLoop(d.cfg.Heartbeat.Interval, d.cfg.Heartbeat.Step, observers...)
	if err != nil {
		d.closeJournal()
		return fmt.Errorf("create heartbeat loop: %w", err)
	}

	d.logger.Info("Starting heartbeat",
		"interval", d.cfg.Heartbeat.Interval,
		"step", d.cfg.Heartbeat.Step)
	loop.Run(ctx)

	d.logger.Info("Exit", "ticks", loop.Machine().Ticks(), "counter", loop.Machine().Counter())
	if d.journal != nil {
		d.journal.Event("exit", d.identity.PID, fmt.Sprintf("counter: %d", loop.Machine().Counter()))
	}
	d.closeJournal()
	return nil
}

// openJournal opens the optional journal. Any failure leaves the daemon
// running without one.
func (d *Daemon) openJournal() {
	if !d.cfg.Journal.Enabled() {
		return
	}

	journal, err := OpenJournal(d.cfg.Journal.Path, d.cfg.Journal.KeepHeartbeats)
	if err != nil {
		d.logger.Warn("Journal disabled", "path", d.cfg.Journal.Path, "error", err)
		return
	}
	d.journal = journal
	d.logger.Info("Journal opened", "path", d.cfg.Journal.Path, "run_id", journal.RunID)

	id := d.identity
	journal.Event("start", id.PID, fmt.Sprintf(
		"version: %s, ppid: %d, uid: %d, euid: %d",
		core.FormatVersion(core.Version), id.PPID, id.UID, id.EUID))
	journal.Event("signals", id.PID, signals.Summary(d.results))
}

func (d *Daemon) closeJournal() {
	if d.journal == nil {
		return
	}
	if err := d.journal.Close(); err != nil {
		d.logger.Warn("Failed to close journal", "error", err)
	}
	d.journal = nil
}
