package daemon

import (
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"
)

// ParentMonitor notices when the daemon is reparented, for example after the
// launching shell died from a hangup. It only reports; the daemon keeps
// ticking regardless of what happens to its parent.
type ParentMonitor struct {
	lastPPID int
	getppid  func() int
	daemon   *Daemon
	logger   *slog.Logger
}

// NewParentMonitor creates a monitor that starts from the current parent PID.
func NewParentMonitor(daemon *Daemon) *ParentMonitor {
	return &ParentMonitor{
		lastPPID: unix.Getppid(),
		getppid:  unix.Getppid,
		daemon:   daemon,
		logger:   daemon.logger,
	}
}

// Check compares the parent PID with the last one seen. It is called from
// the heartbeat loop, so it runs at most once per tick and never blocks.
func (pm *ParentMonitor) Check(int32) {
	ppid := pm.getppid()
	if ppid == pm.lastPPID {
		return
	}

	pm.logger.Info("Parent process changed",
		"old_ppid", pm.lastPPID,
		"new_ppid", ppid)

	if pm.daemon.journal != nil {
		pm.daemon.journal.Event("reparent", pm.daemon.identity.PID,
			fmt.Sprintf("parent %d -> %d", pm.lastPPID, ppid))
	}
	pm.lastPPID = ppid
}
