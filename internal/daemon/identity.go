package daemon

import (
	"log/slog"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// Identity is the process identity reported at startup.
type Identity struct {
	PID        int
	PPID       int
	UID        int
	EUID       int
	User       string // Best effort, empty if unknown
	ParentName string // Best effort, empty if unknown
}

// CurrentIdentity reads the process identity from the kernel. The numeric
// ids always succeed; the names are looked up through gopsutil and are
// left empty when the lookup fails.
func CurrentIdentity() Identity {
	id := Identity{
		PID:  unix.Getpid(),
		PPID: unix.Getppid(),
		UID:  unix.Getuid(),
		EUID: unix.Geteuid(),
	}

	if self, err := process.NewProcess(int32(id.PID)); err == nil {
		if name, err := self.Username(); err == nil {
			id.User = name
		} else {
			slog.Debug("Could not resolve username", "uid", id.EUID, "error", err)
		}
	}

	if parent, err := process.NewProcess(int32(id.PPID)); err == nil {
		if name, err := parent.Name(); err == nil {
			id.ParentName = name
		} else {
			slog.Debug("Could not resolve parent name", "ppid", id.PPID, "error", err)
		}
	} else {
		slog.Debug("Parent process not inspectable", "ppid", id.PPID, "error", err)
	}

	return id
}

// Log writes one diagnostic line per identity value.
func (id Identity) Log(logger *slog.Logger) {
	logger.Info("Process ID", "pid", id.PID)
	logger.Info("Parent process ID", "ppid", id.PPID, "parent", id.ParentName)
	logger.Info("User ID", "uid", id.UID, "euid", id.EUID, "user", id.User)
}
