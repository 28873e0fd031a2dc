// Package signals installs the daemon's ignore dispositions.
//
// Dispositions are set once at startup and never restored; this package has
// no function that brings back default handling.
package signals

import (
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

var (
	// ErrUninterceptable marks SIGKILL and SIGSTOP. The kernel never lets a
	// process ignore them, so the request is accepted and has no effect.
	ErrUninterceptable = errors.New("signal cannot be caught or ignored")
	// ErrInvalidSignal marks a signal number outside the platform's range.
	ErrInvalidSignal = errors.New("invalid signal number")
	// ErrNotApplied marks a signal that was not reported as ignored afterwards.
	ErrNotApplied = errors.New("ignore disposition not applied")
)

// Hardened is the set of interceptable signals the daemon ignores:
// interactive interrupt, terminal hangup, quit, broken pipe, child state
// change, background terminal output and input, and termination requests.
var Hardened = []syscall.Signal{
	unix.SIGINT,
	unix.SIGHUP,
	unix.SIGQUIT,
	unix.SIGPIPE,
	unix.SIGCHLD,
	unix.SIGTTOU,
	unix.SIGTTIN,
	unix.SIGTERM,
}

// Requested is Hardened plus SIGKILL, which the daemon has always asked to
// ignore. The SIGKILL entry is a known no-op and is reported as such.
var Requested = append(append([]syscall.Signal{}, Hardened...), unix.SIGKILL)

// Result is the outcome of installing one ignore disposition.
type Result struct {
	Signal syscall.Signal
	Err    error
}

// Name returns the signal name, e.g. "SIGHUP".
func (r Result) Name() string {
	return Name(r.Signal)
}

// Applied reports whether the signal is now ignored.
func (r Result) Applied() bool {
	return r.Err == nil
}

// Name returns the conventional name of sig, falling back to its number.
func Name(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return fmt.Sprintf("signal %d", int(sig))
}

// Uninterceptable reports whether sig can never be caught or ignored.
func Uninterceptable(sig syscall.Signal) bool {
	return sig == unix.SIGKILL || sig == unix.SIGSTOP
}

// Ignore installs the ignore disposition for a single signal and verifies it.
func Ignore(sig syscall.Signal) error {
	if sig <= 0 || unix.SignalName(sig) == "" {
		return fmt.Errorf("%w: %d", ErrInvalidSignal, int(sig))
	}
	if Uninterceptable(sig) {
		return fmt.Errorf("%s: %w", Name(sig), ErrUninterceptable)
	}

	signal.Ignore(sig)
	if !signal.Ignored(sig) {
		return fmt.Errorf("%s: %w", Name(sig), ErrNotApplied)
	}
	return nil
}

// Harden ignores every signal in sigs. Failures are returned per signal and
// never stop the remaining installs.
func Harden(sigs []syscall.Signal) []Result {
	results := make([]Result, 0, len(sigs))
	for _, sig := range sigs {
		results = append(results, Result{Signal: sig, Err: Ignore(sig)})
	}
	return results
}

// LogResults writes one warning per failed install and a single summary line.
// Uninterceptable requests are logged as known no-ops.
func LogResults(logger *slog.Logger, results []Result) {
	var ignored []string
	for _, r := range results {
		switch {
		case r.Applied():
			ignored = append(ignored, r.Name())
		case errors.Is(r.Err, ErrUninterceptable):
			logger.Warn("Ignore request has no effect", "signal", r.Name(), "reason", r.Err)
		default:
			logger.Warn("Failed to ignore signal", "signal", r.Name(), "error", r.Err)
		}
	}

	logger.Info("Signals are set to ignore",
		"ignored", strings.Join(ignored, ","),
		"count", len(ignored),
		"requested", len(results))
}

// Summary renders results as "SIGINT=ignored,SIGKILL=no-op,..." for the journal.
func Summary(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		status := "ignored"
		switch {
		case errors.Is(r.Err, ErrUninterceptable):
			status = "no-op"
		case r.Err != nil:
			status = "failed"
		}
		parts = append(parts, r.Name()+"="+status)
	}
	return strings.Join(parts, ",")
}
