package heartbeat

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Observer receives the counter after every transition.
type Observer func(counter int32)

// Loop drives a Machine from a periodic ticker.
type Loop struct {
	machine  *Machine
	interval time.Duration
	observe  []Observer
	logger   *slog.Logger
}

// NewLoop creates a loop ticking every interval and advancing by step.
func NewLoop(interval time.Duration, step int32, observers ...Observer) (*Loop, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("heartbeat interval must be positive, got %s", interval)
	}
	m, err := NewMachine(step)
	if err != nil {
		return nil, err
	}
	return &Loop{
		machine:  m,
		interval: interval,
		observe:  observers,
		logger:   slog.Default(),
	}, nil
}

// Machine exposes the underlying state machine.
func (l *Loop) Machine() *Machine {
	return l.machine
}

// Run waits one interval, ticks, reports the counter, and repeats. It has no
// exit of its own: it returns only when ctx is done, and the daemon runs it
// with a context that never is.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("Heartbeat loop stopping (context cancelled)",
				"ticks", l.machine.Ticks())
			return

		case <-ticker.C:
			counter := l.machine.Tick()
			l.logger.Info("Tick", "counter", counter)
			for _, fn := range l.observe {
				fn(counter)
			}
		}
	}
}
