// Package heartbeat implements the daemon's liveness cycle: a one-state
// machine whose only transition advances a wrapping counter.
package heartbeat

import (
	"fmt"
	"math"
)

// Modulus is the wrap point of the counter. Values stay in [0, math.MaxInt32].
const Modulus = uint64(math.MaxInt32) + 1

// State is the machine's state. There is exactly one.
type State string

// StateTicking is the only state; Tick loops back to it.
const StateTicking State = "ticking"

// Machine holds the tick counter. The zero value is not usable; use NewMachine.
type Machine struct {
	state   State
	step    uint32
	counter uint32
	ticks   uint64
}

// NewMachine returns a machine in StateTicking with counter 0.
func NewMachine(step int32) (*Machine, error) {
	if step <= 0 {
		return nil, fmt.Errorf("heartbeat step must be positive, got %d", step)
	}
	return &Machine{
		state: StateTicking,
		step:  uint32(step),
	}, nil
}

// Tick is the single transition: counter = (counter + step) mod Modulus.
// The state is StateTicking before and after.
func (m *Machine) Tick() int32 {
	m.counter = uint32((uint64(m.counter) + uint64(m.step)) % Modulus)
	m.ticks++
	return int32(m.counter)
}

// State always returns StateTicking.
func (m *Machine) State() State {
	return m.state
}

// Counter returns the current counter value.
func (m *Machine) Counter() int32 {
	return int32(m.counter)
}

// Ticks returns how many transitions have been taken.
func (m *Machine) Ticks() uint64 {
	return m.ticks
}

// Expected returns the counter after n ticks of the given step from zero,
// (step*n) mod Modulus, without overflowing.
func Expected(step int32, n uint64) int32 {
	// Both factors are below 2^31, so the product fits in 64 bits.
	return int32((uint64(step) % Modulus) * (n % Modulus) % Modulus)
}
