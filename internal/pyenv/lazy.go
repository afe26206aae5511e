// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

const (
	// StateUnset means the value has never been requested.
	StateUnset CellState = iota
	// StatePending means a computation is in flight.
	StatePending
	// StateValue means the value was computed successfully.
	StateValue
	// StateFailed means the computation failed; the failure is terminal.
	// A computation cut short by its caller's context does not count as a
	// failure and leaves the cell unset.
	StateFailed
)

type (
	// CellState is the lifecycle of a lazily computed field.
	CellState int

	// cell computes a value at most once. Concurrent callers block on the
	// mutex while the first computation runs and then observe its outcome.
	// A failure is cached like a value and never retried. state is written
	// under mu and may be read without it.
	cell[T any] struct {
		mu    sync.Mutex
		state atomic.Int32
		value T
		err   error
	}
)

// String returns the state name.
func (s CellState) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StatePending:
		return "pending"
	case StateValue:
		return "value"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// get returns the cached outcome, running compute first if the cell is unset.
func (c *cell[T]) get(ctx context.Context, compute func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch CellState(c.state.Load()) {
	case StateValue, StateFailed:
		return c.value, c.err
	}

	c.state.Store(int32(StatePending))
	v, err := compute(ctx)
	if err != nil {
		var zero T
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.state.Store(int32(StateUnset))
			return zero, err
		}
		c.err = err
		c.state.Store(int32(StateFailed))
		return zero, err
	}
	c.value = v
	c.state.Store(int32(StateValue))
	return v, nil
}

// peek returns the state without blocking behind an in-flight computation.
func (c *cell[T]) peek() CellState {
	return CellState(c.state.Load())
}
