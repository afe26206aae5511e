// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"context"
	"errors"
)

const (
	// LocalityInProcess runs work inline in the host process.
	LocalityInProcess Locality = "in-process"
	// LocalitySubprocess delegates work to a worker process bound to the environment.
	LocalitySubprocess Locality = "subprocess"
)

// ErrNoEvaluator is returned by an in-process channel that has no evaluator attached.
var ErrNoEvaluator = errors.New("no in-process evaluator configured")

type (
	// Locality tags where work submitted to a Channel runs.
	Locality string

	// Work is one unit of analysis work. Its interpretation belongs to the evaluator.
	Work struct {
		// Code is the source the evaluator runs.
		Code string `json:"code"`
	}

	// Result is what an evaluator returns for a unit of Work.
	Result struct {
		// Value is the evaluator's rendering of the outcome.
		Value string `json:"value"`
	}

	// Channel is the single contract the evaluator uses to run work for an
	// environment, regardless of where that work executes.
	Channel interface {
		Submit(ctx context.Context, w Work) (Result, error)
		Locality() Locality
	}

	// Evaluator runs work inside the host process.
	Evaluator interface {
		Evaluate(ctx context.Context, w Work) (Result, error)
	}

	// EvaluatorFunc adapts a function to Evaluator.
	EvaluatorFunc func(ctx context.Context, w Work) (Result, error)

	// Worker is a long-lived process executing work for one interpreter.
	// Its lifecycle belongs to whoever created it.
	Worker interface {
		Submit(ctx context.Context, w Work) (Result, error)
	}

	// WorkerFactory hands out the worker bound to an interpreter executable.
	WorkerFactory interface {
		Worker(ctx context.Context, executable string) (Worker, error)
	}

	// InProcessChannel runs work inline through an Evaluator.
	InProcessChannel struct {
		eval Evaluator
	}

	// SubprocessChannel forwards work to a Worker bound to one executable.
	SubprocessChannel struct {
		executable string
		worker     Worker
	}
)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(ctx context.Context, w Work) (Result, error) { return f(ctx, w) }

// Submit runs w inline.
func (c *InProcessChannel) Submit(ctx context.Context, w Work) (Result, error) {
	if c.eval == nil {
		return Result{}, ErrNoEvaluator
	}
	return c.eval.Evaluate(ctx, w)
}

// Locality returns LocalityInProcess.
func (c *InProcessChannel) Locality() Locality { return LocalityInProcess }

// Submit forwards w to the bound worker.
func (c *SubprocessChannel) Submit(ctx context.Context, w Work) (Result, error) {
	return c.worker.Submit(ctx, w)
}

// Locality returns LocalitySubprocess.
func (c *SubprocessChannel) Locality() Locality { return LocalitySubprocess }

// Executable returns the interpreter the worker runs.
func (c *SubprocessChannel) Executable() string { return c.executable }
