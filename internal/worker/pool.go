// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/invowk/envscout/internal/pyenv"

	"golang.org/x/sync/singleflight"
)

type (
	// Pool keeps at most one worker per interpreter executable.
	// It implements pyenv.WorkerFactory.
	Pool struct {
		start func(ctx context.Context, executable string) (processWorker, error)

		group   singleflight.Group
		mu      sync.Mutex
		workers map[string]processWorker
		closed  bool
	}

	processWorker interface {
		pyenv.Worker
		Close() error
	}

	// pooledWorker is the handle Pool hands out for one executable. It
	// outlives the process behind it: a worker that dies or is killed on
	// cancellation is evicted, and the next Submit starts a fresh one.
	pooledWorker struct {
		pool       *Pool
		executable string
	}
)

// ErrPoolClosed is returned by Worker after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// NewPool returns an empty pool that starts workers with Start.
func NewPool() *Pool {
	return &Pool{
		start: func(ctx context.Context, executable string) (processWorker, error) {
			return Start(ctx, executable)
		},
		workers: make(map[string]processWorker),
	}
}

// Worker returns the worker for executable, starting it on first request.
// Concurrent first requests for the same executable share one start.
func (p *Pool) Worker(ctx context.Context, executable string) (pyenv.Worker, error) {
	if _, err := p.acquire(ctx, executable); err != nil {
		return nil, err
	}
	return pooledWorker{pool: p, executable: executable}, nil
}

func (p *Pool) acquire(ctx context.Context, executable string) (processWorker, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if w, ok := p.workers[executable]; ok {
		p.mu.Unlock()
		return w, nil
	}
	p.mu.Unlock()

	v, err, _ := p.group.Do(executable, func() (any, error) {
		p.mu.Lock()
		existing, ok := p.workers[executable]
		p.mu.Unlock()
		if ok {
			return existing, nil
		}

		w, err := p.start(ctx, executable)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return nil, errors.Join(ErrPoolClosed, w.Close())
		}
		p.workers[executable] = w
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(processWorker), nil
}

// evict drops w if it is still the worker for executable and stops it.
func (p *Pool) evict(executable string, w processWorker) {
	p.mu.Lock()
	if cur, ok := p.workers[executable]; ok && cur == w {
		delete(p.workers, executable)
	}
	p.mu.Unlock()

	if err := w.Close(); err != nil {
		slog.Debug("closing evicted worker", "executable", executable, "error", err)
	}
}

// Submit runs work on the live worker for the handle's executable.
func (h pooledWorker) Submit(ctx context.Context, work pyenv.Work) (pyenv.Result, error) {
	w, err := h.pool.acquire(ctx, h.executable)
	if err != nil {
		return pyenv.Result{}, err
	}
	res, err := w.Submit(ctx, work)
	if err != nil && (errors.Is(err, ErrClosed) || ctx.Err() != nil) {
		h.pool.evict(h.executable, w)
	}
	return res, err
}

// Len returns the number of running workers.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// Close stops every worker. Later Worker calls fail with ErrPoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	var errs []error
	for exe, w := range p.workers {
		errs = append(errs, w.Close())
		delete(p.workers, exe)
	}
	return errors.Join(errs...)
}
