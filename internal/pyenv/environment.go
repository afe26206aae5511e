// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
)

const (
	// KindDiscovered is an installation found on disk or on PATH. Every fact
	// about it is learned by running its interpreter.
	KindDiscovered Kind = iota
	// KindInProcess describes the host process itself. It never spawns a
	// process to learn its own version or search path.
	KindInProcess
)

type (
	// Kind distinguishes discovered environments from the in-process one.
	Kind int

	// Host describes the runtime the host process is bound to.
	Host struct {
		// Prefix is the installation prefix (sys.prefix).
		Prefix string
		// Executable is the interpreter binary (sys.executable).
		Executable string
		// Version is the host's own version, known without probing.
		Version VersionInfo
		// SearchPath returns the host's live search path. May be nil.
		SearchPath func() []string
		// Evaluator runs work inline for the in-process environment. May be nil.
		Evaluator Evaluator
	}

	// Environment is one Python runtime installation.
	//
	// BasePath and Executable never change. Version, SearchPath, Grammar and
	// ExecutionChannel are computed on first use, at most once per instance,
	// and cached together with any failure. A caller that observes a failure
	// must discard the instance and rediscover to try again.
	Environment struct {
		basePath   string
		executable string
		kind       Kind
		host       *Host
		workers    WorkerFactory

		version    cell[VersionInfo]
		searchPath cell[[]string]
		grammar    cell[*Grammar]
		channel    cell[Channel]
	}

	// Option configures a discovered Environment.
	Option func(*Environment)
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDiscovered:
		return "discovered"
	case KindInProcess:
		return "in-process"
	default:
		return "unknown"
	}
}

// WithWorkerFactory sets the factory that supplies the worker process backing
// the environment's execution channel.
func WithWorkerFactory(f WorkerFactory) Option {
	return func(e *Environment) { e.workers = f }
}

// NewEnvironment builds a discovered environment without touching the
// filesystem or running anything.
func NewEnvironment(basePath, executable string, opts ...Option) *Environment {
	e := &Environment{basePath: basePath, executable: executable, kind: KindDiscovered}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewInterpreterEnvironment builds the in-process environment for h. A host
// process should hold exactly one; discovery.Discovery owns it.
func NewInterpreterEnvironment(h Host) *Environment {
	return &Environment{basePath: h.Prefix, executable: h.Executable, kind: KindInProcess, host: &h}
}

// CreateEnvironment validates path as a virtualenv and returns an environment
// for it. Validation errors are returned unchanged.
func CreateEnvironment(path string, opts ...Option) (*Environment, error) {
	exe, err := ValidateDirectory(path)
	if err != nil {
		return nil, err
	}
	return NewEnvironment(path, exe, opts...), nil
}

// EnvironmentForName resolves name on PATH, e.g. "python3.6", and returns an
// environment rooted two directories above the resolved executable.
func EnvironmentForName(name string, opts ...Option) (*Environment, error) {
	exe, err := ResolveByName(name)
	if err != nil {
		return nil, err
	}
	return NewEnvironment(filepath.Dir(filepath.Dir(exe)), exe, opts...), nil
}

// BasePath returns the installation or virtualenv root. It may be empty.
func (e *Environment) BasePath() string { return e.basePath }

// Executable returns the interpreter path.
func (e *Environment) Executable() string { return e.executable }

// Kind returns whether e is discovered or in-process.
func (e *Environment) Kind() Kind { return e.kind }

// SameRuntime reports whether e and o run the same interpreter binary.
func (e *Environment) SameRuntime(o *Environment) bool {
	return o != nil && e.executable == o.executable
}

// String implements fmt.Stringer.
func (e *Environment) String() string {
	return fmt.Sprintf("<Environment: %s>", e.basePath)
}

// Version returns the interpreter version, probing it on first use.
func (e *Environment) Version(ctx context.Context) (VersionInfo, error) {
	return e.version.get(ctx, func(ctx context.Context) (VersionInfo, error) {
		if e.kind == KindInProcess {
			return e.host.Version, nil
		}
		return ProbeVersion(ctx, e.executable)
	})
}

// SearchPath returns the module search path. The in-process environment
// reports the host's live path on every call; discovered environments query
// their interpreter once and cache the answer.
func (e *Environment) SearchPath(ctx context.Context) ([]string, error) {
	if e.kind == KindInProcess {
		if e.host.SearchPath == nil {
			return nil, nil
		}
		return slices.Clone(e.host.SearchPath()), nil
	}

	paths, err := e.searchPath.get(ctx, func(ctx context.Context) ([]string, error) {
		return QuerySearchPath(ctx, e.executable)
	})
	return slices.Clone(paths), err
}

// Grammar returns the grammar matching the environment's version.
func (e *Environment) Grammar(ctx context.Context) (*Grammar, error) {
	return e.grammar.get(ctx, func(ctx context.Context) (*Grammar, error) {
		v, err := e.Version(ctx)
		if err != nil {
			return nil, err
		}
		return LoadGrammar(v), nil
	})
}

// ExecutionChannel returns the channel analysis work for e must go through.
// The in-process environment gets an InProcessChannel; every discovered
// environment gets a SubprocessChannel, even one whose version matches the
// host. The channel is created once and returned on every later call.
func (e *Environment) ExecutionChannel(ctx context.Context) (Channel, error) {
	return e.channel.get(ctx, func(ctx context.Context) (Channel, error) {
		if e.kind == KindInProcess {
			return &InProcessChannel{eval: e.host.Evaluator}, nil
		}
		if e.workers == nil {
			return nil, ErrNoWorkerFactory
		}
		w, err := e.workers.Worker(ctx, e.executable)
		if err != nil {
			return nil, fmt.Errorf("start worker for %s: %w", e.executable, err)
		}
		return &SubprocessChannel{executable: e.executable, worker: w}, nil
	})
}

// VersionState reports the lifecycle of the version field.
func (e *Environment) VersionState() CellState { return e.version.peek() }

// SearchPathState reports the lifecycle of the search path field.
func (e *Environment) SearchPathState() CellState { return e.searchPath.peek() }
