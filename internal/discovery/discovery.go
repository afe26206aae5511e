// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/invowk/envscout/internal/pyenv"
)

// RuntimeName prefixes a version tag to form the executable name looked up on PATH.
const RuntimeName = "python"

// DefaultSupportedVersions is used when Options.SupportedVersions is empty.
var DefaultSupportedVersions = []string{"2.7", "3.3", "3.4", "3.5", "3.6"}

type (
	// Options configures a Discovery.
	Options struct {
		// Host describes the running host runtime.
		Host pyenv.Host
		// SupportedVersions are the "major.minor" tags searched for by name.
		SupportedVersions []string
		// Workers backs the execution channels of discovered environments.
		Workers pyenv.WorkerFactory
	}

	// Discovery enumerates environments for one host. It owns the host's single
	// in-process environment.
	Discovery struct {
		host        pyenv.Host
		supported   []string
		envOpts     []pyenv.Option
		interpreter *pyenv.Environment

		mu          sync.Mutex
		diagnostics []Diagnostic
	}
)

// New creates a Discovery from opts.
func New(opts Options) *Discovery {
	supported := opts.SupportedVersions
	if len(supported) == 0 {
		supported = DefaultSupportedVersions
	}

	var envOpts []pyenv.Option
	if opts.Workers != nil {
		envOpts = append(envOpts, pyenv.WithWorkerFactory(opts.Workers))
	}

	return &Discovery{
		host:        opts.Host,
		supported:   slices.Clone(supported),
		envOpts:     envOpts,
		interpreter: pyenv.NewInterpreterEnvironment(opts.Host),
	}
}

// SupportedVersions returns the configured version tags.
func (d *Discovery) SupportedVersions() []string { return slices.Clone(d.supported) }

// Default returns an environment for the host's own prefix and executable.
// Nothing is probed until its version or search path is requested.
func (d *Discovery) Default() *pyenv.Environment {
	return pyenv.NewEnvironment(d.host.Prefix, d.host.Executable, d.envOpts...)
}

// Interpreter returns the in-process environment. Every call returns the same instance.
func (d *Discovery) Interpreter() *pyenv.Environment { return d.interpreter }

// Create validates path as a virtualenv and returns its environment. Unlike
// the Find methods, failures are returned to the caller.
func (d *Discovery) Create(path string) (*pyenv.Environment, error) {
	return pyenv.CreateEnvironment(path, d.envOpts...)
}

// ForName resolves name on PATH and returns its environment, propagating failures.
func (d *Discovery) ForName(name string) (*pyenv.Environment, error) {
	return pyenv.EnvironmentForName(name, d.envOpts...)
}

// FindInDirectories yields an environment for every path that validates as a
// virtualenv, in input order. Invalid paths are skipped and recorded.
func (d *Discovery) FindInDirectories(paths []string) iter.Seq[*pyenv.Environment] {
	return func(yield func(*pyenv.Environment) bool) {
		for _, path := range paths {
			env, err := d.Create(path)
			if err != nil {
				d.skip(CodeNotAnEnvironment, path, err)
				continue
			}
			if !yield(env) {
				return
			}
		}
	}
}

// FindBySupportedVersions yields one environment per supported version tag
// that can be found, in list order. The host's own tag yields the default
// environment without a lookup; every other tag is resolved as "python<tag>"
// on PATH. Tags that cannot be resolved are skipped and recorded.
//
// The sequence is finite. Iterating it again repeats every lookup.
func (d *Discovery) FindBySupportedVersions() iter.Seq[*pyenv.Environment] {
	current := d.host.Version.Tag()
	return func(yield func(*pyenv.Environment) bool) {
		for _, tag := range d.supported {
			var env *pyenv.Environment
			if tag == current {
				env = d.Default()
			} else {
				var err error
				env, err = d.ForName(RuntimeName + tag)
				if err != nil {
					d.skip(CodeExecutableNotFound, RuntimeName+tag, err)
					continue
				}
			}
			if !yield(env) {
				return
			}
		}
	}
}

// Diagnostics returns the candidates skipped so far.
func (d *Discovery) Diagnostics() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.diagnostics)
}

// ResetDiagnostics clears recorded diagnostics.
func (d *Discovery) ResetDiagnostics() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.diagnostics = nil
}

func (d *Discovery) skip(code, path string, err error) {
	severity := SeverityWarning
	if !errors.Is(err, pyenv.ErrInvalidEnvironment) {
		severity = SeverityError
	}
	slog.Debug("skipping python environment candidate", "code", code, "path", path, "error", err)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.diagnostics = append(d.diagnostics, Diagnostic{
		Severity: severity,
		Code:     code,
		Message:  err.Error(),
		Path:     path,
		Cause:    err,
	})
}
