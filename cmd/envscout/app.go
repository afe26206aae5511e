// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/invowk/envscout/internal/config"
	"github.com/invowk/envscout/internal/discovery"
	"github.com/invowk/envscout/internal/issue"
	"github.com/invowk/envscout/internal/pyenv"
	"github.com/invowk/envscout/internal/worker"
)

// defaultHostExecutable is resolved on PATH when host.executable is not configured.
const defaultHostExecutable = "python3"

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// HostResolver describes the host runtime from its configuration.
	HostResolver func(ctx context.Context, hc config.HostConfig) (pyenv.Host, error)

	// App wires CLI services and shared state for one invocation.
	App struct {
		Config      ConfigProvider
		ResolveHost HostResolver
		stdout      io.Writer
		stderr      io.Writer

		configPath string
		verbose    bool

		cfgOnce sync.Once
		cfg     *config.Config
		cfgErr  error
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		ResolveHost HostResolver
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// session holds the per-command discovery state. Close stops any workers
	// started while it was open.
	session struct {
		cfg  *config.Config
		disc *discovery.Discovery
		pool *worker.Pool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.ResolveHost == nil {
		deps.ResolveHost = resolveHost
	}

	return &App{
		Config:      deps.Config,
		ResolveHost: deps.ResolveHost,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
}

// loadConfig loads configuration once per App.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	a.cfgOnce.Do(func() {
		a.cfg, a.cfgErr = a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	})
	return a.cfg, a.cfgErr
}

// openSession loads configuration, describes the host and builds a Discovery
// whose discovered environments delegate work to a fresh worker pool.
func (a *App) openSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	host, err := a.ResolveHost(ctx, cfg.Host)
	if err != nil {
		return nil, err
	}
	slog.Debug("host runtime", "executable", host.Executable, "version", host.Version, "prefix", host.Prefix)

	pool := worker.NewPool()
	return &session{
		cfg:  cfg,
		pool: pool,
		disc: discovery.New(discovery.Options{
			Host:              host,
			SupportedVersions: cfg.VersionTags(),
			Workers:           pool,
		}),
	}, nil
}

func (s *session) Close() error {
	return s.pool.Close()
}

// resolve maps a command-line target to an environment. "host" (or no target)
// is the in-process environment, "default" the host installation as a
// discovered environment, an existing directory is validated as a virtualenv,
// and anything else is looked up on PATH.
func (s *session) resolve(target string) (*pyenv.Environment, error) {
	switch target {
	case "", "host":
		return s.disc.Interpreter(), nil
	case "default":
		return s.disc.Default(), nil
	}

	if info, err := os.Stat(target); err == nil && info.IsDir() {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, err
		}
		env, err := s.disc.Create(abs)
		return env, issue.ForEnvironment(err, "open environment", abs)
	}

	env, err := s.disc.ForName(target)
	return env, issue.ForEnvironment(err, "resolve interpreter", target)
}

// resolveHost is the production HostResolver. An unset executable resolves
// python3 on PATH, an unset version is probed, and an unset prefix is two
// directories above the executable. The host's search path is queried on
// first use and then reused for the rest of the invocation.
func resolveHost(ctx context.Context, hc config.HostConfig) (pyenv.Host, error) {
	name := hc.Executable
	if name == "" {
		name = defaultHostExecutable
	}
	exe, err := pyenv.ResolveByName(name)
	if err != nil {
		return pyenv.Host{}, issue.ForEnvironment(err, "resolve host interpreter", name)
	}

	var version pyenv.VersionInfo
	if hc.Version != "" {
		version, err = pyenv.ParseVersionString(hc.Version)
	} else {
		version, err = pyenv.ProbeVersion(ctx, exe)
	}
	if err != nil {
		return pyenv.Host{}, issue.ForEnvironment(err, "determine host version", exe)
	}

	prefix := hc.Prefix
	if prefix == "" {
		prefix = filepath.Dir(filepath.Dir(exe))
	}

	// A configured search path spares the interpreter spawn.
	searchPath := func() []string { return slices.Clone(hc.SearchPath) }
	if len(hc.SearchPath) == 0 {
		searchPath = sync.OnceValue(func() []string {
			p, err := pyenv.QuerySearchPath(context.WithoutCancel(ctx), exe)
			if err != nil {
				slog.Warn("cannot read host search path", "executable", exe, "error", err)
				return nil
			}
			return p
		})
	}

	return pyenv.Host{
		Prefix:     prefix,
		Executable: exe,
		Version:    version,
		SearchPath: searchPath,
		Evaluator:  pyenv.NewLiteralEvaluator(pyenv.LoadGrammar(version)),
	}, nil
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
