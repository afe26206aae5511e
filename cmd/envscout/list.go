// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/invowk/envscout/internal/discovery"
	"github.com/invowk/envscout/internal/issue"
	"github.com/invowk/envscout/internal/pyenv"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

type listOptions struct {
	format    string
	require   string
	supported bool
	skipped   bool
}

func newListCommand(app *App) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list [dir...]",
		Short: "List usable Python environments",
		Long: `List usable Python environments.

Each directory argument is either a virtualenv root or a directory whose
subdirectories are virtualenvs. Without arguments, the configured scan_dirs
are used. The host interpreter is always listed, followed by interpreters
found on PATH for each supported version unless --supported=false.

Every candidate's version is probed; candidates that fail are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), app, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: table, json, yaml or toml (default from config)")
	cmd.Flags().StringVar(&opts.require, "require", "", `only list versions matching a constraint, e.g. ">=3.8, <4"`)
	cmd.Flags().BoolVar(&opts.supported, "supported", true, "include interpreters found on PATH for supported versions")
	cmd.Flags().BoolVar(&opts.skipped, "skipped", false, "include skipped candidates in the report")

	return cmd
}

func runList(ctx context.Context, app *App, args []string, opts listOptions) error {
	var constraint *semver.Constraints
	if opts.require != "" {
		c, err := semver.NewConstraint(opts.require)
		if err != nil {
			return issue.WrapWithContext(err, "parse version constraint", opts.require)
		}
		constraint = c
	}

	sess, err := app.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	format, err := resolveFormat(opts.format, sess.cfg)
	if err != nil {
		return err
	}

	dirs := args
	if len(dirs) == 0 {
		dirs = sess.cfg.ScanDirs
	}

	envs := []*pyenv.Environment{sess.disc.Interpreter()}
	envs = appendUnique(envs, sess.disc.FindInDirectories(discovery.ExpandCandidates(dirs)))
	if opts.supported {
		envs = appendUnique(envs, sess.disc.FindBySupportedVersions())
	}

	usable := sess.disc.WarmUp(ctx, envs, sess.cfg.Probe.Parallelism)

	report := listReport{Environments: make([]envRecord, 0, len(usable))}
	for _, env := range usable {
		rec, err := newEnvRecord(ctx, env, false)
		if err != nil {
			return err
		}
		if constraint != nil {
			v, _ := env.Version(ctx)
			if !constraint.Check(v.Semver()) {
				continue
			}
		}
		report.Environments = append(report.Environments, rec)
	}

	diags := sess.disc.Diagnostics()
	if opts.skipped {
		report.Skipped = diags
	} else if app.verbose {
		renderDiagnostics(app.stderr, diags)
	}

	if err := render(app.stdout, format, report); err != nil {
		return err
	}
	if constraint != nil && len(report.Environments) == 0 {
		return &ExitError{Code: ExitNoMatch, Err: fmt.Errorf("no environment matches %q", opts.require)}
	}
	return nil
}

// appendUnique appends environments from seq whose executable is not already
// present. The first occurrence wins, so the in-process environment shadows a
// discovered one for the same interpreter.
func appendUnique(envs []*pyenv.Environment, seq iter.Seq[*pyenv.Environment]) []*pyenv.Environment {
	for env := range seq {
		if !slices.ContainsFunc(envs, env.SameRuntime) {
			envs = append(envs, env)
		}
	}
	return envs
}
