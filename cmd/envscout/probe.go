// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/invowk/envscout/internal/issue"
	"github.com/invowk/envscout/internal/pyenv"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/syntax"
)

func newProbeCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "probe [target]",
		Short: "Print an environment's exact version",
		Long: `Print an environment's exact version.

The target is "host" (default), "default", a virtualenv directory or an
interpreter name on PATH. With the default table format only the version is
printed, so the output can be captured by scripts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd.Context(), app, firstArg(args), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: table, json, yaml or toml (default from config)")
	return cmd
}

func runProbe(ctx context.Context, app *App, target, flagFormat string) error {
	sess, err := app.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	format, err := resolveFormat(flagFormat, sess.cfg)
	if err != nil {
		return err
	}

	env, err := sess.resolve(target)
	if err != nil {
		return err
	}

	rec, err := newEnvRecord(ctx, env, true)
	if err != nil {
		return issue.ForEnvironment(err, "probe environment", env.Executable())
	}

	if format == "table" {
		_, err = fmt.Fprintln(app.stdout, rec.Version)
		return err
	}
	return render(app.stdout, format, rec)
}

func newSyspathCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "syspath [target]",
		Short: "Print an environment's module search path",
		Long: `Print an environment's module search path (sys.path), one entry per line.

For the host the path is read once per invocation. For any other target the
interpreter is started with -S, so site-packages added by the site module are
not included.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyspath(cmd.Context(), app, firstArg(args), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: table, json, yaml or toml (default from config)")
	return cmd
}

func runSyspath(ctx context.Context, app *App, target, flagFormat string) error {
	sess, err := app.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	format, err := resolveFormat(flagFormat, sess.cfg)
	if err != nil {
		return err
	}

	env, err := sess.resolve(target)
	if err != nil {
		return err
	}

	paths, err := env.SearchPath(ctx)
	if err != nil {
		return issue.ForEnvironment(err, "read search path", env.Executable())
	}

	if format == "table" {
		_, err = fmt.Fprintln(app.stdout, strings.Join(paths, "\n"))
		return err
	}

	rec, err := newEnvRecord(ctx, env, false)
	if err != nil {
		return err
	}
	rec.SearchPath = paths
	return render(app.stdout, format, rec)
}

func newActivateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <dir>",
		Short: "Print the shell line that activates a virtualenv",
		Long: `Print the shell line that activates a virtualenv, for use as

  eval "$(envscout activate ./venv)"

The directory is validated first; the path is quoted for POSIX shells.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := activationLine(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.stdout, line)
			return err
		},
	}
}

// activationLine validates dir and returns ". <quoted activate script>".
func activationLine(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if _, err := pyenv.ValidateDirectory(abs); err != nil {
		return "", issue.ForEnvironment(err, "activate environment", abs)
	}

	quoted, err := syntax.Quote(pyenv.HostLayout().ActivatePath(abs), syntax.LangPOSIX)
	if err != nil {
		return "", fmt.Errorf("cannot quote activation path: %w", err)
	}
	return ". " + quoted, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
