// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/invowk/envscout/internal/config"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "envscout",
		Short: "Find, validate and query Python environments",
		Long: TitleStyle.Render("envscout") + SubtitleStyle.Render(" - find, validate and query Python environments") + `

envscout locates system interpreters and virtualenvs, probes their exact
version and module search path, and runs small pieces of work either in
process or in a worker bound to the chosen environment.

` + SubtitleStyle.Render("Targets:") + `
  host             the in-process environment (default)
  default          the host installation, probed as a subprocess
  <directory>      a virtualenv root
  <name>           an interpreter on PATH, e.g. python3.11

` + SubtitleStyle.Render("Examples:") + `
  envscout list ~/venvs                 List environments under ~/venvs
  envscout list --require ">=3.8"       Only environments matching a constraint
  envscout probe ./venv                 Print a virtualenv's version
  envscout syspath python3.11           Print an interpreter's sys.path
  envscout eval ./venv "1 + 1"          Evaluate an expression in a worker`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd.Context(), app)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $HOME/.config/envscout/config.cue)")

	root.AddCommand(
		newListCommand(app),
		newProbeCommand(app),
		newSyspathCommand(app),
		newActivateCommand(app),
		newEvalCommand(app),
		newExplainCommand(app),
		newConfigCommand(app),
	)

	root.SetOut(app.stdout)
	root.SetErr(app.stderr)
	return root
}

// setupLogging installs a charmbracelet/log handler as the slog default. The
// level comes from --verbose or, failing that, the configured log_level. A
// config error is not reported here; the command that needs config reports it.
func setupLogging(ctx context.Context, app *App) {
	level := log.InfoLevel
	if cfg, err := app.loadConfig(ctx); err == nil {
		if parsed, perr := log.ParseLevel(string(cfg.LogLevel)); perr == nil {
			level = parsed
		}
	}
	if app.verbose {
		level = log.DebugLevel
	}
	slog.SetDefault(newLogger(app.stderr, level))
}

func newLogger(w io.Writer, level log.Level) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
	return slog.New(handler)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with production dependencies and exits on failure.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			fmt.Fprintln(w, errorStyle.Render("Error:")+" "+formatErrorForDisplay(err, app.verbose))
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}
