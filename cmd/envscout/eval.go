// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/invowk/envscout/internal/issue"
	"github.com/invowk/envscout/internal/pyenv"
	"github.com/invowk/envscout/internal/worker"

	"github.com/spf13/cobra"
)

func newEvalCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <target> <code>",
		Short: "Run code through an environment's execution channel",
		Long: `Run code through an environment's execution channel and print the result.

For the host ("host") the code runs in process and must be a single literal
expression. For any other target it runs in a worker process started from
that environment's interpreter: expressions print their repr, statements
print nothing.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd.Context(), app, args[0], args[1])
		},
	}
}

func runEval(ctx context.Context, app *App, target, code string) error {
	sess, err := app.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	env, err := sess.resolve(target)
	if err != nil {
		return err
	}

	ch, err := env.ExecutionChannel(ctx)
	if err != nil {
		return issue.ForEnvironment(err, "open execution channel", env.Executable())
	}
	slog.Debug("evaluating", "environment", env, "locality", ch.Locality())

	res, err := ch.Submit(ctx, pyenv.Work{Code: code})
	if err != nil {
		var evalErr *worker.EvalError
		if errors.As(err, &evalErr) {
			if app.verbose {
				fmt.Fprint(app.stderr, evalErr.Traceback)
			}
			return &ExitError{Code: ExitFailure, Err: err}
		}
		return issue.ForEnvironment(err, "evaluate", env.Executable())
	}

	if res.Value != "" {
		_, err = fmt.Fprintln(app.stdout, res.Value)
	}
	return err
}
