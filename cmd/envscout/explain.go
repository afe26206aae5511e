// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/invowk/envscout/internal/issue"

	"github.com/spf13/cobra"
)

func newExplainCommand(app *App) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "explain [name]",
		Short: "Explain a failure class",
		Long: `Explain a failure class reported by envscout.

Without a name, lists every failure class. Names are printed in error
suggestions and as the code of skipped candidates in "envscout list --skipped".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, i := range issue.Values() {
					fmt.Fprintln(app.stdout, i.Name())
				}
				return nil
			}

			i := issue.Lookup(args[0])
			if i == nil {
				return issue.NewErrorContext().
					WithOperation("explain").
					WithResource(args[0]).
					WithSuggestion("Run 'envscout explain' to list known names").
					Wrap(fmt.Errorf("unknown failure class %q", args[0])).
					BuildError()
			}

			out, err := i.Render(style)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(app.stdout, out)
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light, notty or a style file")
	return cmd
}
