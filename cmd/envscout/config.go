// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invowk/envscout/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `envscout config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage envscout configuration",
		Long: `Manage envscout configuration.

Configuration is stored in:
  - Linux: ~/.config/envscout/config.cue
  - macOS: ~/Library/Application Support/envscout/config.cue
  - Windows: %APPDATA%\envscout\config.cue

Every key can be overridden from the environment, e.g. ENVSCOUT_LOG_LEVEL
or ENVSCOUT_PROBE_PARALLELISM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.stdout, filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt))
			return err
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd.Context(), app, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	loaded, err := config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: app.configPath})
	if err != nil {
		return err
	}

	source := loaded.Path
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintln(app.stderr, SubtitleStyle.Render("# source: ")+PathStyle.Render(source))
	_, err = fmt.Fprint(app.stdout, config.GenerateCUE(loaded.Config))
	return err
}

func initConfig(ctx context.Context, app *App, force bool) error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	if path, err = config.Save(cfg); err != nil {
		return err
	}
	fmt.Fprintln(app.stdout, SuccessStyle.Render("Wrote ")+PathStyle.Render(path))
	return nil
}
