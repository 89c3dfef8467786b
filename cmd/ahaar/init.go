package ahaar

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahaar/ahaar-cli/internal/app"
	"github.com/ahaar/ahaar-cli/internal/config"
	"github.com/ahaar/ahaar-cli/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file and initialize the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", path)
		} else {
			if err := config.Init(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
		}

		return withApp(cmd, func(_ context.Context, a *app.App) error {
			version, err := db.SchemaVersion(a.DB())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized ahaar cache at %s (schema v%d)\n", a.DBPath(), version)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
