package ahaar

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/ahaar/ahaar-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ahaar configuration",
}

var (
	cfgUserID       string
	cfgAPIURL       string
	cfgTimeout      string
	cfgDemoFallback bool
	cfgCalories     float64
	cfgProtein      float64
	cfgCarbs        float64
	cfgFat          float64
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.ReadFromFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			cfg = config.Default()
		} else if err != nil {
			return err
		}

		updates := 0
		set := func(flag string, apply func()) {
			if cmd.Flags().Changed(flag) {
				apply()
				updates++
			}
		}
		set("user-id", func() { cfg.UserID = cfgUserID })
		set("api-url", func() { cfg.API.BaseURL = cfgAPIURL })
		set("timeout", func() { cfg.API.Timeout = cfgTimeout })
		set("demo-fallback", func() { cfg.DemoFallback = cfgDemoFallback })
		set("calories", func() { cfg.Targets.Calories = cfgCalories })
		set("protein", func() { cfg.Targets.ProteinG = cfgProtein })
		set("carbs", func() { cfg.Targets.CarbsG = cfgCarbs })
		set("fat", func() { cfg.Targets.FatG = cfgFat })
		if updates == 0 {
			return fmt.Errorf("set at least one flag")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d config value(s) in %s\n", updates, path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
		if cfg.Token != "" {
			fmt.Fprintln(cmd.OutOrStdout(), "# token: set")
		}
		m := &config.Manager{}
		return m.Write(cmd.OutOrStdout(), cfg)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configShowCmd, configPathCmd)

	configSetCmd.Flags().StringVar(&cfgUserID, "user-id", "", "Default user id")
	configSetCmd.Flags().StringVar(&cfgAPIURL, "api-url", "", "API base URL, e.g. http://127.0.0.1:8000/api")
	configSetCmd.Flags().StringVar(&cfgTimeout, "timeout", "", "API request timeout, e.g. 12s")
	configSetCmd.Flags().BoolVar(&cfgDemoFallback, "demo-fallback", true, "Show demo data when neither the API nor the cache can answer")
	configSetCmd.Flags().Float64Var(&cfgCalories, "calories", 0, "Daily calorie target")
	configSetCmd.Flags().Float64Var(&cfgProtein, "protein", 0, "Daily protein target (g)")
	configSetCmd.Flags().Float64Var(&cfgCarbs, "carbs", 0, "Daily carbs target (g)")
	configSetCmd.Flags().Float64Var(&cfgFat, "fat", 0, "Daily fat target (g)")
}
