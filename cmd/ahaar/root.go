package ahaar

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	dbPath     string
	offline    bool
	verbose    bool
	userID     string
	apiToken   string
)

var rootCmd = &cobra.Command{
	Use:   "ahaar",
	Short: "ahaar reads meal-photo nutrition data and turns it into dashboards",
	Long: "ahaar is a terminal client for the meal-photo nutrition backend. It fetches daily, weekly and monthly " +
		"totals, caches them locally, and derives micronutrient, glycemic, heart and fueling indices from them.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: user config dir, or $AHAAR_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite cache database")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Use only the local cache and demo data")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug records to stderr")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User id to query (overrides config)")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "Bearer token for the API (overrides $AHAAR_TOKEN)")
}
