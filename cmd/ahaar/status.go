package ahaar

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahaar/ahaar-cli/internal/app"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check API health and show local cache state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			st, err := a.Status(ctx)
			if err != nil {
				return err
			}
			if statusJSON {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API: %s\n", st.APIBaseURL)
			switch {
			case st.Offline:
				fmt.Fprintln(out, "Health: skipped (offline)")
			case st.Health != nil:
				fmt.Fprintf(out, "Health: %s (gemini configured: %t)\n", st.Health.Status, st.Health.GeminiConfigured)
			default:
				fmt.Fprintf(out, "Health: unreachable (%s)\n", st.HealthError)
			}
			fmt.Fprintf(out, "User: %s (token set: %t)\n", st.UserID, st.TokenSet)
			fmt.Fprintf(out, "Cache: %s (schema v%d)\n", st.DBPath, st.SchemaVersion)
			fmt.Fprintf(out, "Demo fallback: %t\n", st.DemoFallback)

			fmt.Fprintln(out, "\nSync State")
			if len(st.SyncState) == 0 {
				fmt.Fprintln(out, "never synced")
			}
			for _, e := range st.SyncState {
				fmt.Fprintf(out, "%s\t%s\t%s\n", e.Key, e.Value, e.UpdatedAt.Local().Format(time.RFC3339))
			}

			fmt.Fprintln(out, "\nCached Periods")
			if len(st.Snapshots) == 0 {
				fmt.Fprintln(out, "none")
			}
			for _, s := range st.Snapshots {
				fmt.Fprintf(out, "%s\t%s..%s\tfetched %s\n", s.Period, s.From, s.To, s.FetchedAt.Local().Format(time.RFC3339))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
}
