package ahaar

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahaar/ahaar-cli/internal/app"
	"github.com/ahaar/ahaar-cli/internal/service"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch a period from the API into the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			r, err := resolveRange(a)
			if err != nil {
				return err
			}
			res, err := a.Sync(ctx, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %s: %d meal(s), %.0f kcal\n", r.Label(), len(res.Totals.Meals), res.Totals.Calories)
			if r.Period == service.PeriodDaily {
				fmt.Fprintf(cmd.OutOrStdout(), "Cached meal list for %s\n", r.From.Format(service.DateLayout))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	addPeriodFlags(syncCmd)
}
