package ahaar

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahaar/ahaar-cli/internal/app"
	"github.com/ahaar/ahaar-cli/internal/model"
	"github.com/ahaar/ahaar-cli/internal/service"
)

var summaryJSON bool

type summaryOutput struct {
	Period   service.Period     `json:"period"`
	From     string             `json:"from"`
	To       string             `json:"to"`
	Origin   app.Origin         `json:"origin"`
	Totals   model.PeriodTotals `json:"totals"`
	Progress []service.Progress `json:"progress"`
	Split    service.MacroSplit `json:"macro_split"`
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show period totals against daily targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			r, err := resolveRange(a)
			if err != nil {
				return err
			}
			res, err := a.LoadPeriod(ctx, r)
			if err != nil {
				return err
			}
			t := res.Totals
			progress := service.ProgressFor(t, a.Targets())
			cals := service.MacroCaloriesFromGrams(t.Protein, t.Carbs, t.Fat)
			p, c, f := cals.Shares()
			split := service.MacroSplit{Calories: cals, ProteinShare: p, CarbsShare: c, FatShare: f}

			if summaryJSON {
				return writeJSON(cmd.OutOrStdout(), summaryOutput{
					Period: r.Period, From: r.From.Format(service.DateLayout), To: r.To.Format(service.DateLayout),
					Origin: res.Origin, Totals: t, Progress: progress, Split: split,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%d meals)\n", r.Period, r.Label(), len(t.Meals))
			if note := originNote(res.Origin, res.LiveErr); note != "" {
				fmt.Fprintf(out, "Source: %s\n", note)
			}
			width := barWidth(out)
			fmt.Fprintln(out)
			for _, row := range progress {
				fmt.Fprintf(out, "%-9s %s %6.0f / %-5.0f %-4s %3.0f%%\n", row.Name, gauge(row.Percent/100, width), row.Value, row.Target, row.Unit, row.Percent)
			}
			fmt.Fprintf(out, "\nFiber %.1fg  Sugar %.1fg  Sodium %.0fmg  Cholesterol %.0fmg\n", t.Fiber, t.Sugar, t.Sodium, t.Cholesterol)
			fmt.Fprintf(out, "Macro energy split: P %.1f%%, C %.1f%%, F %.1f%%\n", p*100, c*100, f*100)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	addPeriodFlags(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Output as JSON")
}
