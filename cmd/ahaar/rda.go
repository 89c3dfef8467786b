package ahaar

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ahaar/ahaar-cli/internal/app"
	"github.com/ahaar/ahaar-cli/internal/service"
)

var microsJSON bool

var microsCmd = &cobra.Command{
	Use:   "micros",
	Short: "Compare a period's vitamins and minerals against reference intakes",
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
			readings, buckets := service.ClassifyMicronutrients(res.Totals.Vitamins, res.Totals.Minerals)
			if microsJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"period":  r.Period,
					"origin":  res.Origin,
					"items":   readings,
					"buckets": buckets,
					"radar":   service.MicronutrientRadar(res.Totals.Vitamins, res.Totals.Minerals),
				})
			}
			out := cmd.OutOrStdout()
			if note := originNote(res.Origin, res.LiveErr); note != "" {
				fmt.Fprintf(out, "Source: %s\n", note)
			}
			if len(readings) == 0 {
				fmt.Fprintln(out, "No recognised micronutrients")
				return nil
			}
			width := barWidth(out)
			fmt.Fprintln(out, "NAME\tAMOUNT\tRDA(mg)\t%RDA\tSTATUS")
			for _, m := range readings {
				fmt.Fprintf(out, "%s\t%.1f %s\t%.3g\t%.0f%% %s\t%s\n", m.Name, m.Amount, m.Unit, m.RDAValue, m.PercentOfRDA,
					horizontalBar(m.PercentOfRDA, service.MaxPercentOfRDA, width), m.Status)
			}
			fmt.Fprintf(out, "\nDeficient: %d  Adequate: %d  Excess: %d\n", buckets.Deficient, buckets.Adequate, buckets.Excess)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(microsCmd, rdaCmd)
	addPeriodFlags(microsCmd)
	microsCmd.Flags().BoolVar(&microsJSON, "json", false, "Output as JSON")
}

var rdaCmd = &cobra.Command{
	Use:   "rda NAME AMOUNT UNIT",
	Short: "Normalize one nutrient amount against its reference intake",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		if amount < 0 {
			return fmt.Errorf("amount must be >= 0")
		}
		p, ok := service.NormalizeNutrient(args[0], amount, args[2])
		if !ok {
			return fmt.Errorf("no reference intake for %q", args[0])
		}
		ref, unit, _ := service.RDAReference(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %.1f%% of %g %s (%g mg)\n", args[0], p.PercentOfRDA, ref, unit, p.RDAValue)
		return nil
	},
}
