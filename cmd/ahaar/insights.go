package ahaar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ahaar/ahaar-cli/internal/app"
	"github.com/ahaar/ahaar-cli/internal/service"
)

var (
	insightsJSON      bool
	insightsNoCharts  bool
	insightsOutPath   string
	insightsOutFormat string
)

// insightsView is the report plus where its data came from.
type insightsView struct {
	Origin app.Origin `json:"origin"`
	service.InsightsReport
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show derived health indices and dashboards for a period",
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
			view := insightsView{
				Origin:         res.Origin,
				InsightsReport: service.BuildInsights(service.InsightsInput{Range: r, Totals: res.Totals, Targets: a.Targets()}),
			}
			jsonBytes, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal insights json: %w", err)
			}

			if insightsOutPath != "" {
				data, err := renderInsightsExport(view, jsonBytes, insightsNoCharts, insightsOutFormat)
				if err != nil {
					return err
				}
				if err := os.WriteFile(insightsOutPath, data, 0o644); err != nil {
					return fmt.Errorf("write insights report to %q: %w", insightsOutPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved insights report to %s\n", insightsOutPath)
			}

			if insightsJSON {
				fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
				return nil
			}
			if note := originNote(res.Origin, res.LiveErr); note != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Source: %s\n", note)
			}
			printInsights(cmd.OutOrStdout(), view.InsightsReport, insightsNoCharts, barWidth(cmd.OutOrStdout()))
			return nil
		})
	},
}

func printInsights(out io.Writer, r service.InsightsReport, noCharts bool, width int) {
	fmt.Fprintf(out, "Period: %s %s to %s (%d meals)\n", r.Period, r.From, r.To, r.MealCount)

	fmt.Fprintln(out, "\nTotals")
	for _, p := range r.Progress {
		fmt.Fprintf(out, "%s: %.0f/%.0f %s (%.0f%%)\n", p.Name, p.Value, p.Target, p.Unit, p.Percent)
	}
	fmt.Fprintf(out, "Fiber: %.1fg  Sugar: %.1fg  Sodium: %.0fmg  Cholesterol: %.0fmg\n", r.Totals.Fiber, r.Totals.Sugar, r.Totals.Sodium, r.Totals.Cholesterol)
	fmt.Fprintf(out, "Macro energy split: P %.1f%%, C %.1f%%, F %.1f%%\n", r.MacroSplit.ProteinShare*100, r.MacroSplit.CarbsShare*100, r.MacroSplit.FatShare*100)

	fmt.Fprintln(out, "\nIndices (0-10)")
	printIndex(out, "Macro quality", r.Indices.MacroQuality, width)
	printIndex(out, "Heart risk", r.Indices.HeartRisk, width)
	printIndex(out, "Sodium safety", r.Indices.SodiumSafety, width)
	printIndex(out, "Glycemic tolerance", r.Indices.GlycemicTolerance, width)
	printIndex(out, "Fueling", r.Indices.Fueling, width)
	fmt.Fprintf(out, "Glycemic load: %.1f\n", r.GlycemicLoad)

	if r.LatestMeal != "" {
		fmt.Fprintf(out, "\nLatest analysed meal: %s\n", r.LatestMeal)
		if r.HealthScore != nil {
			fmt.Fprintf(out, "Health score: %.1f/10 (%s)\n", *r.HealthScore, r.HealthCategory)
		}
		if b := r.BurnTime; b != nil {
			fmt.Fprintf(out, "Burn time: walk %s, jog %s, cycle %s\n",
				formatOptional(b.WalkingMinutes, "%.0f min"), formatOptional(b.JoggingMinutes, "%.0f min"), formatOptional(b.CyclingMinutes, "%.0f min"))
		}
	}

	if r.Advanced != nil {
		fmt.Fprintln(out, "\nAdvanced")
		for _, line := range advancedLines(r.Advanced) {
			fmt.Fprintln(out, line)
		}
	}

	fmt.Fprintln(out, "\nMicronutrients")
	if len(r.Micronutrients) == 0 {
		fmt.Fprintln(out, "No recognised micronutrients")
	}
	for _, m := range r.Micronutrients {
		fmt.Fprintf(out, "%-12s %8.1f %-4s %5.0f%% RDA  %s\n", m.Name, m.Amount, m.Unit, m.PercentOfRDA, m.Status)
	}
	fmt.Fprintf(out, "Deficient: %d  Adequate: %d  Excess: %d\n", r.MicroBuckets.Deficient, r.MicroBuckets.Adequate, r.MicroBuckets.Excess)

	fmt.Fprintln(out, "\nRisk Flags")
	printList(out, r.RiskFlags, "None")
	fmt.Fprintln(out, "\nRecommendations")
	printList(out, r.Recommendations, "None")

	fmt.Fprintln(out, "\nAllergens")
	parts := make([]string, 0, len(r.Allergens))
	for _, al := range r.Allergens {
		mark := "-"
		if al.Present {
			mark = "!"
		}
		parts = append(parts, mark+al.Name)
	}
	fmt.Fprintln(out, strings.Join(parts, "  "))

	if len(r.Environmental) > 0 {
		fmt.Fprintln(out, "\nEnvironmental")
		for _, e := range r.Environmental {
			fmt.Fprintf(out, "%s: %.0f gCO2, %.0f L water\n", e.Meal, e.CarbonGCO2, e.WaterL)
		}
	}

	fmt.Fprintln(out, "\nMeal Tags")
	for _, mt := range r.MealTags {
		labels := make([]string, 0, len(mt.Tags))
		for _, tag := range mt.Tags {
			labels = append(labels, tag.Label)
		}
		fmt.Fprintf(out, "%s: %s\n", mt.Meal, strings.Join(labels, ", "))
	}

	if noCharts {
		return
	}

	fmt.Fprintln(out, "\nCharts")
	fmt.Fprintf(out, "Radar:\n")
	for _, p := range r.Radar {
		fmt.Fprintf(out, "  %-10s %s %.0f%%\n", p.Name, horizontalBar(p.PercentOfRDA, service.MaxPercentOfRDA, width), p.PercentOfRDA)
	}
	value := func(p service.CurvePoint) float64 { return p.Value }
	fmt.Fprintf(out, "Glucose 0-4.5h  %s\n", curveSparkline(r.GlucoseCurve, value))
	fmt.Fprintf(out, "Protein 0-6h    %s\n", curveSparkline(r.Absorption.Protein, value))
	fmt.Fprintf(out, "Carbs 0-6h      %s\n", curveSparkline(r.Absorption.Carbs, value))
	fmt.Fprintf(out, "Fat 0-6h        %s\n", curveSparkline(r.Absorption.Fat, value))
	fmt.Fprintf(out, "Calories trend  %s\n", sparkline(r.CalorieTrend))
	fmt.Fprintf(out, "Protein trend   %s\n", sparkline(r.ProteinTrend))
}

// advancedLines renders the extended analysis panel. Unknown values print n/a.
func advancedLines(a *service.AdvancedPanel) []string {
	diets := "n/a"
	if len(a.DietCompatibility) > 0 {
		diets = strings.Join(a.DietCompatibility, ", ")
	}
	workout := "n/a"
	if a.WorkoutEnergyMatch != nil {
		workout = *a.WorkoutEnergyMatch
	}
	return []string{
		"Meal: " + a.Meal,
		"ORAC: " + formatOptional(a.AntioxidantORAC, "%.0f"),
		"Diets: " + diets,
		fmt.Sprintf("Omega-3: %s  Omega-6: %s  Omega-3:6 ratio: %s",
			formatOptional(a.Omega3, "%.2f g"), formatOptional(a.Omega6, "%.2f g"), formatOptional(a.Omega3To6Ratio, "%.2f")),
		fmt.Sprintf("Fats: saturated %s, mono %s, poly %s",
			formatOptional(a.SaturatedFat, "%.1f g"), formatOptional(a.MonounsaturatedFat, "%.1f g"), formatOptional(a.PolyunsaturatedFat, "%.1f g")),
		"Workout match: " + workout,
		fmt.Sprintf("Sourcing: local %s, organic %s", formatFlag(a.Local), formatFlag(a.Organic)),
	}
}

func printIndex(out io.Writer, name string, score float64, width int) {
	fmt.Fprintf(out, "%-19s %s %.1f\n", name+":", gauge(service.GaugeFraction(score, 10), width), score)
}

func printList(out io.Writer, items []string, empty string) {
	if len(items) == 0 {
		fmt.Fprintln(out, empty)
		return
	}
	for _, s := range items {
		fmt.Fprintf(out, "- %s\n", s)
	}
}

func renderInsightsExport(view insightsView, jsonBytes []byte, noCharts bool, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		var b bytes.Buffer
		printInsights(&b, view.InsightsReport, noCharts, defaultBarWidth)
		return b.Bytes(), nil
	case "markdown", "md":
		return []byte(renderInsightsMarkdown(view)), nil
	case "json":
		return jsonBytes, nil
	default:
		return nil, fmt.Errorf("invalid --out-format value %q (use text|markdown|json)", format)
	}
}

func renderInsightsMarkdown(view insightsView) string {
	r := view.InsightsReport
	var b strings.Builder
	fmt.Fprintf(&b, "# Nutrition Insights Report\n\n")
	fmt.Fprintf(&b, "- Period: `%s` (`%s` to `%s`)\n", r.Period, r.From, r.To)
	fmt.Fprintf(&b, "- Meals: %d\n", r.MealCount)
	fmt.Fprintf(&b, "- Source: `%s`\n\n", view.Origin)

	fmt.Fprintf(&b, "## Totals\n")
	for _, p := range r.Progress {
		fmt.Fprintf(&b, "- %s: %.0f/%.0f %s (%.0f%%)\n", p.Name, p.Value, p.Target, p.Unit, p.Percent)
	}
	fmt.Fprintf(&b, "- Sodium: %.0f mg, Cholesterol: %.0f mg\n\n", r.Totals.Sodium, r.Totals.Cholesterol)

	fmt.Fprintf(&b, "## Indices\n")
	fmt.Fprintf(&b, "| Index | Score |\n|---|---|\n")
	fmt.Fprintf(&b, "| Macro quality | %.1f |\n", r.Indices.MacroQuality)
	fmt.Fprintf(&b, "| Heart risk | %.1f |\n", r.Indices.HeartRisk)
	fmt.Fprintf(&b, "| Sodium safety | %.1f |\n", r.Indices.SodiumSafety)
	fmt.Fprintf(&b, "| Glycemic tolerance | %.1f |\n", r.Indices.GlycemicTolerance)
	fmt.Fprintf(&b, "| Fueling | %.1f |\n\n", r.Indices.Fueling)

	if r.Advanced != nil {
		fmt.Fprintf(&b, "## Advanced\n")
		writeMarkdownList(&b, advancedLines(r.Advanced))
	}

	fmt.Fprintf(&b, "## Micronutrients\n")
	if len(r.Micronutrients) == 0 {
		fmt.Fprintf(&b, "- No recognised micronutrients\n")
	}
	for _, m := range r.Micronutrients {
		fmt.Fprintf(&b, "- **%s**: %.1f %s (%.0f%% RDA, %s)\n", m.Name, m.Amount, m.Unit, m.PercentOfRDA, m.Status)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Risk Flags\n")
	writeMarkdownList(&b, r.RiskFlags)
	fmt.Fprintf(&b, "## Recommendations\n")
	writeMarkdownList(&b, r.Recommendations)
	return b.String()
}

func writeMarkdownList(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("- None\n\n")
		return
	}
	for _, s := range items {
		fmt.Fprintf(b, "- %s\n", s)
	}
	b.WriteString("\n")
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	addPeriodFlags(insightsCmd)
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "Output as JSON")
	insightsCmd.Flags().BoolVar(&insightsNoCharts, "no-charts", false, "Disable ASCII charts in text output")
	insightsCmd.Flags().StringVar(&insightsOutPath, "out", "", "Write a report to a file path")
	insightsCmd.Flags().StringVar(&insightsOutFormat, "out-format", "text", "Report file format: text|markdown|json")
}
