package ahaar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahaar/ahaar-cli/internal/app"
	"github.com/ahaar/ahaar-cli/internal/model"
	"github.com/ahaar/ahaar-cli/internal/service"
)

var (
	mealsDate   string
	mealsSort   string
	mealsTags   bool
	mealsJSON   bool
	trendMetric string
	trendCount  int
)

type mealRow struct {
	model.Meal
	ResolvedAt int64         `json:"resolved_timestamp"`
	Tags       []service.Tag `json:"tags,omitempty"`
}

// dayTotals is the numeric part of the day's aggregate.
type dayTotals struct {
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Fiber       float64 `json:"fiber"`
	Sugar       float64 `json:"sugar"`
	Sodium      float64 `json:"sodium"`
	Cholesterol float64 `json:"cholesterol"`
}

type mealsReport struct {
	Date      string     `json:"date"`
	Origin    app.Origin `json:"origin"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
	Totals    dayTotals  `json:"totals"`
	Meals     []mealRow  `json:"meals"`
}

func totalsOf(meals []model.Meal) dayTotals {
	t := service.Aggregate(meals)
	return dayTotals{
		Calories: t.Calories, Protein: t.Protein, Carbs: t.Carbs, Fat: t.Fat,
		Fiber: t.Fiber, Sugar: t.Sugar, Sodium: t.Sodium, Cholesterol: t.Cholesterol,
	}
}

var mealsCmd = &cobra.Command{
	Use:   "meals",
	Short: "List a day's meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := service.ParseSortKey(mealsSort)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			day, err := mealsDay(a)
			if err != nil {
				return err
			}
			res, err := a.LoadMeals(ctx, day)
			if err != nil {
				return err
			}
			now := a.Now()
			report := mealsReport{
				Date:   day.Format(service.DateLayout),
				Origin: res.Origin,
				Totals: totalsOf(res.Meals),
				Meals:  make([]mealRow, 0, len(res.Meals)),
			}
			if !res.FetchedAt.IsZero() {
				report.FetchedAt = &res.FetchedAt
			}
			// The timestamp fallback is the meal's position as loaded, not as sorted.
			for _, idx := range service.SortOrder(res.Meals, key, now) {
				m := res.Meals[idx]
				row := mealRow{Meal: m, ResolvedAt: service.ResolveTimestamp(m, idx, now)}
				if mealsTags {
					row.Tags = service.TagsFor(m)
				}
				report.Meals = append(report.Meals, row)
			}

			if mealsJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			out := cmd.OutOrStdout()
			if note := originNote(res.Origin, res.LiveErr); note != "" {
				fmt.Fprintf(out, "Source: %s\n", note)
			}
			rows := report.Meals
			if len(rows) == 0 {
				fmt.Fprintf(out, "No meals on %s\n", report.Date)
				return nil
			}
			fmt.Fprintln(out, "TIME\tNAME\tKCAL\tP\tC\tF\tSUGAR\tSCORE")
			for _, row := range rows {
				macros := row.Macros()
				if macros == nil {
					macros = &model.Macronutrients{}
				}
				var score *float64
				if adv := row.Advanced(); adv != nil {
					score = adv.MealHealthScore
				}
				fmt.Fprintf(out, "%s\t%s\t%.0f\t%s\t%s\t%s\t%s\t%s\n",
					mealTime(row.ResolvedAt), row.Name, row.Calories,
					formatOptional(macros.Protein, "%.0f"), formatOptional(macros.Carbs, "%.0f"), formatOptional(macros.Fat, "%.0f"),
					formatOptional(macros.Sugar, "%.0f"), formatOptional(score, "%.1f"))
				if mealsTags {
					labels := make([]string, 0, len(row.Tags))
					for _, tag := range row.Tags {
						labels = append(labels, tag.Label)
					}
					fmt.Fprintf(out, "\t%s\n", strings.Join(labels, ", "))
				}
			}
			t := report.Totals
			fmt.Fprintf(out, "TOTAL\t%d meals\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t\n", len(rows), t.Calories, t.Protein, t.Carbs, t.Fat, t.Sugar)
			return nil
		})
	},
}

var mealsTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show a metric across the last N meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		metric, err := service.ParseTrendMetric(trendMetric)
		if err != nil {
			return err
		}
		if trendCount <= 0 {
			return fmt.Errorf("--count must be > 0")
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			day, err := mealsDay(a)
			if err != nil {
				return err
			}
			res, err := a.LoadMeals(ctx, day)
			if err != nil {
				return err
			}
			values := service.Trend(res.Meals, metric, trendCount)
			if mealsJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"metric": metric, "values": values})
			}
			out := cmd.OutOrStdout()
			if len(values) == 0 {
				fmt.Fprintln(out, "No meals")
				return nil
			}
			maxV := 0.0
			for _, v := range values {
				maxV = max(maxV, v)
			}
			width := barWidth(out)
			fmt.Fprintf(out, "%s (last %d meals): %s\n", metric, len(values), sparkline(values))
			for i, v := range values {
				fmt.Fprintf(out, "  %2d %s %.1f\n", i+1, horizontalBar(v, maxV, width), v)
			}
			return nil
		})
	},
}

func mealsDay(a *app.App) (time.Time, error) {
	if strings.TrimSpace(mealsDate) == "" {
		now := a.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	t, err := time.ParseInLocation(service.DateLayout, strings.TrimSpace(mealsDate), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", mealsDate)
	}
	return t, nil
}

func mealTime(ms int64) string {
	if ms < 1e11 {
		return "--:--"
	}
	return time.UnixMilli(ms).Local().Format("15:04")
}

func init() {
	rootCmd.AddCommand(mealsCmd)
	mealsCmd.AddCommand(mealsTrendCmd)

	mealsCmd.PersistentFlags().StringVar(&mealsDate, "date", "", "Day YYYY-MM-DD (default today)")
	mealsCmd.PersistentFlags().BoolVar(&mealsJSON, "json", false, "Output as JSON")
	mealsCmd.Flags().StringVar(&mealsSort, "sort", "newest", "Sort: newest|oldest|calories_desc|calories_asc|sugar_desc|sugar_asc|protein_desc|protein_asc|health_desc|health_asc")
	mealsCmd.Flags().BoolVar(&mealsTags, "tags", false, "Show derived meal tags")
	mealsTrendCmd.Flags().StringVar(&trendMetric, "metric", "calories", "Metric: calories|protein|carbs|fat|fiber|sugar")
	mealsTrendCmd.Flags().IntVar(&trendCount, "count", 7, "Number of most recent meals")
}
