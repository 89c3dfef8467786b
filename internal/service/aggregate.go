package service

import (
	"math"

	"github.com/ahaar/ahaar-cli/internal/model"
)

// Aggregate sums meal-level nutrients into period totals. A missing value
// contributes 0, so Aggregate(nil) is the zero PeriodTotals. Vitamins and
// minerals are not summed here; period views receive them pre-aggregated.
func Aggregate(meals []model.Meal) model.PeriodTotals {
	var out model.PeriodTotals
	for _, m := range meals {
		out.Calories += mealCalories(m)
		if macros := m.Macros(); macros != nil {
			out.Protein += valueOr(macros.Protein, 0)
			out.Carbs += valueOr(macros.Carbs, 0)
			out.Fat += valueOr(macros.Fat, 0)
			out.Fiber += valueOr(macros.Fiber, 0)
			out.Sugar += valueOr(macros.Sugar, 0)
		}
		if m.Nutrition != nil && m.Nutrition.OtherNutrients != nil {
			out.Sodium += valueOr(m.Nutrition.OtherNutrients.Sodium, 0)
			out.Cholesterol += valueOr(m.Nutrition.OtherNutrients.Cholesterol, 0)
		}
	}
	if len(meals) > 0 {
		out.Meals = append(make([]model.Meal, 0, len(meals)), meals...)
	}
	return out
}

// Recompute re-derives the numeric totals of a period report from its meals
// and carries the server's vitamin and mineral arrays through unchanged.
func Recompute(report model.PeriodTotals) model.PeriodTotals {
	out := Aggregate(report.Meals)
	out.Vitamins = report.Vitamins
	out.Minerals = report.Minerals
	return out
}

// FillTotals recomputes the numeric totals from the meals when the report
// carries meals but every numeric total is zero. The bool reports whether it
// did.
func FillTotals(report model.PeriodTotals) (model.PeriodTotals, bool) {
	if len(report.Meals) == 0 || !numericTotalsZero(report) {
		return report, false
	}
	return Recompute(report), true
}

func numericTotalsZero(t model.PeriodTotals) bool {
	return t.Calories == 0 && t.Protein == 0 && t.Carbs == 0 && t.Fat == 0 &&
		t.Fiber == 0 && t.Sugar == 0 && t.Sodium == 0 && t.Cholesterol == 0
}

func mealCalories(m model.Meal) float64 {
	if m.Calories != 0 {
		return m.Calories
	}
	if m.Nutrition != nil {
		return valueOr(m.Nutrition.Calories, 0)
	}
	return 0
}

// LatestAdvanced returns the last meal in input order that carries an
// extended analysis record.
func LatestAdvanced(meals []model.Meal) (model.Meal, bool) {
	for i := len(meals) - 1; i >= 0; i-- {
		if meals[i].Advanced() != nil {
			return meals[i], true
		}
	}
	return model.Meal{}, false
}

type Targets struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// DefaultTargets are the daily targets the dashboard cards compare against.
var DefaultTargets = Targets{Calories: 2000, ProteinG: 150, CarbsG: 250, FatG: 65}

func (t Targets) Validate() error {
	if err := validateNonNegativeFloat("calorie target", t.Calories); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("protein target", t.ProteinG); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("carbs target", t.CarbsG); err != nil {
		return err
	}
	return validateNonNegativeFloat("fat target", t.FatG)
}

type Progress struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Target  float64 `json:"target"`
	Unit    string  `json:"unit"`
	Percent float64 `json:"percent"`
}

// PercentOfTarget is value/target as a percentage capped at 100. A
// non-positive target yields 0.
func PercentOfTarget(value, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(100, (value/target)*100)
}

// ProgressFor compares period totals with targets for the four summary cards.
func ProgressFor(totals model.PeriodTotals, targets Targets) []Progress {
	rows := []Progress{
		{Name: "Calories", Value: totals.Calories, Target: targets.Calories, Unit: "kcal"},
		{Name: "Protein", Value: totals.Protein, Target: targets.ProteinG, Unit: "g"},
		{Name: "Carbs", Value: totals.Carbs, Target: targets.CarbsG, Unit: "g"},
		{Name: "Fat", Value: totals.Fat, Target: targets.FatG, Unit: "g"},
	}
	for i := range rows {
		rows[i].Percent = PercentOfTarget(rows[i].Value, rows[i].Target)
	}
	return rows
}
