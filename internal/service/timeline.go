package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ahaar/ahaar-cli/internal/model"
)

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
const epochMillisThreshold = 1e12

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
	"2006-01-02 3:04 pm",
	"2006-01-02 03:04 PM",
}

var dateOnlyLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var (
	isoDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeOnlyPattern = regexp.MustCompile(`^\d{1,2}:\d{2}(\s?[AaPp][Mm])?$`)
)

// ResolveTimestamp returns the meal's time in epoch milliseconds. It tries, in
// order: the numeric timestamp, ISO datetime fields, date plus time, and a bare
// clock time on now's date. When nothing parses it returns index so the
// original sequence still orders the meal.
func ResolveTimestamp(m model.Meal, index int, now time.Time) int64 {
	if m.Timestamp != nil {
		if v, ok := m.Timestamp.Numeric(); ok {
			if v < epochMillisThreshold {
				return int64(v * 1000)
			}
			return int64(v)
		}
	}

	candidates := []string{m.Datetime, m.CreatedAt}
	if m.Timestamp != nil {
		candidates = append(candidates, m.Timestamp.Text)
	}
	if strings.Contains(m.Time, "T") {
		candidates = append(candidates, m.Time)
	}
	for _, c := range candidates {
		if t, ok := parseISO(c); ok {
			return t.UnixMilli()
		}
	}

	if date := strings.TrimSpace(m.Date); date != "" {
		value := date
		if isoDatePattern.MatchString(date) && strings.TrimSpace(m.Time) != "" {
			value = date + " " + strings.TrimSpace(m.Time)
		}
		if t, ok := parseDateValue(value); ok {
			return t.UnixMilli()
		}
	}

	if clock := strings.TrimSpace(m.Time); timeOnlyPattern.MatchString(clock) {
		if t, ok := parseClockOn(now, clock); ok {
			return t.UnixMilli()
		}
	}

	return int64(index)
}

func parseISO(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDateValue(v string) (time.Time, bool) {
	if t, ok := parseISO(v); ok {
		return t, true
	}
	for _, group := range [][]string{dateTimeLayouts, dateOnlyLayouts} {
		for _, layout := range group {
			if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func parseClockOn(day time.Time, clock string) (time.Time, bool) {
	upper := strings.ToUpper(clock)
	layouts := []string{"15:04"}
	if strings.HasSuffix(upper, "AM") || strings.HasSuffix(upper, "PM") {
		layouts = []string{"3:04 PM", "3:04PM"}
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, upper)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), true
	}
	return time.Time{}, false
}

type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortCaloriesDesc SortKey = "calories_desc"
	SortCaloriesAsc  SortKey = "calories_asc"
	SortSugarDesc    SortKey = "sugar_desc"
	SortSugarAsc     SortKey = "sugar_asc"
	SortProteinDesc  SortKey = "protein_desc"
	SortProteinAsc   SortKey = "protein_asc"
	SortHealthDesc   SortKey = "health_desc"
	SortHealthAsc    SortKey = "health_asc"
)

var SortKeys = []SortKey{
	SortNewest, SortOldest,
	SortCaloriesDesc, SortCaloriesAsc,
	SortSugarDesc, SortSugarAsc,
	SortProteinDesc, SortProteinAsc,
	SortHealthDesc, SortHealthAsc,
}

func ParseSortKey(v string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(v)))
	if key == "" {
		return SortNewest, nil
	}
	for _, k := range SortKeys {
		if k == key {
			return k, nil
		}
	}
	names := make([]string, 0, len(SortKeys))
	for _, k := range SortKeys {
		names = append(names, string(k))
	}
	return "", fmt.Errorf("invalid sort key %q (expected one of %s)", v, strings.Join(names, ", "))
}

// missingSortValue orders meals without the sorted field last when descending
// and first when ascending.
const missingSortValue = -1

type sortRow struct {
	index int
	key   float64
}

// SortOrder returns the input positions of meals in sorted order. Equal keys
// keep their input order.
func SortOrder(meals []model.Meal, key SortKey, now time.Time) []int {
	rows := make([]sortRow, len(meals))
	for i, m := range meals {
		rows[i] = sortRow{index: i, key: sortValue(m, i, key, now)}
	}
	desc := key == SortNewest || strings.HasSuffix(string(key), "_desc")
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return rows[i].key > rows[j].key
		}
		return rows[i].key < rows[j].key
	})
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.index
	}
	return out
}

// SortMeals returns a sorted copy of meals.
func SortMeals(meals []model.Meal, key SortKey, now time.Time) []model.Meal {
	order := SortOrder(meals, key, now)
	out := make([]model.Meal, len(order))
	for i, idx := range order {
		out[i] = meals[idx]
	}
	return out
}

func sortValue(m model.Meal, index int, key SortKey, now time.Time) float64 {
	switch key {
	case SortCaloriesDesc, SortCaloriesAsc:
		return mealCalories(m)
	case SortSugarDesc, SortSugarAsc:
		if macros := m.Macros(); macros != nil {
			return valueOr(macros.Sugar, missingSortValue)
		}
		return missingSortValue
	case SortProteinDesc, SortProteinAsc:
		if macros := m.Macros(); macros != nil {
			return valueOr(macros.Protein, missingSortValue)
		}
		return missingSortValue
	case SortHealthDesc, SortHealthAsc:
		if adv := m.Advanced(); adv != nil {
			return valueOr(adv.MealHealthScore, missingSortValue)
		}
		return missingSortValue
	default:
		return float64(ResolveTimestamp(m, index, now))
	}
}

type TrendMetric string

const (
	TrendCalories TrendMetric = "calories"
	TrendProtein  TrendMetric = "protein"
	TrendCarbs    TrendMetric = "carbs"
	TrendFat      TrendMetric = "fat"
	TrendFiber    TrendMetric = "fiber"
	TrendSugar    TrendMetric = "sugar"
)

func ParseTrendMetric(v string) (TrendMetric, error) {
	switch m := TrendMetric(strings.ToLower(strings.TrimSpace(v))); m {
	case TrendCalories, TrendProtein, TrendCarbs, TrendFat, TrendFiber, TrendSugar:
		return m, nil
	case "":
		return TrendCalories, nil
	default:
		return "", fmt.Errorf("invalid trend metric %q (expected calories|protein|carbs|fat|fiber|sugar)", v)
	}
}

// Trend extracts metric from the last n meals in input order, oldest first.
// Missing values read as 0.
func Trend(meals []model.Meal, metric TrendMetric, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	start := len(meals) - n
	if start < 0 {
		start = 0
	}
	out := make([]float64, 0, len(meals)-start)
	for _, m := range meals[start:] {
		out = append(out, metricValue(m, metric))
	}
	return out
}

func metricValue(m model.Meal, metric TrendMetric) float64 {
	if metric == TrendCalories {
		return mealCalories(m)
	}
	macros := m.Macros()
	if macros == nil {
		return 0
	}
	switch metric {
	case TrendProtein:
		return valueOr(macros.Protein, 0)
	case TrendCarbs:
		return valueOr(macros.Carbs, 0)
	case TrendFat:
		return valueOr(macros.Fat, 0)
	case TrendFiber:
		return valueOr(macros.Fiber, 0)
	case TrendSugar:
		return valueOr(macros.Sugar, 0)
	default:
		return 0
	}
}
