package service

import (
	"strings"

	"github.com/ahaar/ahaar-cli/internal/model"
)

// MaxPercentOfRDA caps percentOfRDA so one outlier cannot flatten a chart.
const MaxPercentOfRDA = 200

type rdaDef struct {
	value float64
	unit  string
}

// rdaTable holds adult reference amounts in the unit listed per entry.
var rdaTable = map[string]rdaDef{
	"Vitamin A":  {value: 900, unit: "mcg"},
	"Vitamin C":  {value: 90, unit: "mg"},
	"Vitamin D":  {value: 20, unit: "mcg"},
	"Vitamin E":  {value: 15, unit: "mg"},
	"Vitamin K":  {value: 120, unit: "mcg"},
	"Folate":     {value: 400, unit: "mcg"},
	"Calcium":    {value: 1000, unit: "mg"},
	"Iron":       {value: 8, unit: "mg"},
	"Magnesium":  {value: 400, unit: "mg"},
	"Phosphorus": {value: 700, unit: "mg"},
	"Potassium":  {value: 4700, unit: "mg"},
	"Zinc":       {value: 11, unit: "mg"},
	"Copper":     {value: 0.9, unit: "mg"},
	"Manganese":  {value: 2.3, unit: "mg"},
	"Selenium":   {value: 55, unit: "mcg"},
}

// RadarNutrients is the fixed vitamin/mineral selection plotted on the radar.
var RadarNutrients = []string{
	"Vitamin A", "Vitamin C", "Vitamin D", "Vitamin E", "Vitamin K", "Folate",
	"Calcium", "Iron", "Magnesium", "Phosphorus", "Potassium", "Zinc",
}

type RDAProgress struct {
	PercentOfRDA float64 `json:"percent_of_rda"`
	RDAValue     float64 `json:"rda_value_mg"`
}

// RDAReference returns the reference amount and its unit for name.
func RDAReference(name string) (float64, string, bool) {
	def, ok := rdaTable[name]
	if !ok {
		return 0, "", false
	}
	return def.value, def.unit, true
}

// NormalizeNutrient converts amount to milligrams and compares it with the
// reference table. It reports false for nutrients the table does not know;
// callers skip those.
func NormalizeNutrient(name string, amount float64, unit string) (RDAProgress, bool) {
	def, ok := rdaTable[name]
	if !ok || def.value == 0 {
		return RDAProgress{}, false
	}
	mg := toMilligrams(amount, unit)
	rdaMg := def.value
	if def.unit == "mcg" {
		rdaMg = def.value / 1000
	}
	pct := (mg / rdaMg) * 100
	if pct > MaxPercentOfRDA {
		pct = MaxPercentOfRDA
	}
	return RDAProgress{PercentOfRDA: pct, RDAValue: rdaMg}, true
}

// toMilligrams scales micrograms and grams; any other unit passes through as
// milligrams.
func toMilligrams(amount float64, unit string) float64 {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "mcg", "µg", "μg", "ug":
		return amount / 1000
	case "g":
		return amount * 1000
	default:
		return amount
	}
}

type MicronutrientStatus string

const (
	MicronutrientDeficient MicronutrientStatus = "deficient"
	MicronutrientAdequate  MicronutrientStatus = "adequate"
	MicronutrientExcess    MicronutrientStatus = "excess"
)

type MicronutrientReading struct {
	Name         string              `json:"name"`
	Amount       float64             `json:"amount"`
	Unit         string              `json:"unit"`
	PercentOfRDA float64             `json:"percent_of_rda"`
	RDAValue     float64             `json:"rda_value_mg"`
	Status       MicronutrientStatus `json:"status"`
}

type MicronutrientBuckets struct {
	Deficient int `json:"deficient"`
	Adequate  int `json:"adequate"`
	Excess    int `json:"excess"`
}

type RadarPoint struct {
	Name         string  `json:"name"`
	PercentOfRDA float64 `json:"percent_of_rda"`
}

func statusFor(pct float64) MicronutrientStatus {
	switch {
	case pct < 80:
		return MicronutrientDeficient
	case pct <= 120:
		return MicronutrientAdequate
	default:
		return MicronutrientExcess
	}
}

// ClassifyMicronutrients normalizes every recognised vitamin and mineral and
// counts how many are deficient (<80%), adequate (80-120%) or in excess.
func ClassifyMicronutrients(vitamins, minerals []model.Nutrient) ([]MicronutrientReading, MicronutrientBuckets) {
	readings := make([]MicronutrientReading, 0, len(vitamins)+len(minerals))
	buckets := MicronutrientBuckets{}
	for _, group := range [][]model.Nutrient{vitamins, minerals} {
		for _, n := range group {
			norm, ok := NormalizeNutrient(n.Name, n.Amount, n.Unit)
			if !ok {
				continue
			}
			status := statusFor(norm.PercentOfRDA)
			switch status {
			case MicronutrientDeficient:
				buckets.Deficient++
			case MicronutrientAdequate:
				buckets.Adequate++
			default:
				buckets.Excess++
			}
			readings = append(readings, MicronutrientReading{
				Name:         n.Name,
				Amount:       n.Amount,
				Unit:         n.Unit,
				PercentOfRDA: norm.PercentOfRDA,
				RDAValue:     norm.RDAValue,
				Status:       status,
			})
		}
	}
	return readings, buckets
}

// MicronutrientRadar returns % of RDA for RadarNutrients in order. A nutrient
// missing from the input plots as 0.
func MicronutrientRadar(vitamins, minerals []model.Nutrient) []RadarPoint {
	points := make([]RadarPoint, 0, len(RadarNutrients))
	for _, name := range RadarNutrients {
		p := RadarPoint{Name: name}
		if n, ok := firstNutrient(name, vitamins, minerals); ok {
			if norm, ok := NormalizeNutrient(name, n.Amount, n.Unit); ok {
				p.PercentOfRDA = norm.PercentOfRDA
			}
		}
		points = append(points, p)
	}
	return points
}

func firstNutrient(name string, groups ...[]model.Nutrient) (model.Nutrient, bool) {
	for _, g := range groups {
		for _, n := range g {
			if n.Name == name {
				return n, true
			}
		}
	}
	return model.Nutrient{}, false
}
