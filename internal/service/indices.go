package service

import (
	"math"

	"github.com/ahaar/ahaar-cli/internal/model"
)

// Reference limits used by the cardiovascular and sodium scores.
const (
	SodiumLimitMg       = 2300
	CholesterolLimitMg  = 300
	SaturatedFatLimitG  = 20
	PotassiumTargetMg   = 4700
	essentialAminoCount = 9
)

// MacroCalories is the energy contributed by each macronutrient, in kcal.
type MacroCalories struct {
	Protein float64 `json:"protein_kcal"`
	Carbs   float64 `json:"carbs_kcal"`
	Fat     float64 `json:"fat_kcal"`
}

// MacroCaloriesFromGrams applies 4/4/9 kcal per gram.
func MacroCaloriesFromGrams(proteinG, carbsG, fatG float64) MacroCalories {
	return MacroCalories{Protein: proteinG * 4, Carbs: carbsG * 4, Fat: fatG * 9}
}

func (m MacroCalories) Total() float64 {
	return m.Protein + m.Carbs + m.Fat
}

// Shares returns each macro's fraction of total energy; all zero when there
// is no energy to split.
func (m MacroCalories) Shares() (protein, carbs, fat float64) {
	total := m.Total()
	if total <= 0 {
		return 0, 0, 0
	}
	return m.Protein / total, m.Carbs / total, m.Fat / total
}

type MacroQualityInput struct {
	Calories         MacroCalories
	FattyAcids       *model.FattyAcids
	AminoAcidProfile map[string]float64
}

// MacroQualityIndex averages a 30/45/25 energy-balance score, a fat quality
// score (saturated vs unsaturated) and amino acid completeness, on 0-10.
func MacroQualityIndex(in MacroQualityInput) float64 {
	balance := 0.0
	if in.Calories.Total() > 0 {
		p, c, f := in.Calories.Shares()
		balance = 10 - 20*math.Abs(p-0.30) - 20*math.Abs(c-0.45) - 20*math.Abs(f-0.25)
	}

	var sat, mono, poly float64
	if fa := in.FattyAcids; fa != nil {
		sat = valueOr(fa.SaturatedFat, 0)
		mono = valueOr(fa.MonounsaturatedFat, 0)
		poly = valueOr(fa.PolyunsaturatedFat, 0)
	}
	fatQuality := math.Max(0, 10-2*math.Max(0, sat-(mono+poly)))

	aaCompleteness := 5.0
	if in.AminoAcidProfile != nil {
		known := 0
		for _, v := range in.AminoAcidProfile {
			if v > 0 {
				known++
			}
		}
		aaCompleteness = math.Min(10, float64(known)/essentialAminoCount*10)
	}

	return clamp((balance+fatQuality+aaCompleteness)/3, 0, 10)
}

type HeartRiskInput struct {
	SodiumMg      float64
	CholesterolMg float64
	SaturatedFatG float64
	// PotassiumMg is protective; nil means unknown and grants no protection.
	PotassiumMg *float64
}

// HeartRiskIndex scores cardiovascular risk on 0-10, higher is worse.
func HeartRiskIndex(in HeartRiskInput) float64 {
	sodiumRisk := math.Min(10, in.SodiumMg/SodiumLimitMg*10)
	cholRisk := math.Min(10, in.CholesterolMg/CholesterolLimitMg*10)
	satRisk := math.Min(10, in.SaturatedFatG/SaturatedFatLimitG*10)
	protection := 0.0
	if in.PotassiumMg != nil && *in.PotassiumMg > 0 {
		protection = math.Min(5, *in.PotassiumMg/PotassiumTargetMg*5)
	}
	return clamp(sodiumRisk+cholRisk+satRisk-protection, 0, 10)
}

// SodiumSafetyScore is 10 at zero sodium falling to 0 at the daily limit.
func SodiumSafetyScore(sodiumMg float64) float64 {
	return clamp01(1-sodiumMg/SodiumLimitMg) * 10
}

// Dashboard defaults when a meal carries no glycemic data.
const (
	DefaultGlycemicIndex = 50
	DefaultGlycemicLoad  = 10
)

type GlycemicInput struct {
	GlycemicIndex *float64
	GlycemicLoad  *float64
	FiberG        float64
}

// GlycemicToleranceIndex rewards low GI/GL and fiber, on 0-10.
func GlycemicToleranceIndex(in GlycemicInput) float64 {
	gi := valueOr(in.GlycemicIndex, DefaultGlycemicIndex)
	gl := valueOr(in.GlycemicLoad, DefaultGlycemicLoad)
	fiberProtect := math.Min(4, in.FiberG/7)
	return clamp(10-gi/10-gl/5+fiberProtect, 0, 10)
}

type band struct{ lo, hi float64 }

var (
	fuelProteinBand = band{0.20, 0.30}
	fuelCarbsBand   = band{0.50, 0.60}
	fuelFatBand     = band{0.20, 0.30}
)

// closeness is 10 inside the band and loses 50 points per unit of ratio
// outside it, measured from the nearest edge.
func (b band) closeness(v float64) float64 {
	if v >= b.lo && v <= b.hi {
		return 10
	}
	dist := math.Min(math.Abs(v-b.lo), math.Abs(v-b.hi))
	return math.Max(0, 10-dist*50)
}

// FuelingScore rates an athletic macro split (protein 20-30%, carbs 50-60%,
// fat 20-30% of energy) on 0-10. No energy scores 0.
func FuelingScore(cals MacroCalories) float64 {
	if cals.Total() <= 0 {
		return 0
	}
	p, c, f := cals.Shares()
	mean := (fuelProteinBand.closeness(p) + fuelCarbsBand.closeness(c) + fuelFatBand.closeness(f)) / 3
	return clamp(mean, 0, 10)
}

// HealthCategory buckets a 0-10 meal health score for the summary panel.
func HealthCategory(score float64) string {
	switch {
	case score >= 8:
		return "Excellent"
	case score >= 5:
		return "Balanced"
	default:
		return "Needs Improvement"
	}
}

// GaugeFraction is the filled share of a gauge with the given maximum.
func GaugeFraction(value, maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	return clamp(value, 0, maxValue) / maxValue
}
