package service

import (
	"math"
	"strings"

	"github.com/ahaar/ahaar-cli/internal/model"
)

const (
	maxRiskFlags    = 5
	trendWindow     = 7
	minBubbleRadius = 4
	maxBubbleRadius = 20
)

// CommonAllergens is the fixed allergen matrix shown for the latest meal.
var CommonAllergens = []string{"Gluten", "Dairy", "Soy", "Nuts", "Shellfish", "Egg"}

type InsightsInput struct {
	Range   PeriodRange
	Totals  model.PeriodTotals
	Targets Targets
}

type MacroSplit struct {
	Calories     MacroCalories `json:"calories"`
	ProteinShare float64       `json:"protein_share"`
	CarbsShare   float64       `json:"carbs_share"`
	FatShare     float64       `json:"fat_share"`
}

type IndexScores struct {
	MacroQuality      float64 `json:"macro_quality"`
	HeartRisk         float64 `json:"heart_risk"`
	SodiumSafety      float64 `json:"sodium_safety"`
	GlycemicTolerance float64 `json:"glycemic_tolerance"`
	Fueling           float64 `json:"fueling"`
}

type AllergenStatus struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

type EnvironmentalBubble struct {
	Meal       string  `json:"meal"`
	CarbonGCO2 float64 `json:"carbon_g_co2"`
	WaterL     float64 `json:"water_l"`
	Radius     float64 `json:"radius"`
}

type MealTags struct {
	Meal string `json:"meal"`
	Tags []Tag  `json:"tags"`
}

type NutrientTotals struct {
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Fiber       float64 `json:"fiber"`
	Sugar       float64 `json:"sugar"`
	Sodium      float64 `json:"sodium"`
	Cholesterol float64 `json:"cholesterol"`
}

// AdvancedPanel lists the extended analysis fields of the latest analysed
// meal. A nil field is unknown.
type AdvancedPanel struct {
	Meal               string   `json:"meal"`
	AntioxidantORAC    *float64 `json:"antioxidant_orac"`
	DietCompatibility  []string `json:"diet_compatibility"`
	Omega3             *float64 `json:"omega_3"`
	Omega6             *float64 `json:"omega_6"`
	Omega3To6Ratio     *float64 `json:"omega_3_to_6_ratio"`
	SaturatedFat       *float64 `json:"saturated_fat"`
	MonounsaturatedFat *float64 `json:"monounsaturated_fat"`
	PolyunsaturatedFat *float64 `json:"polyunsaturated_fat"`
	WorkoutEnergyMatch *string  `json:"workout_energy_match"`
	Local              *bool    `json:"local"`
	Organic            *bool    `json:"organic"`
}

type InsightsReport struct {
	Period          Period                     `json:"period"`
	From            string                     `json:"from"`
	To              string                     `json:"to"`
	MealCount       int                        `json:"meal_count"`
	Totals          NutrientTotals             `json:"totals"`
	Progress        []Progress                 `json:"progress"`
	MacroSplit      MacroSplit                 `json:"macro_split"`
	Micronutrients  []MicronutrientReading     `json:"micronutrients"`
	MicroBuckets    MicronutrientBuckets       `json:"micronutrient_buckets"`
	Radar           []RadarPoint               `json:"radar"`
	Indices         IndexScores                `json:"indices"`
	LatestMeal      string                     `json:"latest_meal,omitempty"`
	HealthScore     *float64                   `json:"health_score,omitempty"`
	HealthCategory  string                     `json:"health_category,omitempty"`
	RiskFlags       []string                   `json:"risk_flags"`
	Recommendations []string                   `json:"recommendations"`
	Allergens       []AllergenStatus           `json:"allergens"`
	Environmental   []EnvironmentalBubble      `json:"environmental"`
	BurnTime        *model.BurnTimeEquivalents `json:"burn_time,omitempty"`
	GlycemicLoad    float64                    `json:"glycemic_load"`
	GlucoseCurve    []CurvePoint               `json:"glucose_curve"`
	Absorption      AbsorptionCurves           `json:"absorption"`
	CalorieTrend    []float64                  `json:"calorie_trend"`
	ProteinTrend    []float64                  `json:"protein_trend"`
	MealTags        []MealTags                 `json:"meal_tags"`
	Advanced        *AdvancedPanel             `json:"advanced,omitempty"`
}

// BuildInsights computes every dashboard panel for one period. Panels that
// read the extended analysis use only the latest meal carrying one.
// The web dashboard read most of those panels from the first meal instead.
func BuildInsights(in InsightsInput) InsightsReport {
	t := in.Totals
	latest, hasLatest := LatestAdvanced(t.Meals)
	var adv *model.NutritionAdvanced
	if hasLatest {
		adv = latest.Advanced()
	}

	cals := MacroCaloriesFromGrams(t.Protein, t.Carbs, t.Fat)
	p, c, f := cals.Shares()

	readings, buckets := ClassifyMicronutrients(t.Vitamins, t.Minerals)

	report := InsightsReport{
		Period:    in.Range.Period,
		From:      in.Range.From.Format(DateLayout),
		To:        in.Range.To.Format(DateLayout),
		MealCount: len(t.Meals),
		Totals: NutrientTotals{
			Calories: t.Calories, Protein: t.Protein, Carbs: t.Carbs, Fat: t.Fat,
			Fiber: t.Fiber, Sugar: t.Sugar, Sodium: t.Sodium, Cholesterol: t.Cholesterol,
		},
		Progress:        ProgressFor(t, in.Targets),
		MacroSplit:      MacroSplit{Calories: cals, ProteinShare: p, CarbsShare: c, FatShare: f},
		Micronutrients:  readings,
		MicroBuckets:    buckets,
		Radar:           MicronutrientRadar(t.Vitamins, t.Minerals),
		Indices:         indexScores(t, cals, adv),
		RiskFlags:       riskFlags(t, adv),
		Recommendations: recommendations(t, adv),
		Allergens:       allergenMatrix(adv),
		Environmental:   environmentalBubbles(t.Meals),
		CalorieTrend:    Trend(t.Meals, TrendCalories, trendWindow),
		ProteinTrend:    Trend(t.Meals, TrendProtein, trendWindow),
		MealTags:        make([]MealTags, 0, len(t.Meals)),
	}

	var gi, gl *float64
	if adv != nil {
		gi, gl = adv.GlycemicIndex, adv.GlycemicLoad
		report.LatestMeal = latest.Name
		report.BurnTime = adv.BurnTimeEquivalents
		report.Advanced = advancedPanel(latest.Name, adv)
		if s := adv.MealHealthScore; s != nil {
			score := *s
			report.HealthScore = &score
			report.HealthCategory = HealthCategory(score)
		}
	}
	report.GlycemicLoad = EstimateGlycemicLoad(t.Carbs, gi, gl)
	report.GlucoseCurve = GlucoseResponseCurve(t.Carbs, gi)
	report.Absorption = MacroAbsorptionCurves(t.Protein, t.Carbs, t.Fat)

	for _, m := range t.Meals {
		report.MealTags = append(report.MealTags, MealTags{Meal: m.Name, Tags: TagsFor(m)})
	}
	return report
}

func advancedPanel(meal string, adv *model.NutritionAdvanced) *AdvancedPanel {
	out := &AdvancedPanel{
		Meal:              meal,
		AntioxidantORAC:   adv.AntioxidantORAC,
		DietCompatibility: []string{},
	}
	for _, d := range adv.DietCompatibility {
		if d = strings.TrimSpace(d); d != "" {
			out.DietCompatibility = append(out.DietCompatibility, d)
		}
	}
	if fa := adv.FattyAcids; fa != nil {
		out.Omega3, out.Omega6, out.Omega3To6Ratio = fa.Omega3, fa.Omega6, fa.Omega3To6Ratio
		out.SaturatedFat, out.MonounsaturatedFat, out.PolyunsaturatedFat = fa.SaturatedFat, fa.MonounsaturatedFat, fa.PolyunsaturatedFat
	}
	if w := strings.TrimSpace(adv.WorkoutEnergyMatch); w != "" {
		out.WorkoutEnergyMatch = &w
	}
	if env := adv.Environmental; env != nil && env.Sourcing != nil {
		out.Local, out.Organic = env.Sourcing.Local, env.Sourcing.Organic
	}
	return out
}

func indexScores(t model.PeriodTotals, cals MacroCalories, adv *model.NutritionAdvanced) IndexScores {
	mq := MacroQualityInput{Calories: cals}
	heart := HeartRiskInput{SodiumMg: t.Sodium, CholesterolMg: t.Cholesterol}
	gly := GlycemicInput{FiberG: t.Fiber}
	if adv != nil {
		mq.FattyAcids = adv.FattyAcids
		mq.AminoAcidProfile = adv.AminoAcidProfile
		if adv.FattyAcids != nil {
			heart.SaturatedFatG = valueOr(adv.FattyAcids.SaturatedFat, 0)
		}
		gly.GlycemicIndex = adv.GlycemicIndex
		gly.GlycemicLoad = adv.GlycemicLoad
	}
	if k, ok := t.FindMineral("Potassium"); ok {
		mg := toMilligrams(k.Amount, k.Unit)
		heart.PotassiumMg = &mg
	}
	return IndexScores{
		MacroQuality:      MacroQualityIndex(mq),
		HeartRisk:         HeartRiskIndex(heart),
		SodiumSafety:      SodiumSafetyScore(t.Sodium),
		GlycemicTolerance: GlycemicToleranceIndex(gly),
		Fueling:           FuelingScore(cals),
	}
}

func riskFlags(t model.PeriodTotals, adv *model.NutritionAdvanced) []string {
	flags := []string{}
	if t.Sodium > SodiumLimitMg {
		flags = append(flags, "High Sodium")
	}
	if t.Fiber < 20 && t.Sugar > 50 {
		flags = append(flags, "Low Fiber / High Sugar")
	}
	if t.Fat > 80 {
		flags = append(flags, "Excess Total Fat")
	}
	if adv != nil {
		flags = append(flags, adv.ExcessiveIntakeAlerts...)
		flags = append(flags, adv.DeficiencyAlerts...)
	}
	if len(flags) > maxRiskFlags {
		flags = flags[:maxRiskFlags]
	}
	return flags
}

func recommendations(t model.PeriodTotals, adv *model.NutritionAdvanced) []string {
	out := []string{}
	if adv != nil && adv.Historical != nil {
		for _, s := range adv.Historical.AISuggestions {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	if t.Fiber < 25 {
		out = append(out, "Add leafy greens or legumes to boost fiber")
	}
	if t.Protein < 60 {
		out = append(out, "Include a lean protein source in the next meal")
	}
	if iron, ok := t.FindMineral("Iron"); ok && toMilligrams(iron.Amount, iron.Unit) < 8 {
		out = append(out, "Consider iron-rich foods (spinach, lentils)")
	}
	if vc, ok := t.FindVitamin("Vitamin C"); ok && toMilligrams(vc.Amount, vc.Unit) < 75 {
		out = append(out, "Add citrus or bell peppers for Vitamin C")
	}
	return out
}

func allergenMatrix(adv *model.NutritionAdvanced) []AllergenStatus {
	var present []string
	if adv != nil {
		for _, a := range adv.PotentialAllergens {
			present = append(present, strings.ToLower(a))
		}
	}
	out := make([]AllergenStatus, 0, len(CommonAllergens))
	for _, name := range CommonAllergens {
		needle := strings.ToLower(name)
		hit := false
		for _, a := range present {
			if strings.Contains(a, needle) {
				hit = true
				break
			}
		}
		out = append(out, AllergenStatus{Name: name, Present: hit})
	}
	return out
}

func environmentalBubbles(meals []model.Meal) []EnvironmentalBubble {
	out := []EnvironmentalBubble{}
	for _, m := range meals {
		adv := m.Advanced()
		if adv == nil || adv.Environmental == nil {
			continue
		}
		env := adv.Environmental
		if env.CarbonFootprintGCO2 == nil || env.WaterUsageLiters == nil {
			continue
		}
		out = append(out, EnvironmentalBubble{
			Meal:       m.Name,
			CarbonGCO2: *env.CarbonFootprintGCO2,
			WaterL:     *env.WaterUsageLiters,
			Radius:     math.Max(minBubbleRadius, math.Min(maxBubbleRadius, mealCalories(m)/100)),
		})
	}
	return out
}
