package model

// Optional numeric fields are pointers: nil means "unknown" to the display
// layer. Arithmetic helpers in internal/service coerce nil to 0 where they
// accumulate.

type Macronutrients struct {
	Protein *float64 `json:"protein,omitempty"`
	Carbs   *float64 `json:"carbs,omitempty"`
	Fat     *float64 `json:"fat,omitempty"`
	Fiber   *float64 `json:"fiber,omitempty"`
	Sugar   *float64 `json:"sugar,omitempty"`
}

type OtherNutrients struct {
	Sodium      *float64 `json:"sodium,omitempty"`
	Cholesterol *float64 `json:"cholesterol,omitempty"`
}

// Nutrient is one vitamin or mineral amount. The unit travels with the entry
// and is not normalized at the record layer.
type Nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type Micronutrients struct {
	Vitamins []Nutrient `json:"vitamins,omitempty"`
	Minerals []Nutrient `json:"minerals,omitempty"`
}

type FattyAcids struct {
	Omega3             *float64 `json:"omega_3,omitempty"`
	Omega6             *float64 `json:"omega_6,omitempty"`
	Omega3To6Ratio     *float64 `json:"omega_3_to_6_ratio,omitempty"`
	SaturatedFat       *float64 `json:"saturated_fat,omitempty"`
	MonounsaturatedFat *float64 `json:"monounsaturated_fat,omitempty"`
	PolyunsaturatedFat *float64 `json:"polyunsaturated_fat,omitempty"`
}

type BurnTimeEquivalents struct {
	WalkingMinutes *float64 `json:"walking_minutes,omitempty"`
	JoggingMinutes *float64 `json:"jogging_minutes,omitempty"`
	CyclingMinutes *float64 `json:"cycling_minutes,omitempty"`
}

type Sourcing struct {
	Local   *bool `json:"local,omitempty"`
	Organic *bool `json:"organic,omitempty"`
}

type Environmental struct {
	CarbonFootprintGCO2 *float64  `json:"carbon_footprint_g_co2,omitempty"`
	WaterUsageLiters    *float64  `json:"water_usage_liters,omitempty"`
	Sourcing            *Sourcing `json:"sourcing,omitempty"`
}

type Historical struct {
	AISuggestions []string `json:"ai_suggestions,omitempty"`
}

type NutritionAdvanced struct {
	MealHealthScore       *float64             `json:"meal_health_score,omitempty"`
	GlycemicIndex         *float64             `json:"glycemic_index,omitempty"`
	GlycemicLoad          *float64             `json:"glycemic_load,omitempty"`
	AntioxidantORAC       *float64             `json:"antioxidant_orac,omitempty"`
	DietCompatibility     []string             `json:"diet_compatibility,omitempty"`
	PotentialAllergens    []string             `json:"potential_allergens,omitempty"`
	DeficiencyAlerts      []string             `json:"deficiency_alerts,omitempty"`
	ExcessiveIntakeAlerts []string             `json:"excessive_intake_alerts,omitempty"`
	FattyAcids            *FattyAcids          `json:"fatty_acids,omitempty"`
	BurnTimeEquivalents   *BurnTimeEquivalents `json:"burn_time_equivalents,omitempty"`
	Environmental         *Environmental       `json:"environmental,omitempty"`
	WorkoutEnergyMatch    string               `json:"workout_energy_match,omitempty"`
	Historical            *Historical          `json:"historical,omitempty"`
	AminoAcidProfile      map[string]float64   `json:"amino_acid_profile,omitempty"`
}

// Nutrition is the analysis payload the backend attaches to a meal.
type Nutrition struct {
	FoodName       string             `json:"food_name,omitempty"`
	ServingSize    string             `json:"serving_size,omitempty"`
	Calories       *float64           `json:"calories,omitempty"`
	Macronutrients *Macronutrients    `json:"macronutrients,omitempty"`
	Micronutrients *Micronutrients    `json:"micronutrients,omitempty"`
	OtherNutrients *OtherNutrients    `json:"other_nutrients,omitempty"`
	Advanced       *NutritionAdvanced `json:"advanced,omitempty"`
	Confidence     *float64           `json:"confidence,omitempty"`
}

type Meal struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id,omitempty"`
	Name      string     `json:"name"`
	Time      string     `json:"time,omitempty"`
	Date      string     `json:"date,omitempty"`
	Datetime  string     `json:"datetime,omitempty"`
	CreatedAt string     `json:"createdAt,omitempty"`
	Timestamp *Timestamp `json:"timestamp,omitempty"`
	Calories  float64    `json:"calories"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	Nutrition *Nutrition `json:"nutrition,omitempty"`
}

// Macros returns the meal's macronutrient group, or nil when absent.
func (m Meal) Macros() *Macronutrients {
	if m.Nutrition == nil {
		return nil
	}
	return m.Nutrition.Macronutrients
}

// Advanced returns the meal's extended analysis, or nil when absent.
func (m Meal) Advanced() *NutritionAdvanced {
	if m.Nutrition == nil {
		return nil
	}
	return m.Nutrition.Advanced
}

// PeriodTotals is the aggregate the backend returns for a daily, weekly or
// monthly window.
type PeriodTotals struct {
	Calories    float64    `json:"calories"`
	Protein     float64    `json:"protein"`
	Carbs       float64    `json:"carbs"`
	Fat         float64    `json:"fat"`
	Fiber       float64    `json:"fiber"`
	Sugar       float64    `json:"sugar"`
	Sodium      float64    `json:"sodium"`
	Cholesterol float64    `json:"cholesterol"`
	Vitamins    []Nutrient `json:"vitamins"`
	Minerals    []Nutrient `json:"minerals"`
	Meals       []Meal     `json:"meals"`
}

// FindMineral returns the first mineral with the given name.
func (p PeriodTotals) FindMineral(name string) (Nutrient, bool) {
	return findNutrient(p.Minerals, name)
}

// FindVitamin returns the first vitamin with the given name.
func (p PeriodTotals) FindVitamin(name string) (Nutrient, bool) {
	return findNutrient(p.Vitamins, name)
}

func findNutrient(list []Nutrient, name string) (Nutrient, bool) {
	for _, n := range list {
		if n.Name == name {
			return n, true
		}
	}
	return Nutrient{}, false
}

// Float returns a pointer to v. Handy for building records in code and tests.
func Float(v float64) *float64 {
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}
