package service_test

import (
	"reflect"
	"testing"

	"github.com/ahaar/ahaar-cli/internal/model"
	"github.com/ahaar/ahaar-cli/internal/service"
)

func labels(tags []service.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Label)
	}
	return out
}

func hasLabel(tags []service.Tag, label string) bool {
	for _, t := range tags {
		if t.Label == label {
			return true
		}
	}
	return false
}

func mealWithMacros(calories float64, macros model.Macronutrients) model.Meal {
	return model.Meal{
		Name:      "test meal",
		Calories:  calories,
		Nutrition: &model.Nutrition{Macronutrients: &macros},
	}
}

func TestTagsForFattyOilyMeal(t *testing.T) {
	t.Parallel()
	m := mealWithMacros(600, model.Macronutrients{
		Fat: model.Float(30), Fiber: model.Float(2), Sugar: model.Float(5),
		Protein: model.Float(10), Carbs: model.Float(20),
	})
	tags := service.TagsFor(m)
	if !hasLabel(tags, "Too Fatty") || !hasLabel(tags, "Too Oily") {
		t.Fatalf("expected Too Fatty and Too Oily, got %v", labels(tags))
	}
	if len(tags) < 2 {
		t.Fatalf("expected at least 2 tags, got %v", labels(tags))
	}
	if hasLabel(tags, "Low Carb") {
		t.Fatalf("carbs == 20 must not be Low Carb, got %v", labels(tags))
	}
}

func TestTagsForAbsentMacrosPadsToBalanced(t *testing.T) {
	t.Parallel()
	got := labels(service.TagsFor(model.Meal{Name: "mystery", Calories: 300}))
	want := []string{"Light Meal", "Balanced"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	dense := labels(service.TagsFor(model.Meal{Name: "mystery", Calories: 800}))
	if !reflect.DeepEqual(dense, []string{"Calorie Dense", "Balanced"}) {
		t.Fatalf("expected calorie dense padding, got %v", dense)
	}
}

func TestTagsForRuleOrderAndRatioPadding(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		meal model.Meal
		want []string
	}{
		{
			name: "protein forward",
			meal: mealWithMacros(300, model.Macronutrients{Protein: model.Float(18), Carbs: model.Float(25)}),
			want: []string{"Light Meal", "Protein Forward"},
		},
		{
			name: "carb forward",
			meal: mealWithMacros(300, model.Macronutrients{Protein: model.Float(5), Carbs: model.Float(40)}),
			want: []string{"Light Meal", "Carb Forward"},
		},
		{
			name: "two rules skip calorie padding",
			meal: mealWithMacros(520, model.Macronutrients{Protein: model.Float(35), Carbs: model.Float(70)}),
			want: []string{"High Protein", "High Carb", "Carb Forward"},
		},
		{
			name: "healthy food",
			meal: mealWithMacros(340, model.Macronutrients{
				Protein: model.Float(8), Carbs: model.Float(60), Fat: model.Float(7),
				Fiber: model.Float(8), Sugar: model.Float(6),
			}),
			want: []string{"Healthy Food", "Fiber Rich", "Low Sugar"},
		},
	}
	for _, tc := range cases {
		got := labels(service.TagsFor(tc.meal))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestTagsForAdvancedRules(t *testing.T) {
	t.Parallel()
	m := model.Meal{
		Name:     "salmon bowl",
		Calories: 450,
		Nutrition: &model.Nutrition{Advanced: &model.NutritionAdvanced{
			MealHealthScore:    model.Float(8.2),
			GlycemicIndex:      model.Float(40),
			PotentialAllergens: []string{"Fish", "Soy"},
			Environmental: &model.Environmental{
				Sourcing: &model.Sourcing{Organic: model.Bool(true)},
			},
		}},
	}
	got := labels(service.TagsFor(m))
	want := []string{"Healthy", "Low GI", "Contains Fish", "Organic"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	m.Nutrition.Advanced = &model.NutritionAdvanced{MealHealthScore: model.Float(5), GlycemicIndex: model.Float(62)}
	if got := labels(service.TagsFor(m)); !reflect.DeepEqual(got, []string{"Balanced", "Light Meal", "Balanced"}) {
		t.Fatalf("unexpected mid-score tags: %v", got)
	}
}

func TestTagsForIsIdempotent(t *testing.T) {
	t.Parallel()
	m := mealWithMacros(600, model.Macronutrients{Fat: model.Float(22), Carbs: model.Float(10)})
	first := service.TagsFor(m)
	second := service.TagsFor(m)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical tags, got %v and %v", first, second)
	}
}
