package service

import "github.com/ahaar/ahaar-cli/internal/model"

type Tag struct {
	Label string `json:"label"`
	Style string `json:"style"`
}

const (
	minTagCount    = 2
	targetTagCount = 3
)

// TagsFor derives qualitative labels for a meal. Rules fire independently and
// only when their inputs are present. Short lists are padded with a
// calorie-density tag and then a protein/carb ratio tag so every meal shows
// at least two labels.
func TagsFor(m model.Meal) []Tag {
	tags := make([]Tag, 0, targetTagCount)
	add := func(label, style string) {
		tags = append(tags, Tag{Label: label, Style: style})
	}

	macros := m.Macros()
	if macros == nil {
		macros = &model.Macronutrients{}
	}
	fat, carbs, fiber, sugar, protein := macros.Fat, macros.Carbs, macros.Fiber, macros.Sugar, macros.Protein

	if fat != nil && *fat > 25 {
		add("Too Fatty", "bg-yellow-200 text-yellow-800")
	}
	if fat != nil && carbs != nil && *fat > 20 && *carbs < 30 {
		add("Too Oily", "bg-orange-200 text-orange-800")
	}
	if fat != nil && fiber != nil && sugar != nil && *fat < 15 && *fiber > 5 && *sugar < 10 {
		add("Healthy Food", "bg-green-200 text-green-800")
	}
	if sugar != nil && *sugar > 20 {
		add("High Sugar", "bg-pink-200 text-pink-800")
	}
	if protein != nil && *protein > 20 {
		add("High Protein", "bg-blue-200 text-blue-800")
	}
	if carbs != nil {
		if *carbs > 60 {
			add("High Carb", "bg-amber-200 text-amber-800")
		} else if *carbs < 20 {
			add("Low Carb", "bg-teal-200 text-teal-800")
		}
	}
	if fiber != nil && *fiber >= 8 {
		add("Fiber Rich", "bg-lime-200 text-lime-800")
	}
	if sugar != nil && *sugar < 8 {
		add("Low Sugar", "bg-emerald-200 text-emerald-800")
	}

	if adv := m.Advanced(); adv != nil {
		if s := adv.MealHealthScore; s != nil {
			switch {
			case *s >= 7:
				add("Healthy", "bg-green-100 text-green-800")
			case *s <= 4:
				add("Indulgent", "bg-red-100 text-red-800")
			default:
				add("Balanced", "bg-blue-100 text-blue-800")
			}
		}
		if gi := adv.GlycemicIndex; gi != nil {
			if *gi >= 70 {
				add("High GI", "bg-rose-200 text-rose-800")
			} else if *gi <= 55 {
				add("Low GI", "bg-cyan-200 text-cyan-800")
			}
		}
		if len(adv.PotentialAllergens) > 0 {
			add("Contains "+adv.PotentialAllergens[0], "bg-purple-200 text-purple-800")
		}
		if env := adv.Environmental; env != nil && env.Sourcing != nil && env.Sourcing.Organic != nil && *env.Sourcing.Organic {
			add("Organic", "bg-green-300 text-green-900")
		}
	}

	if len(tags) < minTagCount {
		if m.Calories >= 500 {
			add("Calorie Dense", "bg-gray-200 text-gray-800")
		} else {
			add("Light Meal", "bg-sky-100 text-sky-800")
		}
	}
	if len(tags) < targetTagCount {
		if protein == nil || carbs == nil {
			add("Balanced", "bg-blue-100 text-blue-800")
		} else if *protein/max(1, *carbs) >= 0.6 {
			add("Protein Forward", "bg-indigo-100 text-indigo-800")
		} else {
			add("Carb Forward", "bg-yellow-100 text-yellow-800")
		}
	}
	return tags
}
