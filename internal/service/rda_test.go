package service_test

import (
	"math"
	"testing"

	"github.com/ahaar/ahaar-cli/internal/model"
	"github.com/ahaar/ahaar-cli/internal/service"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalizeNutrientMilligramReference(t *testing.T) {
	t.Parallel()
	got, ok := service.NormalizeNutrient("Calcium", 1000, "mg")
	if !ok {
		t.Fatalf("expected calcium to be known")
	}
	if !approx(got.PercentOfRDA, 100) || !approx(got.RDAValue, 1000) {
		t.Fatalf("unexpected calcium normalization: %+v", got)
	}
}

func TestNormalizeNutrientMicrogramReference(t *testing.T) {
	t.Parallel()
	got, ok := service.NormalizeNutrient("Vitamin A", 900, "mcg")
	if !ok {
		t.Fatalf("expected vitamin A to be known")
	}
	if !approx(got.PercentOfRDA, 100) || !approx(got.RDAValue, 0.9) {
		t.Fatalf("unexpected vitamin A normalization: %+v", got)
	}
	micro, ok := service.NormalizeNutrient("Vitamin A", 900, "μg")
	if !ok || !approx(micro.PercentOfRDA, 100) {
		t.Fatalf("expected greek-mu unit to match mcg, got %+v", micro)
	}
}

func TestNormalizeNutrientUnknownName(t *testing.T) {
	t.Parallel()
	if got, ok := service.NormalizeNutrient("Unobtainium", 5, "mg"); ok {
		t.Fatalf("expected unknown nutrient to be skipped, got %+v", got)
	}
}

func TestNormalizeNutrientCapsAt200(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		amount float64
		unit   string
	}{
		{"Iron", 1000, "mg"},
		{"Calcium", 5, "g"},
		{"Selenium", 1e6, "mcg"},
		{"Zinc", 11, "IU"},
	}
	for _, tc := range cases {
		got, ok := service.NormalizeNutrient(tc.name, tc.amount, tc.unit)
		if !ok {
			t.Fatalf("%s: expected known nutrient", tc.name)
		}
		if got.PercentOfRDA > service.MaxPercentOfRDA {
			t.Fatalf("%s: percent %.2f exceeds cap", tc.name, got.PercentOfRDA)
		}
	}
	if got, _ := service.NormalizeNutrient("Calcium", 5, "g"); !approx(got.PercentOfRDA, 200) {
		t.Fatalf("expected 5 g calcium to cap at 200, got %.2f", got.PercentOfRDA)
	}
	if got, _ := service.NormalizeNutrient("Zinc", 11, "IU"); !approx(got.PercentOfRDA, 100) {
		t.Fatalf("expected unknown unit to pass through as mg, got %.2f", got.PercentOfRDA)
	}
}

func TestClassifyMicronutrientsBuckets(t *testing.T) {
	t.Parallel()
	vitamins := []model.Nutrient{
		{Name: "Vitamin C", Amount: 45, Unit: "mg"},
		{Name: "Vitamin D", Amount: 20, Unit: "mcg"},
		{Name: "Vitamin B99", Amount: 1, Unit: "mg"},
	}
	minerals := []model.Nutrient{
		{Name: "Iron", Amount: 16, Unit: "mg"},
	}
	readings, buckets := service.ClassifyMicronutrients(vitamins, minerals)
	if len(readings) != 3 {
		t.Fatalf("expected unknown nutrient to be skipped, got %d readings", len(readings))
	}
	if buckets.Deficient != 1 || buckets.Adequate != 1 || buckets.Excess != 1 {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}
	if readings[0].Status != service.MicronutrientDeficient {
		t.Fatalf("expected vitamin C at 50%% to be deficient, got %s", readings[0].Status)
	}
}

func TestMicronutrientRadarFixedOrderWithZeroForMissing(t *testing.T) {
	t.Parallel()
	points := service.MicronutrientRadar(
		[]model.Nutrient{{Name: "Vitamin C", Amount: 90, Unit: "mg"}},
		[]model.Nutrient{{Name: "Potassium", Amount: 2350, Unit: "mg"}},
	)
	if len(points) != len(service.RadarNutrients) {
		t.Fatalf("expected %d radar points, got %d", len(service.RadarNutrients), len(points))
	}
	for i, p := range points {
		if p.Name != service.RadarNutrients[i] {
			t.Fatalf("radar order mismatch at %d: %s", i, p.Name)
		}
		switch p.Name {
		case "Vitamin C":
			if !approx(p.PercentOfRDA, 100) {
				t.Fatalf("expected vitamin C 100%%, got %.2f", p.PercentOfRDA)
			}
		case "Potassium":
			if !approx(p.PercentOfRDA, 50) {
				t.Fatalf("expected potassium 50%%, got %.2f", p.PercentOfRDA)
			}
		default:
			if p.PercentOfRDA != 0 {
				t.Fatalf("expected missing %s to plot at 0, got %.2f", p.Name, p.PercentOfRDA)
			}
		}
	}
}
