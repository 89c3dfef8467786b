package service

import "math"

type CurvePoint struct {
	Hours float64 `json:"hours"`
	Value float64 `json:"value"`
}

// GlucoseResponseCurve predicts the blood glucose rise (mg/dL) over 4.5 hours
// in quarter-hour steps. gi defaults to 50 when unknown.
func GlucoseResponseCurve(carbsG float64, gi *float64) []CurvePoint {
	g := valueOr(gi, DefaultGlycemicIndex)
	peak := math.Min(3, 0.5+(g/100)*2.5)
	amp := math.Min(60, 10+(g/100)*50) * (carbsG / 50)
	points := make([]CurvePoint, 0, 19)
	for i := 0; i < 19; i++ {
		t := float64(i) * 0.25
		v := amp * math.Exp(-math.Pow(t-peak, 2)/0.5)
		points = append(points, CurvePoint{Hours: t, Value: math.Max(0, v)})
	}
	return points
}

// EstimateGlycemicLoad returns gl when known, otherwise carbs*GI/100.
func EstimateGlycemicLoad(carbsG float64, gi, gl *float64) float64 {
	if gl != nil {
		return *gl
	}
	return carbsG * valueOr(gi, DefaultGlycemicIndex) / 100
}

type AbsorptionCurves struct {
	Protein []CurvePoint `json:"protein"`
	Carbs   []CurvePoint `json:"carbs"`
	Fat     []CurvePoint `json:"fat"`
}

// MacroAbsorptionCurves models macro availability over six hours in
// half-hour steps: carbs peak at 1h, protein at 2h, fat at 3h.
func MacroAbsorptionCurves(proteinG, carbsG, fatG float64) AbsorptionCurves {
	out := AbsorptionCurves{
		Protein: make([]CurvePoint, 0, 13),
		Carbs:   make([]CurvePoint, 0, 13),
		Fat:     make([]CurvePoint, 0, 13),
	}
	for i := 0; i < 13; i++ {
		t := float64(i) * 0.5
		out.Protein = append(out.Protein, CurvePoint{Hours: t, Value: 60 * math.Exp(-math.Pow(t-2, 2)/1) * (proteinG / 100)})
		out.Carbs = append(out.Carbs, CurvePoint{Hours: t, Value: 80 * math.Exp(-math.Pow(t-1, 2)/0.6) * (carbsG / 200)})
		out.Fat = append(out.Fat, CurvePoint{Hours: t, Value: 40 * math.Exp(-math.Pow(t-3, 2)/1.2) * (fatG / 70)})
	}
	return out
}
