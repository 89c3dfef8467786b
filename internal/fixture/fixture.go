// Package fixture ships the demo dataset shown when neither the API nor the
// local cache can answer.
package fixture

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/ahaar/ahaar-cli/internal/model"
	"github.com/ahaar/ahaar-cli/internal/service"
)

//go:embed demo/*.json
var demoFiles embed.FS

// Period returns the demo totals for a period.
func Period(p service.Period) (model.PeriodTotals, error) {
	switch p {
	case service.PeriodDaily, service.PeriodWeekly, service.PeriodMonthly:
	default:
		return model.PeriodTotals{}, fmt.Errorf("no demo data for period %q", p)
	}
	raw, err := demoFiles.ReadFile("demo/" + string(p) + ".json")
	if err != nil {
		return model.PeriodTotals{}, fmt.Errorf("read demo %s data: %w", p, err)
	}
	var out model.PeriodTotals
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.PeriodTotals{}, fmt.Errorf("decode demo %s data: %w", p, err)
	}
	return out, nil
}

// Meals returns the demo day's meals in server order.
func Meals() ([]model.Meal, error) {
	daily, err := Period(service.PeriodDaily)
	if err != nil {
		return nil, err
	}
	return daily.Meals, nil
}
