package service

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

const DateLayout = "2006-01-02"

func ParsePeriod(v string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(v))); p {
	case "":
		return PeriodDaily, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, nil
	default:
		return "", fmt.Errorf("invalid period %q (use daily|weekly|monthly)", v)
	}
}

// PeriodRange is an inclusive [From, To] span of local calendar days.
type PeriodRange struct {
	Period Period    `json:"period"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

// ResolvePeriod turns CLI input into a concrete range. date anchors the
// period and defaults to today; an explicit from/to pair overrides the anchor
// for weekly and monthly periods.
func ResolvePeriod(period Period, date, from, to string, now time.Time) (PeriodRange, error) {
	if (from == "") != (to == "") {
		return PeriodRange{}, fmt.Errorf("--from and --to must be provided together")
	}
	anchor := startOfDay(now)
	if strings.TrimSpace(date) != "" {
		parsed, err := parseDay("--date", date)
		if err != nil {
			return PeriodRange{}, err
		}
		anchor = parsed
	}

	switch period {
	case PeriodDaily:
		if from != "" {
			return PeriodRange{}, fmt.Errorf("daily period takes --date, not --from/--to")
		}
		return PeriodRange{Period: period, From: anchor, To: anchor}, nil
	case PeriodWeekly, PeriodMonthly:
		if from != "" {
			start, err := parseDay("--from", from)
			if err != nil {
				return PeriodRange{}, err
			}
			end, err := parseDay("--to", to)
			if err != nil {
				return PeriodRange{}, err
			}
			if end.Before(start) {
				return PeriodRange{}, fmt.Errorf("--to must be on or after --from")
			}
			return PeriodRange{Period: period, From: start, To: end}, nil
		}
		if period == PeriodWeekly {
			start := beginningOfWeek(anchor)
			return PeriodRange{Period: period, From: start, To: start.AddDate(0, 0, 6)}, nil
		}
		start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		return PeriodRange{Period: period, From: start, To: start.AddDate(0, 1, -1)}, nil
	default:
		return PeriodRange{}, fmt.Errorf("invalid period %q (use daily|weekly|monthly)", period)
	}
}

// Query renders the query string the nutrition endpoint expects.
func (r PeriodRange) Query() url.Values {
	q := url.Values{}
	if r.Period == PeriodDaily {
		q.Set("date", r.From.Format(DateLayout))
		return q
	}
	q.Set("start_date", r.From.Format(DateLayout))
	q.Set("end_date", r.To.Format(DateLayout))
	return q
}

func (r PeriodRange) Label() string {
	if r.Period == PeriodDaily {
		return r.From.Format(DateLayout)
	}
	return fmt.Sprintf("%s..%s", r.From.Format(DateLayout), r.To.Format(DateLayout))
}

func parseDay(flag, v string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(v), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s value %q (expected YYYY-MM-DD)", flag, v)
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func beginningOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, t.Location())
}
