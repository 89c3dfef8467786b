package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Timestamp holds the meal "timestamp" field, which the backend has shipped
// both as epoch numbers and as ISO strings.
type Timestamp struct {
	Number *float64
	Text   string
}

// EpochTimestamp builds a numeric timestamp.
func EpochTimestamp(v float64) *Timestamp {
	return &Timestamp{Number: &v}
}

// TextTimestamp builds a string timestamp.
func TextTimestamp(s string) *Timestamp {
	return &Timestamp{Text: s}
}

// Numeric reports the epoch value, accepting numeric strings.
func (t *Timestamp) Numeric() (float64, bool) {
	if t == nil {
		return 0, false
	}
	if t.Number != nil {
		return *t.Number, true
	}
	s := strings.TrimSpace(t.Text)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode timestamp string: %w", err)
		}
		t.Text = s
		t.Number = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("timestamp must be a number or string: %w", err)
	}
	t.Number = &v
	t.Text = ""
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Number != nil {
		return json.Marshal(*t.Number)
	}
	return json.Marshal(t.Text)
}

// MealList decodes a GET /meals response, which is either a bare array or an
// object with a "meals" key.
type MealList []Meal

func (l *MealList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var meals []Meal
		if err := json.Unmarshal(data, &meals); err != nil {
			return fmt.Errorf("decode meal array: %w", err)
		}
		*l = meals
		return nil
	}
	var wrapped struct {
		Meals []Meal `json:"meals"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("decode meals object: %w", err)
	}
	*l = wrapped.Meals
	return nil
}
