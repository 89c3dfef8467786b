package ahaarapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahaar/ahaar-cli/internal/model"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000/api"
	DefaultTimeout = 12 * time.Second
	DefaultUserID  = "default_user"
)

// Session identifies the caller for one request. It is passed to every call
// instead of living on the client.
type Session struct {
	UserID string
	Token  string
}

func (s Session) user() string {
	if u := strings.TrimSpace(s.UserID); u != "" {
		return u
	}
	return DefaultUserID
}

// Range is the query window for GET /nutrition.
type Range struct {
	Period string
	Query  url.Values
}

type Health struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	GeminiConfigured bool   `json:"gemini_configured"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// RequestID overrides the per-request id generator.
	RequestID func() string
}

func (c *Client) GetNutrition(ctx context.Context, s Session, r Range) (model.PeriodTotals, []byte, error) {
	period := strings.TrimSpace(r.Period)
	if period == "" {
		return model.PeriodTotals{}, nil, fmt.Errorf("period is required")
	}
	path := fmt.Sprintf("/nutrition/%s/%s", url.PathEscape(s.user()), url.PathEscape(period))
	body, err := c.get(ctx, s, path, r.Query)
	if err != nil {
		return model.PeriodTotals{}, body, err
	}
	var out model.PeriodTotals
	if err := json.Unmarshal(body, &out); err != nil {
		return model.PeriodTotals{}, body, fmt.Errorf("decode nutrition response: %w", err)
	}
	return out, body, nil
}

// GetMeals lists the user's meals, optionally for a single YYYY-MM-DD date.
func (c *Client) GetMeals(ctx context.Context, s Session, date string) ([]model.Meal, []byte, error) {
	q := url.Values{}
	if d := strings.TrimSpace(date); d != "" {
		q.Set("date", d)
	}
	body, err := c.get(ctx, s, "/meals/"+url.PathEscape(s.user()), q)
	if err != nil {
		return nil, body, err
	}
	var list model.MealList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, body, fmt.Errorf("decode meals response: %w", err)
	}
	if list == nil {
		return []model.Meal{}, body, nil
	}
	return list, body, nil
}

func (c *Client) CheckHealth(ctx context.Context) (Health, error) {
	body, err := c.get(ctx, Session{}, "/health", nil)
	if err != nil {
		return Health{}, err
	}
	var out Health
	if err := json.Unmarshal(body, &out); err != nil {
		return Health{}, fmt.Errorf("decode health response: %w", err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, s Session, path string, q url.Values) ([]byte, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	endpoint := base + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create ahaar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", c.requestID())
	if token := strings.TrimSpace(s.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute ahaar request %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ahaar response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := errorMessage(body); msg != "" {
			return body, fmt.Errorf("ahaar request %s failed with status %d: %s", path, resp.StatusCode, msg)
		}
		return body, fmt.Errorf("ahaar request %s failed with status %d", path, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) requestID() string {
	if c.RequestID != nil {
		return c.RequestID()
	}
	return uuid.NewString()
}

func errorMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return strings.TrimSpace(parsed.Error)
}
