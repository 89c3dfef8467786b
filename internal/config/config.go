package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvAPIURL = "AHAAR_API_URL"
	EnvUserID = "AHAAR_USER_ID"
	EnvToken  = "AHAAR_TOKEN"
	EnvDBPath = "AHAAR_DB"
)

const (
	defaultBaseURL = "http://127.0.0.1:8000/api"
	defaultTimeout = "12s"
	defaultUserID  = "default_user"
)

// Config is the on-disk settings file for ahaar.
type Config struct {
	UserID       string        `toml:"user_id"`
	DBPath       string        `toml:"db_path,omitempty"`
	DemoFallback bool          `toml:"demo_fallback"`
	API          APIConfig     `toml:"api"`
	Targets      TargetsConfig `toml:"targets"`

	// Token only ever comes from the environment or flags.
	Token string `toml:"-"`
}

type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"` // Go duration, e.g. "12s"
}

// TargetsConfig holds the daily targets the progress cards compare against.
type TargetsConfig struct {
	Calories float64 `toml:"calories"`
	ProteinG float64 `toml:"protein_g"`
	CarbsG   float64 `toml:"carbs_g"`
	FatG     float64 `toml:"fat_g"`
}

func Default() *Config {
	return &Config{
		UserID:       defaultUserID,
		DemoFallback: true,
		API:          APIConfig{BaseURL: defaultBaseURL, Timeout: defaultTimeout},
		Targets:      TargetsConfig{Calories: 2000, ProteinG: 150, CarbsG: 250, FatG: 65},
	}
}

// TimeoutDuration parses API.Timeout, falling back to the default when empty.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	raw := strings.TrimSpace(c.API.Timeout)
	if raw == "" {
		raw = defaultTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid api.timeout %q: %w", c.API.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("api.timeout must be > 0")
	}
	return d, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("user_id is required")
	}
	u, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"targets.calories":  c.Targets.Calories,
		"targets.protein_g": c.Targets.ProteinG,
		"targets.carbs_g":   c.Targets.CarbsG,
		"targets.fat_g":     c.Targets.FatG,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("read config from %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("write config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path unless a file already exists there.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := Save(path, cfg); err != nil {
		return fmt.Errorf("initialize config: %w", err)
	}
	return nil
}

// Load reads path when it exists, falls back to Default otherwise, then
// applies environment overrides from getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		fromFile, err := ReadFromFile(path)
		switch {
		case err == nil:
			cfg = fromFile
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}
	ApplyEnv(cfg, getenv)
	return cfg, nil
}

func ApplyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvUserID)); v != "" {
		cfg.UserID = v
	}
	if v := strings.TrimSpace(getenv(EnvToken)); v != "" {
		cfg.Token = v
	}
	if v := strings.TrimSpace(getenv(EnvDBPath)); v != "" {
		cfg.DBPath = v
	}
}

// LoadDotEnv loads KEY=VALUE pairs from a .env file into the process
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
