package ahaar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ahaar/ahaar-cli/internal/app"
	"github.com/ahaar/ahaar-cli/internal/config"
	"github.com/ahaar/ahaar-cli/internal/service"
)

// Shared period selection flags.
var (
	periodArg string
	dateArg   string
	fromArg   string
	toArg     string
)

func addPeriodFlags(c *cobra.Command) {
	c.Flags().StringVar(&periodArg, "period", "daily", "Period: daily|weekly|monthly")
	c.Flags().StringVar(&dateArg, "date", "", "Anchor date YYYY-MM-DD (default today)")
	c.Flags().StringVar(&fromArg, "from", "", "Explicit start date YYYY-MM-DD (weekly/monthly)")
	c.Flags().StringVar(&toArg, "to", "", "Explicit end date YYYY-MM-DD (weekly/monthly)")
}

func resolveRange(a *app.App) (service.PeriodRange, error) {
	p, err := service.ParsePeriod(periodArg)
	if err != nil {
		return service.PeriodRange{}, err
	}
	return service.ResolvePeriod(p, strings.TrimSpace(dateArg), strings.TrimSpace(fromArg), strings.TrimSpace(toArg), a.Now())
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return app.DefaultConfigPath()
}

// loadConfig reads .env, the config file and environment, then applies
// command-line overrides.
func loadConfig() (*config.Config, string, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return nil, "", err
	}
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path, os.Getenv)
	if err != nil {
		return nil, "", err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if u := strings.TrimSpace(userID); u != "" {
		cfg.UserID = u
	}
	if tok := strings.TrimSpace(apiToken); tok != "" {
		cfg.Token = tok
	}
	return cfg, path, nil
}

func withApp(cmd *cobra.Command, run func(context.Context, *app.App) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	opID := uuid.NewString()
	a, err := app.New(cfg, app.Options{
		Offline: offline,
		Logger:  app.NewLogger(cmd.ErrOrStderr(), opID, verbose),
		OpID:    opID,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return run(ctx, a)
}

func writeJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// originNote describes where a result came from when it was not live.
func originNote(origin app.Origin, liveErr error) string {
	switch origin {
	case app.OriginCache:
		if liveErr != nil {
			return "cached data (API unavailable: " + liveErr.Error() + ")"
		}
		return "cached data"
	case app.OriginDemo:
		return "demo data"
	default:
		return ""
	}
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}

func formatFlag(v *bool) string {
	switch {
	case v == nil:
		return "n/a"
	case *v:
		return "yes"
	default:
		return "no"
	}
}
