package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // lambda base images ship without zoneinfo

	"github.com/imrishuroy/go-autotracker/internal/validation"
)

// Defaults mirror the deployed stack.
const (
	DefaultTable       = "autotracker-actions"
	DefaultPromptText  = "Should I adjust the number of hours for System 2 work? You have until end of day."
	DefaultSchedule    = "0 9 * * 1-5"
	DefaultRecordTTL   = 8 * time.Hour
	DefaultReplay      = 5 * time.Minute
	DefaultConcurrency = 8
)

// Config is the full environment configuration. Each entry point validates
// only the sections it uses.
type Config struct {
	Table    string
	LogLevel string
	Location *time.Location

	Slack     SlackConfig
	Prompt    PromptConfig
	Webhook   WebhookConfig
	Harvest   HarvestConfig
	Finalizer FinalizerConfig
}

type SlackConfig struct {
	Token       string `validate:"required"`
	DisplayName string `validate:"required"`
}

type PromptConfig struct {
	Text      string        `validate:"required"`
	Schedule  string        `validate:"required,cron"`
	RecordTTL time.Duration `validate:"gt=0"`
	Hours     validation.HoursOptions
}

type WebhookConfig struct {
	SigningSecret string        `validate:"required"`
	ReplayWindow  time.Duration `validate:"gt=0"`
}

type HarvestConfig struct {
	AccountID string `validate:"required"`
	Token     string `validate:"required"`
	Project   string `validate:"required"`
	Task      string `validate:"required"`
	BaseURL   string `validate:"required,url"`
}

type FinalizerConfig struct {
	Concurrency     int `validate:"min=1"`
	FailureQueueURL string
	MetricsNS       string
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads the configuration through lookup. Parse failures are
// returned; missing required values are reported by the Validate* methods.
func LoadFrom(lookup func(string) (string, bool)) (*Config, error) {
	e := env{lookup: lookup}

	cfg := &Config{
		Table:    e.str("ACTIONS_TABLE", DefaultTable),
		LogLevel: e.str("LOG_LEVEL", "info"),
		Slack: SlackConfig{
			Token:       e.str("SLACK_TOKEN", ""),
			DisplayName: e.str("SLACK_DISPLAY_NAME", ""),
		},
		Prompt: PromptConfig{
			Text:      e.str("PROMPT_TEXT", DefaultPromptText),
			Schedule:  e.str("PROMPT_SCHEDULE", DefaultSchedule),
			RecordTTL: e.duration("RECORD_TTL", DefaultRecordTTL),
			Hours: validation.HoursOptions{
				Start:   e.float("PROMPT_HOURS_START", 0),
				Step:    e.float("PROMPT_HOURS_STEP", 2),
				Count:   e.int("PROMPT_HOURS_COUNT", 4),
				Default: e.float("DEFAULT_HOURS", 8),
			},
		},
		Webhook: WebhookConfig{
			SigningSecret: e.str("SLACK_SIGNING_SECRET", ""),
			ReplayWindow:  e.duration("REPLAY_WINDOW", DefaultReplay),
		},
		Harvest: HarvestConfig{
			AccountID: e.str("HARVEST_ACCOUNT_ID", ""),
			Token:     e.str("HARVEST_TOKEN", ""),
			Project:   e.str("HARVEST_PROJECT", ""),
			Task:      e.str("HARVEST_TASK", ""),
			BaseURL:   e.str("HARVEST_BASE_URL", "https://api.harvestapp.com/v2"),
		},
		Finalizer: FinalizerConfig{
			Concurrency:     e.int("FINALIZER_CONCURRENCY", DefaultConcurrency),
			FailureQueueURL: e.str("FAILURE_QUEUE_URL", ""),
			MetricsNS:       e.str("METRICS_NAMESPACE", ""),
		},
	}

	tz := e.str("TIME_ZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		e.fail("TIME_ZONE", err)
	}
	cfg.Location = loc

	if e.err != nil {
		return nil, e.err
	}
	return cfg, nil
}

// ValidatePrompt checks the sections used by the prompt entry point.
func (c *Config) ValidatePrompt() error {
	return c.validate(c.Slack, c.Prompt)
}

// ValidateWebhook checks the sections used by the webhook entry point.
func (c *Config) ValidateWebhook() error {
	return c.validate(c.Webhook)
}

// ValidateFinalizer checks the sections used by the finalizer entry point.
func (c *Config) ValidateFinalizer() error {
	return c.validate(c.Harvest, c.Finalizer)
}

func (c *Config) validate(sections ...any) error {
	v := validation.New()
	sections = append([]any{common{Table: c.Table, LogLevel: c.LogLevel}}, sections...)
	for _, s := range sections {
		if err := validation.Check(v, s); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

type common struct {
	Table    string `validate:"required"`
	LogLevel string `validate:"required,oneof=trace debug info warn error fatal panic disabled"`
}

type env struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return n
}

func (e *env) float(key string, def float64) float64 {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return f
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return d
}

func (e *env) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("config: invalid %s: %w", key, err)
	}
}
