package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	SupabaseURL        string `env:"SUPABASE_URL"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	SupabaseAnonKey    string `env:"SUPABASE_ANON_KEY"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	ResendFrom   string `env:"RESEND_FROM" envDefault:"SmartCore Technology <support@smartcoretechnology.co.uk>"`

	// CodeSalt is mixed into the verification-code digest before storage.
	CodeSalt string        `env:"CODE_SALT"`
	CodeTTL  time.Duration `env:"CODE_TTL" envDefault:"10m"`

	OnboardingBaseURL string `env:"ONBOARDING_BASE_URL" envDefault:"https://smartcoretechnology.co.uk/onboarding"`
}

// Load reads environment variables (optionally from a .env file) and returns a
// populated Config. Secrets are trimmed because copy-pasted dashboard values
// tend to carry whitespace.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.SupabaseURL = strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/")
	cfg.SupabaseServiceKey = strings.TrimSpace(cfg.SupabaseServiceKey)
	cfg.SupabaseAnonKey = strings.TrimSpace(cfg.SupabaseAnonKey)
	cfg.ResendAPIKey = strings.TrimSpace(cfg.ResendAPIKey)
	cfg.ResendFrom = strings.TrimSpace(cfg.ResendFrom)
	cfg.CodeSalt = strings.TrimSpace(cfg.CodeSalt)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing or malformed required value at once so a bad
// deployment fails with a single descriptive message.
func (c *Config) Validate() error {
	var missing []string

	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseServiceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}
	if c.SupabaseAnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if c.ResendAPIKey == "" {
		missing = append(missing, "RESEND_API_KEY")
	}
	if c.CodeSalt == "" {
		missing = append(missing, "CODE_SALT")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if !strings.HasPrefix(c.ResendAPIKey, "re_") {
		return errors.New("RESEND_API_KEY does not look like a Resend API key (must start with re_); make sure you pasted the full key, not a masked one")
	}

	return nil
}
