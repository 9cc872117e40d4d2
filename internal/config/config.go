// Package config loads server settings from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // the gym time zone must resolve on minimal hosts

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// Prefix is prepended to every variable name, e.g. CARPA_ADDR.
const Prefix = "CARPA"

// EnvProduction is the value of CARPA_ENV on the live site.
const EnvProduction = "production"

// DefaultAdminPassword seeds the first admin outside production.
const DefaultAdminPassword = "cambiame"

// Config holds every setting the server reads at startup.
type Config struct {
	Env  string `envconfig:"ENV" default:"development"`
	Addr string `envconfig:"ADDR" default:":8080"`

	DBPath              string `envconfig:"DB_PATH" default:"carpa.db"`
	BookingsDatabaseURL string `envconfig:"BOOKINGS_DATABASE_URL"` // empty keeps bookings in SQLite

	CSRFKey       string `envconfig:"CSRF_KEY"` // 64 hex chars
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@lacarpasports.es"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"cambiame"`

	ResendKey string `envconfig:"RESEND_KEY"`
	EmailFrom string `envconfig:"EMAIL_FROM" default:"La Carpa Sports <noreply@lacarpasports.es>"`
	ReplyTo   string `envconfig:"REPLY_TO" default:"info@lacarpasports.es"`

	Timezone     string `envconfig:"TIMEZONE" default:"Europe/Madrid"`
	ReminderCron string `envconfig:"REMINDER_CRON" default:"0 20 * * 0-4"`

	SlowQueryMS   int `envconfig:"SLOW_QUERY_MS" default:"100"`
	SlowRequestMS int `envconfig:"SLOW_REQUEST_MS" default:"500"`
	RateLimit     int `envconfig:"RATE_LIMIT" default:"120"` // requests per IP per minute
}

var (
	ErrMissingCSRFKey = errors.New("CARPA_CSRF_KEY is required in production")
	ErrBadCSRFKey     = errors.New("CARPA_CSRF_KEY must be 64 hex characters")
	ErrBadRateLimit   = errors.New("CARPA_RATE_LIMIT must be positive")

	ErrDefaultAdminPassword = errors.New("CARPA_ADMIN_PASSWORD must be set to a non-default value in production")
)

// Load reads an optional .env file and then the CARPA_* environment.
// Variables already set in the environment win over the file.
// POST: the returned config has passed Validate
func Load(envFiles ...string) (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load(envFiles...)

	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the settings that would otherwise fail later at runtime.
func (c Config) Validate() error {
	if c.IsProduction() && c.CSRFKey == "" {
		return ErrMissingCSRFKey
	}
	if c.IsProduction() && (c.AdminPassword == "" || c.AdminPassword == DefaultAdminPassword) {
		return ErrDefaultAdminPassword
	}
	if c.CSRFKey != "" {
		if b, err := hex.DecodeString(c.CSRFKey); err != nil || len(b) != 32 {
			return ErrBadCSRFKey
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("CARPA_TIMEZONE %q: %w", c.Timezone, err)
	}
	if _, err := cron.ParseStandard(c.ReminderCron); err != nil {
		return fmt.Errorf("CARPA_REMINDER_CRON %q: %w", c.ReminderCron, err)
	}
	if c.RateLimit <= 0 {
		return ErrBadRateLimit
	}
	return nil
}

// IsProduction reports whether the server runs on the live site.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Location returns the gym's time zone. Calendar dates ("today") are taken in it.
// PRE: Validate has passed
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CSRFKeyBytes decodes the CSRF key. Nil when unset.
func (c Config) CSRFKeyBytes() []byte {
	b, err := hex.DecodeString(c.CSRFKey)
	if err != nil || len(b) != 32 {
		return nil
	}
	return b
}

// SlowQuery returns the duration above which a query is logged.
func (c Config) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}

// SlowRequest returns the duration above which a request is logged.
func (c Config) SlowRequest() time.Duration {
	return time.Duration(c.SlowRequestMS) * time.Millisecond
}
