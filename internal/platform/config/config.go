package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

const (
	defaultEnvFile            = ".env"
	defaultStoreName          = "TECH HOUSE"
	defaultCurrencySuffix     = "UZS"
	defaultLocale             = "en"
	defaultDeliveryFee        = 50000
	defaultPromotionThreshold = 5
	defaultAdminUsername      = "admin"
	defaultAdminPassword      = "admin123"
	defaultPasswordMinLength  = 3
	defaultLogLevel           = "info"
	defaultLogFile            = "stderr"
	defaultCheckoutTTL        = 24 * time.Hour
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Store    StoreConfig
	Pricing  PricingConfig
	Accounts AccountsConfig
	Catalog  CatalogConfig
	Logging  LoggingConfig
	Checkout CheckoutConfig
}

// StoreConfig controls presentation of the shop in the terminal.
type StoreConfig struct {
	Name           string
	CurrencySuffix string
	Locale         string
}

// PricingConfig holds monetary settings applied at checkout.
type PricingConfig struct {
	DeliveryFee int64
}

// AccountsConfig configures the seeded admin and the promotion gate.
type AccountsConfig struct {
	PromotionThreshold int
	AdminUsername      string
	AdminPassword      string
	PasswordMinLength  int
}

// CatalogConfig points at an optional YAML seed catalog.
type CatalogConfig struct {
	SeedFile string
}

// LoggingConfig selects the zap level and sink.
type LoggingConfig struct {
	Level string
	// File is a path, or "stderr"/"stdout".
	File string
}

// CheckoutConfig controls idempotency bookkeeping for completed checkouts.
type CheckoutConfig struct {
	IdempotencyTTL time.Duration
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// and environment variables.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Store: StoreConfig{
			Name:           stringWithDefault(lookup, "TECHHOUSE_STORE_NAME", defaultStoreName),
			CurrencySuffix: stringWithDefault(lookup, "TECHHOUSE_CURRENCY_SUFFIX", defaultCurrencySuffix),
			Locale:         stringWithDefault(lookup, "TECHHOUSE_LOCALE", defaultLocale),
		},
		Pricing: PricingConfig{
			DeliveryFee: int64WithDefault(lookup, "TECHHOUSE_DELIVERY_FEE", defaultDeliveryFee),
		},
		Accounts: AccountsConfig{
			PromotionThreshold: intWithDefault(lookup, "TECHHOUSE_PROMOTION_THRESHOLD", defaultPromotionThreshold),
			AdminUsername:      strings.TrimSpace(stringWithDefault(lookup, "TECHHOUSE_ADMIN_USERNAME", defaultAdminUsername)),
			AdminPassword:      stringWithDefault(lookup, "TECHHOUSE_ADMIN_PASSWORD", defaultAdminPassword),
			PasswordMinLength:  intWithDefault(lookup, "TECHHOUSE_PASSWORD_MIN_LENGTH", defaultPasswordMinLength),
		},
		Catalog: CatalogConfig{
			SeedFile: strings.TrimSpace(stringWithDefault(lookup, "TECHHOUSE_CATALOG_FILE", "")),
		},
		Logging: LoggingConfig{
			Level: strings.ToLower(stringWithDefault(lookup, "TECHHOUSE_LOG_LEVEL", defaultLogLevel)),
			File:  stringWithDefault(lookup, "TECHHOUSE_LOG_FILE", defaultLogFile),
		},
		Checkout: CheckoutConfig{
			IdempotencyTTL: durationWithDefault(lookup, "TECHHOUSE_CHECKOUT_TTL", defaultCheckoutTTL),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Store.Name) == "" {
		missing = append(missing, "Store.Name")
	}
	if _, err := language.Parse(cfg.Store.Locale); err != nil {
		missing = append(missing, "Store.Locale")
	}
	if cfg.Pricing.DeliveryFee < 0 {
		missing = append(missing, "Pricing.DeliveryFee")
	}
	if cfg.Accounts.PromotionThreshold < 0 {
		missing = append(missing, "Accounts.PromotionThreshold")
	}
	if cfg.Accounts.AdminUsername == "" {
		missing = append(missing, "Accounts.AdminUsername")
	}
	if cfg.Accounts.AdminPassword == "" {
		missing = append(missing, "Accounts.AdminPassword")
	}
	if cfg.Accounts.PasswordMinLength < 1 {
		missing = append(missing, "Accounts.PasswordMinLength")
	}
	if _, err := zapcore.ParseLevel(cfg.Logging.Level); err != nil {
		missing = append(missing, "Logging.Level")
	}
	if strings.TrimSpace(cfg.Logging.File) == "" {
		missing = append(missing, "Logging.File")
	}
	if cfg.Checkout.IdempotencyTTL <= 0 {
		missing = append(missing, "Checkout.IdempotencyTTL")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func int64WithDefault(lookup func(string) (string, bool), key string, fallback int64) int64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
