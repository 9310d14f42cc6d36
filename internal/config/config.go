package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port            string `toml:"port"`
	DBDSN           string `toml:"db_dsn"`
	LogFile         string `toml:"log_file"`
	LogLevel        string `toml:"log_level"`
	Environment     string `toml:"environment"`
	AdminName       string `toml:"admin_name"`
	StoreKeeperName string `toml:"storekeeper_name"`
	UnitValue       string `toml:"unit_value"`
	RateLimit       int    `toml:"rate_limit"`
	Tracing         bool   `toml:"tracing"`
}

// LoadError reports a config file that exists but could not be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading config from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func Default() Config {
	return Config{
		Port:            "8080",
		DBDSN:           ":memory:", // state lives for the process only
		LogLevel:        "info",
		Environment:     "development",
		AdminName:       "Admin User",
		StoreKeeperName: "Khalid",
		UnitValue:       "15",
		RateLimit:       120,
	}
}

// Load reads the optional TOML file named by SPARESLEDGER_CONFIG, then
// applies environment overrides on top.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("SPARESLEDGER_CONFIG"); path != "" {
		fromFile, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fromFile
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile decodes path over the defaults; keys missing from the file keep
// their default value.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, &LoadError{Path: path, Err: err}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("PORT", &cfg.Port)
	str("DB_DSN", &cfg.DBDSN)
	str("LOG_FILE", &cfg.LogFile)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("ENVIRONMENT", &cfg.Environment)
	str("ADMIN_NAME", &cfg.AdminName)
	str("STOREKEEPER_NAME", &cfg.StoreKeeperName)
	str("UNIT_VALUE", &cfg.UnitValue)
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit = n
		}
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		cfg.Tracing = v == "1" || strings.EqualFold(v, "true")
	}
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: port is required")
	}
	if _, err := decimal.NewFromString(c.UnitValue); err != nil {
		return fmt.Errorf("config: unit_value %q: %w", c.UnitValue, err)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("config: rate_limit must be positive, got %d", c.RateLimit)
	}
	return nil
}

// UnitPrice is the per-unit valuation used by the admin dashboard.
func (c Config) UnitPrice() decimal.Decimal {
	d, err := decimal.NewFromString(c.UnitValue)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (c Config) Development() bool { return c.Environment == "development" }
