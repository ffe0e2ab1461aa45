package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store selects the event store backend.
type Store string

const (
	StoreSQLite   Store = "sqlite"
	StorePostgres Store = "postgres"
)

// Config captures environment driven configuration values for the availability service.
type Config struct {
	HTTPPort    int
	Store       Store
	SQLiteDSN   string
	PostgresURL string
	Location    *time.Location

	LogLevel  slog.Level
	LogFormat string

	SnapLabels  bool
	DedupeSlots bool

	RateLimit float64
	RateBurst int
	RedisAddr string

	OTelEnabled       bool
	OTelEndpoint      string
	OTelSamplingRatio float64
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields while validating required
// values and reporting localized error messages for missing or invalid entries.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		Store:             StoreSQLite,
		SQLiteDSN:         ":memory:",
		Location:          time.UTC,
		LogLevel:          slog.LevelInfo,
		LogFormat:         "json",
		RateLimit:         20,
		RateBurst:         40,
		OTelEndpoint:      "localhost:4317",
		OTelSamplingRatio: 1,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	value := func(key string) string {
		return strings.TrimSpace(getenv("AVAILABILITY_" + key))
	}

	if portValue := value("HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "AVAILABILITY_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if store := strings.ToLower(value("STORE")); store != "" {
		switch Store(store) {
		case StoreSQLite, StorePostgres:
			cfg.Store = Store(store)
		default:
			invalid = append(invalid, "AVAILABILITY_STORE")
		}
	}

	if dsn := value("SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	cfg.PostgresURL = value("POSTGRES_URL")
	if cfg.Store == StorePostgres && cfg.PostgresURL == "" {
		missing = append(missing, "AVAILABILITY_POSTGRES_URL")
	}

	if tz := value("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			invalid = append(invalid, "AVAILABILITY_TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	if level := value("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			invalid = append(invalid, "AVAILABILITY_LOG_LEVEL")
		}
	}

	if format := strings.ToLower(value("LOG_FORMAT")); format != "" {
		if format != "json" && format != "text" {
			invalid = append(invalid, "AVAILABILITY_LOG_FORMAT")
		} else {
			cfg.LogFormat = format
		}
	}

	parseBool := func(key string, dst *bool) {
		raw := value(key)
		if raw == "" {
			return
		}
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, "AVAILABILITY_"+key)
			return
		}
		*dst = parsed
	}
	parseBool("SNAP_LABELS", &cfg.SnapLabels)
	parseBool("DEDUPE_SLOTS", &cfg.DedupeSlots)
	parseBool("OTEL_ENABLED", &cfg.OTelEnabled)

	if limitValue := value("RATE_LIMIT"); limitValue != "" {
		limit, err := strconv.ParseFloat(limitValue, 64)
		if err != nil || limit < 0 {
			invalid = append(invalid, "AVAILABILITY_RATE_LIMIT")
		} else {
			cfg.RateLimit = limit
		}
	}

	if burstValue := value("RATE_BURST"); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "AVAILABILITY_RATE_BURST")
		} else {
			cfg.RateBurst = burst
		}
	}

	cfg.RedisAddr = value("REDIS_ADDR")

	if endpoint := value("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.OTelEndpoint = endpoint
	}

	if ratioValue := value("OTEL_SAMPLING_RATIO"); ratioValue != "" {
		ratio, err := strconv.ParseFloat(ratioValue, 64)
		if err != nil || ratio < 0 || ratio > 1 {
			invalid = append(invalid, "AVAILABILITY_OTEL_SAMPLING_RATIO")
		} else {
			cfg.OTelSamplingRatio = ratio
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// RateLimitEnabled reports whether requests should be rate limited at all.
func (c Config) RateLimitEnabled() bool {
	return c.RateLimit > 0
}
