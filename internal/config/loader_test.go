package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		for _, key := range []string{
			"AVAILABILITY_HTTP_PORT",
			"AVAILABILITY_STORE",
			"AVAILABILITY_SQLITE_DSN",
			"AVAILABILITY_TIMEZONE",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.Store != StoreSQLite || cfg.SQLiteDSN != ":memory:" {
			t.Fatalf("unexpected default store: %q %q", cfg.Store, cfg.SQLiteDSN)
		}
		if cfg.Location != time.UTC {
			t.Fatalf("expected UTC by default, got %v", cfg.Location)
		}
		if cfg.RateLimit != 20 || cfg.RateBurst != 40 || !cfg.RateLimitEnabled() {
			t.Fatalf("unexpected rate limit defaults: %v/%d", cfg.RateLimit, cfg.RateBurst)
		}
	})

	t.Run("errors when the postgres URL is missing", func(t *testing.T) {
		t.Setenv("AVAILABILITY_STORE", "postgres")
		if err := os.Unsetenv("AVAILABILITY_POSTGRES_URL"); err != nil {
			t.Fatalf("failed to unset: %v", err)
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "必須の環境変数が設定されていません: AVAILABILITY_POSTGRES_URL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses every field", func(t *testing.T) {
		cfg, err := load(envMap(map[string]string{
			"AVAILABILITY_HTTP_PORT":                   "9090",
			"AVAILABILITY_STORE":                       "POSTGRES",
			"AVAILABILITY_POSTGRES_URL":                "postgres://localhost/events",
			"AVAILABILITY_TIMEZONE":                    "UTC",
			"AVAILABILITY_LOG_LEVEL":                   "debug",
			"AVAILABILITY_LOG_FORMAT":                  "text",
			"AVAILABILITY_SNAP_LABELS":                 "true",
			"AVAILABILITY_DEDUPE_SLOTS":                "1",
			"AVAILABILITY_RATE_LIMIT":                  "0",
			"AVAILABILITY_RATE_BURST":                  "5",
			"AVAILABILITY_REDIS_ADDR":                  "redis:6379",
			"AVAILABILITY_OTEL_ENABLED":                "true",
			"AVAILABILITY_OTEL_EXPORTER_OTLP_ENDPOINT": "jaeger:4317",
			"AVAILABILITY_OTEL_SAMPLING_RATIO":         "0.25",
		}))
		if err != nil {
			t.Fatalf("load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 || cfg.Store != StorePostgres || cfg.PostgresURL != "postgres://localhost/events" {
			t.Fatalf("unexpected server settings: %+v", cfg)
		}
		if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "text" {
			t.Fatalf("unexpected log settings: %v %q", cfg.LogLevel, cfg.LogFormat)
		}
		if !cfg.SnapLabels || !cfg.DedupeSlots {
			t.Fatalf("expected slot options to be enabled")
		}
		if cfg.RateLimitEnabled() || cfg.RateBurst != 5 || cfg.RedisAddr != "redis:6379" {
			t.Fatalf("unexpected rate limit settings: %+v", cfg)
		}
		if !cfg.OTelEnabled || cfg.OTelEndpoint != "jaeger:4317" || cfg.OTelSamplingRatio != 0.25 {
			t.Fatalf("unexpected telemetry settings: %+v", cfg)
		}
	})

	t.Run("aggregates invalid values", func(t *testing.T) {
		_, err := load(envMap(map[string]string{
			"AVAILABILITY_HTTP_PORT":           "http",
			"AVAILABILITY_STORE":               "mongo",
			"AVAILABILITY_TIMEZONE":            "Mars/Olympus_Mons",
			"AVAILABILITY_SNAP_LABELS":         "maybe",
			"AVAILABILITY_OTEL_SAMPLING_RATIO": "2",
		}))
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "環境変数の値が不正です: AVAILABILITY_HTTP_PORT, AVAILABILITY_STORE, AVAILABILITY_TIMEZONE, AVAILABILITY_SNAP_LABELS, AVAILABILITY_OTEL_SAMPLING_RATIO"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
