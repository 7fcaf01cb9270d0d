package config

import (
	"testing"
	"time"
)

var allVariables = []string{
	"VISITDESK_HTTP_PORT",
	"VISITDESK_STORE_DRIVER",
	"VISITDESK_LOG_LEVEL",
	"VISITDESK_SQLITE_DSN",
	"VISITDESK_POSTGRES_DSN",
	"VISITDESK_REDIS_ADDR",
	"VISITDESK_REDIS_PASSWORD",
	"VISITDESK_REDIS_DB",
	"VISITDESK_S3_BUCKET",
	"VISITDESK_S3_REGION",
	"VISITDESK_S3_ENDPOINT",
	"VISITDESK_S3_PATH_STYLE",
	"VISITDESK_S3_PREFIX",
	"VISITDESK_GATE_PHONE",
	"VISITDESK_GATE_CODE",
	"VISITDESK_SESSION_TTL",
	"VISITDESK_CLOCK_LOCATION",
}

func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, key := range allVariables {
		t.Setenv(key, "")
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnvironment(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.StoreDriver != DriverSQLite || cfg.SQLiteDSN != "visitdesk.db" {
			t.Fatalf("unexpected store defaults: %q %q", cfg.StoreDriver, cfg.SQLiteDSN)
		}
		if cfg.GatePhone != "9999999999" || cfg.GateCode != "123456" {
			t.Fatalf("unexpected gate defaults: %q %q", cfg.GatePhone, cfg.GateCode)
		}
		if cfg.LogLevel != "info" {
			t.Fatalf("expected info log level, got %q", cfg.LogLevel)
		}
		if cfg.SessionTTL != 8*time.Hour {
			t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
		}
		if cfg.Redis.Prefix != "visitdesk:" || cfg.S3.Region != "us-east-1" {
			t.Fatalf("unexpected driver defaults: %+v %+v", cfg.Redis, cfg.S3)
		}
		if cfg.ClockLocation != time.Local {
			t.Fatalf("expected local clock location")
		}
	})

	t.Run("reads overrides", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("VISITDESK_HTTP_PORT", "9090")
		t.Setenv("VISITDESK_STORE_DRIVER", "S3")
		t.Setenv("VISITDESK_S3_BUCKET", "visits")
		t.Setenv("VISITDESK_S3_ENDPOINT", "http://localhost:9000")
		t.Setenv("VISITDESK_S3_PATH_STYLE", "true")
		t.Setenv("VISITDESK_GATE_CODE", "424242")
		t.Setenv("VISITDESK_SESSION_TTL", "30m")
		t.Setenv("VISITDESK_CLOCK_LOCATION", "UTC")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9090 || cfg.StoreDriver != DriverS3 {
			t.Fatalf("unexpected config %+v", cfg)
		}
		if cfg.S3.Bucket != "visits" || !cfg.S3.PathStyle || cfg.S3.Endpoint != "http://localhost:9000" {
			t.Fatalf("unexpected s3 config %+v", cfg.S3)
		}
		if cfg.GateCode != "424242" || cfg.SessionTTL != 30*time.Minute {
			t.Fatalf("unexpected gate config %q %v", cfg.GateCode, cfg.SessionTTL)
		}
		if cfg.ClockLocation.String() != "UTC" {
			t.Fatalf("unexpected clock location %v", cfg.ClockLocation)
		}
	})

	t.Run("errors when driver settings are missing", func(t *testing.T) {
		cases := map[string]string{
			"postgres": "VISITDESK_POSTGRES_DSN",
			"redis":    "VISITDESK_REDIS_ADDR",
			"s3":       "VISITDESK_S3_BUCKET",
		}
		for driver, variable := range cases {
			t.Run(driver, func(t *testing.T) {
				clearEnvironment(t)
				t.Setenv("VISITDESK_STORE_DRIVER", driver)

				_, err := Load()
				if err == nil {
					t.Fatalf("expected error when %s is missing", variable)
				}
				expected := "required environment variables are not set: " + variable
				if err.Error() != expected {
					t.Fatalf("unexpected error message: %q", err.Error())
				}
			})
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("VISITDESK_HTTP_PORT", "not-a-port")
		t.Setenv("VISITDESK_STORE_DRIVER", "cassandra")
		t.Setenv("VISITDESK_SESSION_TTL", "-1h")
		t.Setenv("VISITDESK_CLOCK_LOCATION", "Nowhere/Special")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "environment variables have invalid values: VISITDESK_HTTP_PORT, VISITDESK_STORE_DRIVER, VISITDESK_SESSION_TTL, VISITDESK_CLOCK_LOCATION"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
