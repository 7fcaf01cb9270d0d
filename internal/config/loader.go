package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted by VISITDESK_STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

// Config captures environment driven configuration values for the visit desk service.
type Config struct {
	HTTPPort    int
	StoreDriver string
	LogLevel    string

	SQLiteDSN   string
	PostgresDSN string
	Redis       RedisConfig
	S3          S3Config

	GatePhone  string
	GateCode   string
	SessionTTL time.Duration

	// ClockLocation is the zone chat message times are rendered in.
	ClockLocation *time.Location
}

// RedisConfig configures the redis store driver.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// S3Config configures the s3 store driver.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
	Prefix    string
}

// Load parses configuration values from the current process environment.
//
// Optional values fall back to defaults. Missing and invalid variables are
// collected and reported together; missing ones take precedence.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		StoreDriver:   DriverSQLite,
		LogLevel:      "info",
		SQLiteDSN:     "visitdesk.db",
		Redis:         RedisConfig{Prefix: "visitdesk:"},
		S3:            S3Config{Region: "us-east-1"},
		GatePhone:     "9999999999",
		GateCode:      "123456",
		SessionTTL:    8 * time.Hour,
		ClockLocation: time.Local,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := env("VISITDESK_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "VISITDESK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if driver := env("VISITDESK_STORE_DRIVER"); driver != "" {
		switch driver = strings.ToLower(driver); driver {
		case DriverMemory, DriverSQLite, DriverPostgres, DriverRedis, DriverS3:
			cfg.StoreDriver = driver
		default:
			invalid = append(invalid, "VISITDESK_STORE_DRIVER")
		}
	}

	if level := env("VISITDESK_LOG_LEVEL"); level != "" {
		switch level = strings.ToLower(level); level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			invalid = append(invalid, "VISITDESK_LOG_LEVEL")
		}
	}

	if dsn := env("VISITDESK_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	cfg.PostgresDSN = env("VISITDESK_POSTGRES_DSN")
	if cfg.StoreDriver == DriverPostgres && cfg.PostgresDSN == "" {
		missing = append(missing, "VISITDESK_POSTGRES_DSN")
	}

	cfg.Redis.Addr = env("VISITDESK_REDIS_ADDR")
	if cfg.StoreDriver == DriverRedis && cfg.Redis.Addr == "" {
		missing = append(missing, "VISITDESK_REDIS_ADDR")
	}
	cfg.Redis.Password = os.Getenv("VISITDESK_REDIS_PASSWORD")
	if dbValue := env("VISITDESK_REDIS_DB"); dbValue != "" {
		db, err := strconv.Atoi(dbValue)
		if err != nil || db < 0 {
			invalid = append(invalid, "VISITDESK_REDIS_DB")
		} else {
			cfg.Redis.DB = db
		}
	}
	if prefix, ok := os.LookupEnv("VISITDESK_REDIS_PREFIX"); ok {
		cfg.Redis.Prefix = strings.TrimSpace(prefix)
	}

	cfg.S3.Bucket = env("VISITDESK_S3_BUCKET")
	if cfg.StoreDriver == DriverS3 && cfg.S3.Bucket == "" {
		missing = append(missing, "VISITDESK_S3_BUCKET")
	}
	if region := env("VISITDESK_S3_REGION"); region != "" {
		cfg.S3.Region = region
	}
	cfg.S3.Endpoint = env("VISITDESK_S3_ENDPOINT")
	if pathStyle := env("VISITDESK_S3_PATH_STYLE"); pathStyle != "" {
		value, err := strconv.ParseBool(pathStyle)
		if err != nil {
			invalid = append(invalid, "VISITDESK_S3_PATH_STYLE")
		} else {
			cfg.S3.PathStyle = value
		}
	}
	cfg.S3.Prefix = env("VISITDESK_S3_PREFIX")

	if phone := env("VISITDESK_GATE_PHONE"); phone != "" {
		cfg.GatePhone = phone
	}
	if code := env("VISITDESK_GATE_CODE"); code != "" {
		cfg.GateCode = code
	}

	if ttlValue := env("VISITDESK_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "VISITDESK_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if name := env("VISITDESK_CLOCK_LOCATION"); name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			invalid = append(invalid, "VISITDESK_CLOCK_LOCATION")
		} else {
			cfg.ClockLocation = loc
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
