package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/printshop-backend/internal/platform/logger"
	"github.com/yungbote/printshop-backend/internal/utils"
)

type Config struct {
	Env          string `yaml:"env"`
	Port         string `yaml:"port"`
	JWTSecretKey string `yaml:"jwt_secret_key"`

	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Cart     CartConfig     `yaml:"cart"`
	Otel     OtelConfig     `yaml:"otel"`
}

type HTTPConfig struct {
	CORSOrigins         []string      `yaml:"cors_origins"`
	ProfileCookieSecure bool          `yaml:"profile_cookie_secure"`
	ShutdownTimeout     time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CartConfig struct {
	SnapshotTTL     time.Duration `yaml:"snapshot_ttl"`
	SessionIdleTTL  time.Duration `yaml:"session_idle_ttl"`
	RemoteTimeout   time.Duration `yaml:"remote_timeout"`
	BreakerFailures int           `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

func defaultConfig() Config {
	return Config{
		Env:          "development",
		Port:         "8080",
		JWTSecretKey: "defaultsecret",
		HTTP: HTTPConfig{
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{Driver: "postgres"},
		Cart: CartConfig{
			SnapshotTTL:     30 * 24 * time.Hour,
			SessionIdleTTL:  30 * time.Minute,
			RemoteTimeout:   5 * time.Second,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Otel: OtelConfig{ServiceName: "printshop-backend", SampleRatio: 1},
	}
}

// LoadConfig starts from defaults, applies the YAML file named by CONFIG_FILE
// when set, and lets environment variables override both.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}

	cfg.Env = utils.GetEnv("LOG_MODE", cfg.Env, log)
	cfg.Port = utils.GetEnv("PORT", cfg.Port, log)
	cfg.JWTSecretKey = utils.GetEnv("JWT_SECRET_KEY", cfg.JWTSecretKey, log)

	if raw := utils.GetEnv("CORS_ORIGINS", "", log); raw != "" {
		cfg.HTTP.CORSOrigins = splitList(raw)
	}
	cfg.HTTP.ProfileCookieSecure = utils.GetEnvAsBool("PROFILE_COOKIE_SECURE", cfg.HTTP.ProfileCookieSecure, log)
	cfg.HTTP.ShutdownTimeout = utils.GetEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout, log)

	cfg.Database.Driver = utils.GetEnv("DB_DRIVER", cfg.Database.Driver, log)
	cfg.Database.DSN = utils.GetEnv("DB_DSN", cfg.Database.DSN, log)

	cfg.Redis.Addr = utils.GetEnv("REDIS_ADDR", cfg.Redis.Addr, log)
	cfg.Redis.Password = utils.GetEnv("REDIS_PASSWORD", cfg.Redis.Password, log)
	cfg.Redis.DB = utils.GetEnvAsInt("REDIS_DB", cfg.Redis.DB, log)

	cfg.Cart.SnapshotTTL = utils.GetEnvAsDuration("CART_SNAPSHOT_TTL", cfg.Cart.SnapshotTTL, log)
	cfg.Cart.SessionIdleTTL = utils.GetEnvAsDuration("CART_SESSION_IDLE_TTL", cfg.Cart.SessionIdleTTL, log)
	cfg.Cart.RemoteTimeout = utils.GetEnvAsDuration("CART_REMOTE_TIMEOUT", cfg.Cart.RemoteTimeout, log)
	cfg.Cart.BreakerFailures = utils.GetEnvAsInt("CART_BREAKER_FAILURES", cfg.Cart.BreakerFailures, log)
	cfg.Cart.BreakerCooldown = utils.GetEnvAsDuration("CART_BREAKER_COOLDOWN", cfg.Cart.BreakerCooldown, log)

	cfg.Otel.Enabled = utils.GetEnvAsBool("OTEL_ENABLED", cfg.Otel.Enabled, log)
	cfg.Otel.ServiceName = utils.GetEnv("OTEL_SERVICE_NAME", cfg.Otel.ServiceName, log)
	cfg.Otel.Endpoint = utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint, log)
	cfg.Otel.Headers = utils.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers, log)
	cfg.Otel.Insecure = utils.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure, log)

	if cfg.Cart.BreakerFailures <= 0 {
		return Config{}, fmt.Errorf("CART_BREAKER_FAILURES must be positive, got %d", cfg.Cart.BreakerFailures)
	}
	if cfg.Cart.RemoteTimeout <= 0 {
		return Config{}, fmt.Errorf("CART_REMOTE_TIMEOUT must be positive")
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
