package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig          `toml:"app"`
	Database     DatabaseConfig     `toml:"database"`
	Redis        RedisConfig        `toml:"redis"`
	Logger       LoggerConfig       `toml:"logger"`
	Auth         AuthConfig         `toml:"auth"`
	Notification NotificationConfig `toml:"notification"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `toml:"name"`
	Env                   string `toml:"env"`
	Host                  string `toml:"host"`
	Port                  string `toml:"port"`
	Version               string `toml:"version"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	CORSOrigins           string `toml:"cors_origins"`
}

// DatabaseConfig selects the relational backend and holds its connection values.
type DatabaseConfig struct {
	Driver         string `toml:"driver"`
	PostgresDSN    string `toml:"postgres_dsn"`
	SQLitePath     string `toml:"sqlite_path"`
	MaxConns       int32  `toml:"max_conns"`
	MinConns       int32  `toml:"min_conns"`
	RunMigrations  bool   `toml:"run_migrations"`
	ConnMaxIdleSec int32  `toml:"conn_max_idle_seconds"`
	ConnMaxLifeSec int32  `toml:"conn_max_life_seconds"`
}

// RedisConfig holds Redis connection values. An empty Addr disables the cache.
type RedisConfig struct {
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	CategoryTTLSecs int    `toml:"category_ttl_seconds"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
	BcryptCost    int    `toml:"bcrypt_cost"`
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string `toml:"email_from"`
	WebhookURL string `toml:"webhook_url"`
}

// Default returns the configuration used when neither a file nor the environment set a value.
func Default() Config {
	return Config{
		App: AppConfig{
			Name:                  "task-tracker",
			Env:                   "development",
			Host:                  "0.0.0.0",
			Port:                  "3001",
			Version:               "dev",
			RequestTimeoutSeconds: 30,
			CORSOrigins:           "http://localhost:5173,http://localhost:3000",
		},
		Database: DatabaseConfig{
			Driver:         DriverSQLite,
			SQLitePath:     "data/tasks.db",
			MaxConns:       10,
			MinConns:       2,
			RunMigrations:  true,
			ConnMaxIdleSec: 30,
			ConnMaxLifeSec: 300,
		},
		Redis: RedisConfig{
			CategoryTTLSecs: 300,
		},
		Logger: LoggerConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Auth: AuthConfig{
			JWTSecret:     "dev-secret",
			TokenTTLHours: 24,
			BcryptCost:    10,
		},
		Notification: NotificationConfig{
			EmailFrom: "noreply@example.com",
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file and the environment,
// in increasing order of precedence. An empty path falls back to CONFIG_FILE.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnv("APP_PORT", cfg.App.Port)
	cfg.App.Version = getEnv("APP_VERSION", cfg.App.Version)
	cfg.App.RequestTimeoutSeconds = getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", cfg.App.RequestTimeoutSeconds)
	cfg.App.CORSOrigins = getEnv("CORS_ORIGINS", cfg.App.CORSOrigins)

	cfg.Database.Driver = strings.ToLower(getEnv("DB_DRIVER", cfg.Database.Driver))
	cfg.Database.PostgresDSN = getEnv("POSTGRES_DSN", cfg.Database.PostgresDSN)
	cfg.Database.SQLitePath = getEnv("SQLITE_PATH", cfg.Database.SQLitePath)
	cfg.Database.MaxConns = int32(getEnvAsInt("DB_MAX_CONNS", int(cfg.Database.MaxConns)))
	cfg.Database.MinConns = int32(getEnvAsInt("DB_MIN_CONNS", int(cfg.Database.MinConns)))
	cfg.Database.RunMigrations = getEnvAsBool("DB_RUN_MIGRATIONS", cfg.Database.RunMigrations)
	cfg.Database.ConnMaxIdleSec = int32(getEnvAsInt("DB_CONN_MAX_IDLE_SECONDS", int(cfg.Database.ConnMaxIdleSec)))
	cfg.Database.ConnMaxLifeSec = int32(getEnvAsInt("DB_CONN_MAX_LIFE_SECONDS", int(cfg.Database.ConnMaxLifeSec)))

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.CategoryTTLSecs = getEnvAsInt("REDIS_CATEGORY_TTL_SECONDS", cfg.Redis.CategoryTTLSecs)

	cfg.Logger.Level = getEnv("LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.File = getEnv("LOG_FILE", cfg.Logger.File)
	cfg.Logger.MaxSizeMB = getEnvAsInt("LOG_MAX_SIZE_MB", cfg.Logger.MaxSizeMB)
	cfg.Logger.MaxBackups = getEnvAsInt("LOG_MAX_BACKUPS", cfg.Logger.MaxBackups)
	cfg.Logger.MaxAgeDays = getEnvAsInt("LOG_MAX_AGE_DAYS", cfg.Logger.MaxAgeDays)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTLHours = getEnvAsInt("AUTH_TOKEN_TTL_HOURS", cfg.Auth.TokenTTLHours)
	cfg.Auth.BcryptCost = getEnvAsInt("AUTH_BCRYPT_COST", cfg.Auth.BcryptCost)

	cfg.Notification.EmailFrom = getEnv("NOTIFY_EMAIL_FROM", cfg.Notification.EmailFrom)
	cfg.Notification.WebhookURL = getEnv("NOTIFY_WEBHOOK_URL", cfg.Notification.WebhookURL)
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when DB_DRIVER=%s", DriverPostgres)
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=%s", DriverSQLite)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns how long issued session tokens stay valid.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// CategoryTTL returns the lifetime of cached category sets.
func (r RedisConfig) CategoryTTL() time.Duration {
	if r.CategoryTTLSecs <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(r.CategoryTTLSecs) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
