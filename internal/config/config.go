package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	OpenAI       OpenAIConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	AllowedOrigins        string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. The admin identity is configured, not stored.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	RequireStaff          bool
	AdminEmail            string
	AdminName             string
	AdminPasswordHash     string
}

// OpenAIConfig configures the AI solution generator.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	TimeoutSeconds int
	Language       string
}

// RateLimitConfig bounds ticket creation and AI generation per client.
type RateLimitConfig struct {
	Enabled        bool
	WindowSeconds  int
	CreateLimit    int
	GenerateLimit  int
	RedisKeyPrefix string
}

// NotificationConfig controls which lifecycle events are flagged for citizen notification.
type NotificationConfig struct {
	NotifyOnStatusChange bool
	NotifyOnAdminComment bool
	NotifyOnAISolution   bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "dalleni-support-desk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 60),
			AllowedOrigins:        getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			RequireStaff:          getEnvAsBool("AUTH_REQUIRE_STAFF", false),
			AdminEmail:            strings.ToLower(getEnv("ADMIN_EMAIL", "")),
			AdminName:             getEnv("ADMIN_NAME", "Admin"),
			AdminPasswordHash:     os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:          getEnv("OPENAI_MODEL", "gpt-5"),
			MaxTokens:      getEnvAsInt("OPENAI_MAX_TOKENS", 2048),
			TimeoutSeconds: getEnvAsInt("OPENAI_TIMEOUT_SECONDS", 45),
			Language:       getEnv("OPENAI_DEFAULT_LANGUAGE", "ar"),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvAsBool("RATE_LIMIT_ENABLED", true),
			WindowSeconds:  getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 3600),
			CreateLimit:    getEnvAsInt("RATE_LIMIT_TICKET_CREATE", 20),
			GenerateLimit:  getEnvAsInt("RATE_LIMIT_AI_GENERATE", 10),
			RedisKeyPrefix: getEnv("RATE_LIMIT_KEY_PREFIX", "dalleni:rl"),
		},
		Notification: NotificationConfig{
			NotifyOnStatusChange: getEnvAsBool("NOTIFY_ON_STATUS_CHANGE", true),
			NotifyOnAdminComment: getEnvAsBool("NOTIFY_ON_ADMIN_COMMENT", true),
			NotifyOnAISolution:   getEnvAsBool("NOTIFY_ON_AI_SOLUTION", false),
		},
	}

	if cfg.Auth.RequireStaff && cfg.Auth.AdminPasswordHash == "" {
		return nil, fmt.Errorf("AUTH_REQUIRE_STAFF set but ADMIN_PASSWORD_HASH is empty")
	}

	return cfg, nil
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

// Timeout bounds a single model call.
func (o OpenAIConfig) Timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return 45 * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// Window returns the rate limit window.
func (r RateLimitConfig) Window() time.Duration {
	if r.WindowSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(r.WindowSeconds) * time.Second
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
