package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "examplehub-dev-secret"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Storage  StorageConfig
	Email    EmailConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port        string
	Environment string
	SiteURL     string
}

type DatabaseConfig struct {
	URL          string
	MaxIdleConns int
	MaxOpenConns int
}

type JWTConfig struct {
	Secret   string
	TTLHours int
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// Enabled reports whether checkouts go through Stripe. Without a key the
// checkout endpoint records a simulated purchase instead.
func (s StripeConfig) Enabled() bool {
	return s.SecretKey != ""
}

type StorageConfig struct {
	AccountID          string
	AccessKey          string
	SecretKey          string
	BucketName         string
	CDNBaseURL         string
	DownloadURLMinutes int
}

func (s StorageConfig) Enabled() bool {
	return s.AccountID != "" && s.AccessKey != "" && s.SecretKey != "" && s.BucketName != ""
}

type EmailConfig struct {
	ResendAPIKey string
	From         string
	AdminEmail   string
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

type AdminConfig struct {
	APIKey string
}

type LogConfig struct {
	Level     string
	Format    string
	SentryDSN string
}

func Load() *Config {
	godotenv.Load() // .env is optional

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			Environment: getEnv("ENVIRONMENT", "development"),
			SiteURL:     strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", ""),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		},
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", defaultJWTSecret),
			TTLHours: getEnvAsInt("JWT_TTL_HOURS", 24*7),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Storage: StorageConfig{
			AccountID:          getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:          getEnv("R2_ACCESS_KEY", ""),
			SecretKey:          getEnv("R2_SECRET_KEY", ""),
			BucketName:         getEnv("R2_BUCKET_NAME", ""),
			CDNBaseURL:         strings.TrimRight(getEnv("CDN_BASE_URL", ""), "/"),
			DownloadURLMinutes: getEnvAsInt("DOWNLOAD_URL_TTL_MINUTES", 15),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "Examplehub <hello@examplehub.dev>"),
			AdminEmail:   getEnv("ADMIN_EMAIL", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			APIKey: getEnv("ADMIN_API_KEY", ""),
		},
		Log: LogConfig{
			Level:     getEnv("LOG_LEVEL", "info"),
			Format:    getEnv("LOG_FORMAT", ""),
			SentryDSN: getEnv("SENTRY_DSN", ""),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate reports configuration that would make the server unusable or
// unsafe to run.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWT.TTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	if c.IsProduction() {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Stripe.Enabled() && c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set")
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
