package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"alcyxob/gym-portal/internal/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Payments PaymentsConfig `mapstructure:"payments"`
	Email    EmailConfig    `mapstructure:"email"`
	AI       AIConfig       `mapstructure:"ai"`
	Booking  BookingConfig  `mapstructure:"booking"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"` // gin mode: debug, release, test
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether plan attachments can be stored.
func (c S3Config) Enabled() bool {
	return c.BucketName != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// PaymentsConfig configures the checkout webhook.
type PaymentsConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret"`
	// AllowUnsignedWebhooks accepts events without a signature when no secret is set. Dev only.
	AllowUnsignedWebhooks bool                            `mapstructure:"allow_unsigned_webhooks"`
	Products              map[string]domain.ProductEffect `mapstructure:"products"`
}

// Catalog returns the configured product table, or the built-in one.
func (c PaymentsConfig) Catalog() domain.ProductCatalog {
	if len(c.Products) == 0 {
		return domain.DefaultProductCatalog()
	}
	return domain.ProductCatalog(c.Products)
}

// EmailConfig selects the outbound mail provider.
type EmailConfig struct {
	Provider string `mapstructure:"provider"` // resend | sendgrid
	APIKey   string `mapstructure:"api_key"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type AIConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	Model        string `mapstructure:"model"`
	HistoryLimit int    `mapstructure:"history_limit"`
	SystemPrompt string `mapstructure:"system_prompt"`
}

// BookingConfig holds tunables of the availability generator.
type BookingConfig struct {
	MaxRangeDays int `mapstructure:"max_range_days"`
}

var (
	ErrMissingDatabaseURI = errors.New("config: database.uri is required")
	ErrMissingJWTSecret   = errors.New("config: jwt.secret is required")
)

// Validate fails on settings the server cannot run without and logs a warning
// for optional integrations that will be disabled.
func (c Config) Validate() error {
	if c.Database.URI == "" {
		return ErrMissingDatabaseURI
	}
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	if !c.S3.Enabled() {
		log.Println("WARN: S3 storage not configured, plan attachments disabled")
	}
	if c.Email.APIKey == "" {
		log.Println("WARN: email.api_key not set, plan emails will fail to send")
	}
	if c.AI.APIKey == "" {
		log.Println("WARN: ai.api_key not set, coach assistant disabled")
	}
	if c.Payments.WebhookSecret == "" {
		if c.Payments.AllowUnsignedWebhooks {
			log.Println("WARN: payments.webhook_secret not set, unsigned webhooks are ACCEPTED (dev only)")
		} else {
			log.Println("WARN: payments.webhook_secret not set, payment webhooks will be rejected")
		}
	}
	return nil
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in path, when present, is loaded into the environment first.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	if err := godotenv.Load(strings.TrimSuffix(path, "/") + "/.env"); err == nil {
		log.Println("INFO: Loaded environment from .env")
	}

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Nested keys map to env vars, e.g. jwt.secret -> JWT_SECRET
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.name", "gym_portal")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.expiration", "720h") // 30 days
	v.SetDefault("payments.allow_unsigned_webhooks", false)
	v.SetDefault("email.provider", "resend")
	v.SetDefault("email.from", "no-reply@gym-portal.local")
	v.SetDefault("email.from_name", "Gym Portal")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.history_limit", 10)
	v.SetDefault("booking.max_range_days", 31)

	// AutomaticEnv only resolves keys viper already knows about
	for _, key := range []string{
		"database.uri", "jwt.secret", "payments.webhook_secret", "email.api_key",
		"ai.api_key", "ai.base_url", "ai.system_prompt",
		"s3.endpoint", "s3.region", "s3.access_key_id", "s3.secret_access_key", "s3.bucket_name",
	} {
		_ = v.BindEnv(key)
	}

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return
	}
	return config, nil
}
