package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Approval    ApprovalConfig
	Delivery    DeliveryConfig
	Idempotency IdempotencyConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// ThresholdRule is one per-currency approval rule. Currency "*" is the
// wildcard fallback.
type ThresholdRule struct {
	Currency          string
	MinAmount         decimal.Decimal
	RequiredApprovals int
}

type ApprovalConfig struct {
	Thresholds         []ThresholdRule
	HighValueAmount    decimal.Decimal
	EscalatedApprovals int
}

type DeliveryConfig struct {
	MaxAttempts      int
	Backoff          time.Duration
	WebhookEndpoints []string
}

type IdempotencyConfig struct {
	TTL time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "treasury-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "treasury")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("APPROVAL_THRESHOLDS", "USD:10000:2,EUR:10000:2,BTC:0.1:3,*:10000:2")
	viper.SetDefault("APPROVAL_HIGH_VALUE_AMOUNT", "50000")
	viper.SetDefault("APPROVAL_ESCALATED_COUNT", 3)
	viper.SetDefault("DELIVERY_MAX_ATTEMPTS", 5)
	viper.SetDefault("DELIVERY_BACKOFF_SECONDS", 60)
	viper.SetDefault("DELIVERY_WEBHOOK_ENDPOINTS", "")
	viper.SetDefault("IDEMPOTENCY_TTL_HOURS", 24)

	highValue, err := decimal.NewFromString(viper.GetString("APPROVAL_HIGH_VALUE_AMOUNT"))
	if err != nil {
		log.Printf("Warning: invalid APPROVAL_HIGH_VALUE_AMOUNT, using 50000: %v", err)
		highValue = decimal.NewFromInt(50000)
	}

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Approval: ApprovalConfig{
			Thresholds:         parseThresholds(viper.GetString("APPROVAL_THRESHOLDS")),
			HighValueAmount:    highValue,
			EscalatedApprovals: viper.GetInt("APPROVAL_ESCALATED_COUNT"),
		},
		Delivery: DeliveryConfig{
			MaxAttempts:      viper.GetInt("DELIVERY_MAX_ATTEMPTS"),
			Backoff:          time.Duration(viper.GetInt("DELIVERY_BACKOFF_SECONDS")) * time.Second,
			WebhookEndpoints: splitNonEmpty(viper.GetString("DELIVERY_WEBHOOK_ENDPOINTS")),
		},
		Idempotency: IdempotencyConfig{
			TTL: time.Duration(viper.GetInt("IDEMPOTENCY_TTL_HOURS")) * time.Hour,
		},
	}
}

// parseThresholds parses "CCY:minAmount:requiredApprovals" triples separated
// by commas, e.g. "USD:10000:2,BTC:0.1:3,*:10000:2". Malformed entries are
// skipped with a warning.
func parseThresholds(raw string) []ThresholdRule {
	var rules []ThresholdRule
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			log.Printf("Warning: skipping malformed approval threshold %q", part)
			continue
		}
		minAmount, err := decimal.NewFromString(fields[1])
		if err != nil {
			log.Printf("Warning: skipping approval threshold %q: %v", part, err)
			continue
		}
		required, err := strconv.Atoi(fields[2])
		if err != nil || required < 1 {
			log.Printf("Warning: skipping approval threshold %q: bad approver count", part)
			continue
		}
		rules = append(rules, ThresholdRule{
			Currency:          strings.ToUpper(fields[0]),
			MinAmount:         minAmount,
			RequiredApprovals: required,
		})
	}
	return rules
}

func splitNonEmpty(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
