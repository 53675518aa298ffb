package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Billing policy values. The defaults reproduce how invoices were always
// generated: one fixed currency and a monthly cadence for every subscription.
const (
	CurrencyPolicyDefault      = "default"
	CurrencyPolicySubscription = "subscription"

	IntervalPolicyMonthly      = "monthly"
	IntervalPolicySubscription = "subscription"

	MonthEndPolicyClamp    = "clamp"
	MonthEndPolicyOverflow = "overflow"

	FiscalModeSimulated = "simulated"
	FiscalModePlugin    = "plugin"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv     string
	LogLevel   string
	LogFormat  string
	OperatorID string

	// Database
	DatabaseURL string
	SQLitePath  string
	MaxConns    int

	// Hosted backend
	SupabaseURL string
	SupabaseKey string

	// Redis
	RedisURL     string
	ViewCacheTTL time.Duration

	// RabbitMQ
	RabbitMQURL string

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxStatsInterval    time.Duration
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	// Worker
	WorkerHealthAddr   string
	BillingRunInterval time.Duration
	BillingRunLockTTL  time.Duration

	// Billing
	DefaultCurrency  string
	CurrencyPolicy   string
	IntervalPolicy   string
	MonthEndPolicy   string
	InvoiceRiskAfter time.Duration

	// Fiscal validation
	FiscalMode             string
	FiscalPluginPath       string
	FiscalSimulatedDelay   time.Duration
	FiscalBreakerThreshold int
	FiscalBreakerTimeout   time.Duration

	// Exchange rates
	ExchangeAPIURL   string
	ExchangeCacheTTL time.Duration
	ExchangeRetryMax int

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		OperatorID: getEnv("LEGASYNC_OPERATOR_ID", "00000000-0000-0000-0000-000000000001"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("LEGASYNC_SQLITE_PATH", ""),
		MaxConns:    getIntEnv("DATABASE_MAX_CONNS", 10),

		SupabaseURL: getEnv("SUPABASE_URL", ""),
		SupabaseKey: getEnv("SUPABASE_KEY", ""),

		RedisURL:     getEnv("REDIS_URL", ""),
		ViewCacheTTL: getDurationEnv("VIEW_CACHE_TTL", 10*time.Minute),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", 30*time.Second),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		WorkerHealthAddr:   getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
		BillingRunInterval: getDurationEnv("BILLING_RUN_INTERVAL", 6*time.Hour),
		BillingRunLockTTL:  getDurationEnv("BILLING_RUN_LOCK_TTL", 30*time.Minute),

		DefaultCurrency:  strings.ToUpper(getEnv("BILLING_DEFAULT_CURRENCY", "USD")),
		CurrencyPolicy:   getEnv("BILLING_CURRENCY_POLICY", CurrencyPolicyDefault),
		IntervalPolicy:   getEnv("BILLING_INTERVAL_POLICY", IntervalPolicyMonthly),
		MonthEndPolicy:   getEnv("BILLING_MONTH_END_POLICY", MonthEndPolicyClamp),
		InvoiceRiskAfter: getDurationEnv("INVOICE_RISK_AFTER", 15*24*time.Hour),

		FiscalMode:             getEnv("FISCAL_MODE", FiscalModeSimulated),
		FiscalPluginPath:       getEnv("FISCAL_PLUGIN_PATH", ""),
		FiscalSimulatedDelay:   getDurationEnv("FISCAL_SIMULATED_DELAY", 1500*time.Millisecond),
		FiscalBreakerThreshold: getIntEnv("FISCAL_BREAKER_THRESHOLD", 3),
		FiscalBreakerTimeout:   getDurationEnv("FISCAL_BREAKER_TIMEOUT", 30*time.Second),

		ExchangeAPIURL:   getEnv("EXCHANGE_API_URL", "https://dolarapi.com/v1/dolares"),
		ExchangeCacheTTL: getDurationEnv("EXCHANGE_CACHE_TTL", 5*time.Minute),
		ExchangeRetryMax: getIntEnv("EXCHANGE_RETRY_MAX", 3),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects policy values the billing runner does not understand.
func (c *Config) Validate() error {
	switch c.CurrencyPolicy {
	case CurrencyPolicyDefault, CurrencyPolicySubscription:
	default:
		return fmt.Errorf("invalid BILLING_CURRENCY_POLICY %q", c.CurrencyPolicy)
	}
	switch c.IntervalPolicy {
	case IntervalPolicyMonthly, IntervalPolicySubscription:
	default:
		return fmt.Errorf("invalid BILLING_INTERVAL_POLICY %q", c.IntervalPolicy)
	}
	switch c.MonthEndPolicy {
	case MonthEndPolicyClamp, MonthEndPolicyOverflow:
	default:
		return fmt.Errorf("invalid BILLING_MONTH_END_POLICY %q", c.MonthEndPolicy)
	}
	switch c.FiscalMode {
	case FiscalModeSimulated:
	case FiscalModePlugin:
		if c.FiscalPluginPath == "" {
			return fmt.Errorf("FISCAL_PLUGIN_PATH is required when FISCAL_MODE=plugin")
		}
	default:
		return fmt.Errorf("invalid FISCAL_MODE %q", c.FiscalMode)
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("invalid BILLING_DEFAULT_CURRENCY %q", c.DefaultCurrency)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LocalMode reports whether the embedded SQLite store is used.
func (c *Config) LocalMode() bool {
	return c.DatabaseURL == "" && !c.RemoteMode()
}

// RemoteMode reports whether subscriptions and invoices live in the hosted backend.
func (c *Config) RemoteMode() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
