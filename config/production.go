// Package config provides configuration management and environment variable handling for the application
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database     DatabaseConfig     `json:"database"`
	Server       ServerConfig       `json:"server"`
	Security     SecurityConfig     `json:"security"`
	JWT          JWTConfig          `json:"jwt"`
	Logging      LoggingConfig      `json:"logging"`
	Metrics      MetricsConfig      `json:"metrics"`
	Cache        CacheConfig        `json:"cache"`
	Deployment   DeploymentConfig   `json:"deployment"`
	Scheduler    SchedulerConfig    `json:"scheduler"`
	PriceSource  PriceSourceConfig  `json:"price_source"`
	Gumroad      GumroadConfig      `json:"gumroad"`
	ExchangeRate ExchangeRateConfig `json:"exchange_rate"`
	Portfolio    PortfolioConfig    `json:"portfolio"`
	Admin        AdminConfig        `json:"admin"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	AutoMigrate     bool          `json:"auto_migrate"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
}

type SecurityConfig struct {
	// CORS
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
	CORSMaxAge       int      `json:"cors_max_age"`

	// Rate Limiting
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per window
	RateLimitWindow time.Duration `json:"rate_limit_window"`

	IPBlacklist []string `json:"ip_blacklist"`
}

type JWTConfig struct {
	SecretKey  string `json:"secret_key"`
	Issuer     string `json:"issuer"`
	Audience   string `json:"audience"`
	CookieName string `json:"cookie_name"`
}

type LoggingConfig struct {
	Level        string `json:"level"`  // debug, info, warn, error
	Format       string `json:"format"` // json, text
	Output       string `json:"output"` // stdout, file, both
	FilePath     string `json:"file_path"`
	MaxSize      int    `json:"max_size"` // MB
	MaxBackups   int    `json:"max_backups"`
	MaxAge       int    `json:"max_age"` // days
	Compress     bool   `json:"compress"`
	EnableCaller bool   `json:"enable_caller"`

	// Scheduler log, written in addition to the main output
	SchedulerLogPath string `json:"scheduler_log_path"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type CacheConfig struct {
	Enabled         bool          `json:"enabled"`
	Provider        string        `json:"provider"` // redis, none
	RedisURL        string        `json:"redis_url"`
	RedisDB         int           `json:"redis_db"`
	RedisPrefix     string        `json:"redis_prefix"`
	DefaultTTL      time.Duration `json:"default_ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

type DeploymentConfig struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
	CommitHash  string `json:"commit_hash"`
	BuildTime   string `json:"build_time"`
}

// SchedulerConfig controls the daily price ingestion job
type SchedulerConfig struct {
	PriceIngestionEnabled bool   `json:"price_ingestion_enabled"`
	PriceIngestionCron    string `json:"price_ingestion_cron"` // six fields, seconds first
	RunOnStartup          bool   `json:"run_on_startup"`
}

// PriceSourceConfig describes the scraped reference price page
type PriceSourceConfig struct {
	BaseURL          string        `json:"base_url"`
	Timeout          time.Duration `json:"timeout"`
	UserAgent        string        `json:"user_agent"`
	HeaderRows       int           `json:"header_rows"`
	DenominationRows int           `json:"denomination_rows"`
}

type GumroadConfig struct {
	BaseURL     string        `json:"base_url"`
	AccessToken string        `json:"access_token"`
	ProductID   string        `json:"product_id"`
	Timeout     time.Duration `json:"timeout"`
	PriceTTL    time.Duration `json:"price_ttl"`
}

type ExchangeRateConfig struct {
	BaseURL string        `json:"base_url"`
	APIKey  string        `json:"api_key"`
	Timeout time.Duration `json:"timeout"`
}

// PortfolioConfig holds ledger rules
type PortfolioConfig struct {
	MinBuyingDate          string `json:"min_buying_date"`
	Timezone               string `json:"timezone"`
	FreeLotLimit           int    `json:"free_lot_limit"`
	EnforceSubscriptionCap bool   `json:"enforce_subscription_cap"`
}

type AdminConfig struct {
	CronSecret string `json:"cron_secret"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Load environment variables from .env file
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "goldfolio"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 1*1024*1024), // 1MB
		},
		Security: SecurityConfig{
			AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			CORSMaxAge:       getEnvInt("CORS_MAX_AGE", 86400),
			GlobalRateLimit:  getEnvInt("GLOBAL_RATE_LIMIT", 600),
			RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
			IPBlacklist:      getEnvStringSlice("IP_BLACKLIST", []string{}),
		},
		JWT: JWTConfig{
			SecretKey:  getEnvString("JWT_SECRET_KEY", ""),
			Issuer:     getEnvString("JWT_ISSUER", ""),
			Audience:   getEnvString("JWT_AUDIENCE", "authenticated"),
			CookieName: getEnvString("JWT_COOKIE_NAME", "access_token"),
		},
		Logging: LoggingConfig{
			Level:            getEnvString("LOG_LEVEL", "info"),
			Format:           getEnvString("LOG_FORMAT", "json"),
			Output:           getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:         getEnvString("LOG_FILE_PATH", "data/app.log"),
			MaxSize:          getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups:       getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:           getEnvInt("LOG_MAX_AGE", 30),
			Compress:         getEnvBool("LOG_COMPRESS", true),
			EnableCaller:     getEnvBool("LOG_ENABLE_CALLER", false),
			SchedulerLogPath: getEnvString("LOG_SCHEDULER_PATH", "data/scheduler.log"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Cache: CacheConfig{
			Enabled:         getEnvBool("CACHE_ENABLED", true),
			Provider:        getEnvString("CACHE_PROVIDER", "redis"),
			RedisURL:        getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:         getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix:     getEnvString("CACHE_REDIS_PREFIX", "goldfolio:"),
			DefaultTTL:      getEnvDuration("CACHE_DEFAULT_TTL", 1*time.Hour),
			CleanupInterval: getEnvDuration("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Deployment: DeploymentConfig{
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("VERSION", "1.0.0"),
			CommitHash:  getEnvString("COMMIT_HASH", "unknown"),
			BuildTime:   getEnvString("BUILD_TIME", "unknown"),
		},
		Scheduler: SchedulerConfig{
			PriceIngestionEnabled: getEnvBool("PRICE_INGESTION_ENABLED", true),
			PriceIngestionCron:    getEnvString("PRICE_INGESTION_CRON", "0 30 9 * * *"),
			RunOnStartup:          getEnvBool("PRICE_INGESTION_RUN_ON_STARTUP", false),
		},
		PriceSource: PriceSourceConfig{
			BaseURL:          getEnvString("PRICE_SOURCE_BASE_URL", "https://harga-emas.org/history-harga"),
			Timeout:          getEnvDuration("PRICE_SOURCE_TIMEOUT", 20*time.Second),
			UserAgent:        getEnvString("PRICE_SOURCE_USER_AGENT", "Mozilla/5.0 (compatible; goldfolio/1.0)"),
			HeaderRows:       getEnvInt("PRICE_SOURCE_HEADER_ROWS", 2),
			DenominationRows: getEnvInt("PRICE_SOURCE_DENOMINATION_ROWS", 12),
		},
		Gumroad: GumroadConfig{
			BaseURL:     getEnvString("GUMROAD_BASE_URL", "https://api.gumroad.com/v2"),
			AccessToken: getEnvString("GUMROAD_API_KEY", ""),
			ProductID:   getEnvString("GUMROAD_PRODUCT_ID", "finxj"),
			Timeout:     getEnvDuration("GUMROAD_TIMEOUT", 10*time.Second),
			PriceTTL:    getEnvDuration("GUMROAD_PRICE_TTL", 24*time.Hour),
		},
		ExchangeRate: ExchangeRateConfig{
			BaseURL: getEnvString("EXCHANGE_RATE_BASE_URL", "https://v6.exchangerate-api.com/v6"),
			APIKey:  getEnvString("EXCHANGE_RATE_API_KEY", ""),
			Timeout: getEnvDuration("EXCHANGE_RATE_TIMEOUT", 10*time.Second),
		},
		Portfolio: PortfolioConfig{
			MinBuyingDate:          getEnvString("PORTFOLIO_MIN_BUYING_DATE", "2013-11-08"),
			Timezone:               getEnvString("PORTFOLIO_TIMEZONE", "Asia/Jakarta"),
			FreeLotLimit:           getEnvInt("PORTFOLIO_FREE_LOT_LIMIT", 2),
			EnforceSubscriptionCap: getEnvBool("PORTFOLIO_ENFORCE_SUBSCRIPTION_CAP", false),
		},
		Admin: AdminConfig{
			CronSecret: getEnvString("ADMIN_CRON_SECRET", ""),
		},
	}

	// Validate the loaded configuration
	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads environment variables from .env file if it exists.
// Variables already present in the environment win.
func loadEnvFile() error {
	envFile := getEnvString("ENV_FILE", ".env")
	if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(envFile)
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errs []string

	// Validate database configuration
	if cfg.Database.Host == "" {
		errs = append(errs, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errs = append(errs, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errs = append(errs, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errs = append(errs, "DB_USER is required")
	}

	// Validate JWT configuration
	if len(cfg.JWT.SecretKey) < 32 {
		errs = append(errs, "JWT_SECRET_KEY must be at least 32 characters long")
	}

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be positive")
	}

	// Validate cache configuration
	if cfg.Cache.Enabled && cfg.Cache.Provider == "redis" && cfg.Cache.RedisURL == "" {
		errs = append(errs, "CACHE_REDIS_URL is required when redis cache is enabled")
	}

	// Validate price ingestion configuration
	if cfg.PriceSource.BaseURL == "" {
		errs = append(errs, "PRICE_SOURCE_BASE_URL is required")
	}
	if cfg.PriceSource.HeaderRows < 0 {
		errs = append(errs, "PRICE_SOURCE_HEADER_ROWS must not be negative")
	}
	if cfg.PriceSource.DenominationRows <= 0 {
		errs = append(errs, "PRICE_SOURCE_DENOMINATION_ROWS must be positive")
	}
	if cfg.Scheduler.PriceIngestionEnabled && cfg.Scheduler.PriceIngestionCron == "" {
		errs = append(errs, "PRICE_INGESTION_CRON is required when ingestion is enabled")
	}

	// Validate portfolio rules
	if _, err := time.Parse("2006-01-02", cfg.Portfolio.MinBuyingDate); err != nil {
		errs = append(errs, "PORTFOLIO_MIN_BUYING_DATE must be a YYYY-MM-DD date")
	}
	if _, err := time.LoadLocation(cfg.Portfolio.Timezone); err != nil {
		errs = append(errs, "PORTFOLIO_TIMEZONE must be a valid IANA timezone")
	}
	if cfg.Portfolio.FreeLotLimit < 0 {
		errs = append(errs, "PORTFOLIO_FREE_LOT_LIMIT must not be negative")
	}
	if cfg.Portfolio.EnforceSubscriptionCap && cfg.Gumroad.AccessToken == "" {
		errs = append(errs, "GUMROAD_API_KEY is required when the subscription cap is enforced")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
