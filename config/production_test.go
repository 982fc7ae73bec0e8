package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("PORTFOLIO_TIMEZONE", "UTC")
}

func TestLoadProductionConfig_Defaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "0 30 9 * * *", cfg.Scheduler.PriceIngestionCron)
	assert.Equal(t, 2, cfg.PriceSource.HeaderRows)
	assert.Equal(t, 12, cfg.PriceSource.DenominationRows)
	assert.Equal(t, "2013-11-08", cfg.Portfolio.MinBuyingDate)
	assert.Equal(t, 2, cfg.Portfolio.FreeLotLimit)
	assert.False(t, cfg.Portfolio.EnforceSubscriptionCap)
	assert.Equal(t, 24*time.Hour, cfg.Gumroad.PriceTTL)
	assert.Empty(t, cfg.Admin.CronSecret)
}

func TestLoadProductionConfig_Overrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("GUMROAD_PRICE_TTL", "90m")
	t.Setenv("PORTFOLIO_ENFORCE_SUBSCRIPTION_CAP", "true")
	t.Setenv("GUMROAD_API_KEY", "token")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 90*time.Minute, cfg.Gumroad.PriceTTL)
	assert.True(t, cfg.Portfolio.EnforceSubscriptionCap)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoadProductionConfig_EnvFile(t *testing.T) {
	setMinimalEnv(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ADMIN_CRON_SECRET=from-file\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("ADMIN_CRON_SECRET", "")
	require.NoError(t, os.Unsetenv("ADMIN_CRON_SECRET"))

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Admin.CronSecret)
}

func TestLoadProductionConfig_ShortSecret(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("JWT_SECRET_KEY", "short")

	_, err := LoadProductionConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY must be at least 32 characters long")
}

func validConfig() *ProductionConfig {
	return &ProductionConfig{
		Database:    DatabaseConfig{Host: "db", Port: 5432, Name: "goldfolio", User: "app"},
		Server:      ServerConfig{Port: 8080, ReadTimeout: time.Second, WriteTimeout: time.Second},
		JWT:         JWTConfig{SecretKey: testSecret},
		Cache:       CacheConfig{Enabled: true, Provider: "redis", RedisURL: "redis://localhost:6379"},
		Scheduler:   SchedulerConfig{PriceIngestionEnabled: true, PriceIngestionCron: "0 30 9 * * *"},
		PriceSource: PriceSourceConfig{BaseURL: "https://prices.test", HeaderRows: 2, DenominationRows: 12},
		Portfolio:   PortfolioConfig{MinBuyingDate: "2013-11-08", Timezone: "UTC", FreeLotLimit: 2},
	}
}

func TestValidateProductionConfig(t *testing.T) {
	require.NoError(t, ValidateProductionConfig(validConfig()))

	tests := []struct {
		name   string
		mutate func(*ProductionConfig)
		want   string
	}{
		{"missing db host", func(c *ProductionConfig) { c.Database.Host = "" }, "DB_HOST is required"},
		{"db port out of range", func(c *ProductionConfig) { c.Database.Port = 70000 }, "DB_PORT must be between 1 and 65535"},
		{"server port zero", func(c *ProductionConfig) { c.Server.Port = 0 }, "SERVER_PORT must be between 1 and 65535"},
		{"redis url missing", func(c *ProductionConfig) { c.Cache.RedisURL = "" }, "CACHE_REDIS_URL is required"},
		{"no denomination rows", func(c *ProductionConfig) { c.PriceSource.DenominationRows = 0 }, "PRICE_SOURCE_DENOMINATION_ROWS must be positive"},
		{"negative header rows", func(c *ProductionConfig) { c.PriceSource.HeaderRows = -1 }, "PRICE_SOURCE_HEADER_ROWS must not be negative"},
		{"cron missing", func(c *ProductionConfig) { c.Scheduler.PriceIngestionCron = "" }, "PRICE_INGESTION_CRON is required"},
		{"bad min date", func(c *ProductionConfig) { c.Portfolio.MinBuyingDate = "08/11/2013" }, "PORTFOLIO_MIN_BUYING_DATE must be a YYYY-MM-DD date"},
		{"bad timezone", func(c *ProductionConfig) { c.Portfolio.Timezone = "Not/AZone" }, "PORTFOLIO_TIMEZONE must be a valid IANA timezone"},
		{"negative lot limit", func(c *ProductionConfig) { c.Portfolio.FreeLotLimit = -1 }, "PORTFOLIO_FREE_LOT_LIMIT must not be negative"},
		{"cap without gumroad", func(c *ProductionConfig) { c.Portfolio.EnforceSubscriptionCap = true }, "GUMROAD_API_KEY is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := ValidateProductionConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateProductionConfig_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	cfg.JWT.SecretKey = ""

	err := ValidateProductionConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST is required")
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY must be at least 32 characters long")
}
