package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Activity write modes supported by the orchestration layer.
const (
	ActivityWriteSync  = "sync"
	ActivityWriteAsync = "async"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	JWTSecret           string
	AIProvider          string
	OpenAIAPIKey        string
	AnthropicAPIKey     string
	AIModel             string
	ToolCacheTTL        time.Duration
	ActivityCacheTTL    time.Duration
	EntitlementTTL      time.Duration
	ActivityWriteMode   string
	MigrationPageSize   int
	ToolRateLimit       int
	ToolRateWindow      time.Duration
	AssistantHistoryN   int
	AssistantSessionTTL time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RANKPILOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "RankPilot API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("tool.cache_ttl", "10m")
	v.SetDefault("activity.cache_ttl", "45s")
	v.SetDefault("activity.write_mode", ActivityWriteSync)
	v.SetDefault("entitlement.cache_ttl", "5m")
	v.SetDefault("migration.scan_page_size", 500)
	v.SetDefault("tool.rate_limit", 30)
	v.SetDefault("tool.rate_window", "1m")
	v.SetDefault("assistant.history_size", 50)
	v.SetDefault("assistant.session_ttl", "24h")

	toolTTL, err := parseDuration(v, "tool.cache_ttl", 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid tool cache ttl: %w", err)
	}

	activityTTL, err := parseDuration(v, "activity.cache_ttl", 45*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid activity cache ttl: %w", err)
	}

	entitlementTTL, err := parseDuration(v, "entitlement.cache_ttl", 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid entitlement cache ttl: %w", err)
	}

	rateWindow, err := parseDuration(v, "tool.rate_window", time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid tool rate window: %w", err)
	}

	sessionTTL, err := parseDuration(v, "assistant.session_ttl", 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid assistant session ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		AIProvider:          strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		AnthropicAPIKey:     v.GetString("anthropic_api_key"),
		AIModel:             v.GetString("ai.model"),
		ToolCacheTTL:        toolTTL,
		ActivityCacheTTL:    activityTTL,
		EntitlementTTL:      entitlementTTL,
		ActivityWriteMode:   strings.ToLower(v.GetString("activity.write_mode")),
		MigrationPageSize:   v.GetInt("migration.scan_page_size"),
		ToolRateLimit:       v.GetInt("tool.rate_limit"),
		ToolRateWindow:      rateWindow,
		AssistantHistoryN:   v.GetInt("assistant.history_size"),
		AssistantSessionTTL: sessionTTL,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ActivityWriteMode != ActivityWriteSync && cfg.ActivityWriteMode != ActivityWriteAsync {
		return Config{}, fmt.Errorf("invalid activity write mode %q", cfg.ActivityWriteMode)
	}

	if cfg.MigrationPageSize <= 0 {
		cfg.MigrationPageSize = 500
	}

	if cfg.ToolRateLimit <= 0 {
		cfg.ToolRateLimit = 30
	}

	if cfg.AssistantHistoryN <= 0 {
		cfg.AssistantHistoryN = 50
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
