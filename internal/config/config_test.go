package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("RANKPILOT_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "jwt secret")
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("RANKPILOT_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "RankPilot API", cfg.AppName)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, "8080", cfg.AppPort)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "openai", cfg.AIProvider)
	require.Equal(t, ActivityWriteSync, cfg.ActivityWriteMode)
	require.Equal(t, 10*time.Minute, cfg.ToolCacheTTL)
	require.Equal(t, 5*time.Minute, cfg.EntitlementTTL)
	require.Equal(t, 500, cfg.MigrationPageSize)
	require.Equal(t, 30, cfg.ToolRateLimit)
	require.Equal(t, time.Minute, cfg.ToolRateWindow)
	require.Equal(t, 50, cfg.AssistantHistoryN)
}

func TestLoadHonorsOverrides(t *testing.T) {
	t.Setenv("RANKPILOT_JWT_SECRET", "test-secret")
	t.Setenv("RANKPILOT_APP_PORT", ":9090")
	t.Setenv("RANKPILOT_ACTIVITY_WRITE_MODE", "ASYNC")
	t.Setenv("RANKPILOT_TOOL_CACHE_TTL", "30m")
	t.Setenv("RANKPILOT_MIGRATION_SCAN_PAGE_SIZE", "250")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, ActivityWriteAsync, cfg.ActivityWriteMode)
	require.Equal(t, 30*time.Minute, cfg.ToolCacheTTL)
	require.Equal(t, 250, cfg.MigrationPageSize)
}

func TestLoadRejectsUnknownWriteMode(t *testing.T) {
	t.Setenv("RANKPILOT_JWT_SECRET", "test-secret")
	t.Setenv("RANKPILOT_ACTIVITY_WRITE_MODE", "eventually")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "activity write mode")
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("RANKPILOT_JWT_SECRET", "test-secret")
	t.Setenv("RANKPILOT_TOOL_CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "tool cache ttl")
}
