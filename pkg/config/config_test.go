package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"MCP_LOG_LEVEL", "MCP_STORE_KIND", "MCP_STORE_ROOT", "MCP_ALLOW_UNVERIFIED",
		"MCP_TRUSTED_SIGNERS", "MCP_FUEL_LIMIT", "MCP_MEMORY_LIMIT_MIB",
		"MCP_WALLCLOCK_TIMEOUT_MS", "MCP_PER_CALL_TIMEOUT_MS", "MCP_MAX_ATTEMPTS",
		"MCP_BASE_BACKOFF_MS", "MCP_ENABLE_HTTP", "MCP_OTLP_ENDPOINT", "MCP_OTEL_ENABLED",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	require.Equal(t, "INFO", cfg.LogLevel)
	require.Equal(t, "dir", cfg.ArtifactStoreKind)
	require.Equal(t, "./components", cfg.ArtifactStoreRoot)
	require.False(t, cfg.AllowUnverified)
	require.Nil(t, cfg.TrustedSigners)
	require.Equal(t, uint64(0), cfg.FuelLimit)
	require.Equal(t, 5*time.Second, cfg.WallclockTimeout)
	require.Equal(t, 10*time.Second, cfg.PerCallTimeout)
	require.Equal(t, 1, cfg.MaxAttempts)
	require.False(t, cfg.HTTPEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MCP_ALLOW_UNVERIFIED", "true")
	t.Setenv("MCP_TRUSTED_SIGNERS", "alice,bob,carol")
	t.Setenv("MCP_ENABLE_HTTP", "true")
	t.Setenv("MCP_PER_CALL_TIMEOUT_MS", "2500")

	cfg := Load()
	require.True(t, cfg.AllowUnverified)
	require.Equal(t, []string{"alice", "bob", "carol"}, cfg.TrustedSigners)
	require.True(t, cfg.HTTPEnabled)
	require.Equal(t, 2500*time.Millisecond, cfg.PerCallTimeout)
}
