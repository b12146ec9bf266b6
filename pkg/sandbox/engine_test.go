package sandbox

import (
	"testing"

	"github.com/greentic-ai-org/greentic-mcp/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestEngineConfigFromConfigCarriesMemoryLimit(t *testing.T) {
	cfg := &config.Config{MemoryLimitMiB: 64, FuelLimit: 1_000_000}
	got := EngineConfigFromConfig(cfg)
	require.EqualValues(t, 64, got.MemoryLimitMiB)
}

func TestEngineConfigFromConfigNilConfigIsZeroValue(t *testing.T) {
	require.Equal(t, EngineConfig{}, EngineConfigFromConfig(nil))
}
