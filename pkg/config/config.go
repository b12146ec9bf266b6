package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the knobs the runtime needs to resolve, verify, and execute
// a component.
type Config struct {
	LogLevel string

	ArtifactStoreKind string // "dir" | "s3" | "gcs"
	ArtifactStoreRoot string // local dir path for "dir"; s3/gcs take bucket and prefix from ARTIFACT_* variables

	AllowUnverified bool
	TrustedSigners  []string

	FuelLimit        uint64 // 0 = unlimited
	MemoryLimitMiB   uint32 // 0 = unlimited
	WallclockTimeout time.Duration
	PerCallTimeout   time.Duration
	MaxAttempts      int
	BaseBackoff      time.Duration

	HTTPEnabled bool

	OTLPEndpoint string
	OTelEnabled  bool
}

// Load reads Config from the environment, applying the same defaults the
// router CLI falls back to when a flag is absent.
func Load() *Config {
	return &Config{
		LogLevel: envOr("MCP_LOG_LEVEL", "INFO"),

		ArtifactStoreKind: envOr("MCP_STORE_KIND", "dir"),
		ArtifactStoreRoot: envOr("MCP_STORE_ROOT", "./components"),

		AllowUnverified: envBool("MCP_ALLOW_UNVERIFIED", false),
		TrustedSigners:  envList("MCP_TRUSTED_SIGNERS"),

		FuelLimit:        envUint64("MCP_FUEL_LIMIT", 0),
		MemoryLimitMiB:   uint32(envUint64("MCP_MEMORY_LIMIT_MIB", 0)),
		WallclockTimeout: envDuration("MCP_WALLCLOCK_TIMEOUT_MS", 5*time.Second),
		PerCallTimeout:   envDuration("MCP_PER_CALL_TIMEOUT_MS", 10*time.Second),
		MaxAttempts:      int(envUint64("MCP_MAX_ATTEMPTS", 1)),
		BaseBackoff:      envDuration("MCP_BASE_BACKOFF_MS", 100*time.Millisecond),

		HTTPEnabled: envBool("MCP_ENABLE_HTTP", false),

		OTLPEndpoint: envOr("MCP_OTLP_ENDPOINT", "localhost:4317"),
		OTelEnabled:  envBool("MCP_OTEL_ENABLED", false),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envUint64(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	ms, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			if i > start {
				out = append(out, v[start:i])
			}
			start = i + 1
		}
	}
	return out
}
