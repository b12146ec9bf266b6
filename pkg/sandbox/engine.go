// Package sandbox hosts components inside a wazero runtime: a shared
// Engine, the host capability surfaces the Dispatcher wires into a fresh
// linker per call, and the dispatch/timeout logic that turns a compiled
// component into a router Response.
package sandbox

import (
	"context"
	"fmt"

	"github.com/greentic-ai-org/greentic-mcp/pkg/config"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Engine is the shared, immutable-after-construction wazero runtime.
// Every execution gets its own linker, store, and module instance; only
// the compilation cache and the runtime itself are shared across calls.
type Engine struct {
	runtime        wazero.Runtime
	memoryLimitMiB uint32
}

// EngineConfig configures the shared runtime.
type EngineConfig struct {
	MemoryLimitMiB uint32
}

// EngineConfigFromConfig derives the Engine's construction knobs from the
// Runtime Policy's config.Config, so every Engine assembled alongside a
// Config carries its memory ceiling. cfg.FuelLimit has no counterpart here:
// wazero exposes no instruction-budget/fuel-metering primitive comparable to
// wasmtime's Store.set_fuel, so the wallclock/per-call timeouts enforced by
// the Supervisor are this runtime's only execution-budget control; FuelLimit
// is accepted and stored in Config for forward compatibility but is not
// read by any engine today.
func EngineConfigFromConfig(cfg *config.Config) EngineConfig {
	if cfg == nil {
		return EngineConfig{}
	}
	return EngineConfig{MemoryLimitMiB: cfg.MemoryLimitMiB}
}

// NewEngine builds the shared wazero runtime and instantiates the WASI
// preview-1 import set. No filesystem, network, or environment access is
// wired here; those are deny-by-default unless a capability host module
// below grants them explicitly.
func NewEngine(ctx context.Context, cfg EngineConfig) (*Engine, error) {
	rtCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitMiB > 0 {
		pages := (cfg.MemoryLimitMiB * 1024 * 1024) / 65536
		if pages == 0 {
			pages = 1
		}
		rtCfg = rtCfg.WithMemoryLimitPages(pages)
	}

	r := wazero.NewRuntimeWithConfig(ctx, rtCfg)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("sandbox: instantiate wasi: %w", err)
	}

	return &Engine{runtime: r, memoryLimitMiB: cfg.MemoryLimitMiB}, nil
}

// Compile compiles raw component bytes against the shared runtime. The
// caller owns the returned module and must Close it.
func (e *Engine) Compile(ctx context.Context, wasmBytes []byte) (wazero.CompiledModule, error) {
	return e.runtime.CompileModule(ctx, wasmBytes)
}

// Close releases the shared runtime. Call once at process shutdown.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
