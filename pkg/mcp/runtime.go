// Package mcp wires the Artifact Store, Verifier, and sandbox Dispatcher
// together behind a single synchronous Exec entrypoint, applying the
// Timeout Supervisor around every dispatch.
package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/greentic-ai-org/greentic-mcp/pkg/artifacts"
	"github.com/greentic-ai-org/greentic-mcp/pkg/config"
	"github.com/greentic-ai-org/greentic-mcp/pkg/envelope"
	"github.com/greentic-ai-org/greentic-mcp/pkg/observability"
	"github.com/greentic-ai-org/greentic-mcp/pkg/sandbox"
	"github.com/greentic-ai-org/greentic-mcp/pkg/secrets"
	"github.com/greentic-ai-org/greentic-mcp/pkg/verifier"
	"go.opentelemetry.io/otel/attribute"
)

// Operation is the closed set of operations an ExecutionRequest may name.
type Operation string

const (
	OperationList Operation = "list"
	OperationCall Operation = "call"
)

// ExecutionRequest is one call into the runtime: which component to run,
// which operation to perform, and (for "call") which tool with which
// arguments, under which tenant's secret scope.
type ExecutionRequest struct {
	ComponentID string
	Operation   Operation
	Tool        string
	Arguments   json.RawMessage
	Tenant      *secrets.TenantScope
}

// Runtime wires the Store, Verifier, Engine, and Dispatcher into the
// single Exec entrypoint every caller (CLI, adapter) goes through.
type Runtime struct {
	Store   artifacts.Store
	Engine  *sandbox.Engine
	Secrets secrets.Store
	KV      sandbox.KVStore
	Config  *config.Config
	Tracer  *observability.Provider
}

// NewRuntime builds a Runtime from its component parts. KV is set to the
// specified no-op KV implementation, and Tracer is built from cfg's OTel
// settings. Exec substitutes a disabled tracer when Tracer is nil, so
// TrackCall is always safe to call.
func NewRuntime(store artifacts.Store, engine *sandbox.Engine, secretsStore secrets.Store, cfg *config.Config) *Runtime {
	tracer, _ := observability.New(context.Background(), &observability.Config{Enabled: cfg.OTelEnabled, OTLPEndpoint: cfg.OTLPEndpoint})
	return &Runtime{Store: store, Engine: engine, Secrets: secretsStore, KV: sandbox.NoopKV{}, Config: cfg, Tracer: tracer}
}

// Exec resolves, verifies, and dispatches req, returning a fully rendered
// envelope regardless of success or failure.
func (r *Runtime) Exec(ctx context.Context, req ExecutionRequest) *envelope.Envelope {
	if req.Operation != OperationList && req.Operation != OperationCall {
		return envelope.RenderError(envelope.NewConfigError("operation must be \"list\" or \"call\""))
	}
	if req.Operation == OperationCall && req.Tool == "" {
		return envelope.RenderError(envelope.NewConfigError("call requires a tool name"))
	}

	resolved, err := r.Store.Fetch(ctx, req.ComponentID)
	if err != nil {
		if errors.Is(err, artifacts.ErrNotFound) {
			return envelope.RenderError(envelope.NewNotFoundError(err.Error()))
		}
		return envelope.RenderError(envelope.NewConfigError(err.Error()))
	}

	policy := verifier.Policy{
		AllowUnverified: r.Config.AllowUnverified,
		RequiredDigests: map[string]string{},
		TrustedSigners:  r.Config.TrustedSigners,
	}
	verified, rerr := verifier.Verify(req.ComponentID, resolved, policy)
	if rerr != nil {
		return envelope.RenderError(rerr)
	}

	caps := sandbox.Capabilities{
		HTTPEnabled: r.Config.HTTPEnabled,
		KV:          r.KV,
		Secrets:     r.Secrets,
		TenantScope: req.Tenant,
	}
	callID := uuid.New().String()
	dispatcher := sandbox.NewDispatcher(r.Engine, caps)
	supervisor := &sandbox.Supervisor{
		PerCallTimeout:   r.Config.PerCallTimeout,
		WallclockTimeout: r.Config.WallclockTimeout,
		CallID:           callID,
	}

	tracer := r.Tracer
	if tracer == nil {
		tracer, _ = observability.New(ctx, &observability.Config{Enabled: false})
	}
	spanCtx, done := tracer.TrackCall(ctx, "mcp.dispatch."+string(req.Operation),
		attribute.String("call_id", callID),
		attribute.String("component_id", req.ComponentID))

	env, rerr2 := retryDispatch(spanCtx, r.Config, func(ctx context.Context) (*envelope.Envelope, *envelope.RuntimeError) {
		return supervisor.Run(ctx, func(ctx context.Context) (*envelope.Envelope, *envelope.RuntimeError) {
			if req.Operation == OperationList {
				return dispatcher.DispatchList(ctx, verified.Bytes)
			}
			argsJSON := "{}"
			if len(req.Arguments) > 0 {
				argsJSON = string(req.Arguments)
			}
			return dispatcher.Dispatch(ctx, verified.Bytes, req.Tool, argsJSON)
		})
	})
	if rerr2 != nil {
		done(rerr2)
		return envelope.RenderError(rerr2)
	}
	done(nil)
	return env
}

// dispatchError adapts a *envelope.RuntimeError to the plain error interface
// backoff.Retry requires, so retryability can still be read back off it
// after the loop exits.
type dispatchError struct {
	runtimeErr *envelope.RuntimeError
}

func (e *dispatchError) Error() string {
	return e.runtimeErr.Error()
}

// retryDispatch drives fn through the Retry discipline: only ToolTransient,
// RouterTransport and Timeout failures are retried (other kinds with status
// >= 500, such as Internal, are not), up to cfg.MaxAttempts, with exponential-with-jitter
// backoff seeded from cfg.BaseBackoff. Each attempt is a fresh call to fn,
// so a caller that reconstructs its own per-call timeout inside fn (as the
// Supervisor does) gets that timeout reset on every retry.
func retryDispatch(ctx context.Context, cfg *config.Config, fn func(context.Context) (*envelope.Envelope, *envelope.RuntimeError)) (*envelope.Envelope, *envelope.RuntimeError) {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	bo := backoff.NewExponentialBackOff()
	if cfg.BaseBackoff > 0 {
		bo.InitialInterval = cfg.BaseBackoff
	}

	attempt := func() (*envelope.Envelope, error) {
		env, dispatchErr := fn(ctx)
		if dispatchErr != nil {
			switch dispatchErr.Kind {
			case envelope.KindToolTransient, envelope.KindRouterTransport, envelope.KindTimeout:
				return nil, &dispatchError{dispatchErr}
			default:
				return nil, backoff.Permanent(&dispatchError{dispatchErr})
			}
		}
		return env, nil
	}

	env, err := backoff.Retry(ctx, attempt, backoff.WithBackOff(bo), backoff.WithMaxTries(uint(maxAttempts)))
	if err != nil {
		var de *dispatchError
		if errors.As(err, &de) {
			return nil, de.runtimeErr
		}
		return nil, envelope.NewInternalError(err.Error())
	}
	return env, nil
}
