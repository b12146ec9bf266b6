package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/greentic-ai-org/greentic-mcp/pkg/artifacts"
	"github.com/greentic-ai-org/greentic-mcp/pkg/config"
	"github.com/greentic-ai-org/greentic-mcp/pkg/envelope"
	"github.com/greentic-ai-org/greentic-mcp/pkg/router"
	"github.com/greentic-ai-org/greentic-mcp/pkg/sandbox"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	byID map[string]artifacts.ResolvedArtifact
}

func (f fakeStore) Fetch(ctx context.Context, componentID string) (artifacts.ResolvedArtifact, error) {
	a, ok := f.byID[componentID]
	if !ok {
		return artifacts.ResolvedArtifact{}, artifacts.ErrNotFound
	}
	return a, nil
}

func testConfig() *config.Config {
	return &config.Config{
		AllowUnverified:  true,
		PerCallTimeout:   time.Second,
		WallclockTimeout: time.Second,
		HTTPEnabled:      false,
	}
}

func TestExecCallRoutesThroughVerifierAndDispatcher(t *testing.T) {
	mockBytes := []byte(`{"_mock_mcp_exec":true,"responses":{"echo":{"content":[{"type":"text","text":"hi"}]}}}`)
	store := fakeStore{byID: map[string]artifacts.ResolvedArtifact{
		"demo": {Bytes: mockBytes},
	}}

	cfg := testConfig()
	engine, err := sandbox.NewEngine(context.Background(), sandbox.EngineConfigFromConfig(cfg))
	require.NoError(t, err)
	defer func() { _ = engine.Close(context.Background()) }()

	rt := NewRuntime(store, engine, nil, cfg)
	env := rt.Exec(context.Background(), ExecutionRequest{
		ComponentID: "demo",
		Operation:   OperationCall,
		Tool:        "echo",
	})

	require.True(t, env.OK)
}

func TestExecUnknownComponentRendersNotFound(t *testing.T) {
	store := fakeStore{byID: map[string]artifacts.ResolvedArtifact{}}
	cfg := testConfig()
	engine, err := sandbox.NewEngine(context.Background(), sandbox.EngineConfigFromConfig(cfg))
	require.NoError(t, err)
	defer func() { _ = engine.Close(context.Background()) }()

	rt := NewRuntime(store, engine, nil, cfg)
	env := rt.Exec(context.Background(), ExecutionRequest{ComponentID: "missing", Operation: OperationCall, Tool: "echo"})

	require.False(t, env.OK)
	require.Equal(t, "MCP_CONFIG_ERROR", string(env.Error.Code))
	require.Equal(t, 404, env.Error.Status)
}

func TestExecRejectsUnverifiedArtifactWhenPolicyForbidsIt(t *testing.T) {
	mockBytes := []byte(`{"_mock_mcp_exec":true,"responses":{}}`)
	store := fakeStore{byID: map[string]artifacts.ResolvedArtifact{"demo": {Bytes: mockBytes}}}
	cfg := testConfig()
	cfg.AllowUnverified = false
	engine, err := sandbox.NewEngine(context.Background(), sandbox.EngineConfigFromConfig(cfg))
	require.NoError(t, err)
	defer func() { _ = engine.Close(context.Background()) }()

	rt := NewRuntime(store, engine, nil, cfg)
	env := rt.Exec(context.Background(), ExecutionRequest{ComponentID: "demo", Operation: OperationCall, Tool: "echo"})

	require.False(t, env.OK)
	require.Equal(t, "MCP_CONFIG_ERROR", string(env.Error.Code))
}

func TestExecCallWithoutToolIsFatal(t *testing.T) {
	rt := NewRuntime(fakeStore{}, nil, nil, testConfig())
	env := rt.Exec(context.Background(), ExecutionRequest{ComponentID: "demo", Operation: OperationCall})
	require.False(t, env.OK)
	require.Equal(t, "MCP_CONFIG_ERROR", string(env.Error.Code))
}

func TestExecInvalidOperationIsFatal(t *testing.T) {
	rt := NewRuntime(fakeStore{}, nil, nil, testConfig())
	env := rt.Exec(context.Background(), ExecutionRequest{ComponentID: "demo", Operation: "frobnicate"})
	require.False(t, env.OK)
	require.Equal(t, "MCP_CONFIG_ERROR", string(env.Error.Code))
}

func TestRetryDispatchExhaustsAttemptsOnPersistentTransientError(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttempts = 3
	cfg.BaseBackoff = time.Millisecond

	calls := 0
	env, rerr := retryDispatch(context.Background(), cfg, func(ctx context.Context) (*envelope.Envelope, *envelope.RuntimeError) {
		calls++
		return nil, envelope.NewTransientError("upstream busy")
	})

	require.Nil(t, env)
	require.NotNil(t, rerr)
	require.Equal(t, 3, calls)
	require.True(t, rerr.Retryable())
}

func TestRetryDispatchSucceedsAfterTransientError(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttempts = 3
	cfg.BaseBackoff = time.Millisecond

	calls := 0
	want := envelope.RenderCompleted(router.ToolResult{Content: []router.ContentBlock{router.TextContent{Text: "done"}}})
	env, rerr := retryDispatch(context.Background(), cfg, func(ctx context.Context) (*envelope.Envelope, *envelope.RuntimeError) {
		calls++
		if calls < 2 {
			return nil, envelope.NewTransientError("upstream busy")
		}
		return want, nil
	})

	require.Nil(t, rerr)
	require.Equal(t, 2, calls)
	require.True(t, env.OK)
}

func TestRetryDispatchDoesNotRetryNonRetryableError(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttempts = 5
	cfg.BaseBackoff = time.Millisecond

	calls := 0
	_, rerr := retryDispatch(context.Background(), cfg, func(ctx context.Context) (*envelope.Envelope, *envelope.RuntimeError) {
		calls++
		return nil, envelope.NewToolError("echo", &router.ToolError{Kind: router.ToolErrorInvalidParameters, Message: "bad input"})
	})

	require.NotNil(t, rerr)
	require.Equal(t, 1, calls)
	require.False(t, rerr.Retryable())
}
