package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/greentic-ai-org/greentic-mcp/pkg/envelope"
	"github.com/stretchr/testify/require"
)

func TestSupervisorReturnsResultWithinBudget(t *testing.T) {
	s := &Supervisor{PerCallTimeout: time.Second}
	env, rerr := s.Run(context.Background(), func(ctx context.Context) (*envelope.Envelope, *envelope.RuntimeError) {
		return &envelope.Envelope{OK: true}, nil
	})
	require.Nil(t, rerr)
	require.True(t, env.OK)
}

func TestSupervisorTimesOutSlowWorker(t *testing.T) {
	s := &Supervisor{PerCallTimeout: 20 * time.Millisecond}
	_, rerr := s.Run(context.Background(), func(ctx context.Context) (*envelope.Envelope, *envelope.RuntimeError) {
		time.Sleep(200 * time.Millisecond)
		return &envelope.Envelope{OK: true}, nil
	})
	require.NotNil(t, rerr)
	require.Equal(t, "Timeout", string(rerr.Kind))
}

func TestSupervisorRetroactiveWallclockTimeout(t *testing.T) {
	s := &Supervisor{PerCallTimeout: time.Second, WallclockTimeout: 10 * time.Millisecond}
	_, rerr := s.Run(context.Background(), func(ctx context.Context) (*envelope.Envelope, *envelope.RuntimeError) {
		time.Sleep(40 * time.Millisecond)
		return &envelope.Envelope{OK: true}, nil
	})
	require.NotNil(t, rerr)
	require.Equal(t, "Timeout", string(rerr.Kind))
}

func TestSupervisorRecoversWorkerPanic(t *testing.T) {
	s := &Supervisor{PerCallTimeout: time.Second}
	_, rerr := s.Run(context.Background(), func(ctx context.Context) (*envelope.Envelope, *envelope.RuntimeError) {
		panic("boom")
	})
	require.NotNil(t, rerr)
	require.Equal(t, "Internal", string(rerr.Kind))
}
