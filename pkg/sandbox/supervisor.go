package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/greentic-ai-org/greentic-mcp/pkg/envelope"
)

// Supervisor runs one Dispatch call on a dedicated goroutine and enforces
// the two timeout budgets: the caller is cut off at PerCallTimeout, and a
// call that returns but overran WallclockTimeout is converted to a
// timeout error retroactively.
type Supervisor struct {
	PerCallTimeout   time.Duration
	WallclockTimeout time.Duration

	// CallID correlates this call's worker across log lines and traces; it
	// is optional and purely diagnostic.
	CallID string
}

type dispatchOutcome struct {
	env  *envelope.Envelope
	rerr *envelope.RuntimeError
}

// Run executes fn on a worker goroutine and applies the timeout budgets.
// The worker is allowed to run to completion even after the caller has
// been told about a timeout; its result is discarded in that case.
func (s *Supervisor) Run(ctx context.Context, fn func(context.Context) (*envelope.Envelope, *envelope.RuntimeError)) (*envelope.Envelope, *envelope.RuntimeError) {
	resultCh := make(chan dispatchOutcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- dispatchOutcome{rerr: envelope.NewInternalError(fmt.Sprintf("worker panic: %v", r))}
			}
		}()
		env, rerr := fn(ctx)
		resultCh <- dispatchOutcome{env: env, rerr: rerr}
	}()

	timeout := s.PerCallTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	select {
	case out := <-resultCh:
		elapsed := time.Since(start)
		if s.WallclockTimeout > 0 && elapsed > s.WallclockTimeout {
			slog.Default().Warn("call exceeded wallclock_timeout after completing",
				"call_id", s.CallID, "elapsed", elapsed, "wallclock_timeout", s.WallclockTimeout)
			return nil, envelope.NewTimeoutError(fmt.Sprintf("call completed in %s, exceeding wallclock_timeout %s", elapsed, s.WallclockTimeout))
		}
		return out.env, out.rerr
	case <-time.After(timeout):
		slog.Default().Warn("call did not complete within per_call_timeout",
			"call_id", s.CallID, "per_call_timeout", timeout)
		return nil, envelope.NewTimeoutError(fmt.Sprintf("call did not complete within per_call_timeout %s", timeout))
	}
}
