// Package mcpadapter implements the guest-side invoke normalization
// logic: translating a generic invoke(op, input) call into a list_tools
// or call_tool call against an imported router, independent of how that
// router is actually wired in (wasm import, in-process call, test double).
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/greentic-ai-org/greentic-mcp/pkg/envelope"
	"github.com/greentic-ai-org/greentic-mcp/pkg/router"
)

// RouterInvoker is the imported router surface the adapter normalizes
// calls onto.
type RouterInvoker interface {
	ListTools(ctx context.Context) ([]router.Tool, error)
	CallTool(ctx context.Context, tool, argumentsJSON string) (*router.ToolResult, *router.ToolError, error)
}

// input is the JSON shape invoke's payload is parsed as.
type input struct {
	Operation string          `json:"operation"`
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

// Handle implements the full invoke(ctx, op, input) algorithm: parse,
// resolve the operation, normalize arguments, dispatch, render. A panic
// anywhere inside the imported router is recovered and reported as a
// router-transport error rather than propagating.
func Handle(ctx context.Context, inv RouterInvoker, opArg, inputJSON string) (env *envelope.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			env = envelope.RenderError(envelope.NewRouterTransportError(fmt.Sprintf("panic in router: %v", r)))
		}
	}()

	var parsed input
	if inputJSON != "" {
		if err := json.Unmarshal([]byte(inputJSON), &parsed); err != nil {
			return envelope.RenderError(envelope.NewConfigError(fmt.Sprintf("invalid input: %s", err.Error())))
		}
	}

	operation, rerr := resolveOperation(parsed.Operation, opArg, parsed.Tool)
	if rerr != nil {
		return envelope.RenderError(rerr)
	}

	if operation == "call" && parsed.Tool == "" {
		return envelope.RenderError(envelope.NewConfigError("call requires a tool name"))
	}

	args, rerr := ensureObject(parsed.Arguments)
	if rerr != nil {
		return envelope.RenderError(rerr)
	}

	if operation == "list" {
		tools, err := inv.ListTools(ctx)
		if err != nil {
			return envelope.RenderError(envelope.NewRouterTransportError(err.Error()))
		}
		return envelope.RenderListTools(tools)
	}

	result, toolErr, err := inv.CallTool(ctx, parsed.Tool, string(args))
	if err != nil {
		return envelope.RenderError(envelope.NewRouterTransportError(err.Error()))
	}
	if toolErr != nil {
		return envelope.RenderToolError(parsed.Tool, toolErr)
	}
	if result == nil {
		return envelope.RenderError(envelope.NewRouterTransportError("call_tool returned neither result nor error"))
	}
	return envelope.RenderCompleted(*result)
}

// StreamEventType is the closed set of tags a StreamEvent may carry.
type StreamEventType string

const (
	StreamEventData  StreamEventType = "data"
	StreamEventDone  StreamEventType = "done"
	StreamEventError StreamEventType = "error"
)

// StreamEvent is one element of invoke-stream's `list<StreamEvent>` result:
// either a Data payload, the terminal Done marker, or a fatal Error.
type StreamEvent struct {
	Type StreamEventType `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// HandleStream implements invoke-stream by running the same resolve,
// normalize, dispatch, render pipeline as Handle and reporting its single
// outcome as one Data event followed by Done, matching this adapter's
// synchronous dispatch model (there is no incremental progress to stream).
// Handle never propagates a raw error — panics and tool/config failures are
// already rendered as an envelope — so the Error variant only fires if the
// rendered envelope itself can't be marshaled, which does not happen for a
// well-formed Envelope.
func HandleStream(ctx context.Context, inv RouterInvoker, opArg, inputJSON string) []StreamEvent {
	env := Handle(ctx, inv, opArg, inputJSON)
	body, err := json.Marshal(env)
	if err != nil {
		msg, _ := json.Marshal(err.Error())
		return []StreamEvent{{Type: StreamEventError, Data: msg}}
	}
	return []StreamEvent{
		{Type: StreamEventData, Data: body},
		{Type: StreamEventDone},
	}
}

// resolveOperation implements the precedence rule: payload operation >
// op argument > implicit from tool presence.
func resolveOperation(payloadOp, opArg, tool string) (string, *envelope.RuntimeError) {
	if op := strings.ToLower(strings.TrimSpace(payloadOp)); op != "" {
		if op != "list" && op != "call" {
			return "", envelope.NewConfigError(fmt.Sprintf("invalid operation %q: must be \"list\" or \"call\"", payloadOp))
		}
		return op, nil
	}
	if op := strings.ToLower(strings.TrimSpace(opArg)); op != "" {
		if op != "list" && op != "call" {
			return "", envelope.NewConfigError(fmt.Sprintf("invalid operation %q: must be \"list\" or \"call\"", opArg))
		}
		return op, nil
	}
	if tool != "" {
		return "call", nil
	}
	return "list", nil
}

// ensureObject normalizes the arguments field: null or absent becomes
// "{}", a JSON object passes through unchanged, anything else is fatal.
func ensureObject(raw json.RawMessage) (json.RawMessage, *envelope.RuntimeError) {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage("{}"), nil
	}
	var probe map[string]interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, envelope.NewConfigError(fmt.Sprintf("arguments must be a JSON object: %s", err.Error()))
	}
	return raw, nil
}
