package router

import "context"

// Router is the host-side view of a guest instantiated under the router
// world (wasix:mcp/router@25.6.18). A nil *ToolError with a nil error means
// the call completed; a non-nil *ToolError means the guest declined the
// call (Ok(Err(...))); a non-nil error means a trap or transport failure.
type Router interface {
	ListTools(ctx context.Context) ([]Tool, error)
	CallTool(ctx context.Context, name string, argumentsJSON string) (Response, *ToolError, error)
}

// LegacyExecutor is the host-side view of a guest exporting the legacy
// exec(action, args) -> string dialect.
type LegacyExecutor interface {
	Exec(ctx context.Context, action string, argumentsJSON string) (string, error)
}
