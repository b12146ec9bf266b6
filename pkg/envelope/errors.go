// Package envelope renders router responses and runtime errors into the
// uniform JSON envelope every caller of Exec receives.
package envelope

import "github.com/greentic-ai-org/greentic-mcp/pkg/router"

// Protocol is the fixed protocol revision every envelope advertises.
const Protocol = "25.06.18"

// Code is the closed set of top-level error codes a failure envelope carries.
type Code string

const (
	CodeConfig Code = "MCP_CONFIG_ERROR"
	CodeTool   Code = "MCP_TOOL_ERROR"
	CodeRouter Code = "MCP_ROUTER_ERROR"
)

// Kind is the internal error taxonomy; each Kind maps to a Code and an
// HTTP-style status used to derive retryability.
type Kind string

const (
	KindConfig                Kind = "Config"
	KindToolInvalidParameters Kind = "ToolInvalidParameters"
	KindToolNotFound          Kind = "ToolNotFound"
	KindToolSchema            Kind = "ToolSchema"
	KindToolExecution         Kind = "ToolExecution"
	KindToolTransient         Kind = "ToolTransient"
	KindRouterTransport       Kind = "RouterTransport"
	KindTimeout               Kind = "Timeout"
	KindInternal              Kind = "Internal"
	KindVerification          Kind = "Verification"
	KindNotFound              Kind = "NotFound"
)

type kindInfo struct {
	code   Code
	status int
}

var kindTable = map[Kind]kindInfo{
	KindConfig:                {CodeConfig, 400},
	KindToolInvalidParameters: {CodeTool, 400},
	KindToolNotFound:          {CodeTool, 404},
	KindToolSchema:            {CodeTool, 422},
	KindToolExecution:         {CodeTool, 500},
	KindToolTransient:         {CodeTool, 503},
	KindRouterTransport:       {CodeRouter, 502},
	KindTimeout:               {CodeRouter, 504},
	KindInternal:              {CodeRouter, 500},
	KindVerification:          {CodeConfig, 400},
	KindNotFound:              {CodeConfig, 404},
}

// RuntimeError is the typed error every stage of Exec returns; it carries
// enough information to render a failure envelope directly.
type RuntimeError struct {
	Kind    Kind
	Message string
	Tool    string      // optional, set for tool-sourced errors
	Details interface{} // optional, arbitrary JSON-able payload
}

func (e *RuntimeError) Error() string {
	if e.Tool != "" {
		return string(e.Kind) + " (" + e.Tool + "): " + e.Message
	}
	return string(e.Kind) + ": " + e.Message
}

// Code returns the envelope-level error code for this Kind.
func (e *RuntimeError) Code() Code {
	return kindTable[e.Kind].code
}

// Status returns the HTTP-style status for this Kind.
func (e *RuntimeError) Status() int {
	if info, ok := kindTable[e.Kind]; ok {
		return info.status
	}
	return 500
}

// Retryable derives retry eligibility purely from status, per the envelope
// invariant `status >= 500 => retryable`.
func (e *RuntimeError) Retryable() bool {
	return e.Status() >= 500
}

// NewConfigError builds a Config-kind RuntimeError.
func NewConfigError(message string) *RuntimeError {
	return &RuntimeError{Kind: KindConfig, Message: message}
}

// NewToolError builds a RuntimeError from a guest-reported ToolError.
func NewToolError(tool string, te *router.ToolError) *RuntimeError {
	kind := KindToolExecution
	switch te.Kind {
	case router.ToolErrorInvalidParameters:
		kind = KindToolInvalidParameters
	case router.ToolErrorSchema:
		kind = KindToolSchema
	case router.ToolErrorNotFound:
		kind = KindToolNotFound
	case router.ToolErrorExecution:
		kind = KindToolExecution
	}
	return &RuntimeError{Kind: kind, Message: te.Message, Tool: tool}
}

// NewTransientError builds a retryable ToolTransient error from a trap
// whose message carried the "transient." marker.
func NewTransientError(message string) *RuntimeError {
	return &RuntimeError{Kind: KindToolTransient, Message: message}
}

// NewRouterTransportError builds a RouterTransport error for an
// instantiation failure, trap, or panic that is not tool-reported.
func NewRouterTransportError(message string) *RuntimeError {
	return &RuntimeError{Kind: KindRouterTransport, Message: message}
}

// NewTimeoutError builds a Timeout error.
func NewTimeoutError(message string) *RuntimeError {
	return &RuntimeError{Kind: KindTimeout, Message: message}
}

// NewInternalError builds an Internal (host-side bug) error.
func NewInternalError(message string) *RuntimeError {
	return &RuntimeError{Kind: KindInternal, Message: message}
}

// NewVerificationError builds a Verification (digest/signer mismatch) error.
func NewVerificationError(message string) *RuntimeError {
	return &RuntimeError{Kind: KindVerification, Message: message}
}

// NewNotFoundError builds a NotFound (artifact missing) error.
func NewNotFoundError(message string) *RuntimeError {
	return &RuntimeError{Kind: KindNotFound, Message: message}
}
