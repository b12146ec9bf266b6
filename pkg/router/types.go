// Package router defines the wire-level data model the router dialect
// (wasix:mcp/router@25.6.18) exchanges with the host: tool descriptors,
// content blocks, and the two response shapes a call can produce. Types
// here are closed sum types, encoded as tagged values rather than an
// inheritance hierarchy.
package router

// Annotations carry display hints a content block or elicitation may
// attach: who it's for, how urgent it is, and when it was produced.
type Annotations struct {
	Audience  []string `json:"audience,omitempty"`
	Priority  *float64 `json:"priority,omitempty"`
	Timestamp *string  `json:"timestamp,omitempty"`
}

// Empty reports whether the annotation set carries no information, used by
// the renderer's first-non-empty-annotation lift.
func (a *Annotations) Empty() bool {
	return a == nil || (len(a.Audience) == 0 && a.Priority == nil && a.Timestamp == nil)
}

// ToolAnnotations are the optional behavioral flags a tool descriptor may
// advertise about itself.
type ToolAnnotations struct {
	ReadOnly     bool `json:"read_only,omitempty"`
	Destructive  bool `json:"destructive,omitempty"`
	Streaming    bool `json:"streaming,omitempty"`
	Experimental bool `json:"experimental,omitempty"`
}

// Tool is the descriptor a router advertises via list-tools.
type Tool struct {
	Name         string            `json:"name"`
	Title        *string           `json:"title,omitempty"`
	Description  *string           `json:"description,omitempty"`
	InputSchema  string            `json:"input_schema"`
	OutputSchema *string           `json:"output_schema,omitempty"`
	Annotations  *ToolAnnotations  `json:"annotations,omitempty"`
	Meta         map[string]string `json:"meta,omitempty"`
}

// ProgressNotification is one entry in a ToolResult's progress stream.
type ProgressNotification struct {
	Progress    float64      `json:"progress"`
	Message     string       `json:"message,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// ToolErrorKind is the closed set of tool-reported failure reasons; it maps
// 1:1 to an envelope status code.
type ToolErrorKind string

const (
	ToolErrorInvalidParameters ToolErrorKind = "InvalidParameters"
	ToolErrorSchema            ToolErrorKind = "SchemaError"
	ToolErrorNotFound          ToolErrorKind = "NotFound"
	ToolErrorExecution         ToolErrorKind = "ExecutionError"
)

// ToolError is what a guest returns for Ok(Err(...)) — a tool ran but
// declined or failed the call.
type ToolError struct {
	Kind    ToolErrorKind
	Message string
}

func (e *ToolError) Error() string {
	return string(e.Kind) + ": " + e.Message
}
