package envelope

import "github.com/greentic-ai-org/greentic-mcp/pkg/router"

// Envelope is the uniform JSON shape every Exec call returns.
type Envelope struct {
	OK       bool        `json:"ok"`
	Result   interface{} `json:"result,omitempty"`
	Messages []Message   `json:"messages,omitempty"`
	Protocol string      `json:"protocol"`
	Error    *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the failure half of an Envelope.
type ErrorBody struct {
	Code     Code        `json:"code"`
	Message  string      `json:"message"`
	Status   int         `json:"status"`
	Tool     *string     `json:"tool,omitempty"`
	Protocol string      `json:"protocol"`
	Details  interface{} `json:"details,omitempty"`
}

// Retryable reports the envelope's retry hint, derived from status.
func (e *ErrorBody) Retryable() bool {
	return e.Status >= 500
}

// Message is one flattened, display-oriented summary of a content block.
type Message map[string]interface{}

// ListResult is the result payload of a list-tools call.
type ListResult struct {
	Tools []router.Tool `json:"tools"`
}

// CallResult is the result payload of a completed call-tool invocation.
type CallResult struct {
	Content           []router.ContentBlock `json:"content"`
	StructuredContent interface{}            `json:"structured_content"`
	Progress          []ProgressView         `json:"progress,omitempty"`
	Meta              map[string]interface{} `json:"meta,omitempty"`
	IsError           *bool                  `json:"is_error,omitempty"`
	Annotations       *router.Annotations    `json:"annotations,omitempty"`
}

// ProgressView is the rendered form of a ProgressNotification.
type ProgressView struct {
	Progress    float64             `json:"progress"`
	Message     string              `json:"message,omitempty"`
	Annotations *router.Annotations `json:"annotations,omitempty"`
}

// ElicitResult is the result payload when the guest requested more input.
type ElicitResult struct {
	Elicitation ElicitationView `json:"elicitation"`
}

// ElicitationView is the rendered form of an ElicitationRequest.
type ElicitationView struct {
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Schema      interface{}            `json:"schema"`
	Annotations *router.Annotations    `json:"annotations,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}
