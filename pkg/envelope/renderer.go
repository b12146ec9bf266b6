package envelope

import (
	"encoding/json"

	"github.com/greentic-ai-org/greentic-mcp/pkg/router"
)

// parseJSONOrString re-parses s as JSON when it looks like valid JSON,
// falling back to the raw string otherwise. This heuristic is applied to
// structured_content and every meta value; a value whose text happens to
// look like JSON changes shape as a result, and that is preserved
// deliberately for compatibility rather than fixed.
func parseJSONOrString(s string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func renderMeta(meta map[string]string) map[string]interface{} {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		out[k] = parseJSONOrString(v)
	}
	return out
}

// liftAnnotations returns the first non-empty annotation set found in
// content, in order. Ties (multiple blocks with annotations) resolve to
// the first one encountered; this mirrors a deliberate upstream heuristic,
// not a general-purpose merge.
func liftAnnotations(content []router.ContentBlock) *router.Annotations {
	for _, block := range content {
		if ann := router.BlockAnnotations(block); !ann.Empty() {
			return ann
		}
	}
	return nil
}

func renderProgress(entries []router.ProgressNotification) []ProgressView {
	if len(entries) == 0 {
		return nil
	}
	out := make([]ProgressView, len(entries))
	for i, e := range entries {
		out[i] = ProgressView{Progress: e.Progress, Message: e.Message, Annotations: e.Annotations}
	}
	return out
}

// renderMessage flattens one content block into its display-oriented
// summary form.
func renderMessage(block router.ContentBlock) Message {
	switch v := block.(type) {
	case router.TextContent:
		return Message{"type": "text", "text": v.Text}
	case router.ImageContent:
		return Message{"type": "image", "mime_type": v.MimeType, "data": v.Data}
	case router.AudioContent:
		return Message{"type": "audio", "mime_type": v.MimeType, "data": v.Data}
	case router.ResourceLinkContent:
		return Message{"type": "resource_link", "uri": v.URI, "title": v.Title, "description": v.Description}
	case router.EmbeddedResourceContent:
		return Message{
			"type": "resource", "uri": v.URI, "title": v.Title,
			"description": v.Description, "mime_type": v.MimeType,
		}
	default:
		return Message{"type": "unknown"}
	}
}

func renderMessages(content []router.ContentBlock) []Message {
	out := make([]Message, len(content))
	for i, block := range content {
		out[i] = renderMessage(block)
	}
	return out
}

// RenderListTools renders a list-tools response.
func RenderListTools(tools []router.Tool) *Envelope {
	return &Envelope{
		OK:       true,
		Result:   ListResult{Tools: tools},
		Messages: []Message{},
		Protocol: Protocol,
	}
}

// RenderCompleted renders a completed call-tool result.
func RenderCompleted(result router.ToolResult) *Envelope {
	var structured interface{}
	if result.StructuredContent != nil {
		structured = parseJSONOrString(*result.StructuredContent)
	}

	content := result.Content
	if content == nil {
		content = []router.ContentBlock{}
	}

	return &Envelope{
		OK: true,
		Result: CallResult{
			Content:           content,
			StructuredContent: structured,
			Progress:          renderProgress(result.Progress),
			Meta:              renderMeta(result.Meta),
			IsError:           result.IsError,
			Annotations:       liftAnnotations(content),
		},
		Messages: renderMessages(content),
		Protocol: Protocol,
	}
}

// RenderElicit renders a pending elicitation.
func RenderElicit(req router.ElicitationRequest) *Envelope {
	return &Envelope{
		OK: true,
		Result: ElicitResult{Elicitation: ElicitationView{
			Title:       req.Title,
			Message:     req.Message,
			Schema:      parseJSONOrString(req.Schema),
			Annotations: req.Annotations,
			Meta:        renderMeta(req.Meta),
		}},
		Messages: []Message{{"type": "text", "text": req.Message}},
		Protocol: Protocol,
	}
}

// RenderError renders any RuntimeError into a failure envelope.
func RenderError(err *RuntimeError) *Envelope {
	var tool *string
	if err.Tool != "" {
		t := err.Tool
		tool = &t
	}
	return &Envelope{
		OK: false,
		Error: &ErrorBody{
			Code:     err.Code(),
			Message:  err.Message,
			Status:   err.Status(),
			Tool:     tool,
			Protocol: Protocol,
			Details:  err.Details,
		},
	}
}

// RenderToolError renders a guest-reported ToolError directly.
func RenderToolError(tool string, te *router.ToolError) *Envelope {
	return RenderError(NewToolError(tool, te))
}
