package envelope

import (
	"encoding/json"
	"testing"

	"github.com/greentic-ai-org/greentic-mcp/pkg/router"
	"github.com/stretchr/testify/require"
)

func TestRenderListTools(t *testing.T) {
	env := RenderListTools([]router.Tool{{Name: "echo", InputSchema: "{}"}})
	require.True(t, env.OK)
	require.Equal(t, Protocol, env.Protocol)

	lr, ok := env.Result.(ListResult)
	require.True(t, ok)
	require.Len(t, lr.Tools, 1)
	require.Equal(t, "echo", lr.Tools[0].Name)
}

func TestRenderCompletedEchoContainsArguments(t *testing.T) {
	env := RenderCompleted(router.ToolResult{
		Content: []router.ContentBlock{router.TextContent{Text: `{"msg":"hi"}`}},
	})
	require.True(t, env.OK)

	cr := env.Result.(CallResult)
	require.Len(t, cr.Content, 1)
	text := cr.Content[0].(router.TextContent)
	require.Contains(t, text.Text, `"msg":"hi"`)

	require.Len(t, env.Messages, 1)
	require.Equal(t, "text", env.Messages[0]["type"])
}

func TestRenderCompletedStructuredContentJSONHeuristic(t *testing.T) {
	jsonStr := `{"a":1}`
	env := RenderCompleted(router.ToolResult{StructuredContent: &jsonStr})
	cr := env.Result.(CallResult)
	require.Equal(t, map[string]interface{}{"a": 1.0}, cr.StructuredContent)

	plain := "not json"
	env2 := RenderCompleted(router.ToolResult{StructuredContent: &plain})
	cr2 := env2.Result.(CallResult)
	require.Equal(t, "not json", cr2.StructuredContent)
}

func TestRenderCompletedMetaHeuristicPerValue(t *testing.T) {
	env := RenderCompleted(router.ToolResult{
		Meta: map[string]string{"score": "9.5", "label": "gold"},
	})
	cr := env.Result.(CallResult)
	require.Equal(t, 9.5, cr.Meta["score"])
	require.Equal(t, "gold", cr.Meta["label"])
}

func TestRenderCompletedLiftsFirstNonEmptyAnnotations(t *testing.T) {
	p := 0.9
	ann := &router.Annotations{Priority: &p}
	env := RenderCompleted(router.ToolResult{
		Content: []router.ContentBlock{
			router.TextContent{Text: "a"},
			router.TextContent{Text: "b", Annotations: ann},
			router.TextContent{Text: "c", Annotations: &router.Annotations{Priority: floatPtr(0.1)}},
		},
	})
	cr := env.Result.(CallResult)
	require.Same(t, ann, cr.Annotations)
}

func TestRenderElicit(t *testing.T) {
	env := RenderElicit(router.ElicitationRequest{
		Title: "need-input", Message: "please confirm", Schema: `{"type":"object"}`,
	})
	require.True(t, env.OK)
	er := env.Result.(ElicitResult)
	require.Equal(t, "need-input", er.Elicitation.Title)
	require.Equal(t, map[string]interface{}{"type": "object"}, er.Elicitation.Schema)
	require.Equal(t, "please confirm", env.Messages[0]["text"])
}

func TestRenderToolErrorMapping(t *testing.T) {
	env := RenderToolError("demo", &router.ToolError{Kind: router.ToolErrorInvalidParameters, Message: "bad"})
	require.False(t, env.OK)
	require.Equal(t, CodeTool, env.Error.Code)
	require.Equal(t, 400, env.Error.Status)
	require.Equal(t, "demo", *env.Error.Tool)
	require.Equal(t, "bad", env.Error.Message)
	require.False(t, env.Error.Retryable())
}

func TestRenderErrorRetryabilityMapping(t *testing.T) {
	cases := []struct {
		kind      Kind
		retryable bool
	}{
		{KindConfig, false},
		{KindToolExecution, true},
		{KindToolTransient, true},
		{KindRouterTransport, true},
		{KindTimeout, true},
		{KindVerification, false},
		{KindNotFound, false},
	}
	for _, c := range cases {
		env := RenderError(&RuntimeError{Kind: c.kind, Message: "x"})
		require.Equal(t, c.retryable, env.Error.Retryable(), "kind=%s", c.kind)
		require.Equal(t, c.retryable, env.Error.Status >= 500)
	}
}

func TestEnvelopeMarshalsContentBlockTags(t *testing.T) {
	env := RenderCompleted(router.ToolResult{
		Content: []router.ContentBlock{router.TextContent{Text: "hi"}},
	})
	data, err := json.Marshal(env)
	require.NoError(t, err)
	require.Contains(t, string(data), `"type":"text"`)
	require.Contains(t, string(data), `"protocol":"25.06.18"`)
}

func floatPtr(f float64) *float64 { return &f }
