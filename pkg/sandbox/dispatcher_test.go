package sandbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryMockArtifactReturnsMappedResponse(t *testing.T) {
	artifact := []byte(`{"_mock_mcp_exec":true,"responses":{"echo":{"content":[{"type":"text","text":"hi"}]}}}`)

	resp, matched, rerr := tryMockArtifact(artifact, "echo")
	require.True(t, matched)
	require.Nil(t, rerr)
	require.Contains(t, string(resp), `"text":"hi"`)
}

func TestTryMockArtifactActionNotFound(t *testing.T) {
	artifact := []byte(`{"_mock_mcp_exec":true,"responses":{"echo":{}}}`)

	_, matched, rerr := tryMockArtifact(artifact, "missing")
	require.True(t, matched)
	require.NotNil(t, rerr)
	require.Equal(t, "NotFound", string(rerr.Kind))
}

func TestTryMockArtifactSkippedForRealComponent(t *testing.T) {
	_, matched, rerr := tryMockArtifact([]byte("\x00asm\x01\x00\x00\x00"), "echo")
	require.False(t, matched)
	require.Nil(t, rerr)
}

func TestLegacyExecExportPrefersNamespacedName(t *testing.T) {
	exports := map[string]interface{}{"legacy:exec/exec#exec": struct{}{}, "exec": struct{}{}}
	name, ok := legacyExecExport(exports)
	require.True(t, ok)
	require.Equal(t, "legacy:exec/exec#exec", name)
}

func TestLegacyExecExportFallsBackToBareName(t *testing.T) {
	exports := map[string]interface{}{"exec": struct{}{}}
	name, ok := legacyExecExport(exports)
	require.True(t, ok)
	require.Equal(t, "exec", name)
}

func TestLegacyExecExportAbsent(t *testing.T) {
	_, ok := legacyExecExport(map[string]interface{}{"something_else": struct{}{}})
	require.False(t, ok)
}

func TestIsMissingExportDetectsBothMessageShapes(t *testing.T) {
	require.True(t, isMissingExport(errString("unknown export call_tool")))
	require.True(t, isMissingExport(errString("No such export: call_tool")))
	require.False(t, isMissingExport(errString("out of memory")))
}

type errString string

func (e errString) Error() string { return string(e) }
