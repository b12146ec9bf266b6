package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHostHTTPRequestDisabledShortCircuits(t *testing.T) {
	result := hostHTTPRequest(context.Background(), nil, Capabilities{HTTPEnabled: false}, &lazyHTTPClient{}, 0, 0, 0, 0, 0, 0, 0, 0)
	require.Equal(t, "http-disabled", result)
}

func TestValidHTTPMethod(t *testing.T) {
	require.True(t, validHTTPMethod("GET"))
	require.True(t, validHTTPMethod("POST"))
	require.False(t, validHTTPMethod("BREW"))
	require.False(t, validHTTPMethod(""))
}

func TestParseHeaderLine(t *testing.T) {
	name, value, ok := parseHeaderLine("Content-Type: application/json")
	require.True(t, ok)
	require.Equal(t, "Content-Type", name)
	require.Equal(t, "application/json", value)

	_, _, ok = parseHeaderLine("no-colon-here")
	require.False(t, ok)

	name, value, ok = parseHeaderLine("X-Empty:")
	require.True(t, ok)
	require.Equal(t, "X-Empty", name)
	require.Empty(t, value)
}

func TestSplitNonEmpty(t *testing.T) {
	lines := splitNonEmpty("a: 1\n\nb: 2\n", "\n")
	require.Equal(t, []string{"a: 1", "b: 2"}, lines)
}

func TestNoopKV(t *testing.T) {
	kv := NoopKV{}
	_, ok := kv.Get("ns", "key")
	require.False(t, ok)
	kv.Put("ns", "key", "val")
	_, ok = kv.Get("ns", "key")
	require.False(t, ok)
}

func TestPackUnpackPtrLen(t *testing.T) {
	packed := packPtrLen(1024, 17)
	ptr, length := unpackPtrLen(packed)
	require.Equal(t, uint32(1024), ptr)
	require.Equal(t, uint32(17), length)
}
