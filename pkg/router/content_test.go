package router

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentBlockRoundTrip(t *testing.T) {
	cases := []ContentBlock{
		TextContent{Text: "hello"},
		ImageContent{Data: "Zm9v", MimeType: "image/png"},
		AudioContent{Data: "YmFy", MimeType: "audio/wav"},
		ResourceLinkContent{URI: "file:///a.txt", Title: "a"},
		EmbeddedResourceContent{URI: "file:///b.txt", MimeType: "text/plain", Data: "YmF6"},
	}

	for _, block := range cases {
		data, err := MarshalContentBlock(block)
		require.NoError(t, err)

		decoded, err := UnmarshalContentBlock(data)
		require.NoError(t, err)
		require.Equal(t, block, decoded)
	}
}

func TestUnmarshalContentBlockUnknownType(t *testing.T) {
	_, err := UnmarshalContentBlock([]byte(`{"type":"video"}`))
	require.Error(t, err)
}

func TestAnnotationsEmpty(t *testing.T) {
	var nilAnn *Annotations
	require.True(t, nilAnn.Empty())

	empty := &Annotations{}
	require.True(t, empty.Empty())

	p := 1.0
	nonEmpty := &Annotations{Priority: &p}
	require.False(t, nonEmpty.Empty())
}
