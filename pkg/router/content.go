package router

import (
	"encoding/json"
	"fmt"
)

// ContentBlock is the closed sum type for tool-result payloads: text,
// image, audio, resource_link, or embedded_resource. Each concrete type
// below marshals itself with its "type" tag; UnmarshalContentBlock
// dispatches on that tag going the other way.
type ContentBlock interface {
	contentBlockType() string
	MarshalJSON() ([]byte, error)
}

// TextContent carries plain text verbatim.
type TextContent struct {
	Text        string
	Annotations *Annotations
}

func (TextContent) contentBlockType() string { return "text" }

// ImageContent carries raw image bytes base64-encoded, plus MIME type.
type ImageContent struct {
	Data        string
	MimeType    string
	Annotations *Annotations
}

func (ImageContent) contentBlockType() string { return "image" }

// AudioContent carries raw audio bytes base64-encoded, plus MIME type.
type AudioContent struct {
	Data        string
	MimeType    string
	Annotations *Annotations
}

func (AudioContent) contentBlockType() string { return "audio" }

// ResourceLinkContent points at a resource by URI without inlining it.
type ResourceLinkContent struct {
	URI         string
	Title       string
	Description string
	Annotations *Annotations
}

func (ResourceLinkContent) contentBlockType() string { return "resource_link" }

// EmbeddedResourceContent inlines a resource's bytes alongside its URI.
type EmbeddedResourceContent struct {
	URI         string
	Title       string
	Description string
	MimeType    string
	Data        string
	Annotations *Annotations
}

func (EmbeddedResourceContent) contentBlockType() string { return "resource" }

func (v TextContent) MarshalJSON() ([]byte, error)             { return MarshalContentBlock(v) }
func (v ImageContent) MarshalJSON() ([]byte, error)            { return MarshalContentBlock(v) }
func (v AudioContent) MarshalJSON() ([]byte, error)            { return MarshalContentBlock(v) }
func (v ResourceLinkContent) MarshalJSON() ([]byte, error)     { return MarshalContentBlock(v) }
func (v EmbeddedResourceContent) MarshalJSON() ([]byte, error) { return MarshalContentBlock(v) }

type contentBlockWire struct {
	Type        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	Data        string       `json:"data,omitempty"`
	MimeType    string       `json:"mime_type,omitempty"`
	URI         string       `json:"uri,omitempty"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// MarshalContentBlock encodes any ContentBlock variant to its tagged JSON form.
func MarshalContentBlock(b ContentBlock) ([]byte, error) {
	w := contentBlockWire{Type: b.contentBlockType()}
	switch v := b.(type) {
	case TextContent:
		w.Text = v.Text
		w.Annotations = v.Annotations
	case ImageContent:
		w.Data = v.Data
		w.MimeType = v.MimeType
		w.Annotations = v.Annotations
	case AudioContent:
		w.Data = v.Data
		w.MimeType = v.MimeType
		w.Annotations = v.Annotations
	case ResourceLinkContent:
		w.URI = v.URI
		w.Title = v.Title
		w.Description = v.Description
		w.Annotations = v.Annotations
	case EmbeddedResourceContent:
		w.URI = v.URI
		w.Title = v.Title
		w.Description = v.Description
		w.MimeType = v.MimeType
		w.Data = v.Data
		w.Annotations = v.Annotations
	default:
		return nil, fmt.Errorf("router: unknown content block type %T", b)
	}
	return json.Marshal(w)
}

// UnmarshalContentBlock decodes a tagged JSON content block.
func UnmarshalContentBlock(data []byte) (ContentBlock, error) {
	var w contentBlockWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("router: decode content block: %w", err)
	}
	switch w.Type {
	case "text":
		return TextContent{Text: w.Text, Annotations: w.Annotations}, nil
	case "image":
		return ImageContent{Data: w.Data, MimeType: w.MimeType, Annotations: w.Annotations}, nil
	case "audio":
		return AudioContent{Data: w.Data, MimeType: w.MimeType, Annotations: w.Annotations}, nil
	case "resource_link":
		return ResourceLinkContent{URI: w.URI, Title: w.Title, Description: w.Description, Annotations: w.Annotations}, nil
	case "resource":
		return EmbeddedResourceContent{
			URI: w.URI, Title: w.Title, Description: w.Description,
			MimeType: w.MimeType, Data: w.Data, Annotations: w.Annotations,
		}, nil
	default:
		return nil, fmt.Errorf("router: unknown content block type %q", w.Type)
	}
}

// BlockAnnotations returns the block's annotation set, or nil if it carries none.
func BlockAnnotations(b ContentBlock) *Annotations {
	switch v := b.(type) {
	case TextContent:
		return v.Annotations
	case ImageContent:
		return v.Annotations
	case AudioContent:
		return v.Annotations
	case ResourceLinkContent:
		return v.Annotations
	case EmbeddedResourceContent:
		return v.Annotations
	default:
		return nil
	}
}
