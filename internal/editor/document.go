// Package editor implements the block-based document model used for blog
// post bodies, along with slug and read-time derivation and a rendering
// pipeline that turns a document into display nodes.
//
// Documents are produced by the editing surface and stored verbatim as
// structured data. No schema is enforced at ingestion; every function in
// this package is total and degrades block-by-block on malformed input.
package editor

import (
	"encoding/json"
)

// Document is an ordered sequence of content blocks. A document with no
// blocks is valid and renders to nothing.
type Document struct {
	Time    int64   `json:"time,omitempty"`
	Blocks  []Block `json:"blocks"`
	Version string  `json:"version,omitempty"`
}

// Block is one unit of content. Data is kept opaque until render time.
type Block struct {
	ID   string          `json:"id,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Kind is the closed set of block variants the renderer understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindHeader
	KindParagraph
	KindList
	KindImage
	KindQuote
	KindCode
	KindTable
	KindWarning
	KindDelimiter
	KindEmbed
)

// KindOf maps a block's type tag to its variant. Any unrecognized tag
// yields KindUnknown rather than an error.
func KindOf(blockType string) Kind {
	switch blockType {
	case "header":
		return KindHeader
	case "paragraph":
		return KindParagraph
	case "list":
		return KindList
	case "image":
		return KindImage
	case "quote":
		return KindQuote
	case "code":
		return KindCode
	case "table":
		return KindTable
	case "warning":
		return KindWarning
	case "delimiter":
		return KindDelimiter
	case "embed":
		return KindEmbed
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindParagraph:
		return "paragraph"
	case KindList:
		return "list"
	case KindImage:
		return "image"
	case KindQuote:
		return "quote"
	case KindCode:
		return "code"
	case KindTable:
		return "table"
	case KindWarning:
		return "warning"
	case KindDelimiter:
		return "delimiter"
	case KindEmbed:
		return "embed"
	default:
		return "unknown"
	}
}

// payload decodes a block's data into a generic map. A missing or
// malformed payload decodes to an empty map so field lookups degrade to
// zero values instead of failing.
func (b Block) payload() map[string]any {
	if len(b.Data) == 0 {
		return map[string]any{}
	}

	var m map[string]any
	if err := json.Unmarshal(b.Data, &m); err != nil || m == nil {
		return map[string]any{}
	}

	return m
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]any, key string) int {
	// JSON numbers decode as float64.
	if f, ok := m[key].(float64); ok {
		return int(f)
	}
	return 0
}

// itemText resolves a list item to its text. Items arrive either as plain
// strings or as objects exposing one of content, text, or value; anything
// else resolves to the empty string.
func itemText(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case map[string]any:
		for _, key := range []string{"content", "text", "value"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
