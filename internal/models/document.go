package models

import (
	"strings"

	"github.com/tmc/langchaingo/schema"
)

// Metadata keys set by the loaders.
const (
	MetaSource      = "source"
	MetaPage        = "page"
	MetaPageLabel   = "page_label"
	MetaTotalPages  = "total_pages"
	MetaEncoding    = "encoding"
	MetaTitle       = "title"
	MetaDescription = "description"
	MetaLanguage    = "language"
	MetaDepth       = "depth"
	MetaChunk       = "chunk"
	MetaTruncated   = "truncated"
)

// Document is the record every loader produces: page text plus metadata.
type Document = schema.Document

// WithSource returns docs with the source key set on every record,
// allocating a metadata map where a loader left it nil.
func WithSource(docs []Document, source string) []Document {
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = map[string]interface{}{}
		}
		docs[i].Metadata[MetaSource] = source
	}
	return docs
}

// Source returns the source recorded on doc, or "" if none.
func Source(doc Document) string {
	s, _ := doc.Metadata[MetaSource].(string)
	return s
}

// Page returns the 0-based page index recorded on doc.
func Page(doc Document) (int, bool) {
	p, ok := doc.Metadata[MetaPage].(int)
	return p, ok
}

// CopyMetadata returns a shallow copy of m.
func CopyMetadata(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// JoinContent concatenates the page content of docs, separated by blank
// lines, as the text handed to a prompt.
func JoinContent(docs []Document) string {
	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = doc.PageContent
	}
	return strings.Join(parts, "\n\n")
}
