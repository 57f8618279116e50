// Package loader reads PDF files, text files and web pages into documents.
//
// Every loader satisfies documentloaders.Loader, so callers can swap them
// freely and split their output with any textsplitter.TextSplitter.
package loader

import (
	"fmt"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/xhad/docload/internal/models"
)

var (
	_ documentloaders.Loader = (*PDF)(nil)
	_ documentloaders.Loader = (*Text)(nil)
	_ documentloaders.Loader = (*Web)(nil)
)

// splitDocuments splits every document with splitter. Each chunk keeps its
// parent's metadata plus its chunk index.
func splitDocuments(splitter textsplitter.TextSplitter, docs []schema.Document) ([]schema.Document, error) {
	if splitter == nil {
		splitter = textsplitter.NewRecursiveCharacter()
	}

	var out []schema.Document
	for _, doc := range docs {
		chunks, err := splitter.SplitText(doc.PageContent)
		if err != nil {
			return nil, fmt.Errorf("failed to split %s: %w", models.Source(doc), err)
		}
		for i, chunk := range chunks {
			metadata := models.CopyMetadata(doc.Metadata)
			metadata[models.MetaChunk] = i
			out = append(out, schema.Document{
				PageContent: chunk,
				Metadata:    metadata,
			})
		}
	}
	return out, nil
}
