package loader

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/xhad/docload/internal/models"
)

// PDF loads a PDF file as one document per page.
type PDF struct {
	path     string
	password string
}

type PDFOption func(*PDF)

// WithPassword sets the password used to open an encrypted file.
func WithPassword(password string) PDFOption {
	return func(p *PDF) {
		p.password = password
	}
}

func NewPDF(path string, opts ...PDFOption) *PDF {
	p := &PDF{path: path}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load returns the pages in file order. Each document carries its 0-based
// page index, the printed 1-based page label, the page count and the file
// path.
func (p *PDF) Load(ctx context.Context) ([]schema.Document, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat pdf: %w", err)
	}

	var opts []documentloaders.PDFOptions
	if p.password != "" {
		opts = append(opts, documentloaders.WithPassword(p.password))
	}

	docs, err := documentloaders.NewPDF(f, info.Size(), opts...).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf %s: %w", p.path, err)
	}

	docs = models.WithSource(docs, p.path)
	for i := range docs {
		number, ok := docs[i].Metadata[models.MetaPage].(int)
		if !ok {
			number = i + 1
		}
		docs[i].Metadata[models.MetaPage] = number - 1
		docs[i].Metadata[models.MetaPageLabel] = strconv.Itoa(number)
	}
	return docs, nil
}

func (p *PDF) LoadAndSplit(ctx context.Context, splitter textsplitter.TextSplitter) ([]schema.Document, error) {
	docs, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	return splitDocuments(splitter, docs)
}
