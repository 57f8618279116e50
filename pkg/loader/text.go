package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/xhad/docload/internal/models"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

const (
	EncodingUTF8 = "utf-8"
	// EncodingAuto detects the charset from the file contents.
	EncodingAuto = "auto"
)

// ErrInvalidUTF8 is returned when a file read as UTF-8 holds invalid bytes.
var ErrInvalidUTF8 = errors.New("file is not valid utf-8")

// Text loads a whole text file as a single document.
type Text struct {
	path     string
	encoding string
}

type TextOption func(*Text)

// WithEncoding sets the charset used to decode the file. Any WHATWG label
// works ("utf-8", "latin1", "shift_jis", ...), as does EncodingAuto.
func WithEncoding(encoding string) TextOption {
	return func(t *Text) {
		t.encoding = strings.ToLower(strings.TrimSpace(encoding))
	}
}

func NewText(path string, opts ...TextOption) *Text {
	t := &Text{path: path, encoding: EncodingUTF8}
	for _, opt := range opts {
		opt(t)
	}
	if t.encoding == "" {
		t.encoding = EncodingUTF8
	}
	return t
}

func (t *Text) Load(ctx context.Context) ([]schema.Document, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	encoding := t.encoding
	if encoding == EncodingAuto {
		encoding, err = detectEncoding(data)
		if err != nil {
			return nil, fmt.Errorf("failed to detect encoding of %s: %w", t.path, err)
		}
	}

	r, err := decode(data, encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", t.path, err)
	}

	docs, err := documentloaders.NewText(r).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", t.path, err)
	}

	docs = models.WithSource(docs, t.path)
	for i := range docs {
		docs[i].Metadata[models.MetaEncoding] = encoding
	}
	return docs, nil
}

func (t *Text) LoadAndSplit(ctx context.Context, splitter textsplitter.TextSplitter) ([]schema.Document, error) {
	docs, err := t.Load(ctx)
	if err != nil {
		return nil, err
	}
	return splitDocuments(splitter, docs)
}

func isUTF8(encoding string) bool {
	return encoding == EncodingUTF8 || encoding == "utf8"
}

func decode(data []byte, encoding string) (io.Reader, error) {
	if isUTF8(encoding) {
		if !utf8.Valid(data) {
			return nil, ErrInvalidUTF8
		}
		return bytes.NewReader(data), nil
	}

	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", encoding, err)
	}
	return transform.NewReader(bytes.NewReader(data), enc.NewDecoder()), nil
}

// detectEncoding prefers utf-8 whenever the bytes are valid utf-8, since
// plain ASCII is otherwise reported as a single-byte charset.
func detectEncoding(data []byte) (string, error) {
	if len(data) == 0 || utf8.Valid(data) {
		return EncodingUTF8, nil
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return "", err
	}
	return strings.ToLower(result.Charset), nil
}
