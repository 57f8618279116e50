package loader

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/docload/internal/models"
	"github.com/xhad/docload/internal/pdftest"
)

func writeTestPDF(t *testing.T, pages []string) string {
	t.Helper()
	return pdftest.Write(t, t.TempDir(), "test.pdf", pages)
}

func TestPDF_Load(t *testing.T) {
	pages := []string{"First page text", "Second page text", "Third page text"}
	path := writeTestPDF(t, pages)

	docs, err := NewPDF(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, len(pages))

	for i, doc := range docs {
		assert.Contains(t, doc.PageContent, pages[i])
		assert.Equal(t, i, doc.Metadata[models.MetaPage])
		assert.Equal(t, strconv.Itoa(i+1), doc.Metadata[models.MetaPageLabel])
		assert.Equal(t, len(pages), doc.Metadata[models.MetaTotalPages])
		assert.Equal(t, path, models.Source(doc))
	}
}

func TestPDF_LoadAndSplit(t *testing.T) {
	path := writeTestPDF(t, []string{"Only page"})

	docs, err := NewPDF(path).LoadAndSplit(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 0, docs[0].Metadata[models.MetaChunk])
	assert.Equal(t, 0, docs[0].Metadata[models.MetaPage])
	assert.Equal(t, "1", docs[0].Metadata[models.MetaPageLabel])
}

func TestPDF_LoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewPDF(filepath.Join(t.TempDir(), "nope.pdf")).Load(context.Background())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("not a pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.pdf")
		require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0644))

		_, err := NewPDF(path).Load(context.Background())
		assert.Error(t, err)
	})
}
