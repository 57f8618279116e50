package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/docload/internal/models"
	"github.com/xhad/docload/pkg/processor"
)

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestText_Load(t *testing.T) {
	content := "Cricket is a bat-and-ball game.\nIt is played between two teams of eleven players. ✓\n"
	path := writeTestFile(t, "cricket.txt", []byte(content))

	docs, err := NewText(path, WithEncoding("utf-8")).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, content, docs[0].PageContent)
	assert.Equal(t, path, models.Source(docs[0]))
	assert.Equal(t, "utf-8", docs[0].Metadata[models.MetaEncoding])
}

func TestText_LoadEncodings(t *testing.T) {
	latin1 := []byte("Caf\xe9 au lait, cr\xe8me br\xfbl\xe9e.")

	tests := []struct {
		name     string
		data     []byte
		encoding string
		want     string
		wantErr  error
	}{
		{
			name:     "latin1",
			data:     latin1,
			encoding: "ISO-8859-1",
			want:     "Café au lait, crème brûlée.",
		},
		{
			name:     "invalid utf-8",
			data:     latin1,
			encoding: "utf-8",
			wantErr:  ErrInvalidUTF8,
		},
		{
			name:     "default is utf-8",
			data:     latin1,
			encoding: "",
			wantErr:  ErrInvalidUTF8,
		},
		{
			name:     "auto on utf-8",
			data:     []byte("plain ascii"),
			encoding: EncodingAuto,
			want:     "plain ascii",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, "doc.txt", tt.data)

			docs, err := NewText(path, WithEncoding(tt.encoding)).Load(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, tt.want, docs[0].PageContent)
		})
	}
}

func TestText_LoadAutoDetectsSingleByteCharset(t *testing.T) {
	data := []byte("Le caf\xe9 est tr\xe8s chaud. Nous avons mang\xe9 une cr\xe8me br\xfbl\xe9e " +
		"apr\xe8s le d\xeener, puis nous sommes all\xe9s \xe0 la plage pour voir la mer.")
	path := writeTestFile(t, "fr.txt", data)

	docs, err := NewText(path, WithEncoding(EncodingAuto)).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].PageContent, "la plage pour voir la mer")
	assert.NotEqual(t, EncodingUTF8, docs[0].Metadata[models.MetaEncoding])
}

func TestText_LoadErrors(t *testing.T) {
	_, err := NewText(filepath.Join(t.TempDir(), "missing.txt")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeTestFile(t, "doc.txt", []byte("x"))
	_, err = NewText(path, WithEncoding("no-such-charset")).Load(context.Background())
	assert.Error(t, err)
}

func TestText_LoadAndSplit(t *testing.T) {
	path := writeTestFile(t, "doc.txt", []byte("Alpha beta gamma. Delta epsilon zeta. Eta theta iota."))

	splitter := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 20, ChunkOverlap: -1})
	docs, err := NewText(path).LoadAndSplit(context.Background(), splitter)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	for i, doc := range docs {
		assert.Equal(t, i, doc.Metadata[models.MetaChunk])
		assert.Equal(t, path, models.Source(doc))
	}
	assert.Equal(t, "Delta epsilon zeta.", docs[1].PageContent)
}
