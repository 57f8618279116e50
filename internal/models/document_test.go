package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithSource(t *testing.T) {
	docs := WithSource([]Document{
		{PageContent: "a"},
		{PageContent: "b", Metadata: map[string]interface{}{MetaPage: 2}},
	}, "file.pdf")

	assert.Equal(t, "file.pdf", Source(docs[0]))
	assert.Equal(t, "file.pdf", Source(docs[1]))

	page, ok := Page(docs[1])
	assert.True(t, ok)
	assert.Equal(t, 2, page)

	_, ok = Page(docs[0])
	assert.False(t, ok)
}

func TestCopyMetadata(t *testing.T) {
	orig := map[string]interface{}{MetaSource: "a"}
	cp := CopyMetadata(orig)
	cp[MetaChunk] = 1

	assert.NotContains(t, orig, MetaChunk)
	assert.Equal(t, "a", cp[MetaSource])
}

func TestJoinContent(t *testing.T) {
	assert.Equal(t, "", JoinContent(nil))
	assert.Equal(t, "one\n\ntwo", JoinContent([]Document{{PageContent: "one"}, {PageContent: "two"}}))
}
