package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_SplitsAtPageMarkers(t *testing.T) {
	text := FormatPage(1, "Jane Doe\n\nGo engineer") + FormatPage(2, "Experience at Acme")

	chunks := NewTextChunker(1000, 0).ChunkResume(text)
	require.Len(t, chunks, 2)

	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, "Jane Doe\n\nGo engineer", chunks[0].Text)
	assert.Equal(t, 2, chunks[1].Page)
	assert.Equal(t, "Experience at Acme", chunks[1].Text)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestChunker_TextWithoutMarkersIsPageOne(t *testing.T) {
	chunks := NewTextChunker(1000, 0).ChunkResume("plain resume text")
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Page)
}

func TestChunker_SkipsEmptyPages(t *testing.T) {
	text := FormatPage(1, "") + FormatPage(2, "content")
	chunks := NewTextChunker(1000, 0).ChunkResume(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, 2, chunks[0].Page)
}

func TestChunker_BoundsChunkSize(t *testing.T) {
	paragraphs := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		paragraphs = append(paragraphs, strings.Repeat("word ", 20))
	}
	text := FormatPage(1, strings.Join(paragraphs, "\n\n"))

	chunks := NewTextChunker(300, 50).ChunkResume(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Text), 300+50+2)
	}
}

func TestChunker_LongParagraphFallsBackToSentences(t *testing.T) {
	para := strings.Repeat("Built a payment service in Go. ", 30)
	chunks := NewTextChunker(200, 0).ChunkResume(para)
	assert.Greater(t, len(chunks), 1)
}
