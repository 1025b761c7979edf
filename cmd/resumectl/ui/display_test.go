package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_AlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"ID", "File"}, [][]string{
		{"1", "resume.pdf"},
		{"12", "cv.pdf"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ID  File", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "--  ----", strings.TrimRight(lines[1], " "))
	assert.Equal(t, "1   resume.pdf", lines[2])
	assert.Equal(t, "12  cv.pdf", lines[3])
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	List(&buf, []string{"Go", "SQL"})
	assert.Equal(t, "  • Go\n  • SQL\n", buf.String())
}

func TestSection_Underline(t *testing.T) {
	Init(true)

	var buf bytes.Buffer
	Section(&buf, "Key Skills")
	assert.Equal(t, "\nKey Skills\n──────────\n", buf.String())
}
