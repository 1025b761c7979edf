package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporter_WritesPDF(t *testing.T) {
	var out bytes.Buffer
	content := "# Jane Doe\n\n**Senior Engineer** at `Acme`\n\n" + strings.Repeat("Shipped distributed systems in Go. ", 400)

	require.NoError(t, NewResumeExporter().Export(&out, content))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))

	pages, err := NewPDFPageCounter().CountPages(out.Bytes())
	require.NoError(t, err)
	assert.Greater(t, pages, 1, "long content breaks onto further pages")
}

func TestCleanMarkdown(t *testing.T) {
	assert.Equal(t, "Title\n\nBold and code and snakecase", CleanMarkdown("## Title\n\n**Bold** and `code` and snake_case"))
	assert.Equal(t, "", CleanMarkdown("###"))
}

func TestExportFileName(t *testing.T) {
	day := time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "tailored-resume-2026-03-04.pdf", ExportFileName(day))
}
