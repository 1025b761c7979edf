package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	exportTitle    = "Generated Resume"
	exportMarginMM = 20
)

var markdownStripper = strings.NewReplacer("#", "", "*", "", "`", "", "_", "")

type ResumeExporter struct{}

func NewResumeExporter() *ResumeExporter {
	return &ResumeExporter{}
}

// Export writes content as an A4 PDF with markdown markers removed.
func (e *ResumeExporter) Export(w io.Writer, content string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(exportMarginMM, exportMarginMM, exportMarginMM)
	pdf.SetAutoPageBreak(true, exportMarginMM)
	pdf.SetTitle(exportTitle, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, exportTitle, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, tr(CleanMarkdown(content)), "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

// CleanMarkdown drops the markdown emphasis and heading characters.
func CleanMarkdown(content string) string {
	return strings.TrimSpace(markdownStripper.Replace(content))
}

// ExportFileName is the download name for a tailored resume produced on day.
func ExportFileName(day time.Time) string {
	return fmt.Sprintf("tailored-resume-%s.pdf", day.Format("2006-01-02"))
}
