package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-optimizer/internal/models"
)

const pdfContentType = "application/pdf"

type PageCounter interface {
	CountPages(content []byte) (int, error)
}

type pdfPageCounter struct{}

func NewPDFPageCounter() PageCounter {
	return &pdfPageCounter{}
}

// CountPages implements PageCounter.
func (p *pdfPageCounter) CountPages(content []byte) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to open PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	return r.NumPage(), nil
}

type DocumentLoader interface {
	// Load validates and stores a PDF. The returned document is still
	// counting its pages; callers that need the count use Wait or CheckPage.
	Load(ctx context.Context, fileName, contentType string, content []byte) (*Document, error)
}

type documentLoader struct {
	storage StorageService
	counter PageCounter
}

func NewDocumentLoader(storage StorageService, counter PageCounter) DocumentLoader {
	return &documentLoader{
		storage: storage,
		counter: counter,
	}
}

// Load implements DocumentLoader.
func (l *documentLoader) Load(ctx context.Context, fileName, contentType string, content []byte) (*Document, error) {
	if !IsPDFContentType(contentType) {
		return nil, fmt.Errorf("%w: got %q", models.ErrInvalidFormat, contentType)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty file", models.ErrInvalidFormat)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	handle, err := l.storage.SaveDocument(fileName, content)
	if err != nil {
		return nil, err
	}

	doc := newDocument(fileName, pdfContentType, content, handle)
	log.Info().
		Str("document_id", doc.ID.String()).
		Str("file_name", fileName).
		Int("size", len(content)).
		Msg("📄 Document loaded, counting pages")

	go func() {
		count, err := l.counter.CountPages(content)
		if err != nil {
			err = fmt.Errorf("%w: %v", models.ErrInvalidFormat, err)
		}
		doc.resolve(count, err)
		if err != nil {
			log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("❌ Failed to count pages")
			return
		}
		log.Info().Str("document_id", doc.ID.String()).Int("pages", count).Msg("✅ Page count resolved")
	}()

	return doc, nil
}

// IsPDFContentType reports whether a declared media type names a PDF.
func IsPDFContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == pdfContentType
}
