package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-optimizer/internal/models"
)

// Document is an uploaded PDF whose page count resolves in the background.
type Document struct {
	ID          uuid.UUID
	FileName    string
	ContentType string
	Content     []byte
	Handle      string
	CreatedAt   time.Time

	pageCount atomic.Int64
	ready     chan struct{}
	once      sync.Once
	err       error
}

func newDocument(fileName, contentType string, content []byte, handle string) *Document {
	return &Document{
		ID:          uuid.New(),
		FileName:    fileName,
		ContentType: contentType,
		Content:     content,
		Handle:      handle,
		CreatedAt:   time.Now().UTC(),
		ready:       make(chan struct{}),
	}
}

// NewLoadedDocument builds a document whose page count is already known.
func NewLoadedDocument(fileName string, content []byte, handle string, pageCount int) *Document {
	doc := newDocument(fileName, "application/pdf", content, handle)
	doc.resolve(pageCount, nil)
	return doc
}

func (d *Document) resolve(pageCount int, err error) {
	d.once.Do(func() {
		if err == nil && pageCount <= 0 {
			err = fmt.Errorf("%w: document has no pages", models.ErrInvalidFormat)
		}
		if err != nil {
			d.err = err
		} else {
			d.pageCount.Store(int64(pageCount))
		}
		close(d.ready)
	})
}

// PageCount is 0 until the count resolves.
func (d *Document) PageCount() int {
	return int(d.pageCount.Load())
}

func (d *Document) Ready() bool {
	select {
	case <-d.ready:
		return d.err == nil
	default:
		return false
	}
}

// Err reports a failed page count. It is nil while loading.
func (d *Document) Err() error {
	select {
	case <-d.ready:
		return d.err
	default:
		return nil
	}
}

// Wait blocks until the page count resolves or ctx ends.
func (d *Document) Wait(ctx context.Context) error {
	select {
	case <-d.ready:
		return d.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CheckPage validates a 1-based page number without waiting for the load.
func (d *Document) CheckPage(page int) error {
	if err := d.Err(); err != nil {
		return err
	}
	if !d.Ready() {
		return models.ErrDocumentNotReady
	}
	if page < 1 || page > d.PageCount() {
		return fmt.Errorf("%w: page %d of %d", models.ErrPageOutOfRange, page, d.PageCount())
	}
	return nil
}

func (d *Document) State() models.ExtractionState {
	switch {
	case d.Err() != nil:
		return models.StateFailed
	case d.Ready():
		return models.StateReady
	default:
		return models.StateLoading
	}
}

func (d *Document) ToResponse() models.DocumentResponse {
	resp := models.DocumentResponse{
		ID:          d.ID.String(),
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        len(d.Content),
		PageCount:   d.PageCount(),
		State:       d.State(),
		CreatedAt:   d.CreatedAt,
	}
	if err := d.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}
