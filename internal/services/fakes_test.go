package services

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"alfredoptarigan/resume-optimizer/internal/models"
)

type fakeRasterizer struct {
	mu       sync.Mutex
	failPage int
	rendered []int
}

func (f *fakeRasterizer) Render(ctx context.Context, doc *Document, page int, scale float64) (*PixelBuffer, error) {
	if err := doc.CheckPage(page); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.rendered = append(f.rendered, page)
	f.mu.Unlock()

	if page == f.failPage {
		return nil, fmt.Errorf("%w: page %d is corrupt", models.ErrRender, page)
	}
	return &PixelBuffer{Page: page, Scale: scale, Image: image.NewRGBA(image.Rect(0, 0, 4, 4))}, nil
}

func (f *fakeRasterizer) FitWidthScale(ctx context.Context, doc *Document, page int, width int) (float64, error) {
	if err := doc.CheckPage(page); err != nil {
		return 0, err
	}
	return FitWidth(612, width), nil
}

// fakeRecognizer returns "text N" for page N and reports the given fractions.
type fakeRecognizer struct {
	fractions []float64
	failPage  int
	// block holds recognition of blockPage until released
	blockPage int
	block     chan struct{}
	entered   chan struct{}
}

func (f *fakeRecognizer) Recognize(ctx context.Context, buf *PixelBuffer, language string, onProgress ProgressFunc) (string, error) {
	if buf.Page == f.blockPage && f.block != nil {
		if f.entered != nil {
			close(f.entered)
		}
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	for _, fraction := range f.fractions {
		onProgress(fraction)
	}
	if buf.Page == f.failPage {
		return "", fmt.Errorf("%w: page %d unreadable", models.ErrRecognition, buf.Page)
	}
	return fmt.Sprintf("text %d", buf.Page), nil
}

type fakeGemini struct {
	mu        sync.Mutex
	calls     int
	prompts   []string
	models    []string
	responses map[string]string
	response  string
	err       error
	embedding []float32
}

func (f *fakeGemini) record(model, prompt string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.models = append(f.models, model)
}

func (f *fakeGemini) reply(prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	for marker, response := range f.responses {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return f.response, nil
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.record("embed", text)
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

func (f *fakeGemini) GenerateText(ctx context.Context, model, prompt string, temperature float32) (string, error) {
	f.record(model, prompt)
	return f.reply(prompt)
}

func (f *fakeGemini) GenerateTextWithRetry(ctx context.Context, model, prompt string, temperature float32, maxAttempts int) (string, error) {
	return f.GenerateText(ctx, model, prompt, temperature)
}

func (f *fakeGemini) GenerateFromImage(ctx context.Context, model, prompt string, image []byte, mimeType string) (string, error) {
	f.record(model, prompt)
	return f.reply(prompt)
}

func (f *fakeGemini) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCounter struct {
	count   int
	err     error
	release chan struct{}
}

func (f *fakeCounter) CountPages(content []byte) (int, error) {
	if f.release != nil {
		<-f.release
	}
	return f.count, f.err
}

type fakeIndex struct {
	mu      sync.Mutex
	points  map[uint64][]Chunk
	hits    []IndexHit
	deleted []uint64
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{points: make(map[uint64][]Chunk)}
}

func (f *fakeIndex) InitCollection(ctx context.Context) error { return nil }

func (f *fakeIndex) IndexChunks(ctx context.Context, resumeID uint64, chunks []Chunk, embeddings [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points[resumeID] = chunks
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, embedding []float32, limit int) ([]IndexHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.hits) > limit {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func (f *fakeIndex) DeleteResume(ctx context.Context, resumeID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.points, resumeID)
	f.deleted = append(f.deleted, resumeID)
	return nil
}

func (f *fakeIndex) chunks(resumeID uint64) []Chunk {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.points[resumeID]
}

func (f *fakeRasterizer) blank(page int) *PixelBuffer {
	return &PixelBuffer{Page: page, Scale: 1, Image: image.NewRGBA(image.Rect(0, 0, 4, 4))}
}
