package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/gen2brain/go-fitz"

	"alfredoptarigan/resume-optimizer/internal/models"
)

const baseDPI = 72.0

// PixelBuffer is one rendered page.
type PixelBuffer struct {
	Page  int
	Scale float64
	Image image.Image
}

func (p *PixelBuffer) Width() int  { return p.Image.Bounds().Dx() }
func (p *PixelBuffer) Height() int { return p.Image.Bounds().Dy() }

// PNG encodes the buffer for recognizers and previews.
func (p *PixelBuffer) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.Image); err != nil {
		return nil, fmt.Errorf("failed to encode page %d: %w", p.Page, err)
	}
	return buf.Bytes(), nil
}

type PageRasterizer interface {
	// Render draws a 1-based page at scale times its natural size.
	Render(ctx context.Context, doc *Document, page int, scale float64) (*PixelBuffer, error)
	// FitWidthScale returns the scale at which page is width pixels wide.
	FitWidthScale(ctx context.Context, doc *Document, page int, width int) (float64, error)
}

type fitzRasterizer struct {
	// mupdf contexts are not shared across goroutines
	mu sync.Mutex
}

func NewFitzRasterizer() PageRasterizer {
	return &fitzRasterizer{}
}

// Render implements PageRasterizer.
func (r *fitzRasterizer) Render(ctx context.Context, doc *Document, page int, scale float64) (*PixelBuffer, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("%w: scale must be positive, got %v", models.ErrRender, scale)
	}
	if err := doc.CheckPage(page); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fdoc, err := fitz.NewFromMemory(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRender, err)
	}
	defer fdoc.Close()

	img, err := fdoc.ImageDPI(page-1, baseDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", models.ErrRender, page, err)
	}

	return &PixelBuffer{
		Page:  page,
		Scale: scale,
		Image: img,
	}, nil
}

// FitWidthScale implements PageRasterizer.
func (r *fitzRasterizer) FitWidthScale(ctx context.Context, doc *Document, page int, width int) (float64, error) {
	if width <= 0 {
		return 0, fmt.Errorf("%w: width must be positive, got %d", models.ErrRender, width)
	}
	if err := doc.CheckPage(page); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fdoc, err := fitz.NewFromMemory(doc.Content)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrRender, err)
	}
	defer fdoc.Close()

	bounds, err := fdoc.Bound(page - 1)
	if err != nil {
		return 0, fmt.Errorf("%w: page %d: %v", models.ErrRender, page, err)
	}

	return FitWidth(bounds.Dx(), width), nil
}

// FitWidth scales a natural page width to target pixels.
func FitWidth(naturalWidth, target int) float64 {
	if naturalWidth <= 0 {
		return 1
	}
	return float64(target) / float64(naturalWidth)
}
