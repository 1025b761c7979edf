package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"alfredoptarigan/resume-optimizer/internal/models"
)

// ProgressFunc receives recognition progress as a fraction in [0,1].
type ProgressFunc func(fraction float64)

type Recognizer interface {
	Recognize(ctx context.Context, buf *PixelBuffer, language string, onProgress ProgressFunc) (string, error)
}

type tesseractRecognizer struct{}

func NewTesseractRecognizer() Recognizer {
	return &tesseractRecognizer{}
}

// Recognize implements Recognizer. Tesseract does not report intermediate
// progress through the C API, so only the endpoints are published.
func (t *tesseractRecognizer) Recognize(ctx context.Context, buf *PixelBuffer, language string, onProgress ProgressFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	report(onProgress, 0)

	img, err := buf.PNG()
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrRecognition, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			return "", fmt.Errorf("%w: %v", models.ErrRecognition, err)
		}
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrRecognition, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: page %d: %v", models.ErrRecognition, buf.Page, err)
	}

	report(onProgress, 1)
	return strings.TrimSpace(text), nil
}

func report(fn ProgressFunc, fraction float64) {
	if fn == nil {
		return
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	fn(fraction)
}
