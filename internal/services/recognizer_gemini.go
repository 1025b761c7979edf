package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alfredoptarigan/resume-optimizer/internal/models"
)

type geminiRecognizer struct {
	gemini  GeminiService
	prompts *PromptBuilder
	model   string
}

// NewGeminiRecognizer transcribes pages with a multimodal Gemini model.
func NewGeminiRecognizer(gemini GeminiService, prompts *PromptBuilder, model string) Recognizer {
	return &geminiRecognizer{
		gemini:  gemini,
		prompts: prompts,
		model:   model,
	}
}

// Recognize implements Recognizer.
func (g *geminiRecognizer) Recognize(ctx context.Context, buf *PixelBuffer, language string, onProgress ProgressFunc) (string, error) {
	report(onProgress, 0)

	img, err := buf.PNG()
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrRecognition, err)
	}

	text, err := g.gemini.GenerateFromImage(ctx, g.model, g.prompts.BuildTranscriptionPrompt(language), img, "image/png")
	if errors.Is(err, errEmptyContent) {
		report(onProgress, 1)
		return "", nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: page %d: %v", models.ErrRecognition, buf.Page, err)
	}

	report(onProgress, 1)
	return strings.TrimSpace(text), nil
}
