package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"alfredoptarigan/resume-optimizer/internal/config"
	"alfredoptarigan/resume-optimizer/internal/models"
)

const maxEmbedBytes = 40000

var errEmptyContent = fmt.Errorf("%w: no content generated", models.ErrGenerationFailed)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, model, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, model, prompt string, temperature float32, maxAttempts int) (string, error)
	GenerateFromImage(ctx context.Context, model, prompt string, image []byte, mimeType string) (string, error)
}

type geminiService struct {
	client     *genai.Client
	embedModel string
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig) (GeminiService, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		embedModel: cfg.EmbedModel,
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// max ~10000 tokens for embedding
	text = truncateUTF8(text, maxEmbedBytes)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, wrapGenerationError("failed to generate embedding", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: empty embedding result", models.ErrGenerationFailed)
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, model, prompt string, temperature float32) (string, error) {
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 8192,
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
	if err != nil {
		log.Error().Err(err).Str("model", model).Msg("❌ Gemini API error")
		return "", wrapGenerationError("failed to generate text", err)
	}

	return responseText(model, resp)
}

// GenerateFromImage implements GeminiService.
func (g *geminiService) GenerateFromImage(ctx context.Context, model, prompt string, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		log.Error().Err(err).Str("model", model).Msg("❌ Gemini vision error")
		return "", wrapGenerationError("failed to analyze image", err)
	}

	return responseText(model, resp)
}

// GenerateTextWithRetry implements GeminiService.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, model, prompt string, temperature float32, maxAttempts int) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := g.GenerateText(ctx, model, prompt, temperature)
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < maxAttempts {
			log.Warn().Err(err).Int("attempt", attempt).Msg("⚠️ Generation attempt failed, retrying")
		}
	}

	if maxAttempts == 1 {
		return "", lastErr
	}
	return "", fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

func responseText(model string, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", models.ErrGenerationFailed)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		log.Warn().Str("model", model).Msg("⚠️ No text content in response")
		return "", errEmptyContent
	}

	log.Debug().Str("model", model).Int("chars", len(text)).Msg("📊 Gemini response received")
	return text, nil
}

// wrapGenerationError prefers the upstream error message when the API sent one.
func wrapGenerationError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Errorf("%w: %s", models.ErrGenerationFailed, apiErr.Message)
	}
	return fmt.Errorf("%w: %s: %v", models.ErrGenerationFailed, op, err)
}

// truncateUTF8 cuts text to at most limit bytes without splitting a rune.
func truncateUTF8(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
