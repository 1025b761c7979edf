package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-optimizer/internal/config"
	"alfredoptarigan/resume-optimizer/internal/models"
)

func newFakeGeminiServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, *atomic.Value) {
	t.Helper()

	var hits atomic.Int32
	var lastBody atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		raw, _ := io.ReadAll(r.Body)
		lastBody.Store(string(raw))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	return server, &hits, &lastBody
}

func newTestGeminiService(t *testing.T, baseURL string) GeminiService {
	t.Helper()

	service, err := NewGeminiService(context.Background(), config.GeminiConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		EmbedModel: "text-embedding-004",
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)
	return service
}

func TestGemini_GenerateText(t *testing.T) {
	server, hits, lastBody := newFakeGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Tailored resume"}]}}]}`)
	service := newTestGeminiService(t, server.URL)

	text, err := service.GenerateText(context.Background(), "gemini-2.5-flash", "tailor this", 0.4)
	require.NoError(t, err)
	assert.Equal(t, "Tailored resume", text)
	assert.Equal(t, int32(1), hits.Load())

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(lastBody.Load().(string)), &sent))
	assert.Contains(t, lastBody.Load().(string), "tailor this")
}

func TestGemini_UpstreamErrorMessageIsSurfaced(t *testing.T) {
	server, hits, _ := newFakeGeminiServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`)
	service := newTestGeminiService(t, server.URL)

	_, err := service.GenerateTextWithRetry(context.Background(), "gemini-2.5-flash", "prompt", 0.4, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "API key not valid")
	assert.Equal(t, int32(1), hits.Load(), "no automatic retries")
}

func TestGemini_EmptyCandidateIsAFailure(t *testing.T) {
	server, _, _ := newFakeGeminiServer(t, http.StatusOK, `{"candidates":[]}`)
	service := newTestGeminiService(t, server.URL)

	_, err := service.GenerateText(context.Background(), "gemini-2.5-flash", "prompt", 0.4)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestGemini_VisionRecognizerSendsInlineImage(t *testing.T) {
	server, _, lastBody := newFakeGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"  Jane Doe\nEngineer  "}]}}]}`)
	recognizer := NewGeminiRecognizer(newTestGeminiService(t, server.URL), NewPromptBuilder(), "gemini-2.5-flash")

	buf := (&fakeRasterizer{}).blank(1)
	var fractions []float64
	text, err := recognizer.Recognize(context.Background(), buf, "eng", func(f float64) { fractions = append(fractions, f) })
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe\nEngineer", text)
	assert.Equal(t, []float64{0, 1}, fractions)

	body := lastBody.Load().(string)
	assert.Contains(t, body, "image/png")
	assert.Contains(t, body, "inlineData")
	assert.True(t, strings.Contains(body, "English"))
}

func TestGemini_VisionRecognizerBlankPage(t *testing.T) {
	server, _, _ := newFakeGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"   "}]}}]}`)
	recognizer := NewGeminiRecognizer(newTestGeminiService(t, server.URL), NewPromptBuilder(), "gemini-2.5-flash")

	text, err := recognizer.Recognize(context.Background(), (&fakeRasterizer{}).blank(2), "eng", nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGemini_VisionRecognizerFailure(t *testing.T) {
	server, _, _ := newFakeGeminiServer(t, http.StatusInternalServerError,
		`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`)
	recognizer := NewGeminiRecognizer(newTestGeminiService(t, server.URL), NewPromptBuilder(), "gemini-2.5-flash")

	_, err := recognizer.Recognize(context.Background(), (&fakeRasterizer{}).blank(1), "eng", nil)
	assert.ErrorIs(t, err, models.ErrRecognition)
}

func TestTruncateUTF8_KeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{name: "short", text: "Zürich", limit: 40, want: "Zürich"},
		{name: "ascii cut", text: "abcdef", limit: 3, want: "abc"},
		// ü is two bytes, a cut after its first byte backs off
		{name: "mid rune", text: "Zürich", limit: 2, want: "Z"},
		{name: "after rune", text: "Zürich", limit: 3, want: "Zü"},
		{name: "cjk", text: "東京都", limit: 7, want: "東京"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateUTF8(tt.text, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
