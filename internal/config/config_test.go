package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("OCR_ENGINE", "")
	t.Setenv("CREDITS_INITIAL", "")
	t.Setenv("CREDITS_EXTRACTION_COST", "")
	t.Setenv("OCR_SCALE", "")
	t.Setenv("EXTRACTION_PAGE_POLICY", "")

	cfg := Load()

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, EngineTesseract, cfg.OCR.Engine)
	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.Equal(t, 2.0, cfg.OCR.Scale)
	assert.Equal(t, 100, cfg.Credits.InitialBalance)
	assert.Equal(t, 10, cfg.Credits.ExtractionCost)
	assert.Equal(t, PolicyAbort, cfg.Extraction.PagePolicy)
	assert.Equal(t, 1, cfg.Gemini.MaxAttempts)
	assert.NotEqual(t, cfg.Gemini.TailorModel, cfg.Gemini.InsightModel)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "POSTGRES")
	t.Setenv("OCR_ENGINE", "gemini")
	t.Setenv("OCR_SCALE", "3.5")
	t.Setenv("QDRANT_ENABLED", "true")
	t.Setenv("GEMINI_TIMEOUT", "5s")
	t.Setenv("EXTRACTION_PAGE_POLICY", "skip")

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, EngineGemini, cfg.OCR.Engine)
	assert.Equal(t, 3.5, cfg.OCR.Scale)
	assert.True(t, cfg.Qdrant.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, PolicySkip, cfg.Extraction.PagePolicy)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"store driver", func(c *Config) { c.Database.Driver = "mongo" }},
		{"ocr engine", func(c *Config) { c.OCR.Engine = "easyocr" }},
		{"page policy", func(c *Config) { c.Extraction.PagePolicy = "retry" }},
		{"scale", func(c *Config) { c.OCR.Scale = 0 }},
		{"cost", func(c *Config) { c.Credits.ExtractionCost = 0 }},
		{"balance", func(c *Config) { c.Credits.InitialBalance = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
