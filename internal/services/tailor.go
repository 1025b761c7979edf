package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-optimizer/internal/models"
)

const tailorTemperature = 0.4

type TailorService struct {
	gemini      GeminiService
	prompts     *PromptBuilder
	resumes     *ResumeService
	model       string
	maxAttempts int
}

func NewTailorService(gemini GeminiService, prompts *PromptBuilder, resumes *ResumeService, model string, maxAttempts int) *TailorService {
	return &TailorService{
		gemini:      gemini,
		prompts:     prompts,
		resumes:     resumes,
		model:       model,
		maxAttempts: maxAttempts,
	}
}

// Tailor rewrites resumeText for jobDescription. Both inputs are checked, in
// that order, before anything is sent upstream.
func (t *TailorService) Tailor(ctx context.Context, resumeText, jobDescription string) (string, error) {
	if strings.TrimSpace(resumeText) == "" {
		return "", models.ErrNoResumeSelected
	}
	if strings.TrimSpace(jobDescription) == "" {
		return "", models.ErrNoJobDescription
	}

	prompt := t.prompts.BuildTailorPrompt(resumeText, jobDescription)
	content, err := t.gemini.GenerateTextWithRetry(ctx, t.model, prompt, tailorTemperature, t.maxAttempts)
	if err != nil {
		return "", err
	}

	log.Info().Int("chars", len(content)).Msg("✅ Resume tailored")
	return content, nil
}

// TailorResume tailors a stored resume.
func (t *TailorService) TailorResume(ctx context.Context, resumeID uint64, jobDescription string) (string, error) {
	if resumeID == 0 {
		return "", models.ErrNoResumeSelected
	}

	resume, err := t.resumes.Get(ctx, resumeID)
	if err != nil {
		if errors.Is(err, models.ErrResumeNotFound) {
			return "", models.ErrNoResumeSelected
		}
		return "", err
	}

	return t.Tailor(ctx, resume.Text, jobDescription)
}
