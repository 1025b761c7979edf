package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-optimizer/internal/models"
)

const insightTemperature = 0.2

type InsightService struct {
	gemini      GeminiService
	prompts     *PromptBuilder
	validate    *validator.Validate
	model       string
	maxAttempts int
}

func NewInsightService(gemini GeminiService, prompts *PromptBuilder, model string, maxAttempts int) *InsightService {
	return &InsightService{
		gemini:      gemini,
		prompts:     prompts,
		validate:    validator.New(),
		model:       model,
		maxAttempts: maxAttempts,
	}
}

// Insights asks for the job-market view of a resume.
func (s *InsightService) Insights(ctx context.Context, resumeText string) (*models.ResumeInsights, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, models.ErrNoResumeSelected
	}

	var insights models.ResumeInsights
	if err := s.request(ctx, s.prompts.BuildInsightsPrompt(resumeText), &insights); err != nil {
		return nil, err
	}

	log.Info().Int("ats_score", insights.ATSScore).Msg("✅ Resume insights generated")
	return &insights, nil
}

// ATSInsights asks for the detailed ATS review of a resume.
func (s *InsightService) ATSInsights(ctx context.Context, resumeText string) (*models.ATSInsights, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, models.ErrNoResumeSelected
	}

	var ats models.ATSInsights
	if err := s.request(ctx, s.prompts.BuildATSPrompt(resumeText), &ats); err != nil {
		return nil, err
	}

	log.Info().Int("overall_score", ats.OverallScore).Msg("✅ ATS review generated")
	return &ats, nil
}

// Report runs both requests concurrently and merges the results.
func (s *InsightService) Report(ctx context.Context, resumeText string) (*models.InsightsReport, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, models.ErrNoResumeSelected
	}

	var (
		insights *models.ResumeInsights
		ats      *models.ATSInsights
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		insights, err = s.Insights(gctx, resumeText)
		return err
	})
	g.Go(func() error {
		var err error
		ats, err = s.ATSInsights(gctx, resumeText)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := models.InsightsReport{}.WithInsights(insights).WithATS(ats)
	return &report, nil
}

func (s *InsightService) request(ctx context.Context, prompt string, target interface{}) error {
	response, err := s.gemini.GenerateTextWithRetry(ctx, s.model, prompt, insightTemperature, s.maxAttempts)
	if err != nil {
		return err
	}

	if err := parseJSONResponse(response, target); err != nil {
		log.Warn().Err(err).Msg("⚠️ Insight response is not valid JSON")
		return err
	}

	if err := s.validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", models.ErrMalformedInsights, err)
	}
	return nil
}

func parseJSONResponse(response string, target interface{}) error {
	jsonStr, ok := extractJSON(response)
	if !ok {
		return fmt.Errorf("%w: no JSON object in response", models.ErrMalformedInsights)
	}

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("%w: %v", models.ErrMalformedInsights, err)
	}
	return nil
}

// extractJSON returns the text between the first "{" and the last "}".
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
