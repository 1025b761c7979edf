package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-optimizer/internal/models"
)

const insightsJSON = `{
  "top_countries": ["Switzerland", "United States", "Germany", "Singapore", "Canada"],
  "top_startups": ["Stripe", "Notion", "Figma", "Vercel", "Linear"],
  "top_job_profiles": ["Backend Engineer", "Platform Engineer", "SRE", "Data Engineer", "Tech Lead"],
  "key_skills": ["Go", "PostgreSQL", "Kubernetes", "gRPC", "AWS"],
  "skill_gaps": ["Rust", "ML Ops", "Public speaking"],
  "ats_score": 78
}`

const atsJSON = `{
  "overall_score": 72,
  "keyword_match": 65,
  "format_score": 80,
  "readability_score": 70,
  "improvement_suggestions": ["Add a skills section", "Use standard headings", "Quantify results", "Remove tables", "Add a summary"],
  "missing_keywords": ["CI/CD", "Terraform", "Microservices", "Observability", "Agile"]
}`

func newInsightFixture(gemini *fakeGemini) *InsightService {
	return NewInsightService(gemini, NewPromptBuilder(), "gemini-2.0-flash", 1)
}

func TestInsights_ParsesJSONWrappedInProse(t *testing.T) {
	gemini := &fakeGemini{response: "Sure! Here is the analysis:\n```json\n" + insightsJSON + "\n```\nGood luck."}
	service := newInsightFixture(gemini)

	insights, err := service.Insights(context.Background(), "Go developer with 5 years experience")
	require.NoError(t, err)

	assert.Equal(t, 78, insights.ATSScore)
	assert.Len(t, insights.TopCountries, 5)
	assert.Equal(t, []string{"Rust", "ML Ops", "Public speaking"}, insights.SkillGaps)

	require.Len(t, gemini.prompts, 1)
	assert.Contains(t, gemini.prompts[0], "Go developer with 5 years experience")
	assert.Contains(t, gemini.prompts[0], "Respond ONLY with the JSON. No other text.")
	assert.Equal(t, "gemini-2.0-flash", gemini.models[0])
}

func TestInsights_MalformedResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "no json", response: "I cannot help with that."},
		{name: "broken json", response: `{"top_countries": ["A",}`},
		{name: "missing fields", response: `{"top_countries": ["A"], "ats_score": 50}`},
		{name: "score out of range", response: `{"top_countries":["A"],"top_startups":["B"],"top_job_profiles":["C"],"key_skills":["D"],"skill_gaps":["E"],"ats_score":150}`},
		{name: "wrong type", response: `{"top_countries":"A","top_startups":["B"],"top_job_profiles":["C"],"key_skills":["D"],"skill_gaps":["E"],"ats_score":50}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newInsightFixture(&fakeGemini{response: tt.response})
			_, err := service.Insights(context.Background(), "resume")
			assert.ErrorIs(t, err, models.ErrMalformedInsights)
		})
	}
}

func TestInsights_ATS(t *testing.T) {
	gemini := &fakeGemini{response: atsJSON}
	service := newInsightFixture(gemini)

	ats, err := service.ATSInsights(context.Background(), "resume")
	require.NoError(t, err)
	assert.Equal(t, 72, ats.OverallScore)
	assert.Len(t, ats.MissingKeywords, 5)
	assert.Contains(t, gemini.prompts[0], "improvement_suggestions")
}

func TestInsights_EmptyTextIsRejectedLocally(t *testing.T) {
	gemini := &fakeGemini{response: insightsJSON}
	service := newInsightFixture(gemini)

	_, err := service.Insights(context.Background(), "  ")
	assert.ErrorIs(t, err, models.ErrNoResumeSelected)
	_, err = service.Report(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrNoResumeSelected)
	assert.Zero(t, gemini.Calls())
}

func TestInsights_ReportMergesBothSides(t *testing.T) {
	gemini := &fakeGemini{responses: map[string]string{
		"top_countries": insightsJSON,
		"overall_score": atsJSON,
	}}
	service := newInsightFixture(gemini)

	report, err := service.Report(context.Background(), "resume")
	require.NoError(t, err)
	require.NotNil(t, report.ResumeInsights)
	require.NotNil(t, report.ATSDetails)
	assert.Equal(t, 78, report.ATSScore)
	assert.Equal(t, 72, report.ATSDetails.OverallScore)
	assert.Equal(t, 2, gemini.Calls())

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "top_countries")
	assert.Contains(t, decoded, "ats_score")
	assert.Contains(t, decoded, "ats_details")
}

func TestInsights_UpstreamFailurePropagates(t *testing.T) {
	service := newInsightFixture(&fakeGemini{err: models.ErrGenerationFailed})

	_, err := service.Report(context.Background(), "resume")
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}
