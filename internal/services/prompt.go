package services

import (
	"fmt"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildTailorPrompt creates prompt for rewriting a resume against a job posting
func (pb *PromptBuilder) BuildTailorPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`I need you to help me tailor my resume for a specific job posting. Please analyze my current resume and the job description, then create an optimized version that highlights relevant experiences and skills.

Current Resume:
%s

Job Description:
%s

Instructions:
1. Maintain all truthful information from the original resume
2. Reorganize and rephrase content to better match the job requirements
3. Highlight relevant skills and experiences
4. Keep the same basic structure but optimize the content
5. Return the result in a clear, professional format`,
		resumeText, jobDescription)
}

// BuildInsightsPrompt creates prompt for market insights on a resume
func (pb *PromptBuilder) BuildInsightsPrompt(resumeText string) string {
	return fmt.Sprintf(`Based on this resume text, analyze and provide insights in the following JSON format:
{
  "top_countries": [list of 5 countries paying most for this candidate's skills/profile],
  "top_startups": [list of 5 startups that would be good fits for this candidate],
  "top_job_profiles": [list of 5 job titles/roles that match this candidate's experience],
  "key_skills": [list of 5 most marketable skills from the resume],
  "skill_gaps": [list of 3 skills to develop for better opportunities],
  "ats_score": [numerical score from 1-100 estimating how well this resume would perform in ATS systems]
}

Resume Text:
%s

Respond ONLY with the JSON. No other text.`, resumeText)
}

// BuildATSPrompt creates prompt for the detailed ATS review
func (pb *PromptBuilder) BuildATSPrompt(resumeText string) string {
	return fmt.Sprintf(`Analyze this resume for ATS optimization and provide detailed feedback in the following JSON format:
{
  "overall_score": [number between 1-100],
  "keyword_match": [number between 1-100],
  "format_score": [number between 1-100],
  "readability_score": [number between 1-100],
  "improvement_suggestions": [list of 5 specific suggestions to improve ATS compatibility],
  "missing_keywords": [list of 5 industry-standard keywords that should be added]
}

Resume Text:
%s

Respond ONLY with the JSON. No other text.`, resumeText)
}

// BuildTranscriptionPrompt asks a vision model for the page text only.
func (pb *PromptBuilder) BuildTranscriptionPrompt(language string) string {
	return fmt.Sprintf(`Transcribe all text visible in this scanned resume page exactly as written.

Rules:
- The document language is %s
- Preserve the reading order and line breaks
- Do not summarize, translate, correct or comment on the content
- If the page has no text, respond with an empty message

Respond ONLY with the transcribed text.`, languageName(language))
}

func languageName(code string) string {
	switch code {
	case "", "eng":
		return "English"
	default:
		return code
	}
}
