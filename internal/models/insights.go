package models

// ResumeInsights is the job-market view of a resume. The prompt asks for five
// entries per list; shorter lists are accepted.
type ResumeInsights struct {
	TopCountries   []string `json:"top_countries" validate:"required,min=1,dive,required"`
	TopStartups    []string `json:"top_startups" validate:"required,min=1,dive,required"`
	TopJobProfiles []string `json:"top_job_profiles" validate:"required,min=1,dive,required"`
	KeySkills      []string `json:"key_skills" validate:"required,min=1,dive,required"`
	SkillGaps      []string `json:"skill_gaps" validate:"required,min=1,dive,required"`
	ATSScore       int      `json:"ats_score" validate:"required,min=1,max=100"`
}

// ATSInsights is the applicant-tracking-system review of a resume.
type ATSInsights struct {
	OverallScore           int      `json:"overall_score" validate:"required,min=1,max=100"`
	KeywordMatch           int      `json:"keyword_match" validate:"required,min=1,max=100"`
	FormatScore            int      `json:"format_score" validate:"required,min=1,max=100"`
	ReadabilityScore       int      `json:"readability_score" validate:"required,min=1,max=100"`
	ImprovementSuggestions []string `json:"improvement_suggestions" validate:"required,min=1,dive,required"`
	MissingKeywords        []string `json:"missing_keywords" validate:"required,min=1,dive,required"`
}

// InsightsReport combines both insight shapes. The embedded fields and
// ATSDetails never overlap, so merging one side leaves the other intact.
type InsightsReport struct {
	*ResumeInsights
	ATSDetails *ATSInsights `json:"ats_details,omitempty"`
}

func (r InsightsReport) WithInsights(insights *ResumeInsights) InsightsReport {
	r.ResumeInsights = insights
	return r
}

func (r InsightsReport) WithATS(ats *ATSInsights) InsightsReport {
	r.ATSDetails = ats
	return r
}
