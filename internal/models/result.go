package models

import "time"

type DocumentResponse struct {
	ID          string          `json:"id"`
	FileName    string          `json:"file_name"`
	ContentType string          `json:"content_type"`
	Size        int             `json:"size"`
	PageCount   int             `json:"page_count"`
	State       ExtractionState `json:"state"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CreditResponse struct {
	Balance        int `json:"balance"`
	ExtractionCost int `json:"extraction_cost"`
}

type ResumeSummary struct {
	ID        uint64    `json:"id"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
	Length    int       `json:"length"`
}

type TailorRequest struct {
	ResumeID       uint64 `json:"resume_id"`
	JobDescription string `json:"job_description"`
}

type TailorResponse struct {
	ResumeID uint64 `json:"resume_id"`
	Content  string `json:"content"`
}

type ExportRequest struct {
	Content string `json:"content" validate:"required"`
}

type InsightRequest struct {
	ResumeID uint64 `json:"resume_id" validate:"required_without=Text"`
	Text     string `json:"text" validate:"required_without=ResumeID"`
}

type MatchRequest struct {
	JobDescription string `json:"job_description" validate:"required"`
	Limit          int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

type ResumeMatch struct {
	ResumeID uint64  `json:"resume_id"`
	FileName string  `json:"file_name"`
	Score    float32 `json:"score"`
	Excerpt  string  `json:"excerpt"`
}
