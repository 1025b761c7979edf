package services

import (
	"context"
	"errors"
	"strings"

	"alfredoptarigan/resume-optimizer/internal/models"
)

const (
	defaultMatchLimit = 5
	excerptRunes      = 200
)

// MatchService ranks stored resumes against a job description.
type MatchService struct {
	embedder Embedder
	index    ResumeIndex
	resumes  *ResumeService
}

// NewMatchService returns a service that reports ErrIndexDisabled when index is nil.
func NewMatchService(embedder Embedder, index ResumeIndex, resumes *ResumeService) *MatchService {
	return &MatchService{
		embedder: embedder,
		index:    index,
		resumes:  resumes,
	}
}

func (m *MatchService) Match(ctx context.Context, jobDescription string, limit int) ([]models.ResumeMatch, error) {
	if m.index == nil {
		return nil, models.ErrIndexDisabled
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, models.ErrNoJobDescription
	}
	if limit <= 0 {
		limit = defaultMatchLimit
	}

	embedding, err := m.embedder.GenerateEmbedding(ctx, jobDescription)
	if err != nil {
		return nil, err
	}

	// several chunks per resume
	hits, err := m.index.Search(ctx, embedding, limit*4)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]bool)
	matches := make([]models.ResumeMatch, 0, limit)
	for _, hit := range hits {
		if len(matches) == limit {
			break
		}
		if seen[hit.ResumeID] {
			continue
		}
		seen[hit.ResumeID] = true

		resume, err := m.resumes.Get(ctx, hit.ResumeID)
		if errors.Is(err, models.ErrResumeNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		matches = append(matches, models.ResumeMatch{
			ResumeID: resume.ID,
			FileName: resume.FileName,
			Score:    hit.Score,
			Excerpt:  excerpt(hit.Text),
		})
	}
	return matches, nil
}

func excerpt(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes]) + "…"
}
