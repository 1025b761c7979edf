package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-optimizer/internal/models"
	"alfredoptarigan/resume-optimizer/internal/repositories"
)

// ResumeIndexer receives resume lifecycle notifications for the similarity index.
type ResumeIndexer interface {
	EnqueueIndex(resumeID uint64)
	EnqueueRemoval(resumeID uint64)
}

// ResumeService owns stored resumes and the document files they reference.
type ResumeService struct {
	repo    repositories.ResumeRepository
	storage StorageService
	indexer ResumeIndexer
}

func NewResumeService(repo repositories.ResumeRepository, storage StorageService) *ResumeService {
	return &ResumeService{
		repo:    repo,
		storage: storage,
	}
}

// SetIndexer attaches the similarity index; nil detaches it.
func (s *ResumeService) SetIndexer(indexer ResumeIndexer) {
	s.indexer = indexer
}

// Add stores resume under a fresh id and takes a reference on its document.
func (s *ResumeService) Add(ctx context.Context, resume *models.Resume) error {
	if resume.DocumentHandle != "" {
		if err := s.storage.Acquire(resume.DocumentHandle); err != nil {
			return fmt.Errorf("failed to retain resume document: %w", err)
		}
	}

	if err := s.repo.Create(ctx, resume); err != nil {
		if resume.DocumentHandle != "" {
			_ = s.storage.Release(resume.DocumentHandle)
		}
		return err
	}

	log.Info().Uint64("resume_id", resume.ID).Str("file_name", resume.FileName).Msg("💾 Resume stored")
	if s.indexer != nil {
		s.indexer.EnqueueIndex(resume.ID)
	}
	return nil
}

func (s *ResumeService) Get(ctx context.Context, id uint64) (*models.Resume, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ResumeService) List(ctx context.Context) ([]models.Resume, error) {
	return s.repo.List(ctx)
}

// Delete removes a resume. Unknown ids are a no-op and return (nil, nil).
func (s *ResumeService) Delete(ctx context.Context, id uint64) (*models.Resume, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil || deleted == nil {
		return nil, err
	}

	if deleted.DocumentHandle != "" {
		if err := s.storage.Release(deleted.DocumentHandle); err != nil {
			log.Warn().Err(err).Uint64("resume_id", id).Msg("⚠️ Failed to release resume document")
		}
	}
	if s.indexer != nil {
		s.indexer.EnqueueRemoval(id)
	}

	log.Info().Uint64("resume_id", id).Msg("🗑️ Resume deleted")
	return deleted, nil
}

// Document returns the original PDF bytes a resume was extracted from.
func (s *ResumeService) Document(ctx context.Context, id uint64) (*models.Resume, []byte, error) {
	resume, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if resume.DocumentHandle == "" {
		return nil, nil, fmt.Errorf("%w: resume %d has no document", models.ErrResumeNotFound, id)
	}

	content, err := s.storage.ReadDocument(resume.DocumentHandle)
	if err != nil {
		return nil, nil, err
	}
	return resume, content, nil
}

// Restore retakes document references for resumes loaded from a durable store.
func (s *ResumeService) Restore(ctx context.Context) error {
	resumes, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	restored := 0
	for _, resume := range resumes {
		if resume.DocumentHandle == "" {
			continue
		}
		if err := s.storage.Acquire(resume.DocumentHandle); err != nil {
			log.Warn().Err(err).Uint64("resume_id", resume.ID).Msg("⚠️ Resume document missing")
			continue
		}
		restored++
	}

	log.Info().Int("resumes", len(resumes)).Int("documents", restored).Msg("✅ Resume store restored")
	return nil
}

// ReleaseDocuments drops the store's references on every resume document.
// Used when the store itself does not outlive the process.
func (s *ResumeService) ReleaseDocuments(ctx context.Context) error {
	resumes, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, resume := range resumes {
		if resume.DocumentHandle == "" {
			continue
		}
		if err := s.storage.Release(resume.DocumentHandle); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
