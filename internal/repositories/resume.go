package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/resume-optimizer/internal/models"
)

type ResumeRepository interface {
	// Create assigns a fresh ID and CreatedAt; any ID set by the caller is ignored.
	Create(ctx context.Context, resume *models.Resume) error
	FindByID(ctx context.Context, id uint64) (*models.Resume, error)
	// List returns resumes in insertion order.
	List(ctx context.Context) ([]models.Resume, error)
	// Delete removes a resume and returns it; an unknown ID returns (nil, nil).
	Delete(ctx context.Context, id uint64) (*models.Resume, error)
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

// Create implements ResumeRepository.
func (r *resumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	resume.ID = 0
	if resume.CreatedAt.IsZero() {
		resume.CreatedAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(resume).Error; err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}

	return nil
}

// FindByID implements ResumeRepository.
func (r *resumeRepository) FindByID(ctx context.Context, id uint64) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrResumeNotFound
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}

	return &resume, nil
}

// List implements ResumeRepository.
func (r *resumeRepository) List(ctx context.Context) ([]models.Resume, error) {
	var resumes []models.Resume
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}

	return resumes, nil
}

// Delete implements ResumeRepository.
func (r *resumeRepository) Delete(ctx context.Context, id uint64) (*models.Resume, error) {
	var deleted *models.Resume

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resume models.Resume
		if err := tx.Where("id = ?", id).First(&resume).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Delete(&models.Resume{}, id).Error; err != nil {
			return err
		}

		deleted = &resume
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete resume: %w", err)
	}

	return deleted, nil
}
