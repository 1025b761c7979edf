package repositories

import (
	"context"
	"sync"
	"time"

	"alfredoptarigan/resume-optimizer/internal/models"
)

type memoryResumeRepository struct {
	mu      sync.RWMutex
	nextID  uint64
	order   []uint64
	resumes map[uint64]models.Resume
}

// NewMemoryResumeRepository returns a store that lives as long as the process.
func NewMemoryResumeRepository() ResumeRepository {
	return &memoryResumeRepository{
		resumes: make(map[uint64]models.Resume),
	}
}

func (m *memoryResumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	resume.ID = m.nextID
	if resume.CreatedAt.IsZero() {
		resume.CreatedAt = time.Now().UTC()
	}

	m.resumes[resume.ID] = *resume
	m.order = append(m.order, resume.ID)
	return nil
}

func (m *memoryResumeRepository) FindByID(ctx context.Context, id uint64) (*models.Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	resume, ok := m.resumes[id]
	if !ok {
		return nil, models.ErrResumeNotFound
	}
	return &resume, nil
}

func (m *memoryResumeRepository) List(ctx context.Context) ([]models.Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	resumes := make([]models.Resume, 0, len(m.order))
	for _, id := range m.order {
		resumes = append(resumes, m.resumes[id])
	}
	return resumes, nil
}

func (m *memoryResumeRepository) Delete(ctx context.Context, id uint64) (*models.Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	resume, ok := m.resumes[id]
	if !ok {
		return nil, nil
	}

	delete(m.resumes, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return &resume, nil
}
