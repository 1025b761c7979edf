package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StorageService keeps uploaded PDF bytes on disk behind opaque handles. A
// handle stays on disk while at least one owner holds a reference to it.
type StorageService interface {
	EnsureUploadDir() error
	SaveDocument(fileName string, content []byte) (string, error)
	Acquire(handle string) error
	Release(handle string) error
	ReadDocument(handle string) ([]byte, error)
	GetFilePath(handle string) string
	RefCount(handle string) int
}

type storageService struct {
	uploadPath string

	mu   sync.Mutex
	refs map[string]int
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
		refs:       make(map[string]int),
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveDocument writes content under a fresh handle owned once by the caller.
func (s *storageService) SaveDocument(fileName string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".pdf"
	}

	handle := fmt.Sprintf("document_%s%s", uuid.New().String(), ext)
	if err := os.WriteFile(s.GetFilePath(handle), content, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.mu.Lock()
	s.refs[handle] = 1
	s.mu.Unlock()

	return handle, nil
}

// Acquire adds an owner to handle. Handles left on disk by a previous run are
// adopted on first acquire.
func (s *storageService) Acquire(handle string) error {
	if err := validateHandle(handle); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs[handle] == 0 {
		if _, err := os.Stat(s.GetFilePath(handle)); err != nil {
			return fmt.Errorf("document %s is not stored: %w", handle, err)
		}
	}
	s.refs[handle]++
	return nil
}

// Release drops one owner from handle and deletes the file once none remain.
func (s *storageService) Release(handle string) error {
	if err := validateHandle(handle); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count, ok := s.refs[handle]
	if !ok {
		return nil
	}
	if count > 1 {
		s.refs[handle] = count - 1
		return nil
	}

	delete(s.refs, handle)
	if err := os.Remove(s.GetFilePath(handle)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	log.Debug().Str("handle", handle).Msg("🗑️ Document released")
	return nil
}

func (s *storageService) ReadDocument(handle string) ([]byte, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(s.GetFilePath(handle))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

func (s *storageService) GetFilePath(handle string) string {
	return filepath.Join(s.uploadPath, handle)
}

func (s *storageService) RefCount(handle string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs[handle]
}

func validateHandle(handle string) error {
	if handle == "" || handle != filepath.Base(handle) {
		return fmt.Errorf("invalid document handle: %q", handle)
	}
	return nil
}
