package services

import (
	"sync"

	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-optimizer/internal/models"
)

// Workspace holds the single active document. Replacing it drops the
// workspace's reference to the previous document's stored file.
type Workspace struct {
	storage StorageService

	mu      sync.RWMutex
	current *Document
}

func NewWorkspace(storage StorageService) *Workspace {
	return &Workspace{storage: storage}
}

// Open makes doc the active document, taking over the loader's reference.
func (w *Workspace) Open(doc *Document) {
	w.mu.Lock()
	previous := w.current
	w.current = doc
	w.mu.Unlock()

	if previous != nil && previous.Handle != doc.Handle {
		if err := w.storage.Release(previous.Handle); err != nil {
			log.Warn().Err(err).Str("handle", previous.Handle).Msg("⚠️ Failed to release previous document")
		}
	}
}

func (w *Workspace) Current() (*Document, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.current == nil {
		return nil, models.ErrNoDocument
	}
	return w.current, nil
}

// Close releases the active document.
func (w *Workspace) Close() {
	w.mu.Lock()
	current := w.current
	w.current = nil
	w.mu.Unlock()

	if current != nil {
		_ = w.storage.Release(current.Handle)
	}
}
