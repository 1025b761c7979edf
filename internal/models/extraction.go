package models

type ExtractionState string

const (
	StateIdle       ExtractionState = "idle"
	StateLoading    ExtractionState = "loading"
	StateReady      ExtractionState = "ready"
	StateExtracting ExtractionState = "extracting"
	StateCompleted  ExtractionState = "completed"
	StateFailed     ExtractionState = "failed"
	StateCancelled  ExtractionState = "cancelled"
)

type EventType string

const (
	EventProgress    EventType = "progress"
	EventPage        EventType = "page"
	EventPageSkipped EventType = "page_skipped"
	EventCompleted   EventType = "completed"
	EventFailed      EventType = "failed"
	EventCancelled   EventType = "cancelled"
)

// ExtractionEvent is one element of the stream published by an extraction run.
// Which fields are set depends on Type.
type ExtractionEvent struct {
	Type        EventType `json:"type"`
	Page        int       `json:"page,omitempty"`
	TotalPages  int       `json:"total_pages,omitempty"`
	Percent     int       `json:"percent"`
	Text        string    `json:"text,omitempty"`
	PartialText string    `json:"partial_text,omitempty"`
	Resume      *Resume   `json:"resume,omitempty"`
	Balance     *int      `json:"balance,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Terminal reports whether no further events follow this one.
func (e ExtractionEvent) Terminal() bool {
	switch e.Type {
	case EventCompleted, EventFailed, EventCancelled:
		return true
	}
	return false
}

type ExtractionSnapshot struct {
	State       ExtractionState `json:"state"`
	DocumentID  string          `json:"document_id,omitempty"`
	FileName    string          `json:"file_name,omitempty"`
	Page        int             `json:"page"`
	TotalPages  int             `json:"total_pages"`
	Percent     int             `json:"percent"`
	PartialText string          `json:"partial_text,omitempty"`
	ResumeID    uint64          `json:"resume_id,omitempty"`
	Error       string          `json:"error,omitempty"`
}
