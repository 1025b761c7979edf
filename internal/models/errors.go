package models

import "errors"

var (
	// ErrInvalidFormat is returned when an uploaded payload is not a PDF.
	ErrInvalidFormat = errors.New("invalid document format: only application/pdf is accepted")
	// ErrInsufficientCredits is returned when the ledger cannot cover an extraction.
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrRender              = errors.New("page render failed")
	ErrRecognition         = errors.New("text recognition failed")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrMalformedInsights   = errors.New("malformed insights")
	ErrNoResumeSelected    = errors.New("please select a resume first")
	ErrNoJobDescription    = errors.New("please enter a job description")

	ErrNoDocument           = errors.New("no document loaded")
	ErrDocumentNotReady     = errors.New("document is still loading")
	ErrPageOutOfRange       = errors.New("page number out of range")
	ErrExtractionInProgress = errors.New("an extraction is already running")
	ErrExtractionCancelled  = errors.New("extraction cancelled")
	ErrResumeNotFound       = errors.New("resume not found")
	ErrIndexDisabled        = errors.New("resume index is disabled")
)
