package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-optimizer/internal/config"
	"alfredoptarigan/resume-optimizer/internal/models"
	"alfredoptarigan/resume-optimizer/internal/repositories"
)

type OrchestratorOptions struct {
	Scale      float64
	Language   string
	Cost       int
	PagePolicy string
}

func OrchestratorOptionsFromConfig(cfg *config.Config) OrchestratorOptions {
	return OrchestratorOptions{
		Scale:      cfg.OCR.Scale,
		Language:   cfg.OCR.Language,
		Cost:       cfg.Credits.ExtractionCost,
		PagePolicy: cfg.Extraction.PagePolicy,
	}
}

// ExtractionOrchestrator turns a loaded document into a stored resume, one
// page at a time, and charges the ledger when the resume is stored.
type ExtractionOrchestrator struct {
	rasterizer PageRasterizer
	recognizer Recognizer
	resumes    *ResumeService
	ledger     repositories.CreditLedger
	opts       OrchestratorOptions

	running atomic.Bool

	mu       sync.RWMutex
	snapshot models.ExtractionSnapshot
	cancel   context.CancelFunc
}

func NewExtractionOrchestrator(
	rasterizer PageRasterizer,
	recognizer Recognizer,
	resumes *ResumeService,
	ledger repositories.CreditLedger,
	opts OrchestratorOptions,
) *ExtractionOrchestrator {
	if opts.Scale <= 0 {
		opts.Scale = 2.0
	}
	if opts.Language == "" {
		opts.Language = "eng"
	}
	if opts.PagePolicy == "" {
		opts.PagePolicy = config.PolicyAbort
	}

	return &ExtractionOrchestrator{
		rasterizer: rasterizer,
		recognizer: recognizer,
		resumes:    resumes,
		ledger:     ledger,
		opts:       opts,
		snapshot:   models.ExtractionSnapshot{State: models.StateIdle},
	}
}

// Start begins extracting doc. Refusals are returned synchronously and leave
// both the state and the ledger untouched. On success the returned channel
// yields events until exactly one terminal event, then closes; the caller
// must drain it.
func (o *ExtractionOrchestrator) Start(ctx context.Context, doc *Document) (<-chan models.ExtractionEvent, error) {
	if doc == nil {
		return nil, models.ErrNoDocument
	}
	if err := doc.Err(); err != nil {
		return nil, err
	}
	if !doc.Ready() {
		return nil, models.ErrDocumentNotReady
	}

	if !o.running.CompareAndSwap(false, true) {
		return nil, models.ErrExtractionInProgress
	}

	balance, err := o.ledger.Balance(ctx)
	if err != nil {
		o.running.Store(false)
		return nil, fmt.Errorf("failed to read credit balance: %w", err)
	}
	if balance < o.opts.Cost {
		o.running.Store(false)
		return nil, fmt.Errorf("%w: balance %d, extraction costs %d", models.ErrInsufficientCredits, balance, o.opts.Cost)
	}

	// the run keeps its document on disk until it ends, even if the
	// workspace moves on to another one
	if doc.Handle != "" {
		if err := o.resumes.storage.Acquire(doc.Handle); err != nil {
			o.running.Store(false)
			return nil, fmt.Errorf("failed to retain document: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	o.cancel = cancel
	o.snapshot = models.ExtractionSnapshot{
		State:      models.StateExtracting,
		DocumentID: doc.ID.String(),
		FileName:   doc.FileName,
		TotalPages: doc.PageCount(),
	}
	o.mu.Unlock()

	events := make(chan models.ExtractionEvent, 16)
	go o.run(runCtx, cancel, doc, events)

	return events, nil
}

// Cancel stops the running extraction, if any.
func (o *ExtractionOrchestrator) Cancel() bool {
	o.mu.RLock()
	cancel := o.cancel
	o.mu.RUnlock()

	if cancel == nil || !o.running.Load() {
		return false
	}
	cancel()
	return true
}

func (o *ExtractionOrchestrator) Running() bool {
	return o.running.Load()
}

func (o *ExtractionOrchestrator) Snapshot() models.ExtractionSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snapshot
}

func (o *ExtractionOrchestrator) run(ctx context.Context, cancel context.CancelFunc, doc *Document, events chan<- models.ExtractionEvent) {
	defer close(events)
	defer cancel()
	defer o.releaseDocument(doc)

	total := doc.PageCount()
	logger := log.With().Str("document_id", doc.ID.String()).Int("pages", total).Logger()
	logger.Info().Msg("🔄 Starting extraction")

	var (
		text    strings.Builder
		tracker progressTracker
	)

	publish := func(page int) {
		o.mu.Lock()
		o.snapshot.Page = page
		o.snapshot.Percent = tracker.current()
		o.snapshot.PartialText = text.String()
		o.mu.Unlock()
	}

	events <- models.ExtractionEvent{Type: models.EventProgress, TotalPages: total, Percent: 0}

	for page := 1; page <= total; page++ {
		if ctx.Err() != nil {
			o.finish(events, o.cancelled(text.String(), tracker.current()))
			logger.Warn().Int("page", page).Msg("🛑 Extraction cancelled")
			return
		}

		pageText, err := o.extractPage(ctx, doc, page, total, &tracker, events)
		if err != nil {
			if ctx.Err() != nil {
				o.finish(events, o.cancelled(text.String(), tracker.current()))
				logger.Warn().Int("page", page).Msg("🛑 Extraction cancelled")
				return
			}

			if o.opts.PagePolicy == config.PolicySkip {
				logger.Warn().Err(err).Int("page", page).Msg("⚠️ Page skipped")
				text.WriteString(FormatPage(page, ""))
				tracker.advance(OverallPercent(page, total, 1))
				publish(page)
				events <- models.ExtractionEvent{
					Type:       models.EventPageSkipped,
					Page:       page,
					TotalPages: total,
					Percent:    tracker.current(),
					Error:      err.Error(),
				}
				continue
			}

			logger.Error().Err(err).Int("page", page).Msg("❌ Extraction failed")
			o.finish(events, o.failed(err, page, text.String(), tracker.current()))
			return
		}

		text.WriteString(FormatPage(page, pageText))
		tracker.advance(OverallPercent(page, total, 1))
		publish(page)
		events <- models.ExtractionEvent{
			Type:       models.EventPage,
			Page:       page,
			TotalPages: total,
			Percent:    tracker.current(),
			Text:       pageText,
		}
	}

	if ctx.Err() != nil {
		o.finish(events, o.cancelled(text.String(), tracker.current()))
		return
	}

	// storing and charging must not be split by a late cancel
	resume, balance, err := o.commit(context.WithoutCancel(ctx), doc, text.String())
	if err != nil {
		logger.Error().Err(err).Msg("❌ Failed to store resume")
		o.finish(events, o.failed(err, total, text.String(), tracker.current()))
		return
	}

	logger.Info().Uint64("resume_id", resume.ID).Int("balance", balance).Msg("✅ Extraction completed")
	o.finish(events, o.completed(resume, balance, total))
}

func (o *ExtractionOrchestrator) extractPage(
	ctx context.Context,
	doc *Document,
	page, total int,
	tracker *progressTracker,
	events chan<- models.ExtractionEvent,
) (string, error) {
	buf, err := o.rasterizer.Render(ctx, doc, page, o.opts.Scale)
	if err != nil {
		return "", err
	}

	return o.recognizer.Recognize(ctx, buf, o.opts.Language, func(fraction float64) {
		percent, moved := tracker.advance(OverallPercent(page, total, fraction))
		if !moved {
			return
		}

		o.mu.Lock()
		o.snapshot.Page = page
		o.snapshot.Percent = percent
		o.mu.Unlock()

		events <- models.ExtractionEvent{
			Type:       models.EventProgress,
			Page:       page,
			TotalPages: total,
			Percent:    percent,
		}
	})
}

func (o *ExtractionOrchestrator) releaseDocument(doc *Document) {
	if doc.Handle == "" {
		return
	}
	if err := o.resumes.storage.Release(doc.Handle); err != nil {
		log.Warn().Err(err).Str("handle", doc.Handle).Msg("⚠️ Failed to release document")
	}
}

// commit stores the resume and then debits the ledger, removing the resume
// again if the debit is refused.
func (o *ExtractionOrchestrator) commit(ctx context.Context, doc *Document, text string) (*models.Resume, int, error) {
	resume := &models.Resume{
		FileName:       doc.FileName,
		Text:           text,
		DocumentHandle: doc.Handle,
	}
	if err := o.resumes.Add(ctx, resume); err != nil {
		return nil, 0, err
	}

	balance, err := o.ledger.Debit(ctx, o.opts.Cost)
	if err != nil {
		if _, rollbackErr := o.resumes.Delete(ctx, resume.ID); rollbackErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to roll back resume %d: %w", resume.ID, rollbackErr))
		}
		return nil, 0, err
	}

	return resume, balance, nil
}

type outcome struct {
	state models.ExtractionState
	event models.ExtractionEvent
}

func (o *ExtractionOrchestrator) completed(resume *models.Resume, balance, total int) outcome {
	return outcome{
		state: models.StateCompleted,
		event: models.ExtractionEvent{
			Type:        models.EventCompleted,
			Page:        total,
			TotalPages:  total,
			Percent:     completePercent,
			PartialText: resume.Text,
			Resume:      resume,
			Balance:     &balance,
		},
	}
}

func (o *ExtractionOrchestrator) failed(err error, page int, partial string, percent int) outcome {
	return outcome{
		state: models.StateFailed,
		event: models.ExtractionEvent{
			Type:        models.EventFailed,
			Page:        page,
			Percent:     percent,
			PartialText: partial,
			Error:       err.Error(),
		},
	}
}

func (o *ExtractionOrchestrator) cancelled(partial string, percent int) outcome {
	return outcome{
		state: models.StateCancelled,
		event: models.ExtractionEvent{
			Type:        models.EventCancelled,
			Percent:     percent,
			PartialText: partial,
			Error:       models.ErrExtractionCancelled.Error(),
		},
	}
}

// finish records the final state and releases the run lock before the
// terminal event is delivered.
func (o *ExtractionOrchestrator) finish(events chan<- models.ExtractionEvent, out outcome) {
	o.mu.Lock()
	o.snapshot.State = out.state
	o.snapshot.Percent = out.event.Percent
	o.snapshot.PartialText = out.event.PartialText
	o.snapshot.Error = out.event.Error
	if out.event.Resume != nil {
		o.snapshot.ResumeID = out.event.Resume.ID
	}
	if out.event.Page > 0 {
		o.snapshot.Page = out.event.Page
	}
	o.cancel = nil
	o.mu.Unlock()

	o.running.Store(false)
	events <- out.event
}
