package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-optimizer/internal/models"
	"alfredoptarigan/resume-optimizer/internal/repositories"
)

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type indexJob struct {
	resumeID uint64
	remove   bool
}

// IndexWorker keeps the similarity index in step with the resume store.
type IndexWorker struct {
	resumes      repositories.ResumeRepository
	index        ResumeIndex
	embedder     Embedder
	chunker      TextChunker
	jobQueue     chan indexJob
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once

	mu       sync.Mutex
	indexed  map[uint64]bool
	inflight map[uint64]bool
}

func NewIndexWorker(
	resumes repositories.ResumeRepository,
	index ResumeIndex,
	embedder Embedder,
	chunker TextChunker,
	concurrency int,
	pollInterval time.Duration,
) *IndexWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}

	return &IndexWorker{
		resumes:      resumes,
		index:        index,
		embedder:     embedder,
		chunker:      chunker,
		jobQueue:     make(chan indexJob, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		indexed:      make(map[uint64]bool),
		inflight:     make(map[uint64]bool),
	}
}

func (w *IndexWorker) Start(ctx context.Context) {
	log.Info().Int("workers", w.concurrency).Msg("🚀 Starting index worker")

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollUnindexed(ctx)

	log.Info().Msg("✅ Index worker started")
}

func (w *IndexWorker) Stop() {
	w.stopOnce.Do(func() {
		log.Info().Msg("🛑 Stopping index worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Info().Msg("✅ Index worker stopped")
	})
}

// EnqueueIndex implements ResumeIndexer. A full queue drops the job; the
// poller picks the resume up later.
func (w *IndexWorker) EnqueueIndex(resumeID uint64) {
	w.enqueue(indexJob{resumeID: resumeID})
}

// EnqueueRemoval implements ResumeIndexer.
func (w *IndexWorker) EnqueueRemoval(resumeID uint64) {
	w.enqueue(indexJob{resumeID: resumeID, remove: true})
}

func (w *IndexWorker) Indexed(resumeID uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexed[resumeID]
}

func (w *IndexWorker) enqueue(job indexJob) {
	select {
	case <-w.stopChan:
		log.Warn().Uint64("resume_id", job.resumeID).Msg("⚠️ Worker stopped, cannot enqueue job")
		return
	default:
	}

	select {
	case w.jobQueue <- job:
		log.Debug().Uint64("resume_id", job.resumeID).Bool("remove", job.remove).Msg("📥 Index job enqueued")
	default:
		log.Warn().Uint64("resume_id", job.resumeID).Msg("⚠️ Index queue full, job dropped")
	}
}

func (w *IndexWorker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Debug().Int("worker", workerID).Msg("👷 Index worker stopped")
			return
		case <-ctx.Done():
			return
		case job := <-w.jobQueue:
			if err := w.process(ctx, job); err != nil {
				log.Error().Err(err).Int("worker", workerID).Uint64("resume_id", job.resumeID).Msg("❌ Index job failed")
			}
		}
	}
}

func (w *IndexWorker) process(ctx context.Context, job indexJob) error {
	if job.remove {
		w.setIndexed(job.resumeID, false)
		return w.index.DeleteResume(ctx, job.resumeID)
	}
	return w.indexResume(ctx, job.resumeID)
}

func (w *IndexWorker) indexResume(ctx context.Context, resumeID uint64) error {
	if !w.claim(resumeID) {
		log.Debug().Uint64("resume_id", resumeID).Msg("⏭️ Resume already being indexed")
		return nil
	}
	defer w.unclaim(resumeID)

	resume, err := w.resumes.FindByID(ctx, resumeID)
	if errors.Is(err, models.ErrResumeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	chunks := w.chunker.ChunkResume(resume.Text)
	embeddings := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := w.embedder.GenerateEmbedding(ctx, chunk.Text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", chunk.Index, err)
		}
		embeddings = append(embeddings, embedding)
	}

	if err := w.index.DeleteResume(ctx, resumeID); err != nil {
		return err
	}
	if err := w.index.IndexChunks(ctx, resumeID, chunks, embeddings); err != nil {
		return err
	}

	// deleted while embedding
	if _, err := w.resumes.FindByID(ctx, resumeID); errors.Is(err, models.ErrResumeNotFound) {
		return w.index.DeleteResume(ctx, resumeID)
	}

	w.setIndexed(resumeID, true)
	log.Info().Uint64("resume_id", resumeID).Int("chunks", len(chunks)).Msg("✅ Resume indexed")
	return nil
}

// claim marks resumeID as being embedded; false means another worker has it.
func (w *IndexWorker) claim(resumeID uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inflight[resumeID] {
		return false
	}
	w.inflight[resumeID] = true
	return true
}

func (w *IndexWorker) unclaim(resumeID uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, resumeID)
}

func (w *IndexWorker) busy(resumeID uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexed[resumeID] || w.inflight[resumeID]
}

func (w *IndexWorker) setIndexed(resumeID uint64, indexed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if indexed {
		w.indexed[resumeID] = true
	} else {
		delete(w.indexed, resumeID)
	}
}

func (w *IndexWorker) pollUnindexed(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.enqueueUnindexed(ctx)
	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.enqueueUnindexed(ctx)
		}
	}
}

func (w *IndexWorker) enqueueUnindexed(ctx context.Context) {
	resumes, err := w.resumes.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to list resumes for indexing")
		return
	}

	pending := 0
	for _, resume := range resumes {
		if w.busy(resume.ID) {
			continue
		}
		w.EnqueueIndex(resume.ID)
		pending++
	}
	if pending > 0 {
		log.Info().Int("pending", pending).Msg("📋 Found unindexed resumes")
	}
}

// ReindexSummary reports the outcome of a Reindex pass.
type ReindexSummary struct {
	Total   int
	Indexed int
	Failed  int
}

// Reindex embeds every stored resume synchronously, calling onProgress after
// each one. A failed resume is logged and counted; the pass continues.
func (w *IndexWorker) Reindex(ctx context.Context, onProgress func(done, total int)) (ReindexSummary, error) {
	resumes, err := w.resumes.List(ctx)
	if err != nil {
		return ReindexSummary{}, fmt.Errorf("failed to list resumes: %w", err)
	}

	summary := ReindexSummary{Total: len(resumes)}
	for i, resume := range resumes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := w.indexResume(ctx, resume.ID); err != nil {
			log.Error().Err(err).Uint64("resume_id", resume.ID).Msg("❌ Failed to index resume")
			summary.Failed++
		} else {
			summary.Indexed++
		}

		if onProgress != nil {
			onProgress(i+1, len(resumes))
		}
	}

	log.Info().
		Int("indexed", summary.Indexed).
		Int("failed", summary.Failed).
		Msg("📊 Reindex finished")
	return summary, nil
}
