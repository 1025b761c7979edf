// Package app wires the services shared by the API server and resumectl.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"alfredoptarigan/resume-optimizer/internal/config"
	"alfredoptarigan/resume-optimizer/internal/repositories"
	"alfredoptarigan/resume-optimizer/internal/services"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

type App struct {
	Config *config.Config

	Storage      services.StorageService
	Resumes      *services.ResumeService
	Ledger       repositories.CreditLedger
	Loader       services.DocumentLoader
	Workspace    *services.Workspace
	Rasterizer   services.PageRasterizer
	Orchestrator *services.ExtractionOrchestrator
	Tailor       *services.TailorService
	Insights     *services.InsightService
	Exporter     *services.ResumeExporter
	Matcher      *services.MatchService

	db     *gorm.DB
	worker *services.IndexWorker
}

// New builds every service from cfg. The index worker is created but not
// started; call Start for that.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	a.Storage = services.NewStorageService(cfg.Storage.UploadPath)
	if err := a.Storage.EnsureUploadDir(); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	resumeRepo, err := a.initStores(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("✅ Repositories initialized successfully")

	a.Resumes = services.NewResumeService(resumeRepo, a.Storage)
	if a.db != nil {
		if err := a.Resumes.Restore(ctx); err != nil {
			return nil, fmt.Errorf("failed to restore resumes: %w", err)
		}
	}

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("✅ Gemini AI initialized successfully")

	prompts := services.NewPromptBuilder()

	var recognizer services.Recognizer
	switch cfg.OCR.Engine {
	case config.EngineGemini:
		recognizer = services.NewGeminiRecognizer(gemini, prompts, cfg.Gemini.VisionModel)
	default:
		recognizer = services.NewTesseractRecognizer()
	}
	log.Info().Str("engine", cfg.OCR.Engine).Str("language", cfg.OCR.Language).Msg("✅ Text recognition engine ready")

	a.Rasterizer = services.NewFitzRasterizer()
	a.Loader = services.NewDocumentLoader(a.Storage, services.NewPDFPageCounter())
	a.Workspace = services.NewWorkspace(a.Storage)
	a.Orchestrator = services.NewExtractionOrchestrator(
		a.Rasterizer,
		recognizer,
		a.Resumes,
		a.Ledger,
		services.OrchestratorOptionsFromConfig(cfg),
	)

	a.Tailor = services.NewTailorService(gemini, prompts, a.Resumes, cfg.Gemini.TailorModel, cfg.Gemini.MaxAttempts)
	a.Insights = services.NewInsightService(gemini, prompts, cfg.Gemini.InsightModel, cfg.Gemini.MaxAttempts)
	a.Exporter = services.NewResumeExporter()

	var index services.ResumeIndex
	if cfg.Qdrant.Enabled {
		index, err = services.NewQdrantIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			return nil, err
		}
		if err := index.InitCollection(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize qdrant collection: %w", err)
		}
		log.Info().Str("collection", cfg.Qdrant.Collection).Msg("✅ Qdrant initialized successfully")

		a.worker = services.NewIndexWorker(
			resumeRepo,
			index,
			gemini,
			services.NewTextChunker(chunkSize, chunkOverlap),
			cfg.Worker.Concurrency,
			cfg.Worker.PollInterval,
		)
		a.Resumes.SetIndexer(a.worker)
	} else {
		log.Info().Msg("ℹ️ Qdrant disabled, resume matching unavailable")
	}
	a.Matcher = services.NewMatchService(gemini, index, a.Resumes)

	log.Info().Msg("✅ Services initialized successfully")
	return a, nil
}

func (a *App) initStores(ctx context.Context) (repositories.ResumeRepository, error) {
	cfg := a.Config

	if cfg.Database.Driver != config.DriverPostgres {
		a.Ledger = repositories.NewMemoryCreditLedger(cfg.Credits.InitialBalance)
		return repositories.NewMemoryResumeRepository(), nil
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a.db = db

	a.Ledger, err = repositories.NewCreditLedger(ctx, db, cfg.Credits.InitialBalance)
	if err != nil {
		return nil, err
	}
	return repositories.NewResumeRepository(db), nil
}

// Start launches background indexing when the similarity index is enabled.
func (a *App) Start(ctx context.Context) {
	if a.worker != nil {
		a.worker.Start(ctx)
	}
}

// Close stops background work, releases the active document and closes the
// database. With the memory store it also deletes every resume document.
func (a *App) Close() error {
	if a.worker != nil {
		a.worker.Stop()
	}
	a.Workspace.Close()

	// memory resumes end with the process, so their files go too
	if a.db == nil {
		return a.Resumes.ReleaseDocuments(context.Background())
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// Indexer returns the index worker, or nil when Qdrant is disabled.
func (a *App) Indexer() *services.IndexWorker {
	return a.worker
}
