package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-optimizer/internal/config"
	"alfredoptarigan/resume-optimizer/internal/models"
	"alfredoptarigan/resume-optimizer/internal/repositories"
)

type orchestratorFixture struct {
	orchestrator *ExtractionOrchestrator
	resumes      *ResumeService
	ledger       repositories.CreditLedger
	storage      StorageService
	doc          *Document
}

func newOrchestratorFixture(t *testing.T, pages, balance int, rasterizer PageRasterizer, recognizer Recognizer, policy string) *orchestratorFixture {
	t.Helper()

	storage := NewStorageService(t.TempDir())
	require.NoError(t, storage.EnsureUploadDir())

	content := []byte("%PDF-1.4 fake")
	handle, err := storage.SaveDocument("resume.pdf", content)
	require.NoError(t, err)

	ledger := repositories.NewMemoryCreditLedger(balance)
	resumes := NewResumeService(repositories.NewMemoryResumeRepository(), storage)

	return &orchestratorFixture{
		orchestrator: NewExtractionOrchestrator(rasterizer, recognizer, resumes, ledger, OrchestratorOptions{
			Scale:      2.0,
			Language:   "eng",
			Cost:       10,
			PagePolicy: policy,
		}),
		resumes: resumes,
		ledger:  ledger,
		storage: storage,
		doc:     NewLoadedDocument("resume.pdf", content, handle, pages),
	}
}

func collectEvents(t *testing.T, events <-chan models.ExtractionEvent) []models.ExtractionEvent {
	t.Helper()

	var collected []models.ExtractionEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, ev)
		case <-timeout:
			t.Fatal("timed out waiting for extraction events")
			return nil
		}
	}
}

func balanceOf(t *testing.T, ledger repositories.CreditLedger) int {
	t.Helper()
	balance, err := ledger.Balance(context.Background())
	require.NoError(t, err)
	return balance
}

func TestExtraction_ThreePagesStoresResumeAndDebits(t *testing.T) {
	f := newOrchestratorFixture(t, 3, 100, &fakeRasterizer{}, &fakeRecognizer{fractions: []float64{0, 0.5, 1}}, config.PolicyAbort)

	events, err := f.orchestrator.Start(context.Background(), f.doc)
	require.NoError(t, err)
	collected := collectEvents(t, events)
	require.NotEmpty(t, collected)

	last := collected[len(collected)-1]
	require.Equal(t, models.EventCompleted, last.Type)
	assert.Equal(t, 100, last.Percent)
	require.NotNil(t, last.Resume)
	require.NotNil(t, last.Balance)
	assert.Equal(t, 90, *last.Balance)

	want := "---- Page 1 ----\n\ntext 1\n\n---- Page 2 ----\n\ntext 2\n\n---- Page 3 ----\n\ntext 3\n\n"
	assert.Equal(t, want, last.Resume.Text)
	assert.Equal(t, "resume.pdf", last.Resume.FileName)

	stored, err := f.resumes.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, want, stored[0].Text)
	assert.Equal(t, 90, balanceOf(t, f.ledger))

	// the workspace copy and the resume both hold the document
	assert.Equal(t, 2, f.storage.RefCount(f.doc.Handle))

	snapshot := f.orchestrator.Snapshot()
	assert.Equal(t, models.StateCompleted, snapshot.State)
	assert.Equal(t, last.Resume.ID, snapshot.ResumeID)
	assert.Equal(t, 100, snapshot.Percent)
}

func TestExtraction_ProgressIsMonotonicAndOnlyCompletionReaches100(t *testing.T) {
	f := newOrchestratorFixture(t, 3, 100, &fakeRasterizer{}, &fakeRecognizer{fractions: []float64{0, 0.25, 0.5, 0.75, 1}}, config.PolicyAbort)

	events, err := f.orchestrator.Start(context.Background(), f.doc)
	require.NoError(t, err)
	collected := collectEvents(t, events)

	previous := -1
	pages := []int{}
	for _, ev := range collected {
		assert.GreaterOrEqual(t, ev.Percent, previous, "progress went backwards at %+v", ev)
		previous = ev.Percent
		if !ev.Terminal() {
			assert.LessOrEqual(t, ev.Percent, 99)
		}
		if ev.Type == models.EventPage {
			pages = append(pages, ev.Page)
		}
	}
	assert.Equal(t, []int{1, 2, 3}, pages)
	assert.Equal(t, 100, collected[len(collected)-1].Percent)
}

func TestExtraction_RefusedWithoutEnoughCredits(t *testing.T) {
	for balance := 0; balance < 10; balance++ {
		t.Run(fmt.Sprintf("balance %d", balance), func(t *testing.T) {
			rasterizer := &fakeRasterizer{}
			f := newOrchestratorFixture(t, 3, balance, rasterizer, &fakeRecognizer{}, config.PolicyAbort)

			events, err := f.orchestrator.Start(context.Background(), f.doc)
			assert.ErrorIs(t, err, models.ErrInsufficientCredits)
			assert.Nil(t, events)

			assert.Equal(t, balance, balanceOf(t, f.ledger))
			assert.Equal(t, models.StateIdle, f.orchestrator.Snapshot().State)
			assert.False(t, f.orchestrator.Running())
			assert.Empty(t, rasterizer.rendered)

			stored, err := f.resumes.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestExtraction_AbortKeepsPartialTextAndDoesNotDebit(t *testing.T) {
	f := newOrchestratorFixture(t, 3, 100, &fakeRasterizer{}, &fakeRecognizer{failPage: 2}, config.PolicyAbort)

	events, err := f.orchestrator.Start(context.Background(), f.doc)
	require.NoError(t, err)
	collected := collectEvents(t, events)

	last := collected[len(collected)-1]
	require.Equal(t, models.EventFailed, last.Type)
	assert.Equal(t, "---- Page 1 ----\n\ntext 1\n\n", last.PartialText)
	assert.Contains(t, last.Error, "unreadable")
	assert.Equal(t, 2, last.Page)

	assert.Equal(t, 100, balanceOf(t, f.ledger))
	stored, err := f.resumes.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)

	snapshot := f.orchestrator.Snapshot()
	assert.Equal(t, models.StateFailed, snapshot.State)
	assert.Equal(t, "---- Page 1 ----\n\ntext 1\n\n", snapshot.PartialText)

	// the lock is released after a failure
	events, err = f.orchestrator.Start(context.Background(), f.doc)
	require.NoError(t, err)
	collectEvents(t, events)
}

func TestExtraction_SkipPolicyContinuesPastBrokenPage(t *testing.T) {
	f := newOrchestratorFixture(t, 3, 100, &fakeRasterizer{failPage: 2}, &fakeRecognizer{}, config.PolicySkip)

	events, err := f.orchestrator.Start(context.Background(), f.doc)
	require.NoError(t, err)
	collected := collectEvents(t, events)

	var skipped []int
	for _, ev := range collected {
		if ev.Type == models.EventPageSkipped {
			skipped = append(skipped, ev.Page)
			assert.Contains(t, ev.Error, "corrupt")
		}
	}
	assert.Equal(t, []int{2}, skipped)

	last := collected[len(collected)-1]
	require.Equal(t, models.EventCompleted, last.Type)
	assert.Equal(t, "---- Page 1 ----\n\ntext 1\n\n---- Page 2 ----\n\n\n\n---- Page 3 ----\n\ntext 3\n\n", last.Resume.Text)
	assert.Equal(t, 90, balanceOf(t, f.ledger))
}

func TestExtraction_SecondStartIsRefusedWhileRunning(t *testing.T) {
	recognizer := &fakeRecognizer{blockPage: 1, block: make(chan struct{}), entered: make(chan struct{})}
	f := newOrchestratorFixture(t, 2, 100, &fakeRasterizer{}, recognizer, config.PolicyAbort)

	events, err := f.orchestrator.Start(context.Background(), f.doc)
	require.NoError(t, err)
	<-recognizer.entered

	assert.True(t, f.orchestrator.Running())
	_, err = f.orchestrator.Start(context.Background(), f.doc)
	assert.ErrorIs(t, err, models.ErrExtractionInProgress)
	assert.Equal(t, models.StateExtracting, f.orchestrator.Snapshot().State)

	close(recognizer.block)
	collected := collectEvents(t, events)
	assert.Equal(t, models.EventCompleted, collected[len(collected)-1].Type)

	// a single debit for the single run
	assert.Equal(t, 90, balanceOf(t, f.ledger))
	assert.False(t, f.orchestrator.Running())
}

func TestExtraction_CancelStopsWithoutDebit(t *testing.T) {
	recognizer := &fakeRecognizer{blockPage: 2, block: make(chan struct{}), entered: make(chan struct{})}
	f := newOrchestratorFixture(t, 3, 100, &fakeRasterizer{}, recognizer, config.PolicyAbort)

	events, err := f.orchestrator.Start(context.Background(), f.doc)
	require.NoError(t, err)
	<-recognizer.entered

	assert.True(t, f.orchestrator.Cancel())
	collected := collectEvents(t, events)

	last := collected[len(collected)-1]
	require.Equal(t, models.EventCancelled, last.Type)
	assert.Equal(t, "---- Page 1 ----\n\ntext 1\n\n", last.PartialText)

	assert.Equal(t, 100, balanceOf(t, f.ledger))
	assert.Equal(t, models.StateCancelled, f.orchestrator.Snapshot().State)
	assert.False(t, f.orchestrator.Cancel())
}

func TestExtraction_SurvivesWorkspaceReplacingDocument(t *testing.T) {
	recognizer := &fakeRecognizer{blockPage: 2, block: make(chan struct{}), entered: make(chan struct{})}
	f := newOrchestratorFixture(t, 3, 100, &fakeRasterizer{}, recognizer, config.PolicyAbort)

	workspace := NewWorkspace(f.storage)
	workspace.Open(f.doc)

	events, err := f.orchestrator.Start(context.Background(), f.doc)
	require.NoError(t, err)
	<-recognizer.entered
	assert.Equal(t, 2, f.storage.RefCount(f.doc.Handle))

	nextHandle, err := f.storage.SaveDocument("next.pdf", []byte("%PDF-next"))
	require.NoError(t, err)
	workspace.Open(NewLoadedDocument("next.pdf", []byte("%PDF-next"), nextHandle, 1))
	assert.FileExists(t, f.storage.GetFilePath(f.doc.Handle))

	close(recognizer.block)
	collected := collectEvents(t, events)

	last := collected[len(collected)-1]
	require.Equal(t, models.EventCompleted, last.Type, last.Error)
	require.NotNil(t, last.Resume)
	assert.Equal(t, 90, balanceOf(t, f.ledger))

	// only the stored resume still owns the file
	assert.Equal(t, 1, f.storage.RefCount(f.doc.Handle))
	_, content, err := f.resumes.Document(context.Background(), last.Resume.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), content)
}

func TestExtraction_FailedRunReleasesDocument(t *testing.T) {
	f := newOrchestratorFixture(t, 2, 100, &fakeRasterizer{failPage: 1}, &fakeRecognizer{}, config.PolicyAbort)

	events, err := f.orchestrator.Start(context.Background(), f.doc)
	require.NoError(t, err)
	collected := collectEvents(t, events)
	require.Equal(t, models.EventFailed, collected[len(collected)-1].Type)

	// the fixture's own reference is the only one left
	assert.Equal(t, 1, f.storage.RefCount(f.doc.Handle))
}

func TestExtraction_RefusesDocumentStillLoading(t *testing.T) {
	f := newOrchestratorFixture(t, 1, 100, &fakeRasterizer{}, &fakeRecognizer{}, config.PolicyAbort)
	loading := newDocument("late.pdf", "application/pdf", []byte("%PDF"), f.doc.Handle)

	_, err := f.orchestrator.Start(context.Background(), loading)
	assert.ErrorIs(t, err, models.ErrDocumentNotReady)

	_, err = f.orchestrator.Start(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrNoDocument)

	assert.Equal(t, 100, balanceOf(t, f.ledger))
	assert.False(t, f.orchestrator.Running())
}

type refusingLedger struct {
	repositories.CreditLedger
}

func (r refusingLedger) Debit(ctx context.Context, amount int) (int, error) {
	return 0, models.ErrInsufficientCredits
}

func TestExtraction_FailedDebitRollsBackResume(t *testing.T) {
	f := newOrchestratorFixture(t, 2, 100, &fakeRasterizer{}, &fakeRecognizer{}, config.PolicyAbort)
	orchestrator := NewExtractionOrchestrator(&fakeRasterizer{}, &fakeRecognizer{}, f.resumes,
		refusingLedger{CreditLedger: f.ledger}, OrchestratorOptions{Cost: 10})

	events, err := orchestrator.Start(context.Background(), f.doc)
	require.NoError(t, err)
	collected := collectEvents(t, events)

	last := collected[len(collected)-1]
	require.Equal(t, models.EventFailed, last.Type)
	assert.Contains(t, last.Error, models.ErrInsufficientCredits.Error())

	stored, err := f.resumes.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Equal(t, 1, f.storage.RefCount(f.doc.Handle))
}
