package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"alfredoptarigan/resume-optimizer/cmd/resumectl/ui"
	"alfredoptarigan/resume-optimizer/internal/models"
	"alfredoptarigan/resume-optimizer/internal/services"
)

type extraction struct {
	resume  *models.Resume
	pages   int
	balance int
	skipped int
}

// extractFile runs one PDF through the extraction pipeline, drawing a
// progress bar until the run ends.
func extractFile(ctx context.Context, path string) (*extraction, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	name := filepath.Base(path)
	doc, err := svc.Loader.Load(ctx, name, http.DetectContentType(content), content)
	if err != nil {
		return nil, err
	}
	svc.Workspace.Open(doc)

	if err := doc.Wait(ctx); err != nil {
		return nil, err
	}

	events, err := svc.Orchestrator.Start(ctx, doc)
	if err != nil {
		return nil, err
	}

	bar := ui.NewProgressBar(name)
	result := &extraction{pages: doc.PageCount()}
	var runErr error

	for event := range events {
		switch event.Type {
		case models.EventProgress, models.EventPage:
			if label := pageLabel(name, event); label != "" {
				bar.Describe(label)
			}
			bar.Set(event.Percent)
		case models.EventPageSkipped:
			result.skipped++
			ui.Warning("page %d skipped: %s", event.Page, event.Error)
		case models.EventCompleted:
			bar.Set(event.Percent)
			bar.Finish()
			result.resume = event.Resume
			if event.Balance != nil {
				result.balance = *event.Balance
			}
		case models.EventFailed:
			bar.Abort()
			runErr = errors.New(event.Error)
		case models.EventCancelled:
			bar.Abort()
			runErr = models.ErrExtractionCancelled
		}
	}

	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

// pageLabel describes the page an event is about; the opening progress event
// has none yet.
func pageLabel(name string, event models.ExtractionEvent) string {
	if event.Page == 0 {
		return ""
	}
	return fmt.Sprintf("%s page %d/%d", name, event.Page, event.TotalPages)
}

// readResume returns resume text from a plain text file, or extracts it
// first when the file is a PDF.
func readResume(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !services.IsPDFContentType(http.DetectContentType(content)) {
		return string(content), nil
	}

	result, err := extractFile(ctx, path)
	if err != nil {
		return "", err
	}
	ui.Success("Extracted %s (%d pages, %d credits left)", filepath.Base(path), result.pages, result.balance)
	return result.resume.Text, nil
}

// readText reads path, or standard input when path is "-".
func readText(path string) (string, error) {
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(content), nil
}

// withSpinner runs fn while a spinner shows message.
func withSpinner(message string, fn func() error) error {
	s := ui.NewSpinner(message)
	s.Start()
	defer s.Stop()
	return fn()
}
