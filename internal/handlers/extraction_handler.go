package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"alfredoptarigan/resume-optimizer/internal/models"
	"alfredoptarigan/resume-optimizer/internal/services"
)

type ExtractionHandler struct {
	orchestrator *services.ExtractionOrchestrator
	workspace    *services.Workspace
}

func NewExtractionHandler(orchestrator *services.ExtractionOrchestrator, workspace *services.Workspace) *ExtractionHandler {
	return &ExtractionHandler{
		orchestrator: orchestrator,
		workspace:    workspace,
	}
}

// HandleStart starts extracting the active document and streams the run as
// server-sent events. Refusals are plain JSON errors.
func (h *ExtractionHandler) HandleStart(c *fiber.Ctx) error {
	doc, err := h.workspace.Current()
	if err != nil {
		return err
	}

	// the run outlives the request if the client goes away
	events, err := h.orchestrator.Start(context.Background(), doc)
	if err != nil {
		return err
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		disconnected := false
		for ev := range events {
			if disconnected {
				continue
			}
			if err := writeEvent(w, ev); err != nil {
				log.Warn().Err(err).Msg("⚠️ Extraction stream client disconnected")
				disconnected = true
			}
		}
	}))

	return nil
}

func (h *ExtractionHandler) HandleSnapshot(c *fiber.Ctx) error {
	return c.JSON(h.orchestrator.Snapshot())
}

func (h *ExtractionHandler) HandleCancel(c *fiber.Ctx) error {
	if !h.orchestrator.Cancel() {
		return fiber.NewError(fiber.StatusConflict, "no extraction is running")
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"cancelled": true})
}

func writeEvent(w *bufio.Writer, ev models.ExtractionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return err
	}
	return w.Flush()
}
