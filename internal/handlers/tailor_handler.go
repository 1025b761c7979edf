package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-optimizer/internal/models"
	"alfredoptarigan/resume-optimizer/internal/services"
)

type TailorHandler struct {
	tailor   *services.TailorService
	exporter *services.ResumeExporter
}

func NewTailorHandler(tailor *services.TailorService, exporter *services.ResumeExporter) *TailorHandler {
	return &TailorHandler{
		tailor:   tailor,
		exporter: exporter,
	}
}

func (h *TailorHandler) HandleTailor(c *fiber.Ctx) error {
	var req models.TailorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	content, err := h.tailor.TailorResume(c.UserContext(), req.ResumeID, req.JobDescription)
	if err != nil {
		return err
	}

	return c.JSON(models.TailorResponse{
		ResumeID: req.ResumeID,
		Content:  content,
	})
}

// HandleExport renders tailored content as a downloadable PDF.
func (h *TailorHandler) HandleExport(c *fiber.Ctx) error {
	var req models.ExportRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.exporter.Export(&buf, req.Content); err != nil {
		return err
	}

	c.Type("pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", services.ExportFileName(time.Now())))
	return c.Send(buf.Bytes())
}
