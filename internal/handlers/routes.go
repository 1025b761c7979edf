package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Documents   *DocumentHandler
	Extractions *ExtractionHandler
	Resumes     *ResumeHandler
	Credits     *CreditHandler
	Tailor      *TailorHandler
	Insights    *InsightHandler
}

func RegisterRoutes(api fiber.Router, h Handlers) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Get("/credits", h.Credits.HandleBalance)

	api.Post("/documents", h.Documents.HandleUpload)
	api.Get("/documents/current", h.Documents.HandleCurrent)
	api.Get("/documents/current/pages/:page/preview", h.Documents.HandlePreview)

	api.Post("/extractions", h.Extractions.HandleStart)
	api.Get("/extractions/current", h.Extractions.HandleSnapshot)
	api.Delete("/extractions/current", h.Extractions.HandleCancel)

	api.Get("/resumes", h.Resumes.HandleList)
	api.Post("/resumes/match", h.Resumes.HandleMatch)
	api.Get("/resumes/:id", h.Resumes.HandleGet)
	api.Get("/resumes/:id/document", h.Resumes.HandleDocument)
	api.Delete("/resumes/:id", h.Resumes.HandleDelete)

	api.Post("/tailor", h.Tailor.HandleTailor)
	api.Post("/tailor/pdf", h.Tailor.HandleExport)

	api.Post("/insights", h.Insights.HandleInsights)
	api.Post("/insights/ats", h.Insights.HandleATS)
	api.Post("/insights/report", h.Insights.HandleReport)
}

// Endpoints lists the routes for the index page.
func Endpoints() []string {
	return []string{
		"GET /api/v1/health",
		"GET /api/v1/credits",
		"POST /api/v1/documents",
		"GET /api/v1/documents/current",
		"GET /api/v1/documents/current/pages/:page/preview",
		"POST /api/v1/extractions",
		"GET /api/v1/extractions/current",
		"DELETE /api/v1/extractions/current",
		"GET /api/v1/resumes",
		"GET /api/v1/resumes/:id",
		"GET /api/v1/resumes/:id/document",
		"DELETE /api/v1/resumes/:id",
		"POST /api/v1/resumes/match",
		"POST /api/v1/tailor",
		"POST /api/v1/tailor/pdf",
		"POST /api/v1/insights",
		"POST /api/v1/insights/ats",
		"POST /api/v1/insights/report",
	}
}
