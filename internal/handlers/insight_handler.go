package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-optimizer/internal/models"
	"alfredoptarigan/resume-optimizer/internal/services"
)

type InsightHandler struct {
	insights *services.InsightService
	resumes  *services.ResumeService
}

func NewInsightHandler(insights *services.InsightService, resumes *services.ResumeService) *InsightHandler {
	return &InsightHandler{
		insights: insights,
		resumes:  resumes,
	}
}

func (h *InsightHandler) HandleInsights(c *fiber.Ctx) error {
	text, err := h.resumeText(c)
	if err != nil {
		return err
	}

	insights, err := h.insights.Insights(c.UserContext(), text)
	if err != nil {
		return err
	}
	return c.JSON(insights)
}

func (h *InsightHandler) HandleATS(c *fiber.Ctx) error {
	text, err := h.resumeText(c)
	if err != nil {
		return err
	}

	ats, err := h.insights.ATSInsights(c.UserContext(), text)
	if err != nil {
		return err
	}
	return c.JSON(ats)
}

func (h *InsightHandler) HandleReport(c *fiber.Ctx) error {
	text, err := h.resumeText(c)
	if err != nil {
		return err
	}

	report, err := h.insights.Report(c.UserContext(), text)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// resumeText prefers inline text and falls back to a stored resume.
func (h *InsightHandler) resumeText(c *fiber.Ctx) (string, error) {
	var req models.InsightRequest
	if err := parseBody(c, &req); err != nil {
		return "", err
	}
	if err := validate.Struct(&req); err != nil {
		return "", models.ErrNoResumeSelected
	}

	if strings.TrimSpace(req.Text) != "" {
		return req.Text, nil
	}

	resume, err := h.resumes.Get(c.UserContext(), req.ResumeID)
	if err != nil {
		if errors.Is(err, models.ErrResumeNotFound) {
			return "", models.ErrNoResumeSelected
		}
		return "", err
	}
	return resume.Text, nil
}
