package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-optimizer/internal/models"
	"alfredoptarigan/resume-optimizer/internal/services"
)

type ResumeHandler struct {
	resumes *services.ResumeService
	matcher *services.MatchService
}

func NewResumeHandler(resumes *services.ResumeService, matcher *services.MatchService) *ResumeHandler {
	return &ResumeHandler{
		resumes: resumes,
		matcher: matcher,
	}
}

func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	resumes, err := h.resumes.List(c.UserContext())
	if err != nil {
		return err
	}

	summaries := make([]models.ResumeSummary, 0, len(resumes))
	for _, r := range resumes {
		summaries = append(summaries, models.ResumeSummary{
			ID:        r.ID,
			FileName:  r.FileName,
			CreatedAt: r.CreatedAt,
			Length:    len(r.Text),
		})
	}

	return c.JSON(fiber.Map{"resumes": summaries})
}

func (h *ResumeHandler) HandleGet(c *fiber.Ctx) error {
	id, err := resumeID(c)
	if err != nil {
		return err
	}

	resume, err := h.resumes.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(resume)
}

// HandleDocument serves the PDF a resume was extracted from.
func (h *ResumeHandler) HandleDocument(c *fiber.Ctx) error {
	id, err := resumeID(c)
	if err != nil {
		return err
	}

	resume, content, err := h.resumes.Document(c.UserContext(), id)
	if err != nil {
		return err
	}

	c.Type("pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", resume.FileName))
	return c.Send(content)
}

// HandleDelete is idempotent.
func (h *ResumeHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := resumeID(c)
	if err != nil {
		return err
	}

	if _, err := h.resumes.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ResumeHandler) HandleMatch(c *fiber.Ctx) error {
	var req models.MatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validate.Struct(&req); err != nil {
		if req.JobDescription == "" {
			return models.ErrNoJobDescription
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	matches, err := h.matcher.Match(c.UserContext(), req.JobDescription, req.Limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"matches": matches})
}

func resumeID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid resume ID format")
	}
	return id, nil
}
