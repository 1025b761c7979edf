package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-optimizer/internal/models"
)

var errorStatus = []struct {
	err  error
	code int
}{
	{models.ErrInvalidFormat, fiber.StatusUnsupportedMediaType},
	{models.ErrInsufficientCredits, fiber.StatusPaymentRequired},
	{models.ErrNoResumeSelected, fiber.StatusBadRequest},
	{models.ErrNoJobDescription, fiber.StatusBadRequest},
	{models.ErrPageOutOfRange, fiber.StatusBadRequest},
	{models.ErrDocumentNotReady, fiber.StatusConflict},
	{models.ErrExtractionInProgress, fiber.StatusConflict},
	{models.ErrNoDocument, fiber.StatusNotFound},
	{models.ErrResumeNotFound, fiber.StatusNotFound},
	{models.ErrGenerationFailed, fiber.StatusBadGateway},
	{models.ErrMalformedInsights, fiber.StatusBadGateway},
	{models.ErrRender, fiber.StatusUnprocessableEntity},
	{models.ErrIndexDisabled, fiber.StatusServiceUnavailable},
}

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	for _, entry := range errorStatus {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error as {"error", "code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Int("status", code).Msg("❌ Request failed")
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
