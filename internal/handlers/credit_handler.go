package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-optimizer/internal/models"
	"alfredoptarigan/resume-optimizer/internal/repositories"
)

type CreditHandler struct {
	ledger         repositories.CreditLedger
	extractionCost int
}

func NewCreditHandler(ledger repositories.CreditLedger, extractionCost int) *CreditHandler {
	return &CreditHandler{
		ledger:         ledger,
		extractionCost: extractionCost,
	}
}

func (h *CreditHandler) HandleBalance(c *fiber.Ctx) error {
	balance, err := h.ledger.Balance(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(models.CreditResponse{
		Balance:        balance,
		ExtractionCost: h.extractionCost,
	})
}
