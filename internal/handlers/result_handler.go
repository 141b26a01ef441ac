package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"digitalcook/cv-matcher/internal/models"
	"digitalcook/cv-matcher/internal/repositories"
)

type ResultHandler struct {
	analysisRepo repositories.AnalysisRepository
}

func NewResultHandler(analysisRepo repositories.AnalysisRepository) *ResultHandler {
	return &ResultHandler{
		analysisRepo: analysisRepo,
	}
}

func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid analysis ID format")
	}

	analysis, err := h.analysisRepo.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	response := models.ResultResponse{
		ID:     analysis.ID.String(),
		Status: string(analysis.Status),
	}

	switch analysis.Status {
	case models.StatusCompleted:
		response.Result = analysis.Result
	case models.StatusFailed:
		response.ErrorMessage = analysis.ErrorMessage
	}

	return c.JSON(response)
}
