package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"digitalcook/cv-matcher/internal/classifier"
	"digitalcook/cv-matcher/internal/repositories"
	"digitalcook/cv-matcher/internal/services"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, services.ErrUnsupportedFormat):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrExtraction):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, classifier.ErrArtifactMissing):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, repositories.ErrAnalysisNotFound), errors.Is(err, repositories.ErrOfferNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a handler as {"error", "code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
