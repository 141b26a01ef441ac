package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/models"
	"digitalcook/cv-matcher/internal/services"
)

type FileAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string, req models.AnalyseRequest) (*models.AnalysisResult, error)
}

// AnalyseHandler analyzes an uploaded résumé within the request.
type AnalyseHandler struct {
	analyzer       FileAnalyzer
	storageService services.StorageService
	logger         *zap.Logger
}

func NewAnalyseHandler(analyzer FileAnalyzer, storageService services.StorageService, logger *zap.Logger) *AnalyseHandler {
	return &AnalyseHandler{
		analyzer:       analyzer,
		storageService: storageService,
		logger:         logger,
	}
}

func (h *AnalyseHandler) HandleAnalyse(c *fiber.Ctx) error {
	files, err := formFiles(c, "file", "cv")
	if err != nil {
		return err
	}
	file := files[0]

	filename, filePath, err := h.storageService.SaveFile(file, "analyse")
	if err != nil {
		return err
	}
	defer func() {
		if err := h.storageService.DeleteFile(filename); err != nil {
			h.logger.Warn("⚠️ Failed to remove uploaded file", zap.String("file", filename), zap.Error(err))
		}
	}()

	result, err := h.analyzer.AnalyzeFile(c.UserContext(), filePath, models.AnalyseRequest{Languages: formLanguages(c)})
	if err != nil {
		h.logger.Warn("❌ Analysis failed", zap.String("file", file.Filename), zap.Error(err))
		return err
	}

	return c.JSON(result)
}
