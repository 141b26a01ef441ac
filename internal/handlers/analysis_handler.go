package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/models"
	"digitalcook/cv-matcher/internal/repositories"
	"digitalcook/cv-matcher/internal/services"
)

type JobQueue interface {
	EnqueueJob(analysisID uuid.UUID)
}

// AnalysisHandler queues résumés for the background worker.
type AnalysisHandler struct {
	analysisRepo   repositories.AnalysisRepository
	storageService services.StorageService
	queue          JobQueue
	logger         *zap.Logger
}

func NewAnalysisHandler(
	analysisRepo repositories.AnalysisRepository,
	storageService services.StorageService,
	queue JobQueue,
	logger *zap.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysisRepo:   analysisRepo,
		storageService: storageService,
		queue:          queue,
		logger:         logger,
	}
}

func (h *AnalysisHandler) HandleCreate(c *fiber.Ctx) error {
	files, err := formFiles(c, "file", "cv")
	if err != nil {
		return err
	}
	file := files[0]

	filename, filePath, err := h.storageService.SaveFile(file, "cv")
	if err != nil {
		return err
	}

	now := time.Now()
	analysis := models.Analysis{
		ID:               uuid.New(),
		Filename:         filename,
		OriginalFileName: file.Filename,
		FilePath:         filePath,
		Languages:        formLanguages(c),
		Status:           models.StatusQueued,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.analysisRepo.Create(c.UserContext(), &analysis); err != nil {
		if derr := h.storageService.DeleteFile(filename); derr != nil {
			h.logger.Warn("⚠️ Failed to remove uploaded file", zap.String("file", filename), zap.Error(derr))
		}
		return err
	}

	h.queue.EnqueueJob(analysis.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.AnalysisResponse{
		ID:     analysis.ID.String(),
		Status: string(analysis.Status),
	})
}
