package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/matching"
	"digitalcook/cv-matcher/internal/models"
	"digitalcook/cv-matcher/internal/repositories"
	"digitalcook/cv-matcher/internal/services"
)

type OfferHandler struct {
	offers         repositories.OfferSource
	storageService services.StorageService
	pdfParser      services.PDFParserService
	shortlist      int
	logger         *zap.Logger
}

func NewOfferHandler(
	offers repositories.OfferSource,
	storageService services.StorageService,
	pdfParser services.PDFParserService,
	shortlist int,
	logger *zap.Logger,
) *OfferHandler {
	return &OfferHandler{
		offers:         offers,
		storageService: storageService,
		pdfParser:      pdfParser,
		shortlist:      shortlist,
		logger:         logger,
	}
}

// HandleList returns the active offers.
func (h *OfferHandler) HandleList(c *fiber.Ctx) error {
	offers, err := h.offers.ListActive(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"offers": offers,
		"count":  len(offers),
	})
}

// HandleMatchOffers finds, for every active offer, the uploaded résumé whose text best
// covers the offer's skills, tags and languages.
func (h *OfferHandler) HandleMatchOffers(c *fiber.Ctx) error {
	files, err := formFiles(c, "files", "cvs", "file")
	if err != nil {
		return err
	}

	cvs := make([]matching.CVText, 0, len(files))
	for _, file := range files {
		text, err := h.readCV(file)
		if err != nil {
			return err
		}
		cvs = append(cvs, matching.CVText{Name: file.Filename, Text: text})
	}

	offers, err := h.offers.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	snapshots := make([]models.OfferSnapshot, 0, len(offers))
	for _, o := range offers {
		snapshots = append(snapshots, o.Snapshot())
	}

	matches := matching.MatchCVs(snapshots, cvs, h.shortlist)
	h.logger.Info("📋 Résumés matched against offers",
		zap.Int("cvs", len(cvs)),
		zap.Int("offers", len(snapshots)),
		zap.Int("matches", len(matches)))

	return c.JSON(models.MatchOffersResponse{Matches: matches})
}

func (h *OfferHandler) readCV(file *multipart.FileHeader) (string, error) {
	filename, filePath, err := h.storageService.SaveFile(file, "match")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := h.storageService.DeleteFile(filename); err != nil {
			h.logger.Warn("⚠️ Failed to remove uploaded file", zap.String("file", filename), zap.Error(err))
		}
	}()

	if err := services.CheckPDF(filePath); err != nil {
		return "", err
	}
	text, err := h.pdfParser.ExtractText(filePath)
	if err != nil {
		h.logger.Warn("❌ Failed to read résumé", zap.String("file", file.Filename), zap.Error(err))
		return "", err
	}
	return text, nil
}
