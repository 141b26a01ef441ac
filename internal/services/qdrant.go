package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"digitalcook/cv-matcher/internal/models"
)

const scrollPageSize = 256

// QdrantService indexes offers with their embeddings. The full offer travels in the
// payload so the collection can also serve as an offer source.
type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertOffer(ctx context.Context, offer models.Offer, embedding []float32) error
	DeleteOffer(ctx context.Context, offerID string) error
	ListActive(ctx context.Context) ([]models.Offer, error)
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewQdrantService(urlStr, apiKey, collectionName string, logger *zap.Logger) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
		logger:         logger,
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.logger.Info("✅ Collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("✅ Qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// UpsertOffer implements QdrantService.
func (q *qdrantService) UpsertOffer(ctx context.Context, offer models.Offer, embedding []float32) error {
	raw, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("failed to encode offer: %w", err)
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(offer.ID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"offer_id":   offer.ID.String(),
			"status":     string(offer.Status),
			"is_deleted": offer.IsDeleted,
			"title":      offer.Title,
			"offer":      string(raw),
		}),
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// DeleteOffer implements QdrantService.
func (q *qdrantService) DeleteOffer(ctx context.Context, offerID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("offer_id", offerID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}

	return nil
}

// ListActive implements QdrantService.
func (q *qdrantService) ListActive(ctx context.Context) ([]models.Offer, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("status", string(models.OfferActive)),
			qdrant.NewMatchBool("is_deleted", false),
		},
	}

	offers := []models.Offer{}
	var offset *qdrant.PointId
	for {
		// the offset point is returned again, so each page asks for one extra
		points, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: q.collectionName,
			Filter:         filter,
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(scrollPageSize + 1)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll offers: %w", err)
		}

		page := points
		if len(points) > scrollPageSize {
			page = points[:scrollPageSize]
		}
		for _, point := range page {
			offer, err := decodeOfferPayload(point.Payload)
			if err != nil {
				q.logger.Warn("⚠️ Skipping unreadable offer point", zap.Error(err))
				continue
			}
			offers = append(offers, offer)
		}

		if len(points) <= scrollPageSize {
			return offers, nil
		}
		offset = points[scrollPageSize].Id
	}
}

func decodeOfferPayload(payload map[string]*qdrant.Value) (models.Offer, error) {
	var offer models.Offer
	value, ok := payload["offer"]
	if !ok {
		return offer, fmt.Errorf("payload has no offer")
	}
	raw, ok := value.GetKind().(*qdrant.Value_StringValue)
	if !ok {
		return offer, fmt.Errorf("offer payload is not a string")
	}
	if err := json.Unmarshal([]byte(raw.StringValue), &offer); err != nil {
		return offer, fmt.Errorf("failed to decode offer payload: %w", err)
	}
	return offer, nil
}
