package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"digitalcook/cv-matcher/internal/models"
)

const offersSchema = `
CREATE TABLE IF NOT EXISTS offers (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	subtitle TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	responsibilities TEXT NOT NULL DEFAULT '',
	required_skills TEXT NOT NULL DEFAULT '',
	required_qualifications TEXT NOT NULL DEFAULT '',
	languages TEXT NOT NULL DEFAULT '[]',
	tags TEXT NOT NULL DEFAULT '[]',
	status TEXT NOT NULL DEFAULT 'active',
	company TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	company_location TEXT NOT NULL DEFAULT '',
	min_salary REAL,
	max_salary REAL,
	salary_currency TEXT NOT NULL DEFAULT '',
	salary_period TEXT NOT NULL DEFAULT '',
	contract_type TEXT NOT NULL DEFAULT '',
	working_time TEXT NOT NULL DEFAULT '',
	work_mode TEXT NOT NULL DEFAULT '',
	is_deleted INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_offers_status ON offers(status, is_deleted);
`

const offerColumns = `id, title, subtitle, description, responsibilities, required_skills,
	required_qualifications, languages, tags, status, company, city, country, company_location,
	min_salary, max_salary, salary_currency, salary_period, contract_type, working_time,
	work_mode, is_deleted, created_at, updated_at`

// SQLiteOfferStore keeps offers in a local sqlite file, for running without Postgres.
type SQLiteOfferStore struct {
	db *sql.DB
}

func NewSQLiteOfferStore(db *sql.DB) *SQLiteOfferStore {
	return &SQLiteOfferStore{db: db}
}

func (s *SQLiteOfferStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, offersSchema); err != nil {
		return fmt.Errorf("failed to create offers table: %w", err)
	}
	return nil
}

// Create implements OfferWriter.
func (s *SQLiteOfferStore) Create(ctx context.Context, offer *models.Offer) error {
	if offer.ID == uuid.Nil {
		offer.ID = uuid.New()
	}
	if offer.Status == "" {
		offer.Status = models.OfferActive
	}
	now := time.Now().UTC()
	if offer.CreatedAt.IsZero() {
		offer.CreatedAt = now
	}
	offer.UpdatedAt = now

	languages, err := json.Marshal(nonNil(offer.Languages))
	if err != nil {
		return fmt.Errorf("failed to encode languages: %w", err)
	}
	tags, err := json.Marshal(nonNil(offer.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO offers (`+offerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		offer.ID.String(), offer.Title, offer.Subtitle, offer.Description, offer.Responsibilities,
		offer.RequiredSkills, offer.RequiredQualifications, string(languages), string(tags),
		string(offer.Status), offer.Company, offer.City, offer.Country, offer.CompanyLocation,
		offer.MinSalary, offer.MaxSalary, offer.SalaryCurrency, offer.SalaryPeriod,
		offer.ContractType, offer.WorkingTime, offer.WorkMode, offer.IsDeleted,
		offer.CreatedAt, offer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert offer: %w", err)
	}
	return nil
}

// ListActive implements OfferSource.
func (s *SQLiteOfferStore) ListActive(ctx context.Context) ([]models.Offer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+offerColumns+`
		FROM offers
		WHERE status = ? AND is_deleted = 0
		ORDER BY created_at ASC, rowid ASC`, string(models.OfferActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list active offers: %w", err)
	}
	defer rows.Close()

	offers := []models.Offer{}
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list active offers: %w", err)
	}
	return offers, nil
}

func scanOffer(rows *sql.Rows) (models.Offer, error) {
	var (
		offer                models.Offer
		id, status           string
		languages, tags      string
		minSalary, maxSalary sql.NullFloat64
	)
	err := rows.Scan(
		&id, &offer.Title, &offer.Subtitle, &offer.Description, &offer.Responsibilities,
		&offer.RequiredSkills, &offer.RequiredQualifications, &languages, &tags, &status,
		&offer.Company, &offer.City, &offer.Country, &offer.CompanyLocation,
		&minSalary, &maxSalary, &offer.SalaryCurrency, &offer.SalaryPeriod,
		&offer.ContractType, &offer.WorkingTime, &offer.WorkMode, &offer.IsDeleted,
		&offer.CreatedAt, &offer.UpdatedAt,
	)
	if err != nil {
		return offer, fmt.Errorf("failed to scan offer: %w", err)
	}

	if offer.ID, err = uuid.Parse(id); err != nil {
		return offer, fmt.Errorf("failed to parse offer id %q: %w", id, err)
	}
	offer.Status = models.OfferStatus(status)
	if err := json.Unmarshal([]byte(languages), &offer.Languages); err != nil {
		return offer, fmt.Errorf("failed to decode languages of offer %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(tags), &offer.Tags); err != nil {
		return offer, fmt.Errorf("failed to decode tags of offer %s: %w", id, err)
	}
	if minSalary.Valid {
		offer.MinSalary = &minSalary.Float64
	}
	if maxSalary.Valid {
		offer.MaxSalary = &maxSalary.Float64
	}
	return offer, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
