package models

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	StatusQueued     AnalysisStatus = "queued"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

// Analysis is an uploaded résumé waiting for, or done with, asynchronous analysis.
type Analysis struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Filename         string          `gorm:"type:text" json:"filename"`
	OriginalFileName string          `gorm:"type:text" json:"original_filename"`
	FilePath         string          `gorm:"type:text" json:"file_path"`
	Languages        []string        `gorm:"serializer:json;type:jsonb" json:"languages"`
	Status           AnalysisStatus  `gorm:"not null;default:'queued';index" json:"status"`
	Result           *AnalysisResult `gorm:"serializer:json;type:jsonb" json:"result,omitempty"`
	ErrorMessage     *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// ModelArtifact is one persisted classifier blob.
type ModelArtifact struct {
	Name      string    `gorm:"type:text;primary_key" json:"name"`
	Data      []byte    `gorm:"type:bytea;not null" json:"-"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ModelArtifact) TableName() string {
	return "model_artifacts"
}
