package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	BatchStatusProcessing          = "processing"
	BatchStatusCompleted           = "completed"
	BatchStatusCompletedWithErrors = "completed_with_errors"
	BatchStatusFailed              = "failed"
)

type ImportBatch struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID        uuid.UUID      `gorm:"type:uuid;index" json:"company_id"`
	Filename         string         `json:"filename"`
	Year             int            `json:"year"`
	UpdateMode       bool           `json:"update_mode"`
	TotalRows        int            `json:"total_rows"`
	ContractsCreated int            `json:"contracts_created"`
	ContractsUpdated int            `json:"contracts_updated"`
	ErrorCount       int            `json:"error_count"`
	Status           string         `gorm:"index" json:"status"`
	FailureReason    string         `json:"failure_reason,omitempty"`
	Report           datatypes.JSON `json:"report,omitempty"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}
