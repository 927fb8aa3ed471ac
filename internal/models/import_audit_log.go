package models

import (
	"time"

	"github.com/google/uuid"
)

// ImportAuditLog keeps one entry per contract handled by an import batch.
type ImportAuditLog struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID       uuid.UUID  `gorm:"type:uuid;index" json:"batch_id"`
	DossierNumber string     `gorm:"index" json:"dossier_number"`
	SourceRow     int        `json:"row"`
	Action        string     `json:"action"`
	MatchType     string     `json:"match_type"`
	ClientID      *uuid.UUID `gorm:"type:uuid" json:"client_id,omitempty"`
	ContractID    *uuid.UUID `gorm:"type:uuid" json:"contract_id,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
