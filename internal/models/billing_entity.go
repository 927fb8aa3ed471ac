package models

import (
	"time"

	"github.com/google/uuid"
)

type BillingEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;index"`
	Name      string
	IsDefault bool
	CreatedAt time.Time
}
