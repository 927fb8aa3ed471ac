package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const InvoiceStatusPaid = "paid"

type Invoice struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_invoice_company_number"`
	InvoiceNumber   string          `gorm:"uniqueIndex:idx_invoice_company_number"`
	ContractID      uuid.UUID       `gorm:"type:uuid;index"`
	ClientID        uuid.UUID       `gorm:"type:uuid;index"`
	BillingEntityID uuid.UUID       `gorm:"type:uuid"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2)"`
	Status          string          `gorm:"index"`
	InvoiceDate     *time.Time
	PaidAt          *time.Time
	CreatedAt       time.Time
}
