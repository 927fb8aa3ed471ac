package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const OfferStatusAccepted = "accepted"

type Offer struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index"`
	ClientID        uuid.UUID `gorm:"type:uuid;index"`
	BillingEntityID uuid.UUID `gorm:"type:uuid"`
	DossierNumber   string    `gorm:"index"`
	ClientName      string
	LeaserName      string
	MonthlyPayment  decimal.Decimal `gorm:"type:numeric(14,2)"`
	FinancedAmount  decimal.Decimal `gorm:"type:numeric(14,2)"`
	DurationMonths  int
	Year            int
	Status          string
	Equipment       datatypes.JSON
	CreatedAt       time.Time
}

// Contract is unique per company and dossier number.
type Contract struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_contract_company_dossier"`
	DossierNumber   string     `gorm:"uniqueIndex:idx_contract_company_dossier"`
	ClientID        uuid.UUID  `gorm:"type:uuid;index"`
	OfferID         *uuid.UUID `gorm:"type:uuid"`
	BillingEntityID uuid.UUID  `gorm:"type:uuid"`
	ContractNumber  string
	ClientName      string
	LeaserName      string
	Status          string          `gorm:"index"`
	MonthlyPayment  decimal.Decimal `gorm:"type:numeric(14,2)"`
	FinancedAmount  decimal.Decimal `gorm:"type:numeric(14,2)"`
	DurationMonths  int
	StartDate       *time.Time
	EndDate         *time.Time
	Year            int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ContractEquipment struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractID    uuid.UUID `gorm:"type:uuid;index"`
	Title         string
	Quantity      int
	PurchasePrice decimal.Decimal `gorm:"type:numeric(14,2)"`
	SellingPrice  decimal.Decimal `gorm:"type:numeric(14,2)"`
	CreatedAt     time.Time
}

// All lists every model the server migrates.
func All() []any {
	return []any{
		&Client{},
		&BillingEntity{},
		&Offer{},
		&Contract{},
		&ContractEquipment{},
		&Invoice{},
		&ImportBatch{},
		&ImportAuditLog{},
	}
}
