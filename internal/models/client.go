package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer of a company. MatchKey holds the identity key an
// import uses to find the client again.
type Client struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;index"`
	Name       string
	Company    string `gorm:"index"`
	Email      string
	Phone      string
	VATNumber  string `gorm:"column:vat_number;index"`
	Address    string
	City       string
	PostalCode string
	Country    string
	MatchKey   string `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
