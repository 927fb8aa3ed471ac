package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/services/reconciliation"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create stores an invoice unless the company already used its number. A
// number held by the same contract returns the stored id with created =
// false; a number held by another contract is ErrInvoiceNumberTaken.
func (r *InvoiceRepository) Create(ctx context.Context, in reconciliation.InvoiceInput) (uuid.UUID, bool, error) {
	now := time.Now()
	inv := &models.Invoice{
		ID:              uuid.New(),
		CompanyID:       in.CompanyID,
		InvoiceNumber:   in.InvoiceNumber,
		ContractID:      in.ContractID,
		ClientID:        in.ClientID,
		BillingEntityID: in.BillingEntityID,
		Amount:          in.Amount,
		Status:          in.Status,
		InvoiceDate:     in.InvoiceDate,
		CreatedAt:       now,
	}
	if in.Status == models.InvoiceStatusPaid {
		paidAt := now
		if in.InvoiceDate != nil {
			paidAt = *in.InvoiceDate
		}
		inv.PaidAt = &paidAt
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(inv)
	if res.Error != nil {
		return uuid.Nil, false, fmt.Errorf("create invoice: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return inv.ID, true, nil
	}

	existing, err := r.GetByNumber(ctx, in.CompanyID, in.InvoiceNumber)
	if err != nil {
		return uuid.Nil, false, err
	}
	if existing.ContractID != in.ContractID {
		return uuid.Nil, false, fmt.Errorf("invoice %s: %w", in.InvoiceNumber, reconciliation.ErrInvoiceNumberTaken)
	}
	return existing.ID, false, nil
}

func (r *InvoiceRepository) GetByNumber(ctx context.Context, companyID uuid.UUID, number string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND invoice_number = ?", companyID, number).
		First(&invoice).Error
	if err != nil {
		return nil, fmt.Errorf("get invoice %s: %w", number, err)
	}
	return &invoice, nil
}
