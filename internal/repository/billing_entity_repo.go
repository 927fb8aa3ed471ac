package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/services/billing"
)

type BillingEntityRepository struct {
	db *gorm.DB
}

func NewBillingEntityRepository(db *gorm.DB) *BillingEntityRepository {
	return &BillingEntityRepository{db: db}
}

func (r *BillingEntityRepository) ListBillingEntities(ctx context.Context, companyID uuid.UUID) ([]billing.BillingEntity, error) {
	var rows []models.BillingEntity
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list billing entities: %w", err)
	}

	out := make([]billing.BillingEntity, 0, len(rows))
	for _, e := range rows {
		out = append(out, billing.BillingEntity{ID: e.ID, Name: e.Name, IsDefault: e.IsDefault})
	}
	return out, nil
}
