package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/services/reconciliation"
)

type ImportBatchRepository struct {
	db *gorm.DB
}

func NewImportBatchRepository(db *gorm.DB) *ImportBatchRepository {
	return &ImportBatchRepository{db: db}
}

func (r *ImportBatchRepository) Create(ctx context.Context, batch *models.ImportBatch) error {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return fmt.Errorf("create import batch: %w", err)
	}
	return nil
}

func (r *ImportBatchRepository) Save(ctx context.Context, batch *models.ImportBatch) error {
	if err := r.db.WithContext(ctx).Save(batch).Error; err != nil {
		return fmt.Errorf("save import batch: %w", err)
	}
	return nil
}

func (r *ImportBatchRepository) Get(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reconciliation.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import batch: %w", err)
	}
	return &batch, nil
}
