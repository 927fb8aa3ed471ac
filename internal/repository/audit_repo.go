package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/services/reconciliation"
)

// AuditRepository writes ImportAuditLog rows. A failed write is logged and
// never fails the import.
type AuditRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewAuditRepository(db *gorm.DB, log *logrus.Logger) *AuditRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuditRepository{db: db, log: log}
}

func (r *AuditRepository) Record(ctx context.Context, batchID uuid.UUID, o reconciliation.Outcome) {
	entry := &models.ImportAuditLog{
		ID:            uuid.New(),
		BatchID:       batchID,
		DossierNumber: o.DossierNumber,
		SourceRow:     o.Row,
		Action:        string(o.Action),
		MatchType:     string(o.MatchType),
		ClientID:      o.ClientID,
		ContractID:    o.ContractID,
		Reason:        o.Reason,
		CreatedAt:     time.Now(),
	}
	if err := r.db.WithContext(context.WithoutCancel(ctx)).Create(entry).Error; err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"batch_id":       batchID,
			"dossier_number": o.DossierNumber,
		}).Warn("writing import audit log failed")
	}
}

func (r *AuditRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.ImportAuditLog, error) {
	var logs []models.ImportAuditLog
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("source_row ASC").
		Find(&logs).Error
	return logs, err
}
