package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/services/matching"
	"leasing-import-backend/internal/services/reconciliation"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// ListClients returns the client directory of a company in a stable order.
func (r *ClientRepository) ListClients(ctx context.Context, companyID uuid.UUID) ([]matching.ClientRecord, error) {
	var clients []models.Client
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC, id ASC").
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	out := make([]matching.ClientRecord, 0, len(clients))
	for _, c := range clients {
		out = append(out, matching.ClientRecord{
			ID:        c.ID,
			Name:      c.Name,
			Company:   c.Company,
			VATNumber: c.VATNumber,
		})
	}
	return out, nil
}

// Upsert finds a client of the company by identity key or creates it.
func (r *ClientRepository) Upsert(ctx context.Context, in reconciliation.ClientInput) (uuid.UUID, bool, error) {
	key := matching.IdentityKey(in.ClientIdentity)

	var existing models.Client
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND match_key = ?", in.CompanyID, key).
		First(&existing).Error
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, fmt.Errorf("find client: %w", err)
	}

	now := time.Now()
	client := &models.Client{
		ID:         uuid.New(),
		CompanyID:  in.CompanyID,
		Name:       in.Name,
		Company:    in.Company,
		Email:      in.Email,
		Phone:      in.Phone,
		VATNumber:  in.VATNumber,
		Address:    in.Address,
		City:       in.City,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		MatchKey:   key,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return uuid.Nil, false, fmt.Errorf("create client: %w", err)
	}
	return client.ID, true, nil
}
