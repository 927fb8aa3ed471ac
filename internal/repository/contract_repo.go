package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/services/reconciliation"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) CreateOffer(ctx context.Context, in reconciliation.OfferInput) (uuid.UUID, error) {
	equipment, err := json.Marshal(in.Equipment)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode offer equipment: %w", err)
	}

	offer := &models.Offer{
		ID:              uuid.New(),
		CompanyID:       in.CompanyID,
		ClientID:        in.ClientID,
		BillingEntityID: in.BillingEntityID,
		DossierNumber:   in.DossierNumber,
		ClientName:      in.ClientName,
		LeaserName:      in.LeaserName,
		MonthlyPayment:  in.MonthlyPayment,
		FinancedAmount:  in.FinancedAmount,
		DurationMonths:  in.DurationMonths,
		Year:            in.Year,
		Status:          models.OfferStatusAccepted,
		Equipment:       equipment,
		CreatedAt:       time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create offer: %w", err)
	}
	return offer.ID, nil
}

func (r *ContractRepository) FindByDossier(ctx context.Context, companyID uuid.UUID, dossierNumber string) (uuid.UUID, bool, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Select("id").
		Where("company_id = ? AND dossier_number = ?", companyID, dossierNumber).
		First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("find contract: %w", err)
	}
	return contract.ID, true, nil
}

// Save inserts a contract, or overwrites the imported fields of the contract
// named by in.ID. The offer of an existing contract is kept.
func (r *ContractRepository) Save(ctx context.Context, in reconciliation.ContractInput) (uuid.UUID, error) {
	now := time.Now()

	if in.ID != nil {
		res := r.db.WithContext(ctx).
			Model(&models.Contract{}).
			Where("id = ?", *in.ID).
			Updates(map[string]any{
				"client_id":         in.ClientID,
				"billing_entity_id": in.BillingEntityID,
				"contract_number":   in.ContractNumber,
				"client_name":       in.ClientName,
				"leaser_name":       in.LeaserName,
				"status":            in.Status,
				"monthly_payment":   in.MonthlyPayment,
				"financed_amount":   in.FinancedAmount,
				"duration_months":   in.DurationMonths,
				"start_date":        in.StartDate,
				"end_date":          in.EndDate,
				"year":              in.Year,
				"updated_at":        now,
			})
		if res.Error != nil {
			return uuid.Nil, fmt.Errorf("update contract: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return uuid.Nil, fmt.Errorf("update contract %s: %w", *in.ID, gorm.ErrRecordNotFound)
		}
		return *in.ID, nil
	}

	contract := &models.Contract{
		ID:              uuid.New(),
		CompanyID:       in.CompanyID,
		DossierNumber:   in.DossierNumber,
		ClientID:        in.ClientID,
		OfferID:         in.OfferID,
		BillingEntityID: in.BillingEntityID,
		ContractNumber:  in.ContractNumber,
		ClientName:      in.ClientName,
		LeaserName:      in.LeaserName,
		Status:          in.Status,
		MonthlyPayment:  in.MonthlyPayment,
		FinancedAmount:  in.FinancedAmount,
		DurationMonths:  in.DurationMonths,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Year:            in.Year,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := r.db.WithContext(ctx).Create(contract).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create contract: %w", err)
	}
	return contract.ID, nil
}

func (r *ContractRepository) AddEquipment(ctx context.Context, in reconciliation.EquipmentInput) (uuid.UUID, error) {
	line := &models.ContractEquipment{
		ID:            uuid.New(),
		ContractID:    in.ContractID,
		Title:         in.Title,
		Quantity:      in.Quantity,
		PurchasePrice: in.PurchasePrice,
		SellingPrice:  in.SellingPrice,
		CreatedAt:     time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create equipment: %w", err)
	}
	return line.ID, nil
}

func (r *ContractRepository) CountEquipment(ctx context.Context, contractID uuid.UUID) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.ContractEquipment{}).
		Where("contract_id = ?", contractID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count equipment: %w", err)
	}
	return int(n), nil
}
