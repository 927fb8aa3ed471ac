package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leasing-import-backend/internal/config"
	"leasing-import-backend/internal/services/reconciliation"
)

// NewImportService wires the gorm repositories into an import service.
func NewImportService(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *reconciliation.ImportService {
	return reconciliation.NewImportService(
		NewImportGateway(db),
		NewClientRepository(db),
		NewBillingEntityRepository(db),
		NewImportBatchRepository(db),
		NewAuditRepository(db, log),
		reconciliation.ServiceConfig{
			Workers:               cfg.Import.Workers,
			DefaultCountry:        cfg.Import.DefaultCountry,
			DefaultDurationMonths: cfg.Import.DefaultDurationMonths,
		},
		log,
	)
}

// ImportGateway is the gorm backed reconciliation.Gateway.
type ImportGateway struct {
	clients   *ClientRepository
	contracts *ContractRepository
	invoices  *InvoiceRepository
}

var _ reconciliation.Gateway = (*ImportGateway)(nil)

func NewImportGateway(db *gorm.DB) *ImportGateway {
	return &ImportGateway{
		clients:   NewClientRepository(db),
		contracts: NewContractRepository(db),
		invoices:  NewInvoiceRepository(db),
	}
}

func (g *ImportGateway) UpsertClient(ctx context.Context, in reconciliation.ClientInput) (uuid.UUID, bool, error) {
	return g.clients.Upsert(ctx, in)
}

func (g *ImportGateway) CreateOffer(ctx context.Context, in reconciliation.OfferInput) (uuid.UUID, error) {
	return g.contracts.CreateOffer(ctx, in)
}

func (g *ImportGateway) FindContractByDossier(ctx context.Context, companyID uuid.UUID, dossierNumber string) (uuid.UUID, bool, error) {
	return g.contracts.FindByDossier(ctx, companyID, dossierNumber)
}

func (g *ImportGateway) CreateOrUpdateContract(ctx context.Context, in reconciliation.ContractInput) (uuid.UUID, error) {
	return g.contracts.Save(ctx, in)
}

func (g *ImportGateway) AddEquipmentLine(ctx context.Context, in reconciliation.EquipmentInput) (uuid.UUID, error) {
	return g.contracts.AddEquipment(ctx, in)
}

func (g *ImportGateway) CountEquipmentLines(ctx context.Context, contractID uuid.UUID) (int, error) {
	return g.contracts.CountEquipment(ctx, contractID)
}

func (g *ImportGateway) CreateInvoice(ctx context.Context, in reconciliation.InvoiceInput) (uuid.UUID, bool, error) {
	return g.invoices.Create(ctx, in)
}
