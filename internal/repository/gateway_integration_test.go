package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/repository"
	"leasing-import-backend/internal/services/importer"
	"leasing-import-backend/internal/services/reconciliation"
)

func TestImportGatewayIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	ctx := context.Background()
	companyID := uuid.New()
	gw := repository.NewImportGateway(db)

	client := reconciliation.ClientInput{CompanyID: companyID}
	client.Company = "Integration SA"

	clientID, created, err := gw.UpsertClient(ctx, client)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := gw.UpsertClient(ctx, client)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, clientID, again)

	dossier := "INT-" + uuid.NewString()
	contractID, err := gw.CreateOrUpdateContract(ctx, reconciliation.ContractInput{
		CompanyID:      companyID,
		ClientID:       clientID,
		DossierNumber:  dossier,
		Status:         "active",
		MonthlyPayment: decimal.RequireFromString("120.50"),
	})
	require.NoError(t, err)

	found, ok, err := gw.FindContractByDossier(ctx, companyID, dossier)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, contractID, found)

	_, err = gw.AddEquipmentLine(ctx, reconciliation.EquipmentInput{
		ContractID:    contractID,
		EquipmentLine: importer.EquipmentLine{Title: "Laptop", Quantity: 1, PurchasePrice: decimal.NewFromInt(900), SellingPrice: decimal.NewFromInt(1100)},
	})
	require.NoError(t, err)

	lines, err := gw.CountEquipmentLines(ctx, contractID)
	require.NoError(t, err)
	assert.Equal(t, 1, lines)

	invoice := reconciliation.InvoiceInput{
		CompanyID:     companyID,
		ContractID:    contractID,
		ClientID:      clientID,
		InvoiceNumber: "INV-" + uuid.NewString(),
		Amount:        decimal.NewFromInt(1100),
		Status:        models.InvoiceStatusPaid,
	}
	first, created, err := gw.CreateInvoice(ctx, invoice)
	require.NoError(t, err)
	assert.True(t, created)
	second, created, err := gw.CreateInvoice(ctx, invoice)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)

	invoice.ContractID = uuid.New()
	_, _, err = gw.CreateInvoice(ctx, invoice)
	require.ErrorIs(t, err, reconciliation.ErrInvoiceNumberTaken)
}
