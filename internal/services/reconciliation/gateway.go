package reconciliation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"leasing-import-backend/internal/services/billing"
	"leasing-import-backend/internal/services/importer"
	"leasing-import-backend/internal/services/matching"
)

// ErrInvoiceNumberTaken is returned by CreateInvoice when the company already
// used the number for another contract.
var ErrInvoiceNumberTaken = errors.New("invoice number belongs to another contract")

type ClientInput struct {
	CompanyID uuid.UUID
	importer.ClientIdentity
}

type OfferInput struct {
	CompanyID       uuid.UUID
	ClientID        uuid.UUID
	BillingEntityID uuid.UUID
	DossierNumber   string
	ClientName      string
	LeaserName      string
	MonthlyPayment  decimal.Decimal
	FinancedAmount  decimal.Decimal
	DurationMonths  int
	Year            int
	Equipment       []importer.EquipmentLine
}

// ContractInput creates a contract when ID is nil and overwrites the
// contract with that id otherwise.
type ContractInput struct {
	ID              *uuid.UUID
	CompanyID       uuid.UUID
	ClientID        uuid.UUID
	OfferID         *uuid.UUID
	BillingEntityID uuid.UUID
	DossierNumber   string
	ContractNumber  string
	ClientName      string
	LeaserName      string
	Status          string
	MonthlyPayment  decimal.Decimal
	FinancedAmount  decimal.Decimal
	DurationMonths  int
	StartDate       *time.Time
	EndDate         *time.Time
	Year            int
}

type EquipmentInput struct {
	ContractID uuid.UUID
	importer.EquipmentLine
}

type InvoiceInput struct {
	CompanyID       uuid.UUID
	ContractID      uuid.UUID
	ClientID        uuid.UUID
	BillingEntityID uuid.UUID
	InvoiceNumber   string
	Amount          decimal.Decimal
	Status          string
	InvoiceDate     *time.Time
}

// Gateway is the persistence side of an import. Every call returns the id
// of the record it wrote.
type Gateway interface {
	// UpsertClient returns the id of an existing client with the same
	// identity, or creates one and reports created = true.
	UpsertClient(ctx context.Context, in ClientInput) (id uuid.UUID, created bool, err error)
	CreateOffer(ctx context.Context, in OfferInput) (uuid.UUID, error)
	FindContractByDossier(ctx context.Context, companyID uuid.UUID, dossierNumber string) (uuid.UUID, bool, error)
	CreateOrUpdateContract(ctx context.Context, in ContractInput) (uuid.UUID, error)
	AddEquipmentLine(ctx context.Context, in EquipmentInput) (uuid.UUID, error)
	CountEquipmentLines(ctx context.Context, contractID uuid.UUID) (int, error)
	// CreateInvoice reports created = false when the contract already holds
	// an invoice with that number.
	CreateInvoice(ctx context.Context, in InvoiceInput) (id uuid.UUID, created bool, err error)
}

type ClientDirectory interface {
	ListClients(ctx context.Context, companyID uuid.UUID) ([]matching.ClientRecord, error)
}

type BillingEntitySource interface {
	ListBillingEntities(ctx context.Context, companyID uuid.UUID) ([]billing.BillingEntity, error)
}

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionFailed  Action = "failed"
)

// Outcome describes what happened to one contract.
type Outcome struct {
	DossierNumber string
	Row           int
	Action        Action
	MatchType     matching.MatchType
	ClientID      *uuid.UUID
	ContractID    *uuid.UUID
	Reason        string
}

// AuditSink receives one outcome per processed contract. Implementations
// must be safe for concurrent use.
type AuditSink interface {
	Record(ctx context.Context, batchID uuid.UUID, o Outcome)
}
