package reconciliation

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/services/billing"
	"leasing-import-backend/internal/services/importer"
	"leasing-import-backend/internal/services/matching"
)

var errWriteFailed = errors.New("write failed")

type fakeGateway struct {
	mu sync.Mutex

	clients    map[string]uuid.UUID
	identities []ClientInput
	offers     []OfferInput
	contracts  map[string]ContractInput
	equipment  []EquipmentInput
	invoices   map[string]InvoiceInput

	upserts    int
	failOn     map[string]bool
	failClient bool
	// failEquipmentOnce fails the next AddEquipmentLine for each title.
	failEquipmentOnce map[string]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		clients:           make(map[string]uuid.UUID),
		contracts:         make(map[string]ContractInput),
		invoices:          make(map[string]InvoiceInput),
		failOn:            make(map[string]bool),
		failEquipmentOnce: make(map[string]bool),
	}
}

// directory lists the stored clients the way ListClients would.
func (f *fakeGateway) directory() []matching.ClientRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]matching.ClientRecord, 0, len(f.identities))
	for _, in := range f.identities {
		out = append(out, matching.ClientRecord{
			ID:        f.clients[matching.IdentityKey(in.ClientIdentity)],
			Name:      in.Name,
			Company:   in.Company,
			VATNumber: in.VATNumber,
		})
	}
	return out
}

func (f *fakeGateway) equipmentOf(contractID uuid.UUID) []importer.EquipmentLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []importer.EquipmentLine
	for _, e := range f.equipment {
		if e.ContractID == contractID {
			out = append(out, e.EquipmentLine)
		}
	}
	return out
}

func (f *fakeGateway) UpsertClient(_ context.Context, in ClientInput) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upserts++
	if f.failClient {
		return uuid.Nil, false, errWriteFailed
	}
	key := matching.IdentityKey(in.ClientIdentity)
	if id, ok := f.clients[key]; ok {
		return id, false, nil
	}
	id := uuid.New()
	f.clients[key] = id
	f.identities = append(f.identities, in)
	return id, true, nil
}

func (f *fakeGateway) CreateOffer(_ context.Context, in OfferInput) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offers = append(f.offers, in)
	return uuid.New(), nil
}

func (f *fakeGateway) FindContractByDossier(_ context.Context, _ uuid.UUID, dossier string) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[dossier]
	if !ok {
		return uuid.Nil, false, nil
	}
	return *c.ID, true, nil
}

func (f *fakeGateway) CreateOrUpdateContract(_ context.Context, in ContractInput) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn[in.DossierNumber] {
		return uuid.Nil, errWriteFailed
	}
	id := uuid.New()
	if in.ID != nil {
		id = *in.ID
		// an update keeps the offer of the original contract
		in.OfferID = f.contracts[in.DossierNumber].OfferID
	}
	in.ID = &id
	f.contracts[in.DossierNumber] = in
	return id, nil
}

func (f *fakeGateway) AddEquipmentLine(_ context.Context, in EquipmentInput) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEquipmentOnce[in.Title] {
		delete(f.failEquipmentOnce, in.Title)
		return uuid.Nil, errWriteFailed
	}
	f.equipment = append(f.equipment, in)
	return uuid.New(), nil
}

func (f *fakeGateway) CountEquipmentLines(_ context.Context, contractID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.equipment {
		if e.ContractID == contractID {
			n++
		}
	}
	return n, nil
}

func (f *fakeGateway) CreateInvoice(_ context.Context, in InvoiceInput) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.invoices[in.InvoiceNumber]; ok {
		if existing.ContractID != in.ContractID {
			return uuid.Nil, false, ErrInvoiceNumberTaken
		}
		return uuid.New(), false, nil
	}
	f.invoices[in.InvoiceNumber] = in
	return uuid.New(), true, nil
}

type fakeAudit struct {
	mu       sync.Mutex
	outcomes []Outcome
	batches  []uuid.UUID
}

func (a *fakeAudit) Record(_ context.Context, batchID uuid.UUID, o Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outcomes = append(a.outcomes, o)
	a.batches = append(a.batches, batchID)
}

func (a *fakeAudit) ListByBatch(_ context.Context, batchID uuid.UUID) ([]models.ImportAuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.ImportAuditLog
	for i, o := range a.outcomes {
		if a.batches[i] != batchID {
			continue
		}
		out = append(out, models.ImportAuditLog{
			BatchID:       batchID,
			DossierNumber: o.DossierNumber,
			SourceRow:     o.Row,
			Action:        string(o.Action),
			Reason:        o.Reason,
		})
	}
	return out, nil
}

type fakeDirectory struct {
	records []matching.ClientRecord
	err     error
}

func (d fakeDirectory) ListClients(context.Context, uuid.UUID) ([]matching.ClientRecord, error) {
	return d.records, d.err
}

type fakeEntities struct {
	entities []billing.BillingEntity
}

func (e fakeEntities) ListBillingEntities(context.Context, uuid.UUID) ([]billing.BillingEntity, error) {
	return e.entities, nil
}

type fakeBatches struct {
	mu      sync.Mutex
	batches map[uuid.UUID]models.ImportBatch
}

func newFakeBatches() *fakeBatches {
	return &fakeBatches{batches: make(map[uuid.UUID]models.ImportBatch)}
}

func (b *fakeBatches) Create(_ context.Context, batch *models.ImportBatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches[batch.ID] = *batch
	return nil
}

func (b *fakeBatches) Save(_ context.Context, batch *models.ImportBatch) error {
	return b.Create(context.Background(), batch)
}

func (b *fakeBatches) Get(_ context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch, ok := b.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	return &batch, nil
}
