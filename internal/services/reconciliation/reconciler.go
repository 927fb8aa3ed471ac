package reconciliation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/services/importer"
	"leasing-import-backend/internal/services/matching"
)

const (
	DefaultWorkers = 4
	MaxWorkers     = 16

	contractStatusDefault = "active"
)

// ImportParams carries the tenant context of one import run. Matches and
// BillingEntities are keyed by dossier number; a dossier without a match is
// treated as an unknown client and a dossier without a billing entity uses
// DefaultBillingEntityID.
type ImportParams struct {
	BatchID                uuid.UUID
	CompanyID              uuid.UUID
	Year                   int
	UpdateMode             bool
	DefaultBillingEntityID uuid.UUID
	Matches                map[string]matching.ClientMatch
	BillingEntities        map[string]uuid.UUID
	// TotalRows is the number of parsed rows, including rows left out by
	// validation. Zero means the row count of the contracts.
	TotalRows int
}

type Reconciler struct {
	gateway Gateway
	audit   AuditSink
	log     *logrus.Logger
	workers int
}

type ReconcilerOption func(*Reconciler)

func WithWorkers(n int) ReconcilerOption {
	return func(r *Reconciler) { r.workers = n }
}

func WithAuditSink(sink AuditSink) ReconcilerOption {
	return func(r *Reconciler) { r.audit = sink }
}

func WithLogger(log *logrus.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.log = log }
}

func NewReconciler(gateway Gateway, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{gateway: gateway, workers: DefaultWorkers}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = 1
	}
	if r.workers > MaxWorkers {
		r.workers = MaxWorkers
	}
	if r.log == nil {
		r.log = logrus.StandardLogger()
	}
	return r
}

// Import persists every contract and reports what happened. A failure on one
// contract is recorded in the report and never stops the others. When ctx is
// cancelled no further contract is started; the partial report is returned
// together with ctx.Err().
func (r *Reconciler) Import(ctx context.Context, contracts []importer.GroupedContract, params ImportParams) (*Report, error) {
	totalRows := params.TotalRows
	if totalRows == 0 {
		for _, gc := range contracts {
			totalRows += gc.RowCount
		}
	}

	rb := newReportBuilder(totalRows)
	clients := newClientRegistry(matching.PlanNewClients(contracts, params.Matches))

	g := new(errgroup.Group)
	g.SetLimit(r.workers)

	for i := range contracts {
		if ctx.Err() != nil {
			break
		}
		gc := contracts[i]
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			r.process(ctx, gc, params, clients, rb)
			return nil
		})
	}
	_ = g.Wait()

	report := rb.build()
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Reconciler) process(ctx context.Context, gc importer.GroupedContract, params ImportParams, clients *clientRegistry, rb *reportBuilder) {
	match := params.Matches[gc.DossierNumber]
	if match.MatchType == "" {
		match.MatchType = matching.MatchNone
	}
	entry := r.log.WithFields(logrus.Fields{
		"batch_id":       params.BatchID,
		"company_id":     params.CompanyID,
		"dossier_number": gc.DossierNumber,
		"row":            gc.SourceLine,
		"match_type":     match.MatchType,
	})

	outcome := Outcome{DossierNumber: gc.DossierNumber, Row: gc.SourceLine, MatchType: match.MatchType}

	contractID, action, err := r.reconcile(ctx, gc, params, match, clients, rb, &outcome)
	if err != nil {
		outcome.Action = ActionFailed
		outcome.Reason = err.Error()
		rb.fail(gc.SourceLine, gc.DossierNumber, fmt.Sprintf("dossier %s: %v", gc.DossierNumber, err))
		entry.WithError(err).Warn("contract import failed")
	} else {
		outcome.Action = action
		outcome.ContractID = &contractID
		entry.WithField("action", action).Debug("contract imported")
	}

	recordContract(outcome.Action)
	if r.audit != nil {
		r.audit.Record(ctx, params.BatchID, outcome)
	}
}

// reconcile sequences the writes of one dossier: client, then either the
// contract update or offer and contract, then equipment and invoice. A
// contract is counted only once all of its writes succeeded.
func (r *Reconciler) reconcile(
	ctx context.Context,
	gc importer.GroupedContract,
	params ImportParams,
	match matching.ClientMatch,
	clients *clientRegistry,
	rb *reportBuilder,
	outcome *Outcome,
) (uuid.UUID, Action, error) {
	clientID, err := r.resolveClient(ctx, gc, params, match, clients, rb)
	if err != nil {
		return uuid.Nil, ActionFailed, fmt.Errorf("client: %w", err)
	}
	outcome.ClientID = &clientID

	billingEntityID := params.DefaultBillingEntityID
	if id, ok := params.BillingEntities[gc.DossierNumber]; ok && id != uuid.Nil {
		billingEntityID = id
	}

	contract := contractInput(gc, params, clientID, billingEntityID)

	if params.UpdateMode {
		existingID, found, err := r.gateway.FindContractByDossier(ctx, params.CompanyID, gc.DossierNumber)
		if err != nil {
			return uuid.Nil, ActionFailed, fmt.Errorf("find contract: %w", err)
		}
		if found {
			contract.ID = &existingID
			id, err := r.gateway.CreateOrUpdateContract(ctx, contract)
			if err != nil {
				return uuid.Nil, ActionFailed, fmt.Errorf("update contract: %w", err)
			}
			stored, err := r.gateway.CountEquipmentLines(ctx, id)
			if err != nil {
				return id, ActionFailed, fmt.Errorf("count equipment: %w", err)
			}
			if err := r.writeDetails(ctx, gc, params, id, clientID, billingEntityID, stored, rb); err != nil {
				return id, ActionFailed, err
			}
			rb.update(func(rep *Report) { rep.ContractsUpdated++ })
			return id, ActionUpdated, nil
		}
	}

	offerID, err := r.gateway.CreateOffer(ctx, OfferInput{
		CompanyID:       params.CompanyID,
		ClientID:        clientID,
		BillingEntityID: billingEntityID,
		DossierNumber:   gc.DossierNumber,
		ClientName:      gc.Client.DisplayName(),
		LeaserName:      gc.LeaserName,
		MonthlyPayment:  gc.MonthlyPayment,
		FinancedAmount:  gc.FinancedAmount,
		DurationMonths:  gc.DurationMonths,
		Year:            params.Year,
		Equipment:       gc.Equipment,
	})
	if err != nil {
		return uuid.Nil, ActionFailed, fmt.Errorf("create offer: %w", err)
	}
	rb.update(func(rep *Report) { rep.OffersCreated++ })

	contract.OfferID = &offerID
	contractID, err := r.gateway.CreateOrUpdateContract(ctx, contract)
	if err != nil {
		return uuid.Nil, ActionFailed, fmt.Errorf("create contract: %w", err)
	}
	if err := r.writeDetails(ctx, gc, params, contractID, clientID, billingEntityID, 0, rb); err != nil {
		return contractID, ActionFailed, err
	}
	rb.update(func(rep *Report) { rep.ContractsCreated++ })
	return contractID, ActionCreated, nil
}

// writeDetails adds the equipment lines past the stored ones and the invoice.
// An update-mode run thereby completes a contract whose earlier import
// stopped half way.
func (r *Reconciler) writeDetails(
	ctx context.Context,
	gc importer.GroupedContract,
	params ImportParams,
	contractID, clientID, billingEntityID uuid.UUID,
	stored int,
	rb *reportBuilder,
) error {
	for i := stored; i < len(gc.Equipment); i++ {
		line := gc.Equipment[i]
		if _, err := r.gateway.AddEquipmentLine(ctx, EquipmentInput{ContractID: contractID, EquipmentLine: line}); err != nil {
			return fmt.Errorf("equipment %q: %w", line.Title, err)
		}
		rb.update(func(rep *Report) { rep.EquipmentCreated++ })
	}

	if gc.InvoiceNumber == "" {
		return nil
	}
	_, created, err := r.gateway.CreateInvoice(ctx, invoiceInput(gc, params, contractID, clientID, billingEntityID))
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	if created {
		rb.update(func(rep *Report) { rep.InvoicesCreated++ })
	}
	return nil
}

func (r *Reconciler) resolveClient(
	ctx context.Context,
	gc importer.GroupedContract,
	params ImportParams,
	match matching.ClientMatch,
	clients *clientRegistry,
	rb *reportBuilder,
) (uuid.UUID, error) {
	if match.Matched && match.Client != nil {
		rb.update(func(rep *Report) { rep.ClientsLinked++ })
		return match.Client.ID, nil
	}

	id, created, err := clients.resolve(ctx, gc, func(identity importer.ClientIdentity) (uuid.UUID, bool, error) {
		return r.gateway.UpsertClient(ctx, ClientInput{CompanyID: params.CompanyID, ClientIdentity: identity})
	})
	if err != nil {
		return uuid.Nil, err
	}
	rb.update(func(rep *Report) {
		if created {
			rep.ClientsCreated++
		} else {
			rep.ClientsLinked++
		}
	})
	return id, nil
}

func contractInput(gc importer.GroupedContract, params ImportParams, clientID, billingEntityID uuid.UUID) ContractInput {
	status := gc.Status
	if status == "" {
		status = contractStatusDefault
	}
	start := gc.StartDate
	if start == nil && params.Year > 0 {
		d := time.Date(params.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		start = &d
	}
	return ContractInput{
		CompanyID:       params.CompanyID,
		ClientID:        clientID,
		BillingEntityID: billingEntityID,
		DossierNumber:   gc.DossierNumber,
		ContractNumber:  gc.ContractNumber,
		ClientName:      gc.Client.DisplayName(),
		LeaserName:      gc.LeaserName,
		Status:          status,
		MonthlyPayment:  gc.MonthlyPayment,
		FinancedAmount:  gc.FinancedAmount,
		DurationMonths:  gc.DurationMonths,
		StartDate:       start,
		EndDate:         gc.EndDate,
		Year:            params.Year,
	}
}

// invoiceInput bills the equipment total, or the financed amount when the
// contract lists no priced equipment.
func invoiceInput(gc importer.GroupedContract, params ImportParams, contractID, clientID, billingEntityID uuid.UUID) InvoiceInput {
	amount := gc.EquipmentTotal()
	if amount.Equal(decimal.Zero) {
		amount = gc.FinancedAmount
	}
	date := gc.InvoiceDate
	if date == nil {
		date = gc.StartDate
	}
	return InvoiceInput{
		CompanyID:       params.CompanyID,
		ContractID:      contractID,
		ClientID:        clientID,
		BillingEntityID: billingEntityID,
		InvoiceNumber:   gc.InvoiceNumber,
		Amount:          amount,
		Status:          models.InvoiceStatusPaid,
		InvoiceDate:     date,
	}
}

// clientRegistry makes sure an unknown client shared by several dossiers is
// written once per run, with the identity merged by matching.PlanNewClients.
// A failed write fails every dossier waiting on it.
type clientRegistry struct {
	mu    sync.Mutex
	plan  map[string]*matching.NewClient
	slots map[string]*clientSlot
}

type clientSlot struct {
	ready chan struct{}
	id    uuid.UUID
	err   error
}

func newClientRegistry(plan map[string]*matching.NewClient) *clientRegistry {
	return &clientRegistry{plan: plan, slots: make(map[string]*clientSlot)}
}

// resolve runs write for the first dossier of a planned client. Later
// dossiers wait for it and always get created = false.
func (c *clientRegistry) resolve(ctx context.Context, gc importer.GroupedContract, write func(importer.ClientIdentity) (uuid.UUID, bool, error)) (uuid.UUID, bool, error) {
	nc, ok := c.plan[gc.DossierNumber]
	if !ok {
		nc = &matching.NewClient{Key: gc.DossierNumber, Identity: gc.Client}
	}
	key := nc.Key

	c.mu.Lock()
	if slot, ok := c.slots[key]; ok {
		c.mu.Unlock()
		select {
		case <-slot.ready:
		case <-ctx.Done():
			return uuid.Nil, false, ctx.Err()
		}
		return slot.id, false, slot.err
	}
	slot := &clientSlot{ready: make(chan struct{})}
	c.slots[key] = slot
	c.mu.Unlock()

	id, created, err := write(nc.Identity)
	slot.id, slot.err = id, err
	close(slot.ready)
	return id, created, err
}
