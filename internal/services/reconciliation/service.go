package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/services/billing"
	"leasing-import-backend/internal/services/importer"
	"leasing-import-backend/internal/services/matching"
)

var (
	ErrValidationFailed = errors.New("import file has validation issues")
	ErrBatchNotFound    = errors.New("import batch not found")
)

const suggestionLimit = 3

// BatchStore keeps ImportBatch records. Get returns ErrBatchNotFound for an
// unknown id.
type BatchStore interface {
	Create(ctx context.Context, batch *models.ImportBatch) error
	Save(ctx context.Context, batch *models.ImportBatch) error
	Get(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error)
}

// AuditLog records contract outcomes and reads them back per batch.
type AuditLog interface {
	AuditSink
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.ImportAuditLog, error)
}

type ServiceConfig struct {
	Workers               int
	DefaultCountry        string
	DefaultDurationMonths int
}

type ImportService struct {
	gateway  Gateway
	clients  ClientDirectory
	entities BillingEntitySource
	batches  BatchStore
	audit    AuditLog
	cfg      ServiceConfig
	log      *logrus.Logger

	running sync.WaitGroup
}

func NewImportService(
	gateway Gateway,
	clients ClientDirectory,
	entities BillingEntitySource,
	batches BatchStore,
	audit AuditLog,
	cfg ServiceConfig,
	log *logrus.Logger,
) *ImportService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ImportService{
		gateway:  gateway,
		clients:  clients,
		entities: entities,
		batches:  batches,
		audit:    audit,
		cfg:      cfg,
		log:      log,
	}
}

// Plan is everything learned about a file before anything is written.
type Plan struct {
	Filename               string                           `json:"filename"`
	CompanyID              uuid.UUID                        `json:"company_id"`
	Parse                  *importer.ParseResult            `json:"parse"`
	Validation             *importer.ValidationResult       `json:"validation"`
	Contracts              []importer.GroupedContract       `json:"contracts"`
	Matches                map[string]matching.ClientMatch  `json:"matches"`
	Suggestions            map[string][]matching.Suggestion `json:"suggestions,omitempty"`
	BillingEntities        map[string]uuid.UUID             `json:"billing_entities"`
	DefaultBillingEntityID uuid.UUID                        `json:"default_billing_entity_id"`
}

func (p *Plan) parsedRows() int {
	if p.Parse == nil {
		return 0
	}
	return len(p.Parse.Rows)
}

// Blocked reports whether validation found issues.
func (p *Plan) Blocked() bool {
	return p.Validation != nil && p.Validation.IssueCount > 0
}

// Prepare parses, validates, groups, matches and resolves billing entities.
// It fails on file-level problems and when the company has no billing entity.
func (s *ImportService) Prepare(ctx context.Context, companyID uuid.UUID, filename string, src io.Reader) (*Plan, error) {
	entry := s.log.WithFields(logrus.Fields{"company_id": companyID, "filename": filename})

	parsed, err := importer.Parse(filename, src)
	if err != nil {
		return nil, err
	}
	recordRows(len(parsed.Rows) + parsed.DroppedRows)
	if len(parsed.UnknownColumns) > 0 {
		entry.WithField("columns", parsed.UnknownColumns).Warn("ignoring unknown columns")
	}
	if parsed.DroppedRows > 0 {
		entry.WithField("dropped", parsed.DroppedRows).Debug("dropped rows without client")
	}

	validation, err := importer.Validate(parsed.Rows)
	if err != nil {
		return nil, err
	}

	entities, err := s.entities.ListBillingEntities(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list billing entities: %w", err)
	}
	resolver, err := billing.NewResolver(entities)
	if err != nil {
		return nil, err
	}

	records, err := s.clients.ListClients(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	matcher := matching.NewMatcher(matching.NewDirectory(records))

	contracts := importer.Group(validation.Valid, importer.GroupOptions{
		DefaultCountry:        s.cfg.DefaultCountry,
		DefaultDurationMonths: s.cfg.DefaultDurationMonths,
	})

	plan := &Plan{
		Filename:               filename,
		CompanyID:              companyID,
		Parse:                  parsed,
		Validation:             validation,
		Contracts:              contracts,
		Matches:                matcher.MatchAll(contracts),
		Suggestions:            make(map[string][]matching.Suggestion),
		BillingEntities:        make(map[string]uuid.UUID, len(contracts)),
		DefaultBillingEntityID: resolver.Default().ID,
	}
	for _, gc := range contracts {
		plan.BillingEntities[gc.DossierNumber] = resolver.Resolve(gc.BillingEntityName)
		if m := plan.Matches[gc.DossierNumber]; !m.Matched {
			if sugg := matcher.Suggest(gc.Client, suggestionLimit); len(sugg) > 0 {
				plan.Suggestions[gc.DossierNumber] = sugg
			}
		}
	}

	entry.WithFields(logrus.Fields{
		"rows":      len(parsed.Rows),
		"contracts": len(contracts),
		"issues":    validation.IssueCount,
	}).Info("import prepared")
	return plan, nil
}

type ExecuteOptions struct {
	Year       int
	UpdateMode bool
	// Force runs the import despite validation issues. Rows with issues are
	// still left out.
	Force bool
}

// Execute records a batch and persists the plan synchronously.
func (s *ImportService) Execute(ctx context.Context, plan *Plan, opts ExecuteOptions) (*models.ImportBatch, *Report, error) {
	batch, err := s.begin(ctx, plan, opts)
	if err != nil {
		return nil, nil, err
	}
	report, err := s.run(ctx, batch, plan, opts)
	return batch, report, err
}

// Submit records a batch and persists the plan in the background. The
// returned batch is in processing status; callers poll Batch for the result.
func (s *ImportService) Submit(ctx context.Context, plan *Plan, opts ExecuteOptions) (*models.ImportBatch, error) {
	batch, err := s.begin(ctx, plan, opts)
	if err != nil {
		return nil, err
	}

	snapshot := *batch
	bg := context.WithoutCancel(ctx)
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		_, _ = s.run(bg, batch, plan, opts)
	}()
	return &snapshot, nil
}

// Wait blocks until every submitted batch has finished.
func (s *ImportService) Wait() {
	s.running.Wait()
}

func (s *ImportService) Batch(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	return s.batches.Get(ctx, id)
}

// BatchAudit returns the per-contract outcomes of a batch in source row order.
func (s *ImportService) BatchAudit(ctx context.Context, id uuid.UUID) ([]models.ImportAuditLog, error) {
	if _, err := s.batches.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return nil, nil
	}
	logs, err := s.audit.ListByBatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	return logs, nil
}

func (s *ImportService) begin(ctx context.Context, plan *Plan, opts ExecuteOptions) (*models.ImportBatch, error) {
	if plan.Blocked() && !opts.Force {
		return nil, fmt.Errorf("%w: %d issue(s)", ErrValidationFailed, plan.Validation.IssueCount)
	}

	now := time.Now()
	batch := &models.ImportBatch{
		ID:         uuid.New(),
		CompanyID:  plan.CompanyID,
		Filename:   plan.Filename,
		Year:       opts.Year,
		UpdateMode: opts.UpdateMode,
		Status:     models.BatchStatusProcessing,
		StartedAt:  now,
		CreatedAt:  now,
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return batch, nil
}

func (s *ImportService) run(ctx context.Context, batch *models.ImportBatch, plan *Plan, opts ExecuteOptions) (*Report, error) {
	entry := s.log.WithFields(logrus.Fields{"batch_id": batch.ID, "company_id": plan.CompanyID})
	start := time.Now()

	reconciler := NewReconciler(s.gateway,
		WithWorkers(s.cfg.Workers),
		WithAuditSink(s.audit),
		WithLogger(s.log),
	)
	report, runErr := reconciler.Import(ctx, plan.Contracts, ImportParams{
		BatchID:                batch.ID,
		CompanyID:              plan.CompanyID,
		Year:                   opts.Year,
		UpdateMode:             opts.UpdateMode,
		DefaultBillingEntityID: plan.DefaultBillingEntityID,
		Matches:                plan.Matches,
		BillingEntities:        plan.BillingEntities,
		TotalRows:              plan.parsedRows(),
	})

	finishBatch(batch, report, runErr)
	recordBatch(batch.Status, time.Since(start).Seconds())

	if err := s.batches.Save(context.WithoutCancel(ctx), batch); err != nil {
		entry.WithError(err).Error("saving import batch failed")
		if runErr == nil {
			runErr = fmt.Errorf("save batch: %w", err)
		}
	}

	entry.WithFields(logrus.Fields{
		"status":            batch.Status,
		"contracts_created": report.ContractsCreated,
		"contracts_updated": report.ContractsUpdated,
		"errors":            len(report.Errors),
	}).Info("import batch finished")
	return report, runErr
}

func finishBatch(batch *models.ImportBatch, report *Report, runErr error) {
	now := time.Now()
	batch.CompletedAt = &now
	batch.TotalRows = report.TotalRows
	batch.ContractsCreated = report.ContractsCreated
	batch.ContractsUpdated = report.ContractsUpdated
	batch.ErrorCount = len(report.Errors)

	switch {
	case runErr != nil:
		batch.Status = models.BatchStatusFailed
		batch.FailureReason = runErr.Error()
	case report.Success:
		batch.Status = models.BatchStatusCompleted
	default:
		batch.Status = models.BatchStatusCompletedWithErrors
	}

	if raw, err := json.Marshal(report); err == nil {
		batch.Report = raw
	}
}
