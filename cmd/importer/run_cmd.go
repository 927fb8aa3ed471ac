package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"leasing-import-backend/internal/config"
	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/repository"
	"leasing-import-backend/internal/services/billing"
	"leasing-import-backend/internal/services/importer"
	service "leasing-import-backend/internal/services/reconciliation"
)

type runOptions struct {
	file      string
	companyID string
	year      int
	update    bool
	force     bool
	apply     bool
	format    string
}

// importRunner is the slice of service.ImportService the command needs.
type importRunner interface {
	Prepare(ctx context.Context, companyID uuid.UUID, filename string, src io.Reader) (*service.Plan, error)
	Execute(ctx context.Context, plan *service.Plan, opts service.ExecuteOptions) (*models.ImportBatch, *service.Report, error)
}

type runnerFactory func() (importRunner, error)

func newDBRunner() (importRunner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	log := config.NewLogger(cfg)
	log.SetOutput(os.Stderr)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, withCode(exitDB, err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, withCode(exitDB, fmt.Errorf("migrate: %w", err))
	}
	return repository.NewImportService(db, cfg, log), nil
}

func newRunCmd(factory runnerFactory) *cobra.Command {
	opts := runOptions{year: time.Now().Year(), format: formatJSON}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Preview or apply an import file for one company",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return withCode(exitUsage, err)
			}
			runner, err := factory()
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), runner, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "import file (.csv, .txt or .xlsx)")
	cmd.Flags().StringVar(&opts.companyID, "company", "", "company id (uuid)")
	cmd.Flags().IntVar(&opts.year, "year", opts.year, "import year")
	cmd.Flags().BoolVar(&opts.update, "update", false, "update contracts that already exist for a dossier")
	cmd.Flags().BoolVar(&opts.force, "force", false, "import despite validation issues")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "write to the database (default is a dry run)")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: json|yaml")
	return cmd
}

func (o runOptions) validate() error {
	if o.file == "" {
		return errors.New("--file is required")
	}
	if _, err := uuid.Parse(o.companyID); err != nil {
		return fmt.Errorf("invalid --company %q", o.companyID)
	}
	if o.year < 1900 || o.year > 2200 {
		return fmt.Errorf("invalid --year %d", o.year)
	}
	switch o.format {
	case formatJSON, formatYAML:
	default:
		return fmt.Errorf("unsupported --format %q (expected json|yaml)", o.format)
	}
	return nil
}

func runImport(ctx context.Context, out io.Writer, runner importRunner, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	companyID := uuid.MustParse(opts.companyID)

	f, err := os.Open(opts.file)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("open --file: %w", err))
	}
	defer f.Close()

	plan, err := runner.Prepare(ctx, companyID, filepath.Base(opts.file), f)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrEmptyFile), errors.Is(err, importer.ErrMissingColumn), errors.Is(err, billing.ErrNoBillingEntity):
			return withCode(exitValidation, err)
		default:
			return withCode(exitDB, err)
		}
	}

	if !opts.apply {
		if err := render(out, opts.format, summarize(plan)); err != nil {
			return err
		}
		if plan.Blocked() && !opts.force {
			return withCode(exitValidation, fmt.Errorf("%w: %d issue(s)", service.ErrValidationFailed, plan.Validation.IssueCount))
		}
		return nil
	}

	_, report, err := runner.Execute(ctx, plan, service.ExecuteOptions{
		Year:       opts.year,
		UpdateMode: opts.update,
		Force:      opts.force,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			if plan.Validation != nil {
				_ = render(out, opts.format, summarize(plan))
			}
			return withCode(exitValidation, err)
		}
		if report != nil {
			_ = render(out, opts.format, report)
		}
		return withCode(exitDB, err)
	}

	if err := render(out, opts.format, report); err != nil {
		return err
	}
	if !report.Success {
		return withCode(exitDB, fmt.Errorf("import finished with %d error(s)", len(report.Errors)))
	}
	return nil
}
