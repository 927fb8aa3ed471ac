package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"leasing-import-backend/internal/models"
	"leasing-import-backend/internal/services/importer"
	"leasing-import-backend/internal/services/matching"
	service "leasing-import-backend/internal/services/reconciliation"
)

type fakeRunner struct {
	plan       *service.Plan
	prepareErr error
	report     *service.Report
	executeErr error

	executed bool
	opts     service.ExecuteOptions
}

func (f *fakeRunner) Prepare(_ context.Context, _ uuid.UUID, _ string, src io.Reader) (*service.Plan, error) {
	_, _ = io.ReadAll(src)
	return f.plan, f.prepareErr
}

func (f *fakeRunner) Execute(_ context.Context, _ *service.Plan, opts service.ExecuteOptions) (*models.ImportBatch, *service.Report, error) {
	f.executed = true
	f.opts = opts
	return &models.ImportBatch{ID: uuid.New()}, f.report, f.executeErr
}

func writeFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contracts.csv")
	require.NoError(t, os.WriteFile(path, []byte("dossier_number;client_company\nDOS-1;Acme\n"), 0o600))
	return path
}

func samplePlan() *service.Plan {
	return &service.Plan{
		Filename:   "contracts.csv",
		Parse:      &importer.ParseResult{Rows: []importer.RawRow{{DossierNumber: "DOS-1"}}, DroppedRows: 1},
		Validation: &importer.ValidationResult{},
		Contracts: []importer.GroupedContract{
			{DossierNumber: "DOS-1", Equipment: []importer.EquipmentLine{{Title: "Laptop"}}},
			{DossierNumber: "DOS-2"},
		},
		Matches: map[string]matching.ClientMatch{
			"DOS-1": {Matched: true, MatchType: matching.MatchVAT},
		},
	}
}

func runCmd(t *testing.T, runner importRunner, args ...string) (string, error) {
	t.Helper()
	cmd := newRunCmd(func() (importRunner, error) { return runner, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return out.String(), err
}

func TestRun_DryRunPrintsSummary(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{plan: samplePlan()}
	out, err := runCmd(t, runner, "--file", writeFile(t), "--company", uuid.NewString())
	require.NoError(t, err)
	assert.False(t, runner.executed)

	var got planSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Contracts)
	assert.Equal(t, 1, got.Equipment)
	assert.Equal(t, 1, got.DroppedRows)
	assert.Equal(t, 1, got.Matches[matching.MatchVAT])
	assert.Equal(t, 1, got.Matches[matching.MatchNone])
}

func TestRun_ApplyYAML(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{plan: samplePlan(), report: &service.Report{ContractsCreated: 2, Errors: []service.ReportError{}, Success: true}}
	out, err := runCmd(t, runner, "--file", writeFile(t), "--company", uuid.NewString(),
		"--apply", "--update", "--year", "2020", "--format", "yaml")
	require.NoError(t, err)
	assert.True(t, runner.executed)
	assert.Equal(t, 2020, runner.opts.Year)
	assert.True(t, runner.opts.UpdateMode)

	var got service.Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.ContractsCreated)
	assert.True(t, got.Success)
}

func TestRun_ExitCodes(t *testing.T) {
	t.Parallel()

	blocked := samplePlan()
	blocked.Validation = &importer.ValidationResult{IssueCount: 1, Issues: []importer.ValidationIssue{{Row: 2, Message: "missing dossier number"}}}

	tests := []struct {
		name   string
		runner *fakeRunner
		args   []string
		want   int
	}{
		{"missing file flag", &fakeRunner{}, []string{"--company", uuid.NewString()}, exitUsage},
		{"bad company", &fakeRunner{}, []string{"--file", "x.csv", "--company", "acme"}, exitUsage},
		{"bad format", &fakeRunner{}, []string{"--file", "x.csv", "--company", uuid.NewString(), "--format", "xml"}, exitUsage},
		{"file not found", &fakeRunner{}, []string{"--file", filepath.Join(t.TempDir(), "none.csv"), "--company", uuid.NewString()}, exitUsage},
		{"missing column", &fakeRunner{prepareErr: importer.ErrMissingColumn}, nil, exitValidation},
		{"database", &fakeRunner{prepareErr: errors.New("connection refused")}, nil, exitDB},
		{"blocked dry run", &fakeRunner{plan: blocked}, nil, exitValidation},
		{"blocked apply", &fakeRunner{plan: blocked, executeErr: service.ErrValidationFailed}, []string{"--apply"}, exitValidation},
		{"report errors", &fakeRunner{plan: samplePlan(), report: &service.Report{Errors: []service.ReportError{{Row: 2, Message: "boom"}}}}, []string{"--apply"}, exitDB},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := tt.args
			if len(args) == 0 || args[0] == "--apply" {
				args = append([]string{"--file", writeFile(t), "--company", uuid.NewString()}, args...)
			}
			_, err := runCmd(t, tt.runner, args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, exitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("plain")))
	assert.Nil(t, withCode(exitDB, nil))
	assert.Equal(t, exitDB, exitCode(withCode(exitDB, errors.New("db"))))
}
