package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"leasing-import-backend/internal/services/importer"
	"leasing-import-backend/internal/services/matching"
	service "leasing-import-backend/internal/services/reconciliation"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type planSummary struct {
	Filename       string                     `json:"filename" yaml:"filename"`
	Rows           int                        `json:"rows" yaml:"rows"`
	DroppedRows    int                        `json:"dropped_rows" yaml:"dropped_rows"`
	UnknownColumns []string                   `json:"unknown_columns,omitempty" yaml:"unknown_columns,omitempty"`
	Contracts      int                        `json:"contracts" yaml:"contracts"`
	Equipment      int                        `json:"equipment" yaml:"equipment"`
	Matches        map[matching.MatchType]int `json:"matches" yaml:"matches"`
	Issues         []importer.ValidationIssue `json:"issues,omitempty" yaml:"issues,omitempty"`
	IssueCount     int                        `json:"issue_count" yaml:"issue_count"`
	Blocked        bool                       `json:"blocked" yaml:"blocked"`
}

func summarize(plan *service.Plan) planSummary {
	s := planSummary{
		Filename:  plan.Filename,
		Contracts: len(plan.Contracts),
		Matches:   make(map[matching.MatchType]int),
		Blocked:   plan.Blocked(),
	}
	if plan.Parse != nil {
		s.Rows = len(plan.Parse.Rows)
		s.DroppedRows = plan.Parse.DroppedRows
		s.UnknownColumns = plan.Parse.UnknownColumns
	}
	if plan.Validation != nil {
		s.Issues = plan.Validation.Issues
		s.IssueCount = plan.Validation.IssueCount
	}
	for _, gc := range plan.Contracts {
		s.Equipment += len(gc.Equipment)
		mt := plan.Matches[gc.DossierNumber].MatchType
		if mt == "" {
			mt = matching.MatchNone
		}
		s.Matches[mt]++
	}
	return s
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
		return nil
	}
}
