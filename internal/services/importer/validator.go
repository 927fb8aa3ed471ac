package importer

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// MaxValidationIssues caps how many issues are returned for one file.
const MaxValidationIssues = 10

const (
	msgMissingClient  = "missing client name or company"
	msgMissingDossier = "missing dossier number"
)

var validate = validator.New()

type ValidationResult struct {
	Valid  []RawRow          `json:"-"`
	Issues []ValidationIssue `json:"issues"`
	// IssueCount is the number of issues found before truncation.
	IssueCount int `json:"issue_count"`
}

// Validate checks every row for a client identifier and a dossier number.
// Rows with issues are left out of Valid; only the first MaxValidationIssues
// issues are kept.
func Validate(rows []RawRow) (*ValidationResult, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	res := &ValidationResult{Valid: make([]RawRow, 0, len(rows))}
	for i, row := range rows {
		line := i + 2
		msgs := rowProblems(row)
		if len(msgs) == 0 {
			res.Valid = append(res.Valid, row)
			continue
		}
		for _, msg := range msgs {
			res.IssueCount++
			if len(res.Issues) < MaxValidationIssues {
				res.Issues = append(res.Issues, ValidationIssue{Row: line, Message: msg})
			}
		}
	}
	return res, nil
}

func rowProblems(row RawRow) []string {
	err := validate.Struct(row)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	var clientMissing, dossierMissing bool
	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "ClientName", "ClientCompany":
			clientMissing = true
		case "DossierNumber":
			dossierMissing = true
		}
	}

	var msgs []string
	if clientMissing {
		msgs = append(msgs, msgMissingClient)
	}
	if dossierMissing {
		msgs = append(msgs, msgMissingDossier)
	}
	return msgs
}
