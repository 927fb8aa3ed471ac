package reconciliation

import (
	"sort"
	"sync"
)

type ReportError struct {
	Row           int    `json:"row" yaml:"row"`
	DossierNumber string `json:"dossier_number,omitempty" yaml:"dossier_number,omitempty"`
	Message       string `json:"message" yaml:"message"`
}

type Report struct {
	TotalRows        int           `json:"total_rows" yaml:"total_rows"`
	ClientsCreated   int           `json:"clients_created" yaml:"clients_created"`
	ClientsLinked    int           `json:"clients_linked" yaml:"clients_linked"`
	OffersCreated    int           `json:"offers_created" yaml:"offers_created"`
	ContractsCreated int           `json:"contracts_created" yaml:"contracts_created"`
	ContractsUpdated int           `json:"contracts_updated" yaml:"contracts_updated"`
	EquipmentCreated int           `json:"equipment_created" yaml:"equipment_created"`
	InvoicesCreated  int           `json:"invoices_created" yaml:"invoices_created"`
	Errors           []ReportError `json:"errors" yaml:"errors"`
	Success          bool          `json:"success" yaml:"success"`
}

// reportBuilder is shared by the workers of one run.
type reportBuilder struct {
	mu     sync.Mutex
	report Report
}

func newReportBuilder(totalRows int) *reportBuilder {
	return &reportBuilder{report: Report{TotalRows: totalRows, Errors: []ReportError{}}}
}

func (b *reportBuilder) update(fn func(r *Report)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.report)
}

func (b *reportBuilder) fail(row int, dossier, msg string) {
	b.update(func(r *Report) {
		r.Errors = append(r.Errors, ReportError{Row: row, DossierNumber: dossier, Message: msg})
	})
}

// build returns a copy with errors ordered by row.
func (b *reportBuilder) build() *Report {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.report
	out.Errors = append([]ReportError{}, b.report.Errors...)
	sort.SliceStable(out.Errors, func(i, j int) bool {
		if out.Errors[i].Row != out.Errors[j].Row {
			return out.Errors[i].Row < out.Errors[j].Row
		}
		return out.Errors[i].DossierNumber < out.Errors[j].DossierNumber
	})
	out.Success = len(out.Errors) == 0
	return &out
}
