package importer

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRow is one retained data line of an import file, already mapped onto
// the known columns. Line follows the template numbering: the header is
// line 1, so the i-th retained row is line i+2.
type RawRow struct {
	Line int `json:"line"`

	DossierNumber string `json:"dossier_number" validate:"required"`

	ClientName       string `json:"client_name" validate:"required_without=ClientCompany"`
	ClientCompany    string `json:"client_company" validate:"required_without=ClientName"`
	ClientEmail      string `json:"client_email,omitempty"`
	ClientPhone      string `json:"client_phone,omitempty"`
	ClientVATNumber  string `json:"client_vat_number,omitempty"`
	ClientAddress    string `json:"client_address,omitempty"`
	ClientCity       string `json:"client_city,omitempty"`
	ClientPostalCode string `json:"client_postal_code,omitempty"`
	ClientCountry    string `json:"client_country,omitempty"`

	ContractNumber    string `json:"contract_number,omitempty"`
	InvoiceNumber     string `json:"invoice_number,omitempty"`
	MonthlyPayment    string `json:"monthly_payment,omitempty"`
	LeaserName        string `json:"leaser_name,omitempty"`
	Status            string `json:"status,omitempty"`
	FinancedAmount    string `json:"financed_amount,omitempty"`
	ContractDuration  string `json:"contract_duration,omitempty"`
	ContractStartDate string `json:"contract_start_date,omitempty"`
	ContractEndDate   string `json:"contract_end_date,omitempty"`
	InvoiceDate       string `json:"invoice_date,omitempty"`
	BillingEntity     string `json:"billing_entity,omitempty"`

	EquipmentTitle         string `json:"equipment_title,omitempty"`
	EquipmentQuantity      string `json:"equipment_quantity,omitempty"`
	EquipmentPurchasePrice string `json:"equipment_purchase_price,omitempty"`
	EquipmentSellingPrice  string `json:"equipment_selling_price,omitempty"`
}

// HasClient reports whether the row names a client by name or company.
func (r RawRow) HasClient() bool {
	return r.ClientName != "" || r.ClientCompany != ""
}

type ValidationIssue struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type EquipmentLine struct {
	Title         string          `json:"title"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
}

// ClientIdentity holds the client fields a contract carries. Matching only
// looks at Name, Company and VATNumber; the rest is used when the client has
// to be created.
type ClientIdentity struct {
	Name       string `json:"name"`
	Company    string `json:"company"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	VATNumber  string `json:"vat_number,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

// DisplayName prefers the company over the person name.
func (c ClientIdentity) DisplayName() string {
	if c.Company != "" {
		return c.Company
	}
	return c.Name
}

// GroupedContract folds every row of one dossier. The first row supplies the
// contract level fields; every row with an equipment title adds a line.
type GroupedContract struct {
	DossierNumber string `json:"dossier_number"`
	SourceLine    int    `json:"source_line"`
	RowCount      int    `json:"row_count"`

	Client ClientIdentity `json:"client"`

	ContractNumber    string          `json:"contract_number,omitempty"`
	InvoiceNumber     string          `json:"invoice_number,omitempty"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment"`
	LeaserName        string          `json:"leaser_name,omitempty"`
	Status            string          `json:"status,omitempty"`
	FinancedAmount    decimal.Decimal `json:"financed_amount"`
	DurationMonths    int             `json:"duration_months"`
	StartDate         *time.Time      `json:"start_date,omitempty"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	InvoiceDate       *time.Time      `json:"invoice_date,omitempty"`
	BillingEntityName string          `json:"billing_entity_name,omitempty"`

	Equipment []EquipmentLine `json:"equipment"`
}

// EquipmentTotal is the sum of selling price times quantity.
func (g GroupedContract) EquipmentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range g.Equipment {
		total = total.Add(line.SellingPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
