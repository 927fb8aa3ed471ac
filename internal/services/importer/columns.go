package importer

import "strings"

type fieldSetter func(r *RawRow, v string)

// columnTable maps a normalized header to the RawRow field it fills.
var columnTable = map[string]fieldSetter{
	"dossier_number": func(r *RawRow, v string) { r.DossierNumber = v },

	"client_name":        func(r *RawRow, v string) { r.ClientName = v },
	"client_company":     func(r *RawRow, v string) { r.ClientCompany = v },
	"client_email":       func(r *RawRow, v string) { r.ClientEmail = v },
	"client_phone":       func(r *RawRow, v string) { r.ClientPhone = v },
	"client_vat_number":  func(r *RawRow, v string) { r.ClientVATNumber = v },
	"client_address":     func(r *RawRow, v string) { r.ClientAddress = v },
	"client_city":        func(r *RawRow, v string) { r.ClientCity = v },
	"client_postal_code": func(r *RawRow, v string) { r.ClientPostalCode = v },
	"client_country":     func(r *RawRow, v string) { r.ClientCountry = v },

	"contract_number":     func(r *RawRow, v string) { r.ContractNumber = v },
	"invoice_number":      func(r *RawRow, v string) { r.InvoiceNumber = v },
	"monthly_payment":     func(r *RawRow, v string) { r.MonthlyPayment = v },
	"leaser_name":         func(r *RawRow, v string) { r.LeaserName = v },
	"status":              func(r *RawRow, v string) { r.Status = v },
	"financed_amount":     func(r *RawRow, v string) { r.FinancedAmount = v },
	"contract_duration":   func(r *RawRow, v string) { r.ContractDuration = v },
	"contract_start_date": func(r *RawRow, v string) { r.ContractStartDate = v },
	"contract_end_date":   func(r *RawRow, v string) { r.ContractEndDate = v },
	"invoice_date":        func(r *RawRow, v string) { r.InvoiceDate = v },
	"billing_entity":      func(r *RawRow, v string) { r.BillingEntity = v },

	"equipment_title":          func(r *RawRow, v string) { r.EquipmentTitle = v },
	"equipment_quantity":       func(r *RawRow, v string) { r.EquipmentQuantity = v },
	"equipment_purchase_price": func(r *RawRow, v string) { r.EquipmentPurchasePrice = v },
	"equipment_selling_price":  func(r *RawRow, v string) { r.EquipmentSellingPrice = v },
}

var columnAliases = map[string]string{
	"dossier":             "dossier_number",
	"dossier_no":          "dossier_number",
	"vat_number":          "client_vat_number",
	"client_vat":          "client_vat_number",
	"billing_entity_name": "billing_entity",
	"leaser":              "leaser_name",
	"duration":            "contract_duration",
	"start_date":          "contract_start_date",
	"end_date":            "contract_end_date",
	"quantity":            "equipment_quantity",
	"purchase_price":      "equipment_purchase_price",
	"selling_price":       "equipment_selling_price",
}

const requiredColumn = "dossier_number"

// NormalizeHeader lower-cases a header token, trims it and replaces inner
// whitespace runs with a single underscore.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(unquote(strings.TrimSpace(h))), "_"))
}

func canonicalColumn(normalized string) string {
	if alias, ok := columnAliases[normalized]; ok {
		return alias
	}
	return normalized
}

// KnownColumns lists the canonical column names in no particular order.
func KnownColumns() []string {
	cols := make([]string, 0, len(columnTable))
	for name := range columnTable {
		cols = append(cols, name)
	}
	return cols
}
