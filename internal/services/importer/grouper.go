package importer

import "strings"

const (
	DefaultCountry        = "BE"
	DefaultDurationMonths = 36
)

type GroupOptions struct {
	DefaultCountry        string
	DefaultDurationMonths int
}

func (o GroupOptions) withDefaults() GroupOptions {
	if o.DefaultCountry == "" {
		o.DefaultCountry = DefaultCountry
	}
	if o.DefaultDurationMonths <= 0 {
		o.DefaultDurationMonths = DefaultDurationMonths
	}
	return o
}

// Group folds rows into one contract per dossier number, in order of first
// appearance. Rows of one dossier need not be adjacent.
func Group(rows []RawRow, opts GroupOptions) []GroupedContract {
	opts = opts.withDefaults()

	index := make(map[string]int)
	var contracts []GroupedContract

	for _, row := range rows {
		key := strings.TrimSpace(row.DossierNumber)
		if key == "" {
			continue
		}

		i, ok := index[key]
		if !ok {
			i = len(contracts)
			index[key] = i
			contracts = append(contracts, newGroupedContract(key, row, opts))
		}

		gc := &contracts[i]
		gc.RowCount++
		if row.EquipmentTitle != "" {
			gc.Equipment = append(gc.Equipment, equipmentFromRow(row))
		}
	}

	return contracts
}

func newGroupedContract(dossier string, row RawRow, opts GroupOptions) GroupedContract {
	country := strings.ToUpper(row.ClientCountry)
	if country == "" {
		country = opts.DefaultCountry
	}

	return GroupedContract{
		DossierNumber: dossier,
		SourceLine:    row.Line,
		Client: ClientIdentity{
			Name:       row.ClientName,
			Company:    row.ClientCompany,
			Email:      row.ClientEmail,
			Phone:      row.ClientPhone,
			VATNumber:  row.ClientVATNumber,
			Address:    row.ClientAddress,
			City:       row.ClientCity,
			PostalCode: row.ClientPostalCode,
			Country:    country,
		},
		ContractNumber:    row.ContractNumber,
		InvoiceNumber:     row.InvoiceNumber,
		MonthlyPayment:    parseAmount(row.MonthlyPayment),
		LeaserName:        row.LeaserName,
		Status:            row.Status,
		FinancedAmount:    parseAmount(row.FinancedAmount),
		DurationMonths:    parsePositiveInt(row.ContractDuration, opts.DefaultDurationMonths),
		StartDate:         ParseDate(row.ContractStartDate),
		EndDate:           ParseDate(row.ContractEndDate),
		InvoiceDate:       ParseDate(row.InvoiceDate),
		BillingEntityName: row.BillingEntity,
		Equipment:         []EquipmentLine{},
	}
}

func equipmentFromRow(row RawRow) EquipmentLine {
	purchase := parseAmount(row.EquipmentPurchasePrice)
	selling := purchase
	if strings.TrimSpace(row.EquipmentSellingPrice) != "" {
		selling = parseAmount(row.EquipmentSellingPrice)
	}
	return EquipmentLine{
		Title:         row.EquipmentTitle,
		Quantity:      parsePositiveInt(row.EquipmentQuantity, 1),
		PurchasePrice: purchase,
		SellingPrice:  selling,
	}
}
