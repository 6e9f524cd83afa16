package report

import (
	"fjacquet/sie-report/internal/models"

	"github.com/shopspring/decimal"
)

// Accounts read by the pension tax summary.
const (
	AccountPensionPremiums = "7410"
	AccountPensionTax      = "7531"
)

// PensionTaxSummary compares the särskild löneskatt booked in the ledger with
// the tax due on the booked pension premiums.
type PensionTaxSummary struct {
	Premiums      decimal.Decimal `json:"pension_premiums"`
	BookedTax     decimal.Decimal `json:"booked_tax"`
	Rate          decimal.Decimal `json:"rate"`
	CalculatedTax decimal.Decimal `json:"calculated_tax"`
	// Adjustment is CalculatedTax - BookedTax, the suggested
	// justering_sarskild_loneskatt.
	Adjustment decimal.Decimal `json:"adjustment"`
}

// PensionTax summarises the current period's pension premiums and payroll
// tax.
func PensionTax(ledger *models.Ledger, constants models.Constants) PensionTaxSummary {
	if ledger == nil {
		ledger = models.NewLedger()
	}
	rate, _ := constants.Get(models.ConstPayrollTaxRate)
	premiums := ledger.Current.Get(AccountPensionPremiums).Abs()
	booked := ledger.Current.Get(AccountPensionTax).Abs()
	calculated := premiums.Mul(rate)
	return PensionTaxSummary{
		Premiums:      premiums,
		BookedTax:     booked,
		Rate:          rate,
		CalculatedTax: calculated,
		Adjustment:    calculated.Sub(booked),
	}
}
