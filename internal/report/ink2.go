package report

import (
	"fjacquet/sie-report/internal/aggregator"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/templatecache"

	"github.com/shopspring/decimal"
)

// Variable names with built-in handling in the INK2 schedule.
const (
	VarINK2Header    = "INK4_header"
	VarProfit        = "INK4.1"
	VarLoss          = "INK4.2"
	VarSchablon      = "INK4.6a"
	VarTaxableResult = "INK_skattemassigt_resultat"
	VarCalculatedTax = "INK_beraknad_skatt"
	VarPensionTax    = "INK_sarskild_loneskatt"

	// KeyPensionAdjustment is the override key carrying the manual
	// särskild löneskatt adjustment.
	KeyPensionAdjustment = "justering_sarskild_loneskatt"

	// VarYearResult is the RR row holding the result for the year.
	VarYearResult = "SumAretsResultat"
	// VarAllocationReserves is the BR row holding periodiseringsfonder.
	VarAllocationReserves = "SumPeriodiseringsfonder"
)

// MinGovBorrowingRate is the floor applied to statslaneranta when computing
// the schablonintäkt.
var MinGovBorrowingRate = decimal.RequireFromString("0.005")

// Ledger accounts holding periodiseringsfonder, used when BR has no
// SumPeriodiseringsfonder row.
const (
	allocationReservesLo = 2110
	allocationReservesHi = 2149
)

// aggregateRows are always recomputed, even when overridden.
var aggregateRows = map[string]bool{
	VarTaxableResult: true,
	VarCalculatedTax: true,
}

// IsAggregateRow reports whether an INK2 variable ignores overrides.
func IsAggregateRow(variable string) bool {
	return aggregateRows[variable]
}

var specialRows = map[string]bool{
	VarProfit:        true,
	VarLoss:          true,
	VarSchablon:      true,
	VarCalculatedTax: true,
	VarPensionTax:    true,
}

// INK2Input is the state an INK2 build reads besides the snapshot.
type INK2Input struct {
	Ledger *models.Ledger
	RR     []models.LineItem
	BR     []models.LineItem
	// Overrides replace the computed value of the named rows.
	Overrides map[string]decimal.Decimal
}

// BuildINK2 assembles the tax-adjustment schedule. Rows carry a single
// amount in CurrentAmount.
func (b *Builder) BuildINK2(snap *templatecache.Snapshot, in INK2Input) []models.LineItem {
	ledger := in.Ledger
	if ledger == nil {
		ledger = models.NewLedger()
	}

	templates := make([]models.RowTemplate, 0, len(snap.INK2))
	for _, t := range snap.INK2 {
		if t.VariableName == VarINK2Header {
			continue
		}
		templates = append(templates, t)
	}

	overrides := in.Overrides
	if overrides == nil {
		overrides = map[string]decimal.Decimal{}
	}

	return b.build(sectionInput{
		section:      models.SectionINK2,
		templates:    templates,
		constants:    snap.Constants,
		current:      ledger.Current,
		previous:     ledger.Previous,
		cross:        [][]models.LineItem{in.RR, in.BR},
		singlePeriod: true,
		overrides:    overrides,
		overridden: func(t models.RowTemplate) bool {
			_, ok := overrides[t.VariableName]
			return ok && t.VariableName != "" && !aggregateRows[t.VariableName]
		},
		specialRow: func(t models.RowTemplate) bool {
			return specialRows[t.VariableName]
		},
		special: func(t models.RowTemplate, r *resolver) decimal.Decimal {
			return b.specialValue(t, r, in, ledger)
		},
		implicitDeps: func(t models.RowTemplate) []string {
			if t.VariableName == VarCalculatedTax {
				return []string{VarTaxableResult}
			}
			return nil
		},
		details: func(t models.RowTemplate, rule *aggregator.Rule) []models.AccountDetail {
			if !t.ShowTag {
				return nil
			}
			details := rule.Contributions(ledger.Current)
			for i := range details {
				details[i].Description = snap.Description(details[i].AccountID)
			}
			return details
		},
	})
}

func (b *Builder) specialValue(t models.RowTemplate, r *resolver, in INK2Input, ledger *models.Ledger) decimal.Decimal {
	switch t.VariableName {
	case VarProfit:
		return decimal.Max(yearResult(in.RR), decimal.Zero)
	case VarLoss:
		if res := yearResult(in.RR); res.IsNegative() {
			return res.Neg()
		}
		return decimal.Zero
	case VarCalculatedTax:
		base, _ := r.Variable(VarTaxableResult)
		rate, _ := r.Constant(models.ConstTaxRate)
		return CorporateTax(base, rate)
	case VarSchablon:
		rate, _ := r.Constant(models.ConstGovBorrowingRate)
		return SchablonIncome(allocationReserveBase(in.BR, ledger), rate)
	case VarPensionTax:
		return in.Overrides[KeyPensionAdjustment]
	}
	return decimal.Zero
}

// CorporateTax is max(base, 0) × rate rounded half-up to whole kronor.
func CorporateTax(base, rate decimal.Decimal) decimal.Decimal {
	return decimal.Max(base, decimal.Zero).Mul(rate).Round(0)
}

// SchablonIncome is the imputed income on periodiseringsfonder:
// base × max(rate, 0.005), rounded to whole kronor. A negative base yields 0.
func SchablonIncome(base, rate decimal.Decimal) decimal.Decimal {
	if base.IsNegative() {
		return decimal.Zero
	}
	return base.Mul(decimal.Max(rate, MinGovBorrowingRate)).Round(0)
}

func yearResult(rr []models.LineItem) decimal.Decimal {
	if item, ok := models.FindByVariable(rr, VarYearResult); ok {
		return item.Amount()
	}
	return decimal.Zero
}

// allocationReserveBase is the prior-period periodiseringsfonder balance,
// taken from BR or, failing that, from the prior ledger accounts.
func allocationReserveBase(br []models.LineItem, ledger *models.Ledger) decimal.Decimal {
	if item, ok := models.FindByVariable(br, VarAllocationReserves); ok && item.PreviousAmount != nil {
		return *item.PreviousAmount
	}
	sum := decimal.Zero
	span := aggregator.NewIntervalSet(aggregator.Interval{Lo: allocationReservesLo, Hi: allocationReservesHi})
	for id, bal := range ledger.Previous {
		if n, ok := aggregator.AccountNumber(id); ok && span.Contains(n) {
			sum = sum.Add(bal)
		}
	}
	return sum.Neg()
}
