package report

import (
	"fjacquet/sie-report/internal/formula"
	"fjacquet/sie-report/internal/models"

	"github.com/shopspring/decimal"
)

// period selects which amount of a line item a formula reads.
type period int

const (
	periodCurrent period = iota
	periodPrevious
)

func (p period) String() string {
	if p == periodPrevious {
		return "previous"
	}
	return "current"
}

func (p period) amount(item models.LineItem) decimal.Decimal {
	if p == periodPrevious {
		return item.Previous()
	}
	return item.Amount()
}

// resolver is the formula.Env of one section build. Variables resolve against
// the section's own line items first, then the cross sections in order, then
// caller overrides.
type resolver struct {
	constants models.Constants
	own       []models.LineItem
	cross     [][]models.LineItem
	overrides map[string]decimal.Decimal
	balances  models.BalanceMap
	period    period

	unresolved []string
}

func (r *resolver) Constant(name string) (decimal.Decimal, bool) {
	return r.constants.Get(name)
}

func (r *resolver) Variable(name string) (decimal.Decimal, bool) {
	if item, ok := models.FindByVariable(r.own, name); ok {
		return r.period.amount(item), true
	}
	for _, items := range r.cross {
		if item, ok := models.FindByVariable(items, name); ok {
			return r.period.amount(item), true
		}
	}
	if v, ok := r.overrides[name]; ok {
		return v, true
	}
	r.unresolved = append(r.unresolved, name)
	return decimal.Zero, false
}

func (r *resolver) Account(id string) (decimal.Decimal, bool) {
	v, ok := r.balances[id]
	return v, ok
}

var _ formula.Env = (*resolver)(nil)
