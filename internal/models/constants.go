package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Constants maps a global constant name (tax rate, borrowing rate) to its
// value. Percentages are stored as fractions (20.6 -> 0.206).
type Constants map[string]decimal.Decimal

// Names of the global constants the INK2 schedule relies on.
const (
	ConstTaxRate          = "skattesats"
	ConstGovBorrowingRate = "statslaneranta"
	ConstPayrollTaxRate   = "sarskild_loneskatt"
)

// RateConstantNames are constants that are always rates. The loaders
// normalise values above 1 for these names from percent to fraction.
var RateConstantNames = map[string]bool{
	ConstTaxRate:          true,
	ConstGovBorrowingRate: true,
	ConstPayrollTaxRate:   true,
	"egenavgifter":        true,
	"arbetsgivaravgift":   true,
	"ranta_skattekonto":   true,
}

// Get returns the named constant.
func (c Constants) Get(name string) (decimal.Decimal, bool) {
	v, ok := c[name]
	return v, ok
}

// Names returns the constant names in ascending order.
func (c Constants) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy.
func (c Constants) Clone() Constants {
	out := make(Constants, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

var hundred = decimal.NewFromInt(100)

// NormalizeConstant converts a percentage to a fraction when the value is
// flagged as a percent, or when it is a known rate above 1.
func NormalizeConstant(name string, value decimal.Decimal, isPercent bool) decimal.Decimal {
	if isPercent || (RateConstantNames[name] && value.GreaterThan(decimal.NewFromInt(1))) {
		return value.Div(hundred)
	}
	return value
}
