// Package aggregator computes a report row's raw value from the ledger
// balances selected by the row's account membership rules.
package aggregator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"

	"github.com/shopspring/decimal"
)

// Accounts whose lower bound falls in this range are stored credit-positive
// in the ledger and shown with inverted sign.
const (
	InvertRangeLo = 2000
	InvertRangeHi = 8989
)

// Aggregator compiles row templates into account-selection rules.
type Aggregator struct {
	logger logging.Logger
}

// New returns an Aggregator.
func New(logger logging.Logger) *Aggregator {
	return &Aggregator{logger: logging.OrDefault(logger)}
}

// membership is one side (include or exclude) of a rule.
type membership struct {
	ranges IntervalSet
	exact  map[string]int
}

func (m membership) weight(accountID string) int {
	w := m.exact[accountID]
	if n, ok := AccountNumber(accountID); ok {
		w += m.ranges.Weight(n)
	}
	return w
}

// Rule is a compiled membership rule for one template.
type Rule struct {
	include      membership
	exclude      membership
	hasRule      bool
	invert       bool
	signOverride string
}

// Compile builds the rule for tpl. Unparseable list entries are logged and
// ignored.
func (a *Aggregator) Compile(tpl models.RowTemplate) *Rule {
	log := a.logger.WithFields(
		logging.F(logging.FieldRowID, tpl.RowID),
		logging.F(logging.FieldVariable, tpl.VariableName))

	var incRanges, excRanges []Interval
	if tpl.HasIncludeRange() {
		incRanges = append(incRanges, Interval{Lo: tpl.IncludeStart, Hi: tpl.IncludeEnd})
	}
	if tpl.HasExcludeRange() {
		excRanges = append(excRanges, Interval{Lo: tpl.ExcludeStart, Hi: tpl.ExcludeEnd})
	}
	incList, incExact := parseAccountList(tpl.IncludeList, log)
	excList, excExact := parseAccountList(tpl.ExcludeList, log)

	return &Rule{
		include:      membership{ranges: NewIntervalSet(append(incRanges, incList...)...), exact: incExact},
		exclude:      membership{ranges: NewIntervalSet(append(excRanges, excList...)...), exact: excExact},
		hasRule:      tpl.HasMembership(),
		invert:       ShouldInvertSign(tpl),
		signOverride: strings.TrimSpace(tpl.SignOverride),
	}
}

// ComputeRowValue returns the row's value over balances.
func (a *Aggregator) ComputeRowValue(tpl models.RowTemplate, balances models.BalanceMap) decimal.Decimal {
	return a.Compile(tpl).Value(balances)
}

// Contributions returns the row's per-account contributions.
func (a *Aggregator) Contributions(tpl models.RowTemplate, balances models.BalanceMap) []models.AccountDetail {
	return a.Compile(tpl).Contributions(balances)
}

// raw returns the included-minus-excluded sum before any sign handling.
func (r *Rule) raw(balances models.BalanceMap) decimal.Decimal {
	total := decimal.Zero
	for id, bal := range balances {
		if w := r.include.weight(id) - r.exclude.weight(id); w != 0 {
			total = total.Add(bal.Mul(decimal.NewFromInt(int64(w))))
		}
	}
	return total
}

// Value returns the row value: the raw sum with the sign override applied,
// or otherwise negated when the rule selects inverted-sign accounts.
func (r *Rule) Value(balances models.BalanceMap) decimal.Decimal {
	if !r.hasRule {
		return decimal.Zero
	}
	total := r.raw(balances)
	return total.Mul(r.signFactor(total))
}

// signFactor is +1 or -1 such that raw * factor is the row value.
func (r *Rule) signFactor(raw decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	switch r.signOverride {
	case models.SignPositive:
		if raw.IsNegative() {
			return one.Neg()
		}
		return one
	case models.SignNegative:
		if raw.IsPositive() {
			return one.Neg()
		}
		return one
	}
	if r.invert {
		return one.Neg()
	}
	return one
}

// Contributions lists every account with a nonzero contribution to the row,
// signed so the contributions sum to Value. Ordered by account id.
func (r *Rule) Contributions(balances models.BalanceMap) []models.AccountDetail {
	if !r.hasRule {
		return nil
	}
	factor := r.signFactor(r.raw(balances))

	var out []models.AccountDetail
	for id, bal := range balances {
		w := r.include.weight(id) - r.exclude.weight(id)
		if w == 0 {
			continue
		}
		c := bal.Mul(decimal.NewFromInt(int64(w))).Mul(factor)
		if c.IsZero() {
			continue
		}
		out = append(out, models.AccountDetail{AccountID: id, Balance: c})
	}
	sort.Slice(out, func(i, j int) bool { return lessAccount(out[i].AccountID, out[j].AccountID) })
	return out
}

// ShouldInvertSign reports whether the include rule's lower bound, any
// include-list range start or any include-list single id falls in 2000-8989.
func ShouldInvertSign(tpl models.RowTemplate) bool {
	if tpl.HasIncludeRange() && inInvertRange(tpl.IncludeStart) {
		return true
	}
	for _, entry := range splitList(tpl.IncludeList) {
		lo := entry
		if i := strings.Index(entry, "-"); i > 0 {
			lo = entry[:i]
		}
		if n, err := strconv.Atoi(strings.TrimSpace(lo)); err == nil && inInvertRange(n) {
			return true
		}
	}
	return false
}

func inInvertRange(n int) bool {
	return n >= InvertRangeLo && n <= InvertRangeHi
}

func splitList(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseAccountList parses "1930;4910-4931;7000". Sub-ranges become
// intervals; single ids match by exact string.
func parseAccountList(list string, log logging.Logger) ([]Interval, map[string]int) {
	var ranges []Interval
	exact := map[string]int{}
	for _, entry := range splitList(list) {
		if i := strings.Index(entry, "-"); i > 0 {
			iv, err := parseRange(entry[:i], entry[i+1:])
			if err != nil {
				log.WithError(err).Warn("Ignoring invalid account range", logging.F(logging.FieldAccount, entry))
				continue
			}
			ranges = append(ranges, iv)
			continue
		}
		exact[entry]++
	}
	return ranges, exact
}

func parseRange(lo, hi string) (Interval, error) {
	l, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return Interval{}, fmt.Errorf("invalid range start %q: %w", lo, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return Interval{}, fmt.Errorf("invalid range end %q: %w", hi, err)
	}
	return Interval{Lo: l, Hi: h}, nil
}

// AccountNumber returns the numeric value of a canonical account id.
// "01930" and "19A0" never match a numeric range.
func AccountNumber(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || strconv.Itoa(n) != id {
		return 0, false
	}
	return n, true
}

func lessAccount(a, b string) bool {
	na, aok := AccountNumber(a)
	nb, bok := AccountNumber(b)
	if aok && bok {
		return na < nb
	}
	return a < b
}
