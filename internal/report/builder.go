// Package report assembles the RR, BR and INK2 report sections from a ledger
// and a template snapshot.
//
// Every section is built in two passes. The direct pass emits one line item
// per template: headers carry no amount, account rows are aggregated from the
// balance maps and calculated rows get a zero placeholder. The formula pass
// then evaluates calculated rows so that each row is computed after the
// calculated rows it references, falling back to ascending row_id. The
// result is sorted by row_id.
package report

import (
	"sort"
	"strings"

	"fjacquet/sie-report/internal/aggregator"
	"fjacquet/sie-report/internal/formula"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/templatecache"

	"github.com/shopspring/decimal"
)

// Builder assembles report sections. It holds no per-build state and is
// safe for concurrent use.
type Builder struct {
	logger logging.Logger
	agg    *aggregator.Aggregator
}

// NewBuilder returns a Builder.
func NewBuilder(logger logging.Logger) *Builder {
	logger = logging.OrDefault(logger)
	return &Builder{
		logger: logger,
		agg:    aggregator.New(logger),
	}
}

// BuildRR assembles the income statement.
func (b *Builder) BuildRR(snap *templatecache.Snapshot, ledger *models.Ledger) []models.LineItem {
	return b.build(sectionInput{
		section:   models.SectionRR,
		templates: snap.RR,
		constants: snap.Constants,
		current:   ledger.Current,
		previous:  ledger.Previous,
	})
}

// BuildBR assembles the balance sheet. BR formulas may reference RR rows.
func (b *Builder) BuildBR(snap *templatecache.Snapshot, ledger *models.Ledger, rr []models.LineItem) []models.LineItem {
	items := b.build(sectionInput{
		section:   models.SectionBR,
		templates: snap.BR,
		constants: snap.Constants,
		current:   ledger.Current,
		previous:  ledger.Previous,
		cross:     [][]models.LineItem{rr},
	})

	types := make(map[int]string, len(snap.BR))
	for _, t := range snap.BR {
		types[t.RowID] = BalanceClass(t)
	}
	for i := range items {
		items[i].Type = types[items[i].RowID]
	}
	return items
}

// BalanceClass classifies a BR template as asset, liability or equity.
func BalanceClass(t models.RowTemplate) string {
	switch strings.ToUpper(strings.TrimSpace(t.BalanceType)) {
	case models.BalanceTypeDebit:
		return models.TypeAsset
	case models.BalanceTypeCredit:
		if t.IncludeStart >= 2000 {
			return models.TypeEquity
		}
		return models.TypeLiability
	}
	return models.TypeAsset
}

// sectionInput is everything one section build reads.
type sectionInput struct {
	section      models.Section
	templates    []models.RowTemplate
	constants    models.Constants
	current      models.BalanceMap
	previous     models.BalanceMap
	cross        [][]models.LineItem
	singlePeriod bool

	// overrides are caller-supplied values for the INK2 recalculation path.
	overrides map[string]decimal.Decimal
	// overridden reports whether a template's value comes from overrides.
	overridden func(t models.RowTemplate) bool
	// specialRow reports rows computed by special instead of their formula.
	specialRow func(t models.RowTemplate) bool
	special    func(t models.RowTemplate, r *resolver) decimal.Decimal
	// implicitDeps names variables a special row reads.
	implicitDeps func(t models.RowTemplate) []string
	// details produces drill-down for a row, or nil.
	details func(t models.RowTemplate, rule *aggregator.Rule) []models.AccountDetail
}

func (in sectionInput) isOverridden(t models.RowTemplate) bool {
	return in.overridden != nil && in.overridden(t)
}

func (in sectionInput) isSpecial(t models.RowTemplate) bool {
	return in.specialRow != nil && in.specialRow(t)
}

func (b *Builder) build(in sectionInput) []models.LineItem {
	log := b.logger.WithField(logging.FieldSection, string(in.section))
	items := make([]models.LineItem, len(in.templates))

	// direct pass
	for i, t := range in.templates {
		item := models.NewLineItem(t, in.section)
		switch {
		case t.IsHeader():
		case in.isOverridden(t):
			item.CurrentAmount = models.DecimalPtr(in.overrides[t.VariableName])
			if !in.singlePeriod {
				item.PreviousAmount = models.DecimalPtr(decimal.Zero)
			}
		case t.IsCalculated || in.isSpecial(t):
			item.CurrentAmount = models.DecimalPtr(decimal.Zero)
			if !in.singlePeriod {
				item.PreviousAmount = models.DecimalPtr(decimal.Zero)
			}
		default:
			rule := b.agg.Compile(t)
			item.CurrentAmount = models.DecimalPtr(rule.Value(in.current))
			if !in.singlePeriod {
				item.PreviousAmount = models.DecimalPtr(rule.Value(in.previous))
			}
			if in.details != nil {
				item.AccountDetails = in.details(t, rule)
			}
		}
		items[i] = item
	}

	// formula pass
	var nodes []*formulaNode
	exprs := map[int]*formula.Expr{}
	for i, t := range in.templates {
		if t.IsHeader() || in.isOverridden(t) {
			continue
		}
		special := in.isSpecial(t)
		if !t.IsCalculated && !special {
			continue
		}
		node := &formulaNode{index: i, rowID: t.RowID}
		if special {
			if in.implicitDeps != nil {
				node.deps = in.implicitDeps(t)
			}
		} else if strings.TrimSpace(t.CalculationFormula) != "" {
			expr, err := formula.Compile(t.CalculationFormula)
			if err != nil {
				log.WithError(err).Warn("Invalid formula, row set to 0",
					logging.F(logging.FieldRowID, t.RowID),
					logging.F(logging.FieldFormula, t.CalculationFormula))
			} else {
				exprs[i] = expr
				node.deps = expr.Identifiers()
			}
		}
		nodes = append(nodes, node)
	}

	provider := func(name string) int {
		if _, ok := in.constants[name]; ok {
			return -1
		}
		for i, t := range in.templates {
			if t.VariableName == name {
				return i
			}
		}
		return -1
	}
	ordered, cyclic := formulaOrder(nodes, provider)
	if len(cyclic) > 0 {
		log.Warn("Circular formula references, evaluating in row order", logging.F("rows", cyclic))
	}

	periods := []period{periodCurrent}
	if !in.singlePeriod {
		periods = append(periods, periodPrevious)
	}
	for _, n := range ordered {
		t := in.templates[n.index]
		for _, p := range periods {
			r := &resolver{
				constants: in.constants,
				own:       items,
				cross:     in.cross,
				overrides: in.overrides,
				balances:  in.current,
				period:    p,
			}
			if p == periodPrevious {
				r.balances = in.previous
			}
			v := b.evaluate(log, t, exprs[n.index], r, in)
			if p == periodPrevious {
				items[n.index].PreviousAmount = models.DecimalPtr(v)
			} else {
				items[n.index].CurrentAmount = models.DecimalPtr(v)
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].RowID < items[j].RowID })
	log.Debug("Built section", logging.F(logging.FieldCount, len(items)), logging.F("formulas", len(ordered)))
	return items
}

// evaluate computes one calculated row for one period. Failures yield 0.
func (b *Builder) evaluate(log logging.Logger, t models.RowTemplate, expr *formula.Expr, r *resolver, in sectionInput) decimal.Decimal {
	if in.isSpecial(t) {
		return in.special(t, r)
	}
	if expr == nil {
		return decimal.Zero
	}
	v, err := expr.Eval(r)
	if err != nil {
		log.WithError(err).Warn("Formula evaluation failed, row set to 0",
			logging.F(logging.FieldRowID, t.RowID),
			logging.F(logging.FieldFormula, t.CalculationFormula),
			logging.F("period", r.period.String()))
		return decimal.Zero
	}
	if len(r.unresolved) > 0 {
		log.Debug("Unresolved formula operands read as 0",
			logging.F(logging.FieldRowID, t.RowID),
			logging.F(logging.FieldVariable, r.unresolved))
	}
	return v
}
