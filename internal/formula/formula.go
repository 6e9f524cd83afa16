// Package formula implements the small expression language used by
// calculated report rows: decimal arithmetic over row variables, global
// constants and account balances, with a handful of rounding functions and a
// single-branch conditional.
//
//	SumRorelseintakter + SumRorelsekostnader
//	floor(INK_skattemassigt_resultat, -2)
//	if SumAretsResultat > 0 = SumAretsResultat * skattesats
//	#1930 + konto(1940)
package formula

import (
	"errors"

	"fjacquet/sie-report/internal/parsererror"

	"github.com/shopspring/decimal"
)

// Env resolves the operands of a formula.
type Env interface {
	// Constant returns a global constant such as a tax rate.
	Constant(name string) (decimal.Decimal, bool)
	// Variable returns another row's resolved value for the period being
	// computed.
	Variable(name string) (decimal.Decimal, bool)
	// Account returns a raw account balance for the period being computed.
	Account(id string) (decimal.Decimal, bool)
}

// Expr is a compiled formula. It is immutable and safe for concurrent use.
type Expr struct {
	src    string
	root   node
	idents []string
}

// Compile parses src. The returned error is a *parsererror.FormulaError.
func Compile(src string) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, formulaError(src, err)
	}
	p := &parser{toks: toks}
	root, err := p.parseFormula()
	if err != nil {
		return nil, formulaError(src, err)
	}
	return &Expr{src: src, root: root, idents: p.idents}, nil
}

func formulaError(src string, err error) *parsererror.FormulaError {
	pos := -1
	var se *syntaxError
	if errors.As(err, &se) {
		pos = se.pos
	}
	return &parsererror.FormulaError{Formula: src, Pos: pos, Msg: err.Error()}
}

// Eval evaluates the formula. Unknown identifiers and missing accounts are
// zero; the only evaluation error is division by zero.
func (e *Expr) Eval(env Env) (decimal.Decimal, error) {
	v, err := e.root.eval(env)
	if err != nil {
		return decimal.Zero, &parsererror.FormulaError{Formula: e.src, Pos: -1, Msg: err.Error()}
	}
	return v, nil
}

// Identifiers returns the distinct identifiers referenced by the formula, in
// order of first appearance. Function names and account references are not
// included.
func (e *Expr) Identifiers() []string {
	out := make([]string, len(e.idents))
	copy(out, e.idents)
	return out
}

// String returns the source text.
func (e *Expr) String() string {
	return e.src
}

// Evaluate compiles and evaluates src in one step.
func Evaluate(src string, env Env) (decimal.Decimal, error) {
	expr, err := Compile(src)
	if err != nil {
		return decimal.Zero, err
	}
	return expr.Eval(env)
}

// MapEnv is an Env backed by plain maps.
type MapEnv struct {
	Constants map[string]decimal.Decimal
	Variables map[string]decimal.Decimal
	Accounts  map[string]decimal.Decimal
}

// Constant implements Env.
func (m MapEnv) Constant(name string) (decimal.Decimal, bool) {
	v, ok := m.Constants[name]
	return v, ok
}

// Variable implements Env.
func (m MapEnv) Variable(name string) (decimal.Decimal, bool) {
	v, ok := m.Variables[name]
	return v, ok
}

// Account implements Env.
func (m MapEnv) Account(id string) (decimal.Decimal, bool) {
	v, ok := m.Accounts[id]
	return v, ok
}

var _ Env = MapEnv{}

