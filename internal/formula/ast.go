package formula

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errDivisionByZero = errors.New("division by zero")
	errPrecision      = fmt.Errorf("precision must be an integer between -%d and %d", maxPlaces, maxPlaces)
)

// maxPlaces bounds the precision argument of floor and round.
const maxPlaces = 28

type node interface {
	eval(env Env) (decimal.Decimal, error)
}

type numberNode struct {
	val decimal.Decimal
}

func (n numberNode) eval(Env) (decimal.Decimal, error) {
	return n.val, nil
}

// identNode resolves a name: constant first, then a row variable, else 0.
type identNode struct {
	name string
}

func (n identNode) eval(env Env) (decimal.Decimal, error) {
	if v, ok := env.Constant(n.name); ok {
		return v, nil
	}
	if v, ok := env.Variable(n.name); ok {
		return v, nil
	}
	return decimal.Zero, nil
}

type accountNode struct {
	id string
}

func (n accountNode) eval(env Env) (decimal.Decimal, error) {
	if v, ok := env.Account(n.id); ok {
		return v, nil
	}
	return decimal.Zero, nil
}

type unaryNode struct {
	neg bool
	x   node
}

func (n unaryNode) eval(env Env) (decimal.Decimal, error) {
	v, err := n.x.eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	if n.neg {
		return v.Neg(), nil
	}
	return v, nil
}

type binaryNode struct {
	op   tokenKind
	l, r node
}

func (n binaryNode) eval(env Env) (decimal.Decimal, error) {
	l, err := n.l.eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	r, err := n.r.eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	switch n.op {
	case tokPlus:
		return l.Add(r), nil
	case tokMinus:
		return l.Sub(r), nil
	case tokStar:
		return l.Mul(r), nil
	case tokSlash:
		if r.IsZero() {
			return decimal.Zero, errDivisionByZero
		}
		return l.Div(r), nil
	}
	return decimal.Zero, errors.New("unknown operator " + n.op.String())
}

type callNode struct {
	fn   string
	args []node
}

func (n callNode) eval(env Env) (decimal.Decimal, error) {
	vals := make([]decimal.Decimal, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(env)
		if err != nil {
			return decimal.Zero, err
		}
		vals[i] = v
	}

	switch n.fn {
	case "floor":
		p, err := places(vals)
		if err != nil {
			return decimal.Zero, err
		}
		return vals[0].RoundFloor(p), nil
	case "round":
		p, err := places(vals)
		if err != nil {
			return decimal.Zero, err
		}
		return vals[0].Round(p), nil
	case "abs":
		return vals[0].Abs(), nil
	case "max":
		return decimal.Max(vals[0], vals[1:]...), nil
	case "min":
		return decimal.Min(vals[0], vals[1:]...), nil
	}
	return decimal.Zero, errors.New("unknown function " + n.fn)
}

// places returns the optional second argument as a precision.
func places(vals []decimal.Decimal) (int32, error) {
	if len(vals) < 2 {
		return 0, nil
	}
	p := vals[1]
	if !p.IsInteger() || p.Abs().GreaterThan(decimal.NewFromInt(maxPlaces)) {
		return 0, errPrecision
	}
	return int32(p.IntPart()), nil
}

// condNode is "if l cmp r = then"; false conditions yield 0.
type condNode struct {
	l, r node
	cmp  tokenKind
	then node
}

func (n condNode) eval(env Env) (decimal.Decimal, error) {
	l, err := n.l.eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	r, err := n.r.eval(env)
	if err != nil {
		return decimal.Zero, err
	}
	c := l.Cmp(r)
	var ok bool
	switch n.cmp {
	case tokGT:
		ok = c > 0
	case tokLT:
		ok = c < 0
	case tokGE:
		ok = c >= 0
	case tokLE:
		ok = c <= 0
	}
	if !ok {
		return decimal.Zero, nil
	}
	return n.then.eval(env)
}

// functions maps lower-case function names to their accepted argument counts.
var functions = map[string]struct{ min, max int }{
	"floor": {1, 2},
	"round": {1, 2},
	"abs":   {1, 1},
	"max":   {1, -1},
	"min":   {1, -1},
}

func lookupFunction(name string) (string, bool) {
	fn := strings.ToLower(name)
	_, ok := functions[fn]
	return fn, ok
}
