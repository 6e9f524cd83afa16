package formula

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type parser struct {
	toks   []token
	pos    int
	idents []string
	seen   map[string]bool
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, syntaxErr(t.pos, "expected %s, found %s", kind, describe(t))
	}
	return t, nil
}

func describe(t token) string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%q", t.text)
}

// parseFormula parses: formula := cond | expr.
func (p *parser) parseFormula() (node, error) {
	var root node
	var err error
	if t := p.peek(); t.kind == tokIdent && strings.EqualFold(t.text, "if") {
		p.next()
		root, err = p.parseCond()
	} else {
		root, err = p.parseExpr()
	}
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxErr(t.pos, "unexpected %s", describe(t))
	}
	return root, nil
}

// parseCond parses the remainder of: "if" expr cmp expr "=" expr.
func (p *parser) parseCond() (node, error) {
	l, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	cmp := p.next()
	switch cmp.kind {
	case tokGT, tokLT, tokGE, tokLE:
	default:
		return nil, syntaxErr(cmp.pos, "expected comparison, found %s", describe(cmp))
	}
	r, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokAssign); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return condNode{l: l, r: r, cmp: cmp.kind, then: then}, nil
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, l: left, r: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokStar && op != tokSlash {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, l: left, r: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{neg: true, x: x}, nil
	case tokPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, syntaxErr(t.pos, "invalid number %q", t.text)
		}
		return numberNode{val: v}, nil
	case tokAccount:
		return accountNode{id: t.text}, nil
	case tokLParen:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return x, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.parseCall(t)
		}
		if strings.EqualFold(t.text, "if") {
			return nil, syntaxErr(t.pos, "'if' is only allowed at the start of a formula")
		}
		p.addIdent(t.text)
		return identNode{name: t.text}, nil
	}
	return nil, syntaxErr(t.pos, "unexpected %s", describe(t))
}

// parseCall parses name "(" args ")". konto(1930) is an account reference.
func (p *parser) parseCall(name token) (node, error) {
	p.next()

	if strings.EqualFold(name.text, "konto") {
		num, err := p.expect(tokNumber)
		if err != nil {
			return nil, err
		}
		if strings.Contains(num.text, ".") {
			return nil, syntaxErr(num.pos, "invalid account number %q", num.text)
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return accountNode{id: num.text}, nil
	}

	fn, ok := lookupFunction(name.text)
	if !ok {
		return nil, syntaxErr(name.pos, "unknown function %q", name.text)
	}

	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}

	arity := functions[fn]
	if len(args) < arity.min || (arity.max >= 0 && len(args) > arity.max) {
		return nil, syntaxErr(name.pos, "%s takes %s, got %d", fn, arityText(arity.min, arity.max), len(args))
	}
	return callNode{fn: fn, args: args}, nil
}

func arityText(min, max int) string {
	switch {
	case max < 0:
		return fmt.Sprintf("at least %d argument(s)", min)
	case min == max:
		return fmt.Sprintf("%d argument(s)", min)
	default:
		return fmt.Sprintf("%d to %d arguments", min, max)
	}
}

func (p *parser) addIdent(name string) {
	if p.seen == nil {
		p.seen = map[string]bool{}
	}
	if !p.seen[name] {
		p.seen[name] = true
		p.idents = append(p.idents, name)
	}
}
