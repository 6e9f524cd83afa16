package formula

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokAccount
	tokLParen
	tokRParen
	tokComma
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokGT
	tokLT
	tokGE
	tokLE
	tokAssign
)

var tokenNames = map[tokenKind]string{
	tokEOF:     "end of formula",
	tokNumber:  "number",
	tokIdent:   "identifier",
	tokAccount: "account reference",
	tokLParen:  "'('",
	tokRParen:  "')'",
	tokComma:   "','",
	tokPlus:    "'+'",
	tokMinus:   "'-'",
	tokStar:    "'*'",
	tokSlash:   "'/'",
	tokGT:      "'>'",
	tokLT:      "'<'",
	tokGE:      "'>='",
	tokLE:      "'<='",
	tokAssign:  "'='",
}

func (k tokenKind) String() string {
	return tokenNames[k]
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits src into tokens. Account references are written "#1930".
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		start := i

		switch {
		case unicode.IsSpace(r):
			i += size
			continue
		case r >= '0' && r <= '9' || r == '.' && i+1 < len(src) && isDigit(src[i+1]):
			i = scanNumber(src, i)
			toks = append(toks, token{kind: tokNumber, text: src[start:i], pos: start})
			continue
		case r == '#':
			i++
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			if i == start+1 {
				return nil, syntaxErr(start, "expected account number after '#'")
			}
			toks = append(toks, token{kind: tokAccount, text: src[start+1 : i], pos: start})
			continue
		case isIdentStart(r):
			i += size
			for i < len(src) {
				r2, s2 := utf8.DecodeRuneInString(src[i:])
				if !isIdentPart(r2) {
					break
				}
				i += s2
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
			continue
		}

		var kind tokenKind
		switch r {
		case '(':
			kind = tokLParen
		case ')':
			kind = tokRParen
		case ',':
			kind = tokComma
		case '+':
			kind = tokPlus
		case '-':
			kind = tokMinus
		case '*':
			kind = tokStar
		case '/':
			kind = tokSlash
		case '=':
			kind = tokAssign
		case '>':
			kind = tokGT
			if i+1 < len(src) && src[i+1] == '=' {
				kind = tokGE
				i++
			}
		case '<':
			kind = tokLT
			if i+1 < len(src) && src[i+1] == '=' {
				kind = tokLE
				i++
			}
		default:
			return nil, syntaxErr(start, "unexpected character %q", r)
		}
		i += size
		toks = append(toks, token{kind: kind, text: src[start:i], pos: start})
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func scanNumber(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	return i
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// syntaxError is a lex or parse failure at a byte offset.
type syntaxError struct {
	pos int
	msg string
}

func (e *syntaxError) Error() string {
	return e.msg
}

func syntaxErr(pos int, format string, args ...interface{}) error {
	return &syntaxError{pos: pos, msg: fmt.Sprintf(format, args...)}
}
