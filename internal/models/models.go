// Package models provides the data structures shared by the ledger parser,
// the template stores and the report assemblers.
package models

import (
	"fmt"
	"strings"
)

// Section identifies one of the three report sections.
type Section string

const (
	SectionRR   Section = "RR"   // income statement (resultaträkning)
	SectionBR   Section = "BR"   // balance sheet (balansräkning)
	SectionINK2 Section = "INK2" // tax-adjustment schedule
)

// Sections lists every section in build order.
var Sections = []Section{SectionRR, SectionBR, SectionINK2}

// ParseSection parses a section name case-insensitively.
func ParseSection(s string) (Section, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RR":
		return SectionRR, nil
	case "BR":
		return SectionBR, nil
	case "INK2", "INK":
		return SectionINK2, nil
	default:
		return "", fmt.Errorf("unknown section: %q", s)
	}
}

// Lower returns the lower case section name used for file and table names.
func (s Section) Lower() string {
	return strings.ToLower(string(s))
}

// Balance types used by BR templates.
const (
	BalanceTypeDebit  = "DEBIT"
	BalanceTypeCredit = "CREDIT"
)

// Balance sheet classifications.
const (
	TypeAsset     = "asset"
	TypeLiability = "liability"
	TypeEquity    = "equity"
)

// Sign overrides on row templates.
const (
	SignPositive = "+"
	SignNegative = "-"
)
