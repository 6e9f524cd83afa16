package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceMap maps an account identifier to its balance for one period.
type BalanceMap map[string]decimal.Decimal

// Get returns the balance of an account, zero when absent.
func (b BalanceMap) Get(accountID string) decimal.Decimal {
	if v, ok := b[accountID]; ok {
		return v
	}
	return decimal.Zero
}

// Clone returns an independent copy.
func (b BalanceMap) Clone() BalanceMap {
	out := make(BalanceMap, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// CompanyInfo is the company metadata found in the ledger header records.
type CompanyInfo struct {
	Name               string    `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	OrganizationNumber string    `json:"organization_number,omitempty" yaml:"organization_number,omitempty"`
	FiscalYear         int       `json:"fiscal_year,omitempty" yaml:"fiscal_year,omitempty"`
	StartDate          time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate            time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	PreviousStartDate  time.Time `json:"previous_start_date,omitempty" yaml:"previous_start_date,omitempty"`
	PreviousEndDate    time.Time `json:"previous_end_date,omitempty" yaml:"previous_end_date,omitempty"`
}

// ParseStats holds aggregate counts from a ledger scan. Individual malformed
// lines are never reported.
type ParseStats struct {
	Lines   int `json:"lines"`
	Records int `json:"records"`
	Skipped int `json:"skipped"`
}

// Ledger is the result of parsing one ledger export.
type Ledger struct {
	Current  BalanceMap  `json:"current_accounts"`
	Previous BalanceMap  `json:"previous_accounts"`
	Company  CompanyInfo `json:"company_info"`
	Stats    ParseStats  `json:"stats"`
}

// NewLedger returns a Ledger with empty, non-nil balance maps.
func NewLedger() *Ledger {
	return &Ledger{
		Current:  BalanceMap{},
		Previous: BalanceMap{},
	}
}
