package models

import "github.com/shopspring/decimal"

// AccountDetail is one account's contribution to a row, for drill-down.
type AccountDetail struct {
	AccountID   string          `json:"account_id" yaml:"account_id"`
	Description string          `json:"description" yaml:"description"`
	Balance     decimal.Decimal `json:"balance" yaml:"balance"`
}

// LineItem is one assembled report line. Header rows carry nil amounts.
// INK2 lines use CurrentAmount as their single amount and leave
// PreviousAmount nil.
type LineItem struct {
	RowID              int              `json:"id"`
	Title              string           `json:"label"`
	CurrentAmount      *decimal.Decimal `json:"current_amount"`
	PreviousAmount     *decimal.Decimal `json:"previous_amount"`
	Level              int              `json:"level"`
	Bold               bool             `json:"bold"`
	Section            Section          `json:"section"`
	Style              string           `json:"style"`
	VariableName       string           `json:"variable_name"`
	IsCalculated       bool             `json:"is_calculated"`
	CalculationFormula string           `json:"calculation_formula,omitempty"`
	ShowAmount         bool             `json:"show_amount"`
	Block              string           `json:"block_group,omitempty"`
	AlwaysShow         *bool            `json:"always_show"`
	Type               string           `json:"type,omitempty"`
	ShowTag            bool             `json:"show_tag,omitempty"`
	Explainer          string           `json:"explainer,omitempty"`
	AccountDetails     []AccountDetail  `json:"account_details,omitempty"`
}

// NewLineItem copies the presentation fields of a template into a line item
// without amounts.
func NewLineItem(t RowTemplate, section Section) LineItem {
	var always *bool
	if t.AlwaysShow != nil {
		v := *t.AlwaysShow
		always = &v
	}
	return LineItem{
		RowID:              t.RowID,
		Title:              t.Title,
		Level:              t.Level(),
		Bold:               t.Bold(),
		Section:            section,
		Style:              t.Style,
		VariableName:       t.VariableName,
		IsCalculated:       t.IsCalculated,
		CalculationFormula: t.CalculationFormula,
		ShowAmount:         t.ShowAmount,
		Block:              t.Block,
		AlwaysShow:         always,
		ShowTag:            t.ShowTag,
		Explainer:          t.Explainer,
	}
}

// Amount returns the current amount, or zero for headers. INK2 callers use
// this as the row's single amount.
func (l LineItem) Amount() decimal.Decimal {
	if l.CurrentAmount == nil {
		return decimal.Zero
	}
	return *l.CurrentAmount
}

// Previous returns the previous amount, or zero when nil.
func (l LineItem) Previous() decimal.Decimal {
	if l.PreviousAmount == nil {
		return decimal.Zero
	}
	return *l.PreviousAmount
}

// Visible applies the always_show tri-state: true shows the row, false hides
// it, nil shows it only when an amount is nonzero. Header rows with an unset
// flag are shown.
func Visible(l LineItem) bool {
	if l.AlwaysShow != nil {
		return *l.AlwaysShow
	}
	if !l.ShowAmount {
		return true
	}
	return !l.Amount().IsZero() || !l.Previous().IsZero()
}

// FindByVariable returns the first line item with the given variable name.
func FindByVariable(items []LineItem, name string) (LineItem, bool) {
	for _, it := range items {
		if it.VariableName == name {
			return it, true
		}
	}
	return LineItem{}, false
}
