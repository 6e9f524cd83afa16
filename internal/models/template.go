package models

import "strings"

// RowTemplate is the declarative definition of one report line.
type RowTemplate struct {
	ID                 int     `json:"id,omitempty" yaml:"id,omitempty"`
	RowID              int     `json:"row_id" yaml:"row_id"`
	Title              string  `json:"row_title" yaml:"row_title"`
	Section            Section `json:"section,omitempty" yaml:"section,omitempty"`
	Style              string  `json:"style" yaml:"style"`
	VariableName       string  `json:"variable_name" yaml:"variable_name"`
	ElementName        string  `json:"element_name,omitempty" yaml:"element_name,omitempty"`
	IncludeStart       int     `json:"accounts_included_start,omitempty" yaml:"accounts_included_start,omitempty"`
	IncludeEnd         int     `json:"accounts_included_end,omitempty" yaml:"accounts_included_end,omitempty"`
	IncludeList        string  `json:"accounts_included,omitempty" yaml:"accounts_included,omitempty"`
	ExcludeStart       int     `json:"accounts_excluded_start,omitempty" yaml:"accounts_excluded_start,omitempty"`
	ExcludeEnd         int     `json:"accounts_excluded_end,omitempty" yaml:"accounts_excluded_end,omitempty"`
	ExcludeList        string  `json:"accounts_excluded,omitempty" yaml:"accounts_excluded,omitempty"`
	IsCalculated       bool    `json:"is_calculated" yaml:"is_calculated"`
	CalculationFormula string  `json:"calculation_formula,omitempty" yaml:"calculation_formula,omitempty"`
	ShowAmount         bool    `json:"show_amount" yaml:"show_amount"`
	AlwaysShow         *bool   `json:"always_show,omitempty" yaml:"always_show,omitempty"`
	BalanceType        string  `json:"balance_type,omitempty" yaml:"balance_type,omitempty"`
	SignOverride       string  `json:"sign_override,omitempty" yaml:"sign_override,omitempty"`
	Block              string  `json:"block_group,omitempty" yaml:"block_group,omitempty"`
	ShowTag            bool    `json:"show_tag,omitempty" yaml:"show_tag,omitempty"`
	Explainer          string  `json:"explainer,omitempty" yaml:"explainer,omitempty"`
}

// HasIncludeRange reports whether both include-range bounds are set.
func (t RowTemplate) HasIncludeRange() bool {
	return t.IncludeStart != 0 && t.IncludeEnd != 0
}

// HasExcludeRange reports whether both exclude-range bounds are set.
func (t RowTemplate) HasExcludeRange() bool {
	return t.ExcludeStart != 0 && t.ExcludeEnd != 0
}

// HasMembership reports whether the template selects any accounts.
func (t RowTemplate) HasMembership() bool {
	return t.HasIncludeRange() || t.HasExcludeRange() ||
		strings.TrimSpace(t.IncludeList) != "" || strings.TrimSpace(t.ExcludeList) != ""
}

// IsHeader reports whether the row carries no amount.
func (t RowTemplate) IsHeader() bool {
	return !t.ShowAmount
}

// Level maps the style tag to a display nesting level (0-4).
func (t RowTemplate) Level() int {
	return StyleLevel(t.Style)
}

// Bold reports whether the style renders bold.
func (t RowTemplate) Bold() bool {
	return StyleBold(t.Style)
}

var styleLevels = map[string]int{
	"H0":     0,
	"H1":     1,
	"H2":     2,
	"H3":     3,
	"H4":     4,
	"NORMAL": 4,
	"S1":     4,
	"S2":     4,
	"S3":     4,
}

// StyleLevel maps a style tag to its nesting level. Unknown styles are level 4.
func StyleLevel(style string) int {
	if lvl, ok := styleLevels[strings.ToUpper(strings.TrimSpace(style))]; ok {
		return lvl
	}
	return 4
}

// StyleBold reports whether a style tag is rendered bold. H3 sums are not bold.
func StyleBold(style string) bool {
	switch strings.ToUpper(strings.TrimSpace(style)) {
	case "H0", "H1", "H2", "H4":
		return true
	}
	return false
}

// CloneTemplates returns a deep copy of a template slice.
func CloneTemplates(in []RowTemplate) []RowTemplate {
	if in == nil {
		return nil
	}
	out := make([]RowTemplate, len(in))
	copy(out, in)
	for i := range out {
		if in[i].AlwaysShow != nil {
			v := *in[i].AlwaysShow
			out[i].AlwaysShow = &v
		}
	}
	return out
}
