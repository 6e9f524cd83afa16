package store

import (
	"fmt"
	"strconv"
	"strings"

	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/parsererror"
)

// templateCSVRow is the CSV shape of a row template. Every column is read as
// text so empty cells map to zero values.
type templateCSVRow struct {
	ID                 string `csv:"id"`
	RowID              string `csv:"row_id"`
	Title              string `csv:"row_title"`
	Style              string `csv:"style"`
	VariableName       string `csv:"variable_name"`
	ElementName        string `csv:"element_name"`
	IncludeStart       string `csv:"accounts_included_start"`
	IncludeEnd         string `csv:"accounts_included_end"`
	IncludeList        string `csv:"accounts_included"`
	ExcludeStart       string `csv:"accounts_excluded_start"`
	ExcludeEnd         string `csv:"accounts_excluded_end"`
	ExcludeList        string `csv:"accounts_excluded"`
	IsCalculated       string `csv:"is_calculated"`
	CalculationFormula string `csv:"calculation_formula"`
	ShowAmount         string `csv:"show_amount"`
	AlwaysShow         string `csv:"always_show"`
	BalanceType        string `csv:"balance_type"`
	SignOverride       string `csv:"sign_override"`
	Block              string `csv:"block_group"`
	ShowTag            string `csv:"show_tag"`
	Explainer          string `csv:"explainer"`
}

func (r templateCSVRow) toTemplate(source string) (models.RowTemplate, error) {
	var (
		tpl models.RowTemplate
		err error
	)
	ints := []struct {
		field string
		raw   string
		dst   *int
	}{
		{"id", r.ID, &tpl.ID},
		{"row_id", r.RowID, &tpl.RowID},
		{"accounts_included_start", r.IncludeStart, &tpl.IncludeStart},
		{"accounts_included_end", r.IncludeEnd, &tpl.IncludeEnd},
		{"accounts_excluded_start", r.ExcludeStart, &tpl.ExcludeStart},
		{"accounts_excluded_end", r.ExcludeEnd, &tpl.ExcludeEnd},
	}
	for _, f := range ints {
		if *f.dst, err = parseOptionalInt(f.raw); err != nil {
			return tpl, &parsererror.ParseError{Parser: source, Field: f.field, Value: f.raw, Err: err}
		}
	}
	if strings.TrimSpace(r.RowID) == "" {
		return tpl, &parsererror.ParseError{Parser: source, Field: "row_id", Value: "", Err: fmt.Errorf("row_id is required")}
	}

	bools := []struct {
		field string
		raw   string
		dst   *bool
	}{
		{"is_calculated", r.IsCalculated, &tpl.IsCalculated},
		{"show_amount", r.ShowAmount, &tpl.ShowAmount},
		{"show_tag", r.ShowTag, &tpl.ShowTag},
	}
	for _, f := range bools {
		v, err := parseTriState(f.raw)
		if err != nil {
			return tpl, &parsererror.ParseError{Parser: source, Field: f.field, Value: f.raw, Err: err}
		}
		*f.dst = v != nil && *v
	}
	if tpl.AlwaysShow, err = parseTriState(r.AlwaysShow); err != nil {
		return tpl, &parsererror.ParseError{Parser: source, Field: "always_show", Value: r.AlwaysShow, Err: err}
	}

	tpl.Title = strings.TrimSpace(r.Title)
	tpl.Style = strings.TrimSpace(r.Style)
	tpl.VariableName = strings.TrimSpace(r.VariableName)
	tpl.ElementName = strings.TrimSpace(r.ElementName)
	tpl.IncludeList = strings.TrimSpace(r.IncludeList)
	tpl.ExcludeList = strings.TrimSpace(r.ExcludeList)
	tpl.CalculationFormula = strings.TrimSpace(r.CalculationFormula)
	tpl.BalanceType = strings.ToUpper(strings.TrimSpace(r.BalanceType))
	tpl.SignOverride = strings.TrimSpace(r.SignOverride)
	tpl.Block = strings.TrimSpace(r.Block)
	tpl.Explainer = strings.TrimSpace(r.Explainer)
	return tpl, nil
}

func fromTemplate(t models.RowTemplate) templateCSVRow {
	return templateCSVRow{
		ID:                 formatOptionalInt(t.ID),
		RowID:              strconv.Itoa(t.RowID),
		Title:              t.Title,
		Style:              t.Style,
		VariableName:       t.VariableName,
		ElementName:        t.ElementName,
		IncludeStart:       formatOptionalInt(t.IncludeStart),
		IncludeEnd:         formatOptionalInt(t.IncludeEnd),
		IncludeList:        t.IncludeList,
		ExcludeStart:       formatOptionalInt(t.ExcludeStart),
		ExcludeEnd:         formatOptionalInt(t.ExcludeEnd),
		ExcludeList:        t.ExcludeList,
		IsCalculated:       strconv.FormatBool(t.IsCalculated),
		CalculationFormula: t.CalculationFormula,
		ShowAmount:         strconv.FormatBool(t.ShowAmount),
		AlwaysShow:         formatTriState(t.AlwaysShow),
		BalanceType:        t.BalanceType,
		SignOverride:       t.SignOverride,
		Block:              t.Block,
		ShowTag:            strconv.FormatBool(t.ShowTag),
		Explainer:          t.Explainer,
	}
}

func parseOptionalInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	// spreadsheet exports write whole numbers as "1930.0"
	s = strings.TrimSuffix(s, ".0")
	return strconv.Atoi(s)
}

func formatOptionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// parseTriState accepts true/false, yes/no, 1/0 and ja/nej. Empty is nil.
func parseTriState(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "true", "t", "yes", "y", "1", "ja", "x":
		return models.BoolPtr(true), nil
	case "false", "f", "no", "n", "0", "nej":
		return models.BoolPtr(false), nil
	}
	return nil, fmt.Errorf("invalid boolean %q", s)
}

func formatTriState(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
