package common

import (
	"encoding/json"
	"fmt"
	"io"

	"fjacquet/sie-report/internal/models"

	"github.com/shopspring/decimal"
)

// LineItemRow is the flat CSV shape of a report line.
type LineItemRow struct {
	Section        string `csv:"section"`
	RowID          int    `csv:"row_id"`
	Title          string `csv:"label"`
	VariableName   string `csv:"variable_name"`
	CurrentAmount  string `csv:"current_amount"`
	PreviousAmount string `csv:"previous_amount"`
	Level          int    `csv:"level"`
	Bold           bool   `csv:"bold"`
	Style          string `csv:"style"`
	Type           string `csv:"type"`
	IsCalculated   bool   `csv:"is_calculated"`
	AlwaysShow     string `csv:"always_show"`
	Block          string `csv:"block_group"`
}

// ToLineItemRows flattens line items for CSV output. Nil amounts are empty.
func ToLineItemRows(items []models.LineItem) []LineItemRow {
	rows := make([]LineItemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, LineItemRow{
			Section:        string(it.Section),
			RowID:          it.RowID,
			Title:          it.Title,
			VariableName:   it.VariableName,
			CurrentAmount:  FormatAmount(it.CurrentAmount),
			PreviousAmount: FormatAmount(it.PreviousAmount),
			Level:          it.Level,
			Bold:           it.Bold,
			Style:          it.Style,
			Type:           it.Type,
			IsCalculated:   it.IsCalculated,
			AlwaysShow:     formatTriState(it.AlwaysShow),
			Block:          it.Block,
		})
	}
	return rows
}

// WriteLineItemsCSV writes line items as CSV.
func WriteLineItemsCSV(w io.Writer, items []models.LineItem, delimiter rune) error {
	return WriteCSV(w, ToLineItemRows(items), delimiter)
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error writing JSON: %w", err)
	}
	return nil
}

// FormatAmount renders an amount with two decimals, or "" for nil.
func FormatAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func formatTriState(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "true"
	}
	return "false"
}
