package report

import (
	"bytes"
	"fmt"
	"strings"

	"fjacquet/sie-report/internal/common"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
)

// Document is a complete built report.
type Document struct {
	Company    models.CompanyInfo `json:"company_info"`
	Stats      models.ParseStats  `json:"stats"`
	RR         []models.LineItem  `json:"rr_data,omitempty"`
	BR         []models.LineItem  `json:"br_data,omitempty"`
	INK2       []models.LineItem  `json:"ink2_data,omitempty"`
	PensionTax *PensionTaxSummary `json:"pension_tax,omitempty"`
}

// Section returns the line items of one section.
func (d *Document) Section(section models.Section) []models.LineItem {
	switch section {
	case models.SectionRR:
		return d.RR
	case models.SectionBR:
		return d.BR
	case models.SectionINK2:
		return d.INK2
	}
	return nil
}

// Only returns a copy holding just the given sections.
func (d *Document) Only(sections ...models.Section) *Document {
	out := &Document{Company: d.Company, Stats: d.Stats, PensionTax: d.PensionTax}
	for _, s := range sections {
		switch s {
		case models.SectionRR:
			out.RR = d.RR
		case models.SectionBR:
			out.BR = d.BR
		case models.SectionINK2:
			out.INK2 = d.INK2
		}
	}
	return out
}

// Items returns every line item in section build order.
func (d *Document) Items() []models.LineItem {
	out := make([]models.LineItem, 0, len(d.RR)+len(d.BR)+len(d.INK2))
	out = append(out, d.RR...)
	out = append(out, d.BR...)
	return append(out, d.INK2...)
}

// Generator renders documents as JSON or CSV.
type Generator struct {
	logger    logging.Logger
	delimiter rune
}

// NewGenerator returns a Generator writing CSV with delimiter.
func NewGenerator(logger logging.Logger, delimiter rune) *Generator {
	if delimiter == 0 {
		delimiter = common.DefaultDelimiter
	}
	return &Generator{logger: logging.OrDefault(logger), delimiter: delimiter}
}

// Generate renders doc in the given format ("json" or "csv"). CSV output
// holds the line items only.
func (g *Generator) Generate(doc *Document, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "json":
		if err := common.WriteJSON(&buf, doc); err != nil {
			g.logger.WithError(err).Error("Failed to marshal JSON report")
			return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
		}
	case "csv":
		if err := common.WriteLineItemsCSV(&buf, doc.Items(), g.delimiter); err != nil {
			g.logger.WithError(err).Error("Failed to write CSV report")
			return nil, fmt.Errorf("failed to write CSV report: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
	return buf.Bytes(), nil
}
