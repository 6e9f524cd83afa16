// Package store defines the template and report store interfaces used by the
// report engine, with a file-backed implementation and a mock for tests.
package store

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/sie-report/internal/models"

	"github.com/shopspring/decimal"
)

// ErrRowNotFound is returned when a formula edit targets a missing row.
var ErrRowNotFound = errors.New("row not found")

// TemplateStore provides row templates, global constants and account
// descriptions.
type TemplateStore interface {
	// LoadRowTemplates returns the section's templates ordered by row_id.
	// A section with no data yields an empty slice.
	LoadRowTemplates(ctx context.Context, section models.Section) ([]models.RowTemplate, error)
	// LoadGlobalConstants returns the global constants with percentages
	// normalised to fractions.
	LoadGlobalConstants(ctx context.Context) (models.Constants, error)
	// LookupAccountDescription returns an account's description, or the
	// "Konto <id>" placeholder when none is stored.
	LookupAccountDescription(ctx context.Context, accountID string) (string, error)
	// LoadAccountDescriptions returns every stored account description.
	LoadAccountDescriptions(ctx context.Context) (map[string]string, error)
	// UpdateRowFormula sets a row's formula and marks it calculated.
	UpdateRowFormula(ctx context.Context, section models.Section, rowID int, formula string) error
}

// ReportStore persists computed report rows.
type ReportStore interface {
	PersistReportRow(ctx context.Context, companyID string, fiscalYear int, section models.Section, variable string, amount decimal.Decimal) error
	LoadReportRows(ctx context.Context, companyID string, fiscalYear int) (map[models.Section]map[string]decimal.Decimal, error)
	ListCompanies(ctx context.Context) ([]StoredReport, error)
}

// BatchReportStore is implemented by report stores that can persist a whole
// section in one write.
type BatchReportStore interface {
	PersistReportRows(ctx context.Context, companyID string, fiscalYear int, section models.Section, values map[string]decimal.Decimal) error
}

// StoredReport summarises the persisted rows of one company and year.
type StoredReport struct {
	CompanyID  string           `json:"company_id"`
	FiscalYear int              `json:"fiscal_year"`
	Sections   []models.Section `json:"sections"`
	Rows       int              `json:"rows"`
}

// DescriptionFallback is the label used for accounts without a description.
func DescriptionFallback(accountID string) string {
	return fmt.Sprintf("Konto %s", accountID)
}

// DescriptionOrDefault returns descriptions[accountID] or the fallback label.
func DescriptionOrDefault(descriptions map[string]string, accountID string) string {
	if d, ok := descriptions[accountID]; ok && d != "" {
		return d
	}
	return DescriptionFallback(accountID)
}
