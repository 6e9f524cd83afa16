package sqlstore

import (
	"context"
	"fmt"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/parsererror"
	"fjacquet/sie-report/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const upsertFinancialData = `INSERT INTO financial_data (id, company_id, fiscal_year, report_type, variable_name, amount)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(company_id, fiscal_year, report_type, variable_name)
	DO UPDATE SET amount = excluded.amount, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`

// PersistReportRow implements store.ReportStore.
func (s *Store) PersistReportRow(ctx context.Context, companyID string, fiscalYear int, section models.Section, variable string, amount decimal.Decimal) error {
	_, err := s.writer.ExecContext(ctx, upsertFinancialData,
		uuid.New().String(), companyID, fiscalYear, string(section), variable, amount.String())
	if err != nil {
		return &parsererror.StoreError{Op: "persist report row", Err: err}
	}
	return nil
}

// PersistReportRows implements store.BatchReportStore in one transaction.
func (s *Store) PersistReportRows(ctx context.Context, companyID string, fiscalYear int, section models.Section, values map[string]decimal.Decimal) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return &parsererror.StoreError{Op: "persist report rows", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertFinancialData)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for name, amount := range values {
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), companyID, fiscalYear, string(section), name, amount.String()); err != nil {
			return &parsererror.StoreError{Op: "persist report row " + name, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &parsererror.StoreError{Op: "persist report rows", Err: err}
	}
	s.logger.Debug("Persisted report rows",
		logging.F(logging.FieldCompanyID, companyID),
		logging.F(logging.FieldFiscalYear, fiscalYear),
		logging.F(logging.FieldSection, string(section)),
		logging.F(logging.FieldCount, len(values)))
	return nil
}

// LoadReportRows implements store.ReportStore.
func (s *Store) LoadReportRows(ctx context.Context, companyID string, fiscalYear int) (map[models.Section]map[string]decimal.Decimal, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT report_type, variable_name, amount FROM financial_data
		 WHERE company_id = ? AND fiscal_year = ? ORDER BY report_type, variable_name`,
		companyID, fiscalYear)
	if err != nil {
		return nil, &parsererror.StoreError{Op: "load report rows", Err: err}
	}
	defer rows.Close()

	out := map[models.Section]map[string]decimal.Decimal{}
	for rows.Next() {
		var reportType, name, raw string
		if err := rows.Scan(&reportType, &name, &raw); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping invalid stored amount", logging.F(logging.FieldVariable, name))
			continue
		}
		section := models.Section(reportType)
		if out[section] == nil {
			out[section] = map[string]decimal.Decimal{}
		}
		out[section][name] = amount
	}
	return out, rows.Err()
}

// ListCompanies implements store.ReportStore.
func (s *Store) ListCompanies(ctx context.Context) ([]store.StoredReport, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT company_id, fiscal_year, report_type, COUNT(*) FROM financial_data
		 GROUP BY company_id, fiscal_year, report_type`)
	if err != nil {
		return nil, &parsererror.StoreError{Op: "list companies", Err: err}
	}
	defer rows.Close()

	index := map[string]int{}
	var out []store.StoredReport
	for rows.Next() {
		var (
			companyID, reportType string
			year, count           int
		)
		if err := rows.Scan(&companyID, &year, &reportType, &count); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		key := fmt.Sprintf("%s/%d", companyID, year)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, store.StoredReport{CompanyID: companyID, FiscalYear: year})
		}
		out[i].Sections = append(out[i].Sections, models.Section(reportType))
		out[i].Rows += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	store.SortStoredReports(out)
	return out, nil
}
