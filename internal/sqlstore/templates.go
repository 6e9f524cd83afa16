package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/parsererror"
	"fjacquet/sie-report/internal/store"
)

const templateColumns = `id, row_id, row_title, style, variable_name, element_name,
	accounts_included_start, accounts_included_end, accounts_included,
	accounts_excluded_start, accounts_excluded_end, accounts_excluded,
	is_calculated, calculation_formula, show_amount, always_show,
	balance_type, sign_override, block_group, show_tag, explainer`

// LoadRowTemplates implements store.TemplateStore.
func (s *Store) LoadRowTemplates(ctx context.Context, section models.Section) ([]models.RowTemplate, error) {
	table, err := templateTable(section)
	if err != nil {
		return nil, err
	}
	rows, err := s.reader.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY row_id`, templateColumns, table))
	if err != nil {
		return nil, &parsererror.StoreError{Op: "load " + string(section) + " templates", Err: err}
	}
	defer rows.Close()

	templates := []models.RowTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.Section = section
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &parsererror.StoreError{Op: "load " + string(section) + " templates", Err: err}
	}
	s.logger.Debug("Loaded row templates",
		logging.F(logging.FieldSection, string(section)),
		logging.F(logging.FieldCount, len(templates)))
	return templates, nil
}

func scanTemplate(rows *sql.Rows) (models.RowTemplate, error) {
	var (
		t                                  models.RowTemplate
		incStart, incEnd, excStart, excEnd sql.NullInt64
		isCalc, showAmount, showTag        int
		alwaysShow                         sql.NullInt64
	)
	err := rows.Scan(&t.ID, &t.RowID, &t.Title, &t.Style, &t.VariableName, &t.ElementName,
		&incStart, &incEnd, &t.IncludeList,
		&excStart, &excEnd, &t.ExcludeList,
		&isCalc, &t.CalculationFormula, &showAmount, &alwaysShow,
		&t.BalanceType, &t.SignOverride, &t.Block, &showTag, &t.Explainer)
	if err != nil {
		return t, err
	}
	t.IncludeStart = int(incStart.Int64)
	t.IncludeEnd = int(incEnd.Int64)
	t.ExcludeStart = int(excStart.Int64)
	t.ExcludeEnd = int(excEnd.Int64)
	t.IsCalculated = isCalc != 0
	t.ShowAmount = showAmount != 0
	t.ShowTag = showTag != 0
	if alwaysShow.Valid {
		t.AlwaysShow = models.BoolPtr(alwaysShow.Int64 != 0)
	}
	return t, nil
}

// UpdateRowFormula implements store.TemplateStore.
func (s *Store) UpdateRowFormula(ctx context.Context, section models.Section, rowID int, formula string) error {
	table, err := templateTable(section)
	if err != nil {
		return err
	}
	res, err := s.writer.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET calculation_formula = ?, is_calculated = 1 WHERE row_id = ?`, table),
		formula, rowID)
	if err != nil {
		return &parsererror.StoreError{Op: "update formula", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &parsererror.StoreError{Op: "update formula", Err: err}
	}
	if n == 0 {
		return fmt.Errorf("%s row %d: %w", section, rowID, store.ErrRowNotFound)
	}
	s.logger.Info("Updated row formula",
		logging.F(logging.FieldSection, string(section)),
		logging.F(logging.FieldRowID, rowID),
		logging.F(logging.FieldFormula, formula))
	return nil
}

// ImportTemplates replaces the section's templates with rows.
func (s *Store) ImportTemplates(ctx context.Context, section models.Section, rows []models.RowTemplate) error {
	table, err := templateTable(section)
	if err != nil {
		return err
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (
		row_id, row_title, style, variable_name, element_name,
		accounts_included_start, accounts_included_end, accounts_included,
		accounts_excluded_start, accounts_excluded_end, accounts_excluded,
		is_calculated, calculation_formula, show_amount, always_show,
		balance_type, sign_override, block_group, show_tag, explainer
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range rows {
		_, err := stmt.ExecContext(ctx,
			t.RowID, t.Title, t.Style, t.VariableName, t.ElementName,
			nullInt(t.IncludeStart), nullInt(t.IncludeEnd), t.IncludeList,
			nullInt(t.ExcludeStart), nullInt(t.ExcludeEnd), t.ExcludeList,
			boolToInt(t.IsCalculated), t.CalculationFormula, boolToInt(t.ShowAmount), nullBool(t.AlwaysShow),
			t.BalanceType, t.SignOverride, t.Block, boolToInt(t.ShowTag), t.Explainer,
		)
		if err != nil {
			return fmt.Errorf("insert %s row %d: %w", section, t.RowID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("Imported row templates",
		logging.F(logging.FieldSection, string(section)),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}
