package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"fjacquet/sie-report/internal/models"
)

var templateTables = map[models.Section]string{
	models.SectionRR:   "variable_mapping_rr",
	models.SectionBR:   "variable_mapping_br",
	models.SectionINK2: "variable_mapping_ink2",
}

// templateTable maps a section to its table. Table names are never built
// from caller input.
func templateTable(section models.Section) (string, error) {
	table, ok := templateTables[section]
	if !ok {
		return "", fmt.Errorf("unknown section: %q", string(section))
	}
	return table, nil
}

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	var stmts []string
	for _, section := range models.Sections {
		table, err := templateTable(section)
		if err != nil {
			return err
		}
		stmts = append(stmts,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id                       INTEGER PRIMARY KEY AUTOINCREMENT,
				row_id                   INTEGER NOT NULL UNIQUE,
				row_title                TEXT NOT NULL DEFAULT '',
				style                    TEXT NOT NULL DEFAULT '',
				variable_name            TEXT NOT NULL DEFAULT '',
				element_name             TEXT NOT NULL DEFAULT '',
				accounts_included_start  INTEGER,
				accounts_included_end    INTEGER,
				accounts_included        TEXT NOT NULL DEFAULT '',
				accounts_excluded_start  INTEGER,
				accounts_excluded_end    INTEGER,
				accounts_excluded        TEXT NOT NULL DEFAULT '',
				is_calculated            INTEGER NOT NULL DEFAULT 0,
				calculation_formula      TEXT NOT NULL DEFAULT '',
				show_amount              INTEGER NOT NULL DEFAULT 0,
				always_show              INTEGER,
				balance_type             TEXT NOT NULL DEFAULT '',
				sign_override            TEXT NOT NULL DEFAULT '',
				block_group              TEXT NOT NULL DEFAULT '',
				show_tag                 INTEGER NOT NULL DEFAULT 0,
				explainer                TEXT NOT NULL DEFAULT ''
			)`, table),
		)
	}

	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS global_variables (
			variable_name TEXT PRIMARY KEY,
			value         TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS account_descriptions (
			account_id  TEXT PRIMARY KEY,
			description TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS financial_data (
			id            TEXT PRIMARY KEY,
			company_id    TEXT NOT NULL,
			fiscal_year   INTEGER NOT NULL,
			report_type   TEXT NOT NULL CHECK (report_type IN ('RR','BR','INK2')),
			variable_name TEXT NOT NULL,
			amount        TEXT NOT NULL,
			updated_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (company_id, fiscal_year, report_type, variable_name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_financial_data_company ON financial_data(company_id, fiscal_year)`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	)

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' || i >= 60 {
			return stmt[:i]
		}
	}
	return stmt
}
