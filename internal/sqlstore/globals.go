package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/parsererror"
	"fjacquet/sie-report/internal/store"
)

// LoadGlobalConstants implements store.TemplateStore. Rates stored as
// percentages are normalised on read.
func (s *Store) LoadGlobalConstants(ctx context.Context) (models.Constants, error) {
	rows, err := s.reader.QueryContext(ctx, `SELECT variable_name, value FROM global_variables ORDER BY variable_name`)
	if err != nil {
		return nil, &parsererror.StoreError{Op: "load constants", Err: err}
	}
	defer rows.Close()

	constants := models.Constants{}
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scan constant: %w", err)
		}
		v, err := models.ParseAmount(raw)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping invalid constant", logging.F(logging.FieldVariable, name))
			continue
		}
		constants[name] = models.NormalizeConstant(name, v, false)
	}
	return constants, rows.Err()
}

// ImportConstants upserts constants.
func (s *Store) ImportConstants(ctx context.Context, constants models.Constants) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, name := range constants.Names() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO global_variables (variable_name, value) VALUES (?, ?)
			 ON CONFLICT(variable_name) DO UPDATE SET value = excluded.value`,
			name, constants[name].String())
		if err != nil {
			return fmt.Errorf("upsert constant %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// LoadAccountDescriptions implements store.TemplateStore.
func (s *Store) LoadAccountDescriptions(ctx context.Context) (map[string]string, error) {
	rows, err := s.reader.QueryContext(ctx, `SELECT account_id, description FROM account_descriptions`)
	if err != nil {
		return nil, &parsererror.StoreError{Op: "load descriptions", Err: err}
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var id, desc string
		if err := rows.Scan(&id, &desc); err != nil {
			return nil, fmt.Errorf("scan description: %w", err)
		}
		out[id] = desc
	}
	return out, rows.Err()
}

// LookupAccountDescription implements store.TemplateStore.
func (s *Store) LookupAccountDescription(ctx context.Context, accountID string) (string, error) {
	var desc string
	err := s.reader.QueryRowContext(ctx,
		`SELECT description FROM account_descriptions WHERE account_id = ?`, accountID).Scan(&desc)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && desc == "") {
		return store.DescriptionFallback(accountID), nil
	}
	if err != nil {
		return "", &parsererror.StoreError{Op: "lookup description", Err: err}
	}
	return desc, nil
}

// ImportDescriptions upserts account descriptions.
func (s *Store) ImportDescriptions(ctx context.Context, descriptions map[string]string) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for id, desc := range descriptions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO account_descriptions (account_id, description) VALUES (?, ?)
			 ON CONFLICT(account_id) DO UPDATE SET description = excluded.description`,
			id, desc)
		if err != nil {
			return fmt.Errorf("upsert description %s: %w", id, err)
		}
	}
	return tx.Commit()
}
