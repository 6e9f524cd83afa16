// Package sqlstore implements the template and report stores on SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/store"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed TemplateStore and ReportStore. Writes go through a
// single connection; reads use a pool.
type Store struct {
	writer *sql.DB
	reader *sql.DB
	logger logging.Logger
}

// Open opens or creates the database at dbPath and applies migrations.
func Open(dbPath string, logger logging.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	// one extra connection for Changes
	reader.SetMaxOpenConns(runtime.NumCPU() + 1)

	s := &Store{
		writer: writer,
		reader: reader,
		logger: logging.OrDefault(logger).WithField(logging.FieldBackend, "sqlite"),
	}

	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes both connection pools.
func (s *Store) Close() error {
	err1 := s.writer.Close()
	err2 := s.reader.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullBool(b *bool) sql.NullInt64 {
	if b == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(boolToInt(*b)), Valid: true}
}

func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

var (
	_ store.TemplateStore    = (*Store)(nil)
	_ store.ReportStore      = (*Store)(nil)
	_ store.BatchReportStore = (*Store)(nil)
)
