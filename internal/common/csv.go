// Package common provides the CSV and JSON helpers shared by the template
// stores and the report writers.
package common

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"fjacquet/sie-report/internal/logging"

	"github.com/gocarina/gocsv"
)

// DefaultDelimiter is used when no delimiter is configured.
const DefaultDelimiter = ','

// ReadCSVFile reads CSV data into a slice of structs using gocsv.
// TCSVRow is the struct type that maps to the CSV columns.
func ReadCSVFile[TCSVRow any](filePath string, delimiter rune, logger logging.Logger) ([]TCSVRow, error) {
	logger = logging.OrDefault(logger)
	logger.Debug("Reading CSV file", logging.F(logging.FieldFile, filePath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		logger.WithError(err).Error("Failed to open CSV file")
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}

	rows, err := UnmarshalCSV[TCSVRow](data, delimiter)
	if err != nil {
		logger.WithError(err).Error("Failed to parse CSV file", logging.F(logging.FieldFile, filePath))
		return nil, err
	}

	logger.Debug("Successfully read CSV data", logging.F(logging.FieldCount, len(rows)))
	return rows, nil
}

// UnmarshalCSV decodes CSV bytes with a header row into structs.
func UnmarshalCSV[TCSVRow any](data []byte, delimiter rune) ([]TCSVRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiterOrDefault(delimiter)
	reader.TrimLeadingSpace = true

	var rows []TCSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []TCSVRow{}, nil
		}
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	return rows, nil
}

// MarshalCSV encodes structs as CSV with a header row.
func MarshalCSV[TCSVRow any](rows []TCSVRow, delimiter rune) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows, delimiter); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes structs as CSV with a header row to w.
func WriteCSV[TCSVRow any](w io.Writer, rows []TCSVRow, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiterOrDefault(delimiter)

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("error flushing CSV data: %w", err)
	}
	return nil
}

func delimiterOrDefault(d rune) rune {
	if d == 0 {
		return DefaultDelimiter
	}
	return d
}
