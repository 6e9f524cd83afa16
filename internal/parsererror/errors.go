package parsererror

import (
	"fmt"
	"strings"
)

// ParseError represents a failure to parse a single field of a template,
// constant or description record.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input file that is not a ledger export.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// EncodingError represents a file that could not be decoded with any of the
// configured text encodings.
type EncodingError struct {
	FilePath string
	Tried    []string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("could not decode file '%s' with any supported encoding (tried: %s)",
		e.FilePath, strings.Join(e.Tried, ", "))
}

// FormulaError represents a formula that failed to compile or evaluate.
// Pos is the byte offset in the formula, -1 when unknown.
type FormulaError struct {
	Formula string
	Pos     int
	Msg     string
}

func (e *FormulaError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("formula '%s': %s at position %d", e.Formula, e.Msg, e.Pos)
	}
	return fmt.Sprintf("formula '%s': %s", e.Formula, e.Msg)
}

// StoreError represents a template or report store that could not be reached.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
