package logging

// Standardized field names for structured logging.
const (
	FieldFile         = "file_path"
	FieldParser       = "parser"
	FieldSection      = "section"
	FieldRowID        = "row_id"
	FieldVariable     = "variable"
	FieldFormula      = "formula"
	FieldAccount      = "account"
	FieldCompanyID    = "company_id"
	FieldFiscalYear   = "fiscal_year"
	FieldEncoding     = "encoding"
	FieldOperation    = "operation"
	FieldStatus       = "status"
	FieldError        = "error"
	FieldDuration     = "duration_ms"
	FieldCount        = "count"
	FieldSkipped      = "skipped"
	FieldBackend      = "backend"
	FieldOutputFile   = "output_file"
	FieldOutputFormat = "output_format"
)
