package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/sie-report/internal/parsererror"
)

// LedgerExtensions are the accepted ledger export file extensions.
var LedgerExtensions = []string{".se", ".si", ".sie"}

// IsValidPath checks if a given path exists and is a file or directory.
func IsValidPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is neither a file nor a directory", path)
	}
	return nil
}

// IsLedgerFile checks the file extension of a ledger export. The check is
// case-insensitive.
func IsLedgerFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range LedgerExtensions {
		if ext == allowed {
			return nil
		}
	}
	return &parsererror.InvalidFormatError{
		FilePath:       path,
		ExpectedFormat: "SIE (" + strings.Join(LedgerExtensions, ", ") + ")",
		Msg:            "unsupported file extension",
	}
}

// IsValidOutputFormat checks if the given format is supported.
func IsValidOutputFormat(format string) error {
	switch format {
	case "json", "csv":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'json', 'csv'", format)
	}
}
