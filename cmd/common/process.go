// Package common contains shared functionality for command handlers
package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/sie-report/internal/fileutils"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"

	"github.com/shopspring/decimal"
)

// WriteOutput writes data to outputFile, or to stdout when outputFile is
// empty.
func WriteOutput(data []byte, outputFile string, stdout io.Writer, log logging.Logger) error {
	if outputFile == "" {
		if stdout == nil {
			stdout = os.Stdout
		}
		_, err := stdout.Write(data)
		return err
	}
	if err := fileutils.WriteFileAtomic(outputFile, data, 0644); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	logging.OrDefault(log).Info("Wrote report", logging.F(logging.FieldOutputFile, outputFile))
	return nil
}

// ParseSections parses a comma separated section list. Empty or "all" selects
// every section.
func ParseSections(s string) ([]models.Section, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return models.Sections, nil
	}
	var out []models.Section
	seen := map[models.Section]bool{}
	for _, part := range strings.Split(s, ",") {
		section, err := models.ParseSection(part)
		if err != nil {
			return nil, err
		}
		if !seen[section] {
			seen[section] = true
			out = append(out, section)
		}
	}
	return out, nil
}

// ParseOverrides parses VAR=AMOUNT pairs.
func ParseOverrides(pairs []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid override %q: expected VAR=AMOUNT", pair)
		}
		amount, err := models.ParseAmount(value)
		if err != nil {
			return nil, fmt.Errorf("invalid override %q: %w", pair, err)
		}
		out[name] = amount
	}
	return out, nil
}
