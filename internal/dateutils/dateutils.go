// Package dateutils provides the date handling used by the ledger parser.
package dateutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayoutSIE is the date layout of ledger exports.
const DateLayoutSIE = "20060102"

var whitespace = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace and strips surrounding quotes.
func CleanDateString(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	dateStr = strings.Trim(dateStr, `"`)
	return whitespace.ReplaceAllString(dateStr, " ")
}

// ParseSIEDate parses a YYYYMMDD date as written in #RAR records.
func ParseSIEDate(dateStr string) (time.Time, error) {
	clean := CleanDateString(dateStr)
	t, err := time.Parse(DateLayoutSIE, clean)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", dateStr, err)
	}
	return t, nil
}

// FiscalYearFromDate returns the fiscal year encoded in the first four digits
// of a YYYYMMDD start date.
func FiscalYearFromDate(dateStr string) (int, error) {
	clean := CleanDateString(dateStr)
	if len(clean) < 4 {
		return 0, fmt.Errorf("date too short for fiscal year: %q", dateStr)
	}
	year, err := strconv.Atoi(clean[:4])
	if err != nil {
		return 0, fmt.Errorf("invalid fiscal year in %q: %w", dateStr, err)
	}
	return year, nil
}
