// Package sieparser reads SIE ledger exports into current and prior period
// balance maps plus the company header.
package sieparser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"fjacquet/sie-report/internal/dateutils"
	"fjacquet/sie-report/internal/fileutils"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/parsererror"
	"fjacquet/sie-report/internal/validation"
)

// Record tags recognised by the parser.
const (
	TagClosingBalance = "#UB"
	TagResult         = "#RES"
	TagLegacy         = "#VER"
	TagCompanyName    = "#FNAMN"
	TagOrgNumber      = "#ORGNR"
	TagFiscalYear     = "#RAR"
)

// Period offsets used by #UB, #RES and #RAR.
const (
	periodCurrent  = 0
	periodPrevious = -1
)

// Parser parses ledger exports.
type Parser struct {
	logger    logging.Logger
	encodings []string
}

// New returns a Parser. With no encodings, DefaultEncodings is used.
func New(logger logging.Logger, encodings ...string) *Parser {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	return &Parser{
		logger:    logging.OrDefault(logger),
		encodings: encodings,
	}
}

// ValidateFormat checks that path looks like a ledger export.
func ValidateFormat(path string) error {
	return validation.IsLedgerFile(path)
}

// ParseFile validates, decodes and parses a ledger file.
func (p *Parser) ParseFile(path string) (*models.Ledger, error) {
	p.logger.Info("Parsing ledger file", logging.F(logging.FieldFile, path))

	if err := ValidateFormat(path); err != nil {
		return nil, err
	}
	data, err := fileutils.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}

	text, err := p.decode(data)
	if err != nil {
		var encErr *parsererror.EncodingError
		if errors.As(err, &encErr) {
			encErr.FilePath = path
		}
		return nil, err
	}
	return p.ParseString(text), nil
}

// Parse decodes and parses a ledger from r.
func (p *Parser) Parse(r io.Reader) (*models.Ledger, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}
	text, err := p.decode(data)
	if err != nil {
		return nil, err
	}
	return p.ParseString(text), nil
}

func (p *Parser) decode(data []byte) (string, error) {
	encodings := p.encodings
	if declaresPC8(data) && !utf8.Valid(data) {
		encodings = append([]string{"pc8"}, encodings...)
	}
	text, used, err := decode(data, encodings)
	if err != nil {
		p.logger.WithError(err).Error("Failed to decode ledger")
		return "", err
	}
	p.logger.Debug("Decoded ledger", logging.F(logging.FieldEncoding, used))
	return text, nil
}

// ParseString parses decoded ledger text. It never fails: malformed balance
// records are skipped and counted in Stats.Skipped.
func (p *Parser) ParseString(text string) *models.Ledger {
	ledger := models.NewLedger()

	// no line length limit: an oversized line must not hide the records after it
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		ledger.Stats.Lines++

		fields := splitFields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case TagClosingBalance, TagResult:
			p.parsePeriodRecord(ledger, fields)
		case TagLegacy:
			p.parseLegacyRecord(ledger, fields)
		case TagCompanyName:
			if len(fields) >= 2 {
				ledger.Company.Name = fields[1]
			}
		case TagOrgNumber:
			if len(fields) >= 2 {
				ledger.Company.OrganizationNumber = fields[1]
			}
		case TagFiscalYear:
			p.parseFiscalYear(ledger, fields)
		}
	}

	p.logger.Info("Parsed ledger",
		logging.F("current_accounts", len(ledger.Current)),
		logging.F("previous_accounts", len(ledger.Previous)),
		logging.F(logging.FieldCount, ledger.Stats.Records),
		logging.F(logging.FieldSkipped, ledger.Stats.Skipped))
	return ledger
}

// parsePeriodRecord handles "#UB|#RES <period> <account> <amount> ...".
func (p *Parser) parsePeriodRecord(ledger *models.Ledger, fields []string) {
	if len(fields) < 4 {
		ledger.Stats.Skipped++
		return
	}
	period, err := strconv.Atoi(fields[1])
	if err != nil {
		ledger.Stats.Skipped++
		return
	}
	account := fields[2]
	amount, err := models.ParseAmount(fields[3])
	if err != nil || account == "" {
		ledger.Stats.Skipped++
		return
	}

	switch period {
	case periodCurrent:
		ledger.Current[account] = amount
	case periodPrevious:
		ledger.Previous[account] = amount
	default:
		return
	}
	ledger.Stats.Records++
}

// parseLegacyRecord handles "#VER <account> <amount>". Verification headers
// of the form "#VER <series> <number> <date> ..." have a non-numeric series or
// a date field and are ignored without counting as malformed.
func (p *Parser) parseLegacyRecord(ledger *models.Ledger, fields []string) {
	if len(fields) < 3 {
		ledger.Stats.Skipped++
		return
	}
	if len(fields) > 3 || !isDigits(fields[1]) {
		return
	}
	amount, err := models.ParseAmount(fields[2])
	if err != nil {
		ledger.Stats.Skipped++
		return
	}
	ledger.Current[fields[1]] = amount
	ledger.Stats.Records++
}

// parseFiscalYear handles "#RAR <period> <start> <end>".
func (p *Parser) parseFiscalYear(ledger *models.Ledger, fields []string) {
	if len(fields) < 4 {
		return
	}
	start, startErr := dateutils.ParseSIEDate(fields[2])
	end, endErr := dateutils.ParseSIEDate(fields[3])

	switch fields[1] {
	case strconv.Itoa(periodCurrent):
		if year, err := dateutils.FiscalYearFromDate(fields[2]); err == nil {
			ledger.Company.FiscalYear = year
		}
		if startErr == nil {
			ledger.Company.StartDate = start
		}
		if endErr == nil {
			ledger.Company.EndDate = end
		}
	case strconv.Itoa(periodPrevious):
		if startErr == nil {
			ledger.Company.PreviousStartDate = start
		}
		if endErr == nil {
			ledger.Company.PreviousEndDate = end
		}
	}
}
