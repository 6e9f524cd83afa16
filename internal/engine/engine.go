// Package engine orchestrates a report build: it parses the ledger, takes a
// template snapshot, assembles every section and persists the results.
package engine

import (
	"context"
	"fmt"
	"time"

	"fjacquet/sie-report/internal/formula"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/report"
	"fjacquet/sie-report/internal/sieparser"
	"fjacquet/sie-report/internal/store"
	"fjacquet/sie-report/internal/templatecache"

	"github.com/shopspring/decimal"
)

// Options tune persistence.
type Options struct {
	// Persist writes RR and BR rows to the report store after each build.
	Persist bool
	// PersistINK2 also writes INK2 rows.
	PersistINK2 bool
}

// Engine builds reports. It is safe for concurrent use.
type Engine struct {
	templates store.TemplateStore
	reports   store.ReportStore
	cache     *templatecache.Cache
	parser    *sieparser.Parser
	builder   *report.Builder
	logger    logging.Logger
	opts      Options
}

// New wires an Engine. reports may be nil, which disables persistence.
func New(templates store.TemplateStore, reports store.ReportStore, cache *templatecache.Cache, parser *sieparser.Parser, logger logging.Logger, opts Options) *Engine {
	logger = logging.OrDefault(logger)
	if cache == nil {
		cache = templatecache.New(templates, logger)
	}
	if parser == nil {
		parser = sieparser.New(logger)
	}
	return &Engine{
		templates: templates,
		reports:   reports,
		cache:     cache,
		parser:    parser,
		builder:   report.NewBuilder(logger),
		logger:    logger,
		opts:      opts,
	}
}

// Cache returns the engine's template cache.
func (e *Engine) Cache() *templatecache.Cache {
	return e.cache
}

// BuildFile parses the ledger file at path and builds every section. Bad file
// types and undecodable files are returned as errors.
func (e *Engine) BuildFile(ctx context.Context, path string, overrides map[string]decimal.Decimal) (*report.Document, error) {
	ledger, err := e.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return e.Build(ctx, ledger, overrides)
}

// Build assembles RR, BR and INK2 for ledger. Only a template store failure
// is returned; row-level problems and persistence failures are logged.
func (e *Engine) Build(ctx context.Context, ledger *models.Ledger, overrides map[string]decimal.Decimal) (*report.Document, error) {
	start := time.Now()
	if ledger == nil {
		ledger = models.NewLedger()
	}
	snap, err := e.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	rr := e.builder.BuildRR(snap, ledger)
	br := e.builder.BuildBR(snap, ledger, rr)
	ink2 := e.builder.BuildINK2(snap, report.INK2Input{Ledger: ledger, RR: rr, BR: br, Overrides: overrides})
	pension := report.PensionTax(ledger, snap.Constants)

	doc := &report.Document{
		Company:    ledger.Company,
		Stats:      ledger.Stats,
		RR:         rr,
		BR:         br,
		INK2:       ink2,
		PensionTax: &pension,
	}

	e.logger.Info("Built report",
		logging.F(logging.FieldCompanyID, ledger.Company.OrganizationNumber),
		logging.F(logging.FieldFiscalYear, ledger.Company.FiscalYear),
		logging.F("rr", len(rr)),
		logging.F("br", len(br)),
		logging.F("ink2", len(ink2)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))

	if e.opts.Persist {
		e.persist(ctx, ledger.Company, models.SectionRR, rr)
		e.persist(ctx, ledger.Company, models.SectionBR, br)
		if e.opts.PersistINK2 {
			e.persist(ctx, ledger.Company, models.SectionINK2, ink2)
		}
	}
	return doc, nil
}

// RecalculateINK2 rebuilds the INK2 schedule with caller overrides. RR and BR
// are rebuilt from the same ledger so the aggregate rows see current state.
func (e *Engine) RecalculateINK2(ctx context.Context, ledger *models.Ledger, overrides map[string]decimal.Decimal) ([]models.LineItem, error) {
	if ledger == nil {
		ledger = models.NewLedger()
	}
	snap, err := e.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	rr := e.builder.BuildRR(snap, ledger)
	br := e.builder.BuildBR(snap, ledger, rr)
	ink2 := e.builder.BuildINK2(snap, report.INK2Input{Ledger: ledger, RR: rr, BR: br, Overrides: overrides})

	e.logger.Info("Recalculated INK2", logging.F("overrides", len(overrides)))
	if e.opts.Persist && e.opts.PersistINK2 {
		e.persist(ctx, ledger.Company, models.SectionINK2, ink2)
	}
	return ink2, nil
}

// UpdateFormula validates and stores a row formula, then invalidates the
// template cache so the next build sees it.
func (e *Engine) UpdateFormula(ctx context.Context, section models.Section, rowID int, src string) error {
	if _, err := formula.Compile(src); err != nil {
		return err
	}
	if err := e.templates.UpdateRowFormula(ctx, section, rowID, src); err != nil {
		return err
	}
	e.cache.Invalidate()
	return nil
}

// StoredRows returns the persisted rows of a company and year.
func (e *Engine) StoredRows(ctx context.Context, companyID string, fiscalYear int) (map[models.Section]map[string]decimal.Decimal, error) {
	if e.reports == nil {
		return nil, fmt.Errorf("no report store configured")
	}
	return e.reports.LoadReportRows(ctx, companyID, fiscalYear)
}

// StoredReports lists persisted reports.
func (e *Engine) StoredReports(ctx context.Context) ([]store.StoredReport, error) {
	if e.reports == nil {
		return nil, fmt.Errorf("no report store configured")
	}
	return e.reports.ListCompanies(ctx)
}

// persist writes the current amount of every row with a variable name.
// Failures are logged only.
func (e *Engine) persist(ctx context.Context, company models.CompanyInfo, section models.Section, items []models.LineItem) {
	log := e.logger.WithFields(
		logging.F(logging.FieldSection, string(section)),
		logging.F(logging.FieldCompanyID, company.OrganizationNumber),
		logging.F(logging.FieldFiscalYear, company.FiscalYear))

	if e.reports == nil {
		return
	}
	if company.OrganizationNumber == "" {
		log.Debug("No organization number, skipping persistence")
		return
	}

	values := PersistableValues(items)
	if len(values) == 0 {
		return
	}

	if batch, ok := e.reports.(store.BatchReportStore); ok {
		if err := batch.PersistReportRows(ctx, company.OrganizationNumber, company.FiscalYear, section, values); err != nil {
			log.WithError(err).Warn("Failed to persist report rows")
			return
		}
	} else {
		failed := 0
		for name, amount := range values {
			if err := e.reports.PersistReportRow(ctx, company.OrganizationNumber, company.FiscalYear, section, name, amount); err != nil {
				failed++
				log.WithError(err).Warn("Failed to persist report row", logging.F(logging.FieldVariable, name))
			}
		}
		if failed > 0 {
			return
		}
	}
	log.Info("Persisted report rows", logging.F(logging.FieldCount, len(values)))
}

// PersistableValues maps variable name to current amount for rows that have
// both. The first row wins when a variable name repeats.
func PersistableValues(items []models.LineItem) map[string]decimal.Decimal {
	values := map[string]decimal.Decimal{}
	for _, it := range items {
		if it.VariableName == "" || it.CurrentAmount == nil {
			continue
		}
		if _, dup := values[it.VariableName]; dup {
			continue
		}
		values[it.VariableName] = *it.CurrentAmount
	}
	return values
}
