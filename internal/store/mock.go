package store

import (
	"context"
	"fmt"
	"sync"

	"fjacquet/sie-report/internal/models"

	"github.com/shopspring/decimal"
)

// PersistedRow is one call recorded by MockStore.PersistReportRow.
type PersistedRow struct {
	CompanyID  string
	FiscalYear int
	Section    models.Section
	Variable   string
	Amount     decimal.Decimal
}

// MockStore is an in-memory TemplateStore and ReportStore for testing.
type MockStore struct {
	Templates    map[models.Section][]models.RowTemplate
	Constants    models.Constants
	Descriptions map[string]string
	Persisted    []PersistedRow

	// Error flags for testing error conditions
	LoadTemplatesError    error
	LoadConstantsError    error
	LoadDescriptionsError error
	UpdateFormulaError    error
	PersistError          error
	LoadReportRowsError   error

	// LoadCalls counts LoadRowTemplates calls per section.
	LoadCalls map[models.Section]int

	mu sync.Mutex
}

// NewMockStore returns an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		Templates:    map[models.Section][]models.RowTemplate{},
		Constants:    models.Constants{},
		Descriptions: map[string]string{},
		LoadCalls:    map[models.Section]int{},
	}
}

// LoadRowTemplates returns a copy of the section's templates.
func (m *MockStore) LoadRowTemplates(_ context.Context, section models.Section) ([]models.RowTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadCalls == nil {
		m.LoadCalls = map[models.Section]int{}
	}
	m.LoadCalls[section]++
	if m.LoadTemplatesError != nil {
		return nil, m.LoadTemplatesError
	}
	out := models.CloneTemplates(m.Templates[section])
	if out == nil {
		out = []models.RowTemplate{}
	}
	for i := range out {
		out[i].Section = section
	}
	return out, nil
}

// LoadGlobalConstants returns a copy of the mock constants.
func (m *MockStore) LoadGlobalConstants(_ context.Context) (models.Constants, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadConstantsError != nil {
		return nil, m.LoadConstantsError
	}
	if m.Constants == nil {
		return models.Constants{}, nil
	}
	return m.Constants.Clone(), nil
}

// LoadAccountDescriptions returns a copy of the mock descriptions.
func (m *MockStore) LoadAccountDescriptions(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadDescriptionsError != nil {
		return nil, m.LoadDescriptionsError
	}
	result := make(map[string]string, len(m.Descriptions))
	for k, v := range m.Descriptions {
		result[k] = v
	}
	return result, nil
}

// LookupAccountDescription returns the description or the fallback label.
func (m *MockStore) LookupAccountDescription(ctx context.Context, accountID string) (string, error) {
	descriptions, err := m.LoadAccountDescriptions(ctx)
	if err != nil {
		return "", err
	}
	return DescriptionOrDefault(descriptions, accountID), nil
}

// UpdateRowFormula edits the matching template in place.
func (m *MockStore) UpdateRowFormula(_ context.Context, section models.Section, rowID int, formula string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateFormulaError != nil {
		return m.UpdateFormulaError
	}
	rows := m.Templates[section]
	for i := range rows {
		if rows[i].RowID == rowID {
			rows[i].CalculationFormula = formula
			rows[i].IsCalculated = true
			return nil
		}
	}
	return fmt.Errorf("%s row %d: %w", section, rowID, ErrRowNotFound)
}

// PersistReportRow records the call.
func (m *MockStore) PersistReportRow(_ context.Context, companyID string, fiscalYear int, section models.Section, variable string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PersistError != nil {
		return m.PersistError
	}
	m.Persisted = append(m.Persisted, PersistedRow{
		CompanyID:  companyID,
		FiscalYear: fiscalYear,
		Section:    section,
		Variable:   variable,
		Amount:     amount,
	})
	return nil
}

// LoadReportRows rebuilds the stored rows from the recorded calls. Later
// calls win.
func (m *MockStore) LoadReportRows(_ context.Context, companyID string, fiscalYear int) (map[models.Section]map[string]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadReportRowsError != nil {
		return nil, m.LoadReportRowsError
	}
	out := map[models.Section]map[string]decimal.Decimal{}
	for _, p := range m.Persisted {
		if p.CompanyID != companyID || p.FiscalYear != fiscalYear {
			continue
		}
		if out[p.Section] == nil {
			out[p.Section] = map[string]decimal.Decimal{}
		}
		out[p.Section][p.Variable] = p.Amount
	}
	return out, nil
}

// ListCompanies summarises the recorded calls.
func (m *MockStore) ListCompanies(_ context.Context) ([]StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadReportRowsError != nil {
		return nil, m.LoadReportRowsError
	}
	type key struct {
		company string
		year    int
	}
	vars := map[key]map[models.Section]map[string]bool{}
	var order []key
	for _, p := range m.Persisted {
		k := key{p.CompanyID, p.FiscalYear}
		if vars[k] == nil {
			vars[k] = map[models.Section]map[string]bool{}
			order = append(order, k)
		}
		if vars[k][p.Section] == nil {
			vars[k][p.Section] = map[string]bool{}
		}
		vars[k][p.Section][p.Variable] = true
	}
	out := make([]StoredReport, 0, len(order))
	for _, k := range order {
		r := StoredReport{CompanyID: k.company, FiscalYear: k.year}
		for section, names := range vars[k] {
			r.Sections = append(r.Sections, section)
			r.Rows += len(names)
		}
		out = append(out, r)
	}
	SortStoredReports(out)
	return out, nil
}

// PersistedFor returns the recorded rows of one section.
func (m *MockStore) PersistedFor(section models.Section) []PersistedRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PersistedRow
	for _, p := range m.Persisted {
		if p.Section == section {
			out = append(out, p)
		}
	}
	return out
}

var (
	_ TemplateStore = (*MockStore)(nil)
	_ ReportStore   = (*MockStore)(nil)
)
