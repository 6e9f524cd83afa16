package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"fjacquet/sie-report/internal/fileutils"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/parsererror"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ReportsFile is the file name used by FileReportStore.
const ReportsFile = "financial_data.yaml"

// FileReportStore persists report rows to a single YAML file keyed by
// company, fiscal year and section. Each write rewrites the file atomically.
type FileReportStore struct {
	path   string
	logger logging.Logger
	now    func() time.Time
	mu     sync.Mutex
}

type reportFile struct {
	Reports []reportRecord `yaml:"reports"`
}

type reportRecord struct {
	CompanyID  string            `yaml:"company_id"`
	FiscalYear int               `yaml:"fiscal_year"`
	ReportType string            `yaml:"report_type"`
	Values     map[string]string `yaml:"values"`
	UpdatedAt  time.Time         `yaml:"updated_at"`
}

// NewFileReportStore returns a store writing financial_data.yaml inside dir.
func NewFileReportStore(dir string, logger logging.Logger) *FileReportStore {
	return &FileReportStore{
		path:   filepath.Join(dir, ReportsFile),
		logger: logging.OrDefault(logger).WithField(logging.FieldBackend, "file"),
		now:    time.Now,
	}
}

// Path returns the backing file path.
func (s *FileReportStore) Path() string {
	return s.path
}

func (s *FileReportStore) load() (*reportFile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &reportFile{}, nil
	}
	if err != nil {
		return nil, &parsererror.StoreError{Op: "read " + ReportsFile, Err: err}
	}
	var f reportFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &parsererror.ParseError{Parser: ReportsFile, Field: "reports", Err: err}
	}
	return &f, nil
}

func (s *FileReportStore) save(f *reportFile) error {
	sort.SliceStable(f.Reports, func(i, j int) bool {
		a, b := f.Reports[i], f.Reports[j]
		if a.CompanyID != b.CompanyID {
			return a.CompanyID < b.CompanyID
		}
		if a.FiscalYear != b.FiscalYear {
			return a.FiscalYear < b.FiscalYear
		}
		return a.ReportType < b.ReportType
	})
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", ReportsFile, err)
	}
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(s.path)); err != nil {
		return &parsererror.StoreError{Op: "create directory", Err: err}
	}
	if err := fileutils.WriteFileAtomic(s.path, data, 0644); err != nil {
		return &parsererror.StoreError{Op: "write " + ReportsFile, Err: err}
	}
	return nil
}

func (f *reportFile) record(companyID string, fiscalYear int, section models.Section) *reportRecord {
	for i := range f.Reports {
		r := &f.Reports[i]
		if r.CompanyID == companyID && r.FiscalYear == fiscalYear && r.ReportType == string(section) {
			return r
		}
	}
	f.Reports = append(f.Reports, reportRecord{
		CompanyID:  companyID,
		FiscalYear: fiscalYear,
		ReportType: string(section),
		Values:     map[string]string{},
	})
	return &f.Reports[len(f.Reports)-1]
}

// PersistReportRow implements ReportStore.
func (s *FileReportStore) PersistReportRow(ctx context.Context, companyID string, fiscalYear int, section models.Section, variable string, amount decimal.Decimal) error {
	return s.PersistReportRows(ctx, companyID, fiscalYear, section, map[string]decimal.Decimal{variable: amount})
}

// PersistReportRows implements BatchReportStore. Existing values for the same
// variables are replaced; other variables are kept.
func (s *FileReportStore) PersistReportRows(ctx context.Context, companyID string, fiscalYear int, section models.Section, values map[string]decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	rec := f.record(companyID, fiscalYear, section)
	if rec.Values == nil {
		rec.Values = map[string]string{}
	}
	for name, amount := range values {
		rec.Values[name] = amount.String()
	}
	rec.UpdatedAt = s.now().UTC()

	if err := s.save(f); err != nil {
		return err
	}
	s.logger.Debug("Persisted report rows",
		logging.F(logging.FieldCompanyID, companyID),
		logging.F(logging.FieldFiscalYear, fiscalYear),
		logging.F(logging.FieldSection, string(section)),
		logging.F(logging.FieldCount, len(values)))
	return nil
}

// LoadReportRows implements ReportStore. Unknown company/year pairs yield an
// empty map.
func (s *FileReportStore) LoadReportRows(ctx context.Context, companyID string, fiscalYear int) (map[models.Section]map[string]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	out := map[models.Section]map[string]decimal.Decimal{}
	for _, r := range f.Reports {
		if r.CompanyID != companyID || r.FiscalYear != fiscalYear {
			continue
		}
		section, err := models.ParseSection(r.ReportType)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping stored report with unknown type")
			continue
		}
		values := make(map[string]decimal.Decimal, len(r.Values))
		for name, raw := range r.Values {
			v, err := decimal.NewFromString(raw)
			if err != nil {
				s.logger.WithError(err).Warn("Skipping invalid stored amount", logging.F(logging.FieldVariable, name))
				continue
			}
			values[name] = v
		}
		out[section] = values
	}
	return out, nil
}

// ListCompanies implements ReportStore.
func (s *FileReportStore) ListCompanies(ctx context.Context) ([]StoredReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	var out []StoredReport
	for _, r := range f.Reports {
		key := fmt.Sprintf("%s/%d", r.CompanyID, r.FiscalYear)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, StoredReport{CompanyID: r.CompanyID, FiscalYear: r.FiscalYear})
		}
		out[i].Sections = append(out[i].Sections, models.Section(r.ReportType))
		out[i].Rows += len(r.Values)
	}
	SortStoredReports(out)
	return out, nil
}

// SortStoredReports orders reports by company then year, with sections in
// build order.
func SortStoredReports(reports []StoredReport) {
	order := map[models.Section]int{}
	for i, s := range models.Sections {
		order[s] = i
	}
	for i := range reports {
		secs := reports[i].Sections
		sort.SliceStable(secs, func(a, b int) bool { return order[secs[a]] < order[secs[b]] })
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].CompanyID != reports[j].CompanyID {
			return reports[i].CompanyID < reports[j].CompanyID
		}
		return reports[i].FiscalYear < reports[j].FiscalYear
	})
}

var (
	_ ReportStore      = (*FileReportStore)(nil)
	_ BatchReportStore = (*FileReportStore)(nil)
)
