package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"fjacquet/sie-report/internal/common"
	"fjacquet/sie-report/internal/fileutils"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/parsererror"

	"gopkg.in/yaml.v3"
)

// File names inside a FileStore directory.
const (
	ConstantsFile    = "constants.yaml"
	DescriptionsFile = "accounts.yaml"
	DescriptionsCSV  = "accounts.csv"
)

// FileStore is a TemplateStore backed by a directory of YAML or CSV files:
// rr.yaml|rr.csv, br.yaml|br.csv, ink2.yaml|ink2.csv, constants.yaml and
// accounts.yaml|accounts.csv. Missing files yield empty data.
type FileStore struct {
	dir       string
	delimiter rune
	logger    logging.Logger
	mu        sync.Mutex
}

// NewFileStore returns a FileStore reading from dir.
func NewFileStore(dir string, logger logging.Logger) *FileStore {
	return &FileStore{
		dir:       dir,
		delimiter: common.DefaultDelimiter,
		logger:    logging.OrDefault(logger).WithField(logging.FieldBackend, "file"),
	}
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// templateFile is the optional wrapped YAML layout: "rows: [...]".
type templateFile struct {
	Rows []models.RowTemplate `yaml:"rows"`
}

func (s *FileStore) templatePath(section models.Section) string {
	base := filepath.Join(s.dir, section.Lower())
	return fileutils.FirstExisting(base+".yaml", base+".yml", base+".csv")
}

// LoadRowTemplates implements TemplateStore. Rows that fail to parse are
// logged and skipped.
func (s *FileStore) LoadRowTemplates(ctx context.Context, section models.Section) ([]models.RowTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := s.logger.WithField(logging.FieldSection, string(section))

	path := s.templatePath(section)
	if path == "" {
		log.Warn("Template file not found, section will be empty")
		return []models.RowTemplate{}, nil
	}

	templates, _, err := s.readTemplates(path, log)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		templates[i].Section = section
	}
	sort.SliceStable(templates, func(i, j int) bool { return templates[i].RowID < templates[j].RowID })

	log.Debug("Loaded row templates", logging.F(logging.FieldFile, path), logging.F(logging.FieldCount, len(templates)))
	return templates, nil
}

// readTemplates returns the templates in file order and whether a YAML file
// uses the wrapped layout.
func (s *FileStore) readTemplates(path string, log logging.Logger) ([]models.RowTemplate, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, &parsererror.StoreError{Op: "read " + filepath.Base(path), Err: err}
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err := common.UnmarshalCSV[templateCSVRow](data, s.delimiter)
		if err != nil {
			return nil, false, &parsererror.ParseError{Parser: filepath.Base(path), Field: "rows", Err: err}
		}
		templates := make([]models.RowTemplate, 0, len(rows))
		for i, row := range rows {
			tpl, err := row.toTemplate(filepath.Base(path))
			if err != nil {
				log.WithError(err).Warn("Skipping invalid template row", logging.F("line", i+2))
				continue
			}
			templates = append(templates, tpl)
		}
		return templates, false, nil
	}

	root, err := documentRoot(data)
	if err != nil {
		return nil, false, &parsererror.ParseError{Parser: filepath.Base(path), Field: "rows", Err: err}
	}
	if root == nil {
		return []models.RowTemplate{}, false, nil
	}

	if root.Kind == yaml.MappingNode {
		var wrapped templateFile
		if err := root.Decode(&wrapped); err != nil {
			return nil, true, &parsererror.ParseError{Parser: filepath.Base(path), Field: "rows", Err: err}
		}
		if wrapped.Rows == nil {
			wrapped.Rows = []models.RowTemplate{}
		}
		return wrapped.Rows, true, nil
	}

	var templates []models.RowTemplate
	if err := root.Decode(&templates); err != nil {
		return nil, false, &parsererror.ParseError{Parser: filepath.Base(path), Field: "rows", Err: err}
	}
	if templates == nil {
		templates = []models.RowTemplate{}
	}
	return templates, false, nil
}

// LoadGlobalConstants implements TemplateStore.
func (s *FileStore) LoadGlobalConstants(ctx context.Context) (models.Constants, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, ConstantsFile)
	if !fileutils.FileExists(path) {
		s.logger.Warn("Constants file not found", logging.F(logging.FieldFile, path))
		return models.Constants{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &parsererror.StoreError{Op: "read " + ConstantsFile, Err: err}
	}

	entries, err := parseConstantsYAML(data, ConstantsFile)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", ConstantsFile, err)
	}
	constants, skipped := toConstants(entries, ConstantsFile)
	for _, e := range skipped {
		s.logger.WithError(e).Warn("Skipping invalid constant")
	}
	s.logger.Debug("Loaded global constants", logging.F(logging.FieldCount, len(constants)))
	return constants, nil
}

// descriptionRow is the CSV shape of accounts.csv.
type descriptionRow struct {
	AccountID   string `csv:"account_id"`
	Description string `csv:"description"`
}

// LoadAccountDescriptions implements TemplateStore.
func (s *FileStore) LoadAccountDescriptions(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if path := filepath.Join(s.dir, DescriptionsFile); fileutils.FileExists(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &parsererror.StoreError{Op: "read " + DescriptionsFile, Err: err}
		}
		return parseDescriptionsYAML(data, DescriptionsFile)
	}

	if path := filepath.Join(s.dir, DescriptionsCSV); fileutils.FileExists(path) {
		rows, err := common.ReadCSVFile[descriptionRow](path, s.delimiter, s.logger)
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(rows))
		for _, r := range rows {
			if id := strings.TrimSpace(r.AccountID); id != "" {
				out[id] = strings.TrimSpace(r.Description)
			}
		}
		return out, nil
	}

	return map[string]string{}, nil
}

// LookupAccountDescription implements TemplateStore.
func (s *FileStore) LookupAccountDescription(ctx context.Context, accountID string) (string, error) {
	descriptions, err := s.LoadAccountDescriptions(ctx)
	if err != nil {
		return "", err
	}
	return DescriptionOrDefault(descriptions, accountID), nil
}

// UpdateRowFormula implements TemplateStore. The section file is rewritten
// atomically in its original format.
func (s *FileStore) UpdateRowFormula(ctx context.Context, section models.Section, rowID int, formula string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.WithFields(
		logging.F(logging.FieldSection, string(section)),
		logging.F(logging.FieldRowID, rowID))

	path := s.templatePath(section)
	if path == "" {
		return fmt.Errorf("%s row %d: %w", section, rowID, ErrRowNotFound)
	}
	templates, wrapped, err := s.readTemplates(path, log)
	if err != nil {
		return err
	}

	found := false
	for i := range templates {
		if templates[i].RowID == rowID {
			templates[i].CalculationFormula = formula
			templates[i].IsCalculated = true
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%s row %d: %w", section, rowID, ErrRowNotFound)
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows := make([]templateCSVRow, len(templates))
		for i, t := range templates {
			rows[i] = fromTemplate(t)
		}
		data, err = common.MarshalCSV(rows, s.delimiter)
	} else if wrapped {
		data, err = yaml.Marshal(templateFile{Rows: templates})
	} else {
		data, err = yaml.Marshal(templates)
	}
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", filepath.Base(path), err)
	}

	if err := fileutils.WriteFileAtomic(path, data, 0644); err != nil {
		return &parsererror.StoreError{Op: "write " + filepath.Base(path), Err: err}
	}
	log.Info("Updated row formula", logging.F(logging.FieldFormula, formula))
	return nil
}

var _ TemplateStore = (*FileStore)(nil)
