package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/sie-report/internal/config"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/sqlstore"
	"fjacquet/sie-report/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	var c config.Config
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Templates.Backend = backend
	c.Templates.Directory = dir
	c.Database.Path = filepath.Join(dir, "reports.db")
	c.Database.Persist = true
	c.Output.Format = "json"
	c.Output.Delimiter = ";"
	return &c
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      func(t *testing.T) *config.Config
		expectError string
	}{
		{
			name:        "nil config",
			config:      func(t *testing.T) *config.Config { return nil },
			expectError: "configuration cannot be nil",
		},
		{
			name:   "file backend",
			config: func(t *testing.T) *config.Config { return testConfig(t, config.BackendFile) },
		},
		{
			name:   "sqlite backend",
			config: func(t *testing.T) *config.Config { return testConfig(t, config.BackendSQLite) },
		},
		{
			name:        "unknown backend",
			config:      func(t *testing.T) *config.Config { return testConfig(t, "mongo") },
			expectError: "unknown templates backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainerWithLogger(tt.config(t), logging.NewMockLogger())
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, c.Close()) })

			assert.NotNil(t, c.GetLogger())
			assert.NotNil(t, c.GetConfig())
			assert.NotNil(t, c.GetTemplateStore())
			assert.NotNil(t, c.GetReportStore())
			assert.NotNil(t, c.GetParser())
			assert.NotNil(t, c.GetCache())
			assert.NotNil(t, c.GetEngine())
			assert.NotNil(t, c.GetGenerator())
			assert.Same(t, c.GetCache(), c.GetEngine().Cache())
		})
	}
}

func TestNewContainer_BackendTypes(t *testing.T) {
	fc, err := NewContainerWithLogger(testConfig(t, config.BackendFile), nil)
	require.NoError(t, err)
	_, ok := fc.GetTemplateStore().(*store.FileStore)
	assert.True(t, ok)
	_, ok = fc.GetReportStore().(*store.FileReportStore)
	assert.True(t, ok)

	sc, err := NewContainerWithLogger(testConfig(t, config.BackendSQLite), nil)
	require.NoError(t, err)
	defer sc.Close()
	_, ok = sc.GetTemplateStore().(*sqlstore.Store)
	assert.True(t, ok)
}

func TestContainer_BuildsFromFileBackend(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	rr := "rows:\n  - row_id: 10\n    row_title: Intäkter\n    variable_name: Intakter\n    accounts_included_start: 3000\n    accounts_included_end: 3999\n    show_amount: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Templates.Directory, "rr.yaml"), []byte(rr), 0644))

	ledgerPath := filepath.Join(t.TempDir(), "ledger.se")
	require.NoError(t, os.WriteFile(ledgerPath, []byte("#ORGNR 556000-0001\n#RAR 0 20240101 20241231\n#RES 0 3010 -1000.00\n"), 0644))

	c, err := NewContainerWithLogger(cfg, nil)
	require.NoError(t, err)

	doc, err := c.GetEngine().BuildFile(context.Background(), ledgerPath, nil)
	require.NoError(t, err)
	require.Len(t, doc.RR, 1)
	assert.Equal(t, "1000", doc.RR[0].Amount().String())

	rows, err := c.GetEngine().StoredRows(context.Background(), "556000-0001", 2024)
	require.NoError(t, err)
	assert.Equal(t, "1000", rows[models.SectionRR]["Intakter"].String())
}

func TestContainer_SQLiteWatchReloadsTemplates(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendSQLite)
	cfg.Database.WatchInterval = 10 * time.Millisecond

	editor, err := sqlstore.Open(cfg.Database.Path, nil)
	require.NoError(t, err)
	defer editor.Close()
	require.NoError(t, editor.ImportTemplates(ctx, models.SectionRR, []models.RowTemplate{
		{RowID: 10, VariableName: "Sum", IsCalculated: true, CalculationFormula: "1", ShowAmount: true},
	}))

	c, err := NewContainerWithLogger(cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	snap, err := c.GetCache().Get(ctx)
	require.NoError(t, err)
	require.Len(t, snap.RR, 1)
	assert.Equal(t, "1", snap.RR[0].CalculationFormula)

	// another process edits the formula; the watch must invalidate the cache
	require.NoError(t, editor.UpdateRowFormula(ctx, models.SectionRR, 10, "2"))
	assert.Eventually(t, func() bool {
		snap, err := c.GetCache().Get(ctx)
		return err == nil && snap.RR[0].CalculationFormula == "2"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewContainer_ConfiguredLogger(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	cfg.Log.Format = "json"
	c, err := NewContainer(cfg)
	require.NoError(t, err)
	assert.NotNil(t, c.GetLogger())
	assert.NoError(t, c.Close())

	_, err = NewContainer(nil)
	assert.Error(t, err)
}
