package store

import (
	"context"
	"testing"
	"time"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReportStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileReportStore(dir, logging.NewMockLogger())
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, s.PersistReportRows(ctx, "556610-3643", 2024, models.SectionRR, map[string]decimal.Decimal{
		"SumAretsResultat": decimal.RequireFromString("100000.50"),
		"Nettoomsattning":  decimal.NewFromInt(500000),
	}))
	require.NoError(t, s.PersistReportRow(ctx, "556610-3643", 2024, models.SectionBR, "SumTillgangar", decimal.NewFromInt(42)))
	require.NoError(t, s.PersistReportRow(ctx, "556610-3643", 2024, models.SectionRR, "SumAretsResultat", decimal.NewFromInt(7)))
	require.NoError(t, s.PersistReportRow(ctx, "559000-0001", 2023, models.SectionRR, "SumAretsResultat", decimal.NewFromInt(1)))

	t.Run("load", func(t *testing.T) {
		got, err := s.LoadReportRows(ctx, "556610-3643", 2024)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, decimal.NewFromInt(7).Equal(got[models.SectionRR]["SumAretsResultat"]))
		assert.True(t, decimal.NewFromInt(500000).Equal(got[models.SectionRR]["Nettoomsattning"]))
		assert.True(t, decimal.NewFromInt(42).Equal(got[models.SectionBR]["SumTillgangar"]))
	})

	t.Run("reopen", func(t *testing.T) {
		got, err := NewFileReportStore(dir, nil).LoadReportRows(ctx, "559000-0001", 2023)
		require.NoError(t, err)
		assert.Len(t, got[models.SectionRR], 1)
	})

	t.Run("unknown company", func(t *testing.T) {
		got, err := s.LoadReportRows(ctx, "000000-0000", 2024)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("list", func(t *testing.T) {
		list, err := s.ListCompanies(ctx)
		require.NoError(t, err)
		assert.Equal(t, []StoredReport{
			{CompanyID: "556610-3643", FiscalYear: 2024, Sections: []models.Section{models.SectionRR, models.SectionBR}, Rows: 3},
			{CompanyID: "559000-0001", FiscalYear: 2023, Sections: []models.Section{models.SectionRR}, Rows: 1},
		}, list)
	})
}

func TestFileReportStore_Empty(t *testing.T) {
	s := NewFileReportStore(t.TempDir(), nil)
	list, err := s.ListCompanies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, s.PersistReportRows(context.Background(), "x", 1, models.SectionRR, nil))
	assert.NoFileExists(t, s.Path())
}

func TestMockStore(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore()
	m.Templates[models.SectionRR] = []models.RowTemplate{{RowID: 1, Title: "A"}}
	m.Descriptions["1930"] = "Bank"

	rows, err := m.LoadRowTemplates(ctx, models.SectionRR)
	require.NoError(t, err)
	rows[0].Title = "changed"
	assert.Equal(t, "A", m.Templates[models.SectionRR][0].Title)
	assert.Equal(t, 1, m.LoadCalls[models.SectionRR])

	require.NoError(t, m.UpdateRowFormula(ctx, models.SectionRR, 1, "2*3"))
	assert.True(t, m.Templates[models.SectionRR][0].IsCalculated)
	assert.ErrorIs(t, m.UpdateRowFormula(ctx, models.SectionRR, 2, "1"), ErrRowNotFound)

	d, err := m.LookupAccountDescription(ctx, "1510")
	require.NoError(t, err)
	assert.Equal(t, "Konto 1510", d)

	require.NoError(t, m.PersistReportRow(ctx, "c", 2024, models.SectionRR, "X", decimal.NewFromInt(1)))
	require.NoError(t, m.PersistReportRow(ctx, "c", 2024, models.SectionRR, "X", decimal.NewFromInt(2)))
	got, err := m.LoadReportRows(ctx, "c", 2024)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2).Equal(got[models.SectionRR]["X"]))
	list, err := m.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Rows)
	assert.Len(t, m.PersistedFor(models.SectionRR), 2)
}
