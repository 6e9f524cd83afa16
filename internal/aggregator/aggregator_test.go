package aggregator

import (
	"testing"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balances(kv ...string) models.BalanceMap {
	out := models.BalanceMap{}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = d(kv[i+1])
	}
	return out
}

func TestComputeRowValue(t *testing.T) {
	ledger := balances(
		"1910", "1000",
		"1930", "50000",
		"1940", "250.50",
		"2440", "-8000",
		"3000", "500000",
		"3010", "-20000",
		"4910", "10",
		"4931", "5",
		"4932", "99",
		"7000", "300",
	)

	tests := []struct {
		name string
		tpl  models.RowTemplate
		want string
	}{
		{
			name: "asset range not inverted",
			tpl:  models.RowTemplate{IncludeStart: 1900, IncludeEnd: 1999},
			want: "51250.50",
		},
		{
			name: "revenue range inverted",
			tpl:  models.RowTemplate{IncludeStart: 3000, IncludeEnd: 3999},
			want: "-480000",
		},
		{
			name: "single account in example",
			tpl:  models.RowTemplate{IncludeStart: 3000, IncludeEnd: 3000},
			want: "-500000",
		},
		{
			name: "list of singles and sub-ranges",
			tpl:  models.RowTemplate{IncludeList: "1910; 1930-1939"},
			want: "51000",
		},
		{
			name: "list sub-range in invert range",
			tpl:  models.RowTemplate{IncludeList: "1930; 4910-4931"},
			want: "-50015",
		},
		{
			name: "list single id in invert range",
			tpl:  models.RowTemplate{IncludeList: "1930;2440"},
			want: "-42000",
		},
		{
			name: "exclude range",
			tpl: models.RowTemplate{
				IncludeStart: 1900, IncludeEnd: 1999,
				ExcludeStart: 1940, ExcludeEnd: 1949,
			},
			want: "51000",
		},
		{
			name: "exclude list single",
			tpl: models.RowTemplate{
				IncludeStart: 1900, IncludeEnd: 1999,
				ExcludeList:  "1910",
			},
			want: "50250.50",
		},
		{
			name: "exclude list range",
			tpl: models.RowTemplate{
				IncludeStart: 4900, IncludeEnd: 4999,
				ExcludeList:  "4930-4939",
			},
			want: "-10",
		},
		{
			name: "overlap counted twice",
			tpl:  models.RowTemplate{IncludeStart: 1900, IncludeEnd: 1999, IncludeList: "1930"},
			want: "101250.50",
		},
		{
			name: "no membership rule",
			tpl:  models.RowTemplate{},
			want: "0",
		},
		{
			name: "half-open include range ignored",
			tpl:  models.RowTemplate{IncludeStart: 1900},
			want: "0",
		},
		{
			name: "sign override positive",
			tpl:  models.RowTemplate{IncludeStart: 2440, IncludeEnd: 2440, SignOverride: "+"},
			want: "8000",
		},
		{
			name: "sign override negative",
			tpl:  models.RowTemplate{IncludeStart: 1930, IncludeEnd: 1930, SignOverride: "-"},
			want: "-50000",
		},
		{
			name: "invalid list entry ignored",
			tpl:  models.RowTemplate{IncludeList: "abc-12;1930"},
			want: "50000",
		},
		{
			name: "empty range bounds reversed",
			tpl:  models.RowTemplate{IncludeStart: 1999, IncludeEnd: 1900},
			want: "0",
		},
	}

	agg := New(logging.NewMockLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.ComputeRowValue(tt.tpl, ledger)
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestComputeRowValue_NonCanonicalKeys(t *testing.T) {
	ledger := models.BalanceMap{
		"01930": d("5"),
		"19A0":  d("7"),
		"1930":  d("1"),
	}
	agg := New(logging.NewMockLogger())

	got := agg.ComputeRowValue(models.RowTemplate{IncludeStart: 1000, IncludeEnd: 9999}, ledger)
	assert.True(t, d("1").Equal(got))

	got = agg.ComputeRowValue(models.RowTemplate{IncludeList: "19A0;01930"}, ledger)
	assert.True(t, d("12").Equal(got))
}

func TestComputeRowValue_InvertsRawSum(t *testing.T) {
	ledger := balances("2010", "100", "2099", "-40", "8989", "3", "8990", "1000")
	agg := New(logging.NewMockLogger())

	for _, start := range []int{2000, 5000, 8989} {
		tpl := models.RowTemplate{IncludeStart: start, IncludeEnd: 9999}
		rule := agg.Compile(tpl)
		raw := rule.raw(ledger)
		assert.True(t, raw.Neg().Equal(rule.Value(ledger)), "start %d", start)
	}
}

func TestShouldInvertSign(t *testing.T) {
	tests := []struct {
		name string
		tpl  models.RowTemplate
		want bool
	}{
		{"range below", models.RowTemplate{IncludeStart: 1000, IncludeEnd: 2999}, false},
		{"range lower bound 2000", models.RowTemplate{IncludeStart: 2000, IncludeEnd: 2999}, true},
		{"range lower bound 8989", models.RowTemplate{IncludeStart: 8989, IncludeEnd: 8999}, true},
		{"range above", models.RowTemplate{IncludeStart: 8990, IncludeEnd: 8999}, false},
		{"list sub-range", models.RowTemplate{IncludeList: "1930;3000-3999"}, true},
		{"list single", models.RowTemplate{IncludeList: "1930;7010"}, true},
		{"list all assets", models.RowTemplate{IncludeList: "1500-1599;1930"}, false},
		{"exclude ignored", models.RowTemplate{IncludeStart: 1000, IncludeEnd: 1999, ExcludeStart: 3000, ExcludeEnd: 3999}, false},
		{"half-open range", models.RowTemplate{IncludeStart: 3000}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldInvertSign(tt.tpl))
		})
	}
}

func TestContributions(t *testing.T) {
	ledger := balances("3010", "-300", "3020", "0", "3100", "-50", "3900", "10", "1930", "99")
	agg := New(logging.NewMockLogger())
	tpl := models.RowTemplate{IncludeStart: 3000, IncludeEnd: 3999}

	details := agg.Contributions(tpl, ledger)
	require.Len(t, details, 3)
	assert.Equal(t, "3010", details[0].AccountID)
	assert.Equal(t, "3100", details[1].AccountID)
	assert.Equal(t, "3900", details[2].AccountID)
	assert.True(t, d("300").Equal(details[0].Balance))
	assert.True(t, d("-10").Equal(details[2].Balance))

	sum := decimal.Zero
	for _, c := range details {
		sum = sum.Add(c.Balance)
	}
	assert.True(t, agg.ComputeRowValue(tpl, ledger).Equal(sum))

	assert.Nil(t, agg.Contributions(models.RowTemplate{}, ledger))
}

func TestContributions_SignOverride(t *testing.T) {
	ledger := balances("1930", "-100", "1940", "40")
	agg := New(logging.NewMockLogger())
	tpl := models.RowTemplate{IncludeList: "1930;1940", SignOverride: "+"}

	details := agg.Contributions(tpl, ledger)
	require.Len(t, details, 2)
	assert.True(t, d("100").Equal(details[0].Balance))
	assert.True(t, d("-40").Equal(details[1].Balance))
	assert.True(t, d("60").Equal(agg.ComputeRowValue(tpl, ledger)))
}

func TestCompile_LogsInvalidEntries(t *testing.T) {
	logger := logging.NewMockLogger()
	New(logger).Compile(models.RowTemplate{RowID: 7, IncludeList: "12-ab;x-1"})

	warnings := logger.GetEntriesByLevel("WARN")
	assert.Len(t, warnings, 2)
}
