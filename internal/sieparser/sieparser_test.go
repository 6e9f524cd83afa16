package sieparser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLedger = `#FLAGGA 0
#FORMAT PC8
#SIETYP 4
#FNAMN "Exempel AB"
#ORGNR 556610-3643
#RAR 0 20240101 20241231
#RAR -1 20230101 20231231
#KONTO 1930 "Företagskonto"
#UB 0 1930 50000.00
#UB -1 1930 42000.50
#UB 0 2440 -12500
#RES 0 3010 -500000.00
#RES -1 3010 -450000.00
#RES 0 5010 120000,50
#UB -2 1930 1.00
`

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseString_BalanceRecords(t *testing.T) {
	p := New(logging.NewMockLogger())
	ledger := p.ParseString(sampleLedger)

	require.Len(t, ledger.Current, 4)
	require.Len(t, ledger.Previous, 2)

	assert.True(t, dec("50000").Equal(ledger.Current["1930"]))
	assert.True(t, dec("42000.5").Equal(ledger.Previous["1930"]))
	assert.True(t, dec("-12500").Equal(ledger.Current["2440"]))
	assert.True(t, dec("-500000").Equal(ledger.Current["3010"]))
	assert.True(t, dec("-450000").Equal(ledger.Previous["3010"]))
	assert.True(t, dec("120000.5").Equal(ledger.Current["5010"]), "decimal comma accepted")

	assert.Equal(t, 6, ledger.Stats.Records)
	assert.Equal(t, 0, ledger.Stats.Skipped)
}

func TestParseString_CompanyInfo(t *testing.T) {
	ledger := New(logging.NewMockLogger()).ParseString(sampleLedger)

	assert.Equal(t, "Exempel AB", ledger.Company.Name)
	assert.Equal(t, "556610-3643", ledger.Company.OrganizationNumber)
	assert.Equal(t, 2024, ledger.Company.FiscalYear)
	assert.True(t, ledger.Company.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, ledger.Company.EndDate.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.True(t, ledger.Company.PreviousStartDate.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, ledger.Company.PreviousEndDate.Equal(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestParseString_MalformedLinesSkipped(t *testing.T) {
	text := strings.Join([]string{
		"#UB 0 1910 100",
		"#UB abc xyz",
		"#UB 0 1920",
		"#RES 0 3010 notanumber",
		"#UB 0 1930 250.25",
	}, "\n")

	ledger := New(logging.NewMockLogger()).ParseString(text)

	assert.Len(t, ledger.Current, 2)
	assert.True(t, dec("100").Equal(ledger.Current["1910"]))
	assert.True(t, dec("250.25").Equal(ledger.Current["1930"]))
	assert.Equal(t, 3, ledger.Stats.Skipped)
	assert.Equal(t, 5, ledger.Stats.Lines)
}

func TestParseString_LongLineKeepsFollowingRecords(t *testing.T) {
	text := "#UB 0 1930 100\n#KOMMENTAR " + strings.Repeat("x", 2<<20) + "\n#UB 0 1940 200\n#RES 0 3000 -500\n"

	ledger := New(logging.NewMockLogger()).ParseString(text)

	require.Len(t, ledger.Current, 3)
	assert.True(t, dec("100").Equal(ledger.Current["1930"]))
	assert.True(t, dec("200").Equal(ledger.Current["1940"]))
	assert.True(t, dec("-500").Equal(ledger.Current["3000"]))
	assert.Equal(t, 0, ledger.Stats.Skipped)
	assert.Equal(t, 4, ledger.Stats.Lines)
}

func TestParseString_LegacyRecords(t *testing.T) {
	text := "#VER 1930 1500\n#VER A 1 20240105 \"Faktura\"\n#UB -1 1930 10\n#VER 2440 -300.5\n"
	ledger := New(logging.NewMockLogger()).ParseString(text)

	assert.Len(t, ledger.Current, 2)
	assert.True(t, dec("1500").Equal(ledger.Current["1930"]))
	assert.True(t, dec("-300.5").Equal(ledger.Current["2440"]))
	assert.Len(t, ledger.Previous, 1)
}

func TestParseString_MissingPeriods(t *testing.T) {
	ledger := New(logging.NewMockLogger()).ParseString("#UB 0 1930 1\n")
	assert.NotNil(t, ledger.Previous)
	assert.Empty(t, ledger.Previous)

	empty := New(logging.NewMockLogger()).ParseString("")
	assert.Empty(t, empty.Current)
	assert.Equal(t, 0, empty.Company.FiscalYear)
}

func TestParseString_QuotedAccount(t *testing.T) {
	ledger := New(logging.NewMockLogger()).ParseString(`#UB 0 "1930" 75` + "\r\n")
	assert.True(t, dec("75").Equal(ledger.Current["1930"]))
}

func TestDecode(t *testing.T) {
	latin1 := []byte("#FNAMN \"F\xf6retag \xc5AB\"\n")

	tests := []struct {
		name      string
		data      []byte
		encodings []string
		want      string
		wantErr   bool
	}{
		{
			name:      "valid utf-8",
			data:      []byte("#FNAMN \"Företag ÅAB\"\n"),
			encodings: nil,
			want:      "#FNAMN \"Företag ÅAB\"\n",
		},
		{
			name: "utf-8 bom stripped",
			data: append([]byte{0xEF, 0xBB, 0xBF}, []byte("#UB 0 1930 1")...),
			want: "#UB 0 1930 1",
		},
		{
			name:      "falls back to windows-1252",
			data:      latin1,
			encodings: []string{"utf-8", "windows-1252"},
			want:      "#FNAMN \"Företag ÅAB\"\n",
		},
		{
			name:      "iso-8859-1",
			data:      latin1,
			encodings: []string{"ISO-8859-1"},
			want:      "#FNAMN \"Företag ÅAB\"\n",
		},
		{
			name:      "pc8",
			data:      []byte("\x94\x8f"),
			encodings: []string{"PC8"},
			want:      "öÅ",
		},
		{
			name:      "unknown encodings skipped",
			data:      latin1,
			encodings: []string{"ebcdic", "latin1"},
			want:      "#FNAMN \"Företag ÅAB\"\n",
		},
		{
			name:      "nothing decodes",
			data:      latin1,
			encodings: []string{"utf-8"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data, tt.encodings)
			if tt.wantErr {
				var encErr *parsererror.EncodingError
				require.True(t, errors.As(err, &encErr))
				assert.Equal(t, tt.encodings, encErr.Tried)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_PC8Declared(t *testing.T) {
	data := []byte("#FORMAT PC8\n#FNAMN \"K\x94p AB\"\n#UB 0 1930 5\n")
	ledger, err := New(logging.NewMockLogger()).Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, "Köp AB", ledger.Company.Name)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "export.SE")
		require.NoError(t, os.WriteFile(path, []byte(sampleLedger), 0600))

		ledger, err := New(logging.NewMockLogger()).ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, 2024, ledger.Company.FiscalYear)
		assert.Len(t, ledger.Current, 4)
	})

	t.Run("bad extension", func(t *testing.T) {
		path := filepath.Join(dir, "export.txt")
		require.NoError(t, os.WriteFile(path, []byte(sampleLedger), 0600))

		_, err := New(logging.NewMockLogger()).ParseFile(path)
		var formatErr *parsererror.InvalidFormatError
		assert.True(t, errors.As(err, &formatErr))
	})

	t.Run("undecodable", func(t *testing.T) {
		path := filepath.Join(dir, "bad.se")
		require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0600))

		_, err := New(logging.NewMockLogger(), "utf-8").ParseFile(path)
		var encErr *parsererror.EncodingError
		require.True(t, errors.As(err, &encErr))
		assert.Equal(t, path, encErr.FilePath)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := New(logging.NewMockLogger()).ParseFile(filepath.Join(dir, "missing.se"))
		assert.Error(t, err)
	})
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{`#UB 0 1930 100`, []string{"#UB", "0", "1930", "100"}},
		{`#FNAMN "Exempel AB"`, []string{"#FNAMN", "Exempel AB"}},
		{`#FNAMN "Say \"hi\""`, []string{"#FNAMN", `Say "hi"`}},
		{"#RES\t0  3010\t-5", []string{"#RES", "0", "3010", "-5"}},
		{`#OUB 0 1930 {1 "A B"} 10`, []string{"#OUB", "0", "1930", `{1 "A B"}`, "10"}},
		{`#FNAMN ""`, []string{"#FNAMN", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, splitFields(tt.line))
		})
	}
}
