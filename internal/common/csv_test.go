package common

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	Account string `csv:"account"`
	Name    string `csv:"name"`
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.csv")
	content := "account,name\n1930,Företagskonto\n2440,Leverantörsskulder\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	rows, err := ReadCSVFile[testRow](path, ',', logging.NewMockLogger())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1930", rows[0].Account)
	assert.Equal(t, "Leverantörsskulder", rows[1].Name)

	_, err = ReadCSVFile[testRow](filepath.Join(t.TempDir(), "missing.csv"), ',', logging.NewMockLogger())
	assert.Error(t, err)
}

func TestUnmarshalCSV_Delimiter(t *testing.T) {
	rows, err := UnmarshalCSV[testRow]([]byte("account;name\n1930;Bank\n"), ';')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bank", rows[0].Name)
}

func TestUnmarshalCSV_Empty(t *testing.T) {
	rows, err := UnmarshalCSV[testRow](nil, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMarshalCSV_RoundTrip(t *testing.T) {
	in := []testRow{{Account: "1930", Name: "Bank, main"}}
	data, err := MarshalCSV(in, ',')
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Bank, main"`)

	out, err := UnmarshalCSV[testRow](data, ',')
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWriteLineItemsCSV(t *testing.T) {
	amount := decimal.RequireFromString("1234.5")
	items := []models.LineItem{
		{RowID: 1, Title: "Rörelseintäkter", Section: models.SectionRR, Style: "H1", Level: 1, Bold: true},
		{RowID: 2, Title: "Nettoomsättning", Section: models.SectionRR, VariableName: "Nettoomsattning",
			CurrentAmount: &amount, PreviousAmount: models.DecimalPtr(decimal.Zero), AlwaysShow: models.BoolPtr(true)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLineItemsCSV(&buf, items, ';'))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "section;row_id;label;variable_name;current_amount"))
	assert.Contains(t, lines[1], "RR;1;Rörelseintäkter;;;;1;true;H1")
	assert.Contains(t, lines[2], "1234.50;0.00")
	assert.Contains(t, lines[2], ";true;")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "", FormatAmount(nil))
	assert.Equal(t, "-12.30", FormatAmount(models.DecimalPtr(decimal.RequireFromString("-12.3"))))
}
