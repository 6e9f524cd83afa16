package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSIEDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"plain", "20240101", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"quoted", `"20241231"`, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{"padded", "  20230630 ", time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), false},
		{"iso layout rejected", "2024-01-01", time.Time{}, true},
		{"invalid month", "20241301", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSIEDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestFiscalYearFromDate(t *testing.T) {
	year, err := FiscalYearFromDate("20240501")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)

	_, err = FiscalYearFromDate("20")
	assert.Error(t, err)

	_, err = FiscalYearFromDate("abcd0101")
	assert.Error(t, err)
}
