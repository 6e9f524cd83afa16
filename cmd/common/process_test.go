package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOutput(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteOutput([]byte("hello"), "", &buf, nil))
		assert.Equal(t, "hello", buf.String())
	})

	t.Run("file", func(t *testing.T) {
		logger := logging.NewMockLogger()
		path := filepath.Join(t.TempDir(), "out", "report.json")
		require.NoError(t, WriteOutput([]byte("{}"), path, nil, logger))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))
		assert.True(t, logger.HasEntry("INFO", "Wrote report"))
	})
}

func TestParseSections(t *testing.T) {
	tests := []struct {
		in      string
		want    []models.Section
		wantErr bool
	}{
		{in: "", want: models.Sections},
		{in: "ALL", want: models.Sections},
		{in: "br", want: []models.Section{models.SectionBR}},
		{in: "rr, ink2, rr", want: []models.Section{models.SectionRR, models.SectionINK2}},
		{in: "xx", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSections(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOverrides(t *testing.T) {
	got, err := ParseOverrides([]string{"INK4.1=1000", " INK4.3c = -250,50"})
	require.NoError(t, err)
	assert.Equal(t, "1000", got["INK4.1"].String())
	assert.Equal(t, "-250.5", got["INK4.3c"].String())

	for _, bad := range []string{"novalue", "=5", "X=abc"} {
		_, err := ParseOverrides([]string{bad})
		assert.Error(t, err, bad)
	}
}
