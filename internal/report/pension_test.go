package report

import (
	"testing"

	"fjacquet/sie-report/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPensionTax(t *testing.T) {
	ledger := ledgerOf(map[string]string{"7410": "100000", "7531": "-20000"}, nil)
	got := PensionTax(ledger, models.Constants{models.ConstPayrollTaxRate: dec("0.2426")})

	assert.True(t, dec("100000").Equal(got.Premiums))
	assert.True(t, dec("20000").Equal(got.BookedTax))
	assert.True(t, dec("24260").Equal(got.CalculatedTax))
	assert.True(t, dec("4260").Equal(got.Adjustment))

	empty := PensionTax(nil, nil)
	assert.True(t, empty.CalculatedTax.IsZero())
}
