package status

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func minimum(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func TestCompute(t *testing.T) {
	none := decimal.NullDecimal{}

	tests := []struct {
		name     string
		quantity string
		min      decimal.NullDecimal
		want     Status
	}{
		{"below minimum", "3", minimum("6"), Low},
		{"at minimum", "6", minimum("6"), OK},
		{"above minimum", "7.5", minimum("6"), OK},
		{"fractional below", "5.9", minimum("6"), Low},
		{"zero", "0", minimum("6"), Empty},
		{"zero decimal", "0.0", minimum("6"), Empty},
		{"zero without minimum", "0", none, Empty},
		{"unlimited", "9999", minimum("6"), OK},
		{"unlimited without minimum", "9999", none, OK},
		{"unlimited above huge minimum", "9999", minimum("100000"), OK},
		{"no minimum", "5", none, Unknown},
		{"not a number", "abc", minimum("6"), Unknown},
		{"negative", "-1", minimum("6"), Unknown},
		{"empty", "", minimum("6"), Unknown},
		{"whitespace padded", " 3 ", minimum("6"), Low},
		{"exponent notation", "1e3", minimum("6"), Unknown},
		{"huge exponent", "1e999999999", minimum("6"), Unknown},
		{"minimum with huge exponent", "5", decimal.NewNullDecimal(decimal.New(1, 999999999)), Unknown},
		{"minimum with tiny exponent", "5", decimal.NewNullDecimal(decimal.New(1, -999999999)), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(tt.quantity, tt.min))
		})
	}
}

func TestComputeIsTotal(t *testing.T) {
	for _, q := range []string{"1e3", "NaN", "∞", "9999.0", "0x10", "  ", "1,000"} {
		assert.True(t, Compute(q, minimum("1")).Valid(), q)
	}
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity("2.5")
	assert.NoError(t, err)
	assert.True(t, q.Equal(decimal.RequireFromString("2.5")))

	_, err = ParseQuantity("-0.5")
	assert.Error(t, err)

	_, err = ParseQuantity("lots")
	assert.Error(t, err)

	for _, q := range []string{"1e3", "1E2000000", "1e999999999", ".5", "5.", "+3", strings.Repeat("9", 33)} {
		_, err = ParseQuantity(q)
		assert.Error(t, err, q)
	}

	q, err = ParseQuantity(strings.Repeat("9", 32))
	assert.NoError(t, err)
	assert.True(t, InRange(q))
}

func TestExponentQuantitiesAreCheap(t *testing.T) {
	start := time.Now()
	for _, q := range []string{"1e2000000", "1e20000000", "1e999999999", "9999e999999999"} {
		assert.Equal(t, Unknown, Compute(q, minimum("6")), q)
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(decimal.RequireFromString("2.5")))
	assert.True(t, InRange(decimal.New(6, 3)))
	assert.False(t, InRange(decimal.New(1, 33)))
	assert.False(t, InRange(decimal.New(1, -33)))
}
