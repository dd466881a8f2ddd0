package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
items:
  - stock_place: "4°C refrigerator"
    item: DMEM(LM001-05)
    minimum: 6 bottles
    category: Common
  - stock_place: Dr.Lee
    item: Tip 10uL
    minimum: 2 bags
    category: Dr.Lee
  - stock_place: Shelf
    item: Paper towel
    minimum: plenty
`

func TestParse(t *testing.T) {
	items, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "4°C refrigerator", items[0].StockPlace)
	assert.Equal(t, "DMEM(LM001-05)", items[0].ItemName)
	assert.True(t, items[0].MinValue.Valid)
	assert.True(t, items[0].MinValue.Decimal.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, "bottles", items[0].MinUnit)
	assert.Equal(t, 1, items[0].SortOrder)

	assert.Equal(t, "Dr.Lee", items[1].Category)
	assert.Equal(t, 2, items[1].SortOrder)

	assert.False(t, items[2].MinValue.Valid)
	assert.Equal(t, "plenty", items[2].MinUnit)
	assert.Empty(t, items[2].Category)
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"empty":        `items: []`,
		"missing item": "items:\n  - stock_place: Shelf\n",
		"duplicate":    "items:\n  - {stock_place: Shelf, item: A}\n  - {stock_place: Shelf, item: A}\n",
		"bad yaml":     "items: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadShippedCatalog(t *testing.T) {
	items, err := Load(filepath.Join("..", "..", "configs", "catalog.yaml"))
	require.NoError(t, err)
	assert.Len(t, items, 34)
	assert.Equal(t, "Dr.Lee", items[len(items)-1].Category)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
