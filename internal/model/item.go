package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Item is a consumable in the stock catalog.
type Item struct {
	ID         int64               `json:"id"`
	StockPlace string              `json:"stock_place"`
	ItemName   string              `json:"item_name"`
	Minimum    string              `json:"minimum"`
	MinValue   decimal.NullDecimal `json:"min_value"`
	MinUnit    string              `json:"min_unit"`
	Category   string              `json:"category"`
	SortOrder  int                 `json:"sort_order"`
}

// ItemInput is the editable part of an item. The minimum is given as a
// structured value and unit; the display text is derived from them.
type ItemInput struct {
	StockPlace string              `json:"stock_place" validate:"required,max=100"`
	ItemName   string              `json:"item_name" validate:"required,max=200"`
	MinValue   decimal.NullDecimal `json:"min_value"`
	MinUnit    string              `json:"min_unit" validate:"max=50"`
	Category   string              `json:"category" validate:"max=100"`
}

// Default category for items created without one.
const CategoryCommon = "Common"

var minimumPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(.*)$`)

// ParseMinimum splits free-form minimum text such as "6 bottles" into a value
// and a unit. Text without a leading number has no value and is kept whole
// as the unit.
func ParseMinimum(text string) (decimal.NullDecimal, string) {
	text = strings.TrimSpace(text)
	m := minimumPattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.NullDecimal{}, text
	}
	v, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.NullDecimal{}, text
	}
	return decimal.NewNullDecimal(v), strings.TrimSpace(m[2])
}

// FormatMinimum is the inverse of ParseMinimum for display.
func FormatMinimum(value decimal.NullDecimal, unit string) string {
	unit = strings.TrimSpace(unit)
	if !value.Valid {
		return unit
	}
	if unit == "" {
		return value.Decimal.String()
	}
	return fmt.Sprintf("%s %s", value.Decimal.String(), unit)
}
