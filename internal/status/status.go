// Package status classifies a counted quantity against an item's minimum.
package status

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Status is the classification of a single check.
type Status string

const (
	OK      Status = "ok"
	Low     Status = "low"
	Empty   Status = "empty"
	Unknown Status = "unknown"
)

// Unlimited is the sentinel quantity meaning "plenty, don't count". It is
// always OK regardless of the configured minimum.
var Unlimited = decimal.NewFromInt(9999)

// Quantities are plain decimals; exponent notation is refused.
var quantityPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

const (
	maxQuantityLen = 32
	maxExponent    = 32
	maxCoefficient = 128 // bits
)

// InRange reports whether d is small enough to compare and print cheaply.
// Minimums outside this range are treated as missing.
func InRange(d decimal.Decimal) bool {
	e := d.Exponent()
	return e >= -maxExponent && e <= maxExponent && d.Coefficient().BitLen() <= maxCoefficient
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case OK, Low, Empty, Unknown:
		return true
	}
	return false
}

// Compute classifies quantity text against min. It never fails: text that is
// not a non-negative number yields Unknown.
func Compute(quantity string, min decimal.NullDecimal) Status {
	q, err := ParseQuantity(quantity)
	if err != nil {
		return Unknown
	}

	switch {
	case q.Equal(Unlimited):
		return OK
	case q.IsZero():
		return Empty
	case !min.Valid || !InRange(min.Decimal):
		return Unknown
	case q.LessThan(min.Decimal):
		return Low
	default:
		return OK
	}
}

// ParseQuantity parses a submitted quantity. Surrounding whitespace is
// ignored; the value must be a non-negative plain decimal such as "3" or
// "2.5".
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("quantity is empty")
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, fmt.Errorf("quantity %q is negative", s)
	}
	if len(s) > maxQuantityLen || !quantityPattern.MatchString(s) {
		return decimal.Zero, fmt.Errorf("quantity %q is not a number", s)
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("quantity %q is not a number", s)
	}
	return q, nil
}
