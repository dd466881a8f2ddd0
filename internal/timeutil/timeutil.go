// Package timeutil pins all date arithmetic to one fixed-offset zone.
package timeutil

import (
	"fmt"
	"time"
)

// Storage formats. Timestamps are local to the configured zone.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Clock reports the current instant and civil date in a fixed zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a clock for a zone offsetMinutes east of UTC.
func NewClock(name string, offsetMinutes int) *Clock {
	return &Clock{
		loc: time.FixedZone(name, offsetMinutes*60),
		now: time.Now,
	}
}

// WithNow returns a copy of c that reads the current instant from now.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	return &Clock{loc: c.loc, now: now}
}

// Location returns the clock's zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the clock's zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Timestamp formats the current instant for storage.
func (c *Clock) Timestamp() string {
	return c.Now().Format(TimestampLayout)
}

// Today returns the current civil date as UTC midnight.
func (c *Clock) Today() time.Time {
	return Date(c.Now())
}

// Date truncates t to its civil date, returned as UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate formats a civil date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the whole civil days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}
