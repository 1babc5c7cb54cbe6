package dateutil

import (
	"encoding/json"
	"fmt"
	"time"
)

// KeyLayout is the canonical storage key format for calendar dates.
const KeyLayout = "2006-01-02"

// Date is a calendar date in the app's single fixed locale. All date
// arithmetic goes through this type so the storage key and the display
// date can never drift apart.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// FromTime converts a time.Time to a Date, dropping the clock part.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current date in the given location.
func Today(loc *time.Location) Date {
	return FromTime(time.Now().In(loc))
}

// Parse parses a canonical YYYY-MM-DD storage key.
func Parse(s string) (Date, error) {
	t, err := time.Parse(KeyLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// String returns the canonical YYYY-MM-DD storage key.
func (d Date) String() string {
	return d.time().Format(KeyLayout)
}

// time returns midnight UTC for this date. UTC keeps the arithmetic
// immune to DST transitions in the display locale.
func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return FromTime(d.time().AddDate(0, 0, n))
}

// PrevDay returns the day before d.
func (d Date) PrevDay() Date {
	return d.AddDays(-1)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.time().Before(o.time())
}

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool {
	return d.time().After(o.time())
}

// SameMonth reports whether d and o fall in the same calendar month.
func (d Date) SameMonth(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month
}

// Weekday returns the day of the week for d.
func (d Date) Weekday() time.Weekday {
	return d.time().Weekday()
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MarshalJSON encodes the date as its canonical storage key.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a canonical storage key.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
