// Package date carries a calendar day with no time component, for
// registrar file columns and other fields where a timestamp would
// imply more precision than the source has.
package date

import (
	"time"

	"cloud.google.com/go/civil"
)

// Date is a calendar day. Comparisons and formatting come from the
// embedded civil.Date, so two dates compare by value regardless of
// the zone the source timestamp was in.
type Date struct {
	civil.Date
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	var d Date
	d.Date.Year, d.Date.Month, d.Date.Day = t.Date()
	return d
}

// Parse reads a date in the given time.Parse layout, for registrars
// that do not use ISO-8601 columns.
func Parse(layout string, value string) (Date, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// ParseDate reads an ISO-8601 date (2006-01-02).
func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	return Date{Date: d}, nil
}

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool {
	return d.Date.After(other.Date)
}
