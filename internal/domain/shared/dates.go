package shared

import (
	"strings"
	"time"
)

// DateLayout is the wire and storage format of business dates
const DateLayout = "2006-01-02"

// BusinessDate returns the calendar date of t as observed in loc, as midnight UTC.
// All balance grouping keys on this value.
func BusinessDate(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TruncateDate drops the time of day from t, keeping t's own calendar date
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string, reporting failures against field
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return t, nil
}

// FormatDate renders a business date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateKey is the number of days since the Unix epoch, used to key per-date locks
func DateKey(t time.Time) int32 {
	return int32(TruncateDate(t).Unix() / 86400)
}

// MonthRange returns the first and last day of the given month
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// YearRange returns January 1st and December 31st of year
func YearRange(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}
