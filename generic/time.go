/*
time.go - Calendar dates without a time zone

PURPOSE:
  Holiday requests are booked in whole calendar days. A Date is a plain
  (year, month, day) triple so that comparisons and day counts never shift
  by one because of a local/UTC offset near midnight.

WIRE FORMAT:
  Dates serialize as "YYYY-MM-DD". Parsing also accepts an RFC 3339
  timestamp ("2024-07-01T23:30:00-05:00") and keeps its calendar part
  literally (2024-07-01), without converting zones.

ARITHMETIC:
  All arithmetic goes through time.Date(..., time.UTC) so 24h days hold
  exactly and DST never leaks in.

SEE ALSO:
  - period.go: inclusive date ranges
  - holiday/allowance.go: day-span calculation
*/
package generic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and display format of a Date.
const DateLayout = "2006-01-02"

// =============================================================================
// DATE - Timezone-naive calendar day
// =============================================================================

// Date is a calendar day. The zero value means "no date".
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate returns the date, normalising overflow (Feb 30 becomes Mar 1/2).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf takes the wall-clock calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate parses "YYYY-MM-DD" or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals in tests and seed data.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Properties
func (d Date) Year() int         { return d.year }
func (d Date) Month() time.Month { return d.month }
func (d Date) Day() int          { return d.day }
func (d Date) IsZero() bool      { return d.year == 0 && d.month == 0 && d.day == 0 }

// MonthIndex returns the zero-based month (January = 0).
func (d Date) MonthIndex() int { return int(d.month) - 1 }

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time { return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC) }

// Comparison
func (d Date) Before(other Date) bool        { return d.Time().Before(other.Time()) }
func (d Date) After(other Date) bool         { return d.Time().After(other.Time()) }
func (d Date) Equal(other Date) bool         { return d == other }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DateLayout)
}

// MarshalJSON writes the date as "YYYY-MM-DD" ("" for the zero date).
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a date string, an RFC 3339 string, "" or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns to - from in whole days (negative when to is earlier).
func DaysBetween(from, to Date) int {
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }
func EndOfMonth(year int, month time.Month) Date   { return NewDate(year, month+1, 1).AddDays(-1) }

// DaysInMonth returns the number of days in the month.
func DaysInMonth(year int, month time.Month) int { return EndOfMonth(year, month).Day() }

// Today returns the calendar day of now in now's location.
func Today(now func() time.Time) Date {
	if now == nil {
		now = time.Now
	}
	return DateOf(now())
}
