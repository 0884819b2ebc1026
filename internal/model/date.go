package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and display format of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day in UTC. All range filters and date sorts compare
// at day granularity.
//
// A Date parsed from malformed input keeps the raw text: it prints as that
// text, is not Valid, and fails every comparison it takes part in.
type Date struct {
	t   time.Time
	raw string
}

// ParseDate parses s as YYYY-MM-DD or RFC 3339. RFC 3339 values are
// converted to UTC before the time of day is dropped. January 1 of year 1
// is the unset sentinel, so it parses as malformed rather than as unset.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	var d Date
	if t, err := time.Parse(DateLayout, s); err == nil {
		d = Date{t: t}
	} else if t, err := time.Parse(time.RFC3339, s); err == nil {
		d = DateOf(t)
	}
	if !d.Valid() {
		return Date{raw: s}
	}
	return d
}

// MustParseDate is like ParseDate but panics on malformed input.
func MustParseDate(s string) Date {
	d := ParseDate(s)
	if !d.Valid() {
		panic(fmt.Sprintf("model: invalid date %q", s))
	}
	return d
}

// DateOf returns the UTC calendar day containing t.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() && d.raw == "" }

// Valid reports whether the date holds a parsed calendar day.
func (d Date) Valid() bool { return !d.t.IsZero() }

// Time returns midnight UTC of the day, or the zero time.
func (d Date) Time() time.Time { return d.t }

// AddDays returns the date n days later. Invalid dates are returned as is.
func (d Date) AddDays(n int) Date {
	if !d.Valid() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Compare returns -1, 0 or +1. Callers must check Valid on both sides first.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// Equal reports whether both dates hold the same day, or the same raw text.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) && d.raw == o.raw }

func (d Date) String() string {
	if d.Valid() {
		return d.t.Format(DateLayout)
	}
	return d.raw
}

// MarshalJSON renders the day, the raw text for malformed dates, or null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null or a string. Malformed strings are kept raw
// rather than rejected.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	*d = ParseDate(s)
	return nil
}

// Scan implements sql.Scanner for DATE and TIMESTAMPTZ columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = DateOf(v)
	case string:
		*d = ParseDate(v)
	case []byte:
		*d = ParseDate(string(v))
	default:
		return fmt.Errorf("date: cannot scan %T", src)
	}
	return nil
}

// Value implements driver.Valuer. Unset and malformed dates store as NULL.
func (d Date) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, nil
	}
	return d.t, nil
}
