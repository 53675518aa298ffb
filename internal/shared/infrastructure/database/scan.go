package database

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Layouts used when timestamps and dates are stored as text. The
// timestamp layout is fixed width so that text columns sort chronologically.
const (
	TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
	DateLayout      = "2006-01-02"
)

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	DateLayout,
}

// Time scans timestamp or date columns from either driver. PostgreSQL hands
// back time.Time, SQLite hands back the stored text.
type Time struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("database: cannot scan %T into Time", src)
	}
}

func (t *Time) parse(s string) error {
	if s == "" {
		t.Time, t.Valid = time.Time{}, false
		return nil
	}
	for _, layout := range parseLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("database: unrecognized time %q", s)
}

// Value implements driver.Valuer so Time can be written back as text.
func (t Time) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time.UTC().Format(TimestampLayout), nil
}

// FormatTimestamp renders a timestamp argument.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FormatDate renders a calendar date argument.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// NullTimestamp renders an optional timestamp argument.
func NullTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTimestamp(*t)
}
