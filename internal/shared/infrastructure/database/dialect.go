package database

import (
	"strconv"
	"strings"
)

// Rebind rewrites `?` placeholders into the form the driver expects.
// Repositories write portable SQL with `?`; PostgreSQL needs `$1..$n`.
// Question marks inside single-quoted literals are left alone.
func Rebind(driver Driver, query string) string {
	if driver != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}

	var (
		b       strings.Builder
		n       int
		inQuote bool
	)
	b.Grow(len(query) + 8)
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// CaseInsensitiveLike returns the operator used for case-insensitive
// substring matches on the driver.
func CaseInsensitiveLike(driver Driver) string {
	if driver == DriverPostgres {
		return "ILIKE"
	}
	// SQLite's LIKE is case-insensitive for ASCII.
	return "LIKE"
}
