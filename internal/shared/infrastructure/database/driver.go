package database

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Driver names a SQL backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string { return string(d) }

// ParseDriver picks the backend for a DATABASE_URL. An empty URL means the
// local SQLite file. Schemes other than postgres and sqlite are rejected
// rather than guessed.
func ParseDriver(url string) (Driver, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return DriverSQLite, nil
	}

	scheme, _, hasScheme := strings.Cut(url, ":")
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return DriverPostgres, nil
	case "sqlite", "file":
		return DriverSQLite, nil
	}

	switch strings.ToLower(filepath.Ext(url)) {
	case ".db", ".sqlite", ".sqlite3":
		return DriverSQLite, nil
	}
	if hasScheme && strings.Contains(url, "://") {
		return "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
	return "", fmt.Errorf("cannot tell the database driver from %q", url)
}
