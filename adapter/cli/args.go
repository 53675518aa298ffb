package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the date format accepted by flags.
const DateLayout = "2006-01-02"

// ParseID parses a UUID argument, naming what in the error.
func ParseID(what, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID %q", what, raw)
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD flag value as a UTC date. Empty input
// returns nil.
func ParseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", raw)
	}
	return &t, nil
}
