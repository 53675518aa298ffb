package mcp

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
)

var errMissingID = errors.New("id is required")

// Tool inputs share the CLI's ID and date parsing so both surfaces report
// the same errors.
func parseDate(value string) (*time.Time, error) {
	return cli.ParseDate(value)
}

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, errMissingID
	}
	return cli.ParseID("record", value)
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := parseUUID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
