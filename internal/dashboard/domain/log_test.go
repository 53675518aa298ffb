package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.FixedZone("ART", -3*3600))

	tests := []struct {
		name    string
		typ     LogType
		message string
		wantErr error
	}{
		{name: "valid", typ: LogInfo, message: "  Recordatorio enviado  "},
		{name: "blank message", typ: LogInfo, message: "   ", wantErr: ErrEmptyMessage},
		{name: "unknown type", typ: "error", message: "x", wantErr: ErrInvalidLogType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEntry(tt.typ, "notifications", tt.message, nil, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Recordatorio enviado", e.Message)
			assert.Equal(t, time.UTC, e.CreatedAt.Location())
			assert.True(t, e.CreatedAt.Equal(now))
			assert.NotEmpty(t, e.ID)
		})
	}
}
