package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleCommand struct {
	Name  string `validate:"required"`
	Email string `validate:"omitempty,email"`
	Day   int    `validate:"gte=0,lte=31"`
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateCommand(sampleCommand{Name: "Acme", Email: "a@b.co", Day: 31}))
	})

	t.Run("lists failing fields", func(t *testing.T) {
		err := ValidateCommand(sampleCommand{Email: "nope", Day: 40})
		require.ErrorIs(t, err, ErrInvalidCommand)
		assert.Contains(t, err.Error(), "Name (required)")
		assert.Contains(t, err.Error(), "Email (email)")
		assert.Contains(t, err.Error(), "Day (lte)")
	})
}
