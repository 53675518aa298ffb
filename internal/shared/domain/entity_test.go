package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/troncosounlar-bit/legasync-flow/internal/shared/domain"
)

func TestBaseEntity_Touch(t *testing.T) {
	created := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	e := domain.NewBaseEntityAt(created)
	assert.Equal(t, e.CreatedAt(), e.UpdatedAt())

	later := created.Add(time.Hour)
	e.Touch(later)

	assert.Equal(t, created, e.CreatedAt())
	assert.Equal(t, later, e.UpdatedAt())
}
