package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/troncosounlar-bit/legasync-flow/internal/shared/domain"
)

func TestBaseAggregateRoot_Events(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	agg := domain.NewBaseAggregateRoot(now)

	assert.NotEqual(t, uuid.Nil, agg.ID())
	assert.Equal(t, now, agg.CreatedAt())
	assert.Empty(t, agg.DomainEvents())

	agg.AddDomainEvent(domain.NewBaseEvent(agg.ID(), "Customer", "customers.customer.created"))
	agg.AddDomainEvent(domain.NewBaseEvent(agg.ID(), "Customer", "customers.customer.status_changed"))
	assert.Len(t, agg.DomainEvents(), 2)

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
}

func TestRehydrateBaseAggregateRoot(t *testing.T) {
	id := uuid.New()
	created := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(48 * time.Hour)

	agg := domain.RehydrateBaseAggregateRoot(id, created, updated)

	assert.Equal(t, id, agg.ID())
	assert.Equal(t, created, agg.CreatedAt())
	assert.Equal(t, updated, agg.UpdatedAt())
	assert.Empty(t, agg.DomainEvents())
}
