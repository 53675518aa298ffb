package eventbus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/eventbus"
	"github.com/troncosounlar-bit/legasync-flow/pkg/observability"
)

type mockConsumer struct {
	eventTypes []string
	events     []*eventbus.Envelope
	err        error
}

func (m *mockConsumer) EventTypes() []string {
	return m.eventTypes
}

func (m *mockConsumer) Handle(ctx context.Context, event *eventbus.Envelope) error {
	m.events = append(m.events, event)
	return m.err
}

func envelope(routingKey string) *eventbus.Envelope {
	return &eventbus.Envelope{EventID: uuid.New(), AggregateID: uuid.New(), RoutingKey: routingKey}
}

func TestConsumerRegistry_Register(t *testing.T) {
	r := eventbus.NewConsumerRegistry(nil, nil)
	c := &mockConsumer{eventTypes: []string{"billing.run.completed", "billing.run.failed"}}

	r.Register(c)

	assert.Len(t, r.GetConsumers("billing.run.completed"), 1)
	assert.Len(t, r.GetConsumers("billing.run.failed"), 1)
	assert.Empty(t, r.GetConsumers("billing.invoice.generated"))
	assert.Equal(t, []string{"billing.run.completed", "billing.run.failed"}, r.EventTypes())
	assert.Equal(t, 2, r.ConsumerCount())
}

func TestConsumerRegistry_Dispatch(t *testing.T) {
	t.Run("delivers to every consumer of the key", func(t *testing.T) {
		metrics := observability.NewInMemoryMetrics()
		r := eventbus.NewConsumerRegistry(nil, metrics)
		a := &mockConsumer{eventTypes: []string{"customers.customer.created"}}
		b := &mockConsumer{eventTypes: []string{"customers.customer.created"}}
		r.Register(a)
		r.Register(b)

		err := r.Dispatch(context.Background(), envelope("customers.customer.created"))

		require.NoError(t, err)
		assert.Len(t, a.events, 1)
		assert.Len(t, b.events, 1)
		assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricEventsConsumed,
			observability.T("routing_key", "customers.customer.created"), observability.T(observability.StatusKey, "ok")))
	})

	t.Run("no consumers is not an error", func(t *testing.T) {
		r := eventbus.NewConsumerRegistry(nil, nil)
		assert.NoError(t, r.Dispatch(context.Background(), envelope("billing.run.completed")))
	})

	t.Run("continues after a failing consumer and joins errors", func(t *testing.T) {
		r := eventbus.NewConsumerRegistry(nil, nil)
		boom := errors.New("boom")
		failing := &mockConsumer{eventTypes: []string{"billing.run.failed"}, err: boom}
		ok := &mockConsumer{eventTypes: []string{"billing.run.failed"}}
		r.Register(failing)
		r.Register(ok)

		err := r.Dispatch(context.Background(), envelope("billing.run.failed"))

		assert.ErrorIs(t, err, boom)
		assert.Len(t, ok.events, 1)
	})
}
