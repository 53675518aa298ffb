package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/shared/domain"
)

// ErrMalformedEnvelope is returned when a message body is not an envelope.
var ErrMalformedEnvelope = errors.New("malformed event envelope")

// Envelope is the wire form of a domain event on every transport. Data
// holds the event's own exported fields.
type Envelope struct {
	EventID       uuid.UUID            `json:"event_id"`
	AggregateID   uuid.UUID            `json:"aggregate_id"`
	AggregateType string               `json:"aggregate_type"`
	RoutingKey    string               `json:"routing_key"`
	OccurredAt    time.Time            `json:"occurred_at"`
	Metadata      domain.EventMetadata `json:"metadata"`
	Data          json.RawMessage      `json:"data"`
}

// EncodeEvent wraps a domain event in an envelope and marshals it.
func EncodeEvent(event domain.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event.RoutingKey(), err)
	}
	return json.Marshal(Envelope{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Metadata:      event.Metadata(),
		Data:          data,
	})
}

// DecodeEnvelope parses a message body. The transport routing key fills in
// for envelopes that omit theirs.
func DecodeEnvelope(body []byte, routingKey string) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.RoutingKey == "" {
		env.RoutingKey = routingKey
	}
	if env.RoutingKey == "" {
		return nil, fmt.Errorf("%w: missing routing key", ErrMalformedEnvelope)
	}
	return &env, nil
}

// DecodeData unmarshals the event payload into v.
func (e *Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%w: empty data for %s", ErrMalformedEnvelope, e.RoutingKey)
	}
	return json.Unmarshal(e.Data, v)
}

// EventConsumer handles the routing keys it declares.
type EventConsumer interface {
	EventTypes() []string
	Handle(ctx context.Context, event *Envelope) error
}

// Consumer pulls events from a broker and dispatches them to consumers.
type Consumer interface {
	// Start blocks until ctx is done or the consumer is closed.
	Start(ctx context.Context) error
	RegisterConsumer(consumer EventConsumer)
	Close() error
}
