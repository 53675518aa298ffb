package domain

import (
	"time"

	sharedDomain "github.com/troncosounlar-bit/legasync-flow/internal/shared/domain"
)

const customerAggregate = "Customer"

// Routing keys published by the customers context.
const (
	RoutingCustomerCreated       = "customers.customer.created"
	RoutingCustomerStatusChanged = "customers.customer.status_changed"
)

// CustomerCreated is emitted when a customer is registered.
type CustomerCreated struct {
	sharedDomain.BaseEvent
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Status  string `json:"status"`
}

// NewCustomerCreated creates a CustomerCreated event.
func NewCustomerCreated(c *Customer, at time.Time) *CustomerCreated {
	return &CustomerCreated{
		BaseEvent: sharedDomain.NewBaseEventAt(c.ID(), customerAggregate, RoutingCustomerCreated, at),
		Name:      c.name,
		Company:   c.company,
		Status:    string(c.status),
	}
}

// CustomerStatusChanged is emitted when a customer moves in the pipeline.
type CustomerStatusChanged struct {
	sharedDomain.BaseEvent
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

// NewCustomerStatusChanged creates a CustomerStatusChanged event.
func NewCustomerStatusChanged(c *Customer, from Status, at time.Time) *CustomerStatusChanged {
	return &CustomerStatusChanged{
		BaseEvent: sharedDomain.NewBaseEventAt(c.ID(), customerAggregate, RoutingCustomerStatusChanged, at),
		Name:      c.name,
		From:      string(from),
		To:        string(c.status),
	}
}
