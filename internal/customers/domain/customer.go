package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	sharedDomain "github.com/troncosounlar-bit/legasync-flow/internal/shared/domain"
)

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrCustomerEmptyName = errors.New("customer name cannot be empty")
	ErrInvalidStatus     = errors.New("invalid pipeline status")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrNegativeDealValue = errors.New("deal value cannot be negative")
)

// RegisteredAction opens every customer's activity log.
const RegisteredAction = "Cliente registrado en LegaSync Flow"

// Status is the customer's position in the sales pipeline.
type Status string

const (
	StatusProspect    Status = "prospect"
	StatusNegotiation Status = "negotiation"
	StatusClosed      Status = "closed"
	StatusLost        Status = "lost"
)

// IsValid checks if the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusProspect, StatusNegotiation, StatusClosed, StatusLost:
		return true
	default:
		return false
	}
}

// Priority ranks customers for follow-up.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the priority is known.
func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Activity is one entry of the customer's trail.
type Activity struct {
	Action string    `json:"action"`
	Date   time.Time `json:"date"`
}

// Customer is a CRM contact moving through the sales pipeline.
type Customer struct {
	sharedDomain.BaseAggregateRoot
	name        string
	email       string
	company     string
	phone       string
	status      Status
	dealValue   decimal.Decimal
	priority    Priority
	lastContact *time.Time
	notes       string
	activity    []Activity
	expenses    []Expense
}

// NewCustomerParams describes a customer to register.
type NewCustomerParams struct {
	Name        string
	Email       string
	Company     string
	Phone       string
	Status      Status
	DealValue   decimal.Decimal
	Priority    Priority
	LastContact *time.Time
	Notes       string
}

// NewCustomer registers a customer. Status defaults to prospect and
// priority to medium.
func NewCustomer(p NewCustomerParams, now time.Time) (*Customer, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrCustomerEmptyName
	}
	if p.Status == "" {
		p.Status = StatusProspect
	}
	if !p.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if !p.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}
	if p.DealValue.IsNegative() {
		return nil, ErrNegativeDealValue
	}

	c := &Customer{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		name:              name,
		email:             strings.TrimSpace(p.Email),
		company:           strings.TrimSpace(p.Company),
		phone:             strings.TrimSpace(p.Phone),
		status:            p.Status,
		dealValue:         p.DealValue,
		priority:          p.Priority,
		lastContact:       p.LastContact,
		notes:             p.Notes,
		activity:          []Activity{{Action: RegisteredAction, Date: now.UTC()}},
	}
	c.AddDomainEvent(NewCustomerCreated(c, now))
	return c, nil
}

// RehydrateCustomer recreates a customer from persisted state.
func RehydrateCustomer(
	id uuid.UUID,
	name, email, company, phone string,
	status Status,
	dealValue decimal.Decimal,
	priority Priority,
	lastContact *time.Time,
	notes string,
	activity []Activity,
	expenses []Expense,
	createdAt, updatedAt time.Time,
) *Customer {
	return &Customer{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(id, createdAt, updatedAt),
		name:              name,
		email:             email,
		company:           company,
		phone:             phone,
		status:            status,
		dealValue:         dealValue,
		priority:          priority,
		lastContact:       lastContact,
		notes:             notes,
		activity:          activity,
		expenses:          expenses,
	}
}

// Getters
func (c *Customer) Name() string               { return c.name }
func (c *Customer) Email() string              { return c.email }
func (c *Customer) Company() string            { return c.company }
func (c *Customer) Phone() string              { return c.phone }
func (c *Customer) Status() Status             { return c.status }
func (c *Customer) DealValue() decimal.Decimal { return c.dealValue }
func (c *Customer) Priority() Priority         { return c.priority }
func (c *Customer) LastContact() *time.Time    { return c.lastContact }
func (c *Customer) Notes() string              { return c.notes }
func (c *Customer) Activity() []Activity       { return c.activity }
func (c *Customer) Expenses() []Expense        { return c.expenses }

// Changes is a partial update; nil fields are left alone.
type Changes struct {
	Name        *string
	Email       *string
	Company     *string
	Phone       *string
	Status      *Status
	DealValue   *decimal.Decimal
	Priority    *Priority
	LastContact *time.Time
	Notes       *string
}

// Apply updates the customer. A status change is appended to the activity
// log as "Pipeline: de OLD a NEW" and raises CustomerStatusChanged.
func (c *Customer) Apply(ch Changes, now time.Time) error {
	if ch.Name != nil {
		name := strings.TrimSpace(*ch.Name)
		if name == "" {
			return ErrCustomerEmptyName
		}
		c.name = name
	}
	if ch.Status != nil && !ch.Status.IsValid() {
		return ErrInvalidStatus
	}
	if ch.Priority != nil && !ch.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if ch.DealValue != nil && ch.DealValue.IsNegative() {
		return ErrNegativeDealValue
	}

	if ch.Email != nil {
		c.email = strings.TrimSpace(*ch.Email)
	}
	if ch.Company != nil {
		c.company = strings.TrimSpace(*ch.Company)
	}
	if ch.Phone != nil {
		c.phone = strings.TrimSpace(*ch.Phone)
	}
	if ch.DealValue != nil {
		c.dealValue = *ch.DealValue
	}
	if ch.Priority != nil {
		c.priority = *ch.Priority
	}
	if ch.LastContact != nil {
		contact := ch.LastContact.UTC()
		c.lastContact = &contact
	}
	if ch.Notes != nil {
		c.notes = *ch.Notes
	}
	if ch.Status != nil && *ch.Status != c.status {
		from := c.status
		c.status = *ch.Status
		c.activity = append(c.activity, Activity{Action: PipelineAction(from, c.status), Date: now.UTC()})
		c.AddDomainEvent(NewCustomerStatusChanged(c, from, now))
	}

	c.Touch(now)
	return nil
}

// PipelineAction renders the activity entry for a status change.
func PipelineAction(from, to Status) string {
	return "Pipeline: de " + strings.ToUpper(string(from)) + " a " + strings.ToUpper(string(to))
}
