package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/troncosounlar-bit/legasync-flow/internal/customers/domain"
	sharedApplication "github.com/troncosounlar-bit/legasync-flow/internal/shared/application"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/outbox"
)

// CreateCustomerCommand contains the data needed to register a customer.
type CreateCustomerCommand struct {
	OperatorID  uuid.UUID
	Name        string `validate:"required,max=200"`
	Email       string `validate:"omitempty,email"`
	Company     string `validate:"max=200"`
	Phone       string `validate:"max=50"`
	Status      string `validate:"omitempty,oneof=prospect negotiation closed lost"`
	DealValue   string `validate:"omitempty,numeric"`
	Priority    string `validate:"omitempty,oneof=low medium high"`
	LastContact *time.Time
	Notes       string `validate:"max=2000"`
}

// CreateCustomerHandler handles the CreateCustomerCommand.
type CreateCustomerHandler struct {
	customers  domain.CustomerRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateCustomerHandler creates a new CreateCustomerHandler.
func NewCreateCustomerHandler(customers domain.CustomerRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateCustomerHandler {
	return &CreateCustomerHandler{customers: customers, outboxRepo: outboxRepo, uow: uow}
}

// Handle executes the CreateCustomerCommand.
func (h *CreateCustomerHandler) Handle(ctx context.Context, cmd CreateCustomerCommand) (*domain.Customer, error) {
	if err := sharedApplication.ValidateCommand(cmd); err != nil {
		return nil, err
	}
	dealValue, err := parseAmount("deal value", cmd.DealValue)
	if err != nil {
		return nil, err
	}

	customer, err := domain.NewCustomer(domain.NewCustomerParams{
		Name:        cmd.Name,
		Email:       cmd.Email,
		Company:     cmd.Company,
		Phone:       cmd.Phone,
		Status:      domain.Status(cmd.Status),
		DealValue:   dealValue,
		Priority:    domain.Priority(cmd.Priority),
		LastContact: cmd.LastContact,
		Notes:       cmd.Notes,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	if err := saveCustomer(ctx, h.uow, h.customers, h.outboxRepo, cmd.OperatorID, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdateCustomerCommand changes the fields that are set.
type UpdateCustomerCommand struct {
	OperatorID  uuid.UUID
	CustomerID  uuid.UUID
	Name        *string `validate:"omitempty,max=200"`
	Email       *string `validate:"omitempty,email"`
	Company     *string `validate:"omitempty,max=200"`
	Phone       *string `validate:"omitempty,max=50"`
	Status      *string `validate:"omitempty,oneof=prospect negotiation closed lost"`
	DealValue   *string `validate:"omitempty,numeric"`
	Priority    *string `validate:"omitempty,oneof=low medium high"`
	LastContact *time.Time
	Notes       *string `validate:"omitempty,max=2000"`
}

// UpdateCustomerHandler handles the UpdateCustomerCommand.
type UpdateCustomerHandler struct {
	customers  domain.CustomerRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewUpdateCustomerHandler creates a new UpdateCustomerHandler.
func NewUpdateCustomerHandler(customers domain.CustomerRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *UpdateCustomerHandler {
	return &UpdateCustomerHandler{customers: customers, outboxRepo: outboxRepo, uow: uow}
}

// Handle executes the UpdateCustomerCommand.
func (h *UpdateCustomerHandler) Handle(ctx context.Context, cmd UpdateCustomerCommand) (*domain.Customer, error) {
	if err := sharedApplication.ValidateCommand(cmd); err != nil {
		return nil, err
	}

	changes := domain.Changes{
		Name:        cmd.Name,
		Email:       cmd.Email,
		Company:     cmd.Company,
		Phone:       cmd.Phone,
		LastContact: cmd.LastContact,
		Notes:       cmd.Notes,
	}
	if cmd.Status != nil {
		status := domain.Status(*cmd.Status)
		changes.Status = &status
	}
	if cmd.Priority != nil {
		priority := domain.Priority(*cmd.Priority)
		changes.Priority = &priority
	}
	if cmd.DealValue != nil {
		value, err := parseAmount("deal value", *cmd.DealValue)
		if err != nil {
			return nil, err
		}
		changes.DealValue = &value
	}

	customer, err := h.customers.FindByID(ctx, cmd.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := customer.Apply(changes, time.Now()); err != nil {
		return nil, err
	}
	if err := saveCustomer(ctx, h.uow, h.customers, h.outboxRepo, cmd.OperatorID, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomerHandler removes a customer and, by cascade, its expenses.
type DeleteCustomerHandler struct {
	customers domain.CustomerRepository
}

// NewDeleteCustomerHandler creates a new DeleteCustomerHandler.
func NewDeleteCustomerHandler(customers domain.CustomerRepository) *DeleteCustomerHandler {
	return &DeleteCustomerHandler{customers: customers}
}

// Handle deletes the customer with id.
func (h *DeleteCustomerHandler) Handle(ctx context.Context, id uuid.UUID) error {
	return h.customers.Delete(ctx, id)
}

func saveCustomer(ctx context.Context, uow sharedApplication.UnitOfWork, repo domain.CustomerRepository, outboxRepo outbox.Repository, operatorID uuid.UUID, c *domain.Customer) error {
	err := sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		if err := repo.Save(txCtx, c); err != nil {
			return err
		}
		events := c.DomainEvents()
		if len(events) == 0 {
			return nil
		}
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(operatorID))
		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		return outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return err
	}
	c.ClearDomainEvents()
	return nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", sharedApplication.ErrInvalidCommand, field, err)
	}
	return amount, nil
}
