package mcp

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/shopspring/decimal"

	"github.com/troncosounlar-bit/legasync-flow/adapter/cli"
	"github.com/troncosounlar-bit/legasync-flow/internal/customers/application/commands"
	"github.com/troncosounlar-bit/legasync-flow/internal/customers/domain"
)

// CustomerDTO is the MCP view of a customer.
type CustomerDTO struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email,omitempty"`
	Company     string            `json:"company,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Status      domain.Status     `json:"status"`
	DealValue   decimal.Decimal   `json:"deal_value"`
	Priority    domain.Priority   `json:"priority"`
	LastContact *time.Time        `json:"last_contact,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Activity    []domain.Activity `json:"activity"`
	Expenses    []domain.Expense  `json:"expenses"`
}

func toCustomerDTO(c *domain.Customer) CustomerDTO {
	return CustomerDTO{
		ID:          c.ID().String(),
		Name:        c.Name(),
		Email:       c.Email(),
		Company:     c.Company(),
		Phone:       c.Phone(),
		Status:      c.Status(),
		DealValue:   c.DealValue(),
		Priority:    c.Priority(),
		LastContact: c.LastContact(),
		Notes:       c.Notes(),
		Activity:    c.Activity(),
		Expenses:    c.Expenses(),
	}
}

type customerCreateInput struct {
	Name        string `json:"name" jsonschema:"required"`
	Email       string `json:"email,omitempty"`
	Company     string `json:"company,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Status      string `json:"status,omitempty"`
	DealValue   string `json:"deal_value,omitempty"`
	Priority    string `json:"priority,omitempty"`
	LastContact string `json:"last_contact,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type customerUpdateInput struct {
	ID          string  `json:"id" jsonschema:"required"`
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Company     *string `json:"company,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Status      *string `json:"status,omitempty"`
	DealValue   *string `json:"deal_value,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	LastContact string  `json:"last_contact,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

type expenseAddInput struct {
	CustomerID  string `json:"customer_id" jsonschema:"required"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Vendor      string `json:"vendor,omitempty"`
	Category    string `json:"category,omitempty"`
	Date        string `json:"date,omitempty"`
}

func registerCustomerTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("customer.create").
		Description("Register a customer in the sales pipeline").
		Handler(customerCreateTool(app))

	srv.Tool("customer.list").
		Description("List customers by name with their expenses").
		Handler(func(ctx context.Context, input struct{}) ([]CustomerDTO, error) {
			if app.CustomerQueries == nil {
				return nil, errNotInitialized
			}
			customers, err := app.CustomerQueries.List(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]CustomerDTO, 0, len(customers))
			for _, c := range customers {
				out = append(out, toCustomerDTO(c))
			}
			return out, nil
		})

	srv.Tool("customer.get").
		Description("Get one customer with activity and expenses").
		Handler(func(ctx context.Context, input idInput) (*CustomerDTO, error) {
			if app.CustomerQueries == nil {
				return nil, errNotInitialized
			}
			id, err := parseUUID(input.ID)
			if err != nil {
				return nil, err
			}
			c, err := app.CustomerQueries.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			dto := toCustomerDTO(c)
			return &dto, nil
		})

	srv.Tool("customer.update").
		Description("Change the given customer fields; a status change is added to the activity").
		Handler(customerUpdateTool(app))

	srv.Tool("customer.delete").
		Description("Delete a customer and its expenses").
		Handler(func(ctx context.Context, input idInput) (map[string]string, error) {
			if app.DeleteCustomer == nil {
				return nil, errNotInitialized
			}
			id, err := parseUUID(input.ID)
			if err != nil {
				return nil, err
			}
			if err := app.DeleteCustomer.Handle(ctx, id); err != nil {
				return nil, err
			}
			return map[string]string{"deleted": id.String()}, nil
		})

	srv.Tool("customer.balance").
		Description("Deal value minus expenses for a customer").
		Handler(func(ctx context.Context, input idInput) (domain.Balance, error) {
			if app.CustomerQueries == nil {
				return domain.Balance{}, errNotInitialized
			}
			id, err := parseUUID(input.ID)
			if err != nil {
				return domain.Balance{}, err
			}
			return app.CustomerQueries.Balance(ctx, id)
		})

	srv.Tool("expense.add").
		Description("Record an expense against a customer").
		Handler(expenseAddTool(app))

	srv.Tool("expense.delete").
		Description("Remove an expense").
		Handler(func(ctx context.Context, input idInput) (map[string]string, error) {
			if app.Expenses == nil {
				return nil, errNotInitialized
			}
			id, err := parseUUID(input.ID)
			if err != nil {
				return nil, err
			}
			if err := app.Expenses.Delete(ctx, id); err != nil {
				return nil, err
			}
			return map[string]string{"deleted": id.String()}, nil
		})

	return nil
}

func customerCreateTool(app *cli.App) func(context.Context, customerCreateInput) (*CustomerDTO, error) {
	return func(ctx context.Context, input customerCreateInput) (*CustomerDTO, error) {
		if app == nil || app.CreateCustomer == nil {
			return nil, errNotInitialized
		}
		lastContact, err := parseDate(input.LastContact)
		if err != nil {
			return nil, err
		}
		c, err := app.CreateCustomer.Handle(ctx, commands.CreateCustomerCommand{
			OperatorID:  app.OperatorID,
			Name:        input.Name,
			Email:       input.Email,
			Company:     input.Company,
			Phone:       input.Phone,
			Status:      input.Status,
			DealValue:   input.DealValue,
			Priority:    input.Priority,
			LastContact: lastContact,
			Notes:       input.Notes,
		})
		if err != nil {
			return nil, err
		}
		dto := toCustomerDTO(c)
		return &dto, nil
	}
}

func customerUpdateTool(app *cli.App) func(context.Context, customerUpdateInput) (*CustomerDTO, error) {
	return func(ctx context.Context, input customerUpdateInput) (*CustomerDTO, error) {
		if app == nil || app.UpdateCustomer == nil {
			return nil, errNotInitialized
		}
		id, err := parseUUID(input.ID)
		if err != nil {
			return nil, err
		}
		lastContact, err := parseDate(input.LastContact)
		if err != nil {
			return nil, err
		}
		c, err := app.UpdateCustomer.Handle(ctx, commands.UpdateCustomerCommand{
			OperatorID:  app.OperatorID,
			CustomerID:  id,
			Name:        input.Name,
			Email:       input.Email,
			Company:     input.Company,
			Phone:       input.Phone,
			Status:      input.Status,
			DealValue:   input.DealValue,
			Priority:    input.Priority,
			LastContact: lastContact,
			Notes:       input.Notes,
		})
		if err != nil {
			return nil, err
		}
		dto := toCustomerDTO(c)
		return &dto, nil
	}
}

func expenseAddTool(app *cli.App) func(context.Context, expenseAddInput) (*domain.Expense, error) {
	return func(ctx context.Context, input expenseAddInput) (*domain.Expense, error) {
		if app == nil || app.Expenses == nil {
			return nil, errNotInitialized
		}
		customerID, err := parseUUID(input.CustomerID)
		if err != nil {
			return nil, err
		}
		date, err := parseDate(input.Date)
		if err != nil {
			return nil, err
		}
		return app.Expenses.Add(ctx, commands.AddExpenseCommand{
			CustomerID:  customerID,
			Description: input.Description,
			Amount:      input.Amount,
			Vendor:      input.Vendor,
			Category:    input.Category,
			Date:        date,
		})
	}
}
