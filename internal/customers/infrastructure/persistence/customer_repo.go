// Package persistence stores customers, their activity trail and expenses
// on either SQL driver.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/troncosounlar-bit/legasync-flow/internal/customers/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
)

// CustomerRepository implements domain.CustomerRepository.
type CustomerRepository struct {
	conn database.Connection
}

var _ domain.CustomerRepository = (*CustomerRepository)(nil)

// NewCustomerRepository creates a new repository.
func NewCustomerRepository(conn database.Connection) *CustomerRepository {
	return &CustomerRepository{conn: conn}
}

const customerSelect = `
	SELECT id, name, email, company, phone, status, deal_value, priority,
	       last_contact, notes, created_at, updated_at
	FROM customers`

// Save upserts the customer and rewrites its activity trail. Run it inside
// a unit of work so both land together.
func (r *CustomerRepository) Save(ctx context.Context, c *domain.Customer) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO customers (
			id, name, email, company, phone, status, deal_value, priority,
			last_contact, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			company = excluded.company,
			phone = excluded.phone,
			status = excluded.status,
			deal_value = excluded.deal_value,
			priority = excluded.priority,
			last_contact = excluded.last_contact,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		c.ID(),
		c.Name(),
		c.Email(),
		c.Company(),
		c.Phone(),
		string(c.Status()),
		c.DealValue(),
		string(c.Priority()),
		database.NullTimestamp(c.LastContact()),
		c.Notes(),
		database.FormatTimestamp(c.CreatedAt()),
		database.FormatTimestamp(c.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save customer %s: %w", c.ID(), err)
	}

	if _, err := exec.Exec(ctx, `DELETE FROM customer_activity WHERE customer_id = ?`, c.ID()); err != nil {
		return fmt.Errorf("reset activity for customer %s: %w", c.ID(), err)
	}
	for _, a := range c.Activity() {
		if _, err := exec.Exec(ctx,
			`INSERT INTO customer_activity (customer_id, action, date) VALUES (?, ?, ?)`,
			c.ID(), a.Action, database.FormatTimestamp(a.Date)); err != nil {
			return fmt.Errorf("save activity for customer %s: %w", c.ID(), err)
		}
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row, err := scanCustomerRow(exec.QueryRow(ctx, customerSelect+` WHERE id = ?`, id))
	if database.IsNoRows(err) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find customer %s: %w", id, err)
	}

	activity, err := r.activity(ctx, exec, `WHERE customer_id = ?`, id)
	if err != nil {
		return nil, err
	}
	expenses, err := listExpenses(ctx, exec, `WHERE customer_id = ?`, id)
	if err != nil {
		return nil, err
	}
	return row.toDomain(activity[id], expenses), nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, customerSelect+` ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	customers, err := database.CollectRows(rows, scanCustomerRow)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	activity, err := r.activity(ctx, exec, ``)
	if err != nil {
		return nil, err
	}
	expenses, err := listExpenses(ctx, exec, ``)
	if err != nil {
		return nil, err
	}
	byCustomer := lo.GroupBy(expenses, func(e domain.Expense) uuid.UUID { return e.CustomerID })

	return lo.Map(customers, func(row customerRow, _ int) *domain.Customer {
		return row.toDomain(activity[row.id], byCustomer[row.id])
	}), nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	res, err := exec.Exec(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete customer %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) activity(ctx context.Context, exec database.Executor, where string, args ...any) (map[uuid.UUID][]domain.Activity, error) {
	rows, err := exec.Query(ctx, `SELECT customer_id, action, date FROM customer_activity `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("load customer activity: %w", err)
	}
	type entry struct {
		customerID uuid.UUID
		activity   domain.Activity
	}
	entries, err := database.CollectRows(rows, func(row database.Row) (entry, error) {
		var (
			e    entry
			date database.Time
		)
		if err := row.Scan(&e.customerID, &e.activity.Action, &date); err != nil {
			return entry{}, err
		}
		e.activity.Date = date.Time
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load customer activity: %w", err)
	}

	out := make(map[uuid.UUID][]domain.Activity)
	for _, e := range entries {
		out[e.customerID] = append(out[e.customerID], e.activity)
	}
	return out, nil
}

type customerRow struct {
	id          uuid.UUID
	name        string
	email       string
	company     string
	phone       string
	status      string
	dealValue   decimal.Decimal
	priority    string
	lastContact database.Time
	notes       string
	createdAt   database.Time
	updatedAt   database.Time
}

func scanCustomerRow(row database.Row) (customerRow, error) {
	var c customerRow
	err := row.Scan(
		&c.id,
		&c.name,
		&c.email,
		&c.company,
		&c.phone,
		&c.status,
		&c.dealValue,
		&c.priority,
		&c.lastContact,
		&c.notes,
		&c.createdAt,
		&c.updatedAt,
	)
	return c, err
}

func (c customerRow) toDomain(activity []domain.Activity, expenses []domain.Expense) *domain.Customer {
	var lastContact *time.Time
	if c.lastContact.Valid {
		t := c.lastContact.Time
		lastContact = &t
	}
	return domain.RehydrateCustomer(
		c.id,
		c.name, c.email, c.company, c.phone,
		domain.Status(c.status),
		c.dealValue,
		domain.Priority(c.priority),
		lastContact,
		c.notes,
		activity,
		expenses,
		c.createdAt.Time, c.updatedAt.Time,
	)
}
