package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/troncosounlar-bit/legasync-flow/internal/customers/domain"
	"github.com/troncosounlar-bit/legasync-flow/internal/shared/infrastructure/database"
)

// ExpenseRepository implements domain.ExpenseRepository.
type ExpenseRepository struct {
	conn database.Connection
}

var _ domain.ExpenseRepository = (*ExpenseRepository)(nil)

// NewExpenseRepository creates a new repository.
func NewExpenseRepository(conn database.Connection) *ExpenseRepository {
	return &ExpenseRepository{conn: conn}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO expenses (id, customer_id, description, amount, vendor, category, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.CustomerID,
		e.Description,
		e.Amount,
		e.Vendor,
		e.Category,
		database.FormatTimestamp(e.Date),
		database.FormatTimestamp(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Expense, error) {
	return listExpenses(ctx, database.ExecutorFromContext(ctx, r.conn), `WHERE customer_id = ?`, customerID)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	res, err := exec.Exec(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

func listExpenses(ctx context.Context, exec database.Executor, where string, args ...any) ([]domain.Expense, error) {
	rows, err := exec.Query(ctx, `
		SELECT id, customer_id, description, amount, vendor, category, date, created_at
		FROM expenses `+where+`
		ORDER BY date DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	expenses, err := database.CollectRows(rows, scanExpense)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func scanExpense(row database.Row) (domain.Expense, error) {
	var (
		e         domain.Expense
		date      database.Time
		createdAt database.Time
	)
	if err := row.Scan(&e.ID, &e.CustomerID, &e.Description, &e.Amount, &e.Vendor, &e.Category, &date, &createdAt); err != nil {
		return domain.Expense{}, err
	}
	e.Date = date.Time
	e.CreatedAt = createdAt.Time
	return e, nil
}
