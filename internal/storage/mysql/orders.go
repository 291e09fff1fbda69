package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"factory-planner/internal/storage"
)

func (s *Storage) CreateOrder(ctx context.Context, order storage.NewOrder) (int64, error) {
	const op = "storage.mysql.CreateOrder"

	stmt := `INSERT INTO orders (model_name, quantity, deadline, status) VALUES (?, ?, ?, ?)`

	exec, err := s.db.ExecContext(ctx, stmt, order.ModelName, order.Quantity, order.Deadline, storage.StatusCreated)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1452 {
			return 0, fmt.Errorf("%s: unknown model %q: %w", op, order.ModelName, storage.ErrModelNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return exec.LastInsertId()
}

func (s *Storage) GetOrder(ctx context.Context, id int64) (*storage.Order, error) {
	const op = "storage.mysql.GetOrder"

	stmt := `SELECT id, model_name, quantity, deadline, start_date, end_date, status FROM orders WHERE id = ?`

	var order storage.Order
	err := s.db.QueryRowContext(ctx, stmt, id).Scan(
		&order.ID,
		&order.ModelName,
		&order.Quantity,
		&order.Deadline,
		&order.StartDate,
		&order.EndDate,
		&order.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: order id=%d: %w", op, id, storage.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &order, nil
}

func (s *Storage) GetOrders(ctx context.Context, status string) ([]*storage.Order, error) {
	const op = "storage.mysql.GetOrders"

	stmt := `SELECT id, model_name, quantity, deadline, start_date, end_date, status FROM orders`
	var args []interface{}

	if status != "" {
		stmt += ` WHERE status = ?`
		args = append(args, status)
	}
	stmt += ` ORDER BY deadline, id`

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var orders []*storage.Order
	for rows.Next() {
		var order storage.Order
		err := rows.Scan(
			&order.ID,
			&order.ModelName,
			&order.Quantity,
			&order.Deadline,
			&order.StartDate,
			&order.EndDate,
			&order.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		orders = append(orders, &order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return orders, nil
}

// SaveOrder writes the full record back; callers mutate the fields they
// care about and save.
func (s *Storage) SaveOrder(ctx context.Context, order *storage.Order) error {
	const op = "storage.mysql.SaveOrder"

	stmt := `UPDATE orders SET model_name = ?, quantity = ?, deadline = ?, start_date = ?, end_date = ?, status = ? WHERE id = ?`

	// RowsAffected is not checked here: re-saving an unchanged record
	// reports zero affected rows on MySQL. Existence is the caller's
	// concern (GetOrder).
	_, err := s.db.ExecContext(ctx, stmt,
		order.ModelName, order.Quantity, order.Deadline, order.StartDate, order.EndDate, order.Status, order.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SaveOrderAndDeleteExecutions commits a cancellation as one transaction:
// the executions are removed and the order row is rewritten in the same
// commit, so a failure leaves the order in production with its schedule
// intact.
func (s *Storage) SaveOrderAndDeleteExecutions(ctx context.Context, order *storage.Order) error {
	const op = "storage.mysql.SaveOrderAndDeleteExecutions"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM step_executions WHERE order_id = ?`, order.ID); err != nil {
		return fmt.Errorf("%s: delete executions: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET model_name = ?, quantity = ?, deadline = ?, start_date = ?, end_date = ?, status = ? WHERE id = ?`,
		order.ModelName, order.Quantity, order.Deadline, order.StartDate, order.EndDate, order.Status, order.ID)
	if err != nil {
		return fmt.Errorf("%s: update order: %w", op, err)
	}

	return tx.Commit()
}

// DeleteOrder removes the order row together with any executions still
// referencing it. Status gating (CREATED only) is the caller's job.
func (s *Storage) DeleteOrder(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteOrder"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM step_executions WHERE order_id = ?`, id); err != nil {
		return fmt.Errorf("%s: delete executions: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: delete order: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: order id=%d: %w", op, id, storage.ErrOrderNotFound)
	}

	return tx.Commit()
}
