package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"factory-planner/internal/storage"
)

const executionColumns = `id, order_id, step_index, machine_name, semifinished_name,
		scheduled_start, scheduled_end, actual_start, actual_end, assignee_email`

func scanExecution(rows *sql.Rows) (*storage.StepExecution, error) {
	var e storage.StepExecution
	err := rows.Scan(
		&e.ID,
		&e.OrderID,
		&e.StepIndex,
		&e.MachineName,
		&e.SemifinishedName,
		&e.ScheduledStart,
		&e.ScheduledEnd,
		&e.ActualStart,
		&e.ActualEnd,
		&e.AssigneeEmail,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetAllExecutions feeds the machine-availability fold; it scans every
// execution regardless of order or status.
func (s *Storage) GetAllExecutions(ctx context.Context) ([]*storage.StepExecution, error) {
	const op = "storage.mysql.GetAllExecutions"

	stmt := `SELECT ` + executionColumns + ` FROM step_executions`

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var executions []*storage.StepExecution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		executions = append(executions, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return executions, nil
}

func (s *Storage) GetExecution(ctx context.Context, id int64) (*storage.StepExecution, error) {
	const op = "storage.mysql.GetExecution"

	stmt := `SELECT ` + executionColumns + ` FROM step_executions WHERE id = ?`

	var e storage.StepExecution
	err := s.db.QueryRowContext(ctx, stmt, id).Scan(
		&e.ID,
		&e.OrderID,
		&e.StepIndex,
		&e.MachineName,
		&e.SemifinishedName,
		&e.ScheduledStart,
		&e.ScheduledEnd,
		&e.ActualStart,
		&e.ActualEnd,
		&e.AssigneeEmail,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: execution id=%d: %w", op, id, storage.ErrExecutionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &e, nil
}

func (s *Storage) GetExecutionsByOrder(ctx context.Context, orderID int64) ([]*storage.StepExecution, error) {
	const op = "storage.mysql.GetExecutionsByOrder"

	stmt := `SELECT ` + executionColumns + ` FROM step_executions WHERE order_id = ? ORDER BY step_index`

	rows, err := s.db.QueryContext(ctx, stmt, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var executions []*storage.StepExecution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		executions = append(executions, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return executions, nil
}

// GetScheduleBlocks powers the global production timeline: executions of
// all orders in the given status, joined with the order and the resolved
// assignee, ordered by order start date then step index.
func (s *Storage) GetScheduleBlocks(ctx context.Context, orderStatus string) ([]*storage.ScheduleBlock, error) {
	const op = "storage.mysql.GetScheduleBlocks"

	stmt := `
		SELECT e.id, e.order_id, o.model_name, e.step_index, e.machine_name, e.semifinished_name,
		       e.scheduled_start, e.scheduled_end, e.actual_start, e.actual_end,
		       e.assignee_email, CONCAT(u.name, ' ', u.surname)
		FROM step_executions e
		JOIN orders o ON o.id = e.order_id
		LEFT JOIN users u ON u.email = e.assignee_email
		WHERE o.status = ?
		ORDER BY o.start_date, e.order_id, e.step_index`

	rows, err := s.db.QueryContext(ctx, stmt, orderStatus)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var blocks []*storage.ScheduleBlock
	for rows.Next() {
		var b storage.ScheduleBlock
		err := rows.Scan(
			&b.ExecutionID,
			&b.OrderID,
			&b.ModelName,
			&b.StepIndex,
			&b.MachineName,
			&b.SemifinishedName,
			&b.ScheduledStart,
			&b.ScheduledEnd,
			&b.ActualStart,
			&b.ActualEnd,
			&b.AssigneeEmail,
			&b.AssigneeName,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		blocks = append(blocks, &b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return blocks, nil
}

// GetExecutionsByAssignee lists an employee's tasks. With a non-zero day
// it keeps only executions whose actual window covers that day.
func (s *Storage) GetExecutionsByAssignee(ctx context.Context, email string, day time.Time) ([]*storage.StepExecution, error) {
	const op = "storage.mysql.GetExecutionsByAssignee"

	stmt := `SELECT ` + executionColumns + ` FROM step_executions WHERE assignee_email = ?`
	args := []interface{}{email}

	if !day.IsZero() {
		stmt += ` AND actual_start <= ? AND actual_end >= ?`
		args = append(args, day, day)
	}
	stmt += ` ORDER BY actual_start, step_index`

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var executions []*storage.StepExecution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		executions = append(executions, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return executions, nil
}

// SaveOrderWithExecutions commits an order transition and its scheduled
// batch as one transaction. Either the order row and every execution
// land together or nothing does, so a failed start leaves the order as
// it was and the transition can simply be retried.
func (s *Storage) SaveOrderWithExecutions(ctx context.Context, order *storage.Order, executions []*storage.StepExecution) error {
	const op = "storage.mysql.SaveOrderWithExecutions"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET model_name = ?, quantity = ?, deadline = ?, start_date = ?, end_date = ?, status = ? WHERE id = ?`,
		order.ModelName, order.Quantity, order.Deadline, order.StartDate, order.EndDate, order.Status, order.ID)
	if err != nil {
		return fmt.Errorf("%s: update order: %w", op, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO step_executions
			(order_id, step_index, machine_name, semifinished_name,
			 scheduled_start, scheduled_end, actual_start, actual_end, assignee_email)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%s: prepare statement: %w", op, err)
	}
	defer stmt.Close()

	for _, e := range executions {
		res, err := stmt.ExecContext(ctx, e.OrderID, e.StepIndex, e.MachineName, e.SemifinishedName,
			e.ScheduledStart, e.ScheduledEnd, e.ActualStart, e.ActualEnd, e.AssigneeEmail)
		if err != nil {
			return fmt.Errorf("%s: insert execution step %d: %w", op, e.StepIndex, err)
		}
		if e.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return tx.Commit()
}

// SaveExecution writes the full record back (no partial patches at this
// level).
func (s *Storage) SaveExecution(ctx context.Context, e *storage.StepExecution) error {
	const op = "storage.mysql.SaveExecution"

	stmt := `UPDATE step_executions
		SET order_id = ?, step_index = ?, machine_name = ?, semifinished_name = ?,
		    scheduled_start = ?, scheduled_end = ?, actual_start = ?, actual_end = ?, assignee_email = ?
		WHERE id = ?`

	// RowsAffected is not checked here: re-saving an unchanged record
	// reports zero affected rows on MySQL, and revision batches must be
	// re-appliable. Existence is the caller's concern (GetExecution).
	_, err := s.db.ExecContext(ctx, stmt, e.OrderID, e.StepIndex, e.MachineName, e.SemifinishedName,
		e.ScheduledStart, e.ScheduledEnd, e.ActualStart, e.ActualEnd, e.AssigneeEmail, e.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteExecutionsByOrder(ctx context.Context, orderID int64) error {
	const op = "storage.mysql.DeleteExecutionsByOrder"

	_, err := s.db.ExecContext(ctx, `DELETE FROM step_executions WHERE order_id = ?`, orderID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
