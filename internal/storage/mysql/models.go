package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"factory-planner/internal/storage"
)

// GetModelWithSteps loads a model and its templates ordered by step_order.
func (s *Storage) GetModelWithSteps(ctx context.Context, name string) (*storage.Model, error) {
	const op = "storage.mysql.GetModelWithSteps"

	var model storage.Model
	err := s.db.QueryRowContext(ctx,
		`SELECT name, description FROM models WHERE name = ?`, name).
		Scan(&model.Name, &model.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: model %q: %w", op, name, storage.ErrModelNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stmt := `SELECT id, model_name, step_order, duration_seconds_per_unit, machine_name, semifinished_name
		FROM step_templates WHERE model_name = ? ORDER BY step_order`

	rows, err := s.db.QueryContext(ctx, stmt, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t storage.StepTemplate
		err := rows.Scan(&t.ID, &t.ModelName, &t.StepOrder, &t.DurationSeconds, &t.MachineName, &t.SemifinishedName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		model.Steps = append(model.Steps, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &model, nil
}

func (s *Storage) GetAllModels(ctx context.Context) ([]*storage.Model, error) {
	const op = "storage.mysql.GetAllModels"

	rows, err := s.db.QueryContext(ctx, `SELECT name, description FROM models ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var models []*storage.Model
	for rows.Next() {
		var m storage.Model
		if err := rows.Scan(&m.Name, &m.Description); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		models = append(models, &m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return models, nil
}

func (s *Storage) SaveModel(ctx context.Context, model storage.Model) error {
	const op = "storage.mysql.SaveModel"

	stmt := `INSERT INTO models (name, description) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE description = VALUES(description)`

	if _, err := s.db.ExecContext(ctx, stmt, model.Name, model.Description); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// InsertStepTemplate inserts a template at the given step_order, shifting
// later steps up by one so the sequence stays contiguous from 1. A
// step_order past the end appends.
func (s *Storage) InsertStepTemplate(ctx context.Context, t storage.StepTemplate) (int64, error) {
	const op = "storage.mysql.InsertStepTemplate"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM step_templates WHERE model_name = ?`, t.ModelName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if t.StepOrder < 1 || t.StepOrder > count+1 {
		t.StepOrder = count + 1
	}

	// Shift from the tail down to avoid tripping the unique index.
	_, err = tx.ExecContext(ctx,
		`UPDATE step_templates SET step_order = step_order + 1
		 WHERE model_name = ? AND step_order >= ? ORDER BY step_order DESC`,
		t.ModelName, t.StepOrder)
	if err != nil {
		return 0, fmt.Errorf("%s: reindex: %w", op, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO step_templates (model_name, step_order, duration_seconds_per_unit, machine_name, semifinished_name)
		 VALUES (?, ?, ?, ?, ?)`,
		t.ModelName, t.StepOrder, t.DurationSeconds, t.MachineName, t.SemifinishedName)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1452 {
			return 0, fmt.Errorf("%s: unknown model %q: %w", op, t.ModelName, storage.ErrModelNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) UpdateStepTemplate(ctx context.Context, t storage.StepTemplate) error {
	const op = "storage.mysql.UpdateStepTemplate"

	stmt := `UPDATE step_templates
		SET duration_seconds_per_unit = ?, machine_name = ?, semifinished_name = ?
		WHERE id = ?`

	res, err := s.db.ExecContext(ctx, stmt, t.DurationSeconds, t.MachineName, t.SemifinishedName, t.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: step template id=%d: %w", op, t.ID, storage.ErrModelNotFound)
	}

	return nil
}

// DeleteStepTemplate removes a template and closes the gap in step_order.
func (s *Storage) DeleteStepTemplate(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteStepTemplate"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var modelName string
	var stepOrder int
	err = tx.QueryRowContext(ctx,
		`SELECT model_name, step_order FROM step_templates WHERE id = ?`, id).
		Scan(&modelName, &stepOrder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: step template id=%d: %w", op, id, storage.ErrModelNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM step_templates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE step_templates SET step_order = step_order - 1
		 WHERE model_name = ? AND step_order > ? ORDER BY step_order ASC`,
		modelName, stepOrder)
	if err != nil {
		return fmt.Errorf("%s: reindex: %w", op, err)
	}

	return tx.Commit()
}
