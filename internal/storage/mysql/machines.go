package mysql

import (
	"context"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"factory-planner/internal/storage"
)

func (s *Storage) GetMachines(ctx context.Context) ([]*storage.Machine, error) {
	const op = "storage.mysql.GetMachines"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM machines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var machines []*storage.Machine
	for rows.Next() {
		var m storage.Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.Description); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		machines = append(machines, &m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return machines, nil
}

func (s *Storage) SaveMachine(ctx context.Context, m storage.Machine) (int64, error) {
	const op = "storage.mysql.SaveMachine"

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO machines (name, description) VALUES (?, ?)`, m.Name, m.Description)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			return 0, fmt.Errorf("%s: machine %q already exists: %w", op, m.Name, err)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return res.LastInsertId()
}
