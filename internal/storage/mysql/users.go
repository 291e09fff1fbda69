package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"factory-planner/internal/storage"
)

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	const op = "storage.mysql.GetUserByEmail"

	var u storage.User
	err := s.db.QueryRowContext(ctx,
		`SELECT email, name, surname, role FROM users WHERE email = ?`, email).
		Scan(&u.Email, &u.Name, &u.Surname, &u.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: user %q: %w", op, email, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}

func (s *Storage) GetUsers(ctx context.Context) ([]*storage.User, error) {
	const op = "storage.mysql.GetUsers"

	rows, err := s.db.QueryContext(ctx, `SELECT email, name, surname, role FROM users ORDER BY surname, name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []*storage.User
	for rows.Next() {
		var u storage.User
		if err := rows.Scan(&u.Email, &u.Name, &u.Surname, &u.Role); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, &u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}
