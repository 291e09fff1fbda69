package revision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"factory-planner/internal/storage"
)

var (
	ErrRoleViolation = errors.New("assignee is not an employee")
	ErrBadWindow     = errors.New("actual start is after actual end")
	ErrMissingID     = errors.New("revision entry is missing the execution id")
)

type Storage interface {
	GetExecution(ctx context.Context, id int64) (*storage.StepExecution, error)
	SaveExecution(ctx context.Context, e *storage.StepExecution) error
	GetUserByEmail(ctx context.Context, email string) (*storage.User, error)
}

type Service struct {
	storage Storage
}

func New(storage Storage) *Service {
	return &Service{storage: storage}
}

// Item is one manual edit to an execution's actual window. An empty
// AssigneeEmail clears the current assignment.
type Item struct {
	ExecutionID   int64
	ActualStart   time.Time
	ActualEnd     time.Time
	AssigneeEmail string
}

// Apply commits revisions one by one and stops at the first bad entry.
// Entries already committed stay committed; the batch is deliberately not
// all-or-nothing. Actual windows overwrite whatever was there before —
// no check against the scheduled window or the order deadline.
func (s *Service) Apply(ctx context.Context, items []Item) error {
	const op = "service.revision.Apply"

	for i, item := range items {
		if err := s.applyOne(ctx, item); err != nil {
			return fmt.Errorf("%s: entry %d: %w", op, i, err)
		}
	}

	return nil
}

func (s *Service) applyOne(ctx context.Context, item Item) error {
	if item.ExecutionID == 0 {
		return ErrMissingID
	}
	if item.ActualStart.After(item.ActualEnd) {
		return fmt.Errorf("execution id=%d: %w", item.ExecutionID, ErrBadWindow)
	}

	exec, err := s.storage.GetExecution(ctx, item.ExecutionID)
	if err != nil {
		return err
	}

	if item.AssigneeEmail != "" {
		user, err := s.storage.GetUserByEmail(ctx, item.AssigneeEmail)
		if err != nil {
			return err
		}
		if user.Role != storage.RoleEmployee {
			return fmt.Errorf("user %q has role %s: %w", user.Email, user.Role, ErrRoleViolation)
		}
		exec.AssigneeEmail = &user.Email
	} else {
		exec.AssigneeEmail = nil
	}

	exec.ActualStart = item.ActualStart
	exec.ActualEnd = item.ActualEnd

	return s.storage.SaveExecution(ctx, exec)
}
