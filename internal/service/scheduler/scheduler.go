package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"factory-planner/internal/storage"
)

// Effective workday when converting per-unit machine time into calendar
// days.
const workdaySeconds = 8 * 60 * 60

var (
	ErrAlreadyScheduled = errors.New("order already has scheduled executions")
	ErrDeadlineExceeded = errors.New("schedule does not fit before the order deadline")
	ErrNoSteps          = errors.New("model has no process steps")
	ErrBadQuantity      = errors.New("order quantity must be positive")
)

type Storage interface {
	GetModelWithSteps(ctx context.Context, name string) (*storage.Model, error)
	GetAllExecutions(ctx context.Context) ([]*storage.StepExecution, error)
	SaveOrderWithExecutions(ctx context.Context, order *storage.Order, executions []*storage.StepExecution) error
}

type Service struct {
	storage Storage

	// Serializes scheduling runs. The availability fold and the batch
	// insert are a read-modify-write on the global machine timeline;
	// two orders racing here could double-book a machine.
	mu sync.Mutex

	now func() time.Time
}

func New(storage Storage) *Service {
	return &Service{storage: storage, now: time.Now}
}

// DateOnly truncates to a calendar date at UTC midnight. Schedule windows
// carry no time-of-day component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ScheduleOrder expands the order's model templates into dated executions
// in a single greedy forward pass. Steps within one order run strictly in
// sequence; a step additionally waits for its machine to be free from
// every other order. All candidate executions are validated against the
// deadline before anything is persisted, and the batch lands in one
// transaction together with the order row, so a failed transition leaves
// neither behind.
func (s *Service) ScheduleOrder(ctx context.Context, order *storage.Order) ([]*storage.StepExecution, error) {
	const op = "service.scheduler.ScheduleOrder"

	if order.Quantity <= 0 {
		return nil, fmt.Errorf("%s: order id=%d: %w", op, order.ID, ErrBadQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		model      *storage.Model
		executions []*storage.StepExecution
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		model, err = s.storage.GetModelWithSteps(gCtx, order.ModelName)
		if err != nil {
			return fmt.Errorf("model: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		executions, err = s.storage.GetAllExecutions(gCtx)
		if err != nil {
			return fmt.Errorf("executions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(model.Steps) == 0 {
		return nil, fmt.Errorf("%s: model %q: %w", op, order.ModelName, ErrNoSteps)
	}

	for _, e := range executions {
		if e.OrderID == order.ID {
			return nil, fmt.Errorf("%s: order id=%d: %w", op, order.ID, ErrAlreadyScheduled)
		}
	}

	free := machineAvailability(executions)
	deadline := DateOnly(order.Deadline)

	cursor := DateOnly(s.now())
	if order.StartDate != nil {
		cursor = DateOnly(*order.StartDate)
	}

	batch := make([]*storage.StepExecution, 0, len(model.Steps))
	for _, step := range model.Steps {
		start := cursor
		if end, ok := free[step.MachineName]; ok && end.After(start) {
			start = end
		}
		end := start.AddDate(0, 0, daysNeeded(step.DurationSeconds, order.Quantity))

		if end.After(deadline) {
			return nil, fmt.Errorf("%s: step %d on %q ends %s after deadline %s: %w",
				op, step.StepOrder, step.MachineName,
				end.Format(time.DateOnly), deadline.Format(time.DateOnly), ErrDeadlineExceeded)
		}

		batch = append(batch, &storage.StepExecution{
			OrderID:          order.ID,
			StepIndex:        step.StepOrder,
			MachineName:      step.MachineName,
			SemifinishedName: step.SemifinishedName,
			ScheduledStart:   start,
			ScheduledEnd:     end,
			ActualStart:      start,
			ActualEnd:        end,
		})

		free[step.MachineName] = end
		cursor = end
	}

	if err := s.storage.SaveOrderWithExecutions(ctx, order, batch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return batch, nil
}

// machineAvailability folds every persisted execution into the latest
// scheduled end per machine. A machine missing from the map has never
// been booked. Recomputed on each run instead of cached; scheduling is
// not a hot path and a stale cache here double-books machines.
func machineAvailability(executions []*storage.StepExecution) map[string]time.Time {
	free := make(map[string]time.Time, len(executions))
	for _, e := range executions {
		if end, ok := free[e.MachineName]; !ok || e.ScheduledEnd.After(end) {
			free[e.MachineName] = e.ScheduledEnd
		}
	}
	return free
}

// daysNeeded converts total machine seconds for the whole quantity into
// whole workdays, never less than one.
func daysNeeded(secondsPerUnit int64, quantity int) int {
	total := secondsPerUnit * int64(quantity)
	days := int((total + workdaySeconds - 1) / workdaySeconds)
	if days < 1 {
		days = 1
	}
	return days
}
