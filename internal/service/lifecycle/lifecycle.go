package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"factory-planner/internal/service/scheduler"
	"factory-planner/internal/storage"
)

// ErrStateConflict is the common ancestor of every illegal-transition
// error, so callers can map the whole family at once while still
// reporting the specific condition.
var ErrStateConflict = errors.New("illegal order state transition")

var (
	ErrAlreadyInProduction = fmt.Errorf("%w: order is already in production", ErrStateConflict)
	ErrAlreadyCompleted    = fmt.Errorf("%w: order is already completed", ErrStateConflict)
	ErrAlreadyCancelled    = fmt.Errorf("%w: order is already cancelled", ErrStateConflict)
	ErrNotInProduction     = fmt.Errorf("%w: order is not in production", ErrStateConflict)
)

type Storage interface {
	GetOrder(ctx context.Context, id int64) (*storage.Order, error)
	SaveOrder(ctx context.Context, order *storage.Order) error
	SaveOrderAndDeleteExecutions(ctx context.Context, order *storage.Order) error
}

type Scheduler interface {
	ScheduleOrder(ctx context.Context, order *storage.Order) ([]*storage.StepExecution, error)
}

type Service struct {
	storage   Storage
	scheduler Scheduler
	now       func() time.Time
}

func New(storage Storage, sched Scheduler) *Service {
	return &Service{storage: storage, scheduler: sched, now: time.Now}
}

// orderState gives each lifecycle status its own transition behavior; the
// factory below picks the variant from the persisted status, so callers
// never switch on status themselves.
type orderState interface {
	start(ctx context.Context, s *Service, order *storage.Order) error
	complete(ctx context.Context, s *Service, order *storage.Order) error
	cancel(ctx context.Context, s *Service, order *storage.Order) error
}

func stateFor(status string) (orderState, error) {
	switch status {
	case storage.StatusCreated:
		return createdState{}, nil
	case storage.StatusInProduction:
		return inProductionState{}, nil
	case storage.StatusCompleted:
		return completedState{}, nil
	case storage.StatusCancelled:
		return cancelledState{}, nil
	default:
		return nil, fmt.Errorf("unknown order status %q", status)
	}
}

// StartProduction moves a CREATED order into production: stamps the start
// date, runs the scheduler, and persists the new status together with the
// execution batch in one commit. A failed or infeasible run leaves the
// order untouched and retryable.
func (s *Service) StartProduction(ctx context.Context, orderID int64) (*storage.Order, error) {
	const op = "service.lifecycle.StartProduction"
	return s.transition(ctx, op, orderID, orderState.start)
}

func (s *Service) Complete(ctx context.Context, orderID int64) (*storage.Order, error) {
	const op = "service.lifecycle.Complete"
	return s.transition(ctx, op, orderID, orderState.complete)
}

// Cancel tears down the order's executions and stamps the end date.
// Legal only from IN_PRODUCTION; a CREATED order is deleted instead.
func (s *Service) Cancel(ctx context.Context, orderID int64) (*storage.Order, error) {
	const op = "service.lifecycle.Cancel"
	return s.transition(ctx, op, orderID, orderState.cancel)
}

func (s *Service) transition(ctx context.Context, op string, orderID int64,
	fn func(orderState, context.Context, *Service, *storage.Order) error) (*storage.Order, error) {

	order, err := s.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	state, err := stateFor(order.Status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := fn(state, ctx, s, order); err != nil {
		return nil, fmt.Errorf("%s: order id=%d: %w", op, orderID, err)
	}

	return order, nil
}

type createdState struct{}

func (createdState) start(ctx context.Context, s *Service, order *storage.Order) error {
	today := scheduler.DateOnly(s.now())
	order.StartDate = &today
	order.Status = storage.StatusInProduction

	// The scheduler persists the order row and the execution batch in
	// one transaction; on error nothing has landed and the transition
	// can be retried as-is.
	_, err := s.scheduler.ScheduleOrder(ctx, order)
	return err
}

func (createdState) complete(context.Context, *Service, *storage.Order) error {
	return ErrNotInProduction
}

func (createdState) cancel(context.Context, *Service, *storage.Order) error {
	return ErrNotInProduction
}

type inProductionState struct{}

func (inProductionState) start(context.Context, *Service, *storage.Order) error {
	return ErrAlreadyInProduction
}

func (inProductionState) complete(ctx context.Context, s *Service, order *storage.Order) error {
	today := scheduler.DateOnly(s.now())
	order.EndDate = &today
	order.Status = storage.StatusCompleted

	return s.storage.SaveOrder(ctx, order)
}

func (inProductionState) cancel(ctx context.Context, s *Service, order *storage.Order) error {
	today := scheduler.DateOnly(s.now())
	order.EndDate = &today
	order.Status = storage.StatusCancelled

	// Executions go away in the same commit that flips the status; a
	// failure leaves the order in production with its schedule intact.
	return s.storage.SaveOrderAndDeleteExecutions(ctx, order)
}

type completedState struct{}

func (completedState) start(context.Context, *Service, *storage.Order) error {
	return ErrAlreadyCompleted
}

func (completedState) complete(context.Context, *Service, *storage.Order) error {
	return ErrAlreadyCompleted
}

func (completedState) cancel(context.Context, *Service, *storage.Order) error {
	return ErrAlreadyCompleted
}

type cancelledState struct{}

func (cancelledState) start(context.Context, *Service, *storage.Order) error {
	return ErrAlreadyCancelled
}

func (cancelledState) complete(context.Context, *Service, *storage.Order) error {
	return ErrAlreadyCancelled
}

func (cancelledState) cancel(context.Context, *Service, *storage.Order) error {
	return ErrAlreadyCancelled
}
