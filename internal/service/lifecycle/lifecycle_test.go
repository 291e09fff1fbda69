package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"factory-planner/internal/service/scheduler"
	"factory-planner/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetOrder(ctx context.Context, id int64) (*storage.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	order, ok := args.Get(0).(*storage.Order)
	if !ok {
		return nil, fmt.Errorf("expected *storage.Order, got %T", args.Get(0))
	}
	return order, args.Error(1)
}

func (m *MockStorage) SaveOrder(ctx context.Context, order *storage.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockStorage) SaveOrderAndDeleteExecutions(ctx context.Context, order *storage.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) ScheduleOrder(ctx context.Context, order *storage.Order) ([]*storage.StepExecution, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	executions, ok := args.Get(0).([]*storage.StepExecution)
	if !ok {
		return nil, fmt.Errorf("expected []*storage.StepExecution, got %T", args.Get(0))
	}
	return executions, args.Error(1)
}

func day(offset int) time.Time {
	base := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func newService(t *testing.T, st Storage, sched Scheduler) *Service {
	t.Helper()
	svc := New(st, sched)
	svc.now = func() time.Time { return day(0) }
	return svc
}

func createdOrder(id int64) *storage.Order {
	return &storage.Order{
		ID:        id,
		ModelName: "WidgetA",
		Quantity:  4,
		Deadline:  day(10),
		Status:    storage.StatusCreated,
	}
}

func TestStartProduction_FromCreated(t *testing.T) {
	mockStorage := new(MockStorage)
	mockScheduler := new(MockScheduler)

	order := createdOrder(1)
	mockStorage.On("GetOrder", mock.Anything, int64(1)).Return(order, nil)
	mockScheduler.On("ScheduleOrder", mock.Anything, order).Return([]*storage.StepExecution{}, nil)

	svc := newService(t, mockStorage, mockScheduler)

	got, err := svc.StartProduction(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, storage.StatusInProduction, got.Status)
	if assert.NotNil(t, got.StartDate) {
		assert.Equal(t, day(0), *got.StartDate)
	}
	assert.Nil(t, got.EndDate)

	// The scheduler commits the order row with the batch; no separate save.
	mockStorage.AssertNotCalled(t, "SaveOrder", mock.Anything, mock.Anything)
	mockStorage.AssertExpectations(t)
	mockScheduler.AssertExpectations(t)
}

func TestStartProduction_RetryAfterPersistFailure(t *testing.T) {
	mockStorage := new(MockStorage)
	mockScheduler := new(MockScheduler)

	// The combined commit fails on the first attempt. Nothing has landed,
	// so a re-fetched order is still CREATED and the retry goes through
	// instead of tripping the already-scheduled guard.
	mockStorage.On("GetOrder", mock.Anything, int64(9)).Return(createdOrder(9), nil).Once()
	mockStorage.On("GetOrder", mock.Anything, int64(9)).Return(createdOrder(9), nil).Once()
	mockScheduler.On("ScheduleOrder", mock.Anything, mock.Anything).
		Return(nil, errors.New("commit failed")).Once()
	mockScheduler.On("ScheduleOrder", mock.Anything, mock.Anything).
		Return([]*storage.StepExecution{}, nil).Once()

	svc := newService(t, mockStorage, mockScheduler)

	_, err := svc.StartProduction(context.Background(), 9)
	assert.Error(t, err)

	got, err := svc.StartProduction(context.Background(), 9)
	assert.NoError(t, err)
	assert.Equal(t, storage.StatusInProduction, got.Status)

	mockStorage.AssertNotCalled(t, "SaveOrder", mock.Anything, mock.Anything)
	mockScheduler.AssertExpectations(t)
}

func TestStartProduction_SchedulingFailureLeavesOrderUnsaved(t *testing.T) {
	mockStorage := new(MockStorage)
	mockScheduler := new(MockScheduler)

	order := createdOrder(2)
	mockStorage.On("GetOrder", mock.Anything, int64(2)).Return(order, nil)
	mockScheduler.On("ScheduleOrder", mock.Anything, order).
		Return(nil, scheduler.ErrDeadlineExceeded)

	svc := newService(t, mockStorage, mockScheduler)

	_, err := svc.StartProduction(context.Background(), 2)

	assert.ErrorIs(t, err, scheduler.ErrDeadlineExceeded)
	mockStorage.AssertNotCalled(t, "SaveOrder", mock.Anything, mock.Anything)
}

func TestStartProduction_AlreadyInProduction(t *testing.T) {
	mockStorage := new(MockStorage)
	mockScheduler := new(MockScheduler)

	order := createdOrder(3)
	order.Status = storage.StatusInProduction
	mockStorage.On("GetOrder", mock.Anything, int64(3)).Return(order, nil)

	svc := newService(t, mockStorage, mockScheduler)

	_, err := svc.StartProduction(context.Background(), 3)

	assert.ErrorIs(t, err, ErrAlreadyInProduction)
	assert.ErrorIs(t, err, ErrStateConflict)
	mockScheduler.AssertNotCalled(t, "ScheduleOrder", mock.Anything, mock.Anything)
	mockStorage.AssertNotCalled(t, "SaveOrder", mock.Anything, mock.Anything)
}

func TestComplete_FromInProduction(t *testing.T) {
	mockStorage := new(MockStorage)
	mockScheduler := new(MockScheduler)

	start := day(-3)
	order := createdOrder(4)
	order.Status = storage.StatusInProduction
	order.StartDate = &start

	mockStorage.On("GetOrder", mock.Anything, int64(4)).Return(order, nil)
	mockStorage.On("SaveOrder", mock.Anything, order).Return(nil)

	svc := newService(t, mockStorage, mockScheduler)

	got, err := svc.Complete(context.Background(), 4)

	assert.NoError(t, err)
	assert.Equal(t, storage.StatusCompleted, got.Status)
	if assert.NotNil(t, got.EndDate) {
		assert.Equal(t, day(0), *got.EndDate)
	}
	mockStorage.AssertExpectations(t)
}

func TestComplete_FromCreatedIsStateConflict(t *testing.T) {
	mockStorage := new(MockStorage)
	mockScheduler := new(MockScheduler)

	order := createdOrder(5)
	mockStorage.On("GetOrder", mock.Anything, int64(5)).Return(order, nil)

	svc := newService(t, mockStorage, mockScheduler)

	_, err := svc.Complete(context.Background(), 5)

	assert.ErrorIs(t, err, ErrNotInProduction)

	// Order is reported unchanged: nothing saved, status untouched.
	mockStorage.AssertNotCalled(t, "SaveOrder", mock.Anything, mock.Anything)
	assert.Equal(t, storage.StatusCreated, order.Status)
	assert.Nil(t, order.EndDate)
}

func TestCancel_FromInProductionTearsDownExecutions(t *testing.T) {
	mockStorage := new(MockStorage)
	mockScheduler := new(MockScheduler)

	start := day(-1)
	order := createdOrder(6)
	order.Status = storage.StatusInProduction
	order.StartDate = &start

	mockStorage.On("GetOrder", mock.Anything, int64(6)).Return(order, nil)
	mockStorage.On("SaveOrderAndDeleteExecutions", mock.Anything, order).Return(nil)

	svc := newService(t, mockStorage, mockScheduler)

	got, err := svc.Cancel(context.Background(), 6)

	assert.NoError(t, err)
	assert.Equal(t, storage.StatusCancelled, got.Status)
	if assert.NotNil(t, got.EndDate) {
		assert.Equal(t, day(0), *got.EndDate)
	}

	// Status flip and execution teardown ride one commit; no separate save.
	mockStorage.AssertNotCalled(t, "SaveOrder", mock.Anything, mock.Anything)
	mockStorage.AssertExpectations(t)
}

func TestCancel_PersistFailurePropagates(t *testing.T) {
	mockStorage := new(MockStorage)
	mockScheduler := new(MockScheduler)

	start := day(-1)
	order := createdOrder(10)
	order.Status = storage.StatusInProduction
	order.StartDate = &start

	mockStorage.On("GetOrder", mock.Anything, int64(10)).Return(order, nil)
	mockStorage.On("SaveOrderAndDeleteExecutions", mock.Anything, order).
		Return(errors.New("commit failed"))

	svc := newService(t, mockStorage, mockScheduler)

	_, err := svc.Cancel(context.Background(), 10)

	assert.Error(t, err)
	mockStorage.AssertNotCalled(t, "SaveOrder", mock.Anything, mock.Anything)
}

func TestCancel_FromCreatedIsStateConflict(t *testing.T) {
	mockStorage := new(MockStorage)
	mockScheduler := new(MockScheduler)

	order := createdOrder(7)
	mockStorage.On("GetOrder", mock.Anything, int64(7)).Return(order, nil)

	svc := newService(t, mockStorage, mockScheduler)

	_, err := svc.Cancel(context.Background(), 7)

	assert.ErrorIs(t, err, ErrNotInProduction)
	mockStorage.AssertNotCalled(t, "SaveOrderAndDeleteExecutions", mock.Anything, mock.Anything)
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	cases := []struct {
		status string
		want   error
	}{
		{storage.StatusCompleted, ErrAlreadyCompleted},
		{storage.StatusCancelled, ErrAlreadyCancelled},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			mockStorage := new(MockStorage)
			mockScheduler := new(MockScheduler)

			order := createdOrder(8)
			order.Status = tc.status
			mockStorage.On("GetOrder", mock.Anything, int64(8)).Return(order, nil)

			svc := newService(t, mockStorage, mockScheduler)

			_, err := svc.StartProduction(context.Background(), 8)
			assert.ErrorIs(t, err, tc.want)

			_, err = svc.Complete(context.Background(), 8)
			assert.ErrorIs(t, err, tc.want)

			_, err = svc.Cancel(context.Background(), 8)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTransition_OrderNotFound(t *testing.T) {
	mockStorage := new(MockStorage)
	mockScheduler := new(MockScheduler)

	mockStorage.On("GetOrder", mock.Anything, int64(404)).Return(nil, storage.ErrOrderNotFound)

	svc := newService(t, mockStorage, mockScheduler)

	_, err := svc.Complete(context.Background(), 404)

	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
}
