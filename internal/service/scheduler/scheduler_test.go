package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"factory-planner/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetModelWithSteps(ctx context.Context, name string) (*storage.Model, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	model, ok := args.Get(0).(*storage.Model)
	if !ok {
		return nil, fmt.Errorf("expected *storage.Model, got %T", args.Get(0))
	}
	return model, args.Error(1)
}

func (m *MockStorage) GetAllExecutions(ctx context.Context) ([]*storage.StepExecution, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	executions, ok := args.Get(0).([]*storage.StepExecution)
	if !ok {
		return nil, fmt.Errorf("expected []*storage.StepExecution, got %T", args.Get(0))
	}
	return executions, args.Error(1)
}

func (m *MockStorage) SaveOrderWithExecutions(ctx context.Context, order *storage.Order, executions []*storage.StepExecution) error {
	args := m.Called(ctx, order, executions)
	return args.Error(0)
}

func day(offset int) time.Time {
	base := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func newService(t *testing.T, st Storage) *Service {
	t.Helper()
	svc := New(st)
	svc.now = func() time.Time { return day(0) }
	return svc
}

func widgetA() *storage.Model {
	return &storage.Model{
		Name: "WidgetA",
		Steps: []storage.StepTemplate{
			{ModelName: "WidgetA", StepOrder: 1, DurationSeconds: 3600, MachineName: "Cutter", SemifinishedName: "cut blank"},
			{ModelName: "WidgetA", StepOrder: 2, DurationSeconds: 7200, MachineName: "Lathe", SemifinishedName: "turned part"},
		},
	}
}

func TestScheduleOrder_WidgetA(t *testing.T) {
	mockStorage := new(MockStorage)
	mockStorage.On("GetModelWithSteps", mock.Anything, "WidgetA").Return(widgetA(), nil)
	mockStorage.On("GetAllExecutions", mock.Anything).Return([]*storage.StepExecution{}, nil)
	mockStorage.On("SaveOrderWithExecutions", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(t, mockStorage)

	order := &storage.Order{ID: 1, ModelName: "WidgetA", Quantity: 4, Deadline: day(10)}

	executions, err := svc.ScheduleOrder(context.Background(), order)

	assert.NoError(t, err)
	assert.Len(t, executions, 2)

	// 4 units x 3600s = 14400s -> 1 workday
	assert.Equal(t, day(0), executions[0].ScheduledStart)
	assert.Equal(t, day(1), executions[0].ScheduledEnd)
	assert.Equal(t, "Cutter", executions[0].MachineName)

	// 4 units x 7200s = 28800s -> exactly 1 workday, cursor carried from step 1
	assert.Equal(t, day(1), executions[1].ScheduledStart)
	assert.Equal(t, day(2), executions[1].ScheduledEnd)
	assert.Equal(t, "Lathe", executions[1].MachineName)

	// actual window starts out equal to the scheduled one
	for _, e := range executions {
		assert.Equal(t, e.ScheduledStart, e.ActualStart)
		assert.Equal(t, e.ScheduledEnd, e.ActualEnd)
	}

	mockStorage.AssertExpectations(t)
}

func TestScheduleOrder_MachineContention(t *testing.T) {
	mockStorage := new(MockStorage)

	// Another order holds the Lathe until day 5.
	existing := []*storage.StepExecution{
		{ID: 10, OrderID: 99, StepIndex: 1, MachineName: "Lathe",
			ScheduledStart: day(2), ScheduledEnd: day(5)},
	}

	mockStorage.On("GetModelWithSteps", mock.Anything, "WidgetA").Return(widgetA(), nil)
	mockStorage.On("GetAllExecutions", mock.Anything).Return(existing, nil)
	mockStorage.On("SaveOrderWithExecutions", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(t, mockStorage)

	order := &storage.Order{ID: 2, ModelName: "WidgetA", Quantity: 4, Deadline: day(30)}

	executions, err := svc.ScheduleOrder(context.Background(), order)

	assert.NoError(t, err)
	assert.Len(t, executions, 2)

	// Cutter is free, so step 1 starts immediately.
	assert.Equal(t, day(0), executions[0].ScheduledStart)
	assert.Equal(t, day(1), executions[0].ScheduledEnd)

	// Step 2 waits for the Lathe to come free at day 5, not for its own
	// cursor at day 1.
	assert.Equal(t, day(5), executions[1].ScheduledStart)
	assert.Equal(t, day(6), executions[1].ScheduledEnd)
}

func TestScheduleOrder_DeadlineInfeasible(t *testing.T) {
	mockStorage := new(MockStorage)
	mockStorage.On("GetModelWithSteps", mock.Anything, "WidgetA").Return(widgetA(), nil)
	mockStorage.On("GetAllExecutions", mock.Anything).Return([]*storage.StepExecution{}, nil)

	svc := newService(t, mockStorage)

	// Two steps need two days; the deadline allows one.
	order := &storage.Order{ID: 3, ModelName: "WidgetA", Quantity: 4, Deadline: day(1)}

	executions, err := svc.ScheduleOrder(context.Background(), order)

	assert.ErrorIs(t, err, ErrDeadlineExceeded)
	assert.Nil(t, executions)
	mockStorage.AssertNotCalled(t, "SaveOrderWithExecutions", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduleOrder_AlreadyScheduled(t *testing.T) {
	mockStorage := new(MockStorage)

	existing := []*storage.StepExecution{
		{ID: 7, OrderID: 4, StepIndex: 1, MachineName: "Cutter",
			ScheduledStart: day(0), ScheduledEnd: day(1)},
	}

	mockStorage.On("GetModelWithSteps", mock.Anything, "WidgetA").Return(widgetA(), nil)
	mockStorage.On("GetAllExecutions", mock.Anything).Return(existing, nil)

	svc := newService(t, mockStorage)

	order := &storage.Order{ID: 4, ModelName: "WidgetA", Quantity: 4, Deadline: day(10)}

	_, err := svc.ScheduleOrder(context.Background(), order)

	assert.ErrorIs(t, err, ErrAlreadyScheduled)
	mockStorage.AssertNotCalled(t, "SaveOrderWithExecutions", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduleOrder_SubDayDurationRoundsUpToOneDay(t *testing.T) {
	mockStorage := new(MockStorage)

	model := &storage.Model{
		Name: "Pin",
		Steps: []storage.StepTemplate{
			{ModelName: "Pin", StepOrder: 1, DurationSeconds: 60, MachineName: "Press"},
		},
	}

	mockStorage.On("GetModelWithSteps", mock.Anything, "Pin").Return(model, nil)
	mockStorage.On("GetAllExecutions", mock.Anything).Return([]*storage.StepExecution{}, nil)
	mockStorage.On("SaveOrderWithExecutions", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(t, mockStorage)

	order := &storage.Order{ID: 5, ModelName: "Pin", Quantity: 1, Deadline: day(10)}

	executions, err := svc.ScheduleOrder(context.Background(), order)

	assert.NoError(t, err)
	assert.Len(t, executions, 1)
	assert.Equal(t, day(1), executions[0].ScheduledEnd)
}

func TestScheduleOrder_StepsNeverOverlapWithinOrder(t *testing.T) {
	mockStorage := new(MockStorage)

	model := &storage.Model{Name: "Frame"}
	for i := 1; i <= 5; i++ {
		model.Steps = append(model.Steps, storage.StepTemplate{
			ModelName:       "Frame",
			StepOrder:       i,
			DurationSeconds: 30000,
			MachineName:     fmt.Sprintf("Station-%d", i),
		})
	}

	mockStorage.On("GetModelWithSteps", mock.Anything, "Frame").Return(model, nil)
	mockStorage.On("GetAllExecutions", mock.Anything).Return([]*storage.StepExecution{}, nil)
	mockStorage.On("SaveOrderWithExecutions", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(t, mockStorage)

	order := &storage.Order{ID: 6, ModelName: "Frame", Quantity: 3, Deadline: day(100)}

	executions, err := svc.ScheduleOrder(context.Background(), order)

	assert.NoError(t, err)
	for i := 1; i < len(executions); i++ {
		prev, cur := executions[i-1], executions[i]
		assert.False(t, cur.ScheduledStart.Before(prev.ScheduledEnd),
			"step %d starts before step %d ends", cur.StepIndex, prev.StepIndex)
	}
}

func TestScheduleOrder_OrderRowCommittedWithBatch(t *testing.T) {
	mockStorage := new(MockStorage)
	mockStorage.On("GetModelWithSteps", mock.Anything, "WidgetA").Return(widgetA(), nil)
	mockStorage.On("GetAllExecutions", mock.Anything).Return([]*storage.StepExecution{}, nil)

	svc := newService(t, mockStorage)

	order := &storage.Order{ID: 8, ModelName: "WidgetA", Quantity: 4,
		Deadline: day(10), Status: storage.StatusInProduction}

	// The order row rides in the same commit as the batch.
	mockStorage.On("SaveOrderWithExecutions", mock.Anything, order, mock.Anything).Return(nil)

	_, err := svc.ScheduleOrder(context.Background(), order)

	assert.NoError(t, err)
	mockStorage.AssertExpectations(t)
}

func TestScheduleOrder_PersistFailureReturnsNothing(t *testing.T) {
	mockStorage := new(MockStorage)
	mockStorage.On("GetModelWithSteps", mock.Anything, "WidgetA").Return(widgetA(), nil)
	mockStorage.On("GetAllExecutions", mock.Anything).Return([]*storage.StepExecution{}, nil)

	dbErr := errors.New("connection reset")
	mockStorage.On("SaveOrderWithExecutions", mock.Anything, mock.Anything, mock.Anything).Return(dbErr)

	svc := newService(t, mockStorage)

	order := &storage.Order{ID: 9, ModelName: "WidgetA", Quantity: 4, Deadline: day(10)}

	executions, err := svc.ScheduleOrder(context.Background(), order)

	assert.ErrorIs(t, err, dbErr)
	assert.Nil(t, executions)
}

func TestScheduleOrder_BadQuantity(t *testing.T) {
	mockStorage := new(MockStorage)
	svc := newService(t, mockStorage)

	order := &storage.Order{ID: 7, ModelName: "WidgetA", Quantity: 0, Deadline: day(10)}

	_, err := svc.ScheduleOrder(context.Background(), order)

	assert.ErrorIs(t, err, ErrBadQuantity)
	mockStorage.AssertNotCalled(t, "GetModelWithSteps", mock.Anything, mock.Anything)
}

func TestMachineAvailability(t *testing.T) {
	executions := []*storage.StepExecution{
		{MachineName: "Lathe", ScheduledEnd: day(3)},
		{MachineName: "Lathe", ScheduledEnd: day(7)},
		{MachineName: "Cutter", ScheduledEnd: day(2)},
	}

	free := machineAvailability(executions)

	assert.Equal(t, day(7), free["Lathe"])
	assert.Equal(t, day(2), free["Cutter"])
	_, ok := free["Press"]
	assert.False(t, ok, "unbooked machine must be absent from the map")
}

func TestDaysNeeded(t *testing.T) {
	// 8h workday = 28800s
	assert.Equal(t, 1, daysNeeded(28800, 1))
	assert.Equal(t, 2, daysNeeded(28801, 1))
	assert.Equal(t, 1, daysNeeded(0, 10))
	assert.Equal(t, 5, daysNeeded(3600, 40))
}
