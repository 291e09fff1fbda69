package get

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"factory-planner/internal/storage"
)

type MockTaskReader struct {
	mock.Mock
}

func (m *MockTaskReader) GetExecutionsByAssignee(ctx context.Context, email string, day time.Time) ([]*storage.StepExecution, error) {
	args := m.Called(ctx, email, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	executions, ok := args.Get(0).([]*storage.StepExecution)
	if !ok {
		return nil, fmt.Errorf("expected []*storage.StepExecution, got %T", args.Get(0))
	}
	return executions, args.Error(1)
}

func TestGetEmployeeTasks_All(t *testing.T) {
	mockStorage := new(MockTaskReader)

	email := "worker@factory.test"
	tasks := []*storage.StepExecution{
		{ID: 1, OrderID: 5, StepIndex: 2, MachineName: "Lathe", AssigneeEmail: &email},
	}

	mockStorage.On("GetExecutionsByAssignee", mock.Anything, email, time.Time{}).
		Return(tasks, nil)

	handler := GetEmployeeTasks(slog.Default(), mockStorage)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks?email=worker@factory.test", nil)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp Response
	assert.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	if assert.Len(t, resp.Tasks, 1) {
		assert.Equal(t, "Lathe", resp.Tasks[0].MachineName)
	}

	mockStorage.AssertExpectations(t)
}

func TestGetEmployeeTasks_TodayFilterPassesADate(t *testing.T) {
	mockStorage := new(MockTaskReader)

	mockStorage.On("GetExecutionsByAssignee", mock.Anything, "worker@factory.test",
		mock.MatchedBy(func(day time.Time) bool { return !day.IsZero() })).
		Return([]*storage.StepExecution{}, nil)

	handler := GetEmployeeTasks(slog.Default(), mockStorage)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks?email=worker@factory.test&today=true", nil)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockStorage.AssertExpectations(t)
}

func TestGetEmployeeTasks_MissingEmail(t *testing.T) {
	mockStorage := new(MockTaskReader)

	handler := GetEmployeeTasks(slog.Default(), mockStorage)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockStorage.AssertNotCalled(t, "GetExecutionsByAssignee", mock.Anything, mock.Anything, mock.Anything)
}
