package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"factory-planner/internal/service/scheduler"
	"factory-planner/internal/storage"
)

type Response struct {
	Tasks  []*storage.StepExecution `json:"tasks"`
	Status string                   `json:"status"`
	Error  string                   `json:"error,omitempty"`
}

type TaskReader interface {
	GetExecutionsByAssignee(ctx context.Context, email string, day time.Time) ([]*storage.StepExecution, error)
}

// GetEmployeeTasks lists executions assigned to an employee. With
// ?today=true only executions whose actual window covers today are
// returned.
func GetEmployeeTasks(log *slog.Logger, tasks TaskReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.tasks.get.GetEmployeeTasks"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		email := r.URL.Query().Get("email")
		if email == "" {
			http.Error(w, "email is required", http.StatusBadRequest)
			return
		}

		var day time.Time
		if r.URL.Query().Get("today") == "true" {
			day = scheduler.DateOnly(time.Now())
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := tasks.GetExecutionsByAssignee(ctx, email, day)
		if err != nil {
			log.Error("failed to list tasks", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Error: "failed to list tasks"})
			return
		}

		render.JSON(w, r, Response{
			Tasks:  list,
			Status: strconv.Itoa(http.StatusOK),
		})
	}
}
