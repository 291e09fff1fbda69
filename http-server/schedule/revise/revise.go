package revise

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"factory-planner/internal/service/revision"
	"factory-planner/internal/storage"
)

type RequestItem struct {
	ExecutionID   int64  `json:"execution_id"`
	ActualStart   string `json:"actual_start"`
	ActualEnd     string `json:"actual_end"`
	AssigneeEmail string `json:"assignee_email,omitempty"`
}

type Request struct {
	Revisions []RequestItem `json:"revisions"`
}

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Reviser interface {
	Apply(ctx context.Context, items []revision.Item) error
}

// ApplyRevisions commits a batch of manual schedule edits. Processing is
// per-item: the service stops at the first bad entry and earlier entries
// stay committed.
func ApplyRevisions(log *slog.Logger, svc Reviser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.schedule.revise.ApplyRevisions"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request", slog.String("error", err.Error()))
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if len(req.Revisions) == 0 {
			http.Error(w, "empty revision batch", http.StatusBadRequest)
			return
		}

		items := make([]revision.Item, 0, len(req.Revisions))
		for i, entry := range req.Revisions {
			start, err := time.Parse(time.DateOnly, entry.ActualStart)
			if err != nil {
				http.Error(w, fmt.Sprintf("entry %d: actual_start must be a date (YYYY-MM-DD)", i), http.StatusBadRequest)
				return
			}
			end, err := time.Parse(time.DateOnly, entry.ActualEnd)
			if err != nil {
				http.Error(w, fmt.Sprintf("entry %d: actual_end must be a date (YYYY-MM-DD)", i), http.StatusBadRequest)
				return
			}
			items = append(items, revision.Item{
				ExecutionID:   entry.ExecutionID,
				ActualStart:   start,
				ActualEnd:     end,
				AssigneeEmail: entry.AssigneeEmail,
			})
		}

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		if err := svc.Apply(ctx, items); err != nil {
			status, msg := revisionError(err)
			log.Error("revision batch failed", slog.String("error", err.Error()))
			w.WriteHeader(status)
			render.JSON(w, r, Response{Error: msg})
			return
		}

		render.JSON(w, r, Response{Status: strconv.Itoa(http.StatusOK)})
	}
}

func revisionError(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrExecutionNotFound):
		return http.StatusNotFound, "execution not found"
	case errors.Is(err, storage.ErrUserNotFound):
		return http.StatusNotFound, "assignee not found"
	case errors.Is(err, revision.ErrRoleViolation):
		return http.StatusUnprocessableEntity, "assignee is not an employee"
	case errors.Is(err, revision.ErrBadWindow):
		return http.StatusBadRequest, "actual start is after actual end"
	case errors.Is(err, revision.ErrMissingID):
		return http.StatusBadRequest, "revision entry is missing the execution id"
	default:
		return http.StatusInternalServerError, "revision batch failed"
	}
}
