package transition

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"factory-planner/internal/service/lifecycle"
	"factory-planner/internal/service/scheduler"
	"factory-planner/internal/storage"
)

type Response struct {
	Order  *storage.Order `json:"order,omitempty"`
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
}

type Lifecycle interface {
	StartProduction(ctx context.Context, orderID int64) (*storage.Order, error)
	Complete(ctx context.Context, orderID int64) (*storage.Order, error)
	Cancel(ctx context.Context, orderID int64) (*storage.Order, error)
}

func StartProduction(log *slog.Logger, svc Lifecycle) http.HandlerFunc {
	return transitionHandler(log, "handler.orders.transition.StartProduction", svc.StartProduction)
}

func Complete(log *slog.Logger, svc Lifecycle) http.HandlerFunc {
	return transitionHandler(log, "handler.orders.transition.Complete", svc.Complete)
}

func Cancel(log *slog.Logger, svc Lifecycle) http.HandlerFunc {
	return transitionHandler(log, "handler.orders.transition.Cancel", svc.Cancel)
}

func transitionHandler(log *slog.Logger, op string,
	fn func(ctx context.Context, orderID int64) (*storage.Order, error)) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		// Scheduling walks every persisted execution; give the
		// transition more room than a plain read.
		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		order, err := fn(ctx, id)
		if err != nil {
			status, msg := transitionError(err)
			log.Error("transition failed", slog.String("error", err.Error()))
			w.WriteHeader(status)
			render.JSON(w, r, Response{Error: msg})
			return
		}

		render.JSON(w, r, Response{
			Order:  order,
			Status: strconv.Itoa(http.StatusOK),
		})
	}
}

func transitionError(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, storage.ErrModelNotFound):
		return http.StatusNotFound, "order model not found"
	case errors.Is(err, lifecycle.ErrStateConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, scheduler.ErrAlreadyScheduled):
		return http.StatusConflict, "order already has scheduled executions"
	case errors.Is(err, scheduler.ErrDeadlineExceeded):
		return http.StatusUnprocessableEntity, "schedule does not fit before the order deadline"
	case errors.Is(err, scheduler.ErrNoSteps):
		return http.StatusUnprocessableEntity, "order model has no process steps"
	default:
		return http.StatusInternalServerError, "transition failed"
	}
}
