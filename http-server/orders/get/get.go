package get

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

	"factory-planner/internal/storage"
)

type ResponseOrders struct {
	Orders []*storage.Order `json:"orders"`
	Status string           `json:"status"`
	Error  string           `json:"error,omitempty"`
}

type ResponseOrder struct {
	Order      *storage.Order           `json:"order"`
	Executions []*storage.StepExecution `json:"executions"`
	Status     string                   `json:"status"`
	Error      string                   `json:"error,omitempty"`
}

type OrderReader interface {
	GetOrders(ctx context.Context, status string) ([]*storage.Order, error)
	GetOrder(ctx context.Context, id int64) (*storage.Order, error)
	GetExecutionsByOrder(ctx context.Context, orderID int64) ([]*storage.StepExecution, error)
}

func GetOrders(log *slog.Logger, orders OrderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.get.GetOrders"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		status := r.URL.Query().Get("status")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := orders.GetOrders(ctx, status)
		if err != nil {
			log.Error("failed to list orders", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseOrders{Error: "failed to list orders"})
			return
		}

		render.JSON(w, r, ResponseOrders{
			Orders: list,
			Status: strconv.Itoa(http.StatusOK),
		})
	}
}

// GetOrder returns the order together with its executions ordered by
// step index.
func GetOrder(log *slog.Logger, orders OrderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.get.GetOrder"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			log.Error("invalid order id", slog.String("error", err.Error()))
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.GetOrder(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load order", slog.String("error", err.Error()))
			http.Error(w, "failed to load order", http.StatusInternalServerError)
			return
		}

		executions, err := orders.GetExecutionsByOrder(ctx, id)
		if err != nil {
			log.Error("failed to load executions", slog.String("error", err.Error()))
			http.Error(w, "failed to load executions", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, ResponseOrder{
			Order:      order,
			Executions: executions,
			Status:     strconv.Itoa(http.StatusOK),
		})
	}
}
