package delete

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

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type OrderDeleter interface {
	GetOrder(ctx context.Context, id int64) (*storage.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// DeleteOrder removes a CREATED order. An order that entered production
// is cancelled through the lifecycle transition instead, never deleted.
func DeleteOrder(log *slog.Logger, orders OrderDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.delete.DeleteOrder"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
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

		if order.Status != storage.StatusCreated {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, Response{Error: "only CREATED orders can be deleted"})
			return
		}

		if err := orders.DeleteOrder(ctx, id); err != nil {
			log.Error("failed to delete order", slog.String("error", err.Error()))
			http.Error(w, "failed to delete order", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Response{Status: strconv.Itoa(http.StatusOK)})
	}
}
