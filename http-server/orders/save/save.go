package save

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"factory-planner/internal/storage"
)

type Request struct {
	ModelName string `json:"model_name"`
	Quantity  int    `json:"quantity"`
	Deadline  string `json:"deadline"`
}

type Response struct {
	ID     int64  `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, order storage.NewOrder) (int64, error)
}

func CreateOrder(log *slog.Logger, orders OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.save.CreateOrder"

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

		if req.ModelName == "" {
			http.Error(w, "model_name is required", http.StatusBadRequest)
			return
		}
		if req.Quantity <= 0 {
			http.Error(w, "quantity must be positive", http.StatusBadRequest)
			return
		}

		deadline, err := time.Parse(time.DateOnly, req.Deadline)
		if err != nil {
			http.Error(w, "deadline must be a date (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := orders.CreateOrder(ctx, storage.NewOrder{
			ModelName: req.ModelName,
			Quantity:  req.Quantity,
			Deadline:  deadline,
		})
		if err != nil {
			if errors.Is(err, storage.ErrModelNotFound) {
				http.Error(w, "unknown model", http.StatusNotFound)
				return
			}
			log.Error("failed to create order", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Error: "failed to create order"})
			return
		}

		render.JSON(w, r, Response{
			ID:     id,
			Status: strconv.Itoa(http.StatusOK),
		})
	}
}
