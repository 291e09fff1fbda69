package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"factory-planner/internal/storage"
)

type Response struct {
	Blocks []*storage.ScheduleBlock `json:"blocks"`
	Status string                   `json:"status"`
	Error  string                   `json:"error,omitempty"`
}

type ScheduleReader interface {
	GetScheduleBlocks(ctx context.Context, orderStatus string) ([]*storage.ScheduleBlock, error)
}

// GetProductionSchedule returns every scheduled block of every order
// currently in production, ordered by order start date and step index.
func GetProductionSchedule(log *slog.Logger, schedule ScheduleReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.schedule.get.GetProductionSchedule"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		blocks, err := schedule.GetScheduleBlocks(ctx, storage.StatusInProduction)
		if err != nil {
			log.Error("failed to load schedule", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Error: "failed to load production schedule"})
			return
		}

		render.JSON(w, r, Response{
			Blocks: blocks,
			Status: strconv.Itoa(http.StatusOK),
		})
	}
}
