package excel

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type Generator interface {
	GenerateTimeline(ctx context.Context) ([]byte, error)
}

func GenerateTimelineReport(log *slog.Logger, gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.excel.GenerateTimelineReport"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		data, err := gen.GenerateTimeline(ctx)
		if err != nil {
			log.Error("failed to generate report", slog.String("error", err.Error()))
			http.Error(w, "failed to generate report", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="production_timeline.xlsx"`)
		if _, err := w.Write(data); err != nil {
			log.Error("failed to write report", slog.String("error", err.Error()))
		}
	}
}
