package update

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

type Request struct {
	DurationSeconds  int64  `json:"duration_seconds_per_unit"`
	MachineName      string `json:"machine_name"`
	SemifinishedName string `json:"semifinished_name"`
}

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type TemplateUpdater interface {
	UpdateStepTemplate(ctx context.Context, t storage.StepTemplate) error
}

// UpdateStepTemplateAdmin edits a template in place. Step order is not
// editable here; reordering goes through delete + insert so the
// reindexing stays in one place.
func UpdateStepTemplateAdmin(log *slog.Logger, catalog TemplateUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.update.UpdateStepTemplateAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid template id", http.StatusBadRequest)
			return
		}

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.MachineName == "" {
			http.Error(w, "machine_name is required", http.StatusBadRequest)
			return
		}
		if req.DurationSeconds < 0 {
			http.Error(w, "duration_seconds_per_unit must not be negative", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = catalog.UpdateStepTemplate(ctx, storage.StepTemplate{
			ID:               id,
			DurationSeconds:  req.DurationSeconds,
			MachineName:      req.MachineName,
			SemifinishedName: req.SemifinishedName,
		})
		if err != nil {
			if errors.Is(err, storage.ErrModelNotFound) {
				http.Error(w, "step template not found", http.StatusNotFound)
				return
			}
			log.Error("failed to update step template", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Error: "failed to update step template"})
			return
		}

		render.JSON(w, r, Response{Status: strconv.Itoa(http.StatusOK)})
	}
}
