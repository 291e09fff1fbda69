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

type TemplateDeleter interface {
	DeleteStepTemplate(ctx context.Context, id int64) error
}

func DeleteStepTemplateAdmin(log *slog.Logger, catalog TemplateDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.delete.DeleteStepTemplateAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid template id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := catalog.DeleteStepTemplate(ctx, id); err != nil {
			if errors.Is(err, storage.ErrModelNotFound) {
				http.Error(w, "step template not found", http.StatusNotFound)
				return
			}
			log.Error("failed to delete step template", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Error: "failed to delete step template"})
			return
		}

		render.JSON(w, r, Response{Status: strconv.Itoa(http.StatusOK)})
	}
}
