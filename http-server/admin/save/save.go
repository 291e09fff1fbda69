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

type ModelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type StepRequest struct {
	ModelName        string `json:"model_name"`
	StepOrder        int    `json:"step_order"`
	DurationSeconds  int64  `json:"duration_seconds_per_unit"`
	MachineName      string `json:"machine_name"`
	SemifinishedName string `json:"semifinished_name"`
}

type MachineRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Response struct {
	ID     int64  `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type CatalogWriter interface {
	SaveModel(ctx context.Context, model storage.Model) error
	InsertStepTemplate(ctx context.Context, t storage.StepTemplate) (int64, error)
	SaveMachine(ctx context.Context, m storage.Machine) (int64, error)
}

func SaveModelAdmin(log *slog.Logger, catalog CatalogWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.save.SaveModelAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ModelRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := catalog.SaveModel(ctx, storage.Model{Name: req.Name, Description: req.Description}); err != nil {
			log.Error("failed to save model", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Error: "failed to save model"})
			return
		}

		render.JSON(w, r, Response{Status: strconv.Itoa(http.StatusOK)})
	}
}

// SaveStepTemplateAdmin inserts a template at the requested position;
// later steps are shifted so step orders stay contiguous from 1.
func SaveStepTemplateAdmin(log *slog.Logger, catalog CatalogWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.save.SaveStepTemplateAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req StepRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.ModelName == "" || req.MachineName == "" {
			http.Error(w, "model_name and machine_name are required", http.StatusBadRequest)
			return
		}
		if req.DurationSeconds < 0 {
			http.Error(w, "duration_seconds_per_unit must not be negative", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := catalog.InsertStepTemplate(ctx, storage.StepTemplate{
			ModelName:        req.ModelName,
			StepOrder:        req.StepOrder,
			DurationSeconds:  req.DurationSeconds,
			MachineName:      req.MachineName,
			SemifinishedName: req.SemifinishedName,
		})
		if err != nil {
			if errors.Is(err, storage.ErrModelNotFound) {
				http.Error(w, "model not found", http.StatusNotFound)
				return
			}
			log.Error("failed to save step template", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Error: "failed to save step template"})
			return
		}

		render.JSON(w, r, Response{ID: id, Status: strconv.Itoa(http.StatusOK)})
	}
}

func SaveMachineAdmin(log *slog.Logger, catalog CatalogWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.save.SaveMachineAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req MachineRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := catalog.SaveMachine(ctx, storage.Machine{Name: req.Name, Description: req.Description})
		if err != nil {
			log.Error("failed to save machine", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Error: "failed to save machine"})
			return
		}

		render.JSON(w, r, Response{ID: id, Status: strconv.Itoa(http.StatusOK)})
	}
}
