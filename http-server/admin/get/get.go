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

type ResponseModels struct {
	Models []*storage.Model `json:"models"`
	Status string           `json:"status"`
	Error  string           `json:"error,omitempty"`
}

type ResponseModel struct {
	Model  *storage.Model `json:"model"`
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
}

type ResponseMachines struct {
	Machines []*storage.Machine `json:"machines"`
	Status   string             `json:"status"`
	Error    string             `json:"error,omitempty"`
}

type ResponseUsers struct {
	Users  []*storage.User `json:"users"`
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
}

type CatalogReader interface {
	GetAllModels(ctx context.Context) ([]*storage.Model, error)
	GetModelWithSteps(ctx context.Context, name string) (*storage.Model, error)
	GetMachines(ctx context.Context) ([]*storage.Machine, error)
	GetUsers(ctx context.Context) ([]*storage.User, error)
}

func GetAllModelsAdmin(log *slog.Logger, catalog CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.get.GetAllModelsAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		models, err := catalog.GetAllModels(ctx)
		if err != nil {
			log.Error("failed to list models", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseModels{Error: "failed to list models"})
			return
		}

		render.JSON(w, r, ResponseModels{Models: models, Status: strconv.Itoa(http.StatusOK)})
	}
}

func GetModelAdmin(log *slog.Logger, catalog CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.get.GetModelAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		name := chi.URLParam(r, "name")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		model, err := catalog.GetModelWithSteps(ctx, name)
		if err != nil {
			if errors.Is(err, storage.ErrModelNotFound) {
				http.Error(w, "model not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load model", slog.String("error", err.Error()))
			http.Error(w, "failed to load model", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, ResponseModel{Model: model, Status: strconv.Itoa(http.StatusOK)})
	}
}

func GetMachinesAdmin(log *slog.Logger, catalog CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.get.GetMachinesAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		machines, err := catalog.GetMachines(ctx)
		if err != nil {
			log.Error("failed to list machines", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseMachines{Error: "failed to list machines"})
			return
		}

		render.JSON(w, r, ResponseMachines{Machines: machines, Status: strconv.Itoa(http.StatusOK)})
	}
}

func GetUsersAdmin(log *slog.Logger, catalog CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.admin.get.GetUsersAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		users, err := catalog.GetUsers(ctx)
		if err != nil {
			log.Error("failed to list users", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseUsers{Error: "failed to list users"})
			return
		}

		render.JSON(w, r, ResponseUsers{Users: users, Status: strconv.Itoa(http.StatusOK)})
	}
}
