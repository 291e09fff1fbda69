package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	admindelete "factory-planner/http-server/admin/delete"
	adminget "factory-planner/http-server/admin/get"
	adminsave "factory-planner/http-server/admin/save"
	adminupdate "factory-planner/http-server/admin/update"
	orderdelete "factory-planner/http-server/orders/delete"
	orderget "factory-planner/http-server/orders/get"
	ordersave "factory-planner/http-server/orders/save"
	"factory-planner/http-server/orders/transition"
	reportexcel "factory-planner/http-server/report/excel"
	scheduleget "factory-planner/http-server/schedule/get"
	"factory-planner/http-server/schedule/revise"
	taskget "factory-planner/http-server/tasks/get"
	"factory-planner/internal/config"
	"factory-planner/internal/middleware/auth"
	"factory-planner/internal/service/lifecycle"
	"factory-planner/internal/service/report"
	"factory-planner/internal/service/revision"
	"factory-planner/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage,
	lifecycleService *lifecycle.Service, revisionService *revision.Service,
	reportService *report.Service) *chi.Mux {

	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Orders
	router.Post("/api/orders", ordersave.CreateOrder(log, storage))
	router.Get("/api/orders", orderget.GetOrders(log, storage))
	router.Get("/api/orders/{id}", orderget.GetOrder(log, storage))
	router.Delete("/api/orders/{id}", orderdelete.DeleteOrder(log, storage))

	// Lifecycle transitions
	router.Post("/api/orders/{id}/start", transition.StartProduction(log, lifecycleService))
	router.Post("/api/orders/{id}/complete", transition.Complete(log, lifecycleService))
	router.Post("/api/orders/{id}/cancel", transition.Cancel(log, lifecycleService))

	// Production schedule
	router.Get("/api/production/schedule", scheduleget.GetProductionSchedule(log, storage))
	router.Post("/api/production/schedule/revisions", revise.ApplyRevisions(log, revisionService))
	router.Get("/api/production/report/excel", reportexcel.GenerateTimelineReport(log, reportService))

	// Employee tasks
	router.Get("/api/tasks", taskget.GetEmployeeTasks(log, storage))

	// Catalog administration
	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Get("/models", adminget.GetAllModelsAdmin(log, storage))
	adminRouter.Get("/models/{name}", adminget.GetModelAdmin(log, storage))
	adminRouter.Post("/models", adminsave.SaveModelAdmin(log, storage))
	adminRouter.Post("/models/steps", adminsave.SaveStepTemplateAdmin(log, storage))
	adminRouter.Put("/models/steps/{id}", adminupdate.UpdateStepTemplateAdmin(log, storage))
	adminRouter.Delete("/models/steps/{id}", admindelete.DeleteStepTemplateAdmin(log, storage))
	adminRouter.Get("/machines", adminget.GetMachinesAdmin(log, storage))
	adminRouter.Post("/machines", adminsave.SaveMachineAdmin(log, storage))
	adminRouter.Get("/users", adminget.GetUsersAdmin(log, storage))

	router.Mount("/api/admin", adminRouter)

	return router
}
