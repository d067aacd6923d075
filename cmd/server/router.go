package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/phrazzld/tasks-api/internal/api"
	apiMiddleware "github.com/phrazzld/tasks-api/internal/api/middleware"
)

// RequestTimeout bounds the handling of a single request.
const RequestTimeout = 30 * time.Second

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{apiMiddleware.TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if limit := app.config.Server.RateLimitPerMinute; limit > 0 {
		r.Use(httprate.LimitByIP(limit, time.Minute))
	}
	r.Use(middleware.Timeout(RequestTimeout))

	errs := api.NewErrorResponder(app.config.Server.Debug)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.resolver, errs.Respond, app.logger)

	healthHandler := api.NewHealthHandler(app.db, version, app.config.Server.Debug, app.logger)
	userHandler := api.NewUserHandler(errs)
	taskHandler := api.NewTaskHandler(app.taskService, errs, app.logger)
	projectHandler := api.NewProjectHandler(app.projectService, errs, app.logger)
	tagHandler := api.NewTagHandler(app.tagService, errs, app.logger)

	r.Get("/health", healthHandler.Health)
	r.Get("/health/db", healthHandler.DatabaseHealth)

	r.Route(app.config.Server.APIPrefix, func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/users/me", userHandler.GetCurrentUser)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Get("/{id}", taskHandler.GetTask)
			r.Patch("/{id}", taskHandler.UpdateTask)
			r.Delete("/{id}", taskHandler.DeleteTask)
			r.Patch("/{id}/complete", taskHandler.ToggleComplete)
			r.Post("/{id}/tags/{tag_id}", taskHandler.AddTag)
			r.Delete("/{id}/tags/{tag_id}", taskHandler.RemoveTag)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.ListProjects)
			r.Post("/", projectHandler.CreateProject)
			r.Get("/{id}", projectHandler.GetProject)
			r.Patch("/{id}", projectHandler.UpdateProject)
			r.Delete("/{id}", projectHandler.DeleteProject)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", tagHandler.ListTags)
			r.Post("/", tagHandler.CreateTag)
			r.Get("/{id}", tagHandler.GetTag)
			r.Patch("/{id}", tagHandler.UpdateTag)
			r.Delete("/{id}", tagHandler.DeleteTag)
		})
	})

	return r
}
