package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phrazzld/annotate-api/internal/api"
	apiMiddleware "github.com/phrazzld/annotate-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// No request timeout middleware: generation streams stay open until the task ends.
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	if app.config.Metrics.Enabled {
		r.Use(app.httpMetrics.Middleware)
	}

	annotationHandler := api.NewAnnotationHandler(app.annotationService, app.logger)
	labelHandler := api.NewLabelHandler(app.labelService, app.statsService, app.logger)
	generationHandler := api.NewGenerationHandler(app.generationService, app.annotationService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/annotations", func(r chi.Router) {
			r.Post("/", annotationHandler.Create)
			r.Post("/search", annotationHandler.Search)
			r.Post("/bulk-label", annotationHandler.BulkLabel)
			r.Post("/bulk-update-labels", annotationHandler.BulkUpdateLabels)
			r.Post("/import-texts", annotationHandler.ImportTexts)
			r.Get("/{id}", annotationHandler.Get)
			r.Put("/{id}", annotationHandler.UpdateLabels)
			r.Delete("/{id}", annotationHandler.Delete)
		})

		r.Route("/labels", func(r chi.Router) {
			r.Post("/", labelHandler.Create)
			r.Get("/", labelHandler.List)
			r.Get("/{id}", labelHandler.Get)
			r.Put("/{id}", labelHandler.Update)
			r.Delete("/{id}", labelHandler.Delete)
		})

		r.Get("/stats", labelHandler.Stats)
		r.Get("/stats/system", labelHandler.Stats)

		r.Route("/generate", func(r chi.Router) {
			r.Post("/start", generationHandler.Start)
			r.Get("/stream/{taskID}", generationHandler.Stream)
			r.Post("/cancel/{taskID}", generationHandler.Cancel)
			r.Get("/status/{taskID}", generationHandler.Status)
			r.Get("/results/{taskID}", generationHandler.Results)
			r.Post("/results/{taskID}/save", generationHandler.SaveResults)
			r.Get("/tasks", generationHandler.List)
		})
	})

	r.Get("/health", api.Health)

	if app.config.Metrics.Enabled {
		r.Handle("/metrics", promhttp.HandlerFor(app.metricsRegistry, promhttp.HandlerOpts{}))
	}

	return r
}
