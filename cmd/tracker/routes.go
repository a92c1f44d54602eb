package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	dashboard "of-tracker/http-server/dashboard/get"
	generate_excel "of-tracker/http-server/generate-report/generate-excel"
	"of-tracker/http-server/health"
	orders "of-tracker/http-server/orders/get"
	"of-tracker/internal/config"
	"of-tracker/internal/middleware/auth"
	"of-tracker/internal/service/analytics"
	"of-tracker/internal/service/export"
)

func routes(cfg config.Config, log *slog.Logger, db health.Pinger, engine *analytics.Engine, exporter *export.Service) http.Handler {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/api/health", health.Health(log, db))

	router.Route("/api/dashboard", func(r chi.Router) {
		r.Get("/overview", dashboard.Overview(log, engine))
		r.Get("/status-analysis", dashboard.StatusAnalysis(log, engine))
		r.Get("/performance-analytics", dashboard.PerformanceAnalytics(log, engine))
		r.Get("/data-source-comparison", dashboard.SourceComparison(log, engine))
		r.Get("/historical-analysis", dashboard.HistoricalAnalysis(log, engine))
		r.Get("/dynamic-statuses", dashboard.DynamicStatuses(log, engine))
	})

	router.Route("/api/orders", func(r chi.Router) {
		r.Get("/", orders.Orders(log, engine))
		r.Get("/current", orders.Current(log, engine))
		r.Get("/history", orders.History(log, engine))
		r.Get("/combined", orders.Combined(log, engine))
		r.Get("/statistics", orders.Statistics(log, engine))
	})

	router.Get("/api/alerts", orders.Alerts(log, engine))

	// выгрузки только под логином из конфига
	exportRouter := chi.NewRouter()
	exportRouter.Use(auth.BasicAuth("Export", cfg.AdminLogin, cfg.AdminPass))
	exportRouter.Get("/excel", generate_excel.GenerateOrdersExcel(log, exporter))

	router.Mount("/api/export", exportRouter)

	return router
}
