package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"of-tracker/internal/config"
	"of-tracker/internal/service/analytics"
	"of-tracker/internal/service/export"
	"of-tracker/internal/service/monitor"
	"of-tracker/internal/storage/mysql"
)

func main() {
	cfg := config.MustConfig()

	log, closeLog := setupLogger(cfg.Env, cfg.ErrorLog)
	defer closeLog()

	storage, err := mysql.New(*cfg)
	if err != nil {
		log.Error("failed to open db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	engine := analytics.NewEngine(storage)
	exporter := export.NewService(engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Alerts.Enabled {
		m, err := monitor.New(ctx, log, engine, cfg.Alerts.Schedule)
		if err != nil {
			log.Error("failed to start alert monitor", slog.String("error", err.Error()))
			os.Exit(1)
		}
		m.Start()
		defer m.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, storage, engine, exporter),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop server", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}
