package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sparesledger/internal/config"
	"sparesledger/internal/http/handlers"
	applog "sparesledger/internal/log"
	"sparesledger/internal/repos"
	"sparesledger/internal/services"
	"sparesledger/internal/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		applog.Logger.Fatal().Err(err).Msg("config")
	}

	// Optional file logging
	var extra []io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.Logger.Warn().Err(err).Str("path", cfg.LogFile).Msg("could not open log file")
		} else {
			defer f.Close()
			extra = append(extra, f)
		}
	}
	applog.Init("sparesledger", cfg.Development(), cfg.LogLevel, extra...)
	applog.Logger.Info().
		Str("port", cfg.Port).
		Str("db_dsn", cfg.DBDSN).
		Str("log_file", cfg.LogFile).
		Str("environment", cfg.Environment).
		Str("unit_value", cfg.UnitValue).
		Bool("tracing", cfg.Tracing).
		Msg("config loaded")

	tp := tracing.Init("sparesledger", cfg.Tracing)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		applog.Logger.Fatal().Err(err).Msg("open store")
	}
	defer db.Close()

	deps := handlers.NewDeps(db, cfg, services.WithTracerProvider(tp))
	app := handlers.NewApp(cfg, deps)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			applog.Logger.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	applog.Logger.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		applog.Logger.Error().Err(err).Msg("shutdown")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracing.Shutdown(ctx, tp); err != nil {
		applog.Logger.Error().Err(err).Msg("tracer shutdown")
	}
}
