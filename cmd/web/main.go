package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ultimate-gen/internal/app"
	"ultimate-gen/internal/config"
	"ultimate-gen/internal/httpclient"
	"ultimate-gen/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := app.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
		UserAgent:  "ultimate-gen-web",
	})

	gen, err := app.NewTextGenerator(ctx, cfg, httpClient, logger)
	if err != nil {
		logger.Error("text backend init failed", "backend", cfg.TextBackend, "err", err)
		os.Exit(1)
	}

	studio, err := app.BuildStudio(cfg, gen, logger)
	if err != nil {
		logger.Error("studio init failed", "err", err)
		os.Exit(1)
	}

	api := web.New(web.Options{
		Studio:         studio,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("web started", "addr", cfg.WebAddr, "backend", cfg.TextBackend, "styles", studio.Catalog().Len())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}
}
