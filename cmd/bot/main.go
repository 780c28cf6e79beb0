package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ultimate-gen/internal/app"
	"ultimate-gen/internal/config"
	"ultimate-gen/internal/handlers"
	"ultimate-gen/internal/httpclient"
	"ultimate-gen/internal/mediagroup"
	"ultimate-gen/internal/session"
	"ultimate-gen/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		panic(err)
	}

	logger := app.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

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

	sessions := session.NewStore(session.Options{
		IdleTTL: 24 * time.Hour,
	})

	handler := handlers.New(handlers.Options{
		Telegram: tg,
		Studio:   studio,
		Sessions: sessions,
		Logger:   logger,
	})

	sem := make(chan struct{}, cfg.MaxConcurrent)
	onGroupFlush := func(group mediagroup.Group) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		go func() {
			defer func() { <-sem }()

			reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()

			handler.HandleMediaGroup(reqCtx, group)
		}()
	}

	aggregator := mediagroup.New(mediagroup.Options{
		Debounce: cfg.MediaGroupDebounce,
		OnFlush:  onGroupFlush,
	})
	defer aggregator.Stop()
	handler.SetMediaGroupAggregator(aggregator)

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Prune(); n > 0 {
					logger.Debug("pruned idle sessions", "count", n)
				}
			}
		}
	}()

	logger.Info("bot started", "username", tg.Username(), "backend", cfg.TextBackend, "styles", studio.Catalog().Len())

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			go func(update telegram.Update) {
				defer func() { <-sem }()

				reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "err", err)
				}
			}(update)
		}
	}
}
