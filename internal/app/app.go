// Package app wires configuration into a ready Studio for both binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"ultimate-gen/internal/config"
	"ultimate-gen/internal/gemini"
	"ultimate-gen/internal/prompt"
	"ultimate-gen/internal/render"
	"ultimate-gen/internal/script"
	"ultimate-gen/internal/strategy"
	"ultimate-gen/internal/studio"
)

func NewLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
}

func NewTextGenerator(ctx context.Context, cfg config.Config, httpClient *http.Client, logger *slog.Logger) (gemini.TextGenerator, error) {
	if cfg.TextBackend == config.BackendSDK {
		sdk, err := gemini.NewSDK(ctx, gemini.SDKOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			HTTPClient: httpClient,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return sdk, nil
	}
	return gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		Model:      cfg.GeminiModel,
		HTTPClient: httpClient,
		Logger:     logger,
	}), nil
}

// BuildStudio assembles the prompt strategies and the renderer around gen.
func BuildStudio(cfg config.Config, gen gemini.TextGenerator, logger *slog.Logger) (*studio.Studio, error) {
	detector, err := script.New(cfg.ReservedScripts...)
	if err != nil {
		return nil, fmt.Errorf("RESERVED_SCRIPTS: %w", err)
	}
	catalog, err := strategy.ParseCatalog(cfg.StyleCatalog)
	if err != nil {
		return nil, fmt.Errorf("STYLE_CATALOG: %w", err)
	}

	client := prompt.NewClient(prompt.Options{Generator: gen, Logger: logger})

	return studio.New(studio.Options{
		APIKey: cfg.GeminiAPIKey,
		Creative: strategy.NewCreative(strategy.CreativeOptions{
			Client:   client,
			Detector: detector,
			Logger:   logger,
		}),
		Styles: strategy.NewStyles(strategy.StylesOptions{
			Client:      client,
			Detector:    detector,
			Catalog:     catalog,
			MaxParallel: cfg.MaxParallelBranches,
			Logger:      logger,
		}),
		Catalog: catalog,
		Synthesizer: render.New(render.Options{
			BaseURL: cfg.ImageBaseURL,
			Model:   cfg.ImageModel,
		}),
		Detector:      detector,
		MaxVariations: cfg.MaxVariations,
		Logger:        logger,
	}), nil
}
