// Package studio orchestrates one wallpaper request: it picks a prompt strategy,
// gates the prompts and maps them to renderer URLs.
package studio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"ultimate-gen/internal/render"
	"ultimate-gen/internal/script"
	"ultimate-gen/internal/strategy"
)

const DefaultMaxVariations = 8

type Options struct {
	// APIKey is only checked for presence; the text generator carries its own copy.
	APIKey string

	Creative strategy.Strategy
	Styles   strategy.Strategy
	// Catalog names the style labels in the summary. When empty it is taken
	// from Styles if that exposes one, else the default catalog.
	Catalog     strategy.Catalog
	Synthesizer *render.Synthesizer
	Detector    script.Detector

	MaxVariations int
	Logger        *slog.Logger
}

// Studio is safe for concurrent use.
type Studio struct {
	apiKey        string
	creative      strategy.Strategy
	styles        strategy.Strategy
	catalog       strategy.Catalog
	synth         *render.Synthesizer
	detector      script.Detector
	maxVariations int
	logger        *slog.Logger
}

func New(opts Options) *Studio {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	catalog := opts.Catalog
	if catalog.Len() == 0 {
		if c, ok := opts.Styles.(interface{ Catalog() strategy.Catalog }); ok {
			catalog = c.Catalog()
		}
	}
	if catalog.Len() == 0 {
		catalog = strategy.DefaultCatalog()
	}
	synth := opts.Synthesizer
	if synth == nil {
		synth = render.New(render.Options{})
	}
	maxVariations := opts.MaxVariations
	if maxVariations <= 0 {
		maxVariations = DefaultMaxVariations
	}
	return &Studio{
		apiKey:        strings.TrimSpace(opts.APIKey),
		creative:      opts.Creative,
		styles:        opts.Styles,
		catalog:       catalog,
		synth:         synth,
		detector:      opts.Detector,
		maxVariations: maxVariations,
		logger:        logger,
	}
}

func (s *Studio) Catalog() strategy.Catalog {
	return s.catalog
}

func (s *Studio) MaxVariations() int {
	return s.maxVariations
}

func (s *Studio) Generate(ctx context.Context, req Request) (Result, error) {
	if s.apiKey == "" {
		return Result{}, ErrMissingCredential
	}
	req, err := s.normalize(req)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	res := render.ResolutionFor(string(req.AspectRatio))

	strat := s.creative
	if req.Mode == ModeStyles {
		strat = s.styles
	}
	if strat == nil {
		return Result{}, fmt.Errorf("%w: no %s strategy configured", ErrGenerationFailed, req.Mode)
	}

	prompts, err := strat.Prompts(ctx, strategy.Brief{
		Subject:   req.Subject,
		Count:     req.Count,
		Reference: req.Reference,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "prompt strategy failed", "mode", req.Mode, "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if len(prompts) != req.Count {
		return Result{}, fmt.Errorf("%w: %s strategy returned %d prompts, want %d",
			ErrGenerationFailed, req.Mode, len(prompts), req.Count)
	}

	gated := 0
	images := make([]string, len(prompts))
	for i, p := range prompts {
		if strings.TrimSpace(p) == "" || s.detector.Contains(p) {
			s.logger.ErrorContext(ctx, "strategy leaked an unusable prompt",
				"mode", req.Mode, "index", i, "script", s.detector.Name())
			p = strategy.GenericFallback(req.Subject, s.detector)
			prompts[i] = p
			gated++
		}
		images[i] = s.synth.URL(p, res)
	}

	result := Result{
		Images:  images,
		Text:    s.summary(req, len(images)),
		Prompts: prompts,
	}

	s.logger.InfoContext(ctx, "generation complete",
		"mode", req.Mode,
		"aspect_ratio", req.AspectRatio,
		"count", len(images),
		"editing", req.Reference != nil,
		"gated", gated,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (s *Studio) summary(req Request, n int) string {
	if req.Mode == ModeStyles {
		return fmt.Sprintf("I've generated %d distinct styles (translated & created): %s.",
			n, strings.Join(s.catalog.Labels(), ", "))
	}
	if n == 1 {
		if req.Reference != nil {
			return "Here is your reworked wallpaper."
		}
		return "Here is your wallpaper."
	}
	return fmt.Sprintf("I've created %d variations based on your request.", n)
}

