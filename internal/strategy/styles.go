package strategy

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"ultimate-gen/internal/prompt"
	"ultimate-gen/internal/script"
)

const styleTemperature = 0.7

type StylesOptions struct {
	Client   *prompt.Client
	Detector script.Detector
	Catalog  Catalog
	// MaxParallel bounds concurrent branches; 0 runs every branch at once.
	MaxParallel int
	Logger      *slog.Logger
}

// Styles issues one call per catalog label concurrently and always returns Catalog.Len() prompts.
type Styles struct {
	client      *prompt.Client
	detector    script.Detector
	catalog     Catalog
	maxParallel int
	logger      *slog.Logger
}

func NewStyles(opts StylesOptions) *Styles {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	catalog := opts.Catalog
	if catalog.Len() == 0 {
		catalog = DefaultCatalog()
	}
	return &Styles{
		client:      opts.Client,
		detector:    opts.Detector,
		catalog:     catalog,
		maxParallel: opts.MaxParallel,
		logger:      logger,
	}
}

func (s *Styles) Catalog() Catalog {
	return s.catalog
}

// Prompts ignores brief.Count; the catalog size is the count.
func (s *Styles) Prompts(ctx context.Context, brief Brief) ([]string, error) {
	labels := s.catalog.Labels()
	prompts := make([]string, len(labels))

	var eg errgroup.Group
	if s.maxParallel > 0 {
		eg.SetLimit(s.maxParallel)
	}
	for i, label := range labels {
		i := i
		label := label
		eg.Go(func() error {
			prompts[i] = s.branch(ctx, label, brief.Subject)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return prompts, nil
}

// branch never fails: every error path yields the label fallback.
func (s *Styles) branch(ctx context.Context, label string, subject string) (result string) {
	fallback := StyleFallback(label, subject, s.detector)
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "style branch panicked", "style", label, "panic", fmt.Sprint(r))
			result = fallback
		}
	}()

	text, err := s.client.Invoke(ctx, prompt.Call{
		Instruction: prompt.StyleInstruction(subject, label),
		Temperature: styleTemperature,
		Label:       label,
	})
	if err != nil {
		return fallback
	}

	out := prompt.Parse(text)
	var candidate string
	switch out.Kind {
	case prompt.Parsed:
		candidate = out.Prompts[0]
	case prompt.Raw:
		candidate = out.Text
	default:
		s.logger.WarnContext(ctx, "style prompt unparseable", "style", label)
		return fallback
	}

	if s.detector.Contains(candidate) {
		s.logger.WarnContext(ctx, "style prompt discarded for reserved script", "style", label, "script", s.detector.Name())
		return fallback
	}
	return candidate
}
