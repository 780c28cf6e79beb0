package strategy

import (
	"context"
	"io"
	"log/slog"

	"ultimate-gen/internal/prompt"
	"ultimate-gen/internal/script"
)

const creativeTemperature = 0.9

type CreativeOptions struct {
	Client   *prompt.Client
	Detector script.Detector
	Logger   *slog.Logger
}

// Creative asks the model once for Count free-form variations.
type Creative struct {
	client   *prompt.Client
	detector script.Detector
	logger   *slog.Logger
}

func NewCreative(opts CreativeOptions) *Creative {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Creative{client: opts.Client, detector: opts.Detector, logger: logger}
}

func (c *Creative) Prompts(ctx context.Context, brief Brief) ([]string, error) {
	count := brief.Count
	if count < 1 {
		count = 1
	}

	text, err := c.client.Invoke(ctx, prompt.Call{
		Instruction: prompt.CreativeInstruction(brief.Subject, count, brief.Editing()),
		Reference:   brief.Reference,
		Temperature: creativeTemperature,
		JSON:        true,
		Label:       "creative",
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	var candidates []string
	if err == nil {
		candidates = c.candidates(ctx, prompt.Parse(text))
	}

	if len(candidates) == 0 {
		fallback := GenericFallback(brief.Subject, c.detector)
		c.logger.WarnContext(ctx, "creative prompts fell back", "count", count, "err", err)
		return fill(nil, fallback, count), nil
	}

	if len(candidates) < count {
		c.logger.InfoContext(ctx, "creative prompts padded", "returned", len(candidates), "count", count)
	}
	return fill(candidates, candidates[len(candidates)-1], count), nil
}

// candidates drives the parse outcome to a list of usable prompts; empty means fall back.
func (c *Creative) candidates(ctx context.Context, out prompt.Outcome) []string {
	switch out.Kind {
	case prompt.Parsed:
		kept := make([]string, 0, len(out.Prompts))
		for _, p := range out.Prompts {
			if c.detector.Contains(p) {
				continue
			}
			kept = append(kept, p)
		}
		if dropped := len(out.Prompts) - len(kept); dropped > 0 {
			c.logger.WarnContext(ctx, "creative prompts dropped for reserved script", "dropped", dropped, "script", c.detector.Name())
		}
		return kept
	case prompt.Raw:
		if c.detector.Contains(out.Text) {
			c.logger.WarnContext(ctx, "creative raw prompt discarded for reserved script", "script", c.detector.Name())
			return nil
		}
		return []string{out.Text}
	default:
		return nil
	}
}

// fill truncates list to n or pads it with pad.
func fill(list []string, pad string, n int) []string {
	out := make([]string, 0, n)
	for _, p := range list {
		if len(out) == n {
			break
		}
		out = append(out, p)
	}
	for len(out) < n {
		out = append(out, pad)
	}
	return out
}
