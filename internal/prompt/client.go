// Package prompt wraps single translation/enhancement calls to the text model
// and turns their raw output into prompt candidates.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"ultimate-gen/internal/gemini"
)

var (
	ErrInvocation  = errors.New("prompt invocation failed")
	ErrEmptyOutput = errors.New("prompt model returned no text")
)

type Options struct {
	Generator gemini.TextGenerator
	Logger    *slog.Logger
}

// Client performs exactly one text-generation call per Invoke; callers own the fallback.
type Client struct {
	gen    gemini.TextGenerator
	logger *slog.Logger
}

type Call struct {
	Instruction string
	Reference   *gemini.ImageInput
	Temperature float64
	JSON        bool
	// Label names the call in logs, e.g. "creative" or a style label.
	Label string
}

func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{gen: opts.Generator, logger: logger}
}

// Invoke returns the sanitized model text or an error wrapping ErrInvocation.
func (c *Client) Invoke(ctx context.Context, call Call) (string, error) {
	if c == nil || c.gen == nil {
		return "", fmt.Errorf("%w: no text generator configured", ErrInvocation)
	}

	req := gemini.TextRequest{
		Instruction: call.Instruction,
		Temperature: call.Temperature,
		JSON:        call.JSON,
	}
	if call.Reference != nil {
		req.Images = []gemini.ImageInput{*call.Reference}
	}

	start := time.Now()
	raw, err := c.gen.GenerateText(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "prompt call failed", "label", call.Label, "err", err, "dur_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("%w: %w", ErrInvocation, err)
	}

	text := Sanitize(raw)
	if text == "" {
		c.logger.WarnContext(ctx, "prompt call returned empty text", "label", call.Label)
		return "", fmt.Errorf("%w: %w", ErrInvocation, ErrEmptyOutput)
	}

	c.logger.DebugContext(ctx, "prompt call done", "label", call.Label, "chars", len(text), "dur_ms", time.Since(start).Milliseconds())
	return text, nil
}

// Sanitize removes code-fence markers and surrounding whitespace.
func Sanitize(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	for _, marker := range []string{"```json", "```JSON", "```"} {
		text = strings.ReplaceAll(text, marker, "")
	}
	return strings.TrimSpace(text)
}
