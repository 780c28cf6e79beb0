package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

type SDKOptions struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// SDKClient is the google.golang.org/genai backed TextGenerator.
type SDKClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewSDK(ctx context.Context, opts SDKOptions) (*SDKClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is empty")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &SDKClient{client: client, model: model, logger: logger}, nil
}

func (c *SDKClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return "", errors.New("instruction is empty")
	}

	parts := []*genai.Part{genai.NewPartFromText(instruction)}
	for _, img := range req.Images {
		data, err := base64.StdEncoding.DecodeString(stripDataURLPrefix(img.DataBase64))
		if err != nil {
			return "", fmt.Errorf("decode reference image: %w", err)
		}
		mimeType := img.MimeType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}})
	}

	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       &temperature,
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var out strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p == nil || p.Thought {
				continue
			}
			out.WriteString(p.Text)
		}
	}

	c.logger.DebugContext(ctx, "genai text generated", "model", c.model, "chars", out.Len())
	return out.String(), nil
}

var (
	_ TextGenerator = (*Client)(nil)
	_ TextGenerator = (*SDKClient)(nil)
)
