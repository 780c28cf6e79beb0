package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
)

const defaultModel = "gemini-2.5-flash"

const systemInstruction = `You are the prompt engine of "Ultimate Gen", a wallpaper studio.
You turn short user requests into English prompts for a text-to-image renderer.
Never answer in any language other than English and never add commentary.`

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	Model      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client calls the generateContent REST endpoint directly.
type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		model:      model,
		httpClient: opts.HTTPClient,
		logger:     logger,
	}
}

func (c *Client) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return "", errors.New("instruction is empty")
	}

	config := generationConfig{Temperature: req.Temperature}
	if req.JSON {
		config.ResponseMimeType = "application/json"
	}

	payload := generateContentRequest{
		Contents:          []content{{Role: "user", Parts: buildParts(instruction, req.Images)}},
		SystemInstruction: &content{Role: "user", Parts: []part{{Text: systemInstruction}}},
		GenerationConfig:  config,
	}

	resp, err := c.generateContent(ctx, c.model, payload)
	if err != nil {
		return "", err
	}

	c.logger.DebugContext(ctx, "gemini text generated", "model", c.model, "chars", len(resp.Text))
	return resp.Text, nil
}

func buildParts(instruction string, images []ImageInput) []part {
	parts := []part{{Text: instruction}}
	for _, img := range images {
		data := stripDataURLPrefix(img.DataBase64)
		if data == "" {
			continue
		}
		mimeType := img.MimeType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, part{InlineData: &blob{Data: data, MimeType: mimeType}})
	}
	return parts
}

type response struct {
	Text string
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (response, error) {
	if c.httpClient == nil {
		return response{}, errors.New("http client is nil")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return response{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return response{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return response{}, &APIError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       strings.TrimSpace(string(rawBody)),
		}
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}

	return response{Text: extractText(decoded)}, nil
}

// extractText joins the non-thought text parts of the first candidate.
func extractText(resp generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

type generateContentRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	Thought    bool   `json:"thought,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

var dataURLRegex = regexp.MustCompile(`^data:([^;]+);base64,`)

// ImageFromDataURL turns a "data:<mime>;base64,<payload>" string (or bare base64) into an ImageInput.
func ImageFromDataURL(dataURL string, fallbackMime string) (ImageInput, bool) {
	dataURL = strings.TrimSpace(dataURL)
	if dataURL == "" {
		return ImageInput{}, false
	}

	mime := fallbackMime
	if matches := dataURLRegex.FindStringSubmatch(dataURL); len(matches) == 2 {
		mime = matches[1]
	}

	data := stripDataURLPrefix(dataURL)
	if data == "" {
		return ImageInput{}, false
	}

	return ImageInput{
		DataBase64: data,
		MimeType:   mime,
	}, true
}

func stripDataURLPrefix(value string) string {
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		return value[idx+1:]
	}
	return value
}
