// Package web exposes the wallpaper studio over a small JSON API.
package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"ultimate-gen/internal/gemini"
	"ultimate-gen/internal/strategy"
	"ultimate-gen/internal/studio"
)

const defaultMaxUploadBytes = 25 << 20

// Generator is the part of *studio.Studio the API needs.
type Generator interface {
	Generate(ctx context.Context, req studio.Request) (studio.Result, error)
	Catalog() strategy.Catalog
}

type Options struct {
	Studio         Generator
	Logger         *slog.Logger
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

type Server struct {
	studio         Generator
	logger         *slog.Logger
	validate       *validator.Validate
	requestTimeout time.Duration
	maxUploadBytes int64
}

type wallpaperRequest struct {
	Subject        string `json:"subject" validate:"max=2000"`
	AspectRatio    string `json:"aspect_ratio" validate:"omitempty,oneof=9:16 16:9 1:1 4:3 3:4"`
	Mode           string `json:"mode" validate:"omitempty,oneof=creative styles"`
	Count          int    `json:"count" validate:"gte=0"`
	ReferenceImage string `json:"reference_image" validate:"omitempty,startswith=data:"`
}

type wallpaperResponse struct {
	Images []string `json:"images"`
	Text   string   `json:"text"`
}

type stylesResponse struct {
	Styles []string `json:"styles"`
}

type apiError struct {
	Error string `json:"error"`
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &Server{
		studio:         opts.Studio,
		logger:         logger,
		validate:       validator.New(),
		requestTimeout: opts.RequestTimeout,
		maxUploadBytes: maxUpload,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(withLogging(s.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/wallpapers", s.handleWallpapers)
		r.Get("/styles", s.handleStyles)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stylesResponse{Styles: s.studio.Catalog().Labels()})
}

func (s *Server) handleWallpapers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	req, ref, err := s.decode(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "validation error: " + err.Error()})
		return
	}
	if ref == nil && req.ReferenceImage != "" {
		img, ok := gemini.ImageFromDataURL(req.ReferenceImage, "image/jpeg")
		if !ok {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid reference_image"})
			return
		}
		ref = &img
	}

	ctx := r.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	res, err := s.studio.Generate(ctx, studio.Request{
		Subject:     req.Subject,
		Reference:   ref,
		AspectRatio: studio.AspectRatio(req.AspectRatio),
		Mode:        studio.Mode(req.Mode),
		Count:       req.Count,
	})
	if err != nil {
		status, msg := errorStatus(err)
		s.logger.WarnContext(ctx, "generation request failed",
			"request_id", RequestIDFromContext(ctx), "status", status, "error", err)
		writeJSON(w, status, apiError{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, wallpaperResponse{Images: res.Images, Text: res.Text})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, studio.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, studio.ErrMissingCredential):
		return http.StatusServiceUnavailable, "generation is not configured"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "generation timed out"
	default:
		return http.StatusBadGateway, "generation failed, please retry"
	}
}

// decode accepts a JSON body or a multipart form whose optional "image" part is the reference image.
func (s *Server) decode(r *http.Request) (wallpaperRequest, *gemini.ImageInput, error) {
	var req wallpaperRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, nil, errors.New("invalid request format")
		}
		return req, nil, nil
	}

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		return req, nil, errors.New("invalid multipart form")
	}
	req.Subject = strings.TrimSpace(r.FormValue("subject"))
	req.AspectRatio = strings.TrimSpace(r.FormValue("aspect_ratio"))
	req.Mode = strings.TrimSpace(r.FormValue("mode"))
	if raw := strings.TrimSpace(r.FormValue("count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, nil, errors.New("count must be an integer")
		}
		req.Count = n
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, errors.New("invalid image")
	}
	defer file.Close()

	imgBytes, err := io.ReadAll(file)
	if err != nil || len(imgBytes) == 0 {
		return req, nil, errors.New("failed to read image")
	}

	return req, &gemini.ImageInput{
		DataBase64: base64.StdEncoding.EncodeToString(imgBytes),
		MimeType:   detectMime(header.Header.Get("Content-Type"), imgBytes),
	}, nil
}

func detectMime(declared string, data []byte) string {
	mimeType := strings.TrimSpace(declared)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
		if i := strings.IndexByte(mimeType, ';'); i >= 0 {
			mimeType = strings.TrimSpace(mimeType[:i])
		}
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "image/jpeg"
	}
	return mimeType
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
