package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
)

type Config struct {
	TelegramToken string
	GeminiAPIKey  string

	LogLevel string
	Debug    bool

	PreferIPv4 bool

	MediaGroupDebounce time.Duration
	MaxConcurrent      int
	RequestTimeout     time.Duration
	HTTPTimeout        time.Duration

	TextBackend      string
	GeminiBaseURL    string
	GeminiAPIVersion string
	GeminiModel      string

	ImageBaseURL string
	ImageModel   string

	// StyleCatalog is the raw comma separated list; empty selects the default catalog.
	StyleCatalog        string
	ReservedScripts     []string
	MaxVariations       int
	MaxParallelBranches int

	WebAddr string
}

// Load reads the environment shared by both binaries. GEMINI_API_KEY is required;
// the bot additionally calls RequireTelegram.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:            strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:               getEnvBool("DEBUG", false),
		PreferIPv4:          getEnvBool("PREFER_IPV4", true),
		MediaGroupDebounce:  time.Duration(getEnvInt("MEDIA_GROUP_DEBOUNCE_MS", 1200)) * time.Millisecond,
		MaxConcurrent:       getEnvInt("MAX_CONCURRENT", 4),
		RequestTimeout:      time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 180)) * time.Second,
		HTTPTimeout:         time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		TextBackend:         strings.ToLower(getEnv("TEXT_BACKEND", BackendREST)),
		GeminiBaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIVersion:    getEnv("GEMINI_API_VERSION", "v1beta"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ImageBaseURL:        getEnv("IMAGE_BASE_URL", "https://image.pollinations.ai"),
		ImageModel:          getEnv("IMAGE_MODEL", ""),
		StyleCatalog:        getEnv("STYLE_CATALOG", ""),
		ReservedScripts:     splitList(getEnv("RESERVED_SCRIPTS", "Hebrew")),
		MaxVariations:       getEnvInt("MAX_VARIATIONS", 8),
		MaxParallelBranches: getEnvInt("MAX_PARALLEL_BRANCHES", 0),
		WebAddr:             getEnv("WEB_ADDR", ":8080"),
	}

	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))

	if cfg.GeminiAPIKey == "" {
		return Config{}, errors.New("GEMINI_API_KEY is required")
	}
	switch cfg.TextBackend {
	case BackendREST, BackendSDK:
	default:
		return Config{}, fmt.Errorf("TEXT_BACKEND must be %q or %q, got %q", BackendREST, BackendSDK, cfg.TextBackend)
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxVariations < 1 {
		cfg.MaxVariations = 1
	}
	if cfg.MaxParallelBranches < 0 {
		cfg.MaxParallelBranches = 0
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 180 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}

	return cfg, nil
}

func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
