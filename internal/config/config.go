package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adhuhaam/laraos-sub001/internal/logger"
)

// Config carries everything the extraction pipeline needs, loaded once from
// the environment at startup. Backend credentials are all optional: a backend
// with no credentials is simply marked unavailable, it is not an error.
type Config struct {
	// Google Cloud (Vision + Document AI backends)
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// OCR.space backend. Multiple API keys are tried in the order given
	// (comma-separated), which is how the free-tier keys are rotated.
	OCRSpaceAPIKeys []string
	OCRSpaceURL     string

	// OpenAI vision backend
	OpenAIAPIKey string
	OpenAIModel  string

	// Local tesseract backend. Off by default because it needs a native
	// tesseract install next to the binary.
	TesseractEnabled bool

	// Pipeline policy
	BackendOrder   []string
	MaxImageBytes  int64
	MaxSuccesses   int
	MinTextLength  int
	PerCallTimeout time.Duration

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// DefaultBackendOrder is the deployment-fixed backend priority. Cloud OCR
// first, LLM vision next, local tesseract as the final resort.
var DefaultBackendOrder = []string{"google-vision", "document-ai", "ocrspace", "openai-vision", "tesseract"}

func Load() (*Config, error) {
	config := &Config{
		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		OCRSpaceAPIKeys:       splitList(getEnv("OCRSPACE_API_KEYS", "")),
		OCRSpaceURL:           getEnv("OCRSPACE_URL", "https://api.ocr.space/parse/image"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		TesseractEnabled:      getEnv("TESSERACT_ENABLED", "false") == "true",
		BackendOrder:          splitList(getEnv("BACKEND_ORDER", "")),
		MaxImageBytes:         int64(getEnvInt("MAX_IMAGE_MB", 10)) * 1024 * 1024,
		MaxSuccesses:          getEnvInt("MAX_SUCCESSFUL_RESULTS", 3),
		MinTextLength:         getEnvInt("MIN_USABLE_TEXT_LENGTH", 20),
		PerCallTimeout:        time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 30)) * time.Second,
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	if len(config.BackendOrder) == 0 {
		config.BackendOrder = DefaultBackendOrder
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_MB must be positive")
	}
	if c.MaxSuccesses <= 0 {
		return fmt.Errorf("MAX_SUCCESSFUL_RESULTS must be positive")
	}
	if c.PerCallTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT_SECONDS must be positive")
	}
	for _, name := range c.BackendOrder {
		if !knownBackend(name) {
			return fmt.Errorf("BACKEND_ORDER contains unknown backend %q", name)
		}
	}
	return nil
}

func knownBackend(name string) bool {
	for _, known := range DefaultBackendOrder {
		if name == known {
			return true
		}
	}
	return false
}

// HasGoogleCredentials reports whether Google Cloud credentials are configured
// in the environment, either as a file path or inline JSON.
func HasGoogleCredentials() bool {
	return os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" || os.Getenv("GOOGLE_CREDENTIALS") != ""
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
