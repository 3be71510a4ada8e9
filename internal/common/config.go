package common

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// DevAPIKey is the development-only OCR.space key the original deployment
// shipped with. It is used only when no key is configured and must not be
// relied on in production.
const DevAPIKey = "K84834179488957"

// Config holds all application configuration.
type Config struct {
	Server Server `toml:"server"`
	OCR    OCR    `toml:"ocr"`
	Tools  Tools  `toml:"tools"`
	Upload Upload `toml:"upload"`
	Fetch  Fetch  `toml:"fetch"`
}

// Server holds the HTTP listener configuration.
type Server struct {
	Addr string `toml:"addr"`
}

// OCR holds the remote OCR service configuration.
type OCR struct {
	APIKey   string        `toml:"api_key"`
	Endpoint string        `toml:"endpoint"`
	Language string        `toml:"language"`
	Timeout  time.Duration `toml:"timeout"`
}

// Tools holds the local extraction tool binaries. Empty values fall back to
// the bare command names resolved via PATH.
type Tools struct {
	Pdftotext     string        `toml:"pdftotext"`
	Pdftoppm      string        `toml:"pdftoppm"`
	Tesseract     string        `toml:"tesseract"`
	TesseractLang string        `toml:"tesseract_lang"`
	Timeout       time.Duration `toml:"timeout"`
}

// Upload holds the temporary upload directory configuration.
type Upload struct {
	Dir      string `toml:"dir"`
	MaxBytes int64  `toml:"max_bytes"`
}

// Fetch bounds the process-by-URL download.
type Fetch struct {
	MaxBytes int64         `toml:"max_bytes"`
	Timeout  time.Duration `toml:"timeout"`
}

// LoadConfig loads configuration from an optional TOML file layered under
// environment variable overrides. path may be empty.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Server: Server{Addr: ":4545"},
		OCR: OCR{
			Endpoint: "https://api.ocr.space/parse/image",
			Language: "por",
			Timeout:  60 * time.Second,
		},
		Tools: Tools{
			TesseractLang: "por",
			Timeout:       30 * time.Second,
		},
		Upload: Upload{
			Dir:      "uploads",
			MaxBytes: 50 << 20,
		},
		Fetch: Fetch{
			MaxBytes: 50 << 20,
			Timeout:  30 * time.Second,
		},
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "decode config file", err)
		}
	}

	cfg.Server.Addr = getEnv("ADDR", cfg.Server.Addr)
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	cfg.OCR.APIKey = getEnv("OCR_SPACE_API_KEY", cfg.OCR.APIKey)
	cfg.OCR.Endpoint = getEnv("OCR_SPACE_ENDPOINT", cfg.OCR.Endpoint)
	cfg.OCR.Language = getEnv("OCR_LANGUAGE", cfg.OCR.Language)
	cfg.OCR.Timeout = getEnvAsDuration("OCR_TIMEOUT", cfg.OCR.Timeout)
	cfg.Tools.Pdftotext = getEnv("PDFTOTEXT_BIN", cfg.Tools.Pdftotext)
	cfg.Tools.Pdftoppm = getEnv("PDFTOPPM_BIN", cfg.Tools.Pdftoppm)
	cfg.Tools.Tesseract = getEnv("TESSERACT_BIN", cfg.Tools.Tesseract)
	cfg.Tools.TesseractLang = getEnv("TESSERACT_LANG", cfg.Tools.TesseractLang)
	cfg.Tools.Timeout = getEnvAsDuration("TOOL_TIMEOUT", cfg.Tools.Timeout)
	cfg.Upload.Dir = getEnv("UPLOAD_DIR", cfg.Upload.Dir)
	cfg.Upload.MaxBytes = getEnvAsInt64("UPLOAD_MAX_BYTES", cfg.Upload.MaxBytes)
	cfg.Fetch.MaxBytes = getEnvAsInt64("FETCH_MAX_BYTES", cfg.Fetch.MaxBytes)
	cfg.Fetch.Timeout = getEnvAsDuration("FETCH_TIMEOUT", cfg.Fetch.Timeout)

	return cfg, nil
}

// APIKeyOrDev returns the configured OCR API key, falling back to the
// development default when nothing is set.
func (c *Config) APIKeyOrDev() string {
	if c.OCR.APIKey != "" {
		return c.OCR.APIKey
	}
	return DevAPIKey
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "server addr is required", ErrInvalidInput)
	}
	if c.OCR.Endpoint == "" {
		return NewAppError("CONFIG_ERROR", "ocr endpoint is required", ErrInvalidInput)
	}
	if c.Upload.Dir == "" {
		return NewAppError("CONFIG_ERROR", "upload dir is required", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
