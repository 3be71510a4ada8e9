package ocr

import (
	"log/slog"
	"time"
)

// Config selects the local tool binaries. Empty names resolve via PATH.
type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string        // default "por"
	Timeout       time.Duration // per-subprocess budget, default 30s
}

// Toolkit wraps the local command-line extraction tools. Every tool is an
// optional capability: callers must be prepared for exec.ErrNotFound.
type Toolkit struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewToolkit(cfg Config, logger *slog.Logger) *Toolkit {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "por"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Toolkit{cfg: cfg, runner: execRunner{timeout: cfg.Timeout}, logger: logger}
}

// WithRunner swaps the subprocess runner. Tests use this to stub tools.
func (t *Toolkit) WithRunner(r Runner) *Toolkit {
	t.runner = r
	return t
}
