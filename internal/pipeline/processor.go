// Package pipeline is the decision core: given a document and a mode it picks
// an extraction strategy, runs the fallback chains, and hands the text to the
// structured extractor.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/doni010520/ocr-pdf/constants"
	"github.com/doni010520/ocr-pdf/internal/common"
	"github.com/doni010520/ocr-pdf/internal/extract"
	"github.com/doni010520/ocr-pdf/internal/ocr"
	"github.com/doni010520/ocr-pdf/internal/ocrspace"
)

// Toolkit is the local-tool surface the dispatcher needs. *ocr.Toolkit
// satisfies it; tests stub it.
type Toolkit interface {
	AnalyzePDF(ctx context.Context, path string) ocr.Analysis
	NativeText(ctx context.Context, path string) (string, error)
	Rasterize(ctx context.Context, pdfPath string, targetKB int64) (string, error)
	LocalOCR(ctx context.Context, imagePath string) (string, error)
	HasLocalOCR() bool
}

// Recognizer is the remote OCR capability. *ocrspace.Client satisfies it.
type Recognizer interface {
	Recognize(ctx context.Context, payload []byte, filename string, isImage bool) (string, error)
}

// Result is everything one invocation produced.
type Result struct {
	Document Document
	Mode     Mode

	PDFHasText bool
	UsedOCR    bool
	Rasterized bool

	RawText     string
	Fields      extract.Fields
	ProcessedAt time.Time
}

// Processor coordinates analysis, strategy selection, text extraction and
// structured extraction for one document at a time. It holds no per-request
// state and is safe for concurrent use.
type Processor struct {
	tools  Toolkit
	remote Recognizer
	logger *slog.Logger
}

func NewProcessor(tools Toolkit, remote Recognizer, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{tools: tools, remote: remote, logger: logger}
}

// Process runs the whole pipeline. The caller owns doc and its cleanup.
func (p *Processor) Process(ctx context.Context, doc Document, mode Mode) (*Result, error) {
	start := time.Now()
	res := &Result{Document: doc, Mode: mode, ProcessedAt: start}

	if err := p.extractText(ctx, doc, mode, res); err != nil {
		p.logger.Error("pipeline.extract.failed",
			"file", doc.Name, "mode", mode, "err", err)
		return nil, err
	}

	res.Fields = extract.Extract(res.RawText)

	p.logger.Info("pipeline.ok",
		"file", doc.Name,
		"mode", mode,
		"used_ocr", res.UsedOCR,
		"rasterized", res.Rasterized,
		"document_type", res.Fields.Label(),
		"confidence", res.Fields.Quality.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// extractText is the strategy state machine. It fills the RawText and the
// processing flags on res, or returns an error wrapping the deepest failure.
func (p *Processor) extractText(ctx context.Context, doc Document, mode Mode, res *Result) error {
	if doc.MIMEType != constants.MIMEPDF {
		// Images skip analysis entirely and go straight to OCR.
		res.UsedOCR = true
		text, err := p.submit(ctx, doc.Path, doc.Name, true)
		if err != nil {
			return fmt.Errorf("image ocr: %w", err)
		}
		res.RawText = text
		return nil
	}

	analysis := p.tools.AnalyzePDF(ctx, doc.Path)
	res.PDFHasText = analysis.HasText

	switch mode {
	case ModeTextOnly:
		if !analysis.HasText {
			return common.NewAppError("NO_NATIVE_TEXT",
				"document has no extractable text", common.ErrUnsupportedInput)
		}
		text, err := p.tools.NativeText(ctx, doc.Path)
		if err != nil {
			return fmt.Errorf("native extraction: %w", err)
		}
		res.RawText = text
		return nil

	case ModeForceOCR:
		return p.ocrPDF(ctx, doc, analysis, res)

	default: // ModeSmart
		if analysis.HasText {
			text, err := p.tools.NativeText(ctx, doc.Path)
			if err != nil {
				return fmt.Errorf("native extraction: %w", err)
			}
			res.RawText = text
			return nil
		}
		return p.ocrPDF(ctx, doc, analysis, res)
	}
}

// ocrPDF submits a PDF for OCR, rasterizing first when it is too large for
// direct submission.
func (p *Processor) ocrPDF(ctx context.Context, doc Document, analysis ocr.Analysis, res *Result) error {
	res.UsedOCR = true

	if analysis.SizeBytes <= ocr.RasterizeSizeBytes {
		text, err := p.submit(ctx, doc.Path, doc.Name, false)
		if err != nil {
			return fmt.Errorf("pdf ocr: %w", err)
		}
		res.RawText = text
		return nil
	}

	imgPath, err := p.tools.Rasterize(ctx, doc.Path, ocr.TargetImageKB)
	if err != nil {
		return fmt.Errorf("rasterize before ocr: %w", err)
	}
	res.Rasterized = true
	// The raster is scoped to this invocation: remove it whatever happens.
	defer func() {
		if rmErr := os.Remove(imgPath); rmErr != nil && !os.IsNotExist(rmErr) {
			p.logger.Warn("raster cleanup failed", "path", imgPath, "error", rmErr)
		}
	}()

	text, err := p.submit(ctx, imgPath, doc.Name, true)
	if err != nil {
		return fmt.Errorf("image ocr: %w", err)
	}
	res.RawText = text
	return nil
}

// submit sends a payload to the remote OCR service. When the service cannot
// be reached and the payload is an image, one local tesseract attempt runs
// before the failure surfaces.
func (p *Processor) submit(ctx context.Context, path, filename string, isImage bool) (string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}

	text, err := p.remote.Recognize(ctx, payload, filename, isImage)
	if err == nil {
		return text, nil
	}

	var te *ocrspace.TransportError
	if errors.As(err, &te) && isImage && p.tools.HasLocalOCR() {
		p.logger.Warn("remote ocr unreachable, trying local tesseract",
			"path", path, "error", err)
		local, lerr := p.tools.LocalOCR(ctx, path)
		if lerr == nil {
			return local, nil
		}
		p.logger.Warn("local ocr fallback failed", "path", path, "error", lerr)
	}
	return "", err
}
