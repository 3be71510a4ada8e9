package ocr

import (
	"context"
	"os"
	"unicode"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Policy constants for the text-bearing verdict. Heuristic defaults carried
// over from the original deployment.
const (
	// SampleLimit bounds how much native text the analyzer looks at.
	SampleLimit = 1000
	// TextCharThreshold is the minimum count of non-whitespace characters in
	// the sample for a PDF to count as text-bearing.
	TextCharThreshold = 50
	// RasterizeSizeBytes is the size above which an image-based PDF is
	// rendered to a raster image before OCR submission.
	RasterizeSizeBytes = 1 << 20
)

// Analysis is the analyzer's verdict on a PDF. Derived once per document and
// never mutated afterwards.
type Analysis struct {
	HasText         bool
	SampleText      string
	SizeBytes       int64
	PageCount       int
	NeedsOCR        bool
	ShouldRasterize bool

	// Degraded is set when inspection failed and the verdict fell back to
	// the safe defaults (OCR everything, rasterize first).
	Degraded       bool
	DegradedReason string
}

// AnalyzePDF classifies a PDF as text-bearing or image-based. It never fails:
// when inspection errors out the verdict degrades toward the more expensive
// OCR path and records the reason.
func (t *Toolkit) AnalyzePDF(ctx context.Context, path string) Analysis {
	var size int64
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
	} else {
		t.logger.Warn("pdf analysis degraded", "path", path, "error", err)
		return degradedAnalysis(0, "stat: "+err.Error())
	}

	sample, err := t.sampleText(ctx, path)
	if err != nil {
		t.logger.Warn("pdf analysis degraded", "path", path, "size", size, "error", err)
		a := degradedAnalysis(size, "sample: "+err.Error())
		return a
	}

	meaningful := countNonSpace(sample)
	hasText := meaningful > TextCharThreshold

	a := Analysis{
		HasText:         hasText,
		SampleText:      sample,
		SizeBytes:       size,
		NeedsOCR:        !hasText,
		ShouldRasterize: !hasText && size > RasterizeSizeBytes,
	}

	// Page count is informational only; failure does not degrade the verdict.
	if n, err := api.PageCountFile(path); err == nil {
		a.PageCount = n
	} else {
		t.logger.Debug("pdf page count unavailable", "path", path, "error", err)
	}

	t.logger.Info("pdf analyzed",
		"path", path,
		"has_text", a.HasText,
		"needs_ocr", a.NeedsOCR,
		"should_rasterize", a.ShouldRasterize,
		"size_bytes", a.SizeBytes,
		"pages", a.PageCount,
		"sample_chars", meaningful,
	)
	return a
}

// sampleText extracts a bounded prefix of the PDF's native text. pdftotext is
// preferred; when the binary is missing the pure-Go reader takes over.
func (t *Toolkit) sampleText(ctx context.Context, path string) (string, error) {
	out, _, err := t.runner.Run(ctx, t.cfg.Pdftotext, "-l", "1", "-enc", "UTF-8", path, "-")
	if err != nil {
		if isToolMissing(err) {
			txt, ferr := nativeTextFallback(path)
			if ferr != nil {
				return "", ferr
			}
			return truncateRunes(txt, SampleLimit), nil
		}
		return "", err
	}
	return truncateRunes(string(out), SampleLimit), nil
}

func degradedAnalysis(size int64, reason string) Analysis {
	return Analysis{
		HasText:         false,
		SizeBytes:       size,
		NeedsOCR:        true,
		ShouldRasterize: true,
		Degraded:        true,
		DegradedReason:  reason,
	}
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
