package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RasterLadder holds the DPI steps tried in order when rendering a PDF page.
var RasterLadder = []int{200, 150, 120, 100, 80}

const (
	// TargetImageKB is the default raster size budget.
	TargetImageKB = 900
	// JPEGQuality is the quality of the final recompression pass.
	JPEGQuality = 70
)

// ConversionError means the PDF could not be rendered to an image: the tool
// is missing or rendering failed outright.
type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("pdf to image conversion failed for %s: %v", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Rasterize renders page 1 of a PDF to a JPEG next to the source file,
// walking the DPI ladder until the output fits targetKB. If even the lowest
// resolution is too large, one lossy recompression pass runs and the result
// is returned regardless of size. The caller owns the returned file.
func (t *Toolkit) Rasterize(ctx context.Context, pdfPath string, targetKB int64) (string, error) {
	if targetKB <= 0 {
		targetKB = TargetImageKB
	}
	prefix := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath))
	outPath := prefix + ".jpg"

	for _, dpi := range RasterLadder {
		// pdftoppm -jpeg -r <dpi> -f 1 -l 1 -singlefile <in.pdf> <prefix>
		_, errb, err := t.runner.Run(ctx, t.cfg.Pdftoppm,
			"-jpeg", "-r", strconv.Itoa(dpi), "-f", "1", "-l", "1", "-singlefile",
			pdfPath, prefix)
		if err != nil {
			return "", &ConversionError{Path: pdfPath, Err: fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))}
		}

		fi, err := os.Stat(outPath)
		if err != nil {
			return "", &ConversionError{Path: pdfPath, Err: fmt.Errorf("pdftoppm produced no output: %w", err)}
		}
		sizeKB := fi.Size() / 1024
		t.logger.Info("pdf page rasterized", "path", pdfPath, "dpi", dpi, "size_kb", sizeKB)
		if sizeKB <= targetKB {
			return outPath, nil
		}
	}

	// Lowest rung still too big: recompress once and accept whatever comes out.
	if err := recompressJPEG(outPath, JPEGQuality); err != nil {
		t.logger.Warn("jpeg recompression failed, keeping oversized raster", "path", outPath, "error", err)
	}
	return outPath, nil
}

// recompressJPEG re-encodes a JPEG file in place at the given quality.
func recompressJPEG(path string, quality int) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode jpeg: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
