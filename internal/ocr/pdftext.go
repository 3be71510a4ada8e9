package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeText extracts the text embedded in a PDF without OCR.
// pdftotext does the work when present; otherwise the pure-Go reader is used
// so a missing binary degrades instead of aborting. An empty result is an
// error: callers must never mistake silence for success.
func (t *Toolkit) NativeText(ctx context.Context, path string) (string, error) {
	out, errb, err := t.runner.Run(ctx, t.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if isToolMissing(err) {
			t.logger.Warn("pdftotext unavailable, using embedded reader", "path", path)
			txt, ferr := nativeTextFallback(path)
			if ferr != nil {
				return "", fmt.Errorf("native text extraction: %w", ferr)
			}
			if strings.TrimSpace(txt) == "" {
				return "", fmt.Errorf("native text extraction: document yielded no text")
			}
			return txt, nil
		}
		return "", fmt.Errorf("pdftotext: %w (%s)", err, truncate(string(errb), 512))
	}
	text := string(out)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("native text extraction: document yielded no text")
	}
	return text, nil
}

// nativeTextFallback reads embedded text with ledongthuc/pdf, page by page.
func nativeTextFallback(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip unreadable pages
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\f\n")
		}
		text.WriteString(pageText)
	}
	return text.String(), nil
}

// isToolMissing reports whether a runner error means the binary is absent
// rather than the invocation having failed.
func isToolMissing(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
