package ocr

import (
	"context"
	"fmt"
	"os/exec"
)

// LocalOCR runs tesseract on an image and returns the recognized text. It is
// the on-box fallback for when the remote OCR service cannot be reached.
func (t *Toolkit) LocalOCR(ctx context.Context, imagePath string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, imagePath, "stdout", "-l", t.cfg.TesseractLang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// HasLocalOCR reports whether the tesseract binary is on PATH.
func (t *Toolkit) HasLocalOCR() bool {
	_, err := exec.LookPath(t.cfg.Tesseract)
	return err == nil
}
