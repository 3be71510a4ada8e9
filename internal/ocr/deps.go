package ocr

import (
	"os/exec"
)

// Capabilities reports which local tools were found at startup.
type Capabilities struct {
	Pdftotext bool
	Pdftoppm  bool
	Tesseract bool
}

// CheckDependencies probes for the local tool binaries and logs what is
// missing. Absence is a degradation, not a startup failure: the pipeline
// still works through the remote OCR service and the embedded PDF reader.
func (t *Toolkit) CheckDependencies() Capabilities {
	caps := Capabilities{
		Pdftotext: lookPathOK(t.cfg.Pdftotext),
		Pdftoppm:  lookPathOK(t.cfg.Pdftoppm),
		Tesseract: lookPathOK(t.cfg.Tesseract),
	}

	report := func(name string, ok bool, hint string) {
		if ok {
			t.logger.Info("dependency found", "tool", name)
		} else {
			t.logger.Warn("dependency missing", "tool", name, "impact", hint)
		}
	}
	report(t.cfg.Pdftotext, caps.Pdftotext, "native PDF text falls back to embedded reader")
	report(t.cfg.Pdftoppm, caps.Pdftoppm, "large image-based PDFs cannot be rasterized")
	report(t.cfg.Tesseract, caps.Tesseract, "no local OCR fallback when the remote service is down")

	return caps
}

func lookPathOK(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
