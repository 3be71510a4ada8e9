package pipeline

import (
	"fmt"

	"github.com/doni010520/ocr-pdf/internal/common"
)

// Mode selects which extraction strategies the dispatcher may use.
type Mode string

const (
	// ModeSmart picks the cheapest strategy the document supports.
	ModeSmart Mode = "smart"
	// ModeForceOCR always goes through OCR, even for text-bearing PDFs.
	ModeForceOCR Mode = "ocr_only"
	// ModeTextOnly only extracts native text and refuses image-based PDFs.
	ModeTextOnly Mode = "text_only"
)

// ParseMode maps the wire selector string to a Mode. Empty means smart.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeSmart):
		return ModeSmart, nil
	case string(ModeForceOCR):
		return ModeForceOCR, nil
	case string(ModeTextOnly):
		return ModeTextOnly, nil
	}
	return "", common.NewAppError("BAD_MODE",
		fmt.Sprintf("unknown extraction mode %q (want smart, ocr_only or text_only)", s),
		common.ErrInvalidInput)
}
