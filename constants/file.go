package constants

import "strings"

// Format is the coarse input format the pipeline distinguishes.
type Format string

const (
	PDF   Format = "PDF"
	IMAGE Format = "IMAGE"
)

// AllowedExtensions holds the file extensions accepted for processing.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
}

// MIMEPDF is the declared MIME type that routes a document through PDF analysis.
const MIMEPDF = "application/pdf"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a Format, or "" when unsupported.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "gif", "bmp":
		return IMAGE
	}
	return ""
}

// MapExtToMIME maps a normalized extension to its declared MIME type.
func MapExtToMIME(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return MIMEPDF
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	}
	return "application/octet-stream"
}

// IsImageMIME reports whether a declared MIME type is an image the OCR
// service accepts directly.
func IsImageMIME(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}
