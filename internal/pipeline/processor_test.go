package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doni010520/ocr-pdf/internal/common"
	"github.com/doni010520/ocr-pdf/internal/ocr"
	"github.com/doni010520/ocr-pdf/internal/ocrspace"
)

// stubTools scripts the local toolkit. Rasterize writes a real file so the
// dispatcher's read-and-cleanup path is exercised.
type stubTools struct {
	analysis   ocr.Analysis
	nativeText string
	nativeErr  error
	rasterErr  error
	localText  string
	localErr   error
	hasLocal   bool

	analyzeCalls int
	nativeCalls  int
	rasterCalls  int
	localCalls   int
	rasterPath   string
}

func (s *stubTools) AnalyzePDF(_ context.Context, _ string) ocr.Analysis {
	s.analyzeCalls++
	return s.analysis
}

func (s *stubTools) NativeText(_ context.Context, _ string) (string, error) {
	s.nativeCalls++
	return s.nativeText, s.nativeErr
}

func (s *stubTools) Rasterize(_ context.Context, pdfPath string, _ int64) (string, error) {
	s.rasterCalls++
	if s.rasterErr != nil {
		return "", s.rasterErr
	}
	s.rasterPath = strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".jpg"
	if err := os.WriteFile(s.rasterPath, []byte("raster bytes"), 0o644); err != nil {
		return "", err
	}
	return s.rasterPath, nil
}

func (s *stubTools) LocalOCR(_ context.Context, _ string) (string, error) {
	s.localCalls++
	return s.localText, s.localErr
}

func (s *stubTools) HasLocalOCR() bool { return s.hasLocal }

type recognizeCall struct {
	payloadLen int
	filename   string
	isImage    bool
}

type stubRecognizer struct {
	text  string
	err   error
	calls []recognizeCall
}

func (s *stubRecognizer) Recognize(_ context.Context, payload []byte, filename string, isImage bool) (string, error) {
	s.calls = append(s.calls, recognizeCall{payloadLen: len(payload), filename: filename, isImage: isImage})
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDoc(t *testing.T, name string, size int) Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	mime := "application/pdf"
	if filepath.Ext(name) != ".pdf" {
		mime = "image/jpeg"
	}
	return Document{Path: path, MIMEType: mime, Name: name, Size: int64(size)}
}

func TestProcessSmartPrefersNativeText(t *testing.T) {
	tools := &stubTools{
		analysis:   ocr.Analysis{HasText: true, SizeBytes: 100},
		nativeText: "RECIBO no valor de R$ 10,00",
	}
	remote := &stubRecognizer{}
	proc := NewProcessor(tools, remote, testLogger())

	res, err := proc.Process(context.Background(), writeDoc(t, "doc.pdf", 100), ModeSmart)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if res.UsedOCR {
		t.Error("UsedOCR = true, want false")
	}
	if !res.PDFHasText {
		t.Error("PDFHasText = false, want true")
	}
	if res.RawText != tools.nativeText {
		t.Errorf("RawText = %q, want %q", res.RawText, tools.nativeText)
	}
	if len(remote.calls) != 0 {
		t.Errorf("remote OCR called %d times, want 0", len(remote.calls))
	}
	if res.Fields.Quality.Confidence == 0 {
		t.Error("Confidence = 0, want structured extraction to have run")
	}
}

func TestProcessSmallImagePDFGoesDirectToOCR(t *testing.T) {
	tools := &stubTools{
		analysis: ocr.Analysis{HasText: false, NeedsOCR: true, SizeBytes: ocr.RasterizeSizeBytes},
	}
	remote := &stubRecognizer{text: "texto reconhecido"}
	proc := NewProcessor(tools, remote, testLogger())

	res, err := proc.Process(context.Background(), writeDoc(t, "doc.pdf", 64), ModeSmart)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !res.UsedOCR {
		t.Error("UsedOCR = false, want true")
	}
	if res.Rasterized {
		t.Error("Rasterized = true, want false")
	}
	if tools.rasterCalls != 0 {
		t.Errorf("Rasterize called %d times, want 0", tools.rasterCalls)
	}
	if len(remote.calls) != 1 {
		t.Fatalf("remote OCR called %d times, want 1", len(remote.calls))
	}
	if remote.calls[0].isImage {
		t.Error("isImage = true for direct PDF submission, want false")
	}
	if res.RawText != "texto reconhecido" {
		t.Errorf("RawText = %q, want %q", res.RawText, "texto reconhecido")
	}
}

func TestProcessLargePDFRasterizesAndCleansUp(t *testing.T) {
	tools := &stubTools{
		analysis: ocr.Analysis{HasText: false, NeedsOCR: true, ShouldRasterize: true, SizeBytes: ocr.RasterizeSizeBytes + 1},
	}
	remote := &stubRecognizer{text: "texto da imagem"}
	proc := NewProcessor(tools, remote, testLogger())

	res, err := proc.Process(context.Background(), writeDoc(t, "doc.pdf", 64), ModeSmart)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !res.Rasterized {
		t.Error("Rasterized = false, want true")
	}
	if tools.rasterCalls != 1 {
		t.Errorf("Rasterize called %d times, want 1", tools.rasterCalls)
	}
	if len(remote.calls) != 1 || !remote.calls[0].isImage {
		t.Errorf("remote calls = %+v, want one image submission", remote.calls)
	}
	if _, err := os.Stat(tools.rasterPath); !os.IsNotExist(err) {
		t.Errorf("raster %q still exists after processing", tools.rasterPath)
	}
}

func TestProcessRasterCleanupOnOCRFailure(t *testing.T) {
	tools := &stubTools{
		analysis: ocr.Analysis{HasText: false, NeedsOCR: true, ShouldRasterize: true, SizeBytes: ocr.RasterizeSizeBytes + 1},
	}
	remote := &stubRecognizer{err: errors.New("quota exceeded")}
	proc := NewProcessor(tools, remote, testLogger())

	_, err := proc.Process(context.Background(), writeDoc(t, "doc.pdf", 64), ModeSmart)
	if err == nil {
		t.Fatal("Process() error = nil, want OCR failure")
	}
	if _, err := os.Stat(tools.rasterPath); !os.IsNotExist(err) {
		t.Errorf("raster %q still exists after a failed run", tools.rasterPath)
	}
}

func TestProcessForceOCRIgnoresNativeText(t *testing.T) {
	tools := &stubTools{
		analysis:   ocr.Analysis{HasText: true, SizeBytes: 100},
		nativeText: "não deve ser usado",
	}
	remote := &stubRecognizer{text: "texto ocr"}
	proc := NewProcessor(tools, remote, testLogger())

	res, err := proc.Process(context.Background(), writeDoc(t, "doc.pdf", 64), ModeForceOCR)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !res.UsedOCR {
		t.Error("UsedOCR = false, want true")
	}
	if tools.nativeCalls != 0 {
		t.Errorf("NativeText called %d times in ocr_only mode, want 0", tools.nativeCalls)
	}
	if res.RawText != "texto ocr" {
		t.Errorf("RawText = %q, want %q", res.RawText, "texto ocr")
	}
}

func TestProcessTextOnlyRefusesImagePDF(t *testing.T) {
	tools := &stubTools{
		analysis: ocr.Analysis{HasText: false, NeedsOCR: true, SizeBytes: 100},
	}
	remote := &stubRecognizer{}
	proc := NewProcessor(tools, remote, testLogger())

	_, err := proc.Process(context.Background(), writeDoc(t, "doc.pdf", 64), ModeTextOnly)

	if !errors.Is(err, common.ErrUnsupportedInput) {
		t.Fatalf("Process() error = %v, want ErrUnsupportedInput", err)
	}
	if len(remote.calls) != 0 {
		t.Errorf("remote OCR called %d times in text_only mode, want 0", len(remote.calls))
	}
}

func TestProcessImageSkipsAnalysis(t *testing.T) {
	tools := &stubTools{}
	remote := &stubRecognizer{text: "texto da foto"}
	proc := NewProcessor(tools, remote, testLogger())

	res, err := proc.Process(context.Background(), writeDoc(t, "scan.jpg", 64), ModeSmart)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if tools.analyzeCalls != 0 {
		t.Errorf("AnalyzePDF called %d times for an image, want 0", tools.analyzeCalls)
	}
	if !res.UsedOCR {
		t.Error("UsedOCR = false, want true")
	}
	if len(remote.calls) != 1 || !remote.calls[0].isImage {
		t.Errorf("remote calls = %+v, want one image submission", remote.calls)
	}
}

func TestProcessLocalOCRFallbackOnTransportError(t *testing.T) {
	tools := &stubTools{hasLocal: true, localText: "texto local"}
	remote := &stubRecognizer{err: &ocrspace.TransportError{Err: errors.New("connection refused")}}
	proc := NewProcessor(tools, remote, testLogger())

	res, err := proc.Process(context.Background(), writeDoc(t, "scan.jpg", 64), ModeSmart)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if tools.localCalls != 1 {
		t.Errorf("LocalOCR called %d times, want 1", tools.localCalls)
	}
	if res.RawText != "texto local" {
		t.Errorf("RawText = %q, want %q", res.RawText, "texto local")
	}
}

func TestProcessNoLocalFallbackOnServiceError(t *testing.T) {
	tools := &stubTools{hasLocal: true, localText: "texto local"}
	remote := &stubRecognizer{err: &ocrspace.ServiceError{Messages: []string{"file too large"}}}
	proc := NewProcessor(tools, remote, testLogger())

	_, err := proc.Process(context.Background(), writeDoc(t, "scan.jpg", 64), ModeSmart)

	var se *ocrspace.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("Process() error = %v, want *ServiceError", err)
	}
	if tools.localCalls != 0 {
		t.Errorf("LocalOCR called %d times after a service error, want 0", tools.localCalls)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeSmart, false},
		{"smart", ModeSmart, false},
		{"ocr_only", ModeForceOCR, false},
		{"text_only", ModeTextOnly, false},
		{"turbo", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if err != nil && !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("ParseMode(%q) error = %v, want ErrInvalidInput", tt.in, err)
		}
	}
}
