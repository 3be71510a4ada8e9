package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRunner stubs subprocess execution. Behavior is keyed by binary name;
// onRun lets a test observe or act on each invocation.
type fakeRunner struct {
	stdout map[string][]byte
	errs   map[string]error
	onRun  func(name string, args []string)

	calls []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	if f.onRun != nil {
		f.onRun(name, args)
	}
	if err := f.errs[name]; err != nil {
		return nil, nil, err
	}
	return f.stdout[name], nil, nil
}

func testToolkit(t *testing.T, r Runner) *Toolkit {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewToolkit(Config{}, logger).WithRunner(r)
}

func writePDFStub(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzePDFTextThreshold(t *testing.T) {
	tests := []struct {
		name        string
		sample      string
		wantHasText bool
	}{
		{"exactly at threshold", strings.Repeat("a", 50), false},
		{"one above threshold", strings.Repeat("a", 51), true},
		{"whitespace does not count", strings.Repeat("a \n", 51), true},
		{"only whitespace", strings.Repeat(" \n\t", 100), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{stdout: map[string][]byte{"pdftotext": []byte(tt.sample)}}
			tk := testToolkit(t, runner)
			path := writePDFStub(t, 100)

			a := tk.AnalyzePDF(context.Background(), path)

			if a.HasText != tt.wantHasText {
				t.Errorf("HasText = %v, want %v", a.HasText, tt.wantHasText)
			}
			if a.NeedsOCR == tt.wantHasText {
				t.Errorf("NeedsOCR = %v, want %v", a.NeedsOCR, !tt.wantHasText)
			}
			if a.Degraded {
				t.Errorf("Degraded = true, want false")
			}
		})
	}
}

func TestAnalyzePDFRasterizeThreshold(t *testing.T) {
	runner := &fakeRunner{stdout: map[string][]byte{"pdftotext": []byte("")}}
	tk := testToolkit(t, runner)

	small := tk.AnalyzePDF(context.Background(), writePDFStub(t, RasterizeSizeBytes))
	if small.ShouldRasterize {
		t.Errorf("ShouldRasterize = true at %d bytes, want false", RasterizeSizeBytes)
	}

	big := tk.AnalyzePDF(context.Background(), writePDFStub(t, RasterizeSizeBytes+1))
	if !big.ShouldRasterize {
		t.Errorf("ShouldRasterize = false at %d bytes, want true", RasterizeSizeBytes+1)
	}
	if !big.NeedsOCR {
		t.Error("NeedsOCR = false for a textless PDF, want true")
	}
}

func TestAnalyzePDFDegradesOnSampleFailure(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"pdftotext": errors.New("exit status 1")}}
	tk := testToolkit(t, runner)

	a := tk.AnalyzePDF(context.Background(), writePDFStub(t, 100))

	if !a.Degraded {
		t.Fatal("Degraded = false, want true")
	}
	if a.HasText || !a.NeedsOCR || !a.ShouldRasterize {
		t.Errorf("degraded verdict = %+v, want the safe OCR defaults", a)
	}
	if a.DegradedReason == "" {
		t.Error("DegradedReason is empty")
	}
}

func TestAnalyzePDFDegradesOnMissingFile(t *testing.T) {
	runner := &fakeRunner{stdout: map[string][]byte{"pdftotext": []byte("irrelevant")}}
	tk := testToolkit(t, runner)

	a := tk.AnalyzePDF(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))

	if !a.Degraded {
		t.Fatal("Degraded = false, want true")
	}
	if len(runner.calls) != 0 {
		t.Errorf("runner invoked %d times for a missing file, want 0", len(runner.calls))
	}
}

func TestAnalyzePDFMissingToolFallsBack(t *testing.T) {
	// The stub file is not a readable PDF, so the embedded reader fails too
	// and the verdict degrades instead of erroring out.
	runner := &fakeRunner{errs: map[string]error{
		"pdftotext": fmt.Errorf("pdftotext: %w", exec.ErrNotFound),
	}}
	tk := testToolkit(t, runner)

	a := tk.AnalyzePDF(context.Background(), writePDFStub(t, 100))

	if !a.Degraded {
		t.Error("Degraded = false, want true")
	}
	if !a.NeedsOCR || !a.ShouldRasterize {
		t.Errorf("degraded verdict = %+v, want the safe OCR defaults", a)
	}
}

func TestNativeText(t *testing.T) {
	runner := &fakeRunner{stdout: map[string][]byte{"pdftotext": []byte("conteúdo nativo")}}
	tk := testToolkit(t, runner)

	text, err := tk.NativeText(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("NativeText() error = %v", err)
	}
	if text != "conteúdo nativo" {
		t.Errorf("NativeText() = %q, want %q", text, "conteúdo nativo")
	}
}

func TestNativeTextEmptyIsError(t *testing.T) {
	runner := &fakeRunner{stdout: map[string][]byte{"pdftotext": []byte("  \n\t ")}}
	tk := testToolkit(t, runner)

	if _, err := tk.NativeText(context.Background(), "doc.pdf"); err == nil {
		t.Error("NativeText() = nil error for blank output, want error")
	}
}

func TestCountNonSpace(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   \n\t", 0},
		{"abc", 3},
		{"a b\nc", 3},
		{"ação", 4},
	}
	for _, tt := range tests {
		if got := countNonSpace(tt.in); got != tt.want {
			t.Errorf("countNonSpace(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
