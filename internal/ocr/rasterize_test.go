package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// rasterStub simulates pdftoppm: each invocation writes the expected output
// file with the next size from the script, in KB.
type rasterStub struct {
	t       *testing.T
	sizesKB []int

	dpis []int
	call int
}

func (r *rasterStub) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.t.Helper()
	if name != "pdftoppm" {
		r.t.Fatalf("unexpected binary %q", name)
	}
	dpi, err := strconv.Atoi(args[2])
	if err != nil {
		r.t.Fatalf("args[2] = %q, want a DPI value (args: %v)", args[2], args)
	}
	r.dpis = append(r.dpis, dpi)

	if r.call >= len(r.sizesKB) {
		r.t.Fatalf("pdftoppm invoked %d times, scripted for %d", r.call+1, len(r.sizesKB))
	}
	prefix := args[len(args)-1]
	out := make([]byte, r.sizesKB[r.call]*1024)
	if err := os.WriteFile(prefix+".jpg", out, 0o644); err != nil {
		r.t.Fatal(err)
	}
	r.call++
	return nil, nil, nil
}

func TestRasterizeStopsWhenUnderTarget(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")

	stub := &rasterStub{t: t, sizesKB: []int{1200, 1100, 950, 800}}
	tk := testToolkit(t, stub)

	out, err := tk.Rasterize(context.Background(), pdfPath, TargetImageKB)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if want := filepath.Join(dir, "doc.jpg"); out != want {
		t.Errorf("Rasterize() = %q, want %q", out, want)
	}

	wantDPIs := []int{200, 150, 120, 100}
	if len(stub.dpis) != len(wantDPIs) {
		t.Fatalf("tried DPIs %v, want %v", stub.dpis, wantDPIs)
	}
	for i, dpi := range wantDPIs {
		if stub.dpis[i] != dpi {
			t.Errorf("dpis[%d] = %d, want %d", i, stub.dpis[i], dpi)
		}
	}
}

func TestRasterizeFirstRungFits(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")

	stub := &rasterStub{t: t, sizesKB: []int{400}}
	tk := testToolkit(t, stub)

	if _, err := tk.Rasterize(context.Background(), pdfPath, TargetImageKB); err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if len(stub.dpis) != 1 || stub.dpis[0] != 200 {
		t.Errorf("tried DPIs %v, want [200]", stub.dpis)
	}
}

func TestRasterizeExhaustedLadderKeepsResult(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")

	// Every rung over budget: the whole ladder runs, recompression fails on
	// the fake payload, and the oversized raster is returned anyway.
	stub := &rasterStub{t: t, sizesKB: []int{1500, 1400, 1300, 1200, 1100}}
	tk := testToolkit(t, stub)

	out, err := tk.Rasterize(context.Background(), pdfPath, TargetImageKB)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if len(stub.dpis) != len(RasterLadder) {
		t.Errorf("tried %d DPIs, want the full ladder of %d", len(stub.dpis), len(RasterLadder))
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("returned raster %q does not exist: %v", out, err)
	}
}

func TestRasterizeToolFailure(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"pdftoppm": errors.New("exit status 99")}}
	tk := testToolkit(t, runner)

	_, err := tk.Rasterize(context.Background(), "doc.pdf", TargetImageKB)

	var ce *ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("Rasterize() error = %v, want *ConversionError", err)
	}
	if ce.Path != "doc.pdf" {
		t.Errorf("ConversionError.Path = %q, want doc.pdf", ce.Path)
	}
}

func TestRasterizeNoOutputIsConversionError(t *testing.T) {
	// pdftoppm "succeeds" but writes nothing.
	runner := &fakeRunner{}
	tk := testToolkit(t, runner)

	_, err := tk.Rasterize(context.Background(), filepath.Join(t.TempDir(), "doc.pdf"), TargetImageKB)

	var ce *ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("Rasterize() error = %v, want *ConversionError", err)
	}
}
