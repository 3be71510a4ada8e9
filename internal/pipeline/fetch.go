package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/doni010520/ocr-pdf/constants"
	"github.com/doni010520/ocr-pdf/internal/common"
)

// Fetcher downloads a remote document into the upload directory so the same
// pipeline can run on it. Downloads are bounded in size and time.
type Fetcher struct {
	Dir      string
	MaxBytes int64
	Timeout  time.Duration

	httpClient *http.Client
}

func NewFetcher(dir string, maxBytes int64, timeout time.Duration) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		Dir:      dir,
		MaxBytes: maxBytes,
		Timeout:  timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads rawURL and returns the scoped Document. The caller owns
// cleanup, exactly as with an uploaded file.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Document, error) {
	if strings.TrimSpace(rawURL) == "" {
		return Document{}, common.NewAppError("NO_URL", "no document URL provided", common.ErrUnsupportedInput)
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Document{}, common.NewAppError("BAD_URL",
			fmt.Sprintf("invalid document URL %q", rawURL), common.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Document{}, fmt.Errorf("build download request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return Document{}, fmt.Errorf("download document: status %d", resp.StatusCode)
	}
	if resp.ContentLength > f.MaxBytes {
		return Document{}, common.NewAppError("TOO_LARGE",
			fmt.Sprintf("document exceeds the %d byte download limit", f.MaxBytes),
			common.ErrInvalidInput)
	}

	name := path.Base(u.Path)
	ext := constants.NormalizeExt(filepath.Ext(name))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		// Fall back to the declared content type.
		switch resp.Header.Get("Content-Type") {
		case constants.MIMEPDF:
			ext = "pdf"
		case "image/jpeg":
			ext = "jpg"
		case "image/png":
			ext = "png"
		default:
			return Document{}, common.NewAppError("BAD_FORMAT",
				fmt.Sprintf("cannot determine a supported format for %q", rawURL),
				common.ErrUnsupportedInput)
		}
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return Document{}, fmt.Errorf("create upload dir: %w", err)
	}
	dst := filepath.Join(f.Dir, TempFileName("."+ext))
	out, err := os.Create(dst)
	if err != nil {
		return Document{}, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(out, io.LimitReader(resp.Body, f.MaxBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return Document{}, fmt.Errorf("write temp file: %w", err)
	}
	if n > f.MaxBytes {
		_ = os.Remove(dst)
		return Document{}, common.NewAppError("TOO_LARGE",
			fmt.Sprintf("document exceeds the %d byte download limit", f.MaxBytes),
			common.ErrInvalidInput)
	}

	if name == "" || name == "/" || name == "." {
		name = filepath.Base(dst)
	}
	return Document{
		Path:     dst,
		MIMEType: constants.MapExtToMIME(ext),
		Name:     name,
		Size:     n,
	}, nil
}
