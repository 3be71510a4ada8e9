package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Document is one uploaded or downloaded file, owned exclusively by the
// invocation that created it. Immutable once built; removed at the end of the
// invocation no matter how it went.
type Document struct {
	Path     string
	MIMEType string
	Name     string // original filename as declared by the client
	Size     int64
}

// Cleanup removes the underlying file. Failures are logged and swallowed:
// cleanup never escalates.
func (d Document) Cleanup(logger *slog.Logger) {
	if d.Path == "" {
		return
	}
	if err := os.Remove(d.Path); err != nil && !os.IsNotExist(err) {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("temp file cleanup failed", "path", d.Path, "error", err)
	}
}

// TempFileName generates a collision-resistant name for the shared upload
// directory: unix-nano timestamp plus a random suffix. Good enough under the
// expected load, not collision-proof against an adversary.
func TempFileName(ext string) string {
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
}
