package workspace

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/parser"
)

const mb = 1024 * 1024

// Upload is one named input before parsing.
type Upload struct {
	Name string
	Data []byte
}

// Limits bounds what may enter a workspace or a batch.
type Limits struct {
	MaxFileBytes  int64
	MaxBatchBytes int64
	MaxFiles      int
	// Extensions allowed; empty means parser.SupportedExtensions.
	Extensions map[string]bool
}

// DefaultLimits mirrors the configuration defaults: 50 MB per file, 100 MB
// per batch, 50 files.
func DefaultLimits() Limits {
	return Limits{
		MaxFileBytes:  50 * mb,
		MaxBatchBytes: 100 * mb,
		MaxFiles:      50,
	}
}

// LimitsFromMB builds Limits from megabyte figures.
func LimitsFromMB(maxFileMB, maxBatchMB, maxFiles int) Limits {
	return Limits{
		MaxFileBytes:  int64(maxFileMB) * mb,
		MaxBatchBytes: int64(maxBatchMB) * mb,
		MaxFiles:      maxFiles,
	}
}

// Check validates uploads against the limits. Failures are ValidationErrors
// wrapping document.ErrLimitExceeded for size and count violations.
func (l Limits) Check(uploads []Upload) error {
	if l.MaxFiles > 0 && len(uploads) > l.MaxFiles {
		return limitError("%d files exceeds the limit of %d files", len(uploads), l.MaxFiles)
	}

	allowed := l.Extensions
	if len(allowed) == 0 {
		allowed = parser.SupportedExtensions
	}

	var total int64
	for _, u := range uploads {
		total += int64(len(u.Data))
	}
	if l.MaxBatchBytes > 0 && total > l.MaxBatchBytes {
		return limitError("batch size exceeds limit of %s", formatMB(l.MaxBatchBytes))
	}

	for _, u := range uploads {
		ext := document.FormatOf(u.Name)
		if !allowed[ext] {
			return document.ValidationErrorf("upload", "invalid file type for %s; allowed: %s", u.Name, extensionList(allowed))
		}
		if l.MaxFileBytes > 0 && int64(len(u.Data)) > l.MaxFileBytes {
			return limitError("%s exceeds per-file limit of %s", u.Name, formatMB(l.MaxFileBytes))
		}
	}
	return nil
}

func limitError(format string, args ...any) error {
	return &document.Error{
		Kind: document.KindValidation,
		Op:   "upload",
		Msg:  fmt.Sprintf(format, args...),
		Err:  document.ErrLimitExceeded,
	}
}

func formatMB(n int64) string {
	if n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}

func extensionList(allowed map[string]bool) string {
	var out []string
	for ext, ok := range allowed {
		if ok {
			out = append(out, ext)
		}
	}
	slices.Sort(out)
	return strings.Join(out, ", ")
}
