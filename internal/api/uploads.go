package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/pipeline"
	"github.com/dgallion1/pdfsuite/internal/workspace"
)

// formOverhead is the slack allowed on top of the batch limit for multipart framing.
const formOverhead = 1024 * 1024

// readUploads reads every file posted under field and checks them against
// the upload limits.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request, field string) ([]workspace.Upload, error) {
	if s.limits.MaxBatchBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.limits.MaxBatchBytes+formOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &document.Error{
				Kind: document.KindValidation,
				Op:   "upload",
				Msg:  fmt.Sprintf("request exceeds %d bytes", tooLarge.Limit),
				Err:  document.ErrLimitExceeded,
			}
		}
		return nil, document.ValidationErrorf("upload", "invalid multipart form: %v", err)
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, document.ValidationErrorf("upload", "%s is required", field)
	}

	uploads := make([]workspace.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, document.SystemError("upload", "failed to open "+fh.Filename, err)
		}
		// One byte past the per-file limit is enough for Check to reject it.
		var src io.Reader = f
		if s.limits.MaxFileBytes > 0 {
			src = io.LimitReader(f, s.limits.MaxFileBytes+1)
		}
		data, err := io.ReadAll(src)
		f.Close()
		if err != nil {
			return nil, document.SystemError("upload", "failed to read "+fh.Filename, err)
		}
		uploads = append(uploads, workspace.Upload{Name: sanitizeFilename(fh.Filename), Data: data})
	}

	if err := s.limits.Check(uploads); err != nil {
		return nil, err
	}
	return uploads, nil
}

// readUpload reads exactly one file posted as "file".
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (workspace.Upload, error) {
	uploads, err := s.readUploads(w, r, "file")
	if err != nil {
		return workspace.Upload{}, err
	}
	if len(uploads) != 1 {
		return workspace.Upload{}, document.ValidationErrorf("upload", "expected one file, got %d", len(uploads))
	}
	return uploads[0], nil
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send the full client path.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

// sendFile writes a downloadable artifact.
func sendFile(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Content-SHA256", pipeline.ContentHashHex(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
