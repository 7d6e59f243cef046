package pipeline

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/service"
)

// Bundle names per operation.
const (
	BundleName       = "batch_extraction_outputs.zip"
	SearchBundleName = "batch_regex_extract_outputs.zip"
)

// artifactName strips any directory part and unsafe characters.
func artifactName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if strings.TrimSpace(name) == "" {
		return "artifact.pdf"
	}
	return service.SanitizeFileName(name)
}

// nameAllocator hands out unique names first-seen: "x.pdf", "x (2).pdf",
// "x (3).pdf", skipping any candidate already taken. Comparison ignores case.
type nameAllocator struct {
	taken map[string]bool
}

func newNameAllocator() *nameAllocator {
	return &nameAllocator{taken: make(map[string]bool)}
}

func (a *nameAllocator) allocate(name string) string {
	if a.claim(name) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if a.claim(candidate) {
			return candidate
		}
	}
}

func (a *nameAllocator) claim(name string) bool {
	key := strings.ToLower(name)
	if a.taken[key] {
		return false
	}
	a.taken[key] = true
	return true
}

// bundleTime stamps every archive entry so identical batches produce
// identical archives. It is the earliest time a ZIP header can carry.
var bundleTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// bundle zips every item carrying an artifact, writing the resolved name
// back into the item. It returns nil when no item has an artifact.
func bundle(name string, items []Item) (*Package, error) {
	names := newNameAllocator()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := 0
	for i := range items {
		it := &items[i]
		if it.Status == StatusError || len(it.Artifact) == 0 {
			continue
		}
		it.ArtifactName = names.allocate(artifactName(it.ArtifactName))
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     it.ArtifactName,
			Method:   zip.Deflate,
			Modified: bundleTime,
		})
		if err != nil {
			return nil, document.SystemError("bundle", "unable to add "+it.ArtifactName, err)
		}
		if _, err := w.Write(it.Artifact); err != nil {
			return nil, document.SystemError("bundle", "unable to write "+it.ArtifactName, err)
		}
		files++
	}
	if err := zw.Close(); err != nil {
		return nil, document.SystemError("bundle", "unable to finish archive", err)
	}
	if files == 0 {
		return nil, nil
	}
	return &Package{Name: name, Files: files, Data: buf.Bytes()}, nil
}
