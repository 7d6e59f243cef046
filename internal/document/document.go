// Package document holds the shared data model: paginated documents with
// per-page retain state, the result types produced by the services, and the
// error taxonomy every layer reports through.
package document

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Document is a parsed input with its pages in original order.
type Document struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Format string  `json:"format"` // lower-case extension, e.g. ".pdf"
	Size   int64   `json:"size_bytes"`
	Pages  []*Page `json:"pages"`

	mu     sync.Mutex
	data   []byte
	handle any
}

// Page is one page of a Document. Index is the original 0-based position.
type Page struct {
	Index    int  `json:"index"`
	Retained bool `json:"retained"`

	text    string
	hasText bool
}

// Thumbnail is an opaque rendered preview of a page.
type Thumbnail struct {
	ContentType string
	Data        []byte
}

// Selection names the pages of one document to write, in output order.
type Selection struct {
	Doc     *Document
	Indexes []int
}

// New builds a Document with pageCount retained pages.
func New(name string, data []byte, pageCount int) *Document {
	d := &Document{
		ID:     uuid.NewString(),
		Name:   name,
		Format: FormatOf(name),
		Size:   int64(len(data)),
		data:   data,
		Pages:  make([]*Page, pageCount),
	}
	for i := range d.Pages {
		d.Pages[i] = &Page{Index: i, Retained: true}
	}
	return d
}

// FormatOf returns the lower-case extension of name.
func FormatOf(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Data returns the raw source bytes.
func (d *Document) Data() []byte {
	return d.data
}

// PageCount returns the number of pages in the original document.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Page returns the page at index, or a ValidationError for a bad reference.
func (d *Document) Page(index int) (*Page, error) {
	if index < 0 || index >= len(d.Pages) {
		return nil, ValidationErrorf("page", "page %d is out of range for %s (1-%d)", index+1, d.Name, len(d.Pages))
	}
	return d.Pages[index], nil
}

// RetainedIndexes returns the indexes of retained pages in original order.
func (d *Document) RetainedIndexes() []int {
	var out []int
	for _, p := range d.Pages {
		if p.Retained {
			out = append(out, p.Index)
		}
	}
	return out
}

// RetainedCount returns how many pages are still retained.
func (d *Document) RetainedCount() int {
	n := 0
	for _, p := range d.Pages {
		if p.Retained {
			n++
		}
	}
	return n
}

// CachedText returns the page text resolved by an earlier adapter call.
func (d *Document) CachedText(index int) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.Pages) {
		return "", false
	}
	p := d.Pages[index]
	return p.text, p.hasText
}

// SetText caches resolved page text.
func (d *Document) SetText(index int, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.Pages) {
		return
	}
	d.Pages[index].text = text
	d.Pages[index].hasText = true
}

// Handle returns adapter-private state attached by Parse.
func (d *Document) Handle() any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handle
}

// SetHandle attaches adapter-private state.
func (d *Document) SetHandle(h any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handle = h
}
