// Package workspace holds the documents one session is working on, the
// upload limits applied before they get there, and a TTL store of
// sessions for the HTTP API.
package workspace

import (
	"github.com/dgallion1/pdfsuite/internal/document"
)

// Workspace is an ordered list of documents. Insertion order is merge
// order. It has no internal locking; callers own it.
type Workspace struct {
	docs []*document.Document
}

func New() *Workspace {
	return &Workspace{}
}

// Add appends documents to the end of the workspace.
func (w *Workspace) Add(docs ...*document.Document) {
	w.docs = append(w.docs, docs...)
}

// Documents returns the documents in workspace order.
func (w *Workspace) Documents() []*document.Document {
	out := make([]*document.Document, len(w.docs))
	copy(out, w.docs)
	return out
}

// Len returns the number of documents.
func (w *Workspace) Len() int {
	return len(w.docs)
}

// Document returns the document with id.
func (w *Workspace) Document(id string) (*document.Document, error) {
	for _, d := range w.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, document.ValidationErrorf("workspace", "unknown document %q", id)
}

// RemovePage marks one page of a document as not retained. Removing an
// already removed page is a no-op.
func (w *Workspace) RemovePage(docID string, index int) error {
	return w.RemovePages(docID, []int{index})
}

// RemovePages marks several pages as not retained. Every index is checked
// before any page changes.
func (w *Workspace) RemovePages(docID string, indexes []int) error {
	doc, err := w.Document(docID)
	if err != nil {
		return err
	}
	pages := make([]*document.Page, 0, len(indexes))
	for _, idx := range indexes {
		p, err := doc.Page(idx)
		if err != nil {
			return err
		}
		pages = append(pages, p)
	}
	for _, p := range pages {
		p.Retained = false
	}
	return nil
}

// RemoveDocument drops a document and all of its pages.
func (w *Workspace) RemoveDocument(docID string) error {
	for i, d := range w.docs {
		if d.ID == docID {
			w.docs = append(w.docs[:i], w.docs[i+1:]...)
			return nil
		}
	}
	return document.ValidationErrorf("workspace", "unknown document %q", docID)
}

// Reset drops every document.
func (w *Workspace) Reset() {
	w.docs = nil
}

// RetainedPageCount returns the number of retained pages across all documents.
func (w *Workspace) RetainedPageCount() int {
	n := 0
	for _, d := range w.docs {
		n += d.RetainedCount()
	}
	return n
}
