// Package parsertest provides an in-memory parser.Adapter for tests. Its
// "documents" are page texts joined by form feeds, and Write produces the
// same encoding so artifacts can be parsed back.
package parsertest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dgallion1/pdfsuite/internal/document"
)

// Corrupt is a payload the fake refuses to parse.
var Corrupt = []byte("%CORRUPT")

// Adapter is a fake parser.Adapter with failure injection.
type Adapter struct {
	mu sync.Mutex

	FailText  map[string]bool // document names whose page text cannot be read
	FailWrite bool
	Writes    int
}

func New() *Adapter {
	return &Adapter{FailText: map[string]bool{}}
}

// Pages encodes page texts as a fake document.
func Pages(texts ...string) []byte {
	return []byte(strings.Join(texts, "\f"))
}

// Decode splits an artifact produced by Write back into page texts.
func Decode(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	return strings.Split(string(data), "\f")
}

func (a *Adapter) Parse(ctx context.Context, name string, data []byte) (*document.Document, error) {
	if bytes.HasPrefix(data, Corrupt) {
		return nil, document.ParsingError("parse", "unable to read "+name, fmt.Errorf("corrupt payload"))
	}
	pages := Decode(data)
	doc := document.New(name, data, len(pages))
	doc.SetHandle(pages)
	return doc, nil
}

func (a *Adapter) PageText(ctx context.Context, doc *document.Document, index int) (string, error) {
	if _, err := doc.Page(index); err != nil {
		return "", err
	}
	a.mu.Lock()
	fail := a.FailText[doc.Name]
	a.mu.Unlock()
	if fail {
		return "", document.ParsingError("page_text", fmt.Sprintf("unable to read page %d of %s", index+1, doc.Name), nil)
	}
	pages, _ := doc.Handle().([]string)
	if index >= len(pages) {
		return "", nil
	}
	return pages[index], nil
}

func (a *Adapter) RenderThumbnail(ctx context.Context, doc *document.Document, index int) (document.Thumbnail, error) {
	if _, err := doc.Page(index); err != nil {
		return document.Thumbnail{}, err
	}
	return document.Thumbnail{
		ContentType: "image/png",
		Data:        []byte(fmt.Sprintf("thumb:%s:%d", doc.Name, index)),
	}, nil
}

// RenderHighlighted encodes the terms into the fake image so callers can
// check what was asked for.
func (a *Adapter) RenderHighlighted(ctx context.Context, doc *document.Document, index int, terms []string) (document.Thumbnail, error) {
	thumb, err := a.RenderThumbnail(ctx, doc, index)
	if err != nil {
		return thumb, err
	}
	thumb.Data = append(thumb.Data, []byte(":"+strings.Join(terms, "|"))...)
	return thumb, nil
}

func (a *Adapter) Write(ctx context.Context, parts ...document.Selection) ([]byte, error) {
	a.mu.Lock()
	a.Writes++
	fail := a.FailWrite
	a.mu.Unlock()
	if fail {
		return nil, document.SystemError("write", "disk full", nil)
	}
	if len(parts) == 0 {
		return nil, document.ValidationErrorf("write", "no pages selected")
	}

	var out []string
	for _, part := range parts {
		pages, _ := part.Doc.Handle().([]string)
		for _, idx := range part.Indexes {
			if _, err := part.Doc.Page(idx); err != nil {
				return nil, err
			}
			out = append(out, pages[idx])
		}
	}
	return Pages(out...), nil
}
