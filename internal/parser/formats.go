package parser

import (
	"context"
	"fmt"

	"github.com/dgallion1/pdfsuite/internal/document"
)

// TextFormats paginates validation-only sources (plain text, Markdown,
// HTML, DOCX). Page texts are resolved once at Parse time. These formats
// cannot be rendered or written.
type TextFormats struct{}

func (t *TextFormats) splitter(format string) (Splitter, error) {
	switch format {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", format)
	}
}

func (t *TextFormats) Parse(ctx context.Context, name string, data []byte) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, document.SystemError("parse", "cancelled", err)
	}
	s, err := t.splitter(document.FormatOf(name))
	if err != nil {
		return nil, document.ParsingError("parse", "cannot read "+name, err)
	}
	pages, err := pagesOf(s, data)
	if err != nil {
		return nil, document.ParsingError("parse", "unable to read "+name, err)
	}
	doc := document.New(name, data, len(pages))
	for i, text := range pages {
		doc.SetText(i, text)
	}
	return doc, nil
}

// pagesOf guards against splitter libraries that panic on malformed input.
func pagesOf(s Splitter, data []byte) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("malformed input: %v", rec)
		}
	}()
	return s.Pages(data)
}

func (t *TextFormats) PageText(ctx context.Context, doc *document.Document, index int) (string, error) {
	if _, err := doc.Page(index); err != nil {
		return "", err
	}
	text, _ := doc.CachedText(index)
	return text, nil
}

func (t *TextFormats) RenderThumbnail(ctx context.Context, doc *document.Document, index int) (document.Thumbnail, error) {
	return document.Thumbnail{}, document.SystemError("thumbnail", "format cannot be paginated: "+doc.Name, nil)
}

func (t *TextFormats) Write(ctx context.Context, parts ...document.Selection) ([]byte, error) {
	names := ""
	for i, p := range parts {
		if i > 0 {
			names += ", "
		}
		names += p.Doc.Name
	}
	return nil, document.SystemError("write", "format cannot be paginated: "+names, nil)
}
