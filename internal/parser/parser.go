package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/pdfsuite/internal/document"
)

// Adapter turns raw bytes into paginated documents and writes page
// selections back out. It is the only layer that touches file formats.
type Adapter interface {
	Parse(ctx context.Context, name string, data []byte) (*document.Document, error)
	PageText(ctx context.Context, doc *document.Document, index int) (string, error)
	RenderThumbnail(ctx context.Context, doc *document.Document, index int) (document.Thumbnail, error)
	// Write produces one artifact holding the selected pages of every part,
	// parts in order and pages in the order given.
	Write(ctx context.Context, parts ...document.Selection) ([]byte, error)
}

// SupportedExtensions lists file extensions the suite accepts.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[document.FormatOf(filename)]
}

// Dispatcher routes each call to the PDF backend or the text-format backend
// by document format.
type Dispatcher struct {
	PDF  *PDF
	Text *TextFormats
}

// NewDispatcher wires both backends.
func NewDispatcher(pdf *PDF, text *TextFormats) *Dispatcher {
	if text == nil {
		text = &TextFormats{}
	}
	return &Dispatcher{PDF: pdf, Text: text}
}

// backendFor picks the backend for a format. An unknown format is a
// ParsingError and a missing PDF backend is a SystemError.
func (d *Dispatcher) backendFor(op, name, format string) (Adapter, error) {
	switch {
	case format == ".pdf":
		if d.PDF == nil {
			return nil, document.SystemError(op, "no PDF backend configured", nil)
		}
		return d.PDF, nil
	case SupportedExtensions[format]:
		return d.Text, nil
	default:
		return nil, document.ParsingError(op, "cannot read "+name, fmt.Errorf("unsupported file extension: %s", format))
	}
}

func (d *Dispatcher) Parse(ctx context.Context, name string, data []byte) (*document.Document, error) {
	b, err := d.backendFor("parse", name, document.FormatOf(name))
	if err != nil {
		return nil, err
	}
	return b.Parse(ctx, name, data)
}

func (d *Dispatcher) PageText(ctx context.Context, doc *document.Document, index int) (string, error) {
	b, err := d.backendFor("page_text", doc.Name, doc.Format)
	if err != nil {
		return "", err
	}
	return b.PageText(ctx, doc, index)
}

func (d *Dispatcher) RenderThumbnail(ctx context.Context, doc *document.Document, index int) (document.Thumbnail, error) {
	b, err := d.backendFor("thumbnail", doc.Name, doc.Format)
	if err != nil {
		return document.Thumbnail{}, err
	}
	return b.RenderThumbnail(ctx, doc, index)
}

func (d *Dispatcher) Write(ctx context.Context, parts ...document.Selection) ([]byte, error) {
	var nonPDF []string
	for _, p := range parts {
		if p.Doc.Format != ".pdf" {
			nonPDF = append(nonPDF, p.Doc.Name)
		}
	}
	if len(nonPDF) > 0 {
		return nil, document.SystemError("write",
			fmt.Sprintf("format cannot be paginated: %s", strings.Join(nonPDF, ", ")), nil)
	}
	if d.PDF == nil {
		return nil, document.SystemError("write", "no PDF backend configured", nil)
	}
	return d.PDF.Write(ctx, parts...)
}
