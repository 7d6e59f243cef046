package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/gen2brain/go-fitz"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDF reads page text with ledongthuc/pdf, falls back to MuPDF (go-fitz)
// when that fails, renders thumbnails with MuPDF and writes page selections
// with pdfcpu.
type PDF struct {
	FallbackFitz bool
	ThumbnailDPI float64
	Optimize     bool
}

// pdfHandle is the per-document state kept between PageText calls.
type pdfHandle struct {
	mu     sync.Mutex
	reader *pdflib.Reader
}

var disableConfigDir sync.Once

// NewPDF returns a PDF backend. pdfcpu's on-disk config directory is
// disabled so the backend never writes outside its outputs.
func NewPDF(fallbackFitz bool, thumbnailDPI float64, optimize bool) *PDF {
	disableConfigDir.Do(api.DisableConfigDir)
	if thumbnailDPI <= 0 {
		thumbnailDPI = 54
	}
	return &PDF{
		FallbackFitz: fallbackFitz,
		ThumbnailDPI: thumbnailDPI,
		Optimize:     optimize,
	}
}

func (p *PDF) Parse(ctx context.Context, name string, data []byte) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, document.SystemError("pdf.parse", "cancelled", err)
	}

	reader, err := openPDF(data)
	if err == nil {
		doc := document.New(name, data, reader.NumPage())
		doc.SetHandle(&pdfHandle{reader: reader})
		return doc, nil
	}
	if !p.FallbackFitz {
		return nil, document.ParsingError("pdf.parse", "unable to read "+name, err)
	}

	texts, ferr := fitzTexts(data)
	if ferr != nil {
		return nil, document.ParsingError("pdf.parse", "unable to read "+name, fmt.Errorf("%w; mupdf: %v", err, ferr))
	}
	doc := document.New(name, data, len(texts))
	for i, t := range texts {
		doc.SetText(i, t)
	}
	doc.SetHandle(&pdfHandle{})
	return doc, nil
}

func (p *PDF) PageText(ctx context.Context, doc *document.Document, index int) (string, error) {
	if text, ok := doc.CachedText(index); ok {
		return text, nil
	}
	if _, err := doc.Page(index); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", document.SystemError("pdf.page_text", "cancelled", err)
	}

	h, _ := doc.Handle().(*pdfHandle)
	if h != nil && h.reader != nil {
		h.mu.Lock()
		text, err := plainText(h.reader, index+1)
		h.mu.Unlock()
		if err == nil {
			doc.SetText(index, text)
			return text, nil
		}
		if !p.FallbackFitz {
			return "", document.ParsingError("pdf.page_text",
				fmt.Sprintf("unable to extract text of page %d of %s", index+1, doc.Name), err)
		}
	}

	// MuPDF fallback resolves every page at once; later calls hit the cache.
	texts, err := fitzTexts(doc.Data())
	if err != nil {
		return "", document.ParsingError("pdf.page_text",
			fmt.Sprintf("unable to extract text of page %d of %s", index+1, doc.Name), err)
	}
	for i, t := range texts {
		doc.SetText(i, t)
	}
	if index >= len(texts) {
		return "", document.ParsingError("pdf.page_text",
			fmt.Sprintf("page %d of %s has no text layer", index+1, doc.Name), nil)
	}
	return texts[index], nil
}

func (p *PDF) RenderThumbnail(ctx context.Context, doc *document.Document, index int) (document.Thumbnail, error) {
	if _, err := doc.Page(index); err != nil {
		return document.Thumbnail{}, err
	}
	if err := ctx.Err(); err != nil {
		return document.Thumbnail{}, document.SystemError("pdf.thumbnail", "cancelled", err)
	}

	fd, err := fitz.NewFromMemory(doc.Data())
	if err != nil {
		return document.Thumbnail{}, document.SystemError("pdf.thumbnail", "unable to open "+doc.Name, err)
	}
	defer fd.Close()

	png, err := fd.ImagePNG(index, p.ThumbnailDPI)
	if err != nil {
		return document.Thumbnail{}, document.SystemError("pdf.thumbnail",
			fmt.Sprintf("unable to render page %d of %s", index+1, doc.Name), err)
	}
	return document.Thumbnail{ContentType: "image/png", Data: png}, nil
}

func (p *PDF) Write(ctx context.Context, parts ...document.Selection) ([]byte, error) {
	if len(parts) == 0 {
		return nil, document.ValidationErrorf("pdf.write", "no pages selected")
	}
	conf := newConfiguration()

	outputs := make([]io.ReadSeeker, 0, len(parts))
	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			return nil, document.SystemError("pdf.write", "cancelled", err)
		}
		selected, err := pageSelection(part)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := api.Collect(bytes.NewReader(part.Doc.Data()), &buf, selected, conf); err != nil {
			return nil, document.SystemError("pdf.write", "unable to collect pages of "+part.Doc.Name, err)
		}
		outputs = append(outputs, bytes.NewReader(buf.Bytes()))
	}

	var merged bytes.Buffer
	if len(outputs) == 1 {
		if _, err := io.Copy(&merged, outputs[0]); err != nil {
			return nil, document.SystemError("pdf.write", "unable to copy output", err)
		}
	} else if err := api.MergeRaw(outputs, &merged, false, conf); err != nil {
		return nil, document.SystemError("pdf.write", "unable to merge selected pages", err)
	}

	if !p.Optimize {
		return merged.Bytes(), nil
	}
	var optimized bytes.Buffer
	if err := api.Optimize(bytes.NewReader(merged.Bytes()), &optimized, conf); err != nil {
		// An unoptimized artifact is still a correct one.
		return merged.Bytes(), nil
	}
	return optimized.Bytes(), nil
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// pageSelection converts 0-based indexes into pdfcpu's 1-based page list.
func pageSelection(part document.Selection) ([]string, error) {
	if len(part.Indexes) == 0 {
		return nil, document.ValidationErrorf("pdf.write", "no pages selected from %s", part.Doc.Name)
	}
	selected := make([]string, 0, len(part.Indexes))
	for _, idx := range part.Indexes {
		if _, err := part.Doc.Page(idx); err != nil {
			return nil, err
		}
		selected = append(selected, strconv.Itoa(idx+1))
	}
	return selected, nil
}

// openPDF wraps ledongthuc/pdf, which panics on some malformed inputs.
func openPDF(data []byte) (r *pdflib.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
}

func plainText(r *pdflib.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed page %d: %v", pageNum, rec)
		}
	}()
	page := r.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func fitzTexts(data []byte) ([]string, error) {
	fd, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	texts := make([]string, fd.NumPage())
	for i := range texts {
		t, err := fd.Text(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		texts[i] = t
	}
	return texts, nil
}
