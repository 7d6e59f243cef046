package parser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"regexp"
	"strings"

	"github.com/dgallion1/pdfsuite/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// Highlighter renders a page preview with every occurrence of the given
// terms marked. Terms match literally and ignore case.
type Highlighter interface {
	RenderHighlighted(ctx context.Context, doc *document.Document, index int, terms []string) (document.Thumbnail, error)
}

var highlightColor = color.NRGBA{R: 255, G: 221, B: 0, A: 110}

// glyph is one positioned character of a page, in PDF user space.
type glyph struct {
	s       string
	x, y, w float64
	size    float64
}

// box is a rectangle in PDF user space with the origin at the bottom left.
type box struct {
	x0, y0, x1, y1 float64
}

// termPattern joins non-blank terms into one case-insensitive alternation.
// It returns nil when no term is left.
func termPattern(terms []string) *regexp.Regexp {
	var quoted []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
}

// matchBoxes returns one bounding box per match of pattern over the page's
// glyphs, read in content order.
func matchBoxes(glyphs []glyph, pattern *regexp.Regexp) []box {
	var sb strings.Builder
	owner := make([]int, 0, len(glyphs))
	for i, g := range glyphs {
		sb.WriteString(g.s)
		for range len(g.s) {
			owner = append(owner, i)
		}
	}

	var boxes []box
	for _, m := range pattern.FindAllStringIndex(sb.String(), -1) {
		if m[0] == m[1] {
			continue
		}
		b := glyphBox(glyphs[owner[m[0]]])
		for _, gi := range owner[m[0]+1 : m[1]] {
			g := glyphBox(glyphs[gi])
			b.x0, b.y0 = math.Min(b.x0, g.x0), math.Min(b.y0, g.y0)
			b.x1, b.y1 = math.Max(b.x1, g.x1), math.Max(b.y1, g.y1)
		}
		boxes = append(boxes, b)
	}
	return boxes
}

func glyphBox(g glyph) box {
	w := g.w
	if w <= 0 {
		// Fonts without a Widths array report zero advance.
		w = g.size / 2
	}
	return box{x0: g.x, y0: g.y - g.size*0.25, x1: g.x + w, y1: g.y + g.size*0.9}
}

// paintBoxes draws boxes over a rendered page. The image is assumed to
// cover the whole page, so the scale comes from the image bounds.
func paintBoxes(pngData []byte, boxes []box, pageW, pageH float64) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, err
	}
	bounds := src.Bounds()
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, src, bounds.Min, draw.Src)

	sx := float64(bounds.Dx()) / pageW
	sy := float64(bounds.Dy()) / pageH
	mark := image.NewUniform(highlightColor)
	for _, b := range boxes {
		r := image.Rect(
			int(math.Floor(b.x0*sx)), int(math.Floor((pageH-b.y1)*sy)),
			int(math.Ceil(b.x1*sx)), int(math.Ceil((pageH-b.y0)*sy)),
		).Add(bounds.Min).Intersect(bounds)
		draw.Draw(img, r, mark, image.Point{}, draw.Over)
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// pageLayout reads the positioned glyphs and the media box size of a page.
func pageLayout(r *pdflib.Reader, pageNum int) (glyphs []glyph, width, height float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			glyphs, err = nil, fmt.Errorf("malformed page %d: %v", pageNum, rec)
		}
	}()
	page := r.Page(pageNum)
	if page.V.IsNull() {
		return nil, 0, 0, fmt.Errorf("page %d not found", pageNum)
	}
	width, height = mediaBox(page.V)
	for _, t := range page.Content().Text {
		glyphs = append(glyphs, glyph{s: t.S, x: t.X, y: t.Y, w: t.W, size: t.FontSize})
	}
	return glyphs, width, height, nil
}

// mediaBox walks up the page tree for an inherited MediaBox and defaults
// to US Letter.
func mediaBox(v pdflib.Value) (float64, float64) {
	for ; !v.IsNull(); v = v.Key("Parent") {
		mb := v.Key("MediaBox")
		if mb.Len() == 4 {
			w := mb.Index(2).Float64() - mb.Index(0).Float64()
			h := mb.Index(3).Float64() - mb.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
	}
	return 612, 792
}

// RenderHighlighted renders a thumbnail and marks every occurrence of the
// terms found in the page's text layer. Pages without a readable text layer
// come back unmarked.
func (p *PDF) RenderHighlighted(ctx context.Context, doc *document.Document, index int, terms []string) (document.Thumbnail, error) {
	thumb, err := p.RenderThumbnail(ctx, doc, index)
	if err != nil {
		return thumb, err
	}
	pattern := termPattern(terms)
	h, _ := doc.Handle().(*pdfHandle)
	if pattern == nil || h == nil || h.reader == nil {
		return thumb, nil
	}

	h.mu.Lock()
	glyphs, w, hgt, err := pageLayout(h.reader, index+1)
	h.mu.Unlock()
	if err != nil {
		return thumb, nil
	}
	boxes := matchBoxes(glyphs, pattern)
	if len(boxes) == 0 {
		return thumb, nil
	}
	data, err := paintBoxes(thumb.Data, boxes, w, hgt)
	if err != nil {
		return document.Thumbnail{}, document.SystemError("pdf.thumbnail",
			fmt.Sprintf("unable to highlight page %d of %s", index+1, doc.Name), err)
	}
	return document.Thumbnail{ContentType: "image/png", Data: data}, nil
}

// RenderHighlighted routes to the backend's Highlighter and falls back to
// a plain thumbnail for backends without one.
func (d *Dispatcher) RenderHighlighted(ctx context.Context, doc *document.Document, index int, terms []string) (document.Thumbnail, error) {
	b, err := d.backendFor("thumbnail", doc.Name, doc.Format)
	if err != nil {
		return document.Thumbnail{}, err
	}
	if h, ok := b.(Highlighter); ok {
		return h.RenderHighlighted(ctx, doc, index, terms)
	}
	return b.RenderThumbnail(ctx, doc, index)
}
