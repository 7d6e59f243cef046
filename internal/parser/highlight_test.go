package parser

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"
)

func lineGlyphs(text string, x, y, advance, size float64) []glyph {
	var out []glyph
	for i, r := range text {
		out = append(out, glyph{s: string(r), x: x + advance*float64(i), y: y, w: advance, size: size})
	}
	return out
}

func TestTermPattern(t *testing.T) {
	if termPattern([]string{"", "  "}) != nil {
		t.Error("expected nil pattern for blank terms")
	}
	re := termPattern([]string{"a+b", " Question 2 "})
	if !re.MatchString("x A+B y") {
		t.Error("expected literal, case-insensitive match of a+b")
	}
	if re.MatchString("aab") {
		t.Error("expected + to be literal")
	}
	if !re.MatchString("see question 2") {
		t.Error("expected trimmed term to match")
	}
}

func TestMatchBoxes(t *testing.T) {
	glyphs := lineGlyphs("Question 2 here", 10, 100, 6, 12)
	boxes := matchBoxes(glyphs, termPattern([]string{"question 2"}))
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	b := boxes[0]
	if b.x0 != 10 || b.x1 != 70 {
		t.Errorf("expected x 10..70, got %v..%v", b.x0, b.x1)
	}
	if b.y0 != 97 || b.y1 <= 110 {
		t.Errorf("expected y from 97 to above 110, got %v..%v", b.y0, b.y1)
	}

	repeated := matchBoxes(lineGlyphs("Q1 q1 Q2", 0, 0, 5, 10), termPattern([]string{"q1"}))
	if len(repeated) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(repeated))
	}
	if repeated[1].x0 != 15 {
		t.Errorf("expected second match at x=15, got %v", repeated[1].x0)
	}
}

func TestMatchBoxes_ZeroWidthGlyphs(t *testing.T) {
	glyphs := []glyph{{s: "a", x: 5, y: 0, size: 10}}
	boxes := matchBoxes(glyphs, termPattern([]string{"a"}))
	if len(boxes) != 1 || boxes[0].x1 != 10 {
		t.Errorf("expected half-size fallback width, got %+v", boxes)
	}
}

func whitePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestPaintBoxes(t *testing.T) {
	data, err := paintBoxes(whitePNG(t, 100, 100), []box{
		{x0: 10, y0: 10, x1: 20, y1: 20},
		{x0: 90, y0: 90, x1: 200, y1: 200},
	}, 100, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// PDF y grows upward, so a box near the bottom lands near the bottom rows.
	if _, _, b, _ := img.At(15, 85).RGBA(); b > 0xd000 {
		t.Errorf("expected highlighted pixel at (15,85), blue=%#x", b)
	}
	for _, pt := range []image.Point{{15, 15}, {50, 50}} {
		if _, _, b, _ := img.At(pt.X, pt.Y).RGBA(); b != 0xffff {
			t.Errorf("expected untouched pixel at %v, blue=%#x", pt, b)
		}
	}
	if _, _, b, _ := img.At(95, 5).RGBA(); b > 0xd000 {
		t.Errorf("expected clipped box to be painted at (95,5), blue=%#x", b)
	}
}

func TestPaintBoxes_RejectsNonPNG(t *testing.T) {
	if _, err := paintBoxes([]byte("not an image"), []box{{0, 0, 1, 1}}, 10, 10); err == nil {
		t.Error("expected decode error")
	}
}
