package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/pdfsuite/internal/document"
)

func TestIsSupportedExtension(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"exam.pdf", true},
		{"EXAM.PDF", true},
		{"notes.txt", true},
		{"notes.markdown", true},
		{"page.htm", true},
		{"report.docx", true},
		{"sheet.xlsx", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := IsSupportedExtension(tt.name); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestDispatcher_UnsupportedExtensionIsParsingError(t *testing.T) {
	d := NewDispatcher(nil, nil)
	_, err := d.Parse(context.Background(), "sheet.xlsx", []byte("x"))
	if !document.IsParsing(err) {
		t.Fatalf("expected parsing error, got %v", err)
	}
}

func TestDispatcher_PDFWithoutBackendIsSystemError(t *testing.T) {
	d := NewDispatcher(nil, nil)
	_, err := d.Parse(context.Background(), "exam.pdf", []byte("%PDF-1.4"))
	if !document.IsSystem(err) {
		t.Fatalf("expected system error, got %v", err)
	}
}

func TestDispatcher_TextPages(t *testing.T) {
	d := NewDispatcher(nil, nil)
	ctx := context.Background()
	doc, err := d.Parse(ctx, "Notes.TXT", []byte("Question 1\fQuestion 2\fQuestion 3"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.PageCount() != 3 {
		t.Fatalf("expected 3 pages, got %d", doc.PageCount())
	}
	text, err := d.PageText(ctx, doc, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Question 3" {
		t.Errorf("expected %q, got %q", "Question 3", text)
	}
	if _, err := d.PageText(ctx, doc, 3); !document.IsValidation(err) {
		t.Errorf("expected validation error for out-of-range page, got %v", err)
	}
}

func TestDispatcher_TextCannotBeWrittenOrRendered(t *testing.T) {
	d := NewDispatcher(nil, nil)
	ctx := context.Background()
	doc, err := d.Parse(ctx, "notes.md", []byte("# Question 1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = d.Write(ctx, document.Selection{Doc: doc, Indexes: []int{0}})
	if !document.IsSystem(err) {
		t.Fatalf("expected system error, got %v", err)
	}
	if !strings.Contains(err.Error(), "format cannot be paginated") || !strings.Contains(err.Error(), "notes.md") {
		t.Errorf("unexpected message: %v", err)
	}

	if _, err := d.RenderThumbnail(ctx, doc, 0); !document.IsSystem(err) {
		t.Errorf("expected system error for thumbnail, got %v", err)
	}
}

func TestPDF_GarbageIsParsingError(t *testing.T) {
	p := NewPDF(false, 0, false)
	_, err := p.Parse(context.Background(), "broken.pdf", []byte("this is not a pdf"))
	if !document.IsParsing(err) {
		t.Fatalf("expected parsing error, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken.pdf") {
		t.Errorf("expected message to name the file, got %v", err)
	}
}

func TestPDF_WriteWithoutPartsIsValidationError(t *testing.T) {
	p := NewPDF(false, 0, false)
	if _, err := p.Write(context.Background()); !document.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPDF_WriteRejectsOutOfRangePage(t *testing.T) {
	p := NewPDF(false, 0, false)
	doc := document.New("a.pdf", []byte("%PDF-1.4"), 2)
	_, err := p.Write(context.Background(), document.Selection{Doc: doc, Indexes: []int{5}})
	if !document.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDispatcher_ErrorKindsByCall(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(nil, nil)

	sheet := document.New("sheet.xlsx", []byte("x"), 1)
	if _, err := d.PageText(ctx, sheet, 0); !document.IsParsing(err) {
		t.Errorf("page text of unsupported format: expected parsing error, got %v", err)
	}
	if _, err := d.RenderThumbnail(ctx, sheet, 0); !document.IsParsing(err) {
		t.Errorf("thumbnail of unsupported format: expected parsing error, got %v", err)
	}

	exam := document.New("exam.pdf", []byte("%PDF-1.4"), 1)
	if _, err := d.PageText(ctx, exam, 0); !document.IsSystem(err) || document.IsParsing(err) {
		t.Errorf("page text without PDF backend: expected system error only, got %v", err)
	}
	if _, err := d.RenderThumbnail(ctx, exam, 0); !document.IsSystem(err) || document.IsParsing(err) {
		t.Errorf("thumbnail without PDF backend: expected system error only, got %v", err)
	}
	if _, err := d.RenderHighlighted(ctx, exam, 0, []string{"x"}); !document.IsSystem(err) {
		t.Errorf("highlight without PDF backend: expected system error, got %v", err)
	}
}
