package document

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew_AllPagesRetained(t *testing.T) {
	d := New("June 2024 Exam.PDF", []byte("data"), 3)
	if d.ID == "" {
		t.Error("expected a generated document ID")
	}
	if d.Format != ".pdf" {
		t.Errorf("expected format %q, got %q", ".pdf", d.Format)
	}
	if d.Size != 4 {
		t.Errorf("expected size 4, got %d", d.Size)
	}
	if d.PageCount() != 3 {
		t.Fatalf("expected 3 pages, got %d", d.PageCount())
	}
	for i, p := range d.Pages {
		if p.Index != i || !p.Retained {
			t.Errorf("page %d: expected index %d retained, got index %d retained=%v", i, i, p.Index, p.Retained)
		}
	}
}

func TestDocument_RetainedIndexes(t *testing.T) {
	d := New("a.pdf", nil, 5)
	d.Pages[1].Retained = false
	d.Pages[3].Retained = false

	got := d.RetainedIndexes()
	want := []int{0, 2, 4}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if d.RetainedCount() != 3 {
		t.Errorf("expected 3 retained, got %d", d.RetainedCount())
	}
}

func TestDocument_PageOutOfRange(t *testing.T) {
	d := New("a.pdf", nil, 2)
	if _, err := d.Page(2); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := d.Page(-1); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if p, err := d.Page(1); err != nil || p.Index != 1 {
		t.Errorf("expected page 1, got %v, %v", p, err)
	}
}

func TestDocument_TextCache(t *testing.T) {
	d := New("a.pdf", nil, 2)
	if _, ok := d.CachedText(0); ok {
		t.Fatal("expected no cached text before SetText")
	}
	d.SetText(0, "")
	text, ok := d.CachedText(0)
	if !ok || text != "" {
		t.Errorf("expected cached empty text, got %q ok=%v", text, ok)
	}
	d.SetText(5, "ignored")
	if _, ok := d.CachedText(5); ok {
		t.Error("expected out-of-range cache lookups to miss")
	}
}

func TestError_KindPredicates(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		err  error
		kind Kind
	}{
		{ValidationErrorf("merge", "no pages"), KindValidation},
		{ParsingError("pdf.parse", "unreadable", base), KindParsing},
		{SystemError("pdf.write", "write failed", base), KindSystem},
		{fmt.Errorf("wrapped: %w", SystemError("x", "y", ErrLimitExceeded)), KindSystem},
		{base, 0},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.kind {
			t.Errorf("%v: expected kind %v, got %v", tt.err, tt.kind, got)
		}
	}
	if !errors.Is(SystemError("x", "y", ErrLimitExceeded), ErrLimitExceeded) {
		t.Error("expected ErrLimitExceeded to be reachable through errors.Is")
	}
}

func TestError_Message(t *testing.T) {
	err := ParsingError("pdf.parse", "unable to read PDF", errors.New("bad xref"))
	want := "pdf.parse: unable to read PDF: bad xref"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
