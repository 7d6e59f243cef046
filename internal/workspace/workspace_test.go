package workspace

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/pdfsuite/internal/document"
)

func TestWorkspace_AddKeepsInsertionOrder(t *testing.T) {
	ws := New()
	a := document.New("a.pdf", nil, 2)
	b := document.New("b.pdf", nil, 1)
	ws.Add(a)
	ws.Add(b)

	docs := ws.Documents()
	if len(docs) != 2 || docs[0] != a || docs[1] != b {
		t.Fatalf("expected [a b], got %v", docs)
	}
	if ws.RetainedPageCount() != 3 {
		t.Errorf("expected 3 retained pages, got %d", ws.RetainedPageCount())
	}
}

func TestWorkspace_RemovePages(t *testing.T) {
	ws := New()
	doc := document.New("a.pdf", nil, 5)
	ws.Add(doc)

	if err := ws.RemovePages(doc.ID, []int{1, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fmt.Sprint(doc.RetainedIndexes()) != "[0 2 4]" {
		t.Errorf("expected [0 2 4], got %v", doc.RetainedIndexes())
	}

	// Idempotent.
	if err := ws.RemovePage(doc.ID, 1); err != nil {
		t.Fatalf("unexpected error on repeat removal: %v", err)
	}
	if doc.RetainedCount() != 3 {
		t.Errorf("expected 3 retained, got %d", doc.RetainedCount())
	}
}

func TestWorkspace_RemovePagesIsAllOrNothing(t *testing.T) {
	ws := New()
	doc := document.New("a.pdf", nil, 3)
	ws.Add(doc)

	err := ws.RemovePages(doc.ID, []int{0, 7})
	if !document.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if doc.RetainedCount() != 3 {
		t.Errorf("expected no change after a bad reference, got %d retained", doc.RetainedCount())
	}
}

func TestWorkspace_UnknownDocument(t *testing.T) {
	ws := New()
	if err := ws.RemovePage("missing", 0); !document.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := ws.RemoveDocument("missing"); !document.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestWorkspace_RemoveDocumentAndReset(t *testing.T) {
	ws := New()
	a := document.New("a.pdf", nil, 1)
	b := document.New("b.pdf", nil, 1)
	c := document.New("c.pdf", nil, 1)
	ws.Add(a, b, c)

	if err := ws.RemoveDocument(b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs := ws.Documents()
	if len(docs) != 2 || docs[0] != a || docs[1] != c {
		t.Errorf("expected [a c], got %v", docs)
	}

	ws.Reset()
	if ws.Len() != 0 {
		t.Errorf("expected empty workspace, got %d", ws.Len())
	}
}

func TestLimits_Check(t *testing.T) {
	l := Limits{MaxFileBytes: 10, MaxBatchBytes: 15, MaxFiles: 2}

	tests := []struct {
		name    string
		uploads []Upload
		limit   bool
		wantMsg string
	}{
		{"ok", []Upload{{"a.pdf", make([]byte, 5)}, {"b.txt", make([]byte, 5)}}, false, ""},
		{"too many", []Upload{{"a.pdf", nil}, {"b.pdf", nil}, {"c.pdf", nil}}, true, "3 files"},
		{"batch too big", []Upload{{"a.pdf", make([]byte, 9)}, {"b.pdf", make([]byte, 9)}}, true, "batch size"},
		{"file too big", []Upload{{"big.pdf", make([]byte, 11)}}, true, "big.pdf"},
		{"bad extension", []Upload{{"sheet.xlsx", nil}}, false, "sheet.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Check(tt.uploads)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !document.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if errors.Is(err, document.ErrLimitExceeded) != tt.limit {
				t.Errorf("expected limit=%v, got %v", tt.limit, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected message to contain %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestLimits_CustomExtensions(t *testing.T) {
	l := Limits{Extensions: map[string]bool{".pdf": true}}
	if err := l.Check([]Upload{{"notes.txt", nil}}); err == nil {
		t.Fatal("expected .txt to be rejected")
	}
	if err := l.Check([]Upload{{"EXAM.PDF", nil}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLimitsFromMB(t *testing.T) {
	l := LimitsFromMB(1, 2, 3)
	if l.MaxFileBytes != 1<<20 || l.MaxBatchBytes != 2<<20 || l.MaxFiles != 3 {
		t.Errorf("unexpected limits %+v", l)
	}
}

func TestParsePageRanges(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1", "[0]"},
		{"1,3,5-7", "[0 2 4 5 6]"},
		{" 7-5 ", ""},
		{"3,1,3,2-3", "[0 1 2]"},
		{"", ""},
		{"0", ""},
		{"8", ""},
		{"a", ""},
		{"1,,2", ""},
		{"2-x", ""},
		{"6-7", "[5 6]"},
	}
	for _, tt := range tests {
		got, err := ParsePageRanges(tt.expr, 7)
		if tt.want == "" {
			if !document.IsValidation(err) {
				t.Errorf("%q: expected validation error, got %v (%v)", tt.expr, err, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.expr, err)
			continue
		}
		if fmt.Sprint(got) != tt.want {
			t.Errorf("%q: expected %s, got %v", tt.expr, tt.want, got)
		}
	}
}

func TestStore_CreateGetDelete(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.Create()
	if store.Get(sess.ID) != sess {
		t.Fatal("expected to get session back")
	}

	err := sess.Do(func(ws *Workspace) error {
		ws.Add(document.New("a.pdf", nil, 1))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = sess.Do(func(ws *Workspace) error {
		if ws.Len() != 1 {
			t.Errorf("expected 1 document, got %d", ws.Len())
		}
		return nil
	})

	if !store.Delete(sess.ID) {
		t.Error("expected delete to report an existing session")
	}
	if store.Get(sess.ID) != nil {
		t.Error("expected nil after delete")
	}
	if store.Delete(sess.ID) {
		t.Error("expected second delete to report false")
	}
}

func TestStore_TTLCleanup(t *testing.T) {
	store := NewStore(50 * time.Millisecond)
	old := store.Create()

	time.Sleep(100 * time.Millisecond)
	fresh := store.Create()

	if store.Get(old.ID) != nil {
		t.Error("expected expired session to be hidden")
	}
	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 session cleaned up, got %d", n)
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh session to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 live session, got %d", store.Len())
	}
}
