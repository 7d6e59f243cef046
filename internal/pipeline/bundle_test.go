package pipeline

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestNameAllocator_SkipsTakenCandidates(t *testing.T) {
	a := newNameAllocator()
	got := []string{
		a.allocate("x.pdf"),
		a.allocate("x (2).pdf"),
		a.allocate("X.PDF"),
		a.allocate("x.pdf"),
		a.allocate("README"),
		a.allocate("readme"),
	}
	want := []string{"x.pdf", "x (2).pdf", "X (3).PDF", "x (4).pdf", "README", "readme (2)"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("allocation %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dir/sub/out.pdf", "out.pdf"},
		{`C:\tmp\out.pdf`, "out.pdf"},
		{"we:ird*name.pdf", "we_ird_name.pdf"},
		{"", "artifact.pdf"},
	}
	for _, tt := range tests {
		if got := artifactName(tt.in); got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestBundle_SkipsErrorsAndEmpty(t *testing.T) {
	items := []Item{
		{Name: "a", Status: StatusSuccess, ArtifactName: "a.pdf", Artifact: []byte("A")},
		{Name: "b", Status: StatusError},
		{Name: "c", Status: StatusWarning, ArtifactName: "a.pdf", Artifact: []byte("C")},
	}
	pkg, err := bundle(BundleName, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.Files != 2 {
		t.Errorf("expected 2 files, got %d", pkg.Files)
	}
	if items[2].ArtifactName != "a (2).pdf" {
		t.Errorf("expected resolved name written back, got %q", items[2].ArtifactName)
	}

	none, err := bundle(BundleName, []Item{{Name: "b", Status: StatusError}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if none != nil {
		t.Errorf("expected no package, got %+v", none)
	}
}

func TestBundle_Deterministic(t *testing.T) {
	items := func() []Item {
		return []Item{
			{Name: "a", Status: StatusSuccess, ArtifactName: "a.pdf", Artifact: []byte("first")},
			{Name: "b", Status: StatusSuccess, ArtifactName: "b.pdf", Artifact: []byte("second")},
		}
	}
	first, err := bundle(BundleName, items())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := bundle(BundleName, items())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("expected identical archives for identical items")
	}

	zr, err := zip.NewReader(bytes.NewReader(first.Data), int64(len(first.Data)))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	for _, f := range zr.File {
		if !f.Modified.Equal(bundleTime) {
			t.Errorf("%s: expected modified %v, got %v", f.Name, bundleTime, f.Modified)
		}
	}
}
