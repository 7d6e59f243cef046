package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/pdfsuite/internal/config"
	"github.com/dgallion1/pdfsuite/internal/parser"
	"github.com/dgallion1/pdfsuite/internal/parser/parsertest"
)

// runCLI executes the root command in a fresh temp directory with the fake
// adapter and returns stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := &app{
		out:    &out,
		errOut: &errOut,
		newAdapter: func(config.Config) parser.Adapter {
			return parsertest.New()
		},
	}
	cmd := newRootCmd(a)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	t.Chdir(dir)
	err := cmd.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func readPages(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
	return parsertest.Decode(data)
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "pdfsuite dev\n" {
		t.Errorf("expected version line, got %q", out)
	}
}

func TestExtract_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "exam.pdf", parsertest.Pages("Cover", "Question 1", "notes", "Question 2"))
	outDir := filepath.Join(dir, "out")

	out, err := runCLI(t, dir, "extract", in, "-o", outDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "✓ exam.pdf") || !strings.Contains(out, "Found 2 questions.") {
		t.Errorf("unexpected output:\n%s", out)
	}
	pages := readPages(t, filepath.Join(outDir, "exam_solutions.pdf"))
	if strings.Join(pages, "|") != "Cover|Question 1|Question 2" {
		t.Errorf("unexpected pages %v", pages)
	}
}

func TestExtract_FailedItemIsAnError(t *testing.T) {
	dir := t.TempDir()
	good := writeInput(t, dir, "good.pdf", parsertest.Pages("Cover", "Question 1"))
	bad := writeInput(t, dir, "bad.pdf", parsertest.Corrupt)

	out, err := runCLI(t, dir, "extract", good, bad, "-o", dir)
	if err == nil || err.Error() != "1 of 2 item(s) failed" {
		t.Fatalf("expected failure count error, got %v", err)
	}
	if !strings.Contains(out, "✓ good.pdf") || !strings.Contains(out, "✗ bad.pdf") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestValidate_JSON(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "gap.pdf", parsertest.Pages("Question 1", "Question 3"))

	out, err := runCLI(t, dir, "--json", "validate", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var items []struct {
		Name    string `json:"name"`
		Status  string `json:"status"`
		Metrics struct {
			MissingQuestions []int `json:"missing_questions"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if len(items) != 1 || items[0].Status != "warning" {
		t.Fatalf("unexpected items %+v", items)
	}
	if len(items[0].Metrics.MissingQuestions) != 1 || items[0].Metrics.MissingQuestions[0] != 2 {
		t.Errorf("expected missing [2], got %v", items[0].Metrics.MissingQuestions)
	}
}

func TestValidate_RejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "notes.exe", []byte("x"))
	if _, err := runCLI(t, dir, "validate", in); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "notes.pdf", parsertest.Pages("cover", "a derivative here", "other"))

	if _, err := runCLI(t, dir, "search", in, "-o", dir); err == nil {
		t.Error("expected error without a pattern")
	}

	out, err := runCLI(t, dir, "search", in, "--pattern", "Derivative", "--keep-first-page", "-o", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Matched 1 page(s); extracted 2 page(s).") {
		t.Errorf("unexpected output:\n%s", out)
	}
	pages := readPages(t, filepath.Join(dir, "notes_regex_extract_derivative.pdf"))
	if strings.Join(pages, "|") != "cover|a derivative here" {
		t.Errorf("unexpected pages %v", pages)
	}
}

func TestMerge_WithRemovals(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.pdf", parsertest.Pages("a1", "a2", "a3"))
	b := writeInput(t, dir, "b.pdf", parsertest.Pages("b1", "b2"))

	out, err := runCLI(t, dir, "merge", a, b, "--remove", "1:2", "--remove", "2:1", "-o", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "merged 3 page(s) from 2 file(s)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	pages := readPages(t, filepath.Join(dir, "merged_output.pdf"))
	if strings.Join(pages, "|") != "a1|a3|b2" {
		t.Errorf("unexpected pages %v", pages)
	}
}

func TestMerge_Errors(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.pdf", parsertest.Pages("a1"))

	tests := map[string][]string{
		"bad position":    {"merge", a, "--remove", "2:1"},
		"missing colon":   {"merge", a, "--remove", "1"},
		"page overflow":   {"merge", a, "--remove", "1:5"},
		"nothing to keep": {"merge", a, "--remove", "1:1"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := runCLI(t, dir, append(args, "-o", dir)...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBatch_ValidationWritesReports(t *testing.T) {
	dir := t.TempDir()
	ok := writeInput(t, dir, "ok.pdf", parsertest.Pages("Question 1", "Question 2"))
	gap := writeInput(t, dir, "gap.pdf", parsertest.Pages("Question 1", "Question 3"))
	bad := writeInput(t, dir, "bad.pdf", parsertest.Corrupt)
	outDir := filepath.Join(dir, "reports")

	out, err := runCLI(t, dir, "batch", "validate", ok, gap, bad, "-o", outDir, "--report", "csv,txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "success=1 warning=1 error=1") {
		t.Errorf("unexpected output:\n%s", out)
	}
	for _, name := range []string{"validation_batch_report.csv", "validation_batch_report.txt"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "batch_extraction_outputs.zip")); err == nil {
		t.Error("expected no bundle for a validation batch")
	}
}

func TestBatch_ExtractionBundle(t *testing.T) {
	dir := t.TempDir()
	first := writeInput(t, dir, "march_2024.pdf", parsertest.Pages("Cover", "Question 1"))
	sub := filepath.Join(dir, "copy")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	second := writeInput(t, sub, "march_2024.pdf", parsertest.Pages("Cover", "Question 1", "Question 2"))

	if _, err := runCLI(t, dir, "batch", "extract", first, second, "-o", dir, "--report", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zr, err := zip.OpenReader(filepath.Join(dir, "batch_extraction_outputs.zip"))
	if err != nil {
		t.Fatalf("expected bundle: %v", err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	want := "March 2024 solutions.pdf|March 2024 solutions (2).pdf"
	if strings.Join(names, "|") != want {
		t.Errorf("expected %s, got %v", want, names)
	}
	if _, err := os.Stat(filepath.Join(dir, "extraction_batch_report.json")); err != nil {
		t.Errorf("expected json report: %v", err)
	}
}

func TestBatch_RejectsUnknownInput(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "a.pdf", parsertest.Pages("x"))

	if _, err := runCLI(t, dir, "batch", "shred", in); err == nil {
		t.Error("expected error for unknown operation")
	}
	if _, err := runCLI(t, dir, "batch", "validate", in, "--report", "pdf"); err == nil {
		t.Error("expected error for unknown report format")
	}
}
