// Package report renders batch results as CSV, a plain-text summary, JSON
// or YAML.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/pipeline"
)

// Format names a report encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "txt"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts the format names plus "text" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", document.ValidationErrorf("report", "unknown report format %q", s)
}

// ContentType returns the HTTP media type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FileName returns the download name of a report, e.g.
// "validation_batch_report.csv".
func FileName(op pipeline.Operation, f Format) string {
	return fmt.Sprintf("%s_batch_report.%s", op, f)
}

// Write encodes r in format f.
func Write(w io.Writer, f Format, r *pipeline.BatchResult) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatText:
		return WriteText(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	}
	return document.ValidationErrorf("report", "unknown report format %q", f)
}

var csvHeader = []string{"source_name", "status", "max_question", "missing_questions", "found_questions", "messages"}

// WriteCSV writes one row per item.
func WriteCSV(w io.Writer, r *pipeline.BatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range r.Items {
		maxQ, missing, found := "", "", ""
		if it.Status != pipeline.StatusError {
			maxQ = strconv.Itoa(it.Metrics.MaxQuestion)
			missing = joinInts(it.Metrics.MissingQuestions)
			if missing == "" {
				missing = "None"
			}
			found = joinInts(it.Metrics.FoundQuestions)
		}
		row := []string{it.Name, string(it.Status), maxQ, missing, found, messageText(it.Messages, " | ")}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", it.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText writes a human-readable summary.
func WriteText(w io.Writer, r *pipeline.BatchResult) error {
	var b strings.Builder
	b.WriteString(title(r.Operation) + " Batch Summary\n")
	b.WriteString(r.Summary() + "\n")
	for _, it := range r.Items {
		b.WriteString("\n")
		fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(string(it.Status)), it.Name)
		if m := metricsLine(r.Operation, it); m != "" {
			b.WriteString("metrics: " + m + "\n")
		}
		if it.ArtifactName != "" {
			b.WriteString("artifact: " + it.ArtifactName + "\n")
		}
		for _, msg := range it.Messages {
			b.WriteString("- " + msg.Text + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes the full result as indented JSON.
func WriteJSON(w io.Writer, r *pipeline.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes the full result as YAML.
func WriteYAML(w io.Writer, r *pipeline.BatchResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func title(op pipeline.Operation) string {
	s := string(op)
	if s == "" {
		return "Batch"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func metricsLine(op pipeline.Operation, it pipeline.Item) string {
	if it.Status == pipeline.StatusError {
		return ""
	}
	m := it.Metrics
	parts := []string{fmt.Sprintf("original_pages=%d", m.OriginalPages)}
	switch op {
	case pipeline.OpExtraction:
		parts = append(parts, fmt.Sprintf("extracted_pages=%d", m.ExtractedPages), fmt.Sprintf("max_question=%d", m.MaxQuestion))
	case pipeline.OpSearch:
		parts = append(parts, fmt.Sprintf("matched_pages=%d", m.MatchedPages), fmt.Sprintf("extracted_pages=%d", m.ExtractedPages))
	default:
		missing := joinInts(m.MissingQuestions)
		if missing == "" {
			missing = "None"
		}
		parts = append(parts,
			fmt.Sprintf("max_question=%d", m.MaxQuestion),
			"missing_questions="+missing,
			"found_questions="+joinInts(m.FoundQuestions))
	}
	return strings.Join(parts, ", ")
}

func messageText(msgs []pipeline.Message, sep string) string {
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}
	return strings.Join(texts, sep)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
