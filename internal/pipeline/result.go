package pipeline

import (
	"fmt"

	"github.com/dgallion1/pdfsuite/internal/document"
)

// Status classifies one batch item.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Operation selects what a batch does to each item.
type Operation string

const (
	OpExtraction Operation = "extraction"
	OpValidation Operation = "validation"
	OpSearch     Operation = "search"
)

// ParseOperation accepts the operation names and the short CLI/HTTP
// aliases ("extract", "validate").
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "extraction", "extract":
		return OpExtraction, nil
	case "validation", "validate":
		return OpValidation, nil
	case "search":
		return OpSearch, nil
	}
	return "", document.ValidationErrorf("batch", "unknown operation %q", s)
}

// Message is one line of item feedback.
type Message struct {
	Level string `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
}

// Metrics are the typed per-item figures. Fields irrelevant to an
// operation stay zero.
type Metrics struct {
	OriginalPages    int   `json:"original_pages" yaml:"original_pages"`
	ExtractedPages   int   `json:"extracted_pages,omitempty" yaml:"extracted_pages,omitempty"`
	MatchedPages     int   `json:"matched_pages,omitempty" yaml:"matched_pages,omitempty"`
	MaxQuestion      int   `json:"max_question" yaml:"max_question"`
	FoundQuestions   []int `json:"found_questions" yaml:"found_questions"`
	MissingQuestions []int `json:"missing_questions" yaml:"missing_questions"`
}

// Item is one row of a batch result, in input order.
type Item struct {
	Name         string    `json:"name" yaml:"name"`
	Status       Status    `json:"status" yaml:"status"`
	Messages     []Message `json:"messages" yaml:"messages"`
	Metrics      Metrics   `json:"metrics" yaml:"metrics"`
	ArtifactName string    `json:"artifact_name,omitempty" yaml:"artifact_name,omitempty"`
	Artifact     []byte    `json:"-" yaml:"-"`
}

func errorItem(name string, err error) Item {
	return Item{
		Name:     name,
		Status:   StatusError,
		Messages: []Message{{Level: "error", Text: err.Error()}},
		Metrics:  Metrics{FoundQuestions: []int{}, MissingQuestions: []int{}},
	}
}

// ValidationRow is the flat per-document view of a validation batch.
type ValidationRow struct {
	Name        string `json:"name" yaml:"name"`
	Valid       bool   `json:"valid" yaml:"valid"`
	MaxQuestion int    `json:"max_question" yaml:"max_question"`
	Missing     []int  `json:"missing" yaml:"missing"`
	Status      Status `json:"status" yaml:"status"`
}

// Package is the ZIP bundle of an extraction or search batch.
type Package struct {
	Name  string `json:"name" yaml:"name"`
	Files int    `json:"files" yaml:"files"`
	Data  []byte `json:"-" yaml:"-"`
}

// BatchResult aggregates one batch run.
type BatchResult struct {
	Operation    Operation       `json:"operation" yaml:"operation"`
	Items        []Item          `json:"items" yaml:"items"`
	SuccessCount int             `json:"success_count" yaml:"success_count"`
	WarningCount int             `json:"warning_count" yaml:"warning_count"`
	ErrorCount   int             `json:"error_count" yaml:"error_count"`
	Package      *Package        `json:"package,omitempty" yaml:"package,omitempty"`
	Rows         []ValidationRow `json:"rows,omitempty" yaml:"rows,omitempty"`
}

func (r *BatchResult) count() {
	r.SuccessCount, r.WarningCount, r.ErrorCount = 0, 0, 0
	for _, it := range r.Items {
		switch it.Status {
		case StatusSuccess:
			r.SuccessCount++
		case StatusWarning:
			r.WarningCount++
		default:
			r.ErrorCount++
		}
	}
}

// Summary is a one-line count of statuses.
func (r *BatchResult) Summary() string {
	return fmt.Sprintf("success=%d warning=%d error=%d", r.SuccessCount, r.WarningCount, r.ErrorCount)
}
