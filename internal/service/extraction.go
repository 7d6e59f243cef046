// Package service holds the per-document operations: question-page
// extraction, numbering validation, merging retained pages and regex page
// search. Services are stateless; every call takes the document it works on.
package service

import (
	"context"
	"slices"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/parser"
	"github.com/dgallion1/pdfsuite/internal/questions"
)

// Extractor keeps the first page plus every page carrying a question marker.
type Extractor struct {
	Adapter   parser.Adapter
	Validator questions.Validator
}

func NewExtractor(adapter parser.Adapter, validator questions.Validator) *Extractor {
	return &Extractor{Adapter: adapter, Validator: validator}
}

// Extract writes an artifact holding page 0 and every marker page in
// original order. The document's own retain state is not consulted or
// changed.
func (e *Extractor) Extract(ctx context.Context, doc *document.Document) (*document.ExtractionResult, error) {
	if doc.PageCount() == 0 {
		return nil, document.ValidationErrorf("extract", "%s has no pages", doc.Name)
	}

	found := make(questions.Set)
	kept := []int{}
	markerPages := []int{}
	for i := 0; i < doc.PageCount(); i++ {
		text, err := e.Adapter.PageText(ctx, doc, i)
		if err != nil {
			return nil, err
		}
		pageQuestions := questions.Detect(text)
		if len(pageQuestions) > 0 {
			markerPages = append(markerPages, i)
			found.Union(pageQuestions)
		}
		if i == 0 || len(pageQuestions) > 0 {
			kept = append(kept, i)
		}
	}

	validation, err := e.Validator.Validate(found)
	if err != nil {
		return nil, err
	}

	artifact, err := e.Adapter.Write(ctx, document.Selection{Doc: doc, Indexes: kept})
	if err != nil {
		return nil, err
	}

	return &document.ExtractionResult{
		SourceName:         doc.Name,
		OutputName:         SmartName(doc.Name),
		OriginalPageCount:  doc.PageCount(),
		ExtractedPageCount: len(kept),
		RetainedPages:      kept,
		MarkerPages:        markerPages,
		Found:              slices.Clone(validation.Found),
		Validation:         validation,
		Artifact:           artifact,
	}, nil
}
