package service

import (
	"context"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/parser"
	"github.com/dgallion1/pdfsuite/internal/questions"
)

// Checker validates question numbering across every page of a document,
// retained or not.
type Checker struct {
	Adapter   parser.Adapter
	Validator questions.Validator
}

func NewChecker(adapter parser.Adapter, validator questions.Validator) *Checker {
	return &Checker{Adapter: adapter, Validator: validator}
}

func (c *Checker) Validate(ctx context.Context, doc *document.Document) (document.ValidationResult, error) {
	found := make(questions.Set)
	for i := 0; i < doc.PageCount(); i++ {
		text, err := c.Adapter.PageText(ctx, doc, i)
		if err != nil {
			return document.ValidationResult{}, err
		}
		found.Union(questions.Detect(text))
	}
	return c.Validator.Validate(found)
}
