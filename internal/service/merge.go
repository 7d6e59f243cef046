package service

import (
	"context"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/parser"
)

// MergedOutputName is the file name of every merge artifact.
const MergedOutputName = "merged_output.pdf"

// Merger concatenates the retained pages of an ordered document list.
type Merger struct {
	Adapter parser.Adapter
}

func NewMerger(adapter parser.Adapter) *Merger {
	return &Merger{Adapter: adapter}
}

// Merge writes documents in the given order, each contributing its retained
// pages in original order. Nothing retained is a ValidationError.
func (m *Merger) Merge(ctx context.Context, docs []*document.Document) (*document.MergeResult, error) {
	var parts []document.Selection
	total := 0
	for _, doc := range docs {
		kept := doc.RetainedIndexes()
		if len(kept) == 0 {
			continue
		}
		parts = append(parts, document.Selection{Doc: doc, Indexes: kept})
		total += len(kept)
	}
	if total == 0 {
		return nil, document.ValidationErrorf("merge", "no retained pages to merge")
	}

	artifact, err := m.Adapter.Write(ctx, parts...)
	if err != nil {
		return nil, err
	}
	return &document.MergeResult{
		OutputName: MergedOutputName,
		PageCount:  total,
		Artifact:   artifact,
	}, nil
}
