package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/parser"
	"github.com/dgallion1/pdfsuite/internal/questions"
	"github.com/dgallion1/pdfsuite/internal/service"
)

// ErrBatchCancelled marks items that never started because the batch
// context was cancelled.
var ErrBatchCancelled = errors.New("batch cancelled")

// Input is one batch item: raw bytes to parse, or an already parsed document.
type Input struct {
	Name string
	Data []byte
	Doc  *document.Document
}

// Options carries per-operation settings.
type Options struct {
	Search service.SearchOptions
}

// ProgressFunc is called once per finished item. Calls are serialized.
type ProgressFunc func(done, total int, item Item)

// Runner applies one operation to many documents. Items never abort the
// batch: every failure becomes an error row.
type Runner struct {
	adapter   parser.Adapter
	extractor *service.Extractor
	checker   *service.Checker
	searcher  *service.Searcher
	bundle    func(name string, items []Item) (*Package, error)
	log       *slog.Logger

	// Concurrency bounds how many items run at once. 1 is sequential.
	Concurrency int
	OnItem      ProgressFunc
}

func NewRunner(adapter parser.Adapter, validator questions.Validator, concurrency int, log *slog.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		adapter:     adapter,
		extractor:   service.NewExtractor(adapter, validator),
		checker:     service.NewChecker(adapter, validator),
		searcher:    service.NewSearcher(adapter),
		bundle:      bundle,
		log:         log,
		Concurrency: concurrency,
	}
}

// Run processes inputs and returns rows in input order.
func (r *Runner) Run(ctx context.Context, op Operation, inputs []Input, opts Options) (*BatchResult, error) {
	switch op {
	case OpExtraction, OpValidation:
	case OpSearch:
		if _, err := service.CompilePattern(opts.Search.Pattern, opts.Search.CaseSensitive); err != nil {
			return nil, err
		}
	default:
		return nil, document.ValidationErrorf("batch", "unknown operation %q", op)
	}

	log := r.log.With("operation", string(op), "items", len(inputs))
	log.Info("batch started")

	items := make([]Item, len(inputs))
	var mu sync.Mutex
	done := 0

	g := new(errgroup.Group)
	g.SetLimit(r.Concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			var item Item
			if ctx.Err() != nil {
				item = errorItem(inputName(in), ErrBatchCancelled)
			} else {
				item = r.runItem(ctx, op, in, opts)
			}
			if item.Status == StatusError {
				log.Warn("batch item failed", "index", i, "name", item.Name, "error", item.Messages[0].Text)
			}

			mu.Lock()
			items[i] = item
			done++
			if r.OnItem != nil {
				r.OnItem(done, len(inputs), item)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	result := &BatchResult{Operation: op, Items: items}
	switch op {
	case OpExtraction:
		result.Package = r.pack(log, BundleName, result.Items)
	case OpSearch:
		result.Package = r.pack(log, SearchBundleName, result.Items)
	case OpValidation:
		result.Rows = validationRows(result.Items)
	}
	result.count()

	log.Info("batch finished", "success", result.SuccessCount, "warning", result.WarningCount, "error", result.ErrorCount)
	return result, nil
}

// pack bundles the artifacts. A failure is logged and leaves the batch
// without a package; the per-item rows are still reported.
func (r *Runner) pack(log *slog.Logger, name string, items []Item) *Package {
	pkg, err := r.bundle(name, items)
	if err != nil {
		log.Error("bundle failed", "package", name, "error", err)
		return nil
	}
	return pkg
}

func inputName(in Input) string {
	if in.Name == "" && in.Doc != nil {
		return in.Doc.Name
	}
	return in.Name
}

func (r *Runner) runItem(ctx context.Context, op Operation, in Input, opts Options) (item Item) {
	name := inputName(in)
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("batch item panicked", "name", name, "panic", rec)
			item = errorItem(name, fmt.Errorf("internal error: %v", rec))
		}
	}()

	doc := in.Doc
	if doc == nil {
		var err error
		doc, err = r.adapter.Parse(ctx, name, in.Data)
		if err != nil {
			return errorItem(name, err)
		}
	}

	switch op {
	case OpExtraction:
		res, err := r.extractor.Extract(ctx, doc)
		if err != nil {
			return errorItem(name, err)
		}
		return extractionItem(name, res)
	case OpValidation:
		res, err := r.checker.Validate(ctx, doc)
		if err != nil {
			return errorItem(name, err)
		}
		return validationItem(name, doc.PageCount(), res)
	default:
		res, err := r.searcher.Search(ctx, doc, opts.Search)
		if err != nil {
			return errorItem(name, err)
		}
		return searchItem(name, res, opts.Search.KeepFirstPage)
	}
}

func extractionItem(name string, res *document.ExtractionResult) Item {
	v := res.Validation
	item := Item{
		Name:   name,
		Status: StatusSuccess,
		Messages: []Message{
			{Level: "info", Text: fmt.Sprintf("Found %d questions.", len(res.Found))},
		},
		Metrics: Metrics{
			OriginalPages:    res.OriginalPageCount,
			ExtractedPages:   res.ExtractedPageCount,
			MaxQuestion:      v.MaxQuestion,
			FoundQuestions:   v.Found,
			MissingQuestions: v.Missing,
		},
		ArtifactName: res.OutputName,
		Artifact:     res.Artifact,
	}
	if !v.Valid {
		item.Status = StatusWarning
		item.Messages = append(item.Messages, Message{
			Level: "warning",
			Text:  "Missing questions: " + joinInts(v.Missing, ", "),
		})
	}
	if !res.MarkersBeyondFirstPage() {
		item.Status = StatusWarning
		item.Messages = append(item.Messages, Message{
			Level: "warning",
			Text:  "No question markers beyond the first page; output includes first page only.",
		})
	}
	return item
}

func validationItem(name string, pages int, v document.ValidationResult) Item {
	text := "No questions found (valid by rule)."
	if v.MaxQuestion > 0 {
		missing := "None"
		if len(v.Missing) > 0 {
			missing = joinInts(v.Missing, ",")
		}
		text = fmt.Sprintf("Max question: %d; Missing: %s", v.MaxQuestion, missing)
	}
	status := StatusSuccess
	if !v.Valid {
		status = StatusWarning
	}
	return Item{
		Name:     name,
		Status:   status,
		Messages: []Message{{Level: "info", Text: text}},
		Metrics: Metrics{
			OriginalPages:    pages,
			MaxQuestion:      v.MaxQuestion,
			FoundQuestions:   v.Found,
			MissingQuestions: v.Missing,
		},
	}
}

func searchItem(name string, res *document.SearchResult, keepFirst bool) Item {
	item := Item{
		Name:   name,
		Status: StatusSuccess,
		Messages: []Message{{
			Level: "info",
			Text:  fmt.Sprintf("Matched %d page(s); extracted %d page(s).", len(res.MatchedPages), res.ExtractedPageCount),
		}},
		Metrics: Metrics{
			OriginalPages:    res.OriginalPageCount,
			ExtractedPages:   res.ExtractedPageCount,
			MatchedPages:     len(res.MatchedPages),
			FoundQuestions:   []int{},
			MissingQuestions: []int{},
		},
		ArtifactName: res.OutputName,
		Artifact:     res.Artifact,
	}
	if len(res.MatchedPages) == 0 {
		item.Status = StatusWarning
		if keepFirst {
			item.Messages = append(item.Messages, Message{
				Level: "warning",
				Text:  "No regex match found; output includes first page only.",
			})
		}
	}
	return item
}

func validationRows(items []Item) []ValidationRow {
	rows := make([]ValidationRow, len(items))
	for i, it := range items {
		rows[i] = ValidationRow{
			Name:        it.Name,
			Valid:       it.Status == StatusSuccess,
			MaxQuestion: it.Metrics.MaxQuestion,
			Missing:     it.Metrics.MissingQuestions,
			Status:      it.Status,
		}
	}
	return rows
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, sep)
}
