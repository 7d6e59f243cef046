package service

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/parser"
)

const snippetRadius = 70

// SearchOptions configures a regex page search.
type SearchOptions struct {
	Pattern       string `json:"pattern"`
	CaseSensitive bool   `json:"case_sensitive"`
	KeepFirstPage bool   `json:"keep_first_page"`
}

// Searcher keeps the pages whose text matches a regular expression.
type Searcher struct {
	Adapter parser.Adapter
}

func NewSearcher(adapter parser.Adapter) *Searcher {
	return &Searcher{Adapter: adapter}
}

// CompilePattern trims and compiles pattern in multiline mode, adding
// case-insensitivity unless caseSensitive is set.
func CompilePattern(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	cleaned := strings.TrimSpace(pattern)
	if cleaned == "" {
		return nil, document.ValidationErrorf("search", "enter a regex pattern")
	}
	flags := "(?m)"
	if !caseSensitive {
		flags = "(?mi)"
	}
	re, err := regexp.Compile(flags + cleaned)
	if err != nil {
		return nil, document.ValidationErrorf("search", "invalid regex pattern: %v", err)
	}
	return re, nil
}

// Search writes an artifact of every matching page, plus page 0 when
// opts.KeepFirstPage is set. Nothing kept is a ValidationError.
func (s *Searcher) Search(ctx context.Context, doc *document.Document, opts SearchOptions) (*document.SearchResult, error) {
	re, err := CompilePattern(opts.Pattern, opts.CaseSensitive)
	if err != nil {
		return nil, err
	}

	kept := []int{}
	matched := []int{}
	matches := []document.PageMatch{}
	for i := 0; i < doc.PageCount(); i++ {
		text, err := s.Adapter.PageText(ctx, doc, i)
		if err != nil {
			return nil, err
		}
		locs := re.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			if i == 0 && opts.KeepFirstPage {
				kept = append(kept, i)
			}
			continue
		}
		kept = append(kept, i)
		matched = append(matched, i+1)
		first := locs[0]
		matches = append(matches, document.PageMatch{
			PageNumber:  i + 1,
			MatchCount:  len(locs),
			MatchedText: text[first[0]:first[1]],
			Snippet:     snippet(text, first[0], first[1]),
		})
	}
	if len(kept) == 0 {
		return nil, document.ValidationErrorf("search", "no pages of %s matched the regex pattern", doc.Name)
	}

	artifact, err := s.Adapter.Write(ctx, document.Selection{Doc: doc, Indexes: kept})
	if err != nil {
		return nil, err
	}
	return &document.SearchResult{
		SourceName:         doc.Name,
		OutputName:         SearchOutputName(doc.Name, opts.Pattern),
		OriginalPageCount:  doc.PageCount(),
		ExtractedPageCount: len(kept),
		MatchedPages:       matched,
		Matches:            matches,
		Artifact:           artifact,
	}, nil
}

// SearchOutputName is "<stem>_regex_extract_<pattern slug>.pdf", dropping
// the slug when the pattern has no slug-safe characters.
func SearchOutputName(sourceName, pattern string) string {
	base := filepath.Base(sourceName)
	stem := SanitizeFileName(strings.TrimSuffix(base, filepath.Ext(base)))
	if slug := Slugify(pattern); slug != "" {
		return stem + "_regex_extract_" + slug + ".pdf"
	}
	return stem + "_regex_extract.pdf"
}

// snippet returns the match with up to snippetRadius characters either
// side, whitespace collapsed, with "..." where text was cut.
func snippet(text string, start, end int) string {
	from := start
	for n := 0; n < snippetRadius && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for n := 0; n < snippetRadius && to < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}

	out := strings.Join(strings.Fields(text[from:to]), " ")
	if from > 0 {
		out = "..." + out
	}
	if to < len(text) {
		out += "..."
	}
	return out
}
