package workspace

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfsuite/internal/document"
)

// ParsePageRanges turns a 1-based expression such as "1,3,5-7" into sorted,
// duplicate-free 0-based page indexes for a document of pageCount pages.
func ParsePageRanges(expr string, pageCount int) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, document.ValidationErrorf("pages", "no pages given")
	}

	seen := make(map[int]bool)
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, document.ValidationErrorf("pages", "empty entry in %q", expr)
		}

		lo, hi, err := parseRange(token)
		if err != nil {
			return nil, err
		}
		if lo < 1 || hi > pageCount {
			return nil, document.ValidationErrorf("pages", "%q is out of range (1-%d)", token, pageCount)
		}
		for n := lo; n <= hi; n++ {
			seen[n-1] = true
		}
	}

	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out, nil
}

func parseRange(token string) (int, int, error) {
	first, last, isRange := strings.Cut(token, "-")
	lo, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, document.ValidationErrorf("pages", "invalid page %q", token)
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err := strconv.Atoi(strings.TrimSpace(last))
	if err != nil {
		return 0, 0, document.ValidationErrorf("pages", "invalid page range %q", token)
	}
	if hi < lo {
		return 0, 0, document.ValidationErrorf("pages", "reversed page range %q", token)
	}
	return lo, hi, nil
}
