// Package questions detects numbered question markers in page text and
// checks that the detected numbering is continuous.
package questions

import (
	"math"
	"regexp"
	"sort"
	"strconv"
)

// The separator accepts any Unicode space; PDF text layers often carry NBSP.
var markerPattern = regexp.MustCompile(`(?i)\bquestion[\s\v\p{Z}]+(\d+)\b`)

// Set is a duplicate-free collection of question numbers.
type Set map[int]struct{}

// Add inserts n.
func (s Set) Add(n int) {
	s[n] = struct{}{}
}

// Union adds every member of other to s.
func (s Set) Union(other Set) {
	for n := range other {
		s[n] = struct{}{}
	}
}

// Sorted returns the members in ascending order. Never nil.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// SetOf builds a Set from values.
func SetOf(values ...int) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Detect returns the question numbers marked in text: the word "question"
// in any case, whitespace of any kind, then a digit run bounded by a word boundary.
// "Question 5a" does not match. Digit runs too large for an int saturate
// to math.MaxInt so the continuity ceiling rejects them.
func Detect(text string) Set {
	found := make(Set)
	for _, m := range markerPattern.FindAllStringSubmatch(text, -1) {
		found.Add(parseMarker(m[1]))
	}
	return found
}

func parseMarker(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Only a range error is possible for a pure digit run.
		return math.MaxInt
	}
	return n
}
