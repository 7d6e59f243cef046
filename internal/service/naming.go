package service

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	separatorRun = regexp.MustCompile(`[_\-]+`)
	monthPattern = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\b`)
	yearPattern  = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
)

var canonicalMonths = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

// SmartName derives the output file name for an extraction from its source
// name. "June_2024-Exam.pdf" becomes "June 2024 solutions.pdf"; a name with
// neither month nor year becomes "<base>_solutions.pdf".
func SmartName(sourceName string) string {
	base := filepath.Base(sourceName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	normalized := separatorRun.ReplaceAllString(base, " ")

	month := ""
	if m := monthPattern.FindString(normalized); m != "" {
		month = canonicalMonths[strings.ToLower(m[:3])]
	}
	year := yearPattern.FindString(normalized)

	switch {
	case month != "" && year != "":
		return month + " " + year + " solutions.pdf"
	case month != "":
		return month + " solutions.pdf"
	case year != "":
		return year + " solutions.pdf"
	}
	if base == "" {
		base = "output"
	}
	return base + "_solutions.pdf"
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._() -]`)

// SanitizeFileName replaces every character outside [A-Za-z0-9._() -] with
// an underscore. An empty result becomes "output".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(unsafeNameChars.ReplaceAllString(name, "_"))
	if name == "" {
		return "output"
	}
	return name
}

// Slugify converts a string to a path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = regexp.MustCompile(`[^a-z0-9-]`).ReplaceAllString(s, "-")
	s = regexp.MustCompile(`-+`).ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}
