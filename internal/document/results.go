package document

// ValidationResult reports numbering continuity for one document.
type ValidationResult struct {
	Valid       bool  `json:"valid" yaml:"valid"`
	MaxQuestion int   `json:"max_question" yaml:"max_question"`
	Missing     []int `json:"missing" yaml:"missing"`
	Found       []int `json:"found" yaml:"found"`
}

// ExtractionResult is the outcome of extracting question pages from one document.
type ExtractionResult struct {
	SourceName         string           `json:"source_name"`
	OutputName         string           `json:"output_name"`
	OriginalPageCount  int              `json:"original_page_count"`
	ExtractedPageCount int              `json:"extracted_page_count"`
	RetainedPages      []int            `json:"retained_pages"`
	MarkerPages        []int            `json:"marker_pages"`
	Found              []int            `json:"found"`
	Validation         ValidationResult `json:"validation"`
	Artifact           []byte           `json:"artifact,omitempty"`
}

// MarkersBeyondFirstPage reports whether any page other than page 0 carried a marker.
func (r *ExtractionResult) MarkersBeyondFirstPage() bool {
	for _, idx := range r.MarkerPages {
		if idx > 0 {
			return true
		}
	}
	return false
}

// MergeResult is the outcome of merging retained workspace pages.
type MergeResult struct {
	OutputName string `json:"output_name"`
	PageCount  int    `json:"page_count"`
	Artifact   []byte `json:"artifact,omitempty"`
}

// PageMatch is one page that matched a search pattern.
type PageMatch struct {
	PageNumber  int    `json:"page_number"` // 1-based
	MatchCount  int    `json:"match_count"`
	MatchedText string `json:"matched_text"`
	Snippet     string `json:"snippet"`
}

// SearchResult is the outcome of extracting pattern-matching pages from one document.
type SearchResult struct {
	SourceName         string      `json:"source_name"`
	OutputName         string      `json:"output_name"`
	OriginalPageCount  int         `json:"original_page_count"`
	ExtractedPageCount int         `json:"extracted_page_count"`
	MatchedPages       []int       `json:"matched_pages"` // 1-based
	Matches            []PageMatch `json:"matches"`
	Artifact           []byte      `json:"artifact,omitempty"`
}
