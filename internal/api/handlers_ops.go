package api

import (
	"net/http"
	"strconv"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/service"
)

// wantsJSON reports whether the caller asked for the structured result
// instead of the artifact bytes.
func wantsJSON(r *http.Request) bool {
	return r.URL.Query().Get("format") == "json"
}

func formBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.FormValue(key))
	return b
}

func searchOptions(r *http.Request) service.SearchOptions {
	return service.SearchOptions{
		Pattern:       r.FormValue("pattern"),
		CaseSensitive: formBool(r, "case_sensitive"),
		KeepFirstPage: formBool(r, "keep_first_page"),
	}
}

// parseUpload reads the single posted file and parses it.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (*document.Document, error) {
	u, err := s.readUpload(w, r)
	if err != nil {
		return nil, err
	}
	return s.adapter.Parse(r.Context(), u.Name, u.Data)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	doc, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.extractor.Extract(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, res)
		return
	}
	w.Header().Set("X-Page-Count", strconv.Itoa(res.ExtractedPageCount))
	w.Header().Set("X-Max-Question", strconv.Itoa(res.Validation.MaxQuestion))
	w.Header().Set("X-Missing-Questions", joinInts(res.Validation.Missing))
	sendFile(w, "application/pdf", res.OutputName, res.Artifact)
}

type validateResponse struct {
	Name      string `json:"name"`
	PageCount int    `json:"page_count"`
	document.ValidationResult
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.checker.Validate(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Name:             doc.Name,
		PageCount:        doc.PageCount(),
		ValidationResult: res,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	doc, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.searcher.Search(r.Context(), doc, searchOptions(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, res)
		return
	}
	w.Header().Set("X-Page-Count", strconv.Itoa(res.ExtractedPageCount))
	w.Header().Set("X-Matched-Pages", joinInts(res.MatchedPages))
	sendFile(w, "application/pdf", res.OutputName, res.Artifact)
}
