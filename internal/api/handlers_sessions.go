package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/pdfsuite/internal/document"
	"github.com/dgallion1/pdfsuite/internal/parser"
	"github.com/dgallion1/pdfsuite/internal/workspace"
)

type workspaceView struct {
	SessionID     string               `json:"session_id"`
	Documents     []*document.Document `json:"documents"`
	RetainedPages int                  `json:"retained_pages"`
}

// view renders the workspace to JSON while the session lock is held.
func view(sess *workspace.Session, ws *workspace.Workspace) (json.RawMessage, error) {
	b, err := json.Marshal(workspaceView{
		SessionID:     sess.ID,
		Documents:     ws.Documents(),
		RetainedPages: ws.RetainedPageCount(),
	})
	if err != nil {
		return nil, document.SystemError("session", "failed to encode workspace", err)
	}
	return b, nil
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) *workspace.Session {
	sess := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
	}
	return sess
}

// respondView runs fn under the session lock and answers with the resulting workspace.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request, sess *workspace.Session, code int, fn func(*workspace.Workspace) error) {
	var body json.RawMessage
	err := sess.Do(func(ws *workspace.Workspace) error {
		if fn != nil {
			if err := fn(ws); err != nil {
				return err
			}
		}
		var err error
		body, err = view(sess, ws)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, code, body)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.log.Info("session created", "session_id", sess.ID)
	s.respondView(w, r, sess, http.StatusCreated, nil)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "sessionID")) {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	s.respondView(w, r, sess, http.StatusOK, func(ws *workspace.Workspace) error {
		ws.Reset()
		return nil
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	s.respondView(w, r, sess, http.StatusOK, nil)
}

// handleAddDocuments parses every posted file and appends them to the
// workspace. One unreadable file rejects the whole upload.
func (s *Server) handleAddDocuments(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	uploads, err := s.readUploads(w, r, "files")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	docs := make([]*document.Document, 0, len(uploads))
	for _, u := range uploads {
		doc, err := s.adapter.Parse(r.Context(), u.Name, u.Data)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		docs = append(docs, doc)
	}

	s.respondView(w, r, sess, http.StatusCreated, func(ws *workspace.Workspace) error {
		ws.Add(docs...)
		return nil
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	docID := chi.URLParam(r, "docID")
	s.respondView(w, r, sess, http.StatusOK, func(ws *workspace.Workspace) error {
		return ws.RemoveDocument(docID)
	})
}

// removePagesRequest names pages either as a 1-based range expression or
// as 0-based indexes.
type removePagesRequest struct {
	Pages   string `json:"pages"`
	Indexes []int  `json:"indexes"`
}

func (s *Server) handleRemovePages(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req removePagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	docID := chi.URLParam(r, "docID")

	s.respondView(w, r, sess, http.StatusOK, func(ws *workspace.Workspace) error {
		indexes := req.Indexes
		if req.Pages != "" {
			doc, err := ws.Document(docID)
			if err != nil {
				return err
			}
			indexes, err = workspace.ParsePageRanges(req.Pages, doc.PageCount())
			if err != nil {
				return err
			}
		}
		if len(indexes) == 0 {
			return document.ValidationErrorf("remove_pages", "no pages given")
		}
		return ws.RemovePages(docID, indexes)
	})
}

// handleThumbnail renders one page. The page path segment is 1-based.
// Each "highlight" query value is a literal term marked on the preview.
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		jsonError(w, "page must be a positive integer", http.StatusBadRequest)
		return
	}

	var doc *document.Document
	err = sess.Do(func(ws *workspace.Workspace) error {
		var err error
		doc, err = ws.Document(chi.URLParam(r, "docID"))
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var thumb document.Thumbnail
	terms := r.URL.Query()["highlight"]
	if h, ok := s.adapter.(parser.Highlighter); ok && len(terms) > 0 {
		thumb, err = h.RenderHighlighted(r.Context(), doc, page-1, terms)
	} else {
		thumb, err = s.adapter.RenderThumbnail(r.Context(), doc, page-1)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", thumb.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write(thumb.Data)
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var res *document.MergeResult
	err := sess.Do(func(ws *workspace.Workspace) error {
		var err error
		res, err = s.merger.Merge(r.Context(), ws.Documents())
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Page-Count", strconv.Itoa(res.PageCount))
	sendFile(w, "application/pdf", res.OutputName, res.Artifact)
}
