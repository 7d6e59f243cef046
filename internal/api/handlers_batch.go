package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/pdfsuite/internal/pipeline"
	"github.com/dgallion1/pdfsuite/internal/report"
	"github.com/dgallion1/pdfsuite/internal/service"
)

// handleBatchSubmit queues one batch job over the posted files.
func (s *Server) handleBatchSubmit(w http.ResponseWriter, r *http.Request) {
	op, err := pipeline.ParseOperation(chi.URLParam(r, "op"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	uploads, err := s.readUploads(w, r, "files")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var opts pipeline.Options
	if op == pipeline.OpSearch {
		opts.Search = searchOptions(r)
		if _, err := service.CompilePattern(opts.Search.Pattern, opts.Search.CaseSensitive); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	inputs := make([]pipeline.Input, len(uploads))
	for i, u := range uploads {
		inputs[i] = pipeline.Input{Name: u.Name, Data: u.Data}
	}

	job := pipeline.NewJob(op, inputs, opts)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":    job.ID,
		"operation": job.Operation,
		"status":    pipeline.JobQueued,
		"items":     len(inputs),
		"poll_url":  fmt.Sprintf("/api/batch/jobs/%s", job.ID),
	})
}

func (s *Server) job(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}

// finished returns the job's result, or answers 409 while it is pending.
func (s *Server) finished(w http.ResponseWriter, r *http.Request) *pipeline.BatchResult {
	job := s.job(w, r)
	if job == nil {
		return nil
	}
	res := job.Result()
	if res == nil {
		snap := job.Snapshot()
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
	}
	return res
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleBatchBundle(w http.ResponseWriter, r *http.Request) {
	res := s.finished(w, r)
	if res == nil {
		return
	}
	if res.Package == nil {
		jsonError(w, "batch produced no artifacts", http.StatusNotFound)
		return
	}
	sendFile(w, "application/zip", res.Package.Name, res.Package.Data)
}

func (s *Server) handleBatchReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res := s.finished(w, r)
	if res == nil {
		return
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, format, res); err != nil {
		s.writeError(w, r, err)
		return
	}
	sendFile(w, format.ContentType(), report.FileName(res.Operation, format), buf.Bytes())
}
