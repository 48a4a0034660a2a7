package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sectseek/sectseek/internal/fragment"
	"github.com/sectseek/sectseek/internal/geom"
	"github.com/sectseek/sectseek/internal/jobs"
	"github.com/sectseek/sectseek/internal/metrics"
	"github.com/sectseek/sectseek/internal/search"
	"github.com/sectseek/sectseek/internal/section"
)

// searchRequest is the synchronous search payload: the host viewer's
// rendered text layer plus the selection to match.
type searchRequest struct {
	Pages     []fragment.StaticPage `json:"pages"`
	Selection struct {
		Text     string                  `json:"text"`
		Position geom.NormalizedPosition `json:"position"`
	} `json:"selection"`
	Threshold  float64 `json:"threshold,omitempty"`
	MaxResults int     `json:"max_results,omitempty"`
	MaxPages   int     `json:"max_pages,omitempty"`
}

// handleSearch runs a structural similarity search over rendered pages
// supplied in the request body.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Pages) == 0 {
		jsonError(w, "pages are required", http.StatusBadRequest)
		return
	}

	doc := fragment.NewStaticDocument(req.Pages)
	finder := search.NewFinder(doc, s.log, nil)

	opts := s.searchOptions(req.Selection.Text, req.Selection.Position, req.Threshold, req.MaxResults, req.MaxPages)

	start := time.Now()
	results, err := finder.FindSimilarSections(r.Context(), opts)
	if err != nil {
		metrics.ObserveSearch("structural", "error", time.Since(start), 0)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	metrics.ObserveSearch("structural", "ok", time.Since(start), len(results))

	if results == nil {
		results = []search.Result{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// handleSearchJob accepts a PDF upload plus a selection and queues an
// asynchronous search over its content streams.
func (s *Server) handleSearchJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		jsonError(w, "structural search jobs require a .pdf file", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	var selection struct {
		Text     string                  `json:"text"`
		Position geom.NormalizedPosition `json:"position"`
	}
	if err := json.Unmarshal([]byte(r.FormValue("selection")), &selection); err != nil {
		jsonError(w, "selection must be valid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	opts := s.searchOptions(selection.Text, selection.Position,
		formFloat(r, "threshold"), formInt(r, "max_results"), formInt(r, "max_pages"))

	job := jobs.NewJob(filename, data, opts)
	if err := s.runner.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	// Workers may already be mutating the job; report a consistent copy.
	snap := job.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/search/jobs/%s", snap.ID),
	})
}

func (s *Server) handleSearchJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.runner.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// searchOptions merges per-request values with configured defaults.
func (s *Server) searchOptions(text string, pos geom.NormalizedPosition, threshold float64, maxResults, maxPages int) search.Options {
	opts := search.Options{
		SelectedText:     text,
		SelectedPosition: pos,
		Threshold:        s.cfg.DefaultThreshold,
		MaxResults:       s.cfg.DefaultMaxResults,
		MaxPages:         s.cfg.DefaultMaxPages,
		GroupOptions: section.GroupOptions{
			MaxLineGap:   s.cfg.MaxLineGap,
			MaxColumnGap: s.cfg.MaxColumnGap,
		},
	}
	if threshold > 0 && threshold <= 1 {
		opts.Threshold = threshold
	}
	if maxResults > 0 {
		opts.MaxResults = maxResults
	}
	if maxPages > 0 {
		opts.MaxPages = maxPages
	}
	return opts
}

func formFloat(r *http.Request, key string) float64 {
	if v := r.FormValue(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

func formInt(r *http.Request, key string) int {
	if v := r.FormValue(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// sanitizeFilename strips any path components from an uploaded filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}
