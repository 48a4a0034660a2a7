package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sectseek/sectseek/internal/metrics"
	"github.com/sectseek/sectseek/internal/ngram"
	"github.com/sectseek/sectseek/internal/textsource"
)

// textMatch is an n-gram match mapped back to page numbers.
type textMatch struct {
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	StartWord int     `json:"start_word"`
	EndWord   int     `json:"end_word"`
	PageStart int     `json:"page_start"`
	PageEnd   int     `json:"page_end"`
}

// handleTextSearch runs the text-only n-gram backend over an uploaded
// document of any supported format. Used when no layout is available.
func (s *Server) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	query := r.FormValue("query")
	if query == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !textsource.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	p, err := textsource.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	limited := io.LimitReader(file, s.cfg.MaxUploadBytes+1)
	pages, err := p.Parse(limited, filename)
	if err != nil {
		jsonError(w, "parse failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	corpus := textsource.BuildCorpus(pages)

	opts := ngram.DefaultOptions()
	opts.Threshold = s.cfg.NgramThreshold
	if t := formFloat(r, "threshold"); t > 0 && t <= 1 {
		opts.Threshold = t
	}

	start := time.Now()
	matches := ngram.FindSimilarText(query, corpus.Text, opts)
	metrics.ObserveSearch("ngram", "ok", time.Since(start), len(matches))

	out := make([]textMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, textMatch{
			Text:      m.Text,
			Score:     m.Score,
			StartWord: m.StartWord,
			EndWord:   m.EndWord,
			PageStart: corpus.PageOfWord(m.StartWord),
			PageEnd:   corpus.PageOfWord(m.EndWord - 1),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"matches": out,
		"count":   len(out),
	})
}
