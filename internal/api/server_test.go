package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sectseek/sectseek/internal/config"
	"github.com/sectseek/sectseek/internal/fragment"
	"github.com/sectseek/sectseek/internal/geom"
	"github.com/sectseek/sectseek/internal/jobs"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:            testAPIKey,
		MaxUploadBytes:    10 << 20,
		DefaultThreshold:  0.6,
		DefaultMaxResults: 20,
		DefaultMaxPages:   50,
		MaxLineGap:        30,
		MaxColumnGap:      150,
		NgramThreshold:    0.8,
	}
	runner := jobs.NewRunner(jobs.RunnerConfig{
		Workers:   1,
		QueueSize: 4,
		JobTTL:    time.Hour,
	}, slog.Default())
	return NewServer(runner, slog.Default(), cfg)
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected health body: %q", rec.Body.String())
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("{}")))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without Authorization, got %d", rec.Code)
	}
}

func TestAuth_WrongKey(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer not-the-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", rec.Code)
	}
}

func searchHeading(page int, words []string) []fragment.TextFragment {
	frags := make([]fragment.TextFragment, 0, len(words))
	x := 50.0
	for _, w := range words {
		width := float64(len(w)) * 8
		frags = append(frags, fragment.TextFragment{
			Text:       w,
			Bounds:     geom.Rect{Left: x, Top: 100, Width: width, Height: 14},
			PageNumber: page,
			FontFamily: "Times",
			FontSize:   14,
			Bold:       true,
		})
		x += width + 6
	}
	return frags
}

func validSearchRequest() searchRequest {
	vp := geom.Viewport{Width: 600, Height: 800}
	req := searchRequest{
		Pages: []fragment.StaticPage{
			{PageNumber: 1, Viewport: vp, Fragments: searchHeading(1, []string{"Quarterly", "Revenue", "Report"})},
			{PageNumber: 2, Viewport: vp, Fragments: searchHeading(2, []string{"Quarterly", "Revenue", "Report"})},
		},
	}
	req.Selection.Text = "Quarterly Revenue Report"
	req.Selection.Position = geom.NormalizedPosition{
		PageNumber: 1,
		Bounds: geom.NormalizedRect{
			Left:   50.0 / 600,
			Top:    100.0 / 800,
			Width:  190.0 / 600,
			Height: 14.0 / 800,
		},
	}
	return req
}

func TestSearch_FindsMatchOnOtherPage(t *testing.T) {
	srv := newTestServer(t)
	body, err := json.Marshal(validSearchRequest())
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader(body))))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Count   int `json:"count"`
		Results []struct {
			Text     string  `json:"text"`
			Score    float64 `json:"score"`
			Position struct {
				PageNumber int `json:"page_number"`
			} `json:"position"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected 1 match, got %d", resp.Count)
	}
	if resp.Results[0].Position.PageNumber != 2 {
		t.Errorf("expected match on page 2, got %d", resp.Results[0].Position.PageNumber)
	}
	if resp.Results[0].Score < 0.99 {
		t.Errorf("expected near-perfect score for identical section, got %v", resp.Results[0].Score)
	}
}

func TestSearch_NoPagesRejected(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"selection":{"text":"some selected text"}}`))))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing pages, got %d", rec.Code)
	}
}

func TestSearch_InvalidJSONRejected(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("{not json"))))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestSearch_ShortSelectionIsEmptyResult(t *testing.T) {
	srv := newTestServer(t)
	req := validSearchRequest()
	req.Selection.Text = "hi"
	body, _ := json.Marshal(req)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader(body))))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("expected 0 matches for a too-short selection, got %d", resp.Count)
	}
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestSearchJob_RejectsNonPDF(t *testing.T) {
	srv := newTestServer(t)
	body, ctype := multipartUpload(t, "notes.txt", []byte("plain text"), map[string]string{
		"selection": `{"text":"some selected text"}`,
	})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/search/jobs", body))
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-pdf upload, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSearchJob_AcceptedAndPollable(t *testing.T) {
	srv := newTestServer(t)
	selection := `{"text":"Quarterly Revenue Report","position":{"page_number":1,"bounds":{"left":0.1,"top":0.1,"width":0.3,"height":0.02}}}`
	body, ctype := multipartUpload(t, "report.pdf", []byte("%PDF-1.4 fake"), map[string]string{
		"selection": selection,
		"threshold": "0.7",
	})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/search/jobs", body))
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		JobID   string `json:"job_id"`
		Status  string `json:"status"`
		PollURL string `json:"poll_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" {
		t.Fatal("expected a job_id")
	}
	if resp.Status != string(jobs.StatusQueued) {
		t.Errorf("expected status %q, got %q", jobs.StatusQueued, resp.Status)
	}
	if want := fmt.Sprintf("/api/search/jobs/%s", resp.JobID); resp.PollURL != want {
		t.Errorf("expected poll_url %q, got %q", want, resp.PollURL)
	}

	// The runner is not started, so the job stays queued and pollable.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, resp.PollURL, nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 polling job, got %d", rec.Code)
	}
	var snap struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Status != string(jobs.StatusQueued) {
		t.Errorf("expected queued job, got %q", snap.Status)
	}
}

func TestSearchJob_UnknownJobIs404(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/search/jobs/no-such-job", nil)))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTextSearch_FindsExactPhrase(t *testing.T) {
	srv := newTestServer(t)
	content := []byte("The annual budget review covers every department.\fUnrelated second page text here entirely.")
	body, ctype := multipartUpload(t, "budget.txt", content, map[string]string{
		"query": "annual budget review",
	})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/search/text", body))
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Count   int `json:"count"`
		Matches []struct {
			Text      string  `json:"text"`
			Score     float64 `json:"score"`
			PageStart int     `json:"page_start"`
			PageEnd   int     `json:"page_end"`
		} `json:"matches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count == 0 {
		t.Fatal("expected at least one match")
	}
	best := resp.Matches[0]
	if best.Score < 0.99 {
		t.Errorf("expected near-perfect score for exact phrase, got %v", best.Score)
	}
	if best.PageStart != 1 || best.PageEnd != 1 {
		t.Errorf("expected match on page 1, got pages %d-%d", best.PageStart, best.PageEnd)
	}
}

func TestTextSearch_MissingQueryRejected(t *testing.T) {
	srv := newTestServer(t)
	body, ctype := multipartUpload(t, "notes.txt", []byte("some text"), nil)
	req := authed(httptest.NewRequest(http.MethodPost, "/api/search/text", body))
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without query, got %d", rec.Code)
	}
}

func TestTextSearch_UnsupportedTypeRejected(t *testing.T) {
	srv := newTestServer(t)
	body, ctype := multipartUpload(t, "archive.zip", []byte("zip bytes"), map[string]string{
		"query": "anything at all",
	})
	req := authed(httptest.NewRequest(http.MethodPost, "/api/search/text", body))
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported file type, got %d", rec.Code)
	}
}
