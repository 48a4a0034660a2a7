// Package jobs tracks asynchronous similar-section searches: an in-memory
// job registry with TTL eviction and a worker pool that runs searches over
// uploaded documents.
package jobs

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/sectseek/sectseek/internal/search"
)

// Status represents the state of a search job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusScanning  Status = "scanning"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job tracks the state of one asynchronous search.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Status   Status `json:"status"`
	Phase    string `json:"phase"`
	Filename string `json:"filename"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	options  search.Options
	results  []search.Result
	errors   []string
}

// Progress tracks search progress.
type Progress struct {
	TotalPages   int      `json:"total_pages"`
	PagesScanned int      `json:"pages_scanned"`
	Found        int      `json:"found"`
	Errors       []string `json:"errors"`
}

// NewJob creates a queued job over an uploaded document.
func NewJob(filename string, fileData []byte, opts search.Options) *Job {
	now := time.Now()
	return &Job{
		ID:        ContentHashHex(fmt.Appendf(nil, "%s-%d", filename, now.UnixNano()))[:20],
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  fileData,
		options:   opts,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status Status, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error message.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetProgress records search progress counters.
func (j *Job) SetProgress(scanned, total, found int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PagesScanned = scanned
	j.Progress.TotalPages = total
	j.Progress.Found = found
	j.UpdatedAt = time.Now()
}

// SetResults stores the final result list.
func (j *Job) SetResults(results []search.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = results
	j.Progress.Found = len(results)
	j.UpdatedAt = time.Now()
}

// FileData returns the raw uploaded bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Options returns the search options for this job.
func (j *Job) Options() search.Options {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.options
}

// Snapshot is a read-only, JSON-safe copy of job state.
type Snapshot struct {
	ID       string          `json:"job_id"`
	Status   Status          `json:"status"`
	Phase    string          `json:"phase"`
	Filename string          `json:"filename"`
	Progress Progress        `json:"progress"`
	Results  []search.Result `json:"results,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state. Results are only
// included once the job has completed.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	s := Snapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: Progress{
			TotalPages:   j.Progress.TotalPages,
			PagesScanned: j.Progress.PagesScanned,
			Found:        j.Progress.Found,
			Errors:       errs,
		},
	}
	if j.Status == StatusCompleted {
		s.Results = j.results
	}
	return s
}

// Store is a thread-safe in-memory job registry with TTL eviction.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *Store) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *Store) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// ContentHashHex computes SHA-256 of content and returns the hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
