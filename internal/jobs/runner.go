package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/sectseek/sectseek/internal/fragment"
	"github.com/sectseek/sectseek/internal/metrics"
	"github.com/sectseek/sectseek/internal/search"
	"github.com/sectseek/sectseek/internal/section"
)

// RunnerConfig sizes the worker pool and queue.
type RunnerConfig struct {
	Workers      int
	QueueSize    int
	JobTTL       time.Duration
	CacheSize    int // grouped-page cache entries per worker pool; 0 disables
	GroupOptions section.GroupOptions
}

// Runner owns a queue of search jobs and the workers that process them.
type Runner struct {
	store *Store
	queue chan *Job
	log   *slog.Logger
	cfg   RunnerConfig
	cache *search.GroupCache

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewRunner creates the runner; Start launches its workers.
func NewRunner(cfg RunnerConfig, log *slog.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 2
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 50
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	r := &Runner{
		store: NewStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.QueueSize),
		log:   log,
		cfg:   cfg,
	}
	if cfg.CacheSize > 0 {
		r.cache = search.NewGroupCache(cfg.CacheSize)
	}
	return r
}

// Start launches worker goroutines and the store cleanup loop.
func (r *Runner) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for range r.cfg.Workers {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-r.queue:
					if !ok {
						return
					}
					r.process(workerCtx, job)
				}
			}
		}()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				r.store.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the runner. Submissions after Stop are
// rejected rather than queued.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.stopped {
		r.stopped = true
		close(r.queue)
	}
	r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

// Submit queues a job for processing.
func (r *Runner) Submit(job *Job) error {
	r.store.Put(job)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		job.SetStatus(StatusFailed, "shutting_down")
		return fmt.Errorf("runner is stopped")
	}
	select {
	case r.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", r.cfg.QueueSize)
	}
}

// GetJob returns a job by ID, or nil.
func (r *Runner) GetJob(id string) *Job {
	return r.store.Get(id)
}

// QueueDepth returns the current queue depth.
func (r *Runner) QueueDepth() int {
	return len(r.queue)
}

// process runs the full search for one job: materialize the uploaded PDF,
// build a finder over it, and stream progress into the job record.
func (r *Runner) process(ctx context.Context, job *Job) {
	log := r.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusScanning, "extracting")

	doc, cleanup, err := r.openDocument(job)
	if err != nil {
		log.Error("open document failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	defer cleanup()

	opts := job.Options()
	opts.GroupOptions = r.cfg.GroupOptions
	opts.OnProgress = func(current, total, found int) {
		job.SetProgress(current, total, found)
	}

	finder := search.NewFinder(doc, r.log, r.cache)
	start := time.Now()
	results, err := finder.FindSimilarSections(ctx, opts)
	if err != nil {
		metrics.ObserveSearch("structural_job", "error", time.Since(start), 0)
		log.Error("search failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "scoring")
		return
	}
	metrics.ObserveSearch("structural_job", "ok", time.Since(start), len(results))

	job.SetResults(results)
	job.SetStatus(StatusCompleted, "done")
	log.Info("search complete", "results", len(results))
}

// openDocument writes the uploaded bytes to a temp file and opens it as a
// PDF fragment document. ledongthuc/pdf needs a seekable file.
func (r *Runner) openDocument(job *Job) (fragment.Document, func(), error) {
	tmp, err := os.CreateTemp("", "sectseek-job-*.pdf")
	if err != nil {
		return nil, nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(job.FileData()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc, err := fragment.OpenPDF(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, nil, err
	}
	cleanup := func() {
		doc.Close()
		os.Remove(tmpPath)
	}
	return doc, cleanup, nil
}
