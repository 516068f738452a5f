// Package async runs pipeline flows over a pool of workers, used by batch
// processing where each student's run is independent.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/edupipe/neuroreport/internal/pipeline"
)

// Job is one student run: a forms export plus one measurement PDF.
type Job struct {
	FormsPath   string
	PDFPath     string
	SubmittedAt time.Time
}

// Result pairs a job with its final state or error.
type Result struct {
	Job   Job
	State pipeline.State
	Err   error
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Results() <-chan Result
	Shutdown(ctx context.Context)
}

type RunQueue struct {
	flow    *pipeline.Orchestrator
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch      chan Job
	results chan Result
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*RunQueue)

func WithWorkers(n int) Option {
	return func(q *RunQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *RunQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
			q.results = make(chan Result, n)
		}
	}
}

func WithRunTimeout(d time.Duration) Option {
	return func(q *RunQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewRunQueue(flow *pipeline.Orchestrator, logger *slog.Logger, opts ...Option) *RunQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &RunQueue{
		flow:    flow,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
		results: make(chan Result, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *RunQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					st, err := q.flow.Run(ctx, pipeline.State{
						Inputs: pipeline.Inputs{FormsPath: job.FormsPath, PDFPath: job.PDFPath},
					})
					cancel()

					if err != nil {
						q.logger.Error("run failed", "worker_id", workerID, "pdf", job.PDFPath, "error", err)
					} else {
						q.logger.Info("run complete", "worker_id", workerID, "pdf", job.PDFPath, "student_id", st.Student.ID)
					}
					q.results <- Result{Job: job, State: st, Err: err}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Results delivers one entry per enqueued job. The channel closes after
// Shutdown has drained the workers.
func (q *RunQueue) Results() <-chan Result {
	return q.results
}

func (q *RunQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "pdf", job.PDFPath)
		return nil
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued run", "pdf", job.PDFPath)
	default:
		q.logger.Warn("queue full, applying backpressure", "pdf", job.PDFPath)
		q.ch <- job
	}
	return nil
}

// Shutdown stops intake, waits for in-flight runs (or the context), then
// closes the results channel.
func (q *RunQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-done:
		close(q.results)
	case <-ctx.Done():
		q.logger.Warn("shutdown context expired before workers drained")
		go func() {
			<-done
			close(q.results)
		}()
	}
}
