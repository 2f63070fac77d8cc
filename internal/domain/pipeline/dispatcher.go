package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/homematch/assistant-api/internal/infrastructure/metrics"
)

// ErrQueueFull is returned when the inbound queue cannot absorb another job.
// Callers surface this as backpressure to the client.
var ErrQueueFull = errors.New("pipeline queue full")

// Dispatcher decouples HTTP ingestion from response generation: handlers
// enqueue and return immediately, a fixed worker pool drains the queue.
type Dispatcher struct {
	service     *Service
	jobs        chan Job
	workers     int
	taskTimeout time.Duration
	log         zerolog.Logger
}

func NewDispatcher(service *Service, workers, queueSize int, taskTimeout time.Duration, log zerolog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if taskTimeout <= 0 {
		taskTimeout = 30 * time.Second
	}
	return &Dispatcher{
		service:     service,
		jobs:        make(chan Job, queueSize),
		workers:     workers,
		taskTimeout: taskTimeout,
		log:         log.With().Str("component", "pipeline-dispatcher").Logger(),
	}
}

// Dispatch enqueues a job without blocking. A full queue is reported to the
// caller instead of stalling the HTTP handler.
func (d *Dispatcher) Dispatch(job Job) error {
	select {
	case d.jobs <- job:
		metrics.PipelineQueueDepth.Set(float64(len(d.jobs)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Run starts the worker pool and blocks until ctx is cancelled and all
// in-flight jobs have finished.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			d.worker(ctx)
			return nil
		})
	}
	d.log.Info().Int("workers", d.workers).Int("queue_size", cap(d.jobs)).Msg("pipeline workers started")
	return g.Wait()
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-d.jobs:
			metrics.PipelineQueueDepth.Set(float64(len(d.jobs)))
			jobCtx, cancel := context.WithTimeout(context.Background(), d.taskTimeout)
			d.service.Process(jobCtx, job)
			cancel()
		}
	}
}
