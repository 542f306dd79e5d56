package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"igloader/pkg/logger"
	"igloader/pkg/ratelimit"
	"igloader/pkg/retry"
)

// WorkerPool manages concurrent download workers
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	group       *errgroup.Group
	ctx         context.Context
	cancel      context.CancelFunc
	transfer    transfer
	rateLimiter ratelimit.Limiter
	logger      logger.Logger
	progress    Progress
	stopOnce    sync.Once
}

// NewWorkerPool creates a new download worker pool. Cancelling ctx aborts
// queued and running jobs.
func NewWorkerPool(
	ctx context.Context,
	numWorkers int,
	fetcher MediaFetcher,
	storage MediaStorage,
	rateLimiter ratelimit.Limiter,
	log logger.Logger,
) *WorkerPool {
	if log == nil {
		log = logger.GetLogger()
	}
	if rateLimiter == nil {
		rateLimiter = ratelimit.Unlimited()
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2), // Buffer size = 2x workers
		resultQueue: make(chan Result, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		transfer:    newTransfer(fetcher, storage, log),
		rateLimiter: rateLimiter,
		logger:      log,
	}
}

// SetRetry replaces the retry policy used for each fetch
func (wp *WorkerPool) SetRetry(cfg *retry.Config) {
	wp.transfer.retry = cfg
}

// SetTimeout bounds every fetch attempt
func (wp *WorkerPool) SetTimeout(d time.Duration) {
	wp.transfer.timeout = d
}

// SetProgress registers a callback run by Run after every finished job
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	wp.group = &errgroup.Group{}
	for i := 0; i < wp.numWorkers; i++ {
		id := i
		wp.group.Go(func() error {
			wp.worker(id)
			return nil
		})
	}
}

// Stop waits for queued jobs to finish and closes the result channel
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		wp.logger.Info("Stopping worker pool...")

		close(wp.jobQueue)
		if wp.group != nil {
			_ = wp.group.Wait()
		}
		close(wp.resultQueue)
		wp.cancel()

		wp.logger.Info("Worker pool stopped")
	})
}

// Cancel aborts all work. Stop must still be called.
func (wp *WorkerPool) Cancel() {
	wp.cancel()
}

// Submit adds a new download job to the queue
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("Job submitted to queue", map[string]interface{}{
			"job_id": job.ID,
			"name":   job.Name,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the result channel for consuming download results
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

// Run starts the pool, feeds it jobs, and returns every result once all
// jobs are done. Results arrive in completion order.
func (wp *WorkerPool) Run(jobs []Job) []Result {
	wp.Start()
	go func() {
		for _, job := range jobs {
			if err := wp.Submit(job); err != nil {
				break
			}
		}
		wp.Stop()
	}()

	results := make([]Result, 0, len(jobs))
	for result := range wp.Results() {
		results = append(results, result)
		if wp.progress != nil {
			wp.progress(len(results), len(jobs), result)
		}
	}
	return results
}

// worker is the main worker routine
func (wp *WorkerPool) worker(id int) {
	wp.logger.DebugWithFields("Worker started", map[string]interface{}{
		"worker_id": id,
	})

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled", map[string]interface{}{
				"worker_id": id,
			})
			return
		default:
		}

		result := wp.processJob(job, id)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled while sending result", map[string]interface{}{
				"worker_id": id,
			})
			return
		}
	}

	wp.logger.DebugWithFields("Worker stopping - job queue closed", map[string]interface{}{
		"worker_id": id,
	})
}

// processJob handles a single download job
func (wp *WorkerPool) processJob(job Job, workerID int) Result {
	wp.logger.DebugWithFields("Worker processing job", map[string]interface{}{
		"worker_id": workerID,
		"job_id":    job.ID,
		"name":      job.Name,
	})

	if !wp.rateLimiter.Allow() {
		wp.logger.DebugWithFields("Worker waiting for rate limit", map[string]interface{}{
			"worker_id": workerID,
			"name":      job.Name,
		})
		if err := wp.rateLimiter.Wait(wp.ctx); err != nil {
			return Result{Job: job, Error: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	return wp.transfer.run(wp.ctx, job)
}

// QueueSize returns the current number of jobs in the queue
func (wp *WorkerPool) QueueSize() int {
	return len(wp.jobQueue)
}

// Workers returns the number of workers
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}
