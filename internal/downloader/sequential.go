package downloader

import (
	"context"
	"time"

	"igloader/pkg/logger"
	"igloader/pkg/retry"
)

// DefaultItemDelay is the pause between two items of a bulk download
const DefaultItemDelay = 500 * time.Millisecond

// Progress is called after every job of a sequential download
type Progress func(done, total int, r Result)

// Sequential downloads jobs one after another with a pause between them,
// the way the per-post and per-highlight "download all" actions do. When a
// file cannot be fetched its URL is handed to the opener instead.
type Sequential struct {
	transfer transfer
	delay    time.Duration
	opener   Opener
	logger   logger.Logger
}

// NewSequential creates a sequential downloader. A nil opener disables the
// browser fallback.
func NewSequential(fetcher MediaFetcher, storage MediaStorage, delay time.Duration, opener Opener, log logger.Logger) *Sequential {
	if log == nil {
		log = logger.GetLogger()
	}
	if delay < 0 {
		delay = 0
	}
	return &Sequential{
		transfer: newTransfer(fetcher, storage, log),
		delay:    delay,
		opener:   opener,
		logger:   log,
	}
}

// SetRetry replaces the retry policy used for each fetch
func (d *Sequential) SetRetry(cfg *retry.Config) {
	d.transfer.retry = cfg
}

// SetTimeout bounds every fetch attempt
func (d *Sequential) SetTimeout(timeout time.Duration) {
	d.transfer.timeout = timeout
}

// Download runs jobs in order. It stops early only when ctx is done and
// then returns the results so far together with the context error.
func (d *Sequential) Download(ctx context.Context, jobs []Job, progress Progress) ([]Result, error) {
	results := make([]Result, 0, len(jobs))

	for i, job := range jobs {
		if i > 0 {
			if err := retry.Wait(ctx, d.delay); err != nil {
				return results, err
			}
		}

		result := d.One(ctx, job)
		results = append(results, result)
		if progress != nil {
			progress(i+1, len(jobs), result)
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
	}
	return results, nil
}

// One downloads a single job, falling back to the opener on failure
func (d *Sequential) One(ctx context.Context, job Job) Result {
	result := d.transfer.run(ctx, job)
	if result.Success || d.opener == nil || ctx.Err() != nil {
		return result
	}

	if err := d.opener.Open(job.URL); err != nil {
		d.logger.WithError(err).WarnWithFields("Failed to open media URL", map[string]interface{}{
			"name": job.Name,
		})
		return result
	}
	result.Opened = true
	return result
}
