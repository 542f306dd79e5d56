package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"igloader/pkg/logger"
	"igloader/pkg/metadata"
	"igloader/pkg/retry"
)

// Job is one media file to fetch and store
type Job struct {
	ID     string
	URL    string
	Folder string
	Name   string
	// Meta, when set, is written as a JSON sidecar next to the file
	Meta *metadata.MediaMetadata
}

// Result is the outcome of a Job
type Result struct {
	Job      Job
	Path     string
	Success  bool
	Skipped  bool
	Opened   bool
	Error    error
	Duration time.Duration
	Size     int64
}

// MediaFetcher downloads a media URL into w
type MediaFetcher interface {
	FetchMedia(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// MediaStorage stores downloaded files
type MediaStorage interface {
	IsDownloaded(folder, name string) bool
	Save(folder, name string, r io.Reader) (string, error)
}

// transfer fetches one job and stores it. It is shared by the pool and the
// sequential downloader.
type transfer struct {
	fetcher MediaFetcher
	storage MediaStorage
	retry   *retry.Config
	// timeout bounds each fetch attempt; zero means no limit
	timeout time.Duration
	logger  logger.Logger
}

func newTransfer(fetcher MediaFetcher, storage MediaStorage, log logger.Logger) transfer {
	cfg := retry.DefaultConfig()
	cfg.Logger = log
	return transfer{fetcher: fetcher, storage: storage, retry: cfg, logger: log}
}

func (t *transfer) run(ctx context.Context, job Job) Result {
	start := time.Now()
	result := Result{Job: job}

	if t.storage.IsDownloaded(job.Folder, job.Name) {
		t.logger.DebugWithFields("Media already downloaded", map[string]interface{}{
			"name":   job.Name,
			"folder": job.Folder,
		})
		result.Success = true
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	data, err := retry.DoWithResult(ctx, func() ([]byte, error) {
		fetchCtx := ctx
		if t.timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(ctx, t.timeout)
			defer cancel()
		}
		var buf bytes.Buffer
		if _, err := t.fetcher.FetchMedia(fetchCtx, job.URL, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}, t.retry)
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)
		logger.LogDownload(t.logger, job.Name, mediaType(job.Name), false, err)
		return result
	}
	result.Size = int64(len(data))

	path, err := t.storage.Save(job.Folder, job.Name, bytes.NewReader(data))
	if err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)
		logger.LogDownload(t.logger, job.Name, mediaType(job.Name), false, err)
		return result
	}
	result.Path = path

	if job.Meta != nil {
		job.Meta.FileSize = result.Size
		if err := job.Meta.Save(path); err != nil {
			t.logger.WithError(err).WarnWithFields("Failed to write metadata", map[string]interface{}{
				"path": path,
			})
		}
	}

	result.Success = true
	result.Duration = time.Since(start)
	logger.LogDownload(t.logger, job.Name, mediaType(job.Name), true, nil)
	return result
}

func mediaType(name string) string {
	if filepath.Ext(name) == ".mp4" {
		return "video"
	}
	return "image"
}
