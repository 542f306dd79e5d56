package downloader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"igloader/pkg/metadata"
	"igloader/pkg/models"
	"igloader/pkg/session"
	"igloader/pkg/storage"
)

// JobOptions filters and decorates the jobs built for a post or highlight
type JobOptions struct {
	SkipVideos bool
	SkipImages bool
	Metadata   bool
	// Proxy rewrites a media URL before it is fetched
	Proxy func(string) string
}

func (o JobOptions) skip(item models.MediaItem) bool {
	if item.IsVideo() {
		return o.SkipVideos
	}
	return o.SkipImages
}

func (o JobOptions) url(raw string) string {
	if o.Proxy == nil {
		return raw
	}
	return o.Proxy(raw)
}

// PostJobs builds one job per media item of post, named
// {shortcode}_{n}.{ext} with n starting at 1
func PostJobs(post models.Post, opts JobOptions) []Job {
	var jobs []Job
	for i, item := range post.Media {
		if opts.skip(item) || item.DownloadURL() == "" {
			continue
		}
		job := Job{
			ID:     uuid.NewString(),
			URL:    opts.url(item.DownloadURL()),
			Folder: post.Owner.Username,
			Name:   fmt.Sprintf("%s_%d.%s", post.Shortcode, i+1, item.Extension()),
		}
		if opts.Metadata {
			job.Meta = metadata.FromPost(post, i, 0)
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// HighlightJobs builds one job per slide of h, named
// {safe title}_{n}.{ext}
func HighlightJobs(h models.Highlight, opts JobOptions) []Job {
	var jobs []Job
	title := h.SafeTitle()
	for i, item := range h.Items {
		if opts.skip(item) || item.DownloadURL() == "" {
			continue
		}
		job := Job{
			ID:     uuid.NewString(),
			URL:    opts.url(item.DownloadURL()),
			Folder: h.Owner.Username,
			Name:   fmt.Sprintf("%s_%d.%s", title, i+1, item.Extension()),
		}
		if opts.Metadata {
			job.Meta = metadata.FromHighlight(h, i, 0)
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// Summary totals a batch of results
type Summary struct {
	Total      int
	Downloaded int
	Skipped    int
	Opened     int
	Failed     int
	Bytes      int64
}

// Summarize counts results by outcome
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Skipped:
			s.Skipped++
		case r.Success:
			s.Downloaded++
			s.Bytes += r.Size
		case r.Opened:
			s.Opened++
		default:
			s.Failed++
		}
	}
	return s
}

func (s Summary) String() string {
	parts := []string{
		fmt.Sprintf("%d downloaded (%s)", s.Downloaded, humanize.Bytes(uint64(s.Bytes))),
	}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d already present", s.Skipped))
	}
	if s.Opened > 0 {
		parts = append(parts, fmt.Sprintf("%d opened in browser", s.Opened))
	}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Failed))
	}
	return strings.Join(parts, ", ")
}

// ArchiveSource produces a profile ZIP
type ArchiveSource interface {
	DownloadArchive(ctx context.Context, w io.Writer) (string, int64, error)
}

var _ ArchiveSource = (*session.Session)(nil)

// SaveArchive streams the profile ZIP of username into the output folder
// as {username}_posts.zip. Nothing is left behind on failure.
func SaveArchive(ctx context.Context, src ArchiveSource, store *storage.Manager, username string) (string, int64, error) {
	f, err := store.Create(username, session.ArchiveName(username))
	if err != nil {
		return "", 0, err
	}

	_, n, err := src.DownloadArchive(ctx, f)
	if err != nil {
		f.Abort()
		return "", n, err
	}
	if err := f.Commit(); err != nil {
		return "", n, err
	}
	return f.Path(), n, nil
}
