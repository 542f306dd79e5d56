package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"igloader/internal/downloader"
	"igloader/pkg/auth"
	"igloader/pkg/backend"
	"igloader/pkg/config"
	"igloader/pkg/logger"
	"igloader/pkg/models"
	"igloader/pkg/ratelimit"
	"igloader/pkg/retry"
	"igloader/pkg/session"
	"igloader/pkg/storage"
	"igloader/pkg/ui"
)

// app wires the configured backend client, session and storage together
// for one command run
type app struct {
	cfg      *config.Config
	log      logger.Logger
	client   *backend.Client
	session  *session.Session
	store    *storage.Manager
	notifier *ui.Notifier
	flush    func()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, flagMap(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newApp loads the configuration, lets adjust tweak it, and builds the app
func newApp(cmd *cobra.Command, adjust ...func(*config.Config)) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	for _, fn := range adjust {
		fn(cfg)
	}
	ui.SetNoColor(cfg.UI.NoColor)

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger().WithField("version", version)

	flush, err := logger.InitSentry(cfg.Logging.SentryDSN, version)
	if err != nil {
		log.WithError(err).Warn("Error reporting disabled")
		flush = func() {}
	}

	client := backend.NewClient(cfg.Backend, ratelimit.FromConfig(cfg.RateLimit), log)

	opts := session.OptionsFromConfig(cfg)
	opts.Logger = log
	opts.Settings = opts.Settings.Merge(storedSettings(log))

	sess, err := session.New(client, opts)
	if err != nil {
		flush()
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	client.SetHeader("X-Igloader-Session", sess.ID())

	store, err := storage.NewManager(cfg.Output)
	if err != nil {
		_ = sess.Close()
		flush()
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		client:  client,
		session: sess,
		store:   store,
		flush:   flush,
	}
	if cfg.Notifications.Enabled && cfg.Notifications.NotificationType != "none" {
		a.notifier = ui.NewNotifier(cfg.Notifications.NotificationType == "desktop")
	}

	logger.LogComponentStart(log, "igloader", map[string]interface{}{
		"backend": client.BaseURL(),
		"session": sess.ID(),
		"output":  store.BaseDir(),
	})
	return a, nil
}

// storedSettings reads the saved backend settings. A missing or unusable
// store is not fatal: requests then go out with the configured settings.
func storedSettings(log logger.Logger) models.Settings {
	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Debug("Settings store unavailable")
		return models.Settings{}
	}
	return manager.Settings()
}

func (a *app) Close() {
	if err := a.session.Close(); err != nil {
		a.log.WithError(err).Warn("Session did not shut down cleanly")
	}
	a.flush()
}

func (a *app) retryPolicy() *retry.Config {
	cfg := retry.FromConfig(a.cfg.Retry)
	cfg.Logger = a.log
	return cfg
}

func (a *app) jobOptions() downloader.JobOptions {
	return downloader.JobOptions{
		SkipVideos: a.cfg.Download.SkipVideos,
		SkipImages: a.cfg.Download.SkipImages,
		Metadata:   a.cfg.Output.WriteMetadata,
	}
}

func (a *app) opener() downloader.Opener {
	if !a.cfg.Download.OpenFallback {
		return nil
	}
	return downloader.SystemOpener{}
}

// DownloadPosts saves every media item of posts. A single post is fetched
// item by item with the browser fallback; more posts go through the
// worker pool.
func (a *app) DownloadPosts(ctx context.Context, posts []models.Post) (downloader.Summary, error) {
	return a.downloadPosts(ctx, posts, nil)
}

func (a *app) downloadPosts(ctx context.Context, posts []models.Post, progress downloader.Progress) (downloader.Summary, error) {
	var jobs []downloader.Job
	for _, post := range posts {
		jobs = append(jobs, downloader.PostJobs(post, a.jobOptions())...)
	}
	if len(jobs) == 0 {
		return downloader.Summary{}, nil
	}

	if len(posts) == 1 {
		return a.downloadSequential(ctx, jobs, progress)
	}

	pool := downloader.NewWorkerPool(ctx, a.cfg.Download.ConcurrentDownloads, a.client, a.store,
		ratelimit.FromConfig(a.cfg.RateLimit), a.log)
	pool.SetRetry(a.retryPolicy())
	pool.SetTimeout(a.cfg.Download.DownloadTimeout)
	pool.SetProgress(progress)

	results := pool.Run(jobs)
	return downloader.Summarize(results), ctx.Err()
}

// DownloadHighlight saves every slide of h through the image proxy
func (a *app) DownloadHighlight(ctx context.Context, h models.Highlight) (downloader.Summary, error) {
	return a.downloadHighlight(ctx, h, nil)
}

func (a *app) downloadHighlight(ctx context.Context, h models.Highlight, progress downloader.Progress) (downloader.Summary, error) {
	opts := a.jobOptions()
	opts.Proxy = a.client.ProxyImageURL
	return a.downloadSequential(ctx, downloader.HighlightJobs(h, opts), progress)
}

func (a *app) downloadSequential(ctx context.Context, jobs []downloader.Job, progress downloader.Progress) (downloader.Summary, error) {
	seq := downloader.NewSequential(a.client, a.store, a.cfg.Download.ItemDelay, a.opener(), a.log)
	seq.SetRetry(a.retryPolicy())
	seq.SetTimeout(a.cfg.Download.DownloadTimeout)

	results, err := seq.Download(ctx, jobs, progress)
	return downloader.Summarize(results), err
}

// ExportArchive saves the active profile's ZIP into the output folder
func (a *app) ExportArchive(ctx context.Context, username string) (string, int64, error) {
	a.notify(func(n *ui.Notifier) { n.ArchiveStarted(username) })

	path, size, err := downloader.SaveArchive(ctx, a.session, a.store, username)
	if err != nil {
		a.log.WithError(err).WithField("username", username).Error("Archive export failed")
		if a.cfg.Notifications.OnError {
			a.notify(func(n *ui.Notifier) { n.ArchiveFailed(err) })
		}
		return "", size, err
	}

	if a.cfg.Notifications.OnComplete {
		a.notify(func(n *ui.Notifier) { n.ArchiveSaved(path, humanize.Bytes(uint64(size))) })
	}
	return path, size, nil
}

func (a *app) notify(fn func(n *ui.Notifier)) {
	if a.notifier != nil {
		fn(a.notifier)
	}
}
