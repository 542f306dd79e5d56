package session

import (
	"context"
	"io"

	"igloader/pkg/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_backend.go -package=mocks

// Backend is what a session needs from the media backend
type Backend interface {
	FetchPost(ctx context.Context, postURL string, settings models.Settings) (*models.Post, error)
	FetchFullPost(ctx context.Context, shortcode string, settings models.Settings) (*models.Post, error)
	FetchProfile(ctx context.Context, username string, settings models.Settings) (*models.ProfileLookup, error)
	FetchHighlight(ctx context.Context, highlightURL string, settings models.Settings) (*models.Highlight, error)
	FetchProfilePosts(ctx context.Context, taskID, cursor string) (*models.PostPage, error)
	FetchHighlights(ctx context.Context, taskID string) (*models.HighlightList, error)
	DownloadProfileArchive(ctx context.Context, taskID string, settings models.Settings, w io.Writer) (int64, error)
}

// VisibilityNotifier reports when the element after the last loaded post
// scrolls into view. Observe registers onVisible and returns a func that
// tears the observation down. Observe must not block; onVisible may be
// called from any goroutine, any number of times.
type VisibilityNotifier interface {
	Observe(onVisible func()) (stop func())
}
