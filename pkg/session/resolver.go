package session

import (
	"context"
	"errors"

	"igloader/pkg/backend"
	errs "igloader/pkg/errors"
	"igloader/pkg/models"
	"igloader/pkg/retry"
)

// errPageNotReady marks an empty first page: the posts job has not
// produced anything yet, or the profile has no posts at all
var errPageNotReady = errors.New("first page not ready")

// resolveInitialPage polls the posts job for its first page until it
// holds at least one post. Running out of attempts is not an error since
// the profile may simply be empty. Any request failure ends the loop and
// is surfaced as the session error.
func (s *Session) resolveInitialPage(gen uint64, ctx context.Context, taskID string) {
	log := s.log.WithFields(map[string]interface{}{
		"component": "resolver",
		"task_id":   taskID,
	})

	cfg := retry.Constant(s.opts.InitialPageAttempts, s.opts.InitialPageDelay)
	cfg.Logger = log
	cfg.RetryIf = func(err error) bool { return errors.Is(err, errPageNotReady) }

	page, err := retry.DoWithResult(ctx, func() (*models.PostPage, error) {
		page, err := s.backend.FetchProfilePosts(ctx, taskID, backend.StartCursor)
		if err != nil {
			return nil, retry.Permanent(err)
		}
		if len(page.Posts) == 0 {
			return nil, errPageNotReady
		}
		return page, nil
	}, cfg)

	if ctx.Err() != nil {
		return
	}

	s.apply(gen, func(st *State) {
		st.InitialPostsLoading = false
		switch {
		case err == nil:
			// LoadMore needs a cursor, so nothing else can have filled Posts
			if len(st.Posts) == 0 {
				st.Posts = page.Posts
				st.Cursor = page.Cursor
			}
		case errors.Is(err, errPageNotReady):
			log.Info("no posts after all attempts")
		default:
			st.Error = errs.Message(err)
			log.WithError(err).Warn("initial page failed")
		}
	})
}
