package session

import (
	"context"
	"time"

	errs "igloader/pkg/errors"
)

// LoadMore fetches the page after the current cursor and appends it. It is
// a no-op without a posts job, without a cursor, or while another page is
// being fetched. A 202 from the backend is not an error.
//
// FetchingMore clears right away when new posts arrived. Otherwise it is
// held for the cooldown so a visibility trigger cannot hammer a backend
// whose job has not produced the next page yet.
func (s *Session) LoadMore(ctx context.Context) error {
	return s.loadMore(ctx, 0)
}

// loadMore is LoadMore restricted to generation want; zero means any
func (s *Session) loadMore(ctx context.Context, want uint64) error {
	s.mu.Lock()
	taskID := s.state.postsTaskID()
	if s.closed || (want != 0 && want != s.state.Generation) ||
		taskID == "" || s.state.Cursor == nil || s.state.FetchingMore {
		s.mu.Unlock()
		return nil
	}
	gen, genCtx := s.state.Generation, s.genCtx
	cursor := *s.state.Cursor
	s.state.FetchingMore = true
	s.state.LoadMoreError = ""
	s.commitAndUnlock()

	reqCtx, cancel := context.WithCancel(genCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	page, err := s.backend.FetchProfilePosts(reqCtx, taskID, cursor)

	hadNew := false
	applied := s.apply(gen, func(st *State) {
		if err != nil {
			if reqCtx.Err() == nil {
				st.LoadMoreError = errs.Message(err)
			}
			return
		}
		if len(page.Posts) > 0 {
			hadNew = true
			st.Posts = append(st.Posts, page.Posts...)
		}
		// a pending answer without a cursor keeps the one we sent
		if page.Cursor != nil || !page.Pending {
			st.Cursor = page.Cursor
		}
		if hadNew {
			st.FetchingMore = false
		}
	})
	if !applied {
		return ErrSuperseded
	}

	fields := map[string]interface{}{
		"cursor":  cursor,
		"new":     hadNew,
		"pending": err == nil && page.Pending,
	}
	if err != nil {
		s.log.WithError(err).WarnWithFields("failed to load more posts", fields)
	} else {
		s.log.DebugWithFields("page loaded", fields)
	}

	if !hadNew {
		s.releaseAfterCooldown(gen, genCtx)
	}
	return err
}

func (s *Session) releaseAfterCooldown(gen uint64, genCtx context.Context) {
	s.spawn(func() {
		if d := s.opts.LoadMoreCooldown; d > 0 {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-genCtx.Done():
				return
			}
		}
		s.apply(gen, func(st *State) { st.FetchingMore = false })
	})
}
