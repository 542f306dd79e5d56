package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"igloader/internal/testserver"
	"igloader/pkg/backend"
	"igloader/pkg/config"
	errs "igloader/pkg/errors"
	"igloader/pkg/logger"
	"igloader/pkg/models"
	"igloader/pkg/search"
	"igloader/pkg/session/mocks"
)

const waitTimeout = 3 * time.Second

// fastOptions keeps every background timing in the milliseconds. The task
// poller is effectively off unless a test turns it on.
func fastOptions() Options {
	return Options{
		InitialPageAttempts: 5,
		InitialPageDelay:    10 * time.Millisecond,
		LoadMoreCooldown:    50 * time.Millisecond,
		TaskInterval:        time.Hour,
		HighlightInterval:   20 * time.Millisecond,
		Logger:              logger.NewNopLogger(),
		LogLevel:            "error",
	}
}

func newTestSession(t *testing.T, tune ...func(*Options)) (*Session, *testserver.Server) {
	t.Helper()
	srv := testserver.New(t)
	client := backend.NewClient(config.BackendConfig{BaseURL: srv.URL}, nil, logger.NewNopLogger())

	opts := fastOptions()
	for _, fn := range tune {
		fn(&opts)
	}
	s, err := New(client, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, srv
}

func newMockSession(t *testing.T) (*Session, *mocks.MockBackend) {
	t.Helper()
	ctrl := gomock.NewController(t)
	b := mocks.NewMockBackend(ctrl)

	s, err := New(b, fastOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, b
}

func waitFor(t *testing.T, s *Session, cond func(State) bool) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	st, err := s.WaitFor(ctx, cond)
	require.NoError(t, err, "state never matched, last: %+v", st)
	return st
}

func makePosts(prefix string, n int) []models.Post {
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = models.Post{
			ID:        fmt.Sprintf("%s-%d", prefix, i),
			Shortcode: fmt.Sprintf("%s%d", prefix, i),
			Media:     []models.MediaItem{{ID: "m", Type: models.MediaImage, DisplayURL: "https://cdn.example/x.jpg"}},
		}
	}
	return posts
}

// pageBody builds a posts page answer. An empty cursor is sent as null.
func pageBody(posts []models.Post, cursor string, status models.TaskStatus) map[string]interface{} {
	body := map[string]interface{}{
		"posts":      posts,
		"end_cursor": nil,
		"status":     string(status),
	}
	if cursor != "" {
		body["end_cursor"] = cursor
	}
	return body
}

func profileBody(username, postsTask, highlightsTask string) map[string]interface{} {
	return map[string]interface{}{
		"profile":            models.Profile{ID: "1", Username: username, MediaCount: 30},
		"posts_task_id":      postsTask,
		"highlights_task_id": highlightsTask,
	}
}

func countCursor(srv *testserver.Server, cursor string) int {
	n := 0
	for _, r := range srv.Requests(testserver.PathProfilePosts) {
		if r.String("end_cursor") == cursor {
			n++
		}
	}
	return n
}

func TestSubmitDispatchesByInput(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t)

	likes := 3
	srv.Enqueue(testserver.PathPost, http.StatusOK, map[string]interface{}{
		"post": models.Post{ID: "1", Shortcode: "abc", LikeCount: &likes},
	})
	require.NoError(t, s.Submit(ctx, "  https://www.instagram.com/p/abc/ "))

	st := s.State()
	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, search.ModePost, st.Mode)
	post, ok := st.Post()
	require.True(t, ok)
	assert.Equal(t, "abc", post.Post.Shortcode)
	assert.Equal(t, "https://www.instagram.com/p/abc/", srv.Requests(testserver.PathPost)[0].String("url"))

	srv.Enqueue(testserver.PathProfile, http.StatusOK, profileBody("nasa", "", ""))
	require.NoError(t, s.Submit(ctx, "@nasa"))

	st = s.State()
	assert.Equal(t, search.ModeProfile, st.Mode)
	assert.Equal(t, "@nasa", st.Input)
	profile, ok := st.Profile()
	require.True(t, ok)
	assert.Equal(t, "nasa", profile.Profile.Username)
	assert.Equal(t, "nasa", srv.Requests(testserver.PathProfile)[0].String("username"))
	assert.False(t, st.InitialPostsLoading)

	srv.Enqueue(testserver.PathHighlight, http.StatusOK, map[string]interface{}{
		"highlight": models.Highlight{ID: "h1", Title: "Trips"},
	})
	require.NoError(t, s.Submit(ctx, "https://www.instagram.com/stories/highlights/123/"))

	st = s.State()
	assert.Equal(t, search.ModeHighlight, st.Mode)
	h, ok := st.Highlight()
	require.True(t, ok)
	assert.Equal(t, "Trips", h.Highlight.Title)
	_, ok = st.Profile()
	assert.False(t, ok, "only one result is active")
}

func TestBlankSearchNeverRequests(t *testing.T) {
	ctx := context.Background()
	// the mock has no expectations, so any backend call fails the test
	s, _ := newMockSession(t)

	tests := []struct {
		mode search.Mode
		term string
	}{
		{search.ModePost, ""},
		{search.ModePost, "   "},
		{search.ModeProfile, "\t"},
		{search.ModeHighlight, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			before := s.State().Generation

			err := s.Search(ctx, tt.mode, tt.term)
			require.Error(t, err)
			assert.Equal(t, errs.ErrorTypeValidation, errs.TypeOf(err))

			st := s.State()
			assert.Equal(t, PhaseError, st.Phase)
			assert.Equal(t, search.EmptyTermMessage(search.English, tt.mode), st.Error)
			assert.Equal(t, before, st.Generation)
		})
	}

	require.Error(t, s.Submit(ctx, "@"))
	assert.Equal(t, "Please enter a username.", s.State().Error)
}

func TestBlankSearchUsesConfiguredLanguage(t *testing.T) {
	ctrl := gomock.NewController(t)
	opts := fastOptions()
	opts.Language = search.Vietnamese
	s, err := New(mocks.NewMockBackend(ctrl), opts)
	require.NoError(t, err)
	defer s.Close()

	require.Error(t, s.Search(context.Background(), search.ModeProfile, ""))
	assert.Equal(t, search.EmptyTermMessage(search.Vietnamese, search.ModeProfile), s.State().Error)
}

func TestSearchSurfacesBackendErrors(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t)

	srv.Enqueue(testserver.PathPost, http.StatusNotFound, map[string]string{"error": "Post not found"})
	err := s.Submit(ctx, "https://www.instagram.com/p/missing/")
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeNotFound, errs.TypeOf(err))
	assert.Equal(t, PhaseError, s.State().Phase)
	assert.Equal(t, "Post not found", s.State().Error)

	srv.Enqueue(testserver.PathProfile, http.StatusInternalServerError, nil)
	require.Error(t, s.Submit(ctx, "@nasa"))
	st := s.State()
	assert.Equal(t, backend.FallbackSearch, st.Error)
	assert.Nil(t, st.Result)
}

func TestNewSearchDiscardsInFlightLookup(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t)

	release := srv.Hold(testserver.PathProfile)
	defer release()
	srv.SetDefault(testserver.PathProfile, http.StatusOK, profileBody("slow", "", ""))

	first := make(chan error, 1)
	go func() { first <- s.Submit(ctx, "@slow") }()
	require.Eventually(t, func() bool { return srv.Count(testserver.PathProfile) == 1 }, waitTimeout, 5*time.Millisecond)

	srv.Enqueue(testserver.PathPost, http.StatusOK, map[string]interface{}{
		"post": models.Post{ID: "2", Shortcode: "fast"},
	})
	require.NoError(t, s.Submit(ctx, "https://www.instagram.com/p/fast/"))

	select {
	case err := <-first:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(waitTimeout):
		t.Fatal("superseded search did not return")
	}

	st := s.State()
	assert.Equal(t, PhaseSuccess, st.Phase)
	post, ok := st.Post()
	require.True(t, ok)
	assert.Equal(t, "fast", post.Post.Shortcode)
}

func TestLateResultsOfOldSearchAreDropped(t *testing.T) {
	ctx := context.Background()
	s, b := newMockSession(t)

	release := make(chan struct{})
	b.EXPECT().FetchProfile(gomock.Any(), "nasa", gomock.Any()).
		Return(&models.ProfileLookup{Profile: models.Profile{Username: "nasa"}, PostsTaskID: "t1"}, nil)
	// ignores cancellation, like a response already on the wire
	b.EXPECT().FetchProfilePosts(gomock.Any(), "t1", backend.StartCursor).
		DoAndReturn(func(context.Context, string, string) (*models.PostPage, error) {
			<-release
			return &models.PostPage{Posts: makePosts("old", 3), Cursor: models.StringPtr("c1")}, nil
		}).AnyTimes()
	b.EXPECT().FetchPost(gomock.Any(), "new", gomock.Any()).
		Return(&models.Post{ID: "9", Shortcode: "new"}, nil)

	require.NoError(t, s.Search(ctx, search.ModeProfile, "nasa"))
	require.NoError(t, s.Search(ctx, search.ModePost, "new"))

	close(release)
	require.NoError(t, s.Close())

	st := s.State()
	assert.Empty(t, st.Posts)
	assert.Nil(t, st.Cursor)
	assert.False(t, st.InitialPostsLoading)
	assert.Empty(t, st.TaskStatus)
	_, ok := st.Post()
	assert.True(t, ok)
}

func TestResetStopsBackgroundWork(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t, func(o *Options) { o.TaskInterval = 20 * time.Millisecond })

	srv.Enqueue(testserver.PathProfile, http.StatusOK, profileBody("nasa", "t1", "h1"))
	srv.SetDefault(testserver.PathProfilePosts, http.StatusOK, pageBody(makePosts("p", 2), "", models.TaskProgress))
	srv.SetDefault(testserver.PathHighlights, http.StatusAccepted, map[string]interface{}{"highlights": []models.Highlight{}, "status": "PENDING"})

	require.NoError(t, s.Submit(ctx, "@nasa"))
	require.Eventually(t, func() bool { return srv.Count(testserver.PathProfilePosts) >= 3 }, waitTimeout, 5*time.Millisecond)

	s.Reset(true)
	st := s.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, "@nasa", st.Input)
	assert.Nil(t, st.Result)
	assert.Empty(t, st.Posts)

	posts, highlights := srv.Count(testserver.PathProfilePosts), srv.Count(testserver.PathHighlights)
	time.Sleep(150 * time.Millisecond)
	// a tick already past its stop check may still land
	assert.LessOrEqual(t, srv.Count(testserver.PathProfilePosts), posts+1)
	assert.LessOrEqual(t, srv.Count(testserver.PathHighlights), highlights+1)
	assert.Empty(t, s.State().Posts)

	s.Reset(false)
	assert.Empty(t, s.State().Input)
}

func TestUpgradePost(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t)

	likes := 10
	full := models.Post{ID: "1", Shortcode: "abc", LikeCount: &likes}
	got, err := s.UpgradePost(ctx, full)
	require.NoError(t, err)
	assert.Equal(t, full, got)
	assert.Zero(t, srv.Count(testserver.PathPost))

	srv.Enqueue(testserver.PathPost, http.StatusOK, map[string]interface{}{"post": full})
	thin := models.Post{ID: "1", Shortcode: "abc"}
	got, err = s.UpgradePost(ctx, thin)
	require.NoError(t, err)
	require.NotNil(t, got.LikeCount)
	assert.Equal(t, 10, *got.LikeCount)
	assert.Equal(t, "abc", srv.Requests(testserver.PathPost)[0].String("url"))

	srv.Enqueue(testserver.PathPost, http.StatusInternalServerError, nil)
	got, err = s.UpgradePost(ctx, thin)
	require.Error(t, err)
	assert.Equal(t, backend.FallbackFullPost, errs.Message(err))
	assert.Equal(t, thin, got)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t)

	var mu sync.Mutex
	var phases []Phase
	cancel := s.Subscribe(func(st State) {
		mu.Lock()
		phases = append(phases, st.Phase)
		mu.Unlock()
	})

	srv.Enqueue(testserver.PathPost, http.StatusOK, map[string]interface{}{"post": models.Post{Shortcode: "abc"}})
	require.NoError(t, s.Submit(ctx, "abc"))

	mu.Lock()
	assert.Equal(t, []Phase{PhaseLoading, PhaseSuccess}, phases)
	mu.Unlock()

	cancel()
	s.Reset(false)

	mu.Lock()
	assert.Len(t, phases, 2)
	mu.Unlock()
}

func TestStateSnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t)

	srv.Enqueue(testserver.PathProfile, http.StatusOK, profileBody("nasa", "t1", ""))
	srv.SetDefault(testserver.PathProfilePosts, http.StatusOK, pageBody(makePosts("p", 2), "c1", models.TaskProgress))
	require.NoError(t, s.Submit(ctx, "@nasa"))

	st := waitFor(t, s, func(st State) bool { return len(st.Posts) == 2 })
	st.Posts[0].Shortcode = "changed"
	*st.Cursor = "changed"

	again := s.State()
	assert.Equal(t, "p0", again.Posts[0].Shortcode)
	assert.Equal(t, "c1", *again.Cursor)
}

func TestClosedSessionRejectsSearch(t *testing.T) {
	s, _ := newMockSession(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Search(context.Background(), search.ModePost, "abc"), ErrClosed)
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{LoadMoreCooldown: -time.Second}.withDefaults()
	d := DefaultOptions()

	assert.Equal(t, search.English, opts.Language)
	assert.Equal(t, d.InitialPageAttempts, opts.InitialPageAttempts)
	assert.Equal(t, d.TaskInterval, opts.TaskInterval)
	assert.Equal(t, d.HighlightInterval, opts.HighlightInterval)
	assert.Zero(t, opts.LoadMoreCooldown)
	assert.NotNil(t, opts.Logger)

	cfg := config.DefaultConfig()
	cfg.Backend.Proxy = "h:1:u:p"
	fromCfg := OptionsFromConfig(cfg)
	assert.Equal(t, "h:1:u:p", fromCfg.Settings.Proxy)
	assert.Equal(t, cfg.Polling.TaskInterval, fromCfg.TaskInterval)
}
