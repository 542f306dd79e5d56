package session

import (
	"bytes"
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igloader/internal/testserver"
	"igloader/pkg/backend"
	"igloader/pkg/models"
)

func withTaskPolling(o *Options) {
	o.TaskInterval = 20 * time.Millisecond
}

func TestTaskPollerStopsAtTerminalStatus(t *testing.T) {
	s, srv := newTestSession(t, withTaskPolling)

	var calls atomic.Int32
	srv.Handle(testserver.PathProfilePosts, func(testserver.Request) testserver.Response {
		status := models.TaskStatus("STARTED")
		if calls.Add(1) > 3 {
			status = models.TaskSuccess
		}
		return testserver.Response{Status: http.StatusOK, Body: pageBody(makePosts("a", 1), "", status)}
	})

	st := startProfile(t, s, srv)
	assert.Equal(t, models.TaskProgress, st.TaskStatus, "unknown statuses read as progress")
	assert.False(t, st.ArchiveAvailable())

	st = waitFor(t, s, func(st State) bool { return st.TaskStatus == models.TaskSuccess })
	assert.True(t, st.ArchiveAvailable())

	seen := calls.Load()
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, seen, calls.Load(), "no polling after a terminal status")
}

func TestTaskPollerTreatsUnreadableAnswersAsFailure(t *testing.T) {
	s, srv := newTestSession(t, withTaskPolling)

	var calls atomic.Int32
	srv.Handle(testserver.PathProfilePosts, func(testserver.Request) testserver.Response {
		if calls.Add(1) == 1 {
			return testserver.Response{Status: http.StatusOK, Body: pageBody(makePosts("a", 1), "", models.TaskProgress)}
		}
		return testserver.Response{Status: http.StatusOK, Body: "upstream hiccup"}
	})

	startProfile(t, s, srv)
	st := waitFor(t, s, func(st State) bool { return st.TaskStatus == models.TaskFailure })
	assert.False(t, st.ArchiveAvailable())
	assert.Empty(t, st.Error)

	seen := calls.Load()
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, seen, calls.Load())
}

func TestTaskPollerKeepsPollingThroughErrorAnswers(t *testing.T) {
	s, srv := newTestSession(t, withTaskPolling)

	var calls atomic.Int32
	srv.Handle(testserver.PathProfilePosts, func(testserver.Request) testserver.Response {
		switch calls.Add(1) {
		case 1:
			return testserver.Response{Status: http.StatusOK, Body: pageBody(makePosts("a", 1), "", models.TaskProgress)}
		case 2, 3:
			return testserver.Response{Status: http.StatusInternalServerError, Body: map[string]string{"error": "busy"}}
		default:
			return testserver.Response{Status: http.StatusOK, Body: pageBody(makePosts("a", 1), "", models.TaskSuccess)}
		}
	})

	var sawFailure atomic.Bool
	cancel := s.Subscribe(func(st State) {
		if st.TaskStatus == models.TaskFailure {
			sawFailure.Store(true)
		}
	})
	defer cancel()

	startProfile(t, s, srv)
	st := waitFor(t, s, func(st State) bool { return st.TaskStatus == models.TaskSuccess })
	assert.True(t, st.ArchiveAvailable())
	assert.False(t, sawFailure.Load(), "an error answer must not end the job")
	assert.GreaterOrEqual(t, calls.Load(), int32(4))
}

func TestHighlightPollerStopsOnTerminalEmptyList(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t)

	var calls atomic.Int32
	srv.Handle(testserver.PathHighlights, func(testserver.Request) testserver.Response {
		if calls.Add(1) == 1 {
			return testserver.Response{Status: http.StatusAccepted, Body: map[string]interface{}{"highlights": []models.Highlight{}, "status": "PENDING"}}
		}
		return testserver.Response{Status: http.StatusOK, Body: map[string]interface{}{"highlights": []models.Highlight{}, "status": "SUCCESS"}}
	})

	srv.Enqueue(testserver.PathProfile, http.StatusOK, profileBody("nasa", "", "h1"))
	require.NoError(t, s.Submit(ctx, "@nasa"))

	require.Eventually(t, func() bool { return calls.Load() == 2 }, waitTimeout, 5*time.Millisecond)
	st := waitFor(t, s, func(st State) bool { return !st.FetchingHighlights })
	assert.Empty(t, st.Highlights)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "h1", srv.Requests(testserver.PathHighlights)[0].String("task_id"))
}

func TestHighlightPollerStopsOnFirstHighlights(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t, func(o *Options) { o.HighlightInterval = time.Hour })

	srv.SetDefault(testserver.PathHighlights, http.StatusOK, map[string]interface{}{
		"highlights": []models.Highlight{{ID: "1", Title: "Trips"}, {ID: "2", Title: "Food"}},
		"status":     "PROGRESS",
	})
	srv.Enqueue(testserver.PathProfile, http.StatusOK, profileBody("nasa", "", "h1"))
	require.NoError(t, s.Submit(ctx, "@nasa"))

	// the first poll runs right away even with a long interval
	st := waitFor(t, s, func(st State) bool { return len(st.Highlights) == 2 && !st.FetchingHighlights })
	assert.Equal(t, "Trips", st.Highlights[0].Title)
	assert.Equal(t, 1, srv.Count(testserver.PathHighlights))
}

func TestHighlightPollerStopsOnError(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t)
	srv.SetDefault(testserver.PathHighlights, http.StatusInternalServerError, nil)

	srv.Enqueue(testserver.PathProfile, http.StatusOK, profileBody("nasa", "", "h1"))
	require.NoError(t, s.Submit(ctx, "@nasa"))

	require.Eventually(t, func() bool { return srv.Count(testserver.PathHighlights) == 1 }, waitTimeout, 5*time.Millisecond)
	st := waitFor(t, s, func(st State) bool { return !st.FetchingHighlights })
	assert.Empty(t, st.Highlights)
	assert.Empty(t, st.Error)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, srv.Count(testserver.PathHighlights))
}

func TestDownloadArchive(t *testing.T) {
	ctx := context.Background()
	s, srv := newTestSession(t, withTaskPolling)
	srv.SetDefault(testserver.PathProfilePosts, http.StatusOK, pageBody(makePosts("a", 1), "", models.TaskSuccess))

	var buf bytes.Buffer
	_, _, err := s.DownloadArchive(ctx, &buf)
	assert.ErrorIs(t, err, ErrArchiveUnavailable)

	startProfile(t, s, srv)
	waitFor(t, s, func(st State) bool { return st.ArchiveAvailable() })

	srv.Enqueue(testserver.PathProfileDownload, http.StatusOK, []byte("PK\x03\x04archive"))
	name, n, err := s.DownloadArchive(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, "nasa_posts.zip", name)
	assert.Equal(t, int64(len("PK\x03\x04archive")), n)
	assert.Equal(t, "PK\x03\x04archive", buf.String())
	assert.Equal(t, "t1", srv.Requests(testserver.PathProfileDownload)[0].String("task_id"))
	assert.False(t, s.State().DownloadingArchive)

	srv.Enqueue(testserver.PathProfileDownload, http.StatusInternalServerError, nil)
	_, _, err = s.DownloadArchive(ctx, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, backend.FallbackArchive, s.State().LoadMoreError)
}

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "nasa_posts.zip", ArchiveName("nasa"))
}
