package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestImageURL(t *testing.T) {
	item := MediaItem{
		DisplayURL: "https://cdn/display.jpg",
		Resources: []MediaResource{
			{Src: "https://cdn/320.jpg", Width: 320},
			{Src: "https://cdn/640.jpg", Width: 640},
			{Src: "https://cdn/1080.jpg", Width: 1080},
		},
	}

	assert.Equal(t, "https://cdn/640.jpg", item.BestImageURL(QualityThumbnail))
	assert.Equal(t, "https://cdn/1080.jpg", item.BestImageURL(QualityFull))

	small := MediaItem{
		DisplayURL: "https://cdn/display.jpg",
		Resources:  []MediaResource{{Src: "https://cdn/150.jpg", Width: 150}, {Src: "https://cdn/240.jpg", Width: 240}},
	}
	assert.Equal(t, "https://cdn/240.jpg", small.BestImageURL(QualityThumbnail))

	blank := MediaItem{DisplayURL: "https://cdn/display.jpg", Resources: []MediaResource{{Src: "", Width: 100}}}
	assert.Equal(t, "https://cdn/display.jpg", blank.BestImageURL(QualityFull))

	none := MediaItem{DisplayURL: "https://cdn/display.jpg"}
	assert.Equal(t, "https://cdn/display.jpg", none.BestImageURL(QualityThumbnail))
}

func TestMediaItemDownloadURL(t *testing.T) {
	video := MediaItem{Type: MediaVideo, DisplayURL: "https://cdn/poster.jpg", VideoURL: "https://cdn/clip.mp4"}
	assert.Equal(t, "https://cdn/clip.mp4", video.DownloadURL())
	assert.Equal(t, "mp4", video.Extension())

	noURL := MediaItem{Type: MediaVideo, DisplayURL: "https://cdn/poster.jpg"}
	assert.Empty(t, noURL.DownloadURL())

	image := MediaItem{
		Type:       MediaImage,
		DisplayURL: "https://cdn/display.jpg",
		Resources:  []MediaResource{{Src: "https://cdn/640.jpg", Width: 640}, {Src: "https://cdn/1080.jpg", Width: 1080}},
	}
	assert.Equal(t, "https://cdn/1080.jpg", image.DownloadURL())
	assert.Equal(t, "jpg", image.Extension())
}

func TestNormalizeTaskStatus(t *testing.T) {
	assert.Equal(t, TaskSuccess, NormalizeTaskStatus("SUCCESS"))
	assert.Equal(t, TaskFailure, NormalizeTaskStatus("FAILURE"))
	assert.Equal(t, TaskProgress, NormalizeTaskStatus("PENDING"))
	assert.Equal(t, TaskProgress, NormalizeTaskStatus("STARTED"))
	assert.Equal(t, TaskProgress, NormalizeTaskStatus(""))

	assert.True(t, TaskSuccess.IsTerminal())
	assert.True(t, TaskFailure.IsTerminal())
	assert.False(t, TaskProgress.IsTerminal())
}

func TestPostPageDecoding(t *testing.T) {
	var page PostPage
	require.NoError(t, json.Unmarshal([]byte(`{
		"posts": [{"id": "1", "shortcode": "abc", "taken_at": "1700000000", "comment_count": 2, "owner": {"id": "9", "username": "nasa"}, "media": []}],
		"end_cursor": "QVFE"
	}`), &page))

	require.Len(t, page.Posts, 1)
	assert.True(t, page.HasMore())
	assert.True(t, page.Posts[0].IsThin())

	ts, ok := page.Posts[0].TakenAt.Time()
	require.True(t, ok)
	assert.Equal(t, int64(1700000000), ts.Unix())

	var last PostPage
	require.NoError(t, json.Unmarshal([]byte(`{"posts": [], "end_cursor": null}`), &last))
	assert.False(t, last.HasMore())

	empty := PostPage{Cursor: StringPtr("")}
	assert.False(t, empty.HasMore())
}

func TestTimestampAcceptsNumbers(t *testing.T) {
	var p Post
	require.NoError(t, json.Unmarshal([]byte(`{"taken_at": 1700000000, "like_count": 5}`), &p))
	assert.Equal(t, Timestamp("1700000000"), p.TakenAt)
	assert.False(t, p.IsThin())

	var iso Post
	require.NoError(t, json.Unmarshal([]byte(`{"taken_at": "2024-01-02T03:04:05Z"}`), &iso))
	ts, ok := iso.TakenAt.Time()
	require.True(t, ok)
	assert.Equal(t, 2024, ts.Year())

	_, ok = Timestamp("").Time()
	assert.False(t, ok)
}

func TestHighlightSafeTitle(t *testing.T) {
	assert.Equal(t, "Summer_24_", Highlight{Title: "Summer 24!"}.SafeTitle())
	assert.Equal(t, "___", Highlight{Title: "é ✈"}.SafeTitle())
}

func TestSettingsMerge(t *testing.T) {
	s := Settings{Proxy: "1.2.3.4:8080:u:p"}
	merged := s.Merge(Settings{Proxy: "other", DocID: "123"})

	assert.Equal(t, "1.2.3.4:8080:u:p", merged.Proxy)
	assert.Equal(t, "123", merged.DocID)
	assert.True(t, Settings{}.IsZero())
	assert.False(t, merged.IsZero())
}
