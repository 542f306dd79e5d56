package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igloader/pkg/models"
)

func TestFromPost(t *testing.T) {
	likes := 12
	post := models.Post{
		ID:           "1",
		Shortcode:    "abc",
		TakenAt:      "1700000000",
		Caption:      "hello",
		LikeCount:    &likes,
		CommentCount: 3,
		Owner:        models.Owner{ID: "7", Username: "nasa"},
		Media: []models.MediaItem{
			{Type: models.MediaImage, DisplayURL: "https://cdn/a.jpg", Dimensions: models.Dimensions{Width: 1080, Height: 1350}},
			{Type: models.MediaVideo, VideoURL: "https://cdn/b.mp4", Dimensions: models.Dimensions{Width: 720, Height: 1280}},
		},
	}

	meta := FromPost(post, 1, 2048)
	assert.Equal(t, 2, meta.Index)
	assert.Equal(t, "https://cdn/b.mp4", meta.URL)
	assert.True(t, meta.IsVideo)
	assert.Equal(t, "9:16", meta.AspectRatio())
	require.NotNil(t, meta.TakenAt)
	assert.Equal(t, int64(1700000000), meta.TakenAt.Unix())
	assert.Equal(t, "nasa", meta.Owner.Username)

	assert.Equal(t, "4:5", FromPost(post, 0, 0).AspectRatio())

	thin := FromPost(models.Post{ID: "2"}, 0, 0)
	assert.Nil(t, thin.LikesCount)
	assert.Nil(t, thin.TakenAt)
	assert.Equal(t, "unknown", thin.AspectRatio())
}

func TestFromHighlight(t *testing.T) {
	h := models.Highlight{
		ID:    "h1",
		Title: "Trips",
		Owner: models.Owner{Username: "nasa"},
		Items: []models.MediaItem{{Type: models.MediaImage, DisplayURL: "https://cdn/s.jpg"}},
	}

	meta := FromHighlight(h, 0, 10)
	assert.Equal(t, "Trips", meta.Highlight)
	assert.Equal(t, "https://cdn/s.jpg", meta.URL)
	assert.Equal(t, 1, meta.Index)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "abc_1.jpg")
	require.NoError(t, os.WriteFile(mediaPath, []byte("jpg"), 0644))

	meta := FromPost(models.Post{ID: "1", Shortcode: "abc", Caption: "line one\nline two"}, 0, 3)
	require.NoError(t, meta.Save(mediaPath))
	assert.True(t, Exists(mediaPath))

	loaded, err := Load(mediaPath)
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.Shortcode)
	assert.Equal(t, "line one line two", loaded.FormattedCaption(100))
	assert.Equal(t, "line...", loaded.FormattedCaption(7))
}

func TestCleanOrphaned(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "kept.jpg")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(kept+".json", []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gone.jpg.json"), []byte("{}"), 0644))

	require.NoError(t, CleanOrphaned(dir))

	assert.True(t, Exists(kept))
	assert.False(t, Exists(filepath.Join(dir, "gone.jpg")))
}
