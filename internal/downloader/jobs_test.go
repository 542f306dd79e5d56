package downloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igloader/pkg/models"
)

func TestPostJobsNaming(t *testing.T) {
	post := models.Post{
		Shortcode: "Cx1",
		Owner:     models.Owner{Username: "nasa"},
		Media: []models.MediaItem{
			{Type: models.MediaImage, DisplayURL: "https://cdn/a.jpg", Resources: []models.MediaResource{
				{Src: "https://cdn/a_320.jpg", Width: 320},
				{Src: "https://cdn/a_1080.jpg", Width: 1080},
			}},
			{Type: models.MediaVideo, VideoURL: "https://cdn/b.mp4"},
			{Type: models.MediaVideo},
		},
	}

	jobs := PostJobs(post, JobOptions{})
	require.Len(t, jobs, 2, "videos without a URL are skipped")
	assert.Equal(t, "Cx1_1.jpg", jobs[0].Name)
	assert.Equal(t, "https://cdn/a_1080.jpg", jobs[0].URL)
	assert.Equal(t, "Cx1_2.mp4", jobs[1].Name)
	assert.Equal(t, "nasa", jobs[1].Folder)
	assert.NotEqual(t, jobs[0].ID, jobs[1].ID)
	assert.Nil(t, jobs[0].Meta)

	videosOnly := PostJobs(post, JobOptions{SkipImages: true, Metadata: true})
	require.Len(t, videosOnly, 1)
	assert.Equal(t, "Cx1_2.mp4", videosOnly[0].Name)
	assert.NotNil(t, videosOnly[0].Meta)
}

func TestHighlightJobsUseProxy(t *testing.T) {
	h := models.Highlight{
		Title: "Summer 24!",
		Items: []models.MediaItem{
			{Type: models.MediaImage, DisplayURL: "https://cdn/s1.jpg"},
			{Type: models.MediaVideo, VideoURL: "https://cdn/s2.mp4"},
		},
	}

	jobs := HighlightJobs(h, JobOptions{Proxy: func(raw string) string { return "proxy:" + raw }})
	require.Len(t, jobs, 2)
	assert.Equal(t, "Summer_24__1.jpg", jobs[0].Name)
	assert.Equal(t, "Summer_24__2.mp4", jobs[1].Name)
	assert.Equal(t, "proxy:https://cdn/s1.jpg", jobs[0].URL)
}

func TestSummaryString(t *testing.T) {
	s := Summarize([]Result{
		{Success: true, Size: 1500},
		{Success: true, Skipped: true},
		{Error: assert.AnError},
	})

	assert.Equal(t, Summary{Total: 3, Downloaded: 1, Skipped: 1, Failed: 1, Bytes: 1500}, s)
	assert.Equal(t, "1 downloaded (1.5 kB), 1 already present, 1 failed", s.String())
}
