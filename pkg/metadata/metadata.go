package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"igloader/pkg/models"
)

// MediaMetadata describes one downloaded media file
type MediaMetadata struct {
	// Core identifiers
	ID        string `json:"id"`
	Shortcode string `json:"shortcode,omitempty"`
	Index     int    `json:"index"`
	URL       string `json:"url"`

	// Media properties
	Width    int   `json:"width"`
	Height   int   `json:"height"`
	IsVideo  bool  `json:"is_video"`
	FileSize int64 `json:"file_size,omitempty"`

	// Timestamps
	TakenAt      *time.Time `json:"taken_at,omitempty"`
	DownloadedAt time.Time  `json:"downloaded_at"`

	// Content
	Caption              string `json:"caption,omitempty"`
	AccessibilityCaption string `json:"accessibility_caption,omitempty"`
	Highlight            string `json:"highlight,omitempty"`

	// Engagement; LikesCount is absent for thin grid posts
	LikesCount    *int `json:"likes_count,omitempty"`
	CommentsCount int  `json:"comments_count"`

	Owner Owner `json:"owner"`
}

// Owner represents the media owner
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// FromPost describes item index (zero based) of post
func FromPost(post models.Post, index int, fileSize int64) *MediaMetadata {
	meta := &MediaMetadata{
		ID:            post.ID,
		Shortcode:     post.Shortcode,
		Index:         index + 1,
		FileSize:      fileSize,
		DownloadedAt:  time.Now(),
		Caption:       post.Caption,
		LikesCount:    post.LikeCount,
		CommentsCount: post.CommentCount,
		Owner: Owner{
			ID:       post.Owner.ID,
			Username: post.Owner.Username,
		},
	}
	if takenAt, ok := post.TakenAt.Time(); ok {
		meta.TakenAt = &takenAt
	}
	if index >= 0 && index < len(post.Media) {
		meta.applyItem(post.Media[index])
	}
	return meta
}

// FromHighlight describes item index (zero based) of a highlight reel
func FromHighlight(h models.Highlight, index int, fileSize int64) *MediaMetadata {
	meta := &MediaMetadata{
		ID:           h.ID,
		Index:        index + 1,
		FileSize:     fileSize,
		DownloadedAt: time.Now(),
		Highlight:    h.Title,
		Owner: Owner{
			ID:       h.Owner.ID,
			Username: h.Owner.Username,
		},
	}
	if index >= 0 && index < len(h.Items) {
		meta.applyItem(h.Items[index])
	}
	return meta
}

func (m *MediaMetadata) applyItem(item models.MediaItem) {
	m.URL = item.DownloadURL()
	m.Width = item.Dimensions.Width
	m.Height = item.Dimensions.Height
	m.IsVideo = item.IsVideo()
	m.AccessibilityCaption = item.AccessibilityCaption
}

// Save writes the metadata next to the media file
func (m *MediaMetadata) Save(mediaPath string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(mediaPath+".json", data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}

// Load reads the metadata stored next to a media file
func Load(mediaPath string) (*MediaMetadata, error) {
	data, err := os.ReadFile(mediaPath + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var meta MediaMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &meta, nil
}

// FormattedCaption returns the caption on one line, cut to maxLength runes
func (m *MediaMetadata) FormattedCaption(maxLength int) string {
	caption := strings.Join(strings.Fields(m.Caption), " ")
	runes := []rune(caption)
	if maxLength > 3 && len(runes) > maxLength {
		return string(runes[:maxLength-3]) + "..."
	}
	return caption
}

// AspectRatio returns the aspect ratio as a string
func (m *MediaMetadata) AspectRatio() string {
	if m.Height == 0 {
		return "unknown"
	}

	ratio := float64(m.Width) / float64(m.Height)
	switch {
	case ratio > 1.7 && ratio < 1.8:
		return "16:9"
	case ratio > 1.3 && ratio < 1.4:
		return "4:3"
	case ratio > 0.9 && ratio < 1.1:
		return "1:1"
	case ratio > 0.55 && ratio < 0.57:
		return "9:16"
	case ratio > 0.79 && ratio < 0.81:
		return "4:5"
	default:
		return fmt.Sprintf("%.2f:1", ratio)
	}
}

// Exists checks if a metadata file exists for a media file
func Exists(mediaPath string) bool {
	_, err := os.Stat(mediaPath + ".json")
	return err == nil
}

// CleanOrphaned removes metadata files whose media file is gone
func CleanOrphaned(directory string) error {
	return filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		mediaPath := strings.TrimSuffix(path, ".json")
		if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove orphaned metadata %s: %w", path, err)
			}
		}
		return nil
	})
}
