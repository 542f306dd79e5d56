package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// MediaType distinguishes the two variants of a MediaItem
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// TaskStatus is the state of a backend background job
type TaskStatus string

const (
	TaskPending  TaskStatus = "PENDING"
	TaskProgress TaskStatus = "PROGRESS"
	TaskSuccess  TaskStatus = "SUCCESS"
	TaskFailure  TaskStatus = "FAILURE"
)

// IsTerminal reports whether the job has finished one way or another
func (s TaskStatus) IsTerminal() bool {
	return s == TaskSuccess || s == TaskFailure
}

// NormalizeTaskStatus keeps terminal states verbatim and folds everything
// else into PROGRESS
func NormalizeTaskStatus(raw string) TaskStatus {
	switch TaskStatus(raw) {
	case TaskSuccess, TaskFailure:
		return TaskStatus(raw)
	default:
		return TaskProgress
	}
}

// MediaResource is one rendition of an image
type MediaResource struct {
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Dimensions of a media item
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MediaItem is a single image or video within a post or highlight
type MediaItem struct {
	ID                   string          `json:"id"`
	Type                 MediaType       `json:"type"`
	DisplayURL           string          `json:"display_url"`
	Resources            []MediaResource `json:"resources,omitempty"`
	VideoURL             string          `json:"video_url,omitempty"`
	AccessibilityCaption string          `json:"accessibility_caption,omitempty"`
	Dimensions           Dimensions      `json:"dimensions"`
}

// IsVideo reports whether the item is the video variant
func (m MediaItem) IsVideo() bool {
	return m.Type == MediaVideo
}

// DownloadURL is the asset that should be saved for this item: the video
// itself or the largest image rendition. Empty when a video has no URL.
func (m MediaItem) DownloadURL() string {
	if m.IsVideo() {
		return m.VideoURL
	}
	return m.BestImageURL(QualityFull)
}

// Extension returns the file extension used when saving the item
func (m MediaItem) Extension() string {
	if m.IsVideo() {
		return "mp4"
	}
	return "jpg"
}

// ImageQuality selects a rendition in BestImageURL
type ImageQuality int

const (
	QualityThumbnail ImageQuality = iota
	QualityFull
)

// thumbnailMinWidth is the narrowest rendition accepted for grid thumbnails
const thumbnailMinWidth = 480

// BestImageURL picks a rendition: for thumbnails the first one at least 480px
// wide, otherwise the last (largest) one. Falls back to DisplayURL when
// there are no renditions.
func (m MediaItem) BestImageURL(q ImageQuality) string {
	if len(m.Resources) == 0 {
		return m.DisplayURL
	}
	if q == QualityThumbnail {
		for _, r := range m.Resources {
			if r.Width >= thumbnailMinWidth {
				return r.Src
			}
		}
	}
	if src := m.Resources[len(m.Resources)-1].Src; src != "" {
		return src
	}
	return m.DisplayURL
}

// Owner identifies the account a post or highlight belongs to
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Post is a single post. Posts that come from a profile listing are thin:
// LikeCount is nil until the post is fetched directly.
type Post struct {
	ID           string      `json:"id"`
	Shortcode    string      `json:"shortcode"`
	TakenAt      Timestamp   `json:"taken_at"`
	Caption      string      `json:"caption,omitempty"`
	LikeCount    *int        `json:"like_count,omitempty"`
	CommentCount int         `json:"comment_count"`
	IsPrivate    bool        `json:"is_private,omitempty"`
	Owner        Owner       `json:"owner"`
	Media        []MediaItem `json:"media"`
}

// IsThin reports whether engagement data is missing and a full fetch is due
func (p Post) IsThin() bool {
	return p.LikeCount == nil
}

// Cover returns the first media item, if any
func (p Post) Cover() (MediaItem, bool) {
	if len(p.Media) == 0 {
		return MediaItem{}, false
	}
	return p.Media[0], true
}

// Profile is the public summary of an account
type Profile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Avatar         string `json:"avatar"`
	MediaCount     int    `json:"media_count"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
	Biography      string `json:"biography,omitempty"`
}

// ProfileLookup is the answer to a profile search. The two task ids name
// the background jobs the backend started for this profile.
type ProfileLookup struct {
	Profile          Profile `json:"profile"`
	PostsTaskID      string  `json:"posts_task_id"`
	HighlightsTaskID string  `json:"highlights_task_id"`
}

// Highlight is a saved story reel
type Highlight struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Owner      Owner       `json:"owner"`
	MediaCount int         `json:"media_count"`
	Items      []MediaItem `json:"items"`
}

// SafeTitle replaces every character outside [a-zA-Z0-9] with an underscore
func (h Highlight) SafeTitle() string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, h.Title)
}

// PostPage is one page of a profile's posts.
// A nil Cursor means there are no more pages. Pending is set when the
// backend answered 202: the job has not produced this page yet.
type PostPage struct {
	Posts   []Post     `json:"posts"`
	Cursor  *string    `json:"end_cursor"`
	Status  TaskStatus `json:"status,omitempty"`
	Pending bool       `json:"-"`
}

// HasMore reports whether the server handed out a cursor for the next page
func (p PostPage) HasMore() bool {
	return p.Cursor != nil && *p.Cursor != ""
}

// HighlightList is the result of one poll of the highlights job
type HighlightList struct {
	Highlights []Highlight `json:"highlights"`
	Status     TaskStatus  `json:"status"`
}

// Settings is the opaque bag of backend options forwarded with requests.
// Proxy has the form host:port:user:pass.
type Settings struct {
	Proxy    string `json:"proxy,omitempty"`
	DocID    string `json:"docId,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// IsZero reports whether no setting is present
func (s Settings) IsZero() bool {
	return s == Settings{}
}

// Merge returns s with empty fields filled from other
func (s Settings) Merge(other Settings) Settings {
	if s.Proxy == "" {
		s.Proxy = other.Proxy
	}
	if s.DocID == "" {
		s.DocID = other.DocID
	}
	if s.Username == "" {
		s.Username = other.Username
	}
	if s.Password == "" {
		s.Password = other.Password
	}
	return s
}

// Timestamp is a capture time as sent by the backend. It is usually a
// string but plain numbers are accepted too.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
		return nil
	}
	if string(data) == "null" {
		*t = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Timestamp(n.String())
	return nil
}

// Time parses the timestamp as unix seconds or RFC 3339
func (t Timestamp) Time() (time.Time, bool) {
	if t == "" {
		return time.Time{}, false
	}
	if secs, err := strconv.ParseInt(string(t), 10, 64); err == nil {
		return time.Unix(secs, 0), true
	}
	if parsed, err := time.Parse(time.RFC3339, string(t)); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
