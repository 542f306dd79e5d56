package session

import (
	"igloader/pkg/models"
	"igloader/pkg/search"
)

// Phase is where the top-level search stands
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// State is a snapshot of a session. Snapshots are copies; changing one has
// no effect on the session.
type State struct {
	// Version increases with every change
	Version uint64
	// Generation increases with every search or reset
	Generation uint64

	Phase  Phase
	Mode   search.Mode
	Input  string
	Result Result
	Error  string

	Posts               []models.Post
	Cursor              *string
	InitialPostsLoading bool
	FetchingMore        bool
	LoadMoreError       string

	Highlights         []models.Highlight
	FetchingHighlights bool

	TaskStatus         models.TaskStatus
	DownloadingArchive bool
}

// Profile returns the active profile result, if any
func (s State) Profile() (*ProfileResult, bool) {
	p, ok := s.Result.(*ProfileResult)
	return p, ok
}

// Post returns the active post result, if any
func (s State) Post() (*PostResult, bool) {
	p, ok := s.Result.(*PostResult)
	return p, ok
}

// Highlight returns the active highlight result, if any
func (s State) Highlight() (*HighlightResult, bool) {
	h, ok := s.Result.(*HighlightResult)
	return h, ok
}

// HasMore reports whether another page of posts can be requested
func (s State) HasMore() bool {
	return s.Cursor != nil
}

// ArchiveAvailable reports whether the profile ZIP can be downloaded
func (s State) ArchiveAvailable() bool {
	_, ok := s.Profile()
	return ok && s.TaskStatus == models.TaskSuccess
}

// postsTaskID is the job id of the active profile or ""
func (s State) postsTaskID() string {
	if p, ok := s.Profile(); ok {
		return p.PostsTaskID
	}
	return ""
}

func (s State) highlightsTaskID() string {
	if p, ok := s.Profile(); ok {
		return p.HighlightsTaskID
	}
	return ""
}

func (s State) clone() State {
	out := s
	if s.Posts != nil {
		out.Posts = append([]models.Post(nil), s.Posts...)
	}
	if s.Highlights != nil {
		out.Highlights = append([]models.Highlight(nil), s.Highlights...)
	}
	if s.Cursor != nil {
		c := *s.Cursor
		out.Cursor = &c
	}
	switch r := s.Result.(type) {
	case *PostResult:
		cp := *r
		out.Result = &cp
	case *ProfileResult:
		cp := *r
		out.Result = &cp
	case *HighlightResult:
		cp := *r
		out.Result = &cp
	}
	return out
}
