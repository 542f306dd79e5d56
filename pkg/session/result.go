package session

import (
	"igloader/pkg/models"
	"igloader/pkg/search"
)

// Result is the outcome of a successful search. Exactly one variant is
// active per session: *PostResult, *ProfileResult or *HighlightResult.
type Result interface {
	Mode() search.Mode
	isResult()
}

// PostResult holds a single post lookup
type PostResult struct {
	Post models.Post
}

// ProfileResult holds a profile and the ids of its two background jobs
type ProfileResult struct {
	Profile          models.Profile
	PostsTaskID      string
	HighlightsTaskID string
}

// HighlightResult holds a single highlight reel lookup
type HighlightResult struct {
	Highlight models.Highlight
}

func (*PostResult) Mode() search.Mode      { return search.ModePost }
func (*ProfileResult) Mode() search.Mode   { return search.ModeProfile }
func (*HighlightResult) Mode() search.Mode { return search.ModeHighlight }

func (*PostResult) isResult()      {}
func (*ProfileResult) isResult()   {}
func (*HighlightResult) isResult() {}
