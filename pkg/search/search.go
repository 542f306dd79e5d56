// Package search turns what the user typed into a request mode and term.
package search

import (
	"fmt"
	"strings"
)

// Mode is the kind of lookup a search term asks for
type Mode string

const (
	ModePost      Mode = "post"
	ModeProfile   Mode = "profile"
	ModeHighlight Mode = "highlight"
)

// ParseMode accepts a mode name as typed on the command line
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePost, ModeProfile, ModeHighlight:
		return m, nil
	default:
		return "", fmt.Errorf("unknown search mode %q (want post, profile or highlight)", s)
	}
}

// Query is a classified search term
type Query struct {
	Mode Mode
	Term string
}

// Display renders the query the way it was typed: profiles keep their @
func (q Query) Display() string {
	if q.Mode == ModeProfile {
		return "@" + q.Term
	}
	return q.Term
}

// Classify decides the mode from the raw input. A leading @ means a profile
// (the @ is dropped), anything containing "highlights/" is a highlight link
// and everything else is treated as a post link or shortcode.
func Classify(raw string) Query {
	value := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(value, "@"):
		return Query{Mode: ModeProfile, Term: value[1:]}
	case strings.Contains(value, "highlights/"):
		return Query{Mode: ModeHighlight, Term: value}
	default:
		return Query{Mode: ModePost, Term: value}
	}
}

// IsBlank reports whether the term is empty after trimming whitespace
func (q Query) IsBlank() bool {
	return strings.TrimSpace(q.Term) == ""
}
