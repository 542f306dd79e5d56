package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"igloader/pkg/models"
)

const captionWidth = 120

// RenderPost writes a post card
func RenderPost(w io.Writer, post models.Post) {
	fmt.Fprintf(w, "%s %s\n", Bold("@"+post.Owner.Username), Dim(post.Shortcode))
	if t, ok := post.TakenAt.Time(); ok {
		fmt.Fprintf(w, "  %s\n", Dim(humanize.Time(t)))
	}
	if post.Caption != "" {
		fmt.Fprintf(w, "  %s\n", truncate(post.Caption, captionWidth))
	}

	likes := "?"
	if post.LikeCount != nil {
		likes = humanize.Comma(int64(*post.LikeCount))
	}
	fmt.Fprintf(w, "  ♥ %s  💬 %s", likes, humanize.Comma(int64(post.CommentCount)))
	if post.IsPrivate {
		fmt.Fprint(w, "  "+Yellow("private"))
	}
	fmt.Fprintln(w)

	for i, item := range post.Media {
		fmt.Fprintf(w, "  [%d/%d] %-5s %s\n", i+1, len(post.Media), item.Type, Dim(item.DownloadURL()))
	}
}

// RenderProfile writes the profile header
func RenderProfile(w io.Writer, p models.Profile) {
	fmt.Fprintf(w, "%s\n", Bold("@"+p.Username))
	fmt.Fprintf(w, "  %s posts  %s followers  %s following\n",
		Cyan(humanize.Comma(int64(p.MediaCount))),
		Cyan(humanize.Comma(int64(p.FollowersCount))),
		Cyan(humanize.Comma(int64(p.FollowingCount))),
	)
	if p.Biography != "" {
		for _, line := range strings.Split(p.Biography, "\n") {
			fmt.Fprintf(w, "  %s\n", Dim(line))
		}
	}
}

// RenderGrid writes one line per post of a profile grid starting at offset
func RenderGrid(w io.Writer, posts []models.Post, offset int) {
	for i, post := range posts {
		media := ""
		if len(post.Media) > 1 {
			media = fmt.Sprintf(" (%d)", len(post.Media))
		} else if cover, ok := post.Cover(); ok && cover.IsVideo() {
			media = " ▶"
		}
		fmt.Fprintf(w, "%4d  %s%s  %s\n",
			offset+i+1,
			post.Shortcode,
			media,
			Dim(truncate(post.Caption, 60)),
		)
	}
}

// RenderHighlight writes a highlight reel and its slides
func RenderHighlight(w io.Writer, h models.Highlight) {
	fmt.Fprintf(w, "%s %s\n", Bold(h.Title), Dim("@"+h.Owner.Username))
	for i, item := range h.Items {
		fmt.Fprintf(w, "  [%d/%d] %-5s %s\n", i+1, len(h.Items), item.Type, Dim(item.DownloadURL()))
	}
}

// RenderHighlightList writes the titles of a profile's highlights
func RenderHighlightList(w io.Writer, list []models.Highlight) {
	for _, h := range list {
		fmt.Fprintf(w, "  ◯ %s %s\n", h.Title, Dim(fmt.Sprintf("(%d)", len(h.Items))))
	}
}

// truncate shortens s to max runes on a single line
func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
