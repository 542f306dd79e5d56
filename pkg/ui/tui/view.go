package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"igloader/pkg/models"
	"igloader/pkg/session"
)

const logo = "◎ igloader"

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	sections := []string{
		logoStyle.Render(logo),
		m.renderInput(),
		m.renderBody(),
	}
	if m.status != "" {
		if m.statusErr {
			sections = append(sections, errorStyle.Render(m.status))
		} else {
			sections = append(sections, successStyle.Render(m.status))
		}
	}
	sections = append(sections, helpStyle.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderInput() string {
	style := inputBoxStyle
	if m.focus != focusInput {
		style = inputBoxBlurredStyle
	}
	return style.Width(max(m.width-4, 20)).Render(m.input.View())
}

func (m *Model) renderBody() string {
	switch {
	case m.show != nil:
		return m.renderShow()
	case m.modal != nil:
		return m.renderPostCard(*m.modal, m.modalCarousel, m.modalLoading)
	}

	switch m.state.Phase {
	case session.PhaseLoading:
		return fmt.Sprintf("%s Looking up %s…", m.spinner.View(), m.state.Input)
	case session.PhaseError:
		return errorStyle.Render(m.state.Error)
	case session.PhaseIdle:
		return dimStyle.Render("Paste a post URL, an @username or a highlight link and press enter.")
	}

	switch r := m.state.Result.(type) {
	case *session.PostResult:
		return m.renderPostCard(r.Post, m.carousel, false)
	case *session.ProfileResult:
		return m.renderProfile(r)
	case *session.HighlightResult:
		return dimStyle.Render(fmt.Sprintf("Highlight %q: press enter to play again.", r.Highlight.Title))
	}
	return ""
}

func (m *Model) renderPostCard(post models.Post, c Carousel, loading bool) string {
	var lines []string

	header := labelStyle.Render("@" + post.Owner.Username)
	if t, ok := post.TakenAt.Time(); ok {
		header += "  " + dimStyle.Render(humanize.Time(t))
	}
	if post.IsPrivate {
		header += "  " + warningStyle.Render("private")
	}
	lines = append(lines, header)

	if c.Size() > 0 {
		item := post.Media[c.Index()]
		lines = append(lines,
			fmt.Sprintf("%s %s", valueStyle.Render(string(item.Type)), m.mediaURL(item)),
			dots(c.Index(), c.Size()),
		)
		if item.AccessibilityCaption != "" {
			lines = append(lines, dimStyle.Render(item.AccessibilityCaption))
		}
	}

	if post.Caption != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(max(m.width-8, 20)).Render(post.Caption))
	}

	likes := "…"
	if post.LikeCount != nil {
		likes = humanize.Comma(int64(*post.LikeCount))
	} else if !loading {
		likes = "?"
	}
	lines = append(lines, "", fmt.Sprintf("♥ %s   💬 %s", likes, humanize.Comma(int64(post.CommentCount))))
	if loading {
		lines = append(lines, m.spinner.View()+" loading details")
	}

	title := titleStyle.Render(" POST " + post.Shortcode + " ")
	return panelStyle.Width(max(m.width-4, 20)).Render(
		lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, lines...)...),
	)
}

func (m *Model) renderProfile(r *session.ProfileResult) string {
	p := r.Profile
	header := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("@"+p.Username),
		fmt.Sprintf("%s posts  %s followers  %s following",
			valueStyle.Render(humanize.Comma(int64(p.MediaCount))),
			valueStyle.Render(humanize.Comma(int64(p.FollowersCount))),
			valueStyle.Render(humanize.Comma(int64(p.FollowingCount))),
		),
	)
	if p.Biography != "" {
		header = lipgloss.JoinVertical(lipgloss.Left, header, dimStyle.Render(p.Biography))
	}

	postsTab := tabStyle.Render(fmt.Sprintf("Posts (%d)", len(m.state.Posts)))
	hlTab := tabStyle.Render(fmt.Sprintf("Highlights (%d)", len(m.state.Highlights)))
	if m.pane == panePosts {
		postsTab = tabActiveStyle.Render(fmt.Sprintf("Posts (%d)", len(m.state.Posts)))
	} else {
		hlTab = tabActiveStyle.Render(fmt.Sprintf("Highlights (%d)", len(m.state.Highlights)))
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, postsTab, " ", hlTab, "  ", m.renderArchiveStatus())

	var body string
	if m.pane == panePosts {
		body = m.renderGrid()
	} else {
		body = m.renderHighlightList()
	}

	return panelStyle.Width(max(m.width-4, 20)).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", tabs, body),
	)
}

func (m *Model) renderArchiveStatus() string {
	switch {
	case m.state.DownloadingArchive:
		return warningStyle.Render("exporting…")
	case m.state.ArchiveAvailable():
		return successStyle.Render("zip ready (z)")
	case m.state.TaskStatus != "":
		return taskStatusStyle(string(m.state.TaskStatus)).Render("job " + strings.ToLower(string(m.state.TaskStatus)))
	}
	return ""
}

func (m *Model) renderGrid() string {
	posts := m.state.Posts
	if len(posts) == 0 {
		if m.state.InitialPostsLoading {
			return m.spinner.View() + " Waiting for the first posts…"
		}
		return dimStyle.Render("No posts.")
	}

	cols := m.opts.GridColumns
	cellWidth := max((m.width-8)/cols-2, 12)
	rows := (len(posts) + cols - 1) / cols

	// only the rows around the cursor fit on screen
	visible := max((m.height-16)/3, 2)
	cursorRow := m.cursor / cols
	first := max(cursorRow-visible+1, 0)
	last := min(first+visible, rows)

	var lines []string
	for row := first; row < last; row++ {
		var cells []string
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(posts) {
				break
			}
			style := cellStyle
			if i == m.cursor {
				style = cellSelectedStyle
			}
			cells = append(cells, style.Width(cellWidth).Render(gridLabel(posts[i])))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	switch {
	case m.state.FetchingMore:
		lines = append(lines, m.spinner.View()+" Loading more…")
	case m.state.LoadMoreError != "":
		lines = append(lines, errorStyle.Render(m.state.LoadMoreError))
	case !m.state.HasMore() && !m.state.InitialPostsLoading:
		lines = append(lines, dimStyle.Render("End of posts"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// gridLabel is the text of a grid cell: the shortcode plus a marker for
// carousels and videos
func gridLabel(p models.Post) string {
	label := p.Shortcode
	if len(p.Media) > 1 {
		label += fmt.Sprintf(" ❐%d", len(p.Media))
	} else if cover, ok := p.Cover(); ok && cover.IsVideo() {
		label += " ▶"
	}
	return label
}

func (m *Model) renderHighlightList() string {
	if len(m.state.Highlights) == 0 {
		if m.state.FetchingHighlights {
			return m.spinner.View() + " Loading highlights…"
		}
		return dimStyle.Render("No highlights.")
	}

	var lines []string
	for i, h := range m.state.Highlights {
		line := fmt.Sprintf("◯ %s %s", h.Title, dimStyle.Render(fmt.Sprintf("(%d)", len(h.Items))))
		if i == m.hlCursor {
			line = successStyle.Render("● "+h.Title) + " " + dimStyle.Render(fmt.Sprintf("(%d)", len(h.Items)))
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderShow() string {
	h := m.show
	i, n := m.slides.Index(), m.slides.Size()
	item := h.Items[i]

	lines := []string{
		labelStyle.Render(h.Title) + "  " + dimStyle.Render("@"+h.Owner.Username),
		m.slideBar.ViewAs(float64(i+1) / float64(n)),
		fmt.Sprintf("%s %d/%d  %s", valueStyle.Render(string(item.Type)), i+1, n, m.mediaURL(item)),
	}
	if item.IsVideo() {
		lines = append(lines, dimStyle.Render("→ for the next slide"))
	}

	return panelStyle.Width(max(m.width-4, 20)).Render(
		lipgloss.JoinVertical(lipgloss.Left, append([]string{titleStyle.Render(" HIGHLIGHT ")}, lines...)...),
	)
}

// mediaURL is the address shown for an item: images go through the proxy
func (m *Model) mediaURL(item models.MediaItem) string {
	if item.IsVideo() {
		return item.VideoURL
	}
	return m.opts.Proxy(item.BestImageURL(models.QualityFull))
}

// dots renders a carousel position indicator
func dots(index, size int) string {
	if size <= 1 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < size; i++ {
		if i == index {
			b.WriteString("●")
		} else {
			b.WriteString("○")
		}
	}
	return b.String()
}
