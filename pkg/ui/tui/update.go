package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"igloader/pkg/models"
	"igloader/pkg/search"
	"igloader/pkg/session"
)

// StateMsg delivers a session snapshot to the program
type StateMsg struct {
	State session.State
}

type searchDoneMsg struct {
	err error
}

type upgradedMsg struct {
	shortcode string
	post      models.Post
	err       error
}

type slideTickMsg struct {
	seq int
}

type actionDoneMsg struct {
	text string
	err  error
}

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 8
		m.slideBar.Width = min(msg.Width-8, 60)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StateMsg:
		return m, m.applyState(msg.State)

	case searchDoneMsg:
		if errors.Is(msg.err, session.ErrClosed) {
			return m, tea.Quit
		}
		return m, nil

	case upgradedMsg:
		if m.modal == nil || m.modal.Shortcode != msg.shortcode {
			return m, nil
		}
		m.modalLoading = false
		if msg.err != nil {
			m.setStatus("Could not load post details: "+msg.err.Error(), true)
			return m, nil
		}
		index := m.modalCarousel.Index()
		m.modal = &msg.post
		m.modalCarousel = NewCarousel(len(msg.post.Media))
		if index < m.modalCarousel.Size() {
			m.modalCarousel.index = index
		}
		return m, nil

	case slideTickMsg:
		if m.show == nil || msg.seq != m.tickSeq {
			return m, nil
		}
		return m, m.nextSlide()

	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(msg.text+": "+msg.err.Error(), true)
		} else {
			m.setStatus(msg.text, false)
		}
		return m, nil
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyState adopts a new snapshot. A new generation drops every view of
// the previous search; the first successful snapshot of a generation opens
// its result.
func (m *Model) applyState(st session.State) tea.Cmd {
	// listeners run outside the session lock and may deliver out of order
	if st.Version < m.state.Version {
		return nil
	}
	m.state = st

	if st.Generation != m.lastGen {
		m.lastGen = st.Generation
		m.cursor, m.hlCursor, m.pane = 0, 0, panePosts
		m.modal, m.modalLoading = nil, false
		m.show, m.showFromSearch = nil, false
		m.tickSeq++
		m.carousel = Carousel{}
	}

	if m.cursor >= len(st.Posts) && len(st.Posts) > 0 {
		m.cursor = len(st.Posts) - 1
	}
	if m.hlCursor >= len(st.Highlights) && len(st.Highlights) > 0 {
		m.hlCursor = len(st.Highlights) - 1
	}

	var cmd tea.Cmd
	if st.Phase == session.PhaseSuccess && m.enteredGen != st.Generation {
		m.enteredGen = st.Generation
		m.focusResults()
		if post, ok := st.Post(); ok {
			m.carousel = NewCarousel(len(post.Post.Media))
		}
		if h, ok := st.Highlight(); ok {
			cmd = m.openShow(h.Highlight, true)
		}
	}

	// an observation attached while the end of the grid is on screen fires at once
	m.maybeLoadMore()
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Clear) {
		m.input.SetValue("")
		m.setStatus("", false)
		// session listeners send to the program, so never call back into it from Update
		viewer := m.viewer
		reset := func() tea.Msg {
			viewer.Reset(false)
			return nil
		}
		return m, tea.Batch(m.focusInput(), reset)
	}
	if m.focus == focusInput {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Search):
		return m, m.focusInput()
	}

	if m.show != nil {
		return m, m.handleShowKey(msg)
	}
	if m.modal != nil {
		return m, m.handleModalKey(msg)
	}

	switch m.state.Result.(type) {
	case *session.PostResult:
		return m, m.handlePostKey(msg)
	case *session.ProfileResult:
		return m, m.handleProfileKey(msg)
	case *session.HighlightResult:
		if key.Matches(msg, m.keys.Submit) {
			h, _ := m.state.Highlight()
			return m, m.openShow(h.Highlight, true)
		}
	}

	if key.Matches(msg, m.keys.Back) {
		return m, m.focusInput()
	}
	return m, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit(m.input.Value())
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.SwitchFocus):
		if m.state.Result != nil {
			m.focusResults()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handlePostKey(msg tea.KeyMsg) tea.Cmd {
	post, _ := m.state.Post()
	switch {
	case key.Matches(msg, m.keys.Left):
		m.carousel.Prev()
	case key.Matches(msg, m.keys.Right):
		m.carousel.Next()
	case key.Matches(msg, m.keys.Owner):
		return m.openProfile(post.Post.Owner.Username)
	case key.Matches(msg, m.keys.Download):
		return m.downloadPosts([]models.Post{post.Post}, "post "+post.Post.Shortcode)
	case key.Matches(msg, m.keys.Back):
		return m.focusInput()
	}
	return nil
}

func (m *Model) handleProfileKey(msg tea.KeyMsg) tea.Cmd {
	profile, _ := m.profile()

	switch {
	case key.Matches(msg, m.keys.SwitchFocus):
		if m.pane == panePosts {
			m.pane = paneHighlights
		} else {
			m.pane = panePosts
			m.maybeLoadMore()
		}
		return nil
	case key.Matches(msg, m.keys.Export):
		return m.exportArchive(profile.Profile.Username)
	case key.Matches(msg, m.keys.DownloadAll):
		return m.downloadPosts(m.state.Posts, fmt.Sprintf("%d posts of @%s", len(m.state.Posts), profile.Profile.Username))
	case key.Matches(msg, m.keys.Back):
		return m.focusInput()
	}

	if m.pane == paneHighlights {
		return m.handleHighlightListKey(msg)
	}

	n := len(m.state.Posts)
	cols := m.opts.GridColumns
	switch {
	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor-cols >= 0 {
			m.cursor -= cols
		}
	case key.Matches(msg, m.keys.Down):
		if n > 0 {
			m.cursor = min(m.cursor+cols, n-1)
		}
	case key.Matches(msg, m.keys.Submit):
		if post, ok := m.selectedPost(); ok {
			return m.openModal(post)
		}
		return nil
	case key.Matches(msg, m.keys.Download):
		if post, ok := m.selectedPost(); ok {
			return m.downloadPosts([]models.Post{post}, "post "+post.Shortcode)
		}
		return nil
	default:
		return nil
	}

	m.maybeLoadMore()
	return nil
}

func (m *Model) handleHighlightListKey(msg tea.KeyMsg) tea.Cmd {
	n := len(m.state.Highlights)
	switch {
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Left):
		if m.hlCursor > 0 {
			m.hlCursor--
		}
	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Right):
		if m.hlCursor < n-1 {
			m.hlCursor++
		}
	case key.Matches(msg, m.keys.Submit):
		if m.hlCursor < n {
			return m.openShow(m.state.Highlights[m.hlCursor], false)
		}
	case key.Matches(msg, m.keys.Download):
		if m.hlCursor < n {
			return m.downloadHighlight(m.state.Highlights[m.hlCursor])
		}
	}
	return nil
}

func (m *Model) handleModalKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.modal, m.modalLoading = nil, false
		m.maybeLoadMore()
	case key.Matches(msg, m.keys.Left):
		m.modalCarousel.Prev()
	case key.Matches(msg, m.keys.Right):
		m.modalCarousel.Next()
	case key.Matches(msg, m.keys.Owner):
		return m.openProfile(m.modal.Owner.Username)
	case key.Matches(msg, m.keys.Download):
		return m.downloadPosts([]models.Post{*m.modal}, "post "+m.modal.Shortcode)
	}
	return nil
}

func (m *Model) handleShowKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.endShow()
	case key.Matches(msg, m.keys.Right):
		return m.nextSlide()
	case key.Matches(msg, m.keys.Left):
		m.slides.Prev()
		return m.scheduleSlide()
	case key.Matches(msg, m.keys.Download):
		return m.downloadHighlight(*m.show)
	}
	return nil
}

func (m *Model) submit(raw string) tea.Cmd {
	m.setStatus("", false)
	if !search.Classify(raw).IsBlank() {
		m.focusResults()
	}
	ctx, viewer := m.ctx, m.viewer
	return func() tea.Msg {
		return searchDoneMsg{err: viewer.Submit(ctx, raw)}
	}
}

func (m *Model) openProfile(username string) tea.Cmd {
	if username == "" {
		return nil
	}
	m.input.SetValue("@" + username)
	ctx, viewer := m.ctx, m.viewer
	return func() tea.Msg {
		return searchDoneMsg{err: viewer.OpenProfile(ctx, username)}
	}
}

// openModal shows a grid post and fetches its full details when it is thin
func (m *Model) openModal(post models.Post) tea.Cmd {
	m.modal = &post
	m.modalCarousel = NewCarousel(len(post.Media))
	if !post.IsThin() {
		return nil
	}

	m.modalLoading = true
	ctx, viewer := m.ctx, m.viewer
	return func() tea.Msg {
		full, err := viewer.UpgradePost(ctx, post)
		return upgradedMsg{shortcode: post.Shortcode, post: full, err: err}
	}
}

func (m *Model) openShow(h models.Highlight, fromSearch bool) tea.Cmd {
	if len(h.Items) == 0 {
		m.setStatus("This highlight has no slides", true)
		return nil
	}
	m.show = &h
	m.showFromSearch = fromSearch
	m.slides = NewSlideshow(len(h.Items))
	return m.scheduleSlide()
}

// scheduleSlide arms the auto-advance of the current slide. Videos wait
// for the user.
func (m *Model) scheduleSlide() tea.Cmd {
	m.tickSeq++
	if m.show == nil || m.show.Items[m.slides.Index()].IsVideo() {
		return nil
	}
	seq := m.tickSeq
	return tea.Tick(m.opts.SlideInterval, func(time.Time) tea.Msg {
		return slideTickMsg{seq: seq}
	})
}

func (m *Model) nextSlide() tea.Cmd {
	if m.slides.Next() {
		m.endShow()
		return nil
	}
	return m.scheduleSlide()
}

// endShow closes the slideshow. A highlight opened from the search box
// hands focus back to it.
func (m *Model) endShow() {
	fromSearch := m.showFromSearch
	m.show, m.showFromSearch = nil, false
	m.tickSeq++
	if fromSearch {
		m.focusInput()
	}
}

func (m *Model) downloadPosts(posts []models.Post, what string) tea.Cmd {
	if !m.canAct() || len(posts) == 0 {
		return nil
	}
	m.busy = true
	m.setStatus("Downloading "+what+"…", false)

	ctx, actions := m.ctx, m.actions
	return func() tea.Msg {
		summary, err := actions.DownloadPosts(ctx, posts)
		return actionDoneMsg{text: "Downloaded " + what + ": " + summary.String(), err: err}
	}
}

func (m *Model) downloadHighlight(h models.Highlight) tea.Cmd {
	if !m.canAct() {
		return nil
	}
	m.busy = true
	m.setStatus("Downloading highlight "+h.Title+"…", false)

	ctx, actions := m.ctx, m.actions
	return func() tea.Msg {
		summary, err := actions.DownloadHighlight(ctx, h)
		return actionDoneMsg{text: "Downloaded " + h.Title + ": " + summary.String(), err: err}
	}
}

func (m *Model) exportArchive(username string) tea.Cmd {
	if m.state.DownloadingArchive {
		return nil
	}
	if !m.state.ArchiveAvailable() {
		m.setStatus(fmt.Sprintf("Archive not ready yet (%s)", m.state.TaskStatus), true)
		return nil
	}
	if !m.canAct() {
		return nil
	}
	m.busy = true
	m.setStatus("Preparing archive of @"+username+"…", false)

	ctx, actions := m.ctx, m.actions
	return func() tea.Msg {
		path, size, err := actions.ExportArchive(ctx, username)
		if err != nil {
			return actionDoneMsg{text: "Export failed", err: err}
		}
		return actionDoneMsg{text: fmt.Sprintf("Saved %s (%s)", filepath.Base(path), humanize.Bytes(uint64(size)))}
	}
}

func (m *Model) canAct() bool {
	if m.actions == nil {
		m.setStatus("Downloads are not available", true)
		return false
	}
	return !m.busy
}

func (m *Model) focusInput() tea.Cmd {
	m.focus = focusInput
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

func (m *Model) focusResults() {
	m.focus = focusResults
	m.input.Blur()
}
