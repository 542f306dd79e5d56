package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"igloader/internal/downloader"
	"igloader/pkg/models"
	"igloader/pkg/session"
)

// Viewer is the part of a session the TUI drives
type Viewer interface {
	Submit(ctx context.Context, raw string) error
	OpenProfile(ctx context.Context, username string) error
	State() session.State
	Subscribe(fn func(session.State)) (cancel func())
	BindVisibility(n session.VisibilityNotifier)
	UpgradePost(ctx context.Context, post models.Post) (models.Post, error)
	Reset(keepInput bool)
}

// Actions performs the side effects behind the download keys. Any of them
// may be left unset by passing a nil Actions.
type Actions interface {
	DownloadPosts(ctx context.Context, posts []models.Post) (downloader.Summary, error)
	DownloadHighlight(ctx context.Context, h models.Highlight) (downloader.Summary, error)
	ExportArchive(ctx context.Context, username string) (path string, size int64, err error)
}

// Options tune the TUI
type Options struct {
	// SlideInterval is how long an image slide stays up
	SlideInterval time.Duration
	// GridColumns is the width of the profile grid
	GridColumns int
	// Proxy rewrites image URLs for display
	Proxy func(string) string
	// Query is submitted as soon as the program starts
	Query string
}

// DefaultSlideInterval is how long a highlight image stays on screen
const DefaultSlideInterval = 5 * time.Second

func (o Options) withDefaults() Options {
	if o.SlideInterval <= 0 {
		o.SlideInterval = DefaultSlideInterval
	}
	if o.GridColumns <= 0 {
		o.GridColumns = 3
	}
	if o.Proxy == nil {
		o.Proxy = func(s string) string { return s }
	}
	return o
}

type focus int

const (
	focusInput focus = iota
	focusResults
)

type profilePane int

const (
	panePosts profilePane = iota
	paneHighlights
)

// Model is the bubbletea model of the viewer
type Model struct {
	ctx     context.Context
	viewer  Viewer
	actions Actions
	trigger *session.ManualNotifier
	opts    Options

	input    textinput.Model
	spinner  spinner.Model
	slideBar progress.Model
	help     help.Model
	keys     keyMap

	state      session.State
	lastGen    uint64
	enteredGen uint64
	focus      focus

	// post result
	carousel Carousel

	// profile result
	pane     profilePane
	cursor   int
	hlCursor int

	// post opened from the grid
	modal         *models.Post
	modalCarousel Carousel
	modalLoading  bool

	// highlight slideshow
	show           *models.Highlight
	slides         Slideshow
	showFromSearch bool
	// tickSeq changes on every slide move so stale auto-advance ticks are ignored
	tickSeq int

	status    string
	statusErr bool
	busy      bool

	width    int
	height   int
	showHelp bool
}

// NewModel creates a model over viewer. The model binds its own visibility
// notifier to the viewer; it is detached when the program exits.
func NewModel(ctx context.Context, viewer Viewer, actions Actions, opts Options) *Model {
	opts = opts.withDefaults()

	in := textinput.New()
	in.Placeholder = "post URL, @username or highlight link"
	in.Prompt = "› "
	in.CharLimit = 512
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40

	m := &Model{
		ctx:      ctx,
		viewer:   viewer,
		actions:  actions,
		trigger:  &session.ManualNotifier{},
		opts:     opts,
		input:    in,
		spinner:  s,
		slideBar: bar,
		help:     help.New(),
		keys:     defaultKeys(),
		state:    viewer.State(),
	}
	m.lastGen = m.state.Generation
	if m.state.Phase == session.PhaseSuccess {
		m.enteredGen = m.state.Generation
	}
	viewer.BindVisibility(m.trigger)
	return m
}

// Init starts the cursor blink and the spinner, and submits the initial
// query if there is one
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.opts.Query != "" {
		m.input.SetValue(m.opts.Query)
		cmds = append(cmds, m.submit(m.opts.Query))
	}
	return tea.Batch(cmds...)
}

// State returns the last snapshot the model rendered
func (m *Model) State() session.State {
	return m.state
}

func (m *Model) profile() (*session.ProfileResult, bool) {
	return m.state.Profile()
}

// selectedPost returns the grid post under the cursor
func (m *Model) selectedPost() (models.Post, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Posts) {
		return models.Post{}, false
	}
	return m.state.Posts[m.cursor], true
}

// sentinelVisible reports whether the cursor is on the last grid row,
// where the end-of-list marker is on screen
func (m *Model) sentinelVisible() bool {
	if _, ok := m.profile(); !ok || m.pane != panePosts || m.modal != nil || m.show != nil {
		return false
	}
	n := len(m.state.Posts)
	if n == 0 {
		return false
	}
	return m.cursor >= n-m.opts.GridColumns
}

// maybeLoadMore reports the sentinel to the session when it is visible
func (m *Model) maybeLoadMore() {
	if m.sentinelVisible() {
		m.trigger.Trigger()
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}
