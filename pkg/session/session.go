package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"igloader/pkg/config"
	errs "igloader/pkg/errors"
	"igloader/pkg/logger"
	"igloader/pkg/models"
	"igloader/pkg/search"
)

var (
	// ErrSuperseded is returned when a newer search or a reset replaced the
	// generation an operation belonged to. Its result was discarded.
	ErrSuperseded = errors.New("session: superseded by a newer search")
	// ErrClosed is returned by operations on a closed session
	ErrClosed = errors.New("session: closed")
)

// Options tunes a session. Zero fields take the values from DefaultOptions.
type Options struct {
	Language            search.Language
	Settings            models.Settings
	InitialPageAttempts int
	InitialPageDelay    time.Duration
	LoadMoreCooldown    time.Duration
	TaskInterval        time.Duration
	HighlightInterval   time.Duration
	Logger              logger.Logger
	LogLevel            string
}

// DefaultOptions returns the timings the backend is designed around
func DefaultOptions() Options {
	return Options{
		Language:            search.English,
		InitialPageAttempts: 5,
		InitialPageDelay:    time.Second,
		LoadMoreCooldown:    2 * time.Second,
		TaskInterval:        3 * time.Second,
		HighlightInterval:   5 * time.Second,
		LogLevel:            "info",
	}
}

// OptionsFromConfig maps the application config onto session options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Language: search.Language(cfg.UI.Language),
		Settings: models.Settings{
			Proxy: cfg.Backend.Proxy,
			DocID: cfg.Backend.DocID,
		},
		InitialPageAttempts: cfg.Polling.InitialPageAttempts,
		InitialPageDelay:    cfg.Polling.InitialPageDelay,
		LoadMoreCooldown:    cfg.Polling.LoadMoreCooldown,
		TaskInterval:        cfg.Polling.TaskInterval,
		HighlightInterval:   cfg.Polling.HighlightInterval,
		LogLevel:            cfg.Logging.Level,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Language == "" {
		o.Language = d.Language
	}
	if o.InitialPageAttempts <= 0 {
		o.InitialPageAttempts = d.InitialPageAttempts
	}
	if o.InitialPageDelay <= 0 {
		o.InitialPageDelay = d.InitialPageDelay
	}
	if o.LoadMoreCooldown < 0 {
		o.LoadMoreCooldown = 0
	}
	if o.TaskInterval <= 0 {
		o.TaskInterval = d.TaskInterval
	}
	if o.HighlightInterval <= 0 {
		o.HighlightInterval = d.HighlightInterval
	}
	if o.Logger == nil {
		o.Logger = logger.GetLogger()
	}
	if o.LogLevel == "" {
		o.LogLevel = d.LogLevel
	}
	return o
}

// Session owns everything one viewer tab would: the active search result,
// the profile's accumulated posts and highlights, and the background work
// feeding them. Each search or reset starts a new generation; work started
// for an older generation is cancelled and its late results are dropped.
type Session struct {
	id      string
	backend Backend
	opts    Options
	log     logger.Logger
	sched   gocron.Scheduler

	mu        sync.Mutex
	state     State
	settings  models.Settings
	genCtx    context.Context
	genCancel context.CancelFunc
	pollers   []*poller
	vis       visibilityBinding
	listeners map[int]func(State)
	nextID    int
	changed   chan struct{}
	closed    bool

	wg sync.WaitGroup
}

// New creates an idle session talking to b
func New(b Backend, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	id := uuid.NewString()
	log := opts.Logger.WithField("session", id)

	sched, err := gocron.NewScheduler(
		gocron.WithLogger(logger.NewSlog(log, opts.LogLevel)),
		gocron.WithStopTimeout(5*time.Second),
	)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, "failed to create poll scheduler: "+err.Error())
	}
	sched.Start()

	genCtx, genCancel := context.WithCancel(context.Background())
	s := &Session{
		id:        id,
		backend:   b,
		opts:      opts,
		log:       log,
		sched:     sched,
		state:     State{Phase: PhaseIdle, Mode: search.ModePost},
		settings:  opts.Settings,
		genCtx:    genCtx,
		genCancel: genCancel,
		listeners: make(map[int]func(State)),
		changed:   make(chan struct{}),
	}

	logger.LogComponentStart(log, "session", map[string]interface{}{
		"task_interval":      opts.TaskInterval.String(),
		"highlight_interval": opts.HighlightInterval.String(),
		"initial_attempts":   opts.InitialPageAttempts,
	})
	return s, nil
}

// ID identifies the session in logs
func (s *Session) ID() string {
	return s.id
}

// State returns a snapshot of the session
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Settings returns the backend settings sent with lookups
func (s *Session) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSettings replaces the backend settings used by later lookups
func (s *Session) SetSettings(settings models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Submit classifies raw input and runs the matching search
func (s *Session) Submit(ctx context.Context, raw string) error {
	q := search.Classify(raw)
	return s.Search(ctx, q.Mode, q.Term)
}

// OpenProfile searches for username, as when a post's owner is selected
func (s *Session) OpenProfile(ctx context.Context, username string) error {
	return s.Search(ctx, search.ModeProfile, strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

// Search runs one lookup of term in mode and blocks until it completes.
// A blank term fails validation without any request. Otherwise all state
// of the previous search is discarded first, including its pollers. For a
// profile the initial page resolver and both job pollers start in the
// background once the lookup succeeds.
func (s *Session) Search(ctx context.Context, mode search.Mode, term string) error {
	q := search.Query{Mode: mode, Term: strings.TrimSpace(term)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	if q.IsBlank() {
		msg := search.EmptyTermMessage(s.opts.Language, mode)
		s.state.Phase = PhaseError
		s.state.Error = msg
		s.commitAndUnlock()
		return errs.Validation(msg)
	}

	gen, genCtx := s.beginLocked()
	s.resetLocked(q.Display())
	s.state.Mode = mode
	s.state.Phase = PhaseLoading
	settings := s.settings
	s.commitAndUnlock()

	log := s.log.WithFields(map[string]interface{}{
		"mode":       string(mode),
		"term":       q.Term,
		"generation": gen,
	})
	log.Debug("search started")

	reqCtx, cancel := context.WithCancel(genCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	result, err := s.lookup(reqCtx, q, settings)

	s.mu.Lock()
	if s.closed || gen != s.state.Generation {
		s.mu.Unlock()
		log.Debug("search result discarded")
		return ErrSuperseded
	}

	if err != nil {
		s.state.Phase = PhaseError
		s.state.Error = errs.Message(err)
		s.commitAndUnlock()
		log.WithError(err).Warn("search failed")
		return err
	}

	s.state.Result = result
	s.state.Phase = PhaseSuccess
	profile, isProfile := result.(*ProfileResult)
	if isProfile {
		s.state.TaskStatus = models.TaskProgress
		s.state.InitialPostsLoading = profile.PostsTaskID != ""
	}
	s.commitAndUnlock()
	log.Info("search completed")

	if isProfile {
		s.startProfileJobs(gen, genCtx, *profile)
	}
	return nil
}

func (s *Session) lookup(ctx context.Context, q search.Query, settings models.Settings) (Result, error) {
	switch q.Mode {
	case search.ModeProfile:
		lookup, err := s.backend.FetchProfile(ctx, q.Term, settings)
		if err != nil {
			return nil, err
		}
		return &ProfileResult{
			Profile:          lookup.Profile,
			PostsTaskID:      lookup.PostsTaskID,
			HighlightsTaskID: lookup.HighlightsTaskID,
		}, nil
	case search.ModeHighlight:
		h, err := s.backend.FetchHighlight(ctx, q.Term, settings)
		if err != nil {
			return nil, err
		}
		return &HighlightResult{Highlight: *h}, nil
	default:
		p, err := s.backend.FetchPost(ctx, q.Term, settings)
		if err != nil {
			return nil, err
		}
		return &PostResult{Post: *p}, nil
	}
}

// Reset returns the session to idle and stops all background work
func (s *Session) Reset(keepInput bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	input := ""
	if keepInput {
		input = s.state.Input
	}
	s.beginLocked()
	s.resetLocked(input)
	s.commitAndUnlock()
}

// UpgradePost returns post with full details. Posts from the profile grid
// lack engagement counts and are fetched again by shortcode; full posts are
// returned as is. On failure the thin post is returned with the error.
func (s *Session) UpgradePost(ctx context.Context, post models.Post) (models.Post, error) {
	if !post.IsThin() {
		return post, nil
	}

	full, err := s.backend.FetchFullPost(ctx, post.Shortcode, s.Settings())
	if err != nil {
		s.log.WithError(err).WithField("shortcode", post.Shortcode).Warn("failed to fetch full post")
		return post, err
	}
	return *full, nil
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned func unregisters it.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// WaitFor blocks until cond holds for the session state or ctx is done
func (s *Session) WaitFor(ctx context.Context, cond func(State) bool) (State, error) {
	for {
		s.mu.Lock()
		snap := s.state.clone()
		changed := s.changed
		s.mu.Unlock()

		if cond(snap) {
			return snap, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// Close stops all background work. The session cannot be used afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.genCancel()
	for _, p := range s.pollers {
		p.stop()
	}
	s.pollers = nil
	if s.vis.stop != nil {
		s.vis.stop()
		s.vis.stop = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
	err := s.sched.Shutdown()
	logger.LogComponentStop(s.log, "session", "closed")
	return err
}

// beginLocked invalidates everything tied to the current generation and
// opens the next one
func (s *Session) beginLocked() (uint64, context.Context) {
	s.genCancel()
	for _, p := range s.pollers {
		p.stop()
	}
	s.pollers = nil

	s.state.Generation++
	s.genCtx, s.genCancel = context.WithCancel(context.Background())
	return s.state.Generation, s.genCtx
}

// resetLocked clears every result slot. Generation, Version and Mode survive.
func (s *Session) resetLocked(input string) {
	s.state = State{
		Version:    s.state.Version,
		Generation: s.state.Generation,
		Phase:      PhaseIdle,
		Mode:       s.state.Mode,
		Input:      input,
	}
}

// apply runs fn against the state if gen is still current and publishes
// the change. It reports whether fn ran.
func (s *Session) apply(gen uint64, fn func(st *State)) bool {
	s.mu.Lock()
	if s.closed || gen != s.state.Generation {
		s.mu.Unlock()
		return false
	}
	fn(&s.state)
	s.commitAndUnlock()
	return true
}

// commitAndUnlock publishes the current state and releases s.mu.
// Listeners run after the lock is released.
func (s *Session) commitAndUnlock() {
	s.state.Version++
	close(s.changed)
	s.changed = make(chan struct{})
	s.rebindLocked()

	snap := s.state.clone()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// spawn runs fn on a tracked goroutine unless the session is closed
func (s *Session) spawn(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}
