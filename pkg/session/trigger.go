package session

import (
	"context"
	"sync"
)

// visibilityBinding is the single live observation of the sentinel after
// the last post
type visibilityBinding struct {
	notifier VisibilityNotifier
	stop     func()
	key      bindKey
	bound    bool
}

// bindKey captures what an observation depends on. A change of any field
// means the observation is torn down and re-attached.
type bindKey struct {
	gen       uint64
	fetching  bool
	hasCursor bool
	cursor    string
}

// BindVisibility attaches n as the trigger for LoadMore. Any previous
// notifier is detached first. Pass nil to detach.
func (s *Session) BindVisibility(n VisibilityNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vis.stop != nil {
		s.vis.stop()
	}
	s.vis = visibilityBinding{notifier: n}
	if !s.closed {
		s.rebindLocked()
	}
}

// rebindLocked keeps exactly one observation alive, and only while a
// cursor is known and no page is in flight
func (s *Session) rebindLocked() {
	if s.vis.notifier == nil {
		return
	}

	key := bindKey{gen: s.state.Generation, fetching: s.state.FetchingMore}
	if s.state.Cursor != nil {
		key.hasCursor = true
		key.cursor = *s.state.Cursor
	}
	if s.vis.bound && key == s.vis.key {
		return
	}

	if s.vis.stop != nil {
		s.vis.stop()
		s.vis.stop = nil
	}
	s.vis.key = key
	s.vis.bound = true

	if key.fetching || !key.hasCursor {
		return
	}

	gen := key.gen
	var once sync.Once
	s.vis.stop = s.vis.notifier.Observe(func() {
		once.Do(func() {
			// Observe may call back while s.mu is held
			go s.spawn(func() {
				_ = s.loadMore(context.Background(), gen)
			})
		})
	})
}

// ManualNotifier is a VisibilityNotifier driven by the caller, for
// surfaces that know when the end of the list is reached
type ManualNotifier struct {
	mu           sync.Mutex
	onVisible    func()
	observations int
}

// Observe implements VisibilityNotifier
func (m *ManualNotifier) Observe(onVisible func()) func() {
	m.mu.Lock()
	m.observations++
	id := m.observations
	m.onVisible = onVisible
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.observations == id {
			m.onVisible = nil
		}
	}
}

// Trigger reports the sentinel as visible. It returns false when nothing
// is observing.
func (m *ManualNotifier) Trigger() bool {
	m.mu.Lock()
	fn := m.onVisible
	m.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Attached reports whether an observation is live
func (m *ManualNotifier) Attached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onVisible != nil
}

// Observations counts how often Observe was called
func (m *ManualNotifier) Observations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.observations
}

// AlwaysVisible treats the sentinel as permanently on screen, so every
// page is loaded as soon as the previous one settles
type AlwaysVisible struct{}

// Observe implements VisibilityNotifier
func (AlwaysVisible) Observe(onVisible func()) func() {
	onVisible()
	return func() {}
}
