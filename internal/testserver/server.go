// Package testserver is a scriptable stand-in for the media backend. Tests
// queue responses per endpoint and inspect the requests the client made.
package testserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Backend paths served by the fake
const (
	PathPost            = "/api/post"
	PathProfile         = "/api/profile"
	PathProfilePosts    = "/api/profile/posts"
	PathHighlights      = "/api/profile/highlights"
	PathHighlight       = "/api/highlight"
	PathProfileDownload = "/api/profile/download"
	PathProxyImage      = "/api/proxy-image"
)

// Request is one call the fake received
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]interface{}
}

// String returns a string field of the decoded JSON body
func (r Request) String(key string) string {
	s, _ := r.Body[key].(string)
	return s
}

// Response is a canned answer. Body is JSON encoded unless it is a []byte
// or a string, which are written raw.
type Response struct {
	Status int
	Body   interface{}
}

// Server is a running fake backend
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	queues    map[string][]Response
	handlers  map[string]func(Request) Response
	defaults  map[string]Response
	gates     map[string]chan struct{}
	requests  []Request
	onRequest func(Request)
}

// New starts a fake backend that is shut down when the test ends
func New(t testing.TB) *Server {
	s := &Server{
		queues:   make(map[string][]Response),
		handlers: make(map[string]func(Request) Response),
		defaults: make(map[string]Response),
		gates:    make(map[string]chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, p := range []string{PathPost, PathProfile, PathProfilePosts, PathHighlights, PathHighlight, PathProfileDownload} {
		r.Post(p, s.handle)
	}
	r.Get(PathProxyImage, s.handle)
	r.Get("/media/*", s.handle)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Enqueue adds a one-shot response for path. Queued responses are served in
// order before the default.
func (s *Server) Enqueue(path string, status int, body interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[path] = append(s.queues[path], Response{Status: status, Body: body})
}

// SetDefault sets the response served once the queue for path is empty
func (s *Server) SetDefault(path string, status int, body interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[path] = Response{Status: status, Body: body}
}

// Handle answers requests to path with fn once its queue is empty. It takes
// precedence over SetDefault.
func (s *Server) Handle(path string, fn func(Request) Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[path] = fn
}

// Hold makes requests to path block until the returned release func runs
func (s *Server) Hold(path string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gates[path] = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gates[path] == gate {
				delete(s.gates, path)
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

// OnRequest registers a hook called for every request after it is recorded
func (s *Server) OnRequest(fn func(Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRequest = fn
}

// Requests returns the recorded requests to path, or all of them when path
// is empty
func (s *Server) Requests(path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Request
	for _, r := range s.requests {
		if path == "" || r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many requests hit path
func (s *Server) Count(path string) int {
	return len(s.Requests(path))
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	req := Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &req.Body)
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	hook := s.onRequest
	gate := s.gates[req.Path]
	queued, hasQueued := s.pop(req.Path)
	handler := s.handlers[req.Path]
	fallback, hasDefault := s.defaults[req.Path]
	s.mu.Unlock()

	if hook != nil {
		hook(req)
	}

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	var resp Response
	switch {
	case hasQueued:
		resp = queued
	case handler != nil:
		resp = handler(req)
	case hasDefault:
		resp = fallback
	default:
		resp = Response{Status: http.StatusNotFound, Body: map[string]string{"error": "not found"}}
	}
	write(w, resp)
}

// pop removes the next queued response for path. Callers hold s.mu.
func (s *Server) pop(path string) (Response, bool) {
	q := s.queues[path]
	if len(q) == 0 {
		return Response{}, false
	}
	s.queues[path] = q[1:]
	return q[0], true
}

func write(w http.ResponseWriter, resp Response) {
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	switch body := resp.Body.(type) {
	case nil:
		w.WriteHeader(status)
	case []byte:
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	case string:
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
