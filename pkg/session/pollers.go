package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"

	"igloader/pkg/backend"
	errs "igloader/pkg/errors"
	"igloader/pkg/logger"
	"igloader/pkg/models"
)

// poller is one recurring job on the session scheduler. Once stopped its
// task never calls the backend again, even if a tick was already queued.
type poller struct {
	name    string
	sched   gocron.Scheduler
	stopped atomic.Bool

	mu  sync.Mutex
	job gocron.Job
}

func (p *poller) setJob(job gocron.Job) {
	p.mu.Lock()
	p.job = job
	p.mu.Unlock()

	if p.stopped.Load() {
		p.remove()
	}
}

func (p *poller) stop() {
	if p.stopped.Swap(true) {
		return
	}
	p.remove()
}

// remove unschedules the job. It runs on its own goroutine because stop
// may be called from inside the job's task.
func (p *poller) remove() {
	p.mu.Lock()
	job := p.job
	p.mu.Unlock()
	if job == nil {
		return
	}
	go func() { _ = p.sched.RemoveJob(job.ID()) }()
}

// schedule runs tick every interval until it reports done. Singleton mode
// keeps a slow tick from overlapping the next one.
func (s *Session) schedule(gen uint64, name string, interval time.Duration, immediate bool, tick func() (done bool)) error {
	p := &poller{name: name, sched: s.sched}

	opts := []gocron.JobOption{
		gocron.WithName(fmt.Sprintf("%s-%d", name, gen)),
		gocron.WithTags(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if immediate {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	job, err := s.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if p.stopped.Load() {
				return
			}
			if tick() {
				p.stop()
			}
		}),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s poller: %w", name, err)
	}
	p.setJob(job)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.state.Generation {
		p.stop()
		return nil
	}
	s.pollers = append(s.pollers, p)
	return nil
}

// startProfileJobs launches the initial page resolver and both pollers for
// a freshly resolved profile
func (s *Session) startProfileJobs(gen uint64, genCtx context.Context, profile ProfileResult) {
	if id := profile.PostsTaskID; id != "" {
		s.spawn(func() { s.resolveInitialPage(gen, genCtx, id) })

		if err := s.schedule(gen, "task", s.opts.TaskInterval, false, func() bool {
			return s.pollTask(gen, genCtx, id)
		}); err != nil {
			s.log.WithError(err).Error("task poller not started")
		}
	}

	if id := profile.HighlightsTaskID; id != "" {
		if err := s.schedule(gen, "highlights", s.opts.HighlightInterval, true, func() bool {
			return s.pollHighlights(gen, genCtx, id)
		}); err != nil {
			s.log.WithError(err).Error("highlight poller not started")
		}
	}
}

// pollTask reads the posts job status from its first page. Terminal
// statuses are kept verbatim and anything else becomes PROGRESS. An error
// answer from the backend reads as PROGRESS too; only a request that got
// no usable answer counts as FAILURE.
func (s *Session) pollTask(gen uint64, ctx context.Context, taskID string) bool {
	page, err := s.backend.FetchProfilePosts(ctx, taskID, backend.StartCursor)
	if ctx.Err() != nil {
		return true
	}

	var status models.TaskStatus
	switch {
	case err == nil:
		status = models.NormalizeTaskStatus(string(page.Status))
	case isErrorAnswer(err):
		s.log.WithError(err).WithField("task_id", taskID).Debug("task poll answered with an error")
		status = models.TaskProgress
	default:
		s.log.WithError(err).WithField("task_id", taskID).Warn("task polling failed")
		status = models.TaskFailure
	}
	logger.LogPoll(s.log, "task", taskID, string(status))

	applied := s.apply(gen, func(st *State) { st.TaskStatus = status })
	return !applied || status.IsTerminal()
}

// isErrorAnswer reports whether err is a non-2xx response the backend
// answered with, as opposed to a transport or decoding failure
func isErrorAnswer(err error) bool {
	var apiErr *errs.Error
	return errors.As(err, &apiErr) && apiErr.Code != 0 && apiErr.Type != errs.ErrorTypeParsing
}

// pollHighlights fetches the highlight list. Polling ends once the list is
// non-empty, the job reaches a terminal status, or a request fails.
func (s *Session) pollHighlights(gen uint64, ctx context.Context, taskID string) bool {
	if !s.apply(gen, func(st *State) { st.FetchingHighlights = true }) {
		return true
	}

	list, err := s.backend.FetchHighlights(ctx, taskID)
	if ctx.Err() != nil {
		return true
	}

	if err != nil {
		s.log.WithError(err).WithField("task_id", taskID).Warn("highlight polling failed")
		s.apply(gen, func(st *State) { st.FetchingHighlights = false })
		return true
	}
	logger.LogPoll(s.log, "highlights", taskID, string(list.Status))

	done := list.Status.IsTerminal() || len(list.Highlights) > 0
	applied := s.apply(gen, func(st *State) {
		if len(list.Highlights) > 0 {
			st.Highlights = list.Highlights
		}
		if done {
			st.FetchingHighlights = false
		}
	})
	return !applied || done
}
