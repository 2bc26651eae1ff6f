// Package scheduler owns the sign's refresh timeline: one fetch and
// transform cycle on start, then one per interval, committing successful
// cycles to the board store.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/deevus/transit-sign/board"
	"github.com/deevus/transit-sign/feed"
	"github.com/deevus/transit-sign/internal"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultInterval is the refresh cadence.
	DefaultInterval = 3000 * time.Millisecond
	// DefaultTimeout bounds each fetch. It stays below the interval so a slow
	// fetch is abandoned before the next tick is due.
	DefaultTimeout = 2000 * time.Millisecond
)

// ErrStopped is returned by Refresh when the scheduler is not running.
var ErrStopped = errors.New("scheduler is stopped")

// State is the scheduler's lifecycle state.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Cycle describes one finished fetch and transform attempt.
type Cycle struct {
	Started   time.Time
	Duration  time.Duration
	Err       error
	Committed bool
}

// Params holds configuration for creating a Scheduler.
type Params struct {
	Fetcher  feed.Fetcher
	Store    *board.Store
	Stops    board.Stops
	Interval time.Duration
	Timeout  time.Duration
	Logger   *slog.Logger
	// Notify is called from the scheduler goroutine after every cycle.
	Notify func(Cycle)
	// Now defaults to time.Now; tests can pin it.
	Now func() time.Time
}

// Scheduler drives refresh cycles. Only cycles started under the current
// generation may commit, so results landing after Stop are dropped.
type Scheduler struct {
	fetcher  feed.Fetcher
	store    *board.Store
	stops    board.Stops
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	notify   func(Cycle)
	now      func() time.Time

	flight   singleflight.Group
	inflight sync.WaitGroup

	mu     sync.Mutex
	state  State
	gen    uint64
	runCtx context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped Scheduler.
func New(p Params) *Scheduler {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if timeout >= interval {
		timeout = interval * 2 / 3
	}
	logger := p.Logger
	if logger == nil {
		logger = internal.Discard()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		fetcher:  p.Fetcher,
		store:    p.Store,
		stops:    p.Stops,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "scheduler")),
		notify:   p.Notify,
		now:      now,
	}
}

// Interval returns the refresh cadence.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running reports whether the scheduler is running.
func (s *Scheduler) Running() bool {
	return s.State() == Running
}

// Start runs one cycle immediately and then one per interval until Stop or
// until ctx is cancelled. Starting a running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.gen++
	s.state = Running
	s.runCtx = runCtx
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("scheduler started", slog.Duration("interval", s.interval), slog.Uint64("generation", s.gen))
	go s.loop(runCtx, s.gen, s.done)
}

// Stop disarms the timer and cancels any in-flight fetch. A cycle that
// completes after Stop never commits. Stopping a stopped scheduler does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Stopped {
		return
	}
	s.state = Stopped
	s.gen++
	s.cancel()
	s.logger.Info("scheduler stopped")
}

// Wait blocks until the most recently started loop has exited and every
// outstanding cycle has finished, including its Notify call.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
	s.inflight.Wait()
}

// Refresh runs a cycle now. If a cycle is already outstanding it waits for
// that one instead of issuing a second request.
func (s *Scheduler) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return ErrStopped
	}
	// Started under the lock so Wait never misses it after Stop.
	ch := s.cycle(s.runCtx, s.gen)
	s.mu.Unlock()

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)
	defer s.exited(gen)

	// Cycles run inline, so the ticker drops ticks while one is outstanding
	// instead of queueing them.
	s.await(ctx, gen)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.await(ctx, gen)
		}
	}
}

// exited moves the scheduler to Stopped when its loop ends without Stop,
// which happens when the context passed to Start is cancelled.
func (s *Scheduler) exited(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running || s.gen != gen {
		return
	}
	s.state = Stopped
	s.gen++
	s.cancel()
	s.logger.Info("scheduler stopped", slog.String("reason", "context done"))
}

func (s *Scheduler) await(ctx context.Context, gen uint64) {
	select {
	case <-s.cycle(ctx, gen):
	case <-ctx.Done():
	}
}

// cycle joins the outstanding cycle of gen, or starts one. Every caller is
// counted in inflight until the shared result, sent after notify, arrives.
func (s *Scheduler) cycle(ctx context.Context, gen uint64) <-chan singleflight.Result {
	s.inflight.Add(1)
	key := strconv.FormatUint(gen, 10)
	res := s.flight.DoChan(key, func() (any, error) {
		c := s.run(ctx, gen)
		if s.notify != nil {
			s.notify(c)
		}
		return c, c.Err
	})

	out := make(chan singleflight.Result, 1)
	go func() {
		defer s.inflight.Done()
		out <- <-res
	}()
	return out
}

func (s *Scheduler) run(ctx context.Context, gen uint64) Cycle {
	started := s.now()
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	preds, err := s.fetcher.Fetch(fetchCtx)
	c := Cycle{Started: started, Duration: s.now().Sub(started), Err: err}
	if err != nil {
		if ctx.Err() == nil {
			internal.LogError(s.logger, "refresh failed", err, slog.String("kind", errorKind(err)))
		}
		return c
	}

	b := board.Transform(preds, s.stops)
	c.Committed = s.commit(gen, b)
	if c.Committed {
		s.logger.Debug("committed board",
			slog.Int("routes_a", len(b.EntriesA)),
			slog.Int("routes_b", len(b.EntriesB)),
			slog.Duration("duration", c.Duration))
	}
	return c
}

// commit writes b unless the scheduler stopped or restarted since gen began.
func (s *Scheduler) commit(gen uint64, b board.Board) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running || s.gen != gen {
		s.logger.Debug("discarding result of stopped cycle", slog.Uint64("generation", gen))
		return false
	}
	s.store.Commit(b, s.now())
	return true
}

func errorKind(err error) string {
	var netErr *feed.NetworkError
	var statusErr *feed.HTTPStatusError
	var parseErr *feed.ParseError
	switch {
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &netErr):
		return "network"
	}
	return "unknown"
}
