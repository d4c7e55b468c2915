// Package ticker drives time-dependent elements from one shared interval.
package ticker

import (
	"log/slog"
	"sync"
	"time"

	"facestudio/internal/logx"
	"facestudio/surface"
)

// DefaultInterval is the refresh period when none is configured.
const DefaultInterval = 200 * time.Millisecond

// Source starts a periodic tick channel and returns a function that stops it.
type Source func(d time.Duration) (<-chan time.Time, func())

// TimeSource is the Source backed by time.Ticker.
func TimeSource(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Option configures a Ticker.
type Option func(*Ticker)

// WithScheduler delivers ticks to subscribers through s instead of on the
// ticker goroutine.
func WithScheduler(s surface.Scheduler) Option {
	return func(t *Ticker) { t.sched = s }
}

func WithSource(src Source) Option {
	return func(t *Ticker) { t.source = src }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Ticker) { t.logger = logx.Or(l) }
}

// Ticker runs at most one interval however many times Start is called.
type Ticker struct {
	interval time.Duration
	sched    surface.Scheduler
	source   Source
	logger   *slog.Logger

	mu      sync.Mutex
	stop    chan struct{}
	subs    map[uint64]func(time.Time)
	nextSub uint64
}

// New creates a stopped ticker.
func New(interval time.Duration, opts ...Option) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &Ticker{
		interval: interval,
		source:   TimeSource,
		logger:   logx.Logger(),
		subs:     make(map[uint64]func(time.Time)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Subscribe registers fn for every tick and returns its cancel function.
func (t *Ticker) Subscribe(fn func(time.Time)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

// Start begins ticking and reports whether this call started it.
func (t *Ticker) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return false
	}
	ch, stopSource := t.source(t.interval)
	t.stop = make(chan struct{})
	go t.run(ch, stopSource, t.stop)
	t.logger.Info("time updates started", slog.Duration("interval", t.interval))
	return true
}

// Stop halts ticking and reports whether this call stopped it. A tick
// already handed to the scheduler may still be delivered.
func (t *Ticker) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop == nil {
		return false
	}
	close(t.stop)
	t.stop = nil
	t.logger.Info("time updates stopped")
	return true
}

// Running reports whether the ticker is started.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// Tick delivers now to the subscribers as if the interval had fired.
func (t *Ticker) Tick(now time.Time) {
	t.mu.Lock()
	fns := make([]func(time.Time), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	t.mu.Unlock()
	deliver := func() {
		for _, fn := range fns {
			fn(now)
		}
	}
	if t.sched != nil {
		t.sched.Post(deliver)
		return
	}
	deliver()
}

func (t *Ticker) run(ch <-chan time.Time, stopSource func(), stop chan struct{}) {
	defer stopSource()
	for {
		select {
		case now := <-ch:
			t.Tick(now)
		case <-stop:
			return
		}
	}
}
