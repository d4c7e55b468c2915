package eventloop

import (
	"sort"
	"time"
)

type timer struct {
	seq     int
	at      time.Duration
	fn      func()
	stopped bool
}

// Manual is a deterministic scheduler driven by the caller. Posted work runs
// on Flush; timers fire when Advance moves the virtual clock past them.
type Manual struct {
	now    time.Duration
	queue  []func()
	timers []*timer
	seq    int
}

// NewManual creates a manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Post(fn func()) {
	m.queue = append(m.queue, fn)
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) func() bool {
	m.seq++
	t := &timer{seq: m.seq, at: m.now + d, fn: fn}
	m.timers = append(m.timers, t)
	return func() bool {
		if t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

// Pending reports queued tasks plus unfired timers.
func (m *Manual) Pending() int {
	n := len(m.queue)
	for _, t := range m.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Flush runs queued tasks, including tasks they post, until the queue is empty.
func (m *Manual) Flush() {
	for len(m.queue) > 0 {
		fn := m.queue[0]
		m.queue = m.queue[1:]
		fn()
	}
}

// Advance moves the virtual clock forward by d, firing due timers in
// deadline order and flushing after each one.
func (m *Manual) Advance(d time.Duration) {
	m.Flush()
	target := m.now + d
	for {
		sort.SliceStable(m.timers, func(i, j int) bool {
			if m.timers[i].at == m.timers[j].at {
				return m.timers[i].seq < m.timers[j].seq
			}
			return m.timers[i].at < m.timers[j].at
		})
		if len(m.timers) == 0 || m.timers[0].at > target {
			break
		}
		t := m.timers[0]
		m.timers = m.timers[1:]
		if t.stopped {
			continue
		}
		m.now = t.at
		t.stopped = true
		t.fn()
		m.Flush()
	}
	m.now = target
}

// Settle flushes and fires every outstanding timer.
func (m *Manual) Settle() {
	for m.Pending() > 0 {
		next := time.Duration(0)
		for _, t := range m.timers {
			if !t.stopped && t.at-m.now > next {
				next = t.at - m.now
			}
		}
		m.Advance(next)
	}
}
