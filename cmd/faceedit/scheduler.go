package main

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// wakeMsg asks the model to drain the scheduler queue.
type wakeMsg struct{}

// teaScheduler runs posted work on the bubbletea update goroutine, which owns
// the scene. Work is queued and drained by the model after every message;
// posting only sends a wake-up so it never blocks inside Update.
type teaScheduler struct {
	mu      sync.Mutex
	queue   []func()
	program *tea.Program
}

func (s *teaScheduler) bind(p *tea.Program) {
	s.mu.Lock()
	s.program = p
	pending := len(s.queue) > 0
	s.mu.Unlock()
	if pending {
		go p.Send(wakeMsg{})
	}
}

func (s *teaScheduler) Post(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	p := s.program
	s.mu.Unlock()
	if p != nil {
		go p.Send(wakeMsg{})
	}
}

func (s *teaScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, func() { s.Post(fn) })
	return t.Stop
}

// drain runs queued work, including work queued while draining.
func (s *teaScheduler) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		fn()
	}
}
