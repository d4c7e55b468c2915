// Package eventloop runs posted work on a single goroutine, giving the
// engine the one-thread discipline its surface requires.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"facestudio/internal/logx"
)

// ErrClosed is returned by Do once the loop has been closed.
var ErrClosed = errors.New("event loop closed")

// Loop executes posted functions one at a time, in posting order.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// New creates a loop with a task queue of the given depth.
func New(queue int, logger *slog.Logger) *Loop {
	if queue <= 0 {
		queue = 256
	}
	return &Loop{
		tasks:  make(chan func(), queue),
		done:   make(chan struct{}),
		logger: logx.Or(logger),
	}
}

// Run processes tasks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.tasks:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event loop task panicked", slog.Any("panic", r))
		}
	}()
	fn()
}

// Post queues fn. Posting after Close drops the task.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// AfterFunc posts fn once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, func() { l.Post(fn) })
	return t.Stop
}

// Do posts fn and waits for it to finish on the loop goroutine. A panic in
// fn is returned as an error. Do must not be called from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	l.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("event loop task panicked: %v", r)
			}
		}()
		result <- fn()
	})
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}

// Close stops the loop. Pending tasks are discarded.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}
