// Package history records surface snapshots for undo and redo.
//
// The controller is either Idle, capturing a snapshot after every
// qualifying mutation, or Restoring, reloading a snapshot with its mutation
// listeners detached. It is driven from the surface's goroutine and is not
// safe for concurrent use.
package history

import (
	"bytes"
	"log/slog"
	"time"

	"facestudio/internal/logx"
	"facestudio/surface"
)

// State is the controller state.
type State int

const (
	Idle State = iota
	Restoring
)

func (s State) String() string {
	if s == Restoring {
		return "restoring"
	}
	return "idle"
}

// Defaults.
const (
	DefaultMaxDepth    = 50
	DefaultSettleDelay = 30 * time.Millisecond
)

// Snapshot is one recorded surface state. ConfigJSON caches the document
// generated for that state and moves with the snapshot.
type Snapshot struct {
	FabricJSON []byte
	ConfigJSON []byte
}

// Options configures a controller.
type Options struct {
	// MaxDepth caps the undo stack; the oldest snapshots are evicted first.
	MaxDepth int
	// SettleDelay is waited after a reload completes before mutations are
	// tracked again.
	SettleDelay time.Duration
	// Scheduler delivers the settle callback. Without one the controller
	// settles as soon as the reload completes.
	Scheduler surface.Scheduler
	// BeforeSerialize runs before every ToJSON and LoadFromJSON the
	// controller initiates.
	BeforeSerialize func()
	// OnRestored runs after an undo or redo has settled.
	OnRestored func()
	Logger     *slog.Logger
}

// tracked are the events that record a snapshot.
var tracked = []string{
	surface.EventObjectAdded,
	surface.EventObjectModified,
	surface.EventObjectRemoved,
}

// Controller owns the undo and redo stacks.
type Controller struct {
	opts   Options
	logger *slog.Logger

	s         surface.Surface
	undo      []*Snapshot
	redo      []*Snapshot
	state     State
	listeners map[string]surface.ListenerID
	gen       uint64
}

// New creates a detached controller.
func New(opts Options) *Controller {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	return &Controller{
		opts:   opts,
		logger: logx.Or(opts.Logger),
	}
}

// Attach binds the controller to s and records the initial snapshot.
func (c *Controller) Attach(s surface.Surface) {
	if c.s != nil && c.s != s {
		c.Dispose()
	}
	c.s = s
	c.SaveInitial()
}

// SaveInitial drops both stacks, records the current surface as the base
// snapshot and starts tracking mutations.
func (c *Controller) SaveInitial() {
	if c.s == nil {
		return
	}
	c.gen++
	c.state = Idle
	c.undo, c.redo = nil, nil
	data, err := c.serialize()
	if err != nil {
		c.logger.Error("initial snapshot failed", slog.Any("error", err))
	} else {
		c.undo = append(c.undo, &Snapshot{FabricJSON: data})
	}
	c.listen()
}

// SaveState records the current surface unless it is identical to the top
// snapshot. Any recorded snapshot clears the redo stack.
func (c *Controller) SaveState() {
	if c.s == nil || c.state != Idle {
		return
	}
	data, err := c.serialize()
	if err != nil {
		c.logger.Error("snapshot failed", slog.Any("error", err))
		return
	}
	if top := c.top(); top != nil && bytes.Equal(top.FabricJSON, data) {
		c.logger.Debug("snapshot unchanged, skipped")
		return
	}
	c.undo = append(c.undo, &Snapshot{FabricJSON: data})
	if over := len(c.undo) - c.opts.MaxDepth; over > 0 {
		c.undo = append([]*Snapshot(nil), c.undo[over:]...)
	}
	c.redo = nil
	c.logger.Debug("snapshot recorded", slog.Int("depth", len(c.undo)))
}

// Undo restores the previous snapshot. It does nothing while restoring or
// when only the base snapshot is left, and reports whether it started.
func (c *Controller) Undo() bool {
	if c.s == nil || c.state != Idle || len(c.undo) <= 1 {
		return false
	}
	last := len(c.undo) - 1
	c.redo = append(c.redo, c.undo[last])
	c.undo = c.undo[:last]
	c.restore(c.undo[last-1])
	return true
}

// Redo re-applies the most recently undone snapshot.
func (c *Controller) Redo() bool {
	if c.s == nil || c.state != Idle || len(c.redo) == 0 {
		return false
	}
	last := len(c.redo) - 1
	snap := c.redo[last]
	c.redo = c.redo[:last]
	c.undo = append(c.undo, snap)
	c.restore(snap)
	return true
}

// Clear empties both stacks and stops tracking. Pending restore callbacks
// are invalidated.
func (c *Controller) Clear() {
	c.gen++
	c.unlisten()
	c.undo, c.redo = nil, nil
	c.state = Idle
}

// Dispose clears the controller and releases the surface.
func (c *Controller) Dispose() {
	c.Clear()
	c.s = nil
}

func (c *Controller) CanUndo() bool { return c.state == Idle && len(c.undo) > 1 }
func (c *Controller) CanRedo() bool { return c.state == Idle && len(c.redo) > 0 }
func (c *Controller) State() State  { return c.state }

// Len returns the sizes of the undo and redo stacks.
func (c *Controller) Len() (undo, redo int) { return len(c.undo), len(c.redo) }

// Listening reports whether mutation listeners are attached.
func (c *Controller) Listening() bool { return len(c.listeners) > 0 }

// ConfigJSON returns the cached document of the top snapshot, generating
// and caching it with gen on first use.
func (c *Controller) ConfigJSON(gen func() ([]byte, error)) ([]byte, error) {
	top := c.top()
	if top == nil || c.state != Idle {
		return gen()
	}
	if top.ConfigJSON != nil {
		return top.ConfigJSON, nil
	}
	data, err := gen()
	if err != nil {
		return nil, err
	}
	top.ConfigJSON = data
	return data, nil
}

// InvalidateConfig drops every cached document, for changes that alter the
// document without touching the surface.
func (c *Controller) InvalidateConfig() {
	for _, s := range c.undo {
		s.ConfigJSON = nil
	}
	for _, s := range c.redo {
		s.ConfigJSON = nil
	}
}

func (c *Controller) top() *Snapshot {
	if len(c.undo) == 0 {
		return nil
	}
	return c.undo[len(c.undo)-1]
}

func (c *Controller) serialize() ([]byte, error) {
	if c.opts.BeforeSerialize != nil {
		c.opts.BeforeSerialize()
	}
	return c.s.ToJSON()
}

func (c *Controller) restore(snap *Snapshot) {
	c.state = Restoring
	c.unlisten()
	gen := c.gen
	if c.opts.BeforeSerialize != nil {
		c.opts.BeforeSerialize()
	}
	s := c.s
	s.LoadFromJSON(snap.FabricJSON, func(err error) {
		if gen != c.gen {
			return
		}
		if err != nil {
			c.logger.Error("snapshot reload failed", slog.Any("error", err))
		}
		s.RequestRenderAll()
		c.settle(gen)
	})
}

func (c *Controller) settle(gen uint64) {
	done := func() {
		if gen != c.gen {
			return
		}
		c.listen()
		c.state = Idle
		if c.opts.OnRestored != nil {
			c.opts.OnRestored()
		}
	}
	if c.opts.Scheduler == nil {
		done()
		return
	}
	c.opts.Scheduler.AfterFunc(c.opts.SettleDelay, done)
}

func (c *Controller) listen() {
	if c.s == nil || len(c.listeners) > 0 {
		return
	}
	c.listeners = make(map[string]surface.ListenerID, len(tracked))
	for _, name := range tracked {
		c.listeners[name] = c.s.On(name, c.onMutation)
	}
}

func (c *Controller) unlisten() {
	if c.s != nil {
		for name, id := range c.listeners {
			c.s.Off(name, id)
		}
	}
	c.listeners = nil
}

func (c *Controller) onMutation(e surface.Event) {
	if e.Target != nil && e.Target.IsGuideline() {
		return
	}
	c.SaveState()
}
