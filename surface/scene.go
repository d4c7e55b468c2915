package surface

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"facestudio/internal/logx"
)

type listener struct {
	id ListenerID
	fn Handler
}

// Scene is an in-memory Surface.
type Scene struct {
	width      float64
	height     float64
	background string

	objects []*Object
	active  *Object
	allow   map[string]struct{}

	listeners map[string][]listener
	nextID    ListenerID

	sched    Scheduler
	onRender func()
	renders  int
	logger   *slog.Logger
}

// SceneOption configures a Scene.
type SceneOption func(*Scene)

// WithScheduler routes asynchronous completions through s. Without a
// scheduler LoadFromJSON completes synchronously.
func WithScheduler(s Scheduler) SceneOption {
	return func(sc *Scene) {
		sc.sched = s
	}
}

// WithRenderHook installs a callback run on every RequestRenderAll.
func WithRenderHook(fn func()) SceneOption {
	return func(sc *Scene) {
		sc.onRender = fn
	}
}

// WithBackground sets the canvas background colour.
func WithBackground(color string) SceneOption {
	return func(sc *Scene) {
		sc.background = color
	}
}

// WithLogger sets the scene logger.
func WithLogger(l *slog.Logger) SceneOption {
	return func(sc *Scene) {
		sc.logger = l
	}
}

// NewScene creates an empty scene of the given canvas size.
func NewScene(width, height float64, opts ...SceneOption) *Scene {
	s := &Scene{
		width:     width,
		height:    height,
		allow:     make(map[string]struct{}),
		listeners: make(map[string][]listener),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = logx.Or(s.logger)
	return s
}

// Size returns the canvas size.
func (s *Scene) Size() (float64, float64) {
	return s.width, s.height
}

// Background returns the canvas background colour.
func (s *Scene) Background() string {
	return s.background
}

// SetBackground changes the canvas background colour.
func (s *Scene) SetBackground(color string) {
	s.background = color
}

// Renders returns how many times a render was requested.
func (s *Scene) Renders() int {
	return s.renders
}

func (s *Scene) Add(objs ...*Object) {
	for _, o := range objs {
		if o == nil {
			continue
		}
		s.objects = append(s.objects, o)
		s.Fire(EventObjectAdded, o)
	}
}

func (s *Scene) Remove(objs ...*Object) {
	for _, o := range objs {
		idx := slices.Index(s.objects, o)
		if idx < 0 {
			continue
		}
		s.objects = slices.Delete(s.objects, idx, idx+1)
		if s.active == o {
			s.active = nil
			s.Fire(EventSelectionCleared, nil)
		}
		s.Fire(EventObjectRemoved, o)
	}
}

// Objects returns the top-level objects in paint order (back to front).
// The returned slice is a copy; the objects are shared.
func (s *Scene) Objects() []*Object {
	return slices.Clone(s.objects)
}

func (s *Scene) SetActiveObject(o *Object) {
	if o == nil {
		s.DiscardActiveObject()
		return
	}
	if !slices.Contains(s.objects, o) {
		return
	}
	prev := s.active
	s.active = o
	if prev == nil {
		s.Fire(EventSelectionCreated, o)
	} else if prev != o {
		s.Fire(EventSelectionUpdated, o)
	}
}

func (s *Scene) ActiveObject() *Object {
	return s.active
}

func (s *Scene) DiscardActiveObject() {
	if s.active == nil {
		return
	}
	s.active = nil
	s.Fire(EventSelectionCleared, nil)
}

func (s *Scene) On(name string, h Handler) ListenerID {
	s.nextID++
	s.listeners[name] = append(s.listeners[name], listener{id: s.nextID, fn: h})
	return s.nextID
}

func (s *Scene) Off(name string, id ListenerID) {
	ls := s.listeners[name]
	for i, l := range ls {
		if l.id == id {
			s.listeners[name] = slices.Delete(slices.Clone(ls), i, i+1)
			return
		}
	}
}

// Fire delivers an event to the handlers registered at the time of the call.
func (s *Scene) Fire(name string, target *Object) {
	ls := slices.Clone(s.listeners[name])
	for _, l := range ls {
		l.fn(Event{Name: name, Target: target})
	}
}

func (s *Scene) RequestRenderAll() {
	s.renders++
	if s.onRender != nil {
		s.onRender()
	}
}

// MoveTo moves o to index in paint order, clamping out-of-range indexes.
func (s *Scene) MoveTo(o *Object, index int) {
	idx := slices.Index(s.objects, o)
	if idx < 0 {
		return
	}
	s.objects = slices.Delete(s.objects, idx, idx+1)
	index = max(0, min(index, len(s.objects)))
	s.objects = slices.Insert(s.objects, index, o)
}

func (s *Scene) SetPropertyAllowList(names []string) {
	allow := make(map[string]struct{}, len(names))
	for _, n := range names {
		allow[n] = struct{}{}
	}
	s.allow = allow
}

// AllowList returns the serialized custom property names, sorted.
func (s *Scene) AllowList() []string {
	out := make([]string, 0, len(s.allow))
	for k := range s.allow {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Scene) ToJSON() ([]byte, error) {
	return marshalTree(s.background, s.objects, s.allow)
}

func (s *Scene) LoadFromJSON(data []byte, onDone func(error)) {
	bg, objs, err := unmarshalTree(data)
	if err != nil {
		s.complete(onDone, fmt.Errorf("load scene: %w", err))
		return
	}
	s.DiscardActiveObject()
	old := s.objects
	s.objects = nil
	for _, o := range old {
		s.Fire(EventObjectRemoved, o)
	}
	s.background = bg
	for _, o := range objs {
		s.objects = append(s.objects, o)
		s.Fire(EventObjectAdded, o)
	}
	s.logger.Debug("scene reloaded", slog.Int("objects", len(objs)))
	s.complete(onDone, nil)
}

func (s *Scene) complete(onDone func(error), err error) {
	if onDone == nil {
		return
	}
	if s.sched == nil {
		onDone(err)
		return
	}
	s.sched.Post(func() { onDone(err) })
}
