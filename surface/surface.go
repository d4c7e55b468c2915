// Package surface defines the scene-graph contract the element engine is
// built on, and an in-memory Scene that implements it.
//
// A Surface is not safe for concurrent use. Every call, and every callback it
// delivers, is expected to happen on the goroutine driving its Scheduler.
package surface

import "time"

// Event names emitted by a Surface.
const (
	EventObjectAdded      = "object:added"
	EventObjectModified   = "object:modified"
	EventObjectRemoved    = "object:removed"
	EventSelectionCreated = "selection:created"
	EventSelectionUpdated = "selection:updated"
	EventSelectionCleared = "selection:cleared"
)

// Event is delivered to handlers registered with On.
type Event struct {
	Name   string
	Target *Object
}

// Handler receives surface events.
type Handler func(Event)

// ListenerID identifies a registered handler so it can be removed with Off.
type ListenerID uint64

// Surface is the adapter contract consumed by codecs and the history controller.
type Surface interface {
	Add(objs ...*Object)
	Remove(objs ...*Object)
	Objects() []*Object
	SetActiveObject(o *Object)
	ActiveObject() *Object
	DiscardActiveObject()
	On(name string, h Handler) ListenerID
	Off(name string, id ListenerID)
	Fire(name string, target *Object)
	ToJSON() ([]byte, error)
	// LoadFromJSON replaces the scene content. onDone is invoked
	// asynchronously once the reload has completed.
	LoadFromJSON(data []byte, onDone func(error))
	RequestRenderAll()
	MoveTo(o *Object, index int)
	SetPropertyAllowList(names []string)
}

// Scheduler serializes deferred work onto the goroutine that owns a Surface.
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}
