package element

import (
	"context"
	"sort"
	"sync"
	"time"

	"facestudio/errs"
	"facestudio/surface"
)

// AddFunc builds an element on the surface from constructor params.
type AddFunc func(ctx context.Context, p Params) (*Live, error)

// UpdateFunc applies a partial update to the element with the given id.
type UpdateFunc func(id string, patch Patch) error

// EncodeFunc converts a surface object into its configuration record.
type EncodeFunc func(obj *surface.Object) (Config, error)

// DecodeFunc converts a configuration record into constructor params.
type DecodeFunc func(cfg Config) (Params, error)

// RefreshFunc recomputes time-dependent state of obj. It reports whether
// anything changed.
type RefreshFunc func(obj *surface.Object, now time.Time) bool

// Codec bundles the four operations every element type provides.
type Codec interface {
	Add(ctx context.Context, p Params) (*Live, error)
	Update(id string, patch Patch) error
	Encode(obj *surface.Object) (Config, error)
	Decode(cfg Config) (Params, error)
}

// Refresher is implemented by codecs whose elements change with the clock.
type Refresher interface {
	Refresh(obj *surface.Object, now time.Time) bool
}

type entry struct {
	add     AddFunc
	update  UpdateFunc
	encode  EncodeFunc
	decode  DecodeFunc
	refresh RefreshFunc
}

// Registry maps element types to their codec functions.
type Registry struct {
	mu      sync.RWMutex
	entries map[EleType]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[EleType]*entry)}
}

func (r *Registry) slot(t EleType) *entry {
	e, ok := r.entries[t]
	if !ok {
		e = &entry{}
		r.entries[t] = e
	}
	return e
}

// Register installs all operations of c for t, plus its refresher when c
// implements Refresher.
func (r *Registry) Register(t EleType, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.slot(t)
	e.add = c.Add
	e.update = c.Update
	e.encode = c.Encode
	e.decode = c.Decode
	if rf, ok := c.(Refresher); ok {
		e.refresh = rf.Refresh
	}
}

func (r *Registry) RegisterAdder(t EleType, fn AddFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slot(t).add = fn
}

func (r *Registry) RegisterUpdater(t EleType, fn UpdateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slot(t).update = fn
}

func (r *Registry) RegisterEncoder(t EleType, fn EncodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slot(t).encode = fn
}

func (r *Registry) RegisterDecoder(t EleType, fn DecodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slot(t).decode = fn
}

func (r *Registry) RegisterRefresher(t EleType, fn RefreshFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slot(t).refresh = fn
}

func (r *Registry) get(t EleType) (entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[t]
	if !ok {
		return entry{}, false
	}
	return *e, true
}

func (r *Registry) Adder(t EleType) (AddFunc, bool) {
	e, _ := r.get(t)
	return e.add, e.add != nil
}

func (r *Registry) Updater(t EleType) (UpdateFunc, bool) {
	e, _ := r.get(t)
	return e.update, e.update != nil
}

func (r *Registry) Encoder(t EleType) (EncodeFunc, bool) {
	e, _ := r.get(t)
	return e.encode, e.encode != nil
}

func (r *Registry) Decoder(t EleType) (DecodeFunc, bool) {
	e, _ := r.get(t)
	return e.decode, e.decode != nil
}

func (r *Registry) Refresher(t EleType) (RefreshFunc, bool) {
	e, _ := r.get(t)
	return e.refresh, e.refresh != nil
}

// Types returns the registered types in sorted order.
func (r *Registry) Types() []EleType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]EleType, 0, len(r.entries))
	for t := range r.entries {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Unsupported returns the error reported for a type with no registered
// operation.
func Unsupported(op string, t EleType, id string) error {
	return errs.New(op, errs.CodeUnsupported,
		errs.WithElement(id, string(t)),
		errs.WithMessage("unsupported element type"))
}

// Add dispatches to the adder registered for p.Type.
func (r *Registry) Add(ctx context.Context, p Params) (*Live, error) {
	fn, ok := r.Adder(p.Type)
	if !ok {
		return nil, Unsupported("element.add", p.Type, p.ID)
	}
	return fn(ctx, p)
}

// Update dispatches to the updater registered for t.
func (r *Registry) Update(t EleType, id string, patch Patch) error {
	fn, ok := r.Updater(t)
	if !ok {
		return Unsupported("element.update", t, id)
	}
	return fn(id, patch)
}

// Encode dispatches on the eleType tag carried by obj.
func (r *Registry) Encode(obj *surface.Object) (Config, error) {
	t := EleType(obj.EleType())
	fn, ok := r.Encoder(t)
	if !ok {
		return Config{}, Unsupported("element.encode", t, obj.ID())
	}
	return fn(obj)
}

// Decode dispatches on cfg.EleType.
func (r *Registry) Decode(cfg Config) (Params, error) {
	fn, ok := r.Decoder(cfg.EleType)
	if !ok {
		return Params{}, Unsupported("element.decode", cfg.EleType, cfg.ID)
	}
	return fn(cfg)
}
