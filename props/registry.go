// Package props tracks the custom object fields that must survive scene
// serialization.
//
// A scene only exports custom properties that are on its allow-list, so any
// field the engine stores on objects (ids, type tags, bindings, codec state)
// has to be registered here and applied before ToJSON or LoadFromJSON.
package props

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"facestudio/internal/logx"
	"facestudio/surface"
)

// Base is the set every registry starts with.
var Base = []string{
	surface.PropID,
	surface.PropEleType,
	surface.PropParts,
	surface.PropIsGuideline,
	"guidelineAxis",
	"dataProperty",
	"goalProperty",
	"metricSymbol",
}

// AllowListSetter receives the accumulated names.
type AllowListSetter interface {
	SetPropertyAllowList(names []string)
}

// Registry is a set of custom property names. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	names  map[string]struct{}
	logger *slog.Logger
}

// NewRegistry creates a registry seeded with Base and extra.
func NewRegistry(logger *slog.Logger, extra ...string) *Registry {
	r := &Registry{
		names:  make(map[string]struct{}, len(Base)+len(extra)),
		logger: logx.Or(logger),
	}
	r.Register(Base...)
	r.Register(extra...)
	return r
}

// Register adds names and returns how many were new.
func (r *Registry) Register(names ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	added := 0
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := r.names[n]; ok {
			continue
		}
		r.names[n] = struct{}{}
		added++
	}
	return added
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Discover scans objs, including group children, for custom fields that look
// like bindings and registers the unseen ones. It returns the new names, sorted.
func (r *Registry) Discover(objs []*surface.Object) []string {
	found := make(map[string]struct{})
	for _, o := range objs {
		o.Walk(func(obj *surface.Object) {
			for key := range obj.Props {
				if IsBindingName(key) && !r.Has(key) {
					found[key] = struct{}{}
				}
			}
		})
	}
	if len(found) == 0 {
		return nil
	}
	names := make([]string, 0, len(found))
	for n := range found {
		names = append(names, n)
	}
	sort.Strings(names)
	r.Register(names...)
	r.logger.Info("discovered custom properties", slog.Any("names", names))
	return names
}

// Apply pushes the current set to the surface allow-list.
func (r *Registry) Apply(s AllowListSetter) {
	s.SetPropertyAllowList(r.Names())
}

// IsBindingName reports whether a field name follows the binding naming
// convention: a "Property" or "Binding" suffix, or a "bind" prefix.
func IsBindingName(name string) bool {
	if len(name) <= len("bind") {
		return false
	}
	return strings.HasSuffix(name, "Property") ||
		strings.HasSuffix(name, "Binding") ||
		strings.HasPrefix(name, "bind")
}
