package element

import (
	"slices"

	"facestudio/surface"
)

// Layers is the authoritative z-order of elements, back to front. Index 0 is
// painted first.
type Layers struct {
	ids []string
}

// NewLayers returns layers initialised with ids.
func NewLayers(ids ...string) *Layers {
	return &Layers{ids: slices.Clone(ids)}
}

// IDs returns a copy of the order.
func (l *Layers) IDs() []string {
	return slices.Clone(l.ids)
}

func (l *Layers) Len() int { return len(l.ids) }

// Index returns the position of id or -1.
func (l *Layers) Index(id string) int {
	return slices.Index(l.ids, id)
}

// Push places id on top. An id already present is moved to the top.
func (l *Layers) Push(id string) {
	l.Remove(id)
	l.ids = append(l.ids, id)
}

// Remove drops id and reports whether it was present.
func (l *Layers) Remove(id string) bool {
	i := l.Index(id)
	if i < 0 {
		return false
	}
	l.ids = slices.Delete(l.ids, i, i+1)
	return true
}

// Move places id at index to, clamped to the valid range.
func (l *Layers) Move(id string, to int) bool {
	i := l.Index(id)
	if i < 0 {
		return false
	}
	to = max(0, min(to, len(l.ids)-1))
	if i == to {
		return false
	}
	l.ids = slices.Delete(l.ids, i, i+1)
	l.ids = slices.Insert(l.ids, to, id)
	return true
}

func (l *Layers) BringForward(id string) bool { return l.Move(id, l.Index(id)+1) }

func (l *Layers) SendBackward(id string) bool {
	i := l.Index(id)
	if i <= 0 {
		return false
	}
	return l.Move(id, i-1)
}

func (l *Layers) BringToFront(id string) bool { return l.Move(id, len(l.ids)-1) }

func (l *Layers) SendToBack(id string) bool { return l.Move(id, 0) }

// layered reports whether o takes part in the element order.
func layered(o *surface.Object) bool {
	return o.ID() != "" && o.EleType() != "" && !o.IsGuideline()
}

// Sync reorders the surface so layered objects follow the recorded order.
// Objects the order does not know keep their relative order above them.
func (l *Layers) Sync(s surface.Surface) {
	objs := s.Objects()
	byID := make(map[string]*surface.Object, len(objs))
	for _, o := range objs {
		if layered(o) {
			byID[o.ID()] = o
		}
	}
	want := make([]*surface.Object, 0, len(objs))
	placed := make(map[*surface.Object]bool, len(objs))
	for _, id := range l.ids {
		if o, ok := byID[id]; ok {
			want = append(want, o)
			placed[o] = true
		}
	}
	for _, o := range objs {
		if !placed[o] {
			want = append(want, o)
		}
	}
	for i, o := range want {
		s.MoveTo(o, i)
	}
}

// Rebuild replaces the order with the one currently on the surface.
func (l *Layers) Rebuild(s surface.Surface) {
	l.ids = l.ids[:0]
	for _, o := range s.Objects() {
		if layered(o) {
			l.ids = append(l.ids, o.ID())
		}
	}
}
