package surface

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type queue struct{ fns []func() }

func (q *queue) Post(fn func()) { q.fns = append(q.fns, fn) }

func (q *queue) AfterFunc(_ time.Duration, fn func()) func() bool {
	q.Post(fn)
	return func() bool { return false }
}

func (q *queue) flush() {
	for len(q.fns) > 0 {
		fn := q.fns[0]
		q.fns = q.fns[1:]
		fn()
	}
}

func tagged(id string) *Object {
	o := &Object{Kind: KindRect, Width: 10, Height: 10}
	o.Set(PropID, id)
	o.Set(PropEleType, "shapes")
	return o
}

func TestSceneEventsAndSelection(t *testing.T) {
	s := NewScene(100, 100)
	var names []string
	for _, ev := range []string{EventObjectAdded, EventObjectRemoved, EventSelectionCreated, EventSelectionUpdated, EventSelectionCleared} {
		s.On(ev, func(e Event) { names = append(names, e.Name) })
	}

	a, b := tagged("a"), tagged("b")
	s.Add(a, b)
	s.SetActiveObject(a)
	s.SetActiveObject(b)
	s.Remove(b)

	require.Equal(t, []string{
		EventObjectAdded, EventObjectAdded,
		EventSelectionCreated, EventSelectionUpdated,
		EventSelectionCleared, EventObjectRemoved,
	}, names)
	require.Nil(t, s.ActiveObject())
	require.Len(t, s.Objects(), 1)
}

func TestSceneOffStopsDelivery(t *testing.T) {
	s := NewScene(100, 100)
	calls := 0
	id := s.On(EventObjectModified, func(Event) { calls++ })
	s.Fire(EventObjectModified, nil)
	s.Off(EventObjectModified, id)
	s.Fire(EventObjectModified, nil)
	require.Equal(t, 1, calls)
}

func TestSceneMoveToClamps(t *testing.T) {
	s := NewScene(100, 100)
	a, b, c := tagged("a"), tagged("b"), tagged("c")
	s.Add(a, b, c)

	s.MoveTo(a, 99)
	require.Equal(t, []*Object{b, c, a}, s.Objects())
	s.MoveTo(a, -5)
	require.Equal(t, []*Object{a, b, c}, s.Objects())
}

func TestToJSONKeepsOnlyAllowListedProps(t *testing.T) {
	s := NewScene(100, 100, WithBackground("#101010"))
	o := tagged("a")
	o.Set("secret", "x")
	o.Set("level", 0.5)
	s.Add(o)
	s.SetPropertyAllowList([]string{PropID, PropEleType, "level"})

	data, err := s.ToJSON()
	require.NoError(t, err)

	reloaded := NewScene(100, 100)
	reloaded.LoadFromJSON(data, nil)
	objs := reloaded.Objects()
	require.Len(t, objs, 1)
	require.Equal(t, "a", objs[0].ID())
	require.Equal(t, 0.5, objs[0].Float("level"))
	require.False(t, objs[0].Has("secret"))
	require.Equal(t, "#101010", reloaded.Background())
}

func TestLoadFromJSONCompletesThroughScheduler(t *testing.T) {
	q := &queue{}
	s := NewScene(100, 100, WithScheduler(q))
	s.Add(tagged("old"))
	data, err := MarshalObjects([]*Object{tagged("new")}, []string{PropID, PropEleType})
	require.NoError(t, err)

	done := false
	s.LoadFromJSON(data, func(err error) {
		require.NoError(t, err)
		done = true
	})
	require.False(t, done)
	require.Equal(t, "new", s.Objects()[0].ID())

	q.flush()
	require.True(t, done)
}

func TestLoadFromJSONRejectsUnknownVersion(t *testing.T) {
	s := NewScene(100, 100)
	var got error
	s.LoadFromJSON([]byte(`{"version":"other/9","objects":[]}`), func(err error) { got = err })
	require.Error(t, got)
}

func TestGroupRoundTripKeepsParts(t *testing.T) {
	root := tagged("root")
	root.Kind = KindGroup
	child := tagged("root_bar")
	child.Hidden = true
	root.Objects = []*Object{child}

	data, err := MarshalObjects([]*Object{root}, []string{PropID, PropEleType})
	require.NoError(t, err)
	_, objs, err := unmarshalTree(data)
	require.NoError(t, err)

	part := objs[0].Part("root_bar")
	require.NotNil(t, part)
	require.True(t, part.Hidden)
	require.Same(t, part, FindByID(objs, "root_bar"))
}

func TestCloneIsDeep(t *testing.T) {
	o := tagged("a")
	o.Set("samples", []float64{1, 2})
	o.Objects = []*Object{tagged("a_1")}

	c := o.Clone()
	c.Props["samples"].([]float64)[0] = 9
	c.Objects[0].Set(PropID, "changed")

	require.Equal(t, []float64{1, 2}, o.Floats("samples"))
	require.Equal(t, "a_1", o.Objects[0].ID())
}

func TestAnchor(t *testing.T) {
	require.Equal(t, 0.0, Anchor("left"))
	require.Equal(t, 0.5, Anchor("center"))
	require.Equal(t, 1.0, Anchor("bottom"))
	require.Equal(t, 0.25, Anchor("0.25"))
	require.Equal(t, 0.0, Anchor("bogus"))
}

func TestTypedPropAccessors(t *testing.T) {
	o := &Object{}
	o.Set("name", "dial")
	o.Set("level", 0.5)
	o.Set("on", true)

	require.Equal(t, "dial", o.String("name"))
	require.Empty(t, o.String("level"))
	require.Empty(t, o.String("missing"))
	require.Equal(t, 0.5, o.Float("level"))
	require.True(t, o.Bool("on"))
	require.False(t, o.Bool("name"))
}
