package facestudio

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"facestudio/asset"
	"facestudio/config"
	"facestudio/element"
	"facestudio/errs"
	"facestudio/eventloop"
	"facestudio/surface"
)

var fixedNow = time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC)

type stubAssets map[string]*asset.Asset

func (m stubAssets) Fetch(_ context.Context, url string) (*asset.Asset, error) {
	if a, ok := m[url]; ok {
		return a, nil
	}
	return nil, errs.New("asset.fetch", errs.CodeAsset, errs.WithMessage(url), errs.WithCause(errors.New("404 Not Found")))
}

type fixture struct {
	studio *Studio
	scene  *surface.Scene
	sched  *eventloop.Manual
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{sched: eventloop.NewManual()}
	assets := stubAssets{
		"ring.png": {URL: "ring.png", Format: asset.FormatRaster, Width: 454, Height: 454, Image: image.NewNRGBA(image.Rect(0, 0, 454, 454))},
	}
	s, err := New(config.Default(),
		WithScheduler(f.sched),
		WithAssetSource(assets),
		WithClock(func() time.Time { return fixedNow }),
		WithTickSource(func(time.Duration) (<-chan time.Time, func()) { return nil, func() {} }),
	)
	require.NoError(t, err)
	require.Nil(t, s.Fetcher())

	f.studio = s
	f.scene = surface.NewScene(454, 454, surface.WithScheduler(f.sched))
	require.NoError(t, s.Attach(f.scene))
	t.Cleanup(s.Close)
	return f
}

func (f *fixture) add(t *testing.T, p element.Params) string {
	t.Helper()
	live, err := f.studio.AddElement(context.Background(), p)
	require.NoError(t, err)
	return live.ID
}

func (f *fixture) object(id string) *surface.Object {
	return surface.FindByID(f.scene.Objects(), id)
}

func TestStudioNeedsSurface(t *testing.T) {
	s, err := New(config.Default(), WithAssetSource(stubAssets{}))
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, err = s.AddElement(context.Background(), element.Params{Type: element.TypeBattery})
	require.ErrorIs(t, err, errs.ErrNotReady)
	_, err = s.DocumentJSON()
	require.ErrorIs(t, err, errs.ErrNotReady)
	require.ErrorIs(t, s.Attach(nil), errs.ErrInvalid)
	require.Empty(t, s.Selected())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.History.MaxDepth = 0
	_, err := New(cfg)
	require.Error(t, err)
}

func TestAddSelectsAndOrdersLayers(t *testing.T) {
	f := newFixture(t)
	battery := f.add(t, element.Params{Type: element.TypeBattery, Geometry: element.Geometry{Left: 200, Top: 40}, Level: 0.4})
	bar := f.add(t, element.Params{Type: element.TypeGoalBar, Geometry: element.Geometry{Left: 160, Top: 380}, Progress: 0.5, Binding: element.Binding{GoalProperty: "steps"}})

	require.Equal(t, []string{battery, bar}, f.studio.Layers())
	require.Equal(t, bar, f.studio.Selected())

	require.NoError(t, f.studio.Select(battery))
	require.Equal(t, battery, f.studio.Selected())
	require.NoError(t, f.studio.Select(""))
	require.Empty(t, f.studio.Selected())
	require.ErrorIs(t, f.studio.Select("missing"), errs.ErrNotFound)

	require.NoError(t, f.studio.Reorder(bar, ToBack))
	require.Equal(t, []string{bar, battery}, f.studio.Layers())
	require.Equal(t, bar, f.scene.Objects()[0].ID())
	require.NoError(t, f.studio.Reorder(bar, ToBack))
	require.Equal(t, []string{bar, battery}, f.studio.Layers())
}

func TestUndoRedoRestoresElementsAndLayers(t *testing.T) {
	f := newFixture(t)
	battery := f.add(t, element.Params{Type: element.TypeBattery, Level: 0.4})
	bar := f.add(t, element.Params{Type: element.TypeGoalBar, Progress: 0.5, Binding: element.Binding{GoalProperty: "steps"}})
	require.True(t, f.studio.CanUndo())
	require.False(t, f.studio.CanRedo())

	require.True(t, f.studio.Undo())
	require.False(t, f.studio.Undo(), "undo while restoring")
	f.sched.Settle()

	require.Equal(t, []string{battery}, f.studio.Layers())
	require.Nil(t, f.object(bar))
	require.True(t, f.studio.CanRedo())

	require.True(t, f.studio.Redo())
	f.sched.Settle()
	require.Equal(t, []string{battery, bar}, f.studio.Layers())
	require.NotNil(t, f.object(bar))

	require.NoError(t, f.studio.UpdateElement(context.Background(), battery, element.Patch{"level": 0.9}))
	require.InDelta(t, 0.9, f.object(battery).Float("level"), 1e-9)
	require.False(t, f.studio.CanRedo())

	require.True(t, f.studio.Undo())
	f.sched.Settle()
	require.InDelta(t, 0.4, f.object(battery).Float("level"), 1e-9)
}

func TestUpdateAndRemoveErrors(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, element.Params{Type: element.TypeIndicators, AssetURL: "ring.png", Binding: element.Binding{DataProperty: "bluetooth"}})

	err := f.studio.UpdateElement(context.Background(), "missing", element.Patch{"level": 1.0})
	require.ErrorIs(t, err, errs.ErrNotFound)

	err = f.studio.UpdateElement(context.Background(), id, element.Patch{"assetUrl": "gone.png"})
	require.ErrorIs(t, err, errs.ErrAsset)
	cfg, err := f.studio.Registry().Encode(f.object(id))
	require.NoError(t, err)
	require.Equal(t, "ring.png", cfg.AssetURL)

	require.NoError(t, f.studio.RemoveElement(id))
	require.Empty(t, f.studio.Layers())
	require.ErrorIs(t, f.studio.RemoveElement(id), errs.ErrNotFound)
}

func TestDocumentJSONIsCachedPerSnapshot(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, element.Params{Type: element.TypeBattery, Level: 0.4})
	b := f.add(t, element.Params{Type: element.TypeGoalArc, Progress: 0.25, Binding: element.Binding{GoalProperty: "steps"}})

	first, err := f.studio.DocumentJSON()
	require.NoError(t, err)
	again, err := f.studio.DocumentJSON()
	require.NoError(t, err)
	require.Same(t, &first[0], &again[0])

	var doc element.Document
	require.NoError(t, json.Unmarshal(first, &doc))
	require.Equal(t, element.DocumentVersion, doc.Version)
	require.Equal(t, []string{a, b}, doc.OrderIDs)
	require.Len(t, doc.Elements, 2)
	require.Equal(t, element.Property{Kind: element.KindGoal, Elements: []string{b}}, doc.Properties["steps"])

	meta := f.studio.Meta()
	meta.Name = "Runner"
	f.studio.SetMeta(meta)
	renamed, err := f.studio.DocumentJSON()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(renamed, &doc))
	require.Equal(t, "Runner", doc.Name)
}

func TestLoadDocumentReportsSkipsAndFailures(t *testing.T) {
	f := newFixture(t)
	f.add(t, element.Params{Type: element.TypeBattery})

	data := []byte(`{
		"version": 2,
		"name": "Loaded",
		"elements": [
			{"id": "bat", "eleType": "battery", "left": 10, "top": 20, "level": 0.7},
			{"id": "spark", "eleType": "sparkle", "left": 0, "top": 0},
			{"id": "ring", "eleType": "tick12", "assetUrl": "missing.png"},
			{"id": "clock", "eleType": "time", "left": 227, "top": 200, "format": "HH:mm"}
		],
		"orderIds": ["clock", "bat"],
		"canvas": {"width": 454, "height": 454, "background": "#102030"}
	}`)
	report, err := f.studio.LoadDocument(context.Background(), data)
	require.NoError(t, err)

	require.Equal(t, []string{"clock", "bat"}, report.Loaded)
	require.Len(t, report.Skipped, 1)
	require.Equal(t, "spark", report.Skipped[0].ID)
	require.Len(t, report.Failed, 1)
	require.Equal(t, "ring", report.Failed[0].ID)
	require.ErrorIs(t, report.Err(), errs.ErrAsset)

	require.Equal(t, []string{"clock", "bat"}, f.studio.Layers())
	require.Equal(t, "#102030", f.scene.Background())
	require.Equal(t, "Loaded", f.studio.Meta().Name)
	require.False(t, f.studio.CanUndo())
	require.Empty(t, f.studio.Selected())

	_, err = f.studio.LoadDocument(context.Background(), []byte(`{`))
	require.ErrorIs(t, err, errs.ErrInvalid)
}

func TestTimeUpdatesRefreshClocksWithoutHistory(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, element.Params{Type: element.TypeTime, Format: "HH:mm"})
	require.Equal(t, "14:30", f.object(id).Text)
	undo, _ := f.studio.History().Len()

	f.studio.RefreshTime(fixedNow.Add(time.Minute))
	require.Equal(t, "14:31", f.object(id).Text)
	after, _ := f.studio.History().Len()
	require.Equal(t, undo, after)

	require.True(t, f.studio.StartTimeUpdates())
	require.False(t, f.studio.StartTimeUpdates())
	require.True(t, f.studio.TimeUpdatesRunning())

	require.True(t, f.studio.StopTimeUpdates())
	require.False(t, f.studio.TimeUpdatesRunning())
}

func TestClearHistoryKeepsDesign(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, element.Params{Type: element.TypeMoveBar, Level: 2})
	require.True(t, f.studio.CanUndo())

	f.studio.ClearHistory()
	require.False(t, f.studio.CanUndo())
	require.NotNil(t, f.object(id))
	require.True(t, f.studio.History().Listening())
}

func TestOwnLoopSerializesTicksAndMutations(t *testing.T) {
	cfg := config.Default()
	cfg.Ticker.Interval = time.Millisecond
	s, err := New(cfg, WithAssetSource(stubAssets{}))
	require.NoError(t, err)
	require.NotNil(t, s.loop)
	require.NoError(t, s.Attach(surface.NewScene(454, 454)))

	require.True(t, s.StartTimeUpdates())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 50 {
			s.RefreshTime(time.Now())
		}
	}()
	for i := range 200 {
		_, err := s.AddElement(context.Background(), element.Params{Type: element.TypeTime, Format: "HH:mm:ss"})
		require.NoError(t, err, i)
	}
	<-done
	require.True(t, s.StopTimeUpdates())
	require.Len(t, s.Layers(), 200)
	require.True(t, s.CanUndo())

	s.Close()
	_, err = s.AddElement(context.Background(), element.Params{Type: element.TypeTime})
	require.ErrorIs(t, err, errs.ErrNotReady)
	require.Empty(t, s.Layers())
}
