package codec

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"facestudio/asset"
	"facestudio/element"
	"facestudio/errs"
	"facestudio/geometry"
	"facestudio/surface"
)

var testNow = time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC)

// exactMetrics keep the baseline conversions free of rounding.
type exactMetrics struct{}

func (exactMetrics) Metrics(string) geometry.FontMetrics {
	return geometry.FontMetrics{Multiplier: 1.25, Fraction: 0.75}
}

type fakeAssets struct {
	assets map[string]*asset.Asset
	calls  int
}

func (f *fakeAssets) Fetch(_ context.Context, url string) (*asset.Asset, error) {
	f.calls++
	a, ok := f.assets[url]
	if !ok {
		return nil, errs.New("asset.fetch", errs.CodeAsset, errs.WithMessage(url), errs.WithCause(errors.New("404 Not Found")))
	}
	return a, nil
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{assets: map[string]*asset.Asset{
		"hand.svg": {
			URL: "hand.svg", Format: asset.FormatSVG, Width: 20, Height: 200,
			Paths: []asset.Path{
				{D: "M0 0H20V200H0Z", Fill: "#000000", Role: asset.RoleBackground},
				{D: "M10 0L12 180H8Z", Fill: "#ffffff"},
				{D: "M4 180A6 6 0 1 0 16 180Z", Fill: "none", Stroke: "#ffffff"},
			},
		},
		"ring.png": {
			URL: "ring.png", Format: asset.FormatRaster, Width: 454, Height: 454,
			Image: image.NewNRGBA(image.Rect(0, 0, 454, 454)),
		},
	}}
}

type harness struct {
	env    *Env
	scene  *surface.Scene
	reg    *element.Registry
	assets *fakeAssets
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		scene:  surface.NewScene(454, 454),
		reg:    element.NewRegistry(),
		assets: newFakeAssets(),
	}
	holder := &Holder{}
	holder.Attach(h.scene)
	h.env = &Env{
		Surface: holder,
		Layers:  element.NewLayers(),
		Assets:  h.assets,
		Fonts:   exactMetrics{},
		Theme:   DefaultTheme(),
		Now:     func() time.Time { return testNow },
	}
	Install(h.reg, h.env)
	return h
}

func (h *harness) add(t *testing.T, p element.Params) *element.Live {
	t.Helper()
	live, err := h.reg.Add(context.Background(), p)
	require.NoError(t, err)
	return live
}

func (h *harness) encode(t *testing.T, id string) element.Config {
	t.Helper()
	obj := topLevel(h.scene, id)
	require.NotNil(t, obj, id)
	cfg, err := h.reg.Encode(obj)
	require.NoError(t, err)
	return cfg
}

func sampleParams() []element.Params {
	withBinding := func(p element.Params, b element.Binding) element.Params {
		p.Binding = b
		return p
	}
	return []element.Params{
		{Type: element.TypeTime, Geometry: element.Geometry{Left: 227, Top: 200, OriginX: "center"}, Style: element.Style{FontSize: 64}},
		{Type: element.TypeDate, Geometry: element.Geometry{Left: 227, Top: 260}, Format: "dddd D"},
		withBinding(element.Params{Type: element.TypeData, Geometry: element.Geometry{Left: 100, Top: 300}, Text: "8421"}, element.Binding{DataProperty: "steps"}),
		withBinding(element.Params{Type: element.TypeLabel, Geometry: element.Geometry{Left: 100, Top: 330}, Text: "BPM", Style: element.Style{Color: "#ff2d55"}}, element.Binding{MetricSymbol: "bpm"}),
		withBinding(element.Params{Type: element.TypeIcon, Geometry: element.Geometry{Left: 80, Top: 330}, Text: "♥"}, element.Binding{DataProperty: "heartRate"}),
		{Type: element.TypeBattery, Geometry: element.Geometry{Left: 200, Top: 40}, Level: 0.42, Padding: 2, Palette: element.Palette{Low: "#ff0000"}},
		{Type: element.TypeMoveBar, Geometry: element.Geometry{Left: 152, Top: 400}, Level: 3, Separator: 2},
		withBinding(element.Params{Type: element.TypeGoalBar, Geometry: element.Geometry{Left: 160, Top: 380}, Progress: 0.5, Padding: 2}, element.Binding{GoalProperty: "steps"}),
		withBinding(element.Params{Type: element.TypeGoalArc, Geometry: element.Geometry{Left: 227, Top: 227}, Progress: 0.25, StartAngle: 120, EndAngle: 60}, element.Binding{GoalProperty: "calories"}),
		{Type: element.TypeHourHand, Geometry: element.Geometry{Left: 227, Top: 227}, AssetURL: "hand.svg", PivotX: 0.5, PivotY: 0.9},
		{Type: element.TypeMinuteHand, Geometry: element.Geometry{Left: 227, Top: 227}, AssetURL: "hand.svg", PivotX: 0.5, PivotY: 0.9, Style: element.Style{Color: "#ffcc00"}},
		{Type: element.TypeSecondHand, Geometry: element.Geometry{Left: 227, Top: 227}, AssetURL: "hand.svg", PivotX: 0.5, PivotY: 0.8},
		{Type: element.TypeTick12, Geometry: element.Geometry{Left: 227, Top: 227}, AssetURL: "ring.png"},
		{Type: element.TypeTick60, Geometry: element.Geometry{Left: 227, Top: 227}, AssetURL: "hand.svg"},
		{Type: element.TypeRomans, Geometry: element.Geometry{Left: 227, Top: 227}, AssetURL: "ring.png", Style: element.Style{Color: "#c0c0c0"}},
		{Type: element.TypeShapes, Geometry: element.Geometry{Left: 10, Top: 10}, Shape: ShapeCircle, Radius: 12, Style: element.Style{Color: "#ff0000", Stroke: "#ffffff", StrokeWidth: 1}},
		withBinding(element.Params{Type: element.TypeCharts, Geometry: element.Geometry{Left: 160, Top: 120}, Columns: 5, Separator: 3, Samples: []float64{0.2, 0.9, 0.5}}, element.Binding{DataProperty: "heartRate"}),
		withBinding(element.Params{Type: element.TypeIndicators, Geometry: element.Geometry{Left: 300, Top: 60}, AssetURL: "ring.png"}, element.Binding{DataProperty: "bluetooth"}),
	}
}

func TestTableCoversEveryType(t *testing.T) {
	h := newHarness(t)
	require.ElementsMatch(t, element.AllTypes, h.reg.Types())
	for _, p := range sampleParams() {
		require.True(t, p.Type.Known(), p.Type)
	}
	require.Len(t, sampleParams(), len(element.AllTypes))
}

func TestRoundTripEveryType(t *testing.T) {
	for _, p := range sampleParams() {
		t.Run(string(p.Type), func(t *testing.T) {
			first := newHarness(t)
			live := first.add(t, p)
			require.Equal(t, p.Type, live.Type)
			cfg := first.encode(t, live.ID)
			require.Equal(t, live.ID, cfg.ID)
			require.Equal(t, p.Type, cfg.EleType)

			second := newHarness(t)
			decoded, err := second.reg.Decode(cfg)
			require.NoError(t, err)
			second.add(t, decoded)
			require.Equal(t, cfg, second.encode(t, live.ID))
		})
	}
}

func TestAddTagsPartsAndSelects(t *testing.T) {
	h := newHarness(t)
	live := h.add(t, element.Params{Type: element.TypeBattery, Level: 0.9})

	root := live.Object
	require.Same(t, root, h.scene.ActiveObject())
	require.Equal(t, []string{live.ID}, h.env.Layers.IDs())
	require.Equal(t, 1, h.scene.Renders())
	root.Walk(func(o *surface.Object) {
		require.Equal(t, "battery", o.EleType())
	})
	require.Equal(t, []string{live.ID + "_body", live.ID + "_head", live.ID + "_level"}, root.Strings(surface.PropParts))
	require.Equal(t, "#34c759", root.Part(live.ID+"_level").Fill)
}

func TestAddBeforeAttachIsNotReady(t *testing.T) {
	h := newHarness(t)
	h.env.Surface.Detach()

	_, err := h.reg.Add(context.Background(), element.Params{Type: element.TypeLabel})
	require.ErrorIs(t, err, errs.ErrNotReady)
	require.ErrorIs(t, h.reg.Update(element.TypeLabel, "x", element.Patch{}), errs.ErrNotReady)
}

func TestAddRejectsDuplicateID(t *testing.T) {
	h := newHarness(t)
	h.add(t, element.Params{ID: "same", Type: element.TypeLabel, Text: "a"})
	_, err := h.reg.Add(context.Background(), element.Params{ID: "same", Type: element.TypeLabel, Text: "b"})
	require.ErrorIs(t, err, errs.ErrInvalid)
	require.Len(t, h.scene.Objects(), 1)
}

func TestAssetFailureLeavesSurfaceUntouched(t *testing.T) {
	h := newHarness(t)
	_, err := h.reg.Add(context.Background(), element.Params{Type: element.TypeHourHand, AssetURL: "missing.svg", Geometry: element.Geometry{Left: 5, Top: 6}})
	require.ErrorIs(t, err, errs.ErrAsset)

	var e *errs.E
	require.ErrorAs(t, err, &e)
	require.Equal(t, "hourHand", e.EleType)
	require.Empty(t, h.scene.Objects())
	require.Zero(t, h.env.Layers.Len())
	require.Nil(t, h.scene.ActiveObject())
}

func TestArtworkNeedsAssetURL(t *testing.T) {
	h := newHarness(t)
	_, err := h.reg.Add(context.Background(), element.Params{Type: element.TypeTick12})
	require.ErrorIs(t, err, errs.ErrInvalid)
	require.Zero(t, h.assets.calls)
}

func TestSVGArtworkIsRecolored(t *testing.T) {
	h := newHarness(t)
	live := h.add(t, element.Params{Type: element.TypeTick60, AssetURL: "hand.svg", Style: element.Style{Color: "#00ff00"}})
	parts := live.Object.Objects
	require.Len(t, parts, 3)
	require.Equal(t, "#000000", parts[0].Fill)
	require.Equal(t, "#00ff00", parts[1].Fill)
	require.Equal(t, "none", parts[2].Fill)
	require.Equal(t, "#ffffff", h.assets.assets["hand.svg"].Paths[1].Fill)
}

func TestUpdateKeepsUnpatchedFields(t *testing.T) {
	h := newHarness(t)
	live := h.add(t, element.Params{
		Type:     element.TypeBattery,
		Geometry: element.Geometry{Left: 50, Top: 60, Width: 80},
		Level:    0.8,
		Padding:  3,
		Style:    element.Style{Color: "#abcdef"},
		Palette:  element.Palette{Low: "#110000", High: "#001100"},
	})
	root := live.Object

	modified := 0
	h.scene.On(surface.EventObjectModified, func(e surface.Event) {
		require.Same(t, root, e.Target)
		modified++
	})

	require.NoError(t, h.reg.Update(element.TypeBattery, live.ID, element.Patch{"level": 0.1}))
	require.Equal(t, 1, modified)
	require.Same(t, root, topLevel(h.scene, live.ID))
	require.Equal(t, "#110000", root.Part(live.ID+"_level").Fill)

	cfg := h.encode(t, live.ID)
	require.Equal(t, 0.1, cfg.Level)
	require.Equal(t, 3.0, cfg.Padding)
	require.Equal(t, "#abcdef", cfg.Color)
	require.Equal(t, 80.0, cfg.Width)
	require.Equal(t, 50.0, cfg.Left)
	require.Equal(t, "#001100", cfg.HighColor)

	require.NoError(t, h.reg.Update(element.TypeBattery, live.ID, element.Patch{"lowColor": nil}))
	require.Equal(t, "#ff3b30", root.Part(live.ID+"_level").Fill)
	require.Empty(t, h.encode(t, live.ID).LowColor)
}

func TestUpdateErrors(t *testing.T) {
	h := newHarness(t)
	live := h.add(t, element.Params{Type: element.TypeMoveBar})

	require.ErrorIs(t, h.reg.Update(element.TypeMoveBar, "nope", element.Patch{}), errs.ErrNotFound)
	require.ErrorIs(t, h.reg.Update(element.TypeMoveBar, live.ID, element.Patch{"id": "other"}), errs.ErrInvalid)
	require.ErrorIs(t, h.reg.Update(element.TypeMoveBar, live.ID, element.Patch{"eleType": "battery"}), errs.ErrInvalid)
	require.ErrorIs(t, h.reg.Update(element.TypeBattery, live.ID, element.Patch{}), errs.ErrInvalid)
	require.ErrorIs(t, h.reg.Update(element.TypeMoveBar, live.ID, element.Patch{"level": "high"}), errs.ErrInvalid)
}

func TestMoveBarActiveSegments(t *testing.T) {
	h := newHarness(t)
	live := h.add(t, element.Params{Type: element.TypeMoveBar, Level: 2, ActiveColor: "#00ff00", InactiveColor: "#333333"})
	require.NoError(t, h.reg.Update(element.TypeMoveBar, live.ID, element.Patch{"level": 4}))

	var fills []string
	for _, p := range live.Object.Objects {
		fills = append(fills, p.Fill)
	}
	require.Equal(t, []string{"#00ff00", "#00ff00", "#00ff00", "#00ff00", "#333333"}, fills)
	require.Equal(t, 4.0, h.encode(t, live.ID).Level)
}

func TestGoalArcHidesEmptyProgress(t *testing.T) {
	h := newHarness(t)
	live := h.add(t, element.Params{Type: element.TypeGoalArc, Binding: element.Binding{GoalProperty: "steps"}, StartAngle: 120, EndAngle: 60})
	main := live.Object.Part(live.ID + "_main")
	require.True(t, main.Hidden)

	require.NoError(t, h.reg.Update(element.TypeGoalArc, live.ID, element.Patch{"progress": 0.5}))
	main = live.Object.Part(live.ID + "_main")
	require.False(t, main.Hidden)
	require.InDelta(t, 270, main.EndAngle, 1e-9)
	require.Equal(t, 120.0, main.StartAngle)
}

func TestEncodeMissingPartIsInvariant(t *testing.T) {
	h := newHarness(t)
	live := h.add(t, element.Params{Type: element.TypeGoalBar, Binding: element.Binding{GoalProperty: "steps"}})
	live.Object.Objects = live.Object.Objects[:1]

	_, err := h.reg.Encode(live.Object)
	require.ErrorIs(t, err, errs.ErrInvariant)
	require.Contains(t, err.Error(), live.ID+"_main")
}

func TestEncodeChecksBindings(t *testing.T) {
	h := newHarness(t)
	live := h.add(t, element.Params{Type: element.TypeData, Text: "0"})
	_, err := h.reg.Encode(live.Object)
	require.ErrorIs(t, err, errs.ErrInvariant)

	live = h.add(t, element.Params{Type: element.TypeLabel, Binding: element.Binding{DataProperty: "a", MetricSymbol: "b"}})
	_, err = h.reg.Encode(live.Object)
	require.ErrorIs(t, err, errs.ErrInvariant)
}

func TestTextStoresBaseline(t *testing.T) {
	h := newHarness(t)
	live := h.add(t, element.Params{
		Type:     element.TypeLabel,
		Geometry: element.Geometry{Left: 10, Top: 100},
		Style:    element.Style{FontSize: 20},
		Binding:  element.Binding{MetricSymbol: "kcal"},
	})
	require.Equal(t, 100-25*0.75, live.Object.Top)
	require.Equal(t, 100.0, h.encode(t, live.ID).Top)
}

func TestClockElementsFollowTime(t *testing.T) {
	h := newHarness(t)
	clock := h.add(t, element.Params{Type: element.TypeTime})
	date := h.add(t, element.Params{Type: element.TypeDate})
	require.Equal(t, "14:30", clock.Object.Text)
	require.Equal(t, "Fri 05", date.Object.Text)

	refresh, ok := h.reg.Refresher(element.TypeTime)
	require.True(t, ok)
	later := testNow.Add(61 * time.Second)
	require.True(t, refresh(clock.Object, later))
	require.Equal(t, "14:31", clock.Object.Text)
	require.False(t, refresh(clock.Object, later))

	_, ok = h.reg.Refresher(element.TypeLabel)
	require.False(t, ok)
}

func TestHandsTurnWithoutPersistingAngle(t *testing.T) {
	h := newHarness(t)
	live := h.add(t, element.Params{Type: element.TypeMinuteHand, AssetURL: "hand.svg", PivotX: 0.5, PivotY: 0.9})
	require.Equal(t, 180.0, live.Object.Angle)
	require.Equal(t, "0.9", live.Object.OriginY)

	refresh, ok := h.reg.Refresher(element.TypeMinuteHand)
	require.True(t, ok)
	require.True(t, refresh(live.Object, testNow.Add(15*time.Minute)))
	require.Equal(t, 270.0, live.Object.Angle)

	cfg := h.encode(t, live.ID)
	require.Zero(t, cfg.Angle)
	require.Equal(t, 0.9, *cfg.PivotY)
}

func TestDecodeNormalizesLegacyNames(t *testing.T) {
	h := newHarness(t)
	p, err := h.reg.Decode(element.Config{
		ID:      "old",
		EleType: element.TypeGoalArc,
		Extra: map[string]any{
			"fill":        "#123456",
			"goalBinding": "steps",
			"direction":   "ccw",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "#123456", p.Color)
	require.Equal(t, "steps", p.GoalProperty)
	require.True(t, p.CounterClockwise)
	require.Equal(t, 50.0, p.Radius)

	p, err = h.reg.Decode(element.Config{
		EleType: element.TypeBattery,
		Extra:   map[string]any{"colors": []any{"#a00", "#aa0", "#0a0"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, element.Palette{Low: "#a00", Medium: "#aa0", High: "#0a0"}, p.Palette)

	p, err = h.reg.Decode(element.Config{EleType: element.TypeIcon, Extra: map[string]any{"svgUrl": "x.svg", "size": 30.0}})
	require.NoError(t, err)
	require.Equal(t, "x.svg", p.AssetURL)
	require.Equal(t, 30.0, p.FontSize)
}

func TestDecodeRejectsWrongType(t *testing.T) {
	h := newHarness(t)
	dec, ok := h.reg.Decoder(element.TypeBattery)
	require.True(t, ok)
	_, err := dec(element.Config{EleType: element.TypeLabel})
	require.ErrorIs(t, err, errs.ErrInvalid)
}

func TestLevelColor(t *testing.T) {
	defaults := DefaultTheme().Battery
	require.Equal(t, defaults.Low, LevelColor(0.2, element.Palette{}, defaults))
	require.Equal(t, defaults.Medium, LevelColor(0.2001, element.Palette{}, defaults))
	require.Equal(t, "#00f", LevelColor(0.5, element.Palette{Medium: "#00f"}, defaults))
	require.Equal(t, defaults.High, LevelColor(0.5001, element.Palette{Medium: "#00f"}, defaults))
}

func TestFormatClock(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 9, 0, time.UTC)
	cases := map[string]string{
		"HH:mm":        "07:05",
		"h:mm A":       "7:05 AM",
		"HH:mm:ss":     "07:05:09",
		"ddd dd":       "Sat 09",
		"dddd, MMMM D": "Saturday, March 9",
		"YYYY-MM-DD":   "2024-03-09",
	}
	for format, want := range cases {
		require.Equal(t, want, FormatClock(format, at), format)
	}
}

func TestShapesRejectUnknownKind(t *testing.T) {
	h := newHarness(t)
	_, err := h.reg.Add(context.Background(), element.Params{Type: element.TypeShapes, Shape: "star"})
	require.ErrorIs(t, err, errs.ErrInvalid)
}

func TestChartColumns(t *testing.T) {
	h := newHarness(t)
	live := h.add(t, element.Params{
		Type:     element.TypeCharts,
		Binding:  element.Binding{DataProperty: "hr"},
		Geometry: element.Geometry{Width: 70, Height: 40},
		Samples:  []float64{1, 0.5},
	})
	parts := live.Object.Objects
	require.Len(t, parts, DefaultChartColumns)
	require.Equal(t, 40.0, parts[0].Height)
	require.Equal(t, 20.0, parts[1].Height)
	require.Equal(t, 20.0, parts[1].Top)
	require.Zero(t, parts[6].Height)
}
