package element

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"facestudio/errs"
	"facestudio/surface"
)

func TestParseDocumentUpgradesLegacy(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"version": 1,
		"name": "Legacy",
		"elements": [
			{"eleType": "label", "x": 10, "y": 20, "text": "HI", "fill": "#fff"},
			{"id": "keep", "eleType": "data", "left": 5, "top": 6, "dataProperty": "steps"}
		]
	}`))
	require.NoError(t, err)
	require.Equal(t, DocumentVersion, doc.Version)
	require.Len(t, doc.Elements, 2)

	first := doc.Elements[0]
	require.NotEmpty(t, first.ID)
	require.Equal(t, 10.0, first.Left)
	require.Equal(t, 20.0, first.Top)
	require.NotContains(t, first.Extra, "x")
	require.Equal(t, "#fff", first.Extra["fill"])

	require.Equal(t, []string{first.ID, "keep"}, doc.OrderIDs)
	require.NotNil(t, doc.Properties)
	require.NotNil(t, doc.ThemeBackgroundImages)
}

func TestParseDocumentErrors(t *testing.T) {
	_, err := ParseDocument([]byte(`{"version":`))
	require.ErrorIs(t, err, errs.ErrInvalid)
}

func TestParseNewerDocumentSkipsUnknownTypes(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"version": 3,
		"elements": [
			{"id": "a", "eleType": "label", "dataProperty": "steps"},
			{"id": "b", "eleType": "hologram"}
		],
		"orderIds": ["a", "b"]
	}`))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 2)
	require.Equal(t, []string{"a", "b"}, doc.OrderIDs)

	plan, report := Plan(doc, stubRegistry(TypeLabel), nil)
	require.Len(t, plan, 1)
	require.Equal(t, "a", plan[0].ID)
	require.Equal(t, []Skipped{{ID: "b", EleType: "hologram", Reason: "unsupported element type"}}, report.Skipped)
	require.NoError(t, report.Err())
}

func TestOrderedPutsUnlistedLast(t *testing.T) {
	doc := &Document{
		Elements: []Config{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		OrderIDs: []string{"c", "ghost", "a", "c"},
	}
	var ids []string
	for _, cfg := range doc.Ordered() {
		ids = append(ids, cfg.ID)
	}
	require.Equal(t, []string{"c", "a", "b"}, ids)
}

func stubRegistry(types ...EleType) *Registry {
	reg := NewRegistry()
	for _, t := range types {
		reg.RegisterEncoder(t, func(obj *surface.Object) (Config, error) {
			return Config{
				ID:           obj.ID(),
				EleType:      EleType(obj.EleType()),
				DataProperty: obj.String("dataProperty"),
				GoalProperty: obj.String("goalProperty"),
			}, nil
		})
		reg.RegisterDecoder(t, func(cfg Config) (Params, error) {
			if cfg.Extra["broken"] == true {
				return Params{}, errs.New("decode", errs.CodeInvalid)
			}
			return Params{ID: cfg.ID, Type: cfg.EleType}, nil
		})
	}
	return reg
}

func TestEncodeFollowsLayersAndDerivesProperties(t *testing.T) {
	reg := stubRegistry(TypeData, TypeGoalBar)

	steps := element("steps", "data")
	steps.Set("dataProperty", "steps")
	goal := element("goal", "goalBar")
	goal.Set("goalProperty", "steps")
	orphan := element("x", "mystery")
	plain := &surface.Object{Kind: surface.KindRect}

	doc, err := Encode(
		[]*surface.Object{steps, orphan, plain, goal},
		reg,
		NewLayers("goal", "steps"),
		Document{Name: "Face", DesignID: "d1"},
		nil,
	)
	require.NoError(t, err)
	require.Equal(t, DocumentVersion, doc.Version)
	require.Equal(t, "Face", doc.Name)
	require.Equal(t, []string{"goal", "steps"}, doc.OrderIDs)
	require.Equal(t, Property{Kind: KindGoal, Elements: []string{"goal", "steps"}}, doc.Properties["steps"])
	require.Equal(t, []string{}, doc.ThemeBackgroundImages)
}

func TestEncodeEmptyHasEmptyLists(t *testing.T) {
	doc, err := Encode(nil, NewRegistry(), nil, Document{}, nil)
	require.NoError(t, err)
	data, err := doc.Marshal()
	require.NoError(t, err)
	require.Contains(t, string(data), `"elements": []`)
	require.Contains(t, string(data), `"orderIds": []`)
}

func TestEncodePropagatesEncoderErrors(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterEncoder(TypeBattery, func(obj *surface.Object) (Config, error) {
		return Config{}, Invariant("encode", obj, "missing part")
	})
	_, err := Encode([]*surface.Object{element("b", "battery")}, reg, nil, Document{}, nil)
	require.ErrorIs(t, err, errs.ErrInvariant)
}

func TestPlanSkipsUnknownAndReportsFailures(t *testing.T) {
	reg := stubRegistry(TypeData)
	doc := &Document{Elements: []Config{
		{ID: "ok", EleType: TypeData},
		{ID: "alien", EleType: "hologram"},
		{ID: "bad", EleType: TypeData, Extra: map[string]any{"broken": true}},
	}}
	plan, report := Plan(doc, reg, nil)
	require.Len(t, plan, 1)
	require.Equal(t, "ok", plan[0].ID)
	require.Equal(t, []Skipped{{ID: "alien", EleType: "hologram", Reason: "unsupported element type"}}, report.Skipped)
	require.Len(t, report.Failed, 1)
	require.ErrorIs(t, report.Err(), errs.ErrInvalid)
}

func TestRegistryDispatchUnsupported(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Add(context.Background(), Params{ID: "x", Type: TypeIcon})
	require.ErrorIs(t, err, errs.ErrUnsupported)
	require.ErrorIs(t, reg.Update(TypeIcon, "x", Patch{}), errs.ErrUnsupported)
	_, err = reg.Encode(element("x", "icon"))
	require.ErrorIs(t, err, errs.ErrUnsupported)
	_, err = reg.Decode(Config{EleType: TypeIcon})
	require.ErrorIs(t, err, errs.ErrUnsupported)
}

func TestConfigKeepsUnknownKeys(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"version":2,"elements":[{"id":"a","eleType":"icon","assetUrl":"x.svg","svgColor":"#f00"}]}`))
	require.NoError(t, err)
	cfg := doc.Elements[0]
	require.Equal(t, "x.svg", cfg.AssetURL)
	require.Equal(t, map[string]any{"svgColor": "#f00"}, cfg.Extra)
}
