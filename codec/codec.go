package codec

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"facestudio/element"
	"facestudio/errs"
	"facestudio/surface"
)

// family is the type-specific part of a codec.
type family interface {
	// defaults fills params the caller left unset.
	defaults(p *element.Params)
	// build returns a fresh root object for p with all parts in place.
	build(ctx context.Context, p element.Params) (*surface.Object, error)
	// encode copies the family fields of root into cfg.
	encode(root *surface.Object, cfg *element.Config) error
}

// codec adapts a family to element.Codec. Add and Update share the same
// build path, so an update is a rebuild from the current record with the
// patch applied.
type codec struct {
	env *Env
	t   element.EleType
	f   family
}

// refreshing is a codec whose elements follow the clock.
type refreshing struct {
	*codec
	refresh func(root *surface.Object, now time.Time) bool
}

func (r *refreshing) Refresh(root *surface.Object, now time.Time) bool {
	return r.refresh(root, now)
}

func (c *codec) Add(ctx context.Context, p element.Params) (*element.Live, error) {
	const op = "codec.add"
	s, err := c.env.Surface.Require(op)
	if err != nil {
		return nil, err
	}
	if p.Type != "" && p.Type != c.t {
		return nil, errs.New(op, errs.CodeInvalid,
			errs.WithElement(p.ID, string(p.Type)),
			errs.WithMessage("params routed to "+string(c.t)+" codec"))
	}
	p.Type = c.t
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if surface.FindByID(s.Objects(), p.ID) != nil {
		return nil, errs.New(op, errs.CodeInvalid,
			errs.WithElement(p.ID, string(c.t)),
			errs.WithMessage("duplicate element id"))
	}
	c.f.defaults(&p)
	root, err := c.f.build(ctx, p)
	if err != nil {
		return nil, err
	}
	c.finish(root, p)

	s.Add(root)
	if c.env.Layers != nil {
		c.env.Layers.Push(p.ID)
	}
	s.SetActiveObject(root)
	s.RequestRenderAll()
	c.env.logger().Debug("element added", slog.String("id", p.ID), slog.String("eleType", string(c.t)))
	return &element.Live{ID: p.ID, Type: c.t, Object: root}, nil
}

func (c *codec) Update(id string, patch element.Patch) error {
	const op = "codec.update"
	s, err := c.env.Surface.Require(op)
	if err != nil {
		return err
	}
	root := topLevel(s, id)
	if root == nil {
		return errs.New(op, errs.CodeNotFound, errs.WithElement(id, string(c.t)), errs.WithMessage("no such element"))
	}
	if element.EleType(root.EleType()) != c.t {
		return errs.New(op, errs.CodeInvalid,
			errs.WithElement(id, root.EleType()),
			errs.WithMessage("element is not a "+string(c.t)))
	}
	cfg, err := c.record(root)
	if err != nil {
		return err
	}
	cfg, err = applyPatch(op, cfg, patch)
	if err != nil {
		return err
	}
	p := c.params(cfg)
	fresh, err := c.f.build(context.Background(), p)
	if err != nil {
		return err
	}
	c.finish(fresh, p)
	*root = *fresh

	s.Fire(surface.EventObjectModified, root)
	s.RequestRenderAll()
	return nil
}

func (c *codec) Encode(root *surface.Object) (element.Config, error) {
	cfg, err := c.record(root)
	if err != nil {
		return element.Config{}, err
	}
	if err := element.CheckBinding("codec.encode", root, c.t, bindingOf(cfg)); err != nil {
		return element.Config{}, err
	}
	return cfg, nil
}

func (c *codec) Decode(cfg element.Config) (element.Params, error) {
	cfg = normalizeLegacy(cfg)
	if cfg.EleType != "" && cfg.EleType != c.t {
		return element.Params{}, errs.New("codec.decode", errs.CodeInvalid,
			errs.WithElement(cfg.ID, string(cfg.EleType)),
			errs.WithMessage("record routed to "+string(c.t)+" codec"))
	}
	return c.params(cfg), nil
}

// record reads root into a configuration record without checking bindings.
func (c *codec) record(root *surface.Object) (element.Config, error) {
	if element.EleType(root.EleType()) != c.t {
		return element.Config{}, element.Invariant("codec.encode", root, "object tagged %q given to %s codec", root.EleType(), c.t)
	}
	cfg := element.Config{
		ID:           root.ID(),
		EleType:      c.t,
		Left:         root.Left,
		Top:          root.Top,
		OriginX:      root.OriginX,
		OriginY:      root.OriginY,
		Angle:        root.Angle,
		DataProperty: root.String("dataProperty"),
		GoalProperty: root.String("goalProperty"),
		MetricSymbol: root.String("metricSymbol"),
	}
	if err := c.f.encode(root, &cfg); err != nil {
		return element.Config{}, err
	}
	return cfg, nil
}

func (c *codec) params(cfg element.Config) element.Params {
	p := paramsOf(cfg)
	p.Type = c.t
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	c.f.defaults(&p)
	return p
}

// finish tags root and its parts and stores the bindings.
func (c *codec) finish(root *surface.Object, p element.Params) {
	root.Walk(func(o *surface.Object) {
		o.Set(surface.PropEleType, string(c.t))
	})
	root.Set(surface.PropID, p.ID)
	setString(root, "dataProperty", p.DataProperty)
	setString(root, "goalProperty", p.GoalProperty)
	setString(root, "metricSymbol", p.MetricSymbol)
}

func topLevel(s surface.Surface, id string) *surface.Object {
	for _, o := range s.Objects() {
		if o.ID() == id {
			return o
		}
	}
	return nil
}

func setString(o *surface.Object, key, v string) {
	if v == "" {
		o.Delete(key)
		return
	}
	o.Set(key, v)
}

func bindingOf(cfg element.Config) element.Binding {
	return element.Binding{
		DataProperty: cfg.DataProperty,
		GoalProperty: cfg.GoalProperty,
		MetricSymbol: cfg.MetricSymbol,
	}
}

// paramsOf copies a record into constructor params field by field.
func paramsOf(cfg element.Config) element.Params {
	p := element.Params{
		ID:   cfg.ID,
		Type: cfg.EleType,
		Geometry: element.Geometry{
			Left:    cfg.Left,
			Top:     cfg.Top,
			OriginX: cfg.OriginX,
			OriginY: cfg.OriginY,
			Width:   cfg.Width,
			Height:  cfg.Height,
			Angle:   cfg.Angle,
		},
		Style: element.Style{
			Color:       cfg.Color,
			BgColor:     cfg.BgColor,
			Stroke:      cfg.Stroke,
			FontFamily:  cfg.FontFamily,
			FontSize:    cfg.FontSize,
			TextAlign:   cfg.TextAlign,
			StrokeWidth: cfg.StrokeWidth,
		},
		Binding:          bindingOf(cfg),
		Text:             cfg.Text,
		Format:           cfg.Format,
		Progress:         cfg.Progress,
		Level:            cfg.Level,
		Padding:          cfg.Padding,
		Separator:        cfg.Separator,
		Radius:           cfg.Radius,
		StartAngle:       cfg.StartAngle,
		EndAngle:         cfg.EndAngle,
		CounterClockwise: cfg.CounterClockwise,
		Palette: element.Palette{
			Low:    cfg.LowColor,
			Medium: cfg.MediumColor,
			High:   cfg.HighColor,
		},
		ActiveColor:   cfg.ActiveColor,
		InactiveColor: cfg.InactiveColor,
		AssetURL:      cfg.AssetURL,
		PivotX:        0.5,
		PivotY:        0.5,
		Shape:         cfg.Shape,
		Columns:       cfg.Columns,
		Samples:       append([]float64(nil), cfg.Samples...),
	}
	if cfg.PivotX != nil {
		p.PivotX = *cfg.PivotX
	}
	if cfg.PivotY != nil {
		p.PivotY = *cfg.PivotY
	}
	return p
}

// applyPatch overlays the present patch fields on cfg. A null value clears
// the field. The id and eleType cannot change.
func applyPatch(op string, cfg element.Config, patch element.Patch) (element.Config, error) {
	if v, ok := patch["id"]; ok && v != cfg.ID {
		return cfg, errs.New(op, errs.CodeInvalid, errs.WithElement(cfg.ID, string(cfg.EleType)), errs.WithMessage("id cannot be changed"))
	}
	if v, ok := patch["eleType"]; ok && v != string(cfg.EleType) {
		return cfg, errs.New(op, errs.CodeInvalid, errs.WithElement(cfg.ID, string(cfg.EleType)), errs.WithMessage("eleType cannot be changed"))
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return cfg, errs.New(op, errs.CodeInvalid, errs.WithCause(err))
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return cfg, errs.New(op, errs.CodeInvalid, errs.WithCause(err))
	}
	for k, v := range patch {
		if v == nil {
			delete(m, k)
			continue
		}
		m[k] = v
	}
	if raw, err = json.Marshal(m); err != nil {
		return cfg, errs.New(op, errs.CodeInvalid, errs.WithCause(err))
	}
	var out element.Config
	if err := json.Unmarshal(raw, &out); err != nil {
		return cfg, errs.New(op, errs.CodeInvalid, errs.WithElement(cfg.ID, string(cfg.EleType)), errs.WithCause(err))
	}
	return out, nil
}
