package codec

import (
	"context"
	"fmt"

	"facestudio/element"
	"facestudio/errs"
	"facestudio/surface"
)

// Shape kinds.
const (
	ShapeRect   = "rect"
	ShapeCircle = "circle"
)

// shapesFamily draws a single filled rectangle or circle.
type shapesFamily struct {
	env *Env
}

func (f *shapesFamily) defaults(p *element.Params) {
	orDefault(&p.Shape, ShapeRect)
	orDefault(&p.Color, f.env.Theme.TextColor)
	if p.Shape == ShapeCircle {
		orDefaultFloat(&p.Radius, 20)
		return
	}
	orDefaultFloat(&p.Width, 40)
	orDefaultFloat(&p.Height, 40)
}

func (f *shapesFamily) build(_ context.Context, p element.Params) (*surface.Object, error) {
	o := &surface.Object{
		Left:        p.Left,
		Top:         p.Top,
		OriginX:     p.OriginX,
		OriginY:     p.OriginY,
		Angle:       p.Angle,
		Fill:        p.Color,
		Stroke:      p.Stroke,
		StrokeWidth: p.StrokeWidth,
		Radius:      p.Radius,
	}
	switch p.Shape {
	case ShapeRect:
		o.Kind = surface.KindRect
		o.Width, o.Height = p.Width, p.Height
	case ShapeCircle:
		o.Kind = surface.KindCircle
		o.Width, o.Height = 2*p.Radius, 2*p.Radius
	default:
		return nil, errs.New("codec.build", errs.CodeInvalid,
			errs.WithElement(p.ID, string(element.TypeShapes)),
			errs.WithMessage(fmt.Sprintf("unknown shape %q", p.Shape)))
	}
	return o, nil
}

func (f *shapesFamily) encode(root *surface.Object, cfg *element.Config) error {
	switch root.Kind {
	case surface.KindRect:
		cfg.Shape = ShapeRect
		cfg.Width = root.Width
		cfg.Height = root.Height
	case surface.KindCircle:
		cfg.Shape = ShapeCircle
	default:
		return element.Invariant("codec.encode", root, "shape drawn as %s", root.Kind)
	}
	cfg.Radius = root.Radius
	cfg.Color = root.Fill
	cfg.Stroke = root.Stroke
	cfg.StrokeWidth = root.StrokeWidth
	return nil
}
