package codec

import (
	"context"
	"fmt"
	"math"

	"facestudio/element"
	"facestudio/geometry"
	"facestudio/surface"
)

// moveBarFamily draws the five-segment activity bar.
type moveBarFamily struct {
	env *Env
}

func (f *moveBarFamily) defaults(p *element.Params) {
	orDefaultFloat(&p.Width, 150)
	orDefaultFloat(&p.Height, 8)
	orDefault(&p.ActiveColor, f.env.Theme.ActiveColor)
	orDefault(&p.InactiveColor, f.env.Theme.InactiveColor)
}

func moveBarPartIDs(id string) []string {
	ids := make([]string, len(geometry.MoveBarUnits))
	for i := range ids {
		ids[i] = partID(id, fmt.Sprintf("bar_%d", i+1))
	}
	return ids
}

func (f *moveBarFamily) build(_ context.Context, p element.Params) (*surface.Object, error) {
	segs := geometry.MoveBarSegments(p.Width, p.Separator, p.Level)
	ids := moveBarPartIDs(p.ID)
	parts := make([]*surface.Object, len(segs))
	for i, s := range segs {
		fill := p.InactiveColor
		if s.Active {
			fill = p.ActiveColor
		}
		parts[i] = rectPart(ids[i], s.Left, 0, s.Width, p.Height, fill)
	}
	root := group(p, p.Width, p.Height, parts...)
	root.Set("level", p.Level)
	root.Set("separator", p.Separator)
	setString(root, "activeColor", p.ActiveColor)
	setString(root, "inactiveColor", p.InactiveColor)
	return root, nil
}

func (f *moveBarFamily) encode(root *surface.Object, cfg *element.Config) error {
	if _, err := requireParts("codec.encode", root, moveBarPartIDs(cfg.ID)...); err != nil {
		return err
	}
	cfg.Width = root.Width
	cfg.Height = root.Height
	cfg.Level = root.Float("level")
	cfg.Separator = root.Float("separator")
	cfg.ActiveColor = root.String("activeColor")
	cfg.InactiveColor = root.String("inactiveColor")
	return nil
}

// goalBarFamily draws a track with a progress fill inset by padding.
type goalBarFamily struct {
	env *Env
}

func (f *goalBarFamily) defaults(p *element.Params) {
	orDefaultFloat(&p.Width, 120)
	orDefaultFloat(&p.Height, 12)
	orDefault(&p.Color, f.env.Theme.ActiveColor)
	orDefault(&p.BgColor, f.env.Theme.InactiveColor)
}

func (f *goalBarFamily) build(_ context.Context, p element.Params) (*surface.Object, error) {
	progress := geometry.Clamp01(p.Progress)
	bg := rectPart(partID(p.ID, "bg"), 0, 0, p.Width, p.Height, p.BgColor)
	main := rectPart(partID(p.ID, "main"),
		p.Padding, p.Padding,
		geometry.ProgressWidth(p.Width, p.Padding, progress), math.Max(0, p.Height-2*p.Padding),
		p.Color)
	root := group(p, p.Width, p.Height, bg, main)
	root.Set("progress", progress)
	root.Set("padding", p.Padding)
	return root, nil
}

func (f *goalBarFamily) encode(root *surface.Object, cfg *element.Config) error {
	parts, err := requireParts("codec.encode", root, partID(cfg.ID, "bg"), partID(cfg.ID, "main"))
	if err != nil {
		return err
	}
	cfg.Width = root.Width
	cfg.Height = root.Height
	cfg.BgColor = parts[0].Fill
	cfg.Color = parts[1].Fill
	cfg.Progress = root.Float("progress")
	cfg.Padding = root.Float("padding")
	return nil
}

// goalArcFamily draws a circular track and a progress arc over it.
type goalArcFamily struct {
	env *Env
}

func (f *goalArcFamily) defaults(p *element.Params) {
	orDefaultFloat(&p.Radius, 50)
	orDefaultFloat(&p.StrokeWidth, 8)
	orDefault(&p.Color, f.env.Theme.ActiveColor)
	orDefault(&p.BgColor, f.env.Theme.InactiveColor)
	orDefault(&p.OriginX, "center")
	orDefault(&p.OriginY, "center")
}

func arcPart(id string, center, radius, width, start, end float64, stroke string) *surface.Object {
	o := part(surface.KindCircle, id)
	o.Left, o.Top = center, center
	o.OriginX, o.OriginY = "center", "center"
	o.Radius = radius
	o.Width, o.Height = 2*radius, 2*radius
	o.StartAngle, o.EndAngle = start, end
	o.Stroke = stroke
	o.StrokeWidth = width
	o.StrokeLineCap = "round"
	return o
}

func (f *goalArcFamily) build(_ context.Context, p element.Params) (*surface.Object, error) {
	progress := geometry.Clamp01(p.Progress)
	size := 2 * (p.Radius + p.StrokeWidth/2)
	start, end := geometry.SweepEnd(p.StartAngle, p.EndAngle, p.CounterClockwise)
	reached := geometry.ProgressAngle(p.StartAngle, p.EndAngle, p.CounterClockwise, progress)

	bg := arcPart(partID(p.ID, "bg"), size/2, p.Radius, p.StrokeWidth, start, end, p.BgColor)
	main := arcPart(partID(p.ID, "main"), size/2, p.Radius, p.StrokeWidth, start, reached, p.Color)
	main.Hidden = progress == 0

	root := group(p, size, size, bg, main)
	root.Radius = p.Radius
	root.StrokeWidth = p.StrokeWidth
	root.StartAngle = p.StartAngle
	root.EndAngle = p.EndAngle
	root.Counterclockwise = p.CounterClockwise
	root.Set("progress", progress)
	return root, nil
}

func (f *goalArcFamily) encode(root *surface.Object, cfg *element.Config) error {
	parts, err := requireParts("codec.encode", root, partID(cfg.ID, "bg"), partID(cfg.ID, "main"))
	if err != nil {
		return err
	}
	cfg.Radius = root.Radius
	cfg.StrokeWidth = root.StrokeWidth
	cfg.StartAngle = root.StartAngle
	cfg.EndAngle = root.EndAngle
	cfg.CounterClockwise = root.Counterclockwise
	cfg.BgColor = parts[0].Stroke
	cfg.Color = parts[1].Stroke
	cfg.Progress = root.Float("progress")
	return nil
}
