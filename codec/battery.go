package codec

import (
	"context"
	"math"

	"facestudio/element"
	"facestudio/geometry"
	"facestudio/surface"
)

// LevelColor picks the fill for level: the per-instance override of its band
// when set, otherwise the default of that band.
func LevelColor(level float64, overrides, defaults element.Palette) string {
	pick := func(o, d string) string {
		if o != "" {
			return o
		}
		return d
	}
	switch geometry.BandFor(level) {
	case geometry.BandLow:
		return pick(overrides.Low, defaults.Low)
	case geometry.BandMedium:
		return pick(overrides.Medium, defaults.Medium)
	default:
		return pick(overrides.High, defaults.High)
	}
}

// batteryFamily draws an outlined body, a terminal head and a level fill.
type batteryFamily struct {
	env *Env
}

func (f *batteryFamily) defaults(p *element.Params) {
	orDefaultFloat(&p.Width, 60)
	orDefaultFloat(&p.Height, 30)
	orDefaultFloat(&p.StrokeWidth, 2)
	orDefault(&p.Color, f.env.Theme.TextColor)
}

func (f *batteryFamily) build(_ context.Context, p element.Params) (*surface.Object, error) {
	w, h := p.Width, p.Height
	headW := math.Max(2, w*0.08)
	headH := h * 0.5
	level := geometry.Clamp01(p.Level)

	body := rectPart(partID(p.ID, "body"), 0, 0, w, h, "")
	body.Stroke = p.Color
	body.StrokeWidth = p.StrokeWidth
	head := rectPart(partID(p.ID, "head"), w, (h-headH)/2, headW, headH, p.Color)
	fill := rectPart(partID(p.ID, "level"),
		p.Padding, p.Padding,
		geometry.ProgressWidth(w, p.Padding, level), math.Max(0, h-2*p.Padding),
		LevelColor(level, p.Palette, f.env.Theme.Battery))

	root := group(p, w+headW, h, body, head, fill)
	root.Set("level", level)
	root.Set("padding", p.Padding)
	setString(root, "lowColor", p.Palette.Low)
	setString(root, "mediumColor", p.Palette.Medium)
	setString(root, "highColor", p.Palette.High)
	return root, nil
}

func (f *batteryFamily) encode(root *surface.Object, cfg *element.Config) error {
	parts, err := requireParts("codec.encode", root,
		partID(cfg.ID, "body"), partID(cfg.ID, "head"), partID(cfg.ID, "level"))
	if err != nil {
		return err
	}
	body := parts[0]
	cfg.Width = body.Width
	cfg.Height = body.Height
	cfg.Color = body.Stroke
	cfg.StrokeWidth = body.StrokeWidth
	cfg.Level = root.Float("level")
	cfg.Padding = root.Float("padding")
	cfg.LowColor = root.String("lowColor")
	cfg.MediumColor = root.String("mediumColor")
	cfg.HighColor = root.String("highColor")
	return nil
}
