package codec

import (
	"context"
	"time"

	"facestudio/element"
	"facestudio/geometry"
	"facestudio/surface"
)

// textFamily covers time, date, data, label and icon elements. Each is one
// text object; the record stores the baseline row in top while the surface
// object is positioned by its box.
type textFamily struct {
	env *Env
	t   element.EleType
}

func (f *textFamily) clock() bool {
	return f.t == element.TypeTime || f.t == element.TypeDate
}

func (f *textFamily) defaults(p *element.Params) {
	orDefault(&p.Color, f.env.Theme.TextColor)
	orDefault(&p.FontFamily, f.env.Theme.FontFamily)
	orDefaultFloat(&p.FontSize, f.env.Theme.FontSize)
	switch f.t {
	case element.TypeTime:
		if f.env.Theme.Hour24 {
			orDefault(&p.Format, DefaultTimeFormat)
		} else {
			orDefault(&p.Format, DefaultTime12Format)
		}
	case element.TypeDate:
		orDefault(&p.Format, DefaultDateFormat)
	}
}

func (f *textFamily) build(_ context.Context, p element.Params) (*surface.Object, error) {
	m := f.env.metrics(p.FontFamily)
	o := &surface.Object{
		Kind:       surface.KindText,
		Left:       p.Left,
		Top:        geometry.TopFromBaseline(p.Top, p.FontSize, m, p.OriginY),
		OriginX:    p.OriginX,
		OriginY:    p.OriginY,
		Angle:      p.Angle,
		Width:      p.Width,
		Height:     m.BoxHeight(p.FontSize),
		Fill:       p.Color,
		FontFamily: p.FontFamily,
		FontSize:   p.FontSize,
		TextAlign:  p.TextAlign,
		Text:       p.Text,
	}
	if f.clock() {
		o.Set("format", p.Format)
		o.Text = FormatClock(p.Format, f.env.now())
	}
	return o, nil
}

func (f *textFamily) encode(root *surface.Object, cfg *element.Config) error {
	m := f.env.metrics(root.FontFamily)
	cfg.Top = geometry.BaselineFromTop(root.Top, root.FontSize, m, root.OriginY)
	cfg.Width = root.Width
	cfg.Color = root.Fill
	cfg.FontFamily = root.FontFamily
	cfg.FontSize = root.FontSize
	cfg.TextAlign = root.TextAlign
	if f.clock() {
		cfg.Format = root.String("format")
	} else {
		cfg.Text = root.Text
	}
	return nil
}

// refresh re-renders the clock text for now.
func (f *textFamily) refresh(root *surface.Object, now time.Time) bool {
	format := root.String("format")
	if format == "" {
		return false
	}
	text := FormatClock(format, now)
	if root.Text == text {
		return false
	}
	root.Text = text
	return true
}
