package codec

import (
	"context"
	"fmt"
	"time"

	"facestudio/asset"
	"facestudio/element"
	"facestudio/errs"
	"facestudio/geometry"
	"facestudio/surface"
)

// artworkFamily builds elements from a fetched SVG or raster: analog hands,
// tick rings, numeral rings and status indicators. Vector paths are
// recolored except neutral and background ones; rasters are tinted at render
// time from the root fill.
type artworkFamily struct {
	env  *Env
	t    element.EleType
	hand *geometry.Hand
}

func handOf(t element.EleType) *geometry.Hand {
	var h geometry.Hand
	switch t {
	case element.TypeHourHand:
		h = geometry.HourHand
	case element.TypeMinuteHand:
		h = geometry.MinuteHand
	case element.TypeSecondHand:
		h = geometry.SecondHand
	default:
		return nil
	}
	return &h
}

func (f *artworkFamily) defaults(p *element.Params) {
	orDefault(&p.Color, f.env.Theme.TextColor)
	if f.hand == nil {
		orDefault(&p.OriginX, "center")
		orDefault(&p.OriginY, "center")
	}
	if f.t == element.TypeIndicators {
		orDefault(&p.InactiveColor, f.env.Theme.InactiveColor)
	}
}

func (f *artworkFamily) build(ctx context.Context, p element.Params) (*surface.Object, error) {
	if p.AssetURL == "" {
		return nil, errs.New("codec.build", errs.CodeInvalid,
			errs.WithElement(p.ID, string(f.t)),
			errs.WithMessage("assetUrl is required"))
	}
	a, err := f.env.fetch(ctx, p.AssetURL)
	if err != nil {
		return nil, errs.New("codec.build", errs.CodeAsset,
			errs.WithElement(p.ID, string(f.t)),
			errs.WithPosition(p.Left, p.Top),
			errs.WithCause(err))
	}

	var parts []*surface.Object
	switch a.Format {
	case asset.FormatSVG:
		for i, path := range asset.Recolor(a.ClonePaths(), p.Color) {
			o := part(surface.KindPath, partID(p.ID, fmt.Sprintf("path_%d", i)))
			o.Path = path.D
			o.Fill = path.Fill
			o.Stroke = path.Stroke
			o.StrokeWidth = path.StrokeWidth
			parts = append(parts, o)
		}
	default:
		o := part(surface.KindImage, partID(p.ID, "image"))
		o.Src = p.AssetURL
		o.Width, o.Height = a.Width, a.Height
		o.Fill = p.Color
		parts = append(parts, o)
	}

	root := group(p, a.Width, a.Height, parts...)
	root.Src = p.AssetURL
	root.Fill = p.Color
	if f.hand != nil {
		root.OriginX = fmtFloat(p.PivotX)
		root.OriginY = fmtFloat(p.PivotY)
		root.Angle = geometry.HandAngle(*f.hand, f.env.now())
	}
	if f.t == element.TypeIndicators {
		setString(root, "inactiveColor", p.InactiveColor)
	}
	return root, nil
}

func (f *artworkFamily) encode(root *surface.Object, cfg *element.Config) error {
	ids := root.Strings(surface.PropParts)
	if len(ids) == 0 {
		return element.Invariant("codec.encode", root, "artwork has no parts")
	}
	if _, err := requireParts("codec.encode", root, ids...); err != nil {
		return err
	}
	cfg.AssetURL = root.Src
	cfg.Color = root.Fill
	if f.hand != nil {
		cfg.PivotX = element.Float(surface.Anchor(root.OriginX))
		cfg.PivotY = element.Float(surface.Anchor(root.OriginY))
		cfg.OriginX, cfg.OriginY = "", ""
		// The angle follows the clock and is not part of the design.
		cfg.Angle = 0
	}
	if f.t == element.TypeIndicators {
		cfg.InactiveColor = root.String("inactiveColor")
	}
	return nil
}

// refresh turns a hand to the time now.
func (f *artworkFamily) refresh(root *surface.Object, now time.Time) bool {
	if f.hand == nil {
		return false
	}
	angle := geometry.HandAngle(*f.hand, now)
	if root.Angle == angle {
		return false
	}
	root.Angle = angle
	return true
}
