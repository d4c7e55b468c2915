package codec

import (
	"strconv"

	"facestudio/element"
	"facestudio/surface"
)

// partID names a composite part after its root element.
func partID(id, suffix string) string {
	return id + "_" + suffix
}

func part(kind surface.Kind, id string) *surface.Object {
	o := &surface.Object{Kind: kind}
	o.Set(surface.PropID, id)
	return o
}

func rectPart(id string, left, top, width, height float64, fill string) *surface.Object {
	o := part(surface.KindRect, id)
	o.Left, o.Top = left, top
	o.Width, o.Height = width, height
	o.Fill = fill
	return o
}

// group builds a composite root placed by p's geometry that records the
// ordered ids of its parts.
func group(p element.Params, width, height float64, parts ...*surface.Object) *surface.Object {
	root := &surface.Object{
		Kind:    surface.KindGroup,
		Left:    p.Left,
		Top:     p.Top,
		OriginX: p.OriginX,
		OriginY: p.OriginY,
		Angle:   p.Angle,
		Width:   width,
		Height:  height,
		Objects: parts,
	}
	ids := make([]string, 0, len(parts))
	for _, c := range parts {
		ids = append(ids, c.ID())
	}
	root.Set(surface.PropParts, ids)
	return root
}

// requireParts resolves every part id recorded on root.
func requireParts(op string, root *surface.Object, ids ...string) ([]*surface.Object, error) {
	out := make([]*surface.Object, 0, len(ids))
	for _, id := range ids {
		p, err := element.RequirePart(op, root, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orDefault(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func orDefaultFloat(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}
