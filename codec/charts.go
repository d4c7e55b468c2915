package codec

import (
	"context"
	"fmt"

	"facestudio/element"
	"facestudio/geometry"
	"facestudio/surface"
)

// chartsFamily draws a column chart of recent samples of a metric.
type chartsFamily struct {
	env *Env
}

// DefaultChartColumns is the number of columns when none is given.
const DefaultChartColumns = 7

func (f *chartsFamily) defaults(p *element.Params) {
	if p.Columns <= 0 {
		p.Columns = DefaultChartColumns
	}
	orDefaultFloat(&p.Width, 120)
	orDefaultFloat(&p.Height, 40)
	orDefault(&p.Color, f.env.Theme.ActiveColor)
}

func chartPartIDs(id string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = partID(id, fmt.Sprintf("bar_%d", i+1))
	}
	return ids
}

func (f *chartsFamily) build(_ context.Context, p element.Params) (*surface.Object, error) {
	ids := chartPartIDs(p.ID, p.Columns)
	segs := geometry.Columns(p.Width, p.Separator, p.Columns)
	parts := make([]*surface.Object, len(segs))
	for i, s := range segs {
		v := 0.0
		if i < len(p.Samples) {
			v = geometry.Clamp01(p.Samples[i])
		}
		h := p.Height * v
		parts[i] = rectPart(ids[i], s.Left, p.Height-h, s.Width, h, p.Color)
	}
	root := group(p, p.Width, p.Height, parts...)
	root.Set("columns", float64(p.Columns))
	root.Set("separator", p.Separator)
	if len(p.Samples) > 0 {
		root.Set("samples", append([]float64(nil), p.Samples...))
	}
	return root, nil
}

func (f *chartsFamily) encode(root *surface.Object, cfg *element.Config) error {
	n := int(root.Float("columns"))
	if n <= 0 {
		return element.Invariant("codec.encode", root, "chart has no columns")
	}
	parts, err := requireParts("codec.encode", root, chartPartIDs(cfg.ID, n)...)
	if err != nil {
		return err
	}
	cfg.Columns = n
	cfg.Width = root.Width
	cfg.Height = root.Height
	cfg.Separator = root.Float("separator")
	cfg.Color = parts[0].Fill
	cfg.Samples = root.Floats("samples")
	return nil
}
