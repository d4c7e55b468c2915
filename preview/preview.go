// Package preview rasterises a surface into a PNG.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"facestudio/asset"
	"facestudio/geometry"
	"facestudio/internal/logx"
	"facestudio/surface"
)

// FaceSource supplies font faces and their baseline metrics.
type FaceSource interface {
	Face(family string, size float64) font.Face
	Metrics(family string) geometry.FontMetrics
}

// ImageSource returns already fetched raster artwork.
type ImageSource interface {
	Cached(url string) (*asset.Asset, bool)
}

// Options configures a Renderer.
type Options struct {
	Width      int
	Height     int
	Background string
	Faces      FaceSource
	Images     ImageSource
	Logger     *slog.Logger
}

// Renderer draws surface objects with gg.
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

// New creates a renderer.
func New(opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.New("preview size must be positive")
	}
	if opts.Faces == nil {
		return nil, errors.New("preview needs a face source")
	}
	return &Renderer{opts: opts, logger: logx.Or(opts.Logger)}, nil
}

// Render paints objs back to front.
func (r *Renderer) Render(objs []*surface.Object) image.Image {
	return r.context(objs).Image()
}

// EncodePNG writes the rendered objs to w.
func (r *Renderer) EncodePNG(w io.Writer, objs []*surface.Object) error {
	return r.context(objs).EncodePNG(w)
}

// SavePNG writes the rendered objs to path.
func (r *Renderer) SavePNG(path string, objs []*surface.Object) error {
	if err := r.context(objs).SavePNG(path); err != nil {
		return fmt.Errorf("save preview: %w", err)
	}
	return nil
}

func (r *Renderer) context(objs []*surface.Object) *gg.Context {
	dc := gg.NewContext(r.opts.Width, r.opts.Height)
	if c, ok := r.color(r.opts.Background); ok {
		dc.SetColor(c)
	} else {
		dc.SetColor(color.Black)
	}
	dc.Clear()
	for _, o := range objs {
		r.draw(dc, o)
	}
	return dc
}

func (r *Renderer) color(s string) (color.Color, bool) {
	if s == "" || asset.Neutral(s) {
		return nil, false
	}
	c, err := asset.ParseColor(s)
	if err != nil {
		r.logger.Debug("unparseable colour", slog.String("value", s))
		return nil, false
	}
	return c, c.A > 0
}

func (r *Renderer) draw(dc *gg.Context, o *surface.Object) {
	if o.Hidden || o.IsGuideline() {
		return
	}
	dc.Push()
	defer dc.Pop()

	dc.Translate(o.Left, o.Top)
	if o.Angle != 0 {
		dc.Rotate(gg.Radians(o.Angle))
	}
	x0 := -o.Width * surface.Anchor(o.OriginX)
	y0 := -o.Height * surface.Anchor(o.OriginY)

	switch o.Kind {
	case surface.KindGroup:
		dc.Translate(x0, y0)
		for _, child := range o.Objects {
			r.draw(dc, child)
		}
	case surface.KindRect:
		if o.Radius > 0 {
			dc.DrawRoundedRectangle(x0, y0, o.Width, o.Height, o.Radius)
		} else {
			dc.DrawRectangle(x0, y0, o.Width, o.Height)
		}
		r.paint(dc, o)
	case surface.KindCircle:
		r.drawCircle(dc, o, x0, y0)
	case surface.KindPath:
		dc.Translate(x0, y0)
		r.drawPath(dc, o)
	case surface.KindText:
		r.drawText(dc, o, x0, y0)
	case surface.KindImage:
		r.drawImage(dc, o, x0, y0)
	default:
		r.logger.Debug("skipping unknown object kind", slog.String("kind", string(o.Kind)))
	}
}

func (r *Renderer) drawCircle(dc *gg.Context, o *surface.Object, x0, y0 float64) {
	cx, cy := x0+o.Radius, y0+o.Radius
	if o.StartAngle == o.EndAngle {
		dc.DrawCircle(cx, cy, o.Radius)
		r.paint(dc, o)
		return
	}
	dc.NewSubPath()
	dc.DrawArc(cx, cy, o.Radius, gg.Radians(o.StartAngle), gg.Radians(o.EndAngle))
	r.stroke(dc, o)
}

func (r *Renderer) drawPath(dc *gg.Context, o *surface.Object) {
	cmds, err := asset.ParsePathData(o.Path)
	if err != nil {
		r.logger.Debug("skipping bad path data", slog.String("id", o.ID()), slog.Any("error", err))
		return
	}
	for _, c := range cmds {
		switch c.Op {
		case asset.OpMove:
			dc.MoveTo(c.Pts[0].X, c.Pts[0].Y)
		case asset.OpLine:
			dc.LineTo(c.Pts[0].X, c.Pts[0].Y)
		case asset.OpCubic:
			dc.CubicTo(c.Pts[0].X, c.Pts[0].Y, c.Pts[1].X, c.Pts[1].Y, c.Pts[2].X, c.Pts[2].Y)
		case asset.OpQuad:
			dc.QuadraticTo(c.Pts[0].X, c.Pts[0].Y, c.Pts[1].X, c.Pts[1].Y)
		case asset.OpClose:
			dc.ClosePath()
		}
	}
	r.paint(dc, o)
}

func (r *Renderer) drawText(dc *gg.Context, o *surface.Object, x0, y0 float64) {
	c, ok := r.color(o.Fill)
	if !ok || o.Text == "" {
		return
	}
	dc.SetFontFace(r.opts.Faces.Face(o.FontFamily, o.FontSize))
	m := r.opts.Faces.Metrics(o.FontFamily)
	baseline := y0 + m.BoxHeight(o.FontSize)*m.Fraction
	x, ax := x0, 0.0
	switch o.TextAlign {
	case "center":
		x, ax = x0+o.Width/2, 0.5
	case "right":
		x, ax = x0+o.Width, 1
	}
	dc.SetColor(c)
	dc.DrawStringAnchored(o.Text, x, baseline, ax, 0)
}

func (r *Renderer) drawImage(dc *gg.Context, o *surface.Object, x0, y0 float64) {
	if r.opts.Images == nil {
		return
	}
	a, ok := r.opts.Images.Cached(o.Src)
	if !ok || a.Image == nil {
		r.logger.Debug("image not cached", slog.String("src", o.Src))
		return
	}
	var img image.Image = a.Image
	if c, ok := r.color(o.Fill); ok {
		img = asset.Tint(img, c)
	}
	b := img.Bounds()
	dc.Translate(x0, y0)
	if b.Dx() > 0 && b.Dy() > 0 && o.Width > 0 && o.Height > 0 {
		dc.Scale(o.Width/float64(b.Dx()), o.Height/float64(b.Dy()))
	}
	dc.DrawImage(img, 0, 0)
}

// paint fills then strokes the current path.
func (r *Renderer) paint(dc *gg.Context, o *surface.Object) {
	if c, ok := r.color(o.Fill); ok {
		dc.SetColor(c)
		if r.hasStroke(o) {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	r.stroke(dc, o)
}

func (r *Renderer) hasStroke(o *surface.Object) bool {
	_, ok := r.color(o.Stroke)
	return ok && o.StrokeWidth > 0
}

func (r *Renderer) stroke(dc *gg.Context, o *surface.Object) {
	c, ok := r.color(o.Stroke)
	if !ok || o.StrokeWidth <= 0 {
		dc.ClearPath()
		return
	}
	dc.SetColor(c)
	dc.SetLineWidth(o.StrokeWidth)
	switch o.StrokeLineCap {
	case "round":
		dc.SetLineCapRound()
	case "square":
		dc.SetLineCapSquare()
	default:
		dc.SetLineCapButt()
	}
	dc.Stroke()
}
