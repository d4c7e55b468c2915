// Package asset loads the vector and raster graphics that hand, tick and
// indicator elements are built from.
package asset

import (
	"image"
	"strings"
)

// Format distinguishes vector from raster assets.
type Format int

const (
	FormatSVG Format = iota
	FormatRaster
)

func (f Format) String() string {
	if f == FormatSVG {
		return "svg"
	}
	return "raster"
}

// RoleBackground marks a sub-path that must keep its own fill when the asset is recolored.
const RoleBackground = "background"

// Path is one filled or stroked sub-path of a vector asset, in asset coordinates.
type Path struct {
	D           string
	Fill        string
	Stroke      string
	StrokeWidth float64
	Role        string
}

// Asset is a decoded graphic.
type Asset struct {
	URL    string
	Format Format
	Width  float64
	Height float64
	Paths  []Path
	Image  image.Image
}

// ClonePaths returns a copy of the vector paths that can be recolored freely.
func (a *Asset) ClonePaths() []Path {
	return append([]Path(nil), a.Paths...)
}

// Neutral reports whether a fill value leaves the area unpainted.
func Neutral(fill string) bool {
	switch strings.ToLower(strings.TrimSpace(fill)) {
	case "none", "transparent":
		return true
	}
	return false
}

// Recolorable reports whether Recolor repaints p.
func (p Path) Recolorable() bool {
	return !Neutral(p.Fill) && p.Role != RoleBackground
}

// Recolor repaints every path that is not neutral or marked as background.
// Strokes on repainted paths follow the new colour unless they are neutral.
func Recolor(paths []Path, color string) []Path {
	out := make([]Path, len(paths))
	for i, p := range paths {
		if p.Recolorable() {
			p.Fill = color
			if p.Stroke != "" && !Neutral(p.Stroke) {
				p.Stroke = color
			}
		}
		out[i] = p
	}
	return out
}
