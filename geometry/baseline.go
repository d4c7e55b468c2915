// Package geometry holds the pure layout functions shared by element codecs.
package geometry

import "facestudio/surface"

// FontMetrics describes where a face puts its baseline inside the text box a
// surface lays out for it.
type FontMetrics struct {
	// Multiplier is the text box height divided by the font size.
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
	// Fraction is the baseline's distance from the box top divided by the box height.
	Fraction float64 `yaml:"fraction" json:"fraction"`
}

// DefaultMetrics matches a surface laying text out at 1.16 line height with
// the baseline at roughly four fifths of the box.
var DefaultMetrics = FontMetrics{Multiplier: 1.16, Fraction: 0.8}

// Valid reports whether both values are usable.
func (m FontMetrics) Valid() bool {
	return m.Multiplier > 0 && m.Fraction > 0 && m.Fraction <= 1
}

// BoxHeight is the laid-out text box height for fontSize.
func (m FontMetrics) BoxHeight(fontSize float64) float64 {
	return fontSize * m.Multiplier
}

// TopFromBaseline returns the object top that puts the text baseline at the
// given pixel row, for an object anchored vertically at originY.
func TopFromBaseline(baseline, fontSize float64, m FontMetrics, originY string) float64 {
	h := m.BoxHeight(fontSize)
	return baseline - h*m.Fraction + h*surface.Anchor(originY)
}

// BaselineFromTop inverts TopFromBaseline.
func BaselineFromTop(top, fontSize float64, m FontMetrics, originY string) float64 {
	h := m.BoxHeight(fontSize)
	return top + h*m.Fraction - h*surface.Anchor(originY)
}
