package geometry

// Segment is one horizontal slice of a segmented bar, relative to the bar's left edge.
type Segment struct {
	Left   float64
	Width  float64
	Active bool
}

// MoveBarUnits are the relative widths of the five move-bar segments.
var MoveBarUnits = [5]float64{2, 1, 1, 1, 1}

// MoveBarSegments partitions width into the five move-bar segments separated
// by fixed gaps. Segment i (counting from 1) is active when i <= level.
func MoveBarSegments(width, separator, level float64) []Segment {
	var units float64
	for _, u := range MoveBarUnits {
		units += u
	}
	normal := (width - separator*float64(len(MoveBarUnits)-1)) / units
	if normal < 0 {
		normal = 0
	}
	segs := make([]Segment, len(MoveBarUnits))
	left := 0.0
	for i, u := range MoveBarUnits {
		segs[i] = Segment{
			Left:   left,
			Width:  normal * u,
			Active: float64(i+1) <= level,
		}
		left += normal*u + separator
	}
	return segs
}

// Columns splits width into n equal columns separated by fixed gaps.
func Columns(width, separator float64, n int) []Segment {
	if n <= 0 {
		return nil
	}
	w := (width - separator*float64(n-1)) / float64(n)
	if w < 0 {
		w = 0
	}
	segs := make([]Segment, n)
	for i := range segs {
		segs[i] = Segment{Left: float64(i) * (w + separator), Width: w}
	}
	return segs
}

// ProgressWidth is the filled width of a bar of the given width and inner
// padding at progress in [0, 1].
func ProgressWidth(width, padding, progress float64) float64 {
	inner := width - 2*padding
	if inner < 0 {
		inner = 0
	}
	return inner * Clamp01(progress)
}

// Level thresholds for three-colour gauges.
const (
	LowThreshold    = 0.2
	MediumThreshold = 0.5
)

// LevelBand classifies a level in [0, 1].
type LevelBand int

const (
	BandLow LevelBand = iota
	BandMedium
	BandHigh
)

// BandFor returns the band of level: at or below 0.2 is low, at or below
// 0.5 is medium, anything above is high.
func BandFor(level float64) LevelBand {
	switch {
	case level <= LowThreshold:
		return BandLow
	case level <= MediumThreshold:
		return BandMedium
	default:
		return BandHigh
	}
}
