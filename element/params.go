package element

import "strings"

// Geometry positions an element.
type Geometry struct {
	Left    float64
	Top     float64
	OriginX string
	OriginY string
	Width   float64
	Height  float64
	Angle   float64
}

// Style holds the paint and font attributes of an element.
type Style struct {
	Color       string
	BgColor     string
	Stroke      string
	FontFamily  string
	FontSize    float64
	TextAlign   string
	StrokeWidth float64
}

// Binding associates an element with a device metric. Empty fields are unset.
type Binding struct {
	DataProperty string
	GoalProperty string
	MetricSymbol string
}

// Count returns how many binding fields are set.
func (b Binding) Count() int {
	n := 0
	for _, v := range []string{b.DataProperty, b.GoalProperty, b.MetricSymbol} {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// Palette is the low/medium/high colour triple of a level gauge.
type Palette struct {
	Low    string
	Medium string
	High   string
}

// Params is the constructor shape an adder consumes. Decoders produce it
// from a Config with legacy names normalised and defaults applied.
type Params struct {
	ID   string
	Type EleType

	Geometry
	Style
	Binding

	Text   string
	Format string

	Progress         float64
	Level            float64
	Padding          float64
	Separator        float64
	Radius           float64
	StartAngle       float64
	EndAngle         float64
	CounterClockwise bool

	Palette       Palette
	ActiveColor   string
	InactiveColor string

	AssetURL string
	PivotX   float64
	PivotY   float64

	Shape   string
	Columns int
	Samples []float64
}
