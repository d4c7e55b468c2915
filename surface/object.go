package surface

import (
	"strconv"
	"strings"
)

// Kind names the primitive a scene object draws.
type Kind string

const (
	KindText   Kind = "textbox"
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindPath   Kind = "path"
	KindImage  Kind = "image"
	KindGroup  Kind = "group"
)

// Custom property keys every element part carries.
const (
	PropID          = "id"
	PropEleType     = "eleType"
	PropParts       = "parts"
	PropIsGuideline = "isGuideline"
)

// Object is one drawable node of the scene graph. Standard fields are always
// serialized; entries of Props survive ToJSON only when allow-listed.
type Object struct {
	Kind    Kind
	Left    float64
	Top     float64
	Width   float64
	Height  float64
	OriginX string
	OriginY string
	Angle   float64
	Hidden  bool

	Fill          string
	Stroke        string
	StrokeWidth   float64
	StrokeLineCap string

	Text       string
	FontFamily string
	FontSize   float64
	FontWeight string
	TextAlign  string

	// Arc sweep for circles, in degrees. A full circle has StartAngle == EndAngle == 0.
	Radius           float64
	StartAngle       float64
	EndAngle         float64
	Counterclockwise bool

	Path string
	Src  string

	Objects []*Object
	Props   map[string]any
}

// ID returns the element or part id.
func (o *Object) ID() string {
	return o.String(PropID)
}

// EleType returns the element type tag.
func (o *Object) EleType() string {
	return o.String(PropEleType)
}

// IsGuideline reports whether the object is an editor guide rather than a design element.
func (o *Object) IsGuideline() bool {
	return o.Bool(PropIsGuideline)
}

// Set stores a custom property.
func (o *Object) Set(key string, value any) {
	if o.Props == nil {
		o.Props = make(map[string]any)
	}
	o.Props[key] = value
}

// Delete removes a custom property.
func (o *Object) Delete(key string) {
	delete(o.Props, key)
}

// Get returns a custom property.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.Props[key]
	return v, ok
}

// Has reports whether a custom property is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Props[key]
	return ok
}

// String returns a custom property as a string, or "".
func (o *Object) String(key string) string {
	s, _ := o.Props[key].(string)
	return s
}

// Float returns a custom property as a float64, or 0.
func (o *Object) Float(key string) float64 {
	switch v := o.Props[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	default:
		return 0
	}
}

// Bool returns a custom property as a bool, or false.
func (o *Object) Bool(key string) bool {
	b, _ := o.Props[key].(bool)
	return b
}

// Strings returns a custom property holding a list of strings. Lists read
// back from JSON arrive as []any and are converted.
func (o *Object) Strings(key string) []string {
	switch v := o.Props[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Floats returns a custom property holding a list of numbers.
func (o *Object) Floats(key string) []float64 {
	switch v := o.Props[key].(type) {
	case []float64:
		return append([]float64(nil), v...)
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			if f, ok := item.(float64); ok {
				out = append(out, f)
			}
		}
		return out
	default:
		return nil
	}
}

// Part returns the descendant whose id equals id, or nil.
func (o *Object) Part(id string) *Object {
	for _, child := range o.Objects {
		if child.ID() == id {
			return child
		}
		if found := child.Part(id); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits o and every descendant depth-first.
func (o *Object) Walk(fn func(*Object)) {
	fn(o)
	for _, child := range o.Objects {
		child.Walk(fn)
	}
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := *o
	if o.Props != nil {
		c.Props = make(map[string]any, len(o.Props))
		for k, v := range o.Props {
			c.Props[k] = cloneValue(v)
		}
	}
	if o.Objects != nil {
		c.Objects = make([]*Object, len(o.Objects))
		for i, child := range o.Objects {
			c.Objects[i] = child.Clone()
		}
	}
	return &c
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []float64:
		return append([]float64(nil), t...)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Anchor converts an origin keyword ("left", "center", "right", "top",
// "bottom") or a numeric fraction into a fraction of the object's extent.
func Anchor(origin string) float64 {
	switch strings.ToLower(strings.TrimSpace(origin)) {
	case "", "left", "top":
		return 0
	case "center":
		return 0.5
	case "right", "bottom":
		return 1
	}
	f, err := strconv.ParseFloat(origin, 64)
	if err != nil {
		return 0
	}
	return f
}

// FindByID searches objs and their descendants for id.
func FindByID(objs []*Object, id string) *Object {
	if id == "" {
		return nil
	}
	for _, o := range objs {
		if o.ID() == id {
			return o
		}
		if found := o.Part(id); found != nil {
			return found
		}
	}
	return nil
}
