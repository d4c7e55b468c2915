package surface

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// TreeVersion tags serialized scene trees.
const TreeVersion = "facestudio-scene/1"

var standardKeys = map[string]struct{}{
	"type": {}, "left": {}, "top": {}, "width": {}, "height": {},
	"originX": {}, "originY": {}, "angle": {}, "visible": {},
	"fill": {}, "stroke": {}, "strokeWidth": {}, "strokeLineCap": {},
	"text": {}, "fontFamily": {}, "fontSize": {}, "fontWeight": {}, "textAlign": {},
	"radius": {}, "startAngle": {}, "endAngle": {}, "counterClockwise": {},
	"path": {}, "src": {}, "objects": {},
}

type tree struct {
	Version    string           `json:"version"`
	Background string           `json:"background,omitempty"`
	Objects    []map[string]any `json:"objects"`
}

// MarshalObjects serializes objects the same way ToJSON does, keeping only
// the allow-listed custom properties.
func MarshalObjects(objs []*Object, allow []string) ([]byte, error) {
	set := make(map[string]struct{}, len(allow))
	for _, a := range allow {
		set[a] = struct{}{}
	}
	return marshalTree("", objs, set)
}

func marshalTree(background string, objs []*Object, allow map[string]struct{}) ([]byte, error) {
	t := tree{
		Version:    TreeVersion,
		Background: background,
		Objects:    make([]map[string]any, 0, len(objs)),
	}
	for _, o := range objs {
		t.Objects = append(t.Objects, objectToMap(o, allow))
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

func objectToMap(o *Object, allow map[string]struct{}) map[string]any {
	m := map[string]any{
		"type": string(o.Kind),
		"left": o.Left,
		"top":  o.Top,
	}
	putFloat(m, "width", o.Width)
	putFloat(m, "height", o.Height)
	putString(m, "originX", o.OriginX)
	putString(m, "originY", o.OriginY)
	putFloat(m, "angle", o.Angle)
	if o.Hidden {
		m["visible"] = false
	}
	putString(m, "fill", o.Fill)
	putString(m, "stroke", o.Stroke)
	putFloat(m, "strokeWidth", o.StrokeWidth)
	putString(m, "strokeLineCap", o.StrokeLineCap)
	putString(m, "text", o.Text)
	putString(m, "fontFamily", o.FontFamily)
	putFloat(m, "fontSize", o.FontSize)
	putString(m, "fontWeight", o.FontWeight)
	putString(m, "textAlign", o.TextAlign)
	putFloat(m, "radius", o.Radius)
	putFloat(m, "startAngle", o.StartAngle)
	putFloat(m, "endAngle", o.EndAngle)
	if o.Counterclockwise {
		m["counterClockwise"] = true
	}
	putString(m, "path", o.Path)
	putString(m, "src", o.Src)
	if len(o.Objects) > 0 {
		children := make([]map[string]any, 0, len(o.Objects))
		for _, c := range o.Objects {
			children = append(children, objectToMap(c, allow))
		}
		m["objects"] = children
	}
	for k, v := range o.Props {
		if _, std := standardKeys[k]; std {
			continue
		}
		if _, ok := allow[k]; ok {
			m[k] = v
		}
	}
	return m
}

func putFloat(m map[string]any, key string, v float64) {
	if v != 0 {
		m[key] = v
	}
}

func putString(m map[string]any, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func unmarshalTree(data []byte) (string, []*Object, error) {
	var raw struct {
		Version    string           `json:"version"`
		Background string           `json:"background"`
		Objects    []map[string]any `json:"objects"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", nil, err
	}
	if raw.Version != "" && raw.Version != TreeVersion {
		return "", nil, fmt.Errorf("unsupported scene tree version %q", raw.Version)
	}
	objs := make([]*Object, 0, len(raw.Objects))
	for i, m := range raw.Objects {
		o, err := objectFromMap(m)
		if err != nil {
			return "", nil, fmt.Errorf("object %d: %w", i, err)
		}
		objs = append(objs, o)
	}
	return raw.Background, objs, nil
}

func objectFromMap(m map[string]any) (*Object, error) {
	kind, _ := m["type"].(string)
	if kind == "" {
		return nil, errors.New("missing type")
	}
	o := &Object{
		Kind:             Kind(kind),
		Left:             num(m["left"]),
		Top:              num(m["top"]),
		Width:            num(m["width"]),
		Height:           num(m["height"]),
		OriginX:          str(m["originX"]),
		OriginY:          str(m["originY"]),
		Angle:            num(m["angle"]),
		Fill:             str(m["fill"]),
		Stroke:           str(m["stroke"]),
		StrokeWidth:      num(m["strokeWidth"]),
		StrokeLineCap:    str(m["strokeLineCap"]),
		Text:             str(m["text"]),
		FontFamily:       str(m["fontFamily"]),
		FontSize:         num(m["fontSize"]),
		FontWeight:       str(m["fontWeight"]),
		TextAlign:        str(m["textAlign"]),
		Radius:           num(m["radius"]),
		StartAngle:       num(m["startAngle"]),
		EndAngle:         num(m["endAngle"]),
		Path:             str(m["path"]),
		Src:              str(m["src"]),
		Counterclockwise: m["counterClockwise"] == true,
		Hidden:           m["visible"] == false,
	}
	if children, ok := m["objects"].([]any); ok {
		for i, c := range children {
			cm, ok := c.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("child %d: not an object", i)
			}
			child, err := objectFromMap(cm)
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			o.Objects = append(o.Objects, child)
		}
	}
	for k, v := range m {
		if _, std := standardKeys[k]; std {
			continue
		}
		o.Set(k, v)
	}
	return o, nil
}

func num(v any) float64 {
	f, _ := v.(float64)
	return f
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
