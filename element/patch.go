package element

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Patch is a partial update keyed by Config JSON names. Fields that are not
// present keep their current value.
type Patch map[string]any

// ParsePatch decodes a JSON object into a patch.
func ParsePatch(data []byte) (Patch, error) {
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	return p, nil
}

// Has reports whether key is present.
func (p Patch) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Float returns a numeric field.
func (p Patch) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// String returns a string field.
func (p Patch) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Bool returns a boolean field.
func (p Patch) Bool(key string) (bool, bool) {
	b, ok := p[key].(bool)
	return b, ok
}

// Floats returns a numeric list field.
func (p Patch) Floats(key string) ([]float64, bool) {
	switch v := p[key].(type) {
	case []float64:
		return append([]float64(nil), v...), true
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}
