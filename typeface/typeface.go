// Package typeface keeps per-family font metrics and faces.
package typeface

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"facestudio/geometry"
)

// Built-in family names.
const (
	FamilyGo     = "Go"
	FamilyGoBold = "Go Bold"
	FamilyGoMono = "Go Mono"
)

// referenceSize is the point size metrics are sampled at.
const referenceSize = 100

// Registry maps font families to baseline metrics and parsed fonts. It is
// safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]geometry.FontMetrics
	fonts   map[string]*truetype.Font
}

// NewRegistry creates a registry holding the Go font families.
func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]geometry.FontMetrics),
		fonts:   make(map[string]*truetype.Font),
	}
	builtin := map[string][]byte{
		FamilyGo:     goregular.TTF,
		FamilyGoBold: gobold.TTF,
		FamilyGoMono: gomono.TTF,
	}
	for family, ttf := range builtin {
		// The embedded Go fonts always parse.
		_ = r.RegisterTTF(family, ttf)
	}
	return r
}

func key(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// Register sets explicit metrics for family, overriding measured ones.
func (r *Registry) Register(family string, m geometry.FontMetrics) error {
	if !m.Valid() {
		return fmt.Errorf("font %q: invalid metrics %+v", family, m)
	}
	r.mu.Lock()
	r.metrics[key(family)] = m
	r.mu.Unlock()
	return nil
}

// RegisterTTF parses a TrueType font and records its measured metrics.
func (r *Registry) RegisterTTF(family string, ttf []byte) error {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", family, err)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: referenceSize, DPI: 72})
	defer face.Close()
	m := Measure(face, referenceSize)
	if !m.Valid() {
		return fmt.Errorf("font %q: unusable metrics", family)
	}
	r.mu.Lock()
	r.fonts[key(family)] = f
	r.metrics[key(family)] = m
	r.mu.Unlock()
	return nil
}

// Measure derives baseline metrics from a face rendered at size.
func Measure(face font.Face, size float64) geometry.FontMetrics {
	fm := face.Metrics()
	ascent := toFloat(fm.Ascent)
	descent := toFloat(fm.Descent)
	if ascent+descent <= 0 || size <= 0 {
		return geometry.FontMetrics{}
	}
	return geometry.FontMetrics{
		Multiplier: (ascent + descent) / size,
		Fraction:   ascent / (ascent + descent),
	}
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Metrics returns the metrics for family, falling back to geometry.DefaultMetrics.
func (r *Registry) Metrics(family string) geometry.FontMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.metrics[key(family)]; ok {
		return m
	}
	return geometry.DefaultMetrics
}

// Known reports whether family has registered metrics.
func (r *Registry) Known(family string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.metrics[key(family)]
	return ok
}

// Face returns a face for family at size. Unknown families use Go regular.
// The caller must Close the face.
func (r *Registry) Face(family string, size float64) font.Face {
	r.mu.RLock()
	f, ok := r.fonts[key(family)]
	if !ok {
		f = r.fonts[key(FamilyGo)]
	}
	r.mu.RUnlock()
	if size <= 0 {
		size = 12
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
