// Package codec implements the per-type element codecs: how each design
// element is built on a surface, updated in place, encoded into its
// configuration record and decoded back into constructor params.
package codec

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"facestudio/asset"
	"facestudio/element"
	"facestudio/errs"
	"facestudio/geometry"
	"facestudio/internal/logx"
	"facestudio/surface"
	"facestudio/typeface"
)

// Holder carries the surface codecs operate on. It is empty until a surface
// is attached.
type Holder struct {
	mu sync.RWMutex
	s  surface.Surface
}

func (h *Holder) Attach(s surface.Surface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.s = s
}

func (h *Holder) Detach() {
	h.Attach(nil)
}

// Surface returns the attached surface or nil.
func (h *Holder) Surface() surface.Surface {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.s
}

// Require returns the attached surface or a not-ready error for op.
func (h *Holder) Require(op string) (surface.Surface, error) {
	if s := h.Surface(); s != nil {
		return s, nil
	}
	return nil, errs.New(op, errs.CodeNotReady, errs.WithMessage("surface not attached"))
}

// AssetSource resolves artwork URLs.
type AssetSource interface {
	Fetch(ctx context.Context, url string) (*asset.Asset, error)
}

// MetricsSource supplies baseline metrics per font family.
type MetricsSource interface {
	Metrics(family string) geometry.FontMetrics
}

// Theme holds the fallback style values codecs apply when params leave them
// unset.
type Theme struct {
	TextColor     string
	FontFamily    string
	FontSize      float64
	Battery       element.Palette
	ActiveColor   string
	InactiveColor string
	Hour24        bool
}

// DefaultTheme is the stock watch-face palette.
func DefaultTheme() Theme {
	return Theme{
		TextColor:  "#ffffff",
		FontFamily: typeface.FamilyGo,
		FontSize:   24,
		Battery: element.Palette{
			Low:    "#ff3b30",
			Medium: "#ffcc00",
			High:   "#34c759",
		},
		ActiveColor:   "#34c759",
		InactiveColor: "#3a3a3c",
		Hour24:        true,
	}
}

// Env is everything the codecs depend on.
type Env struct {
	Surface *Holder
	Layers  *element.Layers
	Assets  AssetSource
	Fonts   MetricsSource
	Theme   Theme
	Now     func() time.Time
	Logger  *slog.Logger
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) logger() *slog.Logger {
	return logx.Or(e.Logger)
}

func (e *Env) metrics(family string) geometry.FontMetrics {
	if e.Fonts == nil {
		return geometry.DefaultMetrics
	}
	if m := e.Fonts.Metrics(family); m.Valid() {
		return m
	}
	return geometry.DefaultMetrics
}

func (e *Env) fetch(ctx context.Context, url string) (*asset.Asset, error) {
	if e.Assets == nil {
		return nil, errs.New("codec.fetch", errs.CodeAsset, errs.WithMessage("no asset source configured"))
	}
	return e.Assets.Fetch(ctx, url)
}
