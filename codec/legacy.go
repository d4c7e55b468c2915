package codec

import (
	"strings"

	"facestudio/element"
)

// Older editors wrote some fields under other names. Decoders map them to
// the current names; nothing downstream sees the legacy spelling.
var (
	legacyColor    = []string{"fill", "textColor"}
	legacyData     = []string{"dataBinding", "metric"}
	legacyGoal     = []string{"goalBinding"}
	legacySymbol   = []string{"symbol"}
	legacyAssetURL = []string{"url", "src", "svgUrl", "imageUrl"}
	legacyFontSize = []string{"size"}
)

func normalizeLegacy(cfg element.Config) element.Config {
	if len(cfg.Extra) == 0 {
		return cfg
	}
	pickString(&cfg.Color, cfg.Extra, legacyColor)
	pickString(&cfg.DataProperty, cfg.Extra, legacyData)
	pickString(&cfg.GoalProperty, cfg.Extra, legacyGoal)
	pickString(&cfg.MetricSymbol, cfg.Extra, legacySymbol)
	pickString(&cfg.AssetURL, cfg.Extra, legacyAssetURL)
	if cfg.FontSize == 0 {
		for _, k := range legacyFontSize {
			if f, ok := cfg.Extra[k].(float64); ok {
				cfg.FontSize = f
				break
			}
		}
	}
	if dir, ok := cfg.Extra["direction"].(string); ok && !cfg.CounterClockwise {
		switch strings.ToLower(dir) {
		case "ccw", "counterclockwise", "anticlockwise":
			cfg.CounterClockwise = true
		}
	}
	if colors, ok := cfg.Extra["colors"].([]any); ok && len(colors) == 3 {
		pickIndexed(&cfg.LowColor, colors[0])
		pickIndexed(&cfg.MediumColor, colors[1])
		pickIndexed(&cfg.HighColor, colors[2])
	}
	return cfg
}

func pickString(dst *string, extra map[string]any, keys []string) {
	if *dst != "" {
		return
	}
	for _, k := range keys {
		if s, ok := extra[k].(string); ok && s != "" {
			*dst = s
			return
		}
	}
}

func pickIndexed(dst *string, v any) {
	if s, ok := v.(string); ok && *dst == "" {
		*dst = s
	}
}
