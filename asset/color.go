package asset

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"lime":    {0, 255, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"orange":  {255, 165, 0, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"silver":  {192, 192, 192, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
}

// ParseColor understands #rgb, #rrggbb, #rrggbbaa, rgb(), rgba(), a few
// names, and the neutral values none/transparent.
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return color.NRGBA{}, fmt.Errorf("empty colour")
	}
	if Neutral(v) {
		return color.NRGBA{}, nil
	}
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(v, "#"); ok {
		return parseHex(hex)
	}
	if strings.HasPrefix(v, "rgb") {
		return parseRGBFunc(v)
	}
	return color.NRGBA{}, fmt.Errorf("unrecognised colour %q", s)
}

func parseHex(hex string) (color.NRGBA, error) {
	if len(hex) == 3 || len(hex) == 4 {
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("bad hex colour #%s", hex)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad hex colour #%s: %w", hex, err)
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

func parseRGBFunc(v string) (color.NRGBA, error) {
	lp, rp := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if lp < 0 || rp < lp {
		return color.NRGBA{}, fmt.Errorf("bad colour %q", v)
	}
	parts := strings.Split(v[lp+1:rp], ",")
	if len(parts) < 3 {
		return color.NRGBA{}, fmt.Errorf("bad colour %q", v)
	}
	var ch [4]uint8
	ch[3] = 255
	for i, p := range parts {
		if i > 3 {
			break
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad colour %q: %w", v, err)
		}
		if i == 3 {
			f *= 255
		}
		ch[i] = uint8(max(0, min(255, f)))
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}
