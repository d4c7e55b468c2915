package asset

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DecodeRaster decodes a PNG, JPEG, GIF, BMP or WebP image.
func DecodeRaster(rawURL string, data []byte) (*Asset, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode raster: %w", err)
	}
	b := img.Bounds()
	return &Asset{
		URL:    rawURL,
		Format: FormatRaster,
		Width:  float64(b.Dx()),
		Height: float64(b.Dy()),
		Image:  img,
	}, nil
}

// Tint returns a copy of img where every visible pixel takes c, keeping the
// pixel's own alpha. Fully transparent cut-outs stay transparent.
func Tint(img image.Image, c color.Color) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	tc := color.NRGBAModel.Convert(c).(color.NRGBA)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := out.NRGBAAt(x, y)
			if px.A == 0 {
				continue
			}
			out.SetNRGBA(x, y, color.NRGBA{R: tc.R, G: tc.G, B: tc.B, A: px.A})
		}
	}
	return out
}
