package encode

import (
	"image"
	"image/color"
	"image/draw"
)

// Ramp maps a raster cell value to a display color, including its alpha
// (callers typically return alpha 0 for background cells so the basemap
// shows through untouched).
type Ramp func(v float64) color.RGBA

// Composite draws dense (row-major, rows*cols) over basemap using ramp,
// resampling nearest-neighbor if the raster's shape differs from
// basemap's bounds. basemap may be nil, in which case the raster is drawn
// over a transparent canvas of rows*cols.
func Composite(basemap image.Image, dense []float64, rows, cols int, ramp Ramp) *image.RGBA {
	var out *image.RGBA
	if basemap != nil {
		b := basemap.Bounds()
		out = image.NewRGBA(b)
		draw.Draw(out, b, basemap, b.Min, draw.Src)
	} else {
		out = image.NewRGBA(image.Rect(0, 0, cols, rows))
	}

	bounds := out.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	for py := 0; py < h; py++ {
		row := py * rows / h
		for px := 0; px < w; px++ {
			col := px * cols / w
			v := dense[row*cols+col]
			c := ramp(v)
			if c.A == 0 {
				continue
			}
			out.Set(bounds.Min.X+px, bounds.Min.Y+py, blend(out.RGBAAt(bounds.Min.X+px, bounds.Min.Y+py), c))
		}
	}
	return out
}

// blend alpha-composites src over dst.
func blend(dst, src color.RGBA) color.RGBA {
	if src.A == 255 {
		return src
	}
	a := float64(src.A) / 255
	return color.RGBA{
		R: uint8(float64(src.R)*a + float64(dst.R)*(1-a)),
		G: uint8(float64(src.G)*a + float64(dst.G)*(1-a)),
		B: uint8(float64(src.B)*a + float64(dst.B)*(1-a)),
		A: 255,
	}
}
