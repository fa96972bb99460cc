package encode

import "image/color"

// GrayscaleRamp maps [lo,hi] linearly onto a gray band drawn at alpha 200
// (partly see-through, so Composite blends it over the basemap) and treats
// bg as transparent so the basemap shows through untouched cells.
func GrayscaleRamp(lo, hi, bg float64) Ramp {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return func(v float64) color.RGBA {
		if v == bg {
			return color.RGBA{}
		}
		t := (v - lo) / span
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		g := uint8(t * 255)
		return color.RGBA{R: g, G: g, B: g, A: 200}
	}
}
