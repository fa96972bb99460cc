package lineraster

import (
	"math"

	"github.com/vectorraster/rasterize/internal/affine"
)

// Point emits the single pixel a world-space point falls into, if that
// pixel lies inside the raster window. all_touched has no effect on
// points (spec §4.5).
func Point(t affine.Transform, x, y float64, rows, cols int, burn Burn) {
	rf, cf := t.WorldToPixel(x, y)
	row := int(math.Floor(rf))
	col := int(math.Floor(cf))
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return
	}
	burn(row, col)
}
