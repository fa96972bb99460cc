// Package affine models the world-to-pixel mapping used throughout the
// rasterization kernel: a six-parameter affine transform plus the handful
// of helpers the scan converter and rasterizers need in pixel space.
package affine

// Transform is the six-parameter affine map
//
//	x = A + col*B + row*C
//	y = D + col*E + row*F
//
// The canonical axis-aligned form used by this engine has B = xres > 0,
// F = -yres < 0, C = E = 0, A = xmin, D = ymax — i.e. row 0 is the top of
// the raster and column 0 is the left edge, matching GDAL's GeoTransform
// convention. The general six-parameter form is retained because callers
// may hand in a sheared/rotated transform; only axis-aligned transforms are
// exercised by the scan converter's fast paths, but the inverse mapping
// below works for any invertible transform.
type Transform struct {
	A, B, C, D, E, F float64
}

// New builds the canonical axis-aligned transform from an origin, pixel
// size and the usual GDAL sign convention (y resolution is stored positive,
// the transform's F term negates it).
func New(xmin, ymax, xres, yres float64) Transform {
	return Transform{A: xmin, B: xres, C: 0, D: ymax, E: 0, F: -yres}
}

// XRes and YRes return the (positive) pixel resolution for an axis-aligned
// transform. Callers must not rely on these for a sheared transform.
func (t Transform) XRes() float64 { return t.B }
func (t Transform) YRes() float64 { return -t.F }

// det returns the determinant of the 2x2 linear part of the transform.
func (t Transform) det() float64 {
	return t.B*t.F - t.C*t.E
}

// Invertible reports whether the transform's linear part is non-degenerate.
// The orchestrator must reject a degenerate transform before doing any work
// (spec: configuration errors fail fast).
func (t Transform) Invertible() bool {
	d := t.det()
	return d > 1e-12 || d < -1e-12
}

// WorldToPixel maps a world coordinate to floating pixel coordinates
// (row, col). This is the hot-path inverse of the forward transform and is
// called once per vertex during edge/point preparation.
func (t Transform) WorldToPixel(x, y float64) (row, col float64) {
	// Solve:
	//   x - A = col*B + row*C
	//   y - D = col*E + row*F
	dx := x - t.A
	dy := y - t.D
	d := t.det()
	col = (dx*t.F - dy*t.C) / d
	row = (dy*t.B - dx*t.E) / d
	return row, col
}

// PixelCenter returns the world coordinate of the center of pixel
// (row, col). Used only for diagnostic buffer sizing, never inside the scan
// converter's hot loop (per spec).
func (t Transform) PixelCenter(row, col int) (x, y float64) {
	cf := float64(col) + 0.5
	rf := float64(row) + 0.5
	x = t.A + cf*t.B + rf*t.C
	y = t.D + cf*t.E + rf*t.F
	return
}

// HalfPixelBuffer grows a world-space bounding box by half a pixel in each
// axis, the convention used when the caller did not pin an explicit extent
// so that vertices landing exactly on the window border are not dropped.
func (t Transform) HalfPixelBuffer(minX, minY, maxX, maxY float64) (bMinX, bMinY, bMaxX, bMaxY float64) {
	hx := t.XRes() / 2
	hy := t.YRes() / 2
	return minX - hx, minY - hy, maxX + hx, maxY + hy
}
