// Package lineraster rasterizes linestrings and points into pixel streams:
// an integer Bresenham variant for lines (used both for LineString features
// and for all_touched polygon edge burning) and a single-pixel emitter for
// points.
package lineraster

import (
	"math"

	"github.com/vectorraster/rasterize/internal/affine"
	"github.com/vectorraster/rasterize/internal/geomtree"
)

// Burn is invoked once per covered pixel, already clipped to bounds.
type Burn = func(row, col int)

// Chain rasterizes a multi-segment linestring (coords in world space),
// walking it segment by segment and deduplicating consecutive repeats of
// the same pixel within this one call — but not against any other
// primitive the caller may also be burning.
func Chain(t affine.Transform, coords []geomtree.Coord, rows, cols int, burn Burn) {
	if len(coords) == 0 {
		return
	}

	lastRow, lastCol := math.MinInt, math.MinInt
	emit := func(row, col int) {
		if row == lastRow && col == lastCol {
			return
		}
		lastRow, lastCol = row, col
		if row < 0 || row >= rows || col < 0 || col >= cols {
			return
		}
		burn(row, col)
	}

	if len(coords) == 1 {
		r, c := pixelRound(t, coords[0])
		emit(r, c)
		return
	}

	for i := 0; i+1 < len(coords); i++ {
		r0, c0 := pixelRound(t, coords[i])
		r1, c1 := pixelRound(t, coords[i+1])
		segment(r0, c0, r1, c1, emit)
	}
}

// Ring rasterizes a closed ring's edges as a line chain — used by the
// polygon scan converter's all_touched mode to burn every pixel touched by
// an edge in addition to the interior fill.
func Ring(t affine.Transform, coords []geomtree.Coord, rows, cols int, burn Burn) {
	Chain(t, coords, rows, cols, burn)
}

func pixelRound(t affine.Transform, c geomtree.Coord) (row, col int) {
	rf, cf := t.WorldToPixel(c.X, c.Y)
	return int(math.Round(rf)), int(math.Round(cf))
}

// segment rasterizes one (r0,c0)-(r1,c1) pixel-space segment with an
// integer-arithmetic Bresenham/DDA variant stepping along the major axis.
// Both endpoints are inclusive.
func segment(r0, c0, r1, c1 int, emit func(row, col int)) {
	dRow := abs(r1 - r0)
	dCol := abs(c1 - c0)

	if dRow == 0 && dCol == 0 {
		emit(r0, c0)
		return
	}

	if dCol >= dRow {
		// Column is the major axis.
		sc := sign(c1 - c0)
		sr := sign(r1 - r0)
		errAcc := dCol / 2
		row := r0
		col := c0
		for {
			emit(row, col)
			if col == c1 {
				break
			}
			col += sc
			errAcc -= dRow
			if errAcc < 0 {
				row += sr
				errAcc += dCol
			}
		}
	} else {
		// Row is the major axis.
		sr := sign(r1 - r0)
		sc := sign(c1 - c0)
		errAcc := dRow / 2
		row := r0
		col := c0
		for {
			emit(row, col)
			if row == r1 {
				break
			}
			row += sr
			errAcc -= dCol
			if errAcc < 0 {
				col += sc
				errAcc += dRow
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
