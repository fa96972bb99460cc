// Package scanfill implements the polygon scan converter: the
// active-edge-table algorithm that decides, pixel-exactly, which (row, col)
// cells a polygon covers under GDAL-compatible half-open, even-odd rules.
package scanfill

import (
	"math"

	"github.com/vectorraster/rasterize/internal/affine"
	"github.com/vectorraster/rasterize/internal/geomtree"
	"github.com/vectorraster/rasterize/internal/lineraster"
)

// Burn is called once per covered pixel (row, col), both already clipped to
// the raster bounds. The scan converter never inspects Burn's return value;
// it is the aggregator's burn-a-value hook (spec §4.6), invoked here once
// per pixel the geometry covers without any value attached — the caller
// closes over the feature's value and band.
type Burn = func(row, col int)

// Fill rasterizes a polygon (exterior ring + holes, already merged into one
// primitive by geomtree.Flatten) against rows x cols, calling burn for
// every covered pixel. When allTouched is true, every pixel touched by any
// ring edge is also burned via the line rasterizer, in addition to the
// interior fill.
func Fill(t affine.Transform, rings []geomtree.Ring, rows, cols int, allTouched bool, burn Burn) {
	edges := buildEdgeTable(t, rings)
	if len(edges) > 0 {
		fillInterior(edges, rows, cols, burn)
	}

	if allTouched {
		for _, ring := range rings {
			lineraster.Ring(t, ring.Coords, rows, cols, burn)
		}
	}
}

// fillInterior runs the row-by-row active-edge-table sweep described in
// spec §4.3. edges is consumed in place (mutated: x advanced per row);
// callers must not reuse the slice afterward.
func fillInterior(edges []edge, rows, cols int, burn Burn) {
	minY, maxY, ok := rowBounds(edges)
	if !ok {
		return
	}

	// Index edges by their yStart so promotion into the AET is O(1) per row
	// instead of an O(n) scan of all edges every row.
	byStart := make(map[int][]*edge)
	for i := range edges {
		e := &edges[i]
		byStart[e.yStart] = append(byStart[e.yStart], e)
	}

	aet := &activeEdgeTable{}

	for row := minY; row < maxY; row++ {
		// 1. Promote edges whose y_start == row.
		for _, e := range byStart[row] {
			aet.insert(e)
		}

		// 2. Sort AET by current x (stable, insertion-sort cheap already
		// done incrementally by insert/resort).
		aet.resort()

		if row >= 0 && row < rows {
			// 3+4. Walk AET pairwise (even-odd) and burn each span.
			walkSpans(aet.entries, cols, func(c0, c1 int) {
				if c0 < 0 {
					c0 = 0
				}
				if c1 > cols {
					c1 = cols
				}
				for col := c0; col < c1; col++ {
					burn(row, col)
				}
			})
		}

		// 5. Advance every edge's current x by its slope.
		aet.advance()

		// 6. Retire edges whose y_end == row+1.
		aet.retire(row + 1)
	}
}

// walkSpans walks sorted active edges in consecutive pairs (even-odd rule)
// and reports the half-open pixel column range for each span using the
// pixel-center-inside rule: a pixel whose center lies at integer column c
// is filled when x_left - 0.5 <= c < x_right - 0.5, i.e. column range
// [ceil(x_left - 0.5), ceil(x_right - 0.5)).
func walkSpans(entries []*edge, cols int, emit func(c0, c1 int)) {
	for i := 0; i+1 < len(entries); i += 2 {
		xLeft := entries[i].x
		xRight := entries[i+1].x
		if xRight < xLeft {
			xLeft, xRight = xRight, xLeft
		}
		c0 := int(math.Ceil(xLeft - 0.5))
		c1 := int(math.Ceil(xRight - 0.5))
		if c0 < c1 {
			emit(c0, c1)
		}
	}
}
