package scanfill

import (
	"math"
	"sort"

	"github.com/vectorraster/rasterize/internal/affine"
	"github.com/vectorraster/rasterize/internal/geomtree"
)

// edge is one non-horizontal polygon edge prepared in pixel space. yStart
// and yEnd are the row indices on which the edge is active: [yStart, yEnd)
// per the half-open convention (spec §4.3).
type edge struct {
	yStart, yEnd int
	x            float64 // current x, advanced one row at a time
	slope        float64 // dx/dy in pixel space
}

// buildEdgeTable transforms every ring of a polygon into pixel space and
// returns the edges that participate in the scanline fill. Horizontal
// edges (after rounding) are skipped: they neither open nor close a span.
// All rings (exterior + holes) are merged into a single table; the
// even-odd rule used by the row walker carves holes out without any
// winding normalization.
func buildEdgeTable(t affine.Transform, rings []geomtree.Ring) []edge {
	var edges []edge

	for _, ring := range rings {
		coords := ring.Coords
		for i := 0; i+1 < len(coords); i++ {
			p0, p1 := coords[i], coords[i+1]
			r0, c0 := t.WorldToPixel(p0.X, p0.Y)
			r1, c1 := t.WorldToPixel(p1.X, p1.Y)

			// Orient so we always walk top (smaller row) to bottom.
			if r0 > r1 {
				r0, r1 = r1, r0
				c0, c1 = c1, c0
			}

			yStart := int(math.Floor(r0 + 0.5))
			yEnd := int(math.Floor(r1 + 0.5))
			if yStart == yEnd {
				// Horizontal edge in pixel space: does not contribute.
				continue
			}

			dy := r1 - r0
			slope := (c1 - c0) / dy

			// x at y_start + 0.5 (the first scanline center this edge
			// intersects), walked forward from the (already rounded)
			// start row using the original sub-pixel r0 so FP ties at
			// row+0.5 are resolved consistently with yStart/yEnd above.
			xAtStart := c0 + (float64(yStart)+0.5-r0)*slope

			edges = append(edges, edge{
				yStart: yStart,
				yEnd:   yEnd,
				x:      xAtStart,
				slope:  slope,
			})
		}
	}

	return edges
}

// rowBounds returns the inclusive-exclusive row range [minY, maxY) spanned
// by the edge table, or ok=false if there are no edges (degenerate/empty
// polygon — e.g. a ring collapsed entirely onto one scanline).
func rowBounds(edges []edge) (minY, maxY int, ok bool) {
	if len(edges) == 0 {
		return 0, 0, false
	}
	minY, maxY = edges[0].yStart, edges[0].yEnd
	for _, e := range edges[1:] {
		if e.yStart < minY {
			minY = e.yStart
		}
		if e.yEnd > maxY {
			maxY = e.yEnd
		}
	}
	return minY, maxY, true
}

// activeEdgeTable holds the edges currently intersecting the scanline being
// processed, kept sorted by current x. Reused across rows by the caller to
// avoid reallocating per scanline.
type activeEdgeTable struct {
	entries []*edge
}

// insert adds an edge to the table and restores sorted order via insertion
// sort — per spec, with small AET sizes insertion sort is optimal.
func (a *activeEdgeTable) insert(e *edge) {
	a.entries = append(a.entries, e)
	i := len(a.entries) - 1
	for i > 0 && a.entries[i-1].x > a.entries[i].x {
		a.entries[i-1], a.entries[i] = a.entries[i], a.entries[i-1]
		i--
	}
}

// resort re-establishes sorted-by-x order after advancing every edge's x by
// its slope. Edges rarely cross within a single row step relative to their
// neighbors; sort.Stable keeps equal-x edges in their current order, and for
// tables of up to 20 edges it runs as a plain insertion sort.
func (a *activeEdgeTable) resort() {
	sort.Stable(byX(a.entries))
}

// retire removes edges whose yEnd == row (i.e. inactive starting at row),
// per the half-open tie-break: "the edge whose y_end equals the current
// line becomes inactive BEFORE rendering that line".
func (a *activeEdgeTable) retire(row int) {
	kept := a.entries[:0]
	for _, e := range a.entries {
		if e.yEnd != row {
			kept = append(kept, e)
		}
	}
	a.entries = kept
}

func (a *activeEdgeTable) advance() {
	for _, e := range a.entries {
		e.x += e.slope
	}
}

type byX []*edge

func (b byX) Len() int           { return len(b) }
func (b byX) Less(i, j int) bool { return b[i].x < b[j].x }
func (b byX) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }
