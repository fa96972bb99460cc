// Package sparse implements the coordinate-list (COO) accumulation path:
// unordered (band, row, col, value) triplets appended during rasterization,
// with the reducer applied only at materialization time.
package sparse

import (
	"sort"

	"github.com/vectorraster/rasterize/internal/accum"
	"github.com/vectorraster/rasterize/internal/dtype"
)

// Triplet is one feature's contribution to one pixel of one band.
type Triplet struct {
	Band       int
	Row        int
	Col        int
	Value      float64
	FeatureIdx int32
}

// Array accumulates triplets from one or more workers. Unlike a dense
// Slab, an Array needs no allocation proportional to rows*cols — memory is
// O(total burned pixels), which is the point of this path (spec's
// sparse-accumulation design note).
type Array struct {
	Bands, Rows, Cols int
	Triplets          []Triplet
}

// New allocates an empty sparse array for the given output shape.
func New(bands, rows, cols int) *Array {
	return &Array{Bands: bands, Rows: rows, Cols: cols}
}

// Append records one contribution. Safe to call only from a single
// goroutine's private Array; merge multiple workers' arrays with Merge.
func (a *Array) Append(band, row, col int, v float64, featureIdx int32) {
	a.Triplets = append(a.Triplets, Triplet{Band: band, Row: row, Col: col, Value: v, FeatureIdx: featureIdx})
}

// Merge appends other's triplets onto a. The combined array is still
// unordered until ToDense or ToFrame is called.
func (a *Array) Merge(other *Array) {
	a.Triplets = append(a.Triplets, other.Triplets...)
}

// ToFrame returns the triplets as-is, with no reduction applied — the
// caller (e.g. an external georeferencing/dataframe layer) owns any further
// aggregation.
func (a *Array) ToFrame() []Triplet {
	return a.Triplets
}

// ToDense materializes a, reducer, and dt into a flat bands*rows*cols
// buffer in row-major order per band. Pixels reported as background are
// populated with bg (already dtype-resolved by the caller); every other
// pixel is passed through dt's saturating cast, matching the dense
// Slab.Finalize path pixel for pixel (spec's sparse/dense equivalence
// property).
func (a *Array) ToDense(reducer accum.Reducer, dt dtype.DType, bg float64) []float64 {
	n := a.Bands * a.Rows * a.Cols
	out := make([]float64, n)
	// An untouched pixel reports what Fold gives for no contributions: bg,
	// except for count, which reports zero.
	bgOut := dt.Saturate(accum.Fold(reducer, nil, nil, bg))
	for i := range out {
		out[i] = bgOut
	}
	if len(a.Triplets) == 0 {
		return out
	}

	ordered := make([]Triplet, len(a.Triplets))
	copy(ordered, a.Triplets)

	// Stable sort by feature index first so that, within any run sharing a
	// (band,row,col) key, triplets end up in feature-submission order —
	// required for first/last to agree with a single-threaded reference.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FeatureIdx < ordered[j].FeatureIdx
	})
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, tj := ordered[i], ordered[j]
		if ti.Band != tj.Band {
			return ti.Band < tj.Band
		}
		if ti.Row != tj.Row {
			return ti.Row < tj.Row
		}
		return ti.Col < tj.Col
	})

	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && sameCell(ordered[start], ordered[end]) {
			end++
		}
		run := ordered[start:end]
		values := make([]float64, len(run))
		featIdx := make([]int32, len(run))
		for i, t := range run {
			values[i] = t.Value
			featIdx[i] = t.FeatureIdx
		}
		idx := run[0].Band*a.Rows*a.Cols + run[0].Row*a.Cols + run[0].Col
		out[idx] = dt.Saturate(accum.Fold(reducer, values, featIdx, bg))
		start = end
	}
	return out
}

func sameCell(a, b Triplet) bool {
	return a.Band == b.Band && a.Row == b.Row && a.Col == b.Col
}
