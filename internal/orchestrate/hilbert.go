package orchestrate

import "sort"

// hilbertBits sets the grid resolution used for locality scoring: 2^16
// cells per axis is far finer than any realistic raster, so quantizing a
// feature's bbox center onto it loses essentially no ordering information.
const hilbertBits = 16

// xyToHilbert converts (x, y) to a Hilbert curve index for an n x n grid.
// n must be a power of two.
func xyToHilbert(x, y, n uint64) uint64 {
	var d uint64
	s := n / 2
	for s > 0 {
		var rx, ry uint64
		if (x & s) > 0 {
			rx = 1
		}
		if (y & s) > 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		// Rotate quadrant.
		if ry == 0 {
			if rx == 1 {
				x = s*2 - 1 - x
				y = s*2 - 1 - y
			}
			x, y = y, x
		}
		s /= 2
	}
	return d
}

// hilbertFeatureOrder returns a permutation of [0, len(centerRow)) sorted by
// the Hilbert index of each feature's bbox center, quantized onto the
// raster's pixel grid. Processing features in this order instead of input
// order keeps a worker's successive burns clustered in the same region of
// the accumulator slab, improving cache behavior; it never changes which
// feature contributes to which pixel, and the feature index carried
// alongside each burn (not this order) is what first/last ordering relies
// on — see the orchestrator's merge step.
func hilbertFeatureOrder(centerRow, centerCol []float64, rows, cols int) []int {
	n := len(centerRow)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if n <= 1 {
		return order
	}

	side := uint64(1) << hilbertBits
	scaleRow := float64(side) / float64(maxInt(rows, 1))
	scaleCol := float64(side) / float64(maxInt(cols, 1))

	indices := make([]uint64, n)
	for i := range indices {
		rq := clampQuantize(centerRow[i]*scaleRow, side)
		cq := clampQuantize(centerCol[i]*scaleCol, side)
		indices[i] = xyToHilbert(cq, rq, side)
	}

	sort.Stable(hilbertSorter{order: order, indices: indices})
	return order
}

func clampQuantize(v float64, side uint64) uint64 {
	if v < 0 {
		return 0
	}
	q := uint64(v)
	if q >= side {
		return side - 1
	}
	return q
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type hilbertSorter struct {
	order   []int
	indices []uint64
}

func (s hilbertSorter) Len() int           { return len(s.order) }
func (s hilbertSorter) Less(i, j int) bool { return s.indices[i] < s.indices[j] }
func (s hilbertSorter) Swap(i, j int) {
	s.order[i], s.order[j] = s.order[j], s.order[i]
	s.indices[i], s.indices[j] = s.indices[j], s.indices[i]
}
