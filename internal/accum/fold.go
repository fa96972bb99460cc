package accum

// Fold reduces a run of contributions to a single pixel — as produced by
// sparse materialization, already ordered by feature index — to one
// finalized value. It is the same per-pixel contract Slab.Burn applies
// incrementally, exposed standalone so the sparse path doesn't need a
// dense slab just to fold one pixel's triplets.
func Fold(r Reducer, values []float64, featureIdx []int32, bg float64) float64 {
	var cur float64
	var touched bool
	var idx int32
	for i, v := range values {
		var fi int32
		if i < len(featureIdx) {
			fi = featureIdx[i]
		}
		cur, touched, idx = update(r, cur, touched, idx, v, fi)
	}
	return finalize(r, cur, touched, bg)
}
