// Package orchestrate drives the parallel rasterization pass: it partitions
// features across a worker pool, feeds each through geometry flattening and
// the appropriate primitive rasterizer, accumulates contributions into
// per-worker slabs (dense) or per-worker triplet buffers (sparse), and
// merges the results deterministically.
package orchestrate

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/vectorraster/rasterize/internal/accum"
	"github.com/vectorraster/rasterize/internal/affine"
	"github.com/vectorraster/rasterize/internal/dtype"
	"github.com/vectorraster/rasterize/internal/geomtree"
	"github.com/vectorraster/rasterize/internal/lineraster"
	"github.com/vectorraster/rasterize/internal/scanfill"
	"github.com/vectorraster/rasterize/internal/sparse"
)

// Feature is one input geometry/value pair, addressed by its position in
// the caller's original slice — that position is the "feature index"
// first/last ordering is defined in terms of. GroupKey, if non-nil, places
// the feature's contribution in the band assigned to that key; nil groups
// with every other ungrouped feature into a single shared band.
type Feature struct {
	Geometry geomtree.Geometry
	Value    float64
	GroupKey *string
}

// Config parameterizes one rasterization run. The output band count and
// per-feature band assignment are never caller-supplied: Run derives both
// from the distinct set of GroupKey values across features, in first-
// appearance order.
type Config struct {
	Transform  affine.Transform
	Rows, Cols int

	Reducer    accum.Reducer
	DType      dtype.DType
	Background float64
	AllTouched bool
	Strict     bool

	Workers int
	Verbose bool

	// Sparse forces the accumulation path when non-nil; nil lets the
	// orchestrator auto-select via ShouldUseDense.
	Sparse *bool
}

// Report summarizes non-fatal problems encountered while processing
// features, merged across all workers.
type Report struct {
	SkippedFeatures          int
	UnsupportedGeometryCount int
	MalformedRingCount       int
}

// Result holds the rasterized output: exactly one of Dense or Sparse is
// populated, per UsedSparse. Bands is the band count Run derived from the
// features' group keys.
type Result struct {
	UsedSparse bool
	Bands      int
	Dense      []float64 // bands*rows*cols, row-major per band
	Sparse     *sparse.Array
	Report     Report
}

// deriveBands assigns each feature to an output band by its GroupKey,
// returning the band count and a per-feature-index band slice. Distinct
// keys are numbered in first-appearance order (spec's RasterShape rule); a
// nil GroupKey is treated as the empty-string key, so every ungrouped
// feature shares one band (band 0 when an ungrouped feature comes first).
func deriveBands(features []Feature) (bands int, bandOf []int) {
	bandOf = make([]int, len(features))
	seen := make(map[string]int)
	for i, f := range features {
		key := ""
		if f.GroupKey != nil {
			key = *f.GroupKey
		}
		b, ok := seen[key]
		if !ok {
			b = len(seen)
			seen[key] = b
		}
		bandOf[i] = b
	}
	bands = len(seen)
	if bands == 0 {
		bands = 1
	}
	return bands, bandOf
}

// Run rasterizes features into the shape described by cfg. It fails fast
// (before spawning any worker) on configuration errors: non-positive
// dimensions or a non-invertible transform.
func Run(features []Feature, cfg Config) (Result, error) {
	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		return Result{}, fmt.Errorf("orchestrate: invalid shape %d x %d", cfg.Rows, cfg.Cols)
	}
	if !cfg.Transform.Invertible() {
		return Result{}, fmt.Errorf("orchestrate: degenerate (non-invertible) transform")
	}

	bands, bandOf := deriveBands(features)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(features) {
		workers = len(features)
	}
	if workers < 1 {
		workers = 1
	}

	useSparse := false
	if cfg.Sparse != nil {
		useSparse = *cfg.Sparse
	} else {
		useSparse = !ShouldUseDense(bands, cfg.Rows, cfg.Cols, workers, cfg.Reducer.OrderSensitive(), -1, cfg.Verbose)
	}

	order := hilbertOrderFor(features, cfg)

	type workerState struct {
		slabs     []*accum.Slab // len == bands, dense path only
		sparseArr *sparse.Array // sparse path only
		report    Report
	}

	states := make([]workerState, workers)
	for w := range states {
		if useSparse {
			states[w].sparseArr = sparse.New(bands, cfg.Rows, cfg.Cols)
		} else {
			states[w].slabs = make([]*accum.Slab, bands)
			for b := range states[w].slabs {
				states[w].slabs[b] = accum.NewSlab(cfg.Reducer, cfg.Rows, cfg.Cols)
			}
		}
	}

	indexCh := make(chan int, workers*2)
	errCh := make(chan error, workers)
	pb := newProgressBar("rasterize", int64(len(features)))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			st := &states[w]
			for fi := range indexCh {
				burnFailed := processFeature(fi, features[fi], cfg, bandOf[fi], st.slabs, st.sparseArr, &st.report)
				if burnFailed != nil {
					if cfg.Strict {
						select {
						case errCh <- burnFailed:
						default:
						}
						return
					}
				}
				pb.Increment()
			}
		}(w)
	}

	go func() {
		for _, fi := range order {
			indexCh <- fi
		}
		close(indexCh)
	}()

	wg.Wait()
	pb.Finish()

	select {
	case err := <-errCh:
		return Result{}, err
	default:
	}

	report := Report{}
	for _, st := range states {
		report.SkippedFeatures += st.report.SkippedFeatures
		report.UnsupportedGeometryCount += st.report.UnsupportedGeometryCount
		report.MalformedRingCount += st.report.MalformedRingCount
	}

	if useSparse {
		merged := sparse.New(bands, cfg.Rows, cfg.Cols)
		for _, st := range states {
			merged.Merge(st.sparseArr)
		}
		return Result{UsedSparse: true, Bands: bands, Sparse: merged, Report: report}, nil
	}

	finalSlabs := make([]*accum.Slab, bands)
	for b := 0; b < bands; b++ {
		finalSlabs[b] = states[0].slabs[b]
		for w := 1; w < workers; w++ {
			finalSlabs[b].Merge(states[w].slabs[b])
		}
	}

	bg := cfg.DType.ResolveBackground(cfg.Background)
	dense := make([]float64, bands*cfg.Rows*cfg.Cols)
	for b, slab := range finalSlabs {
		bandOut := dense[b*cfg.Rows*cfg.Cols : (b+1)*cfg.Rows*cfg.Cols]
		slab.Finalize(bg, bandOut)
		for i, v := range bandOut {
			bandOut[i] = cfg.DType.Saturate(v)
		}
	}

	return Result{UsedSparse: false, Bands: bands, Dense: dense, Report: report}, nil
}

// processFeature flattens and rasterizes one feature into either the
// worker's dense slabs or its sparse array, updating report on recoverable
// geometry errors. A non-nil return means the error was fatal and Strict
// requires the caller to abort. band is the output band deriveBands
// assigned to this feature.
func processFeature(fi int, f Feature, cfg Config, band int, slabs []*accum.Slab, arr *sparse.Array, report *Report) error {
	primitives, err := geomtree.Flatten(f.Geometry)
	if err != nil {
		var uge *geomtree.UnsupportedGeometryError
		var mre *geomtree.MalformedRingError
		switch {
		case errors.As(err, &uge):
			report.UnsupportedGeometryCount++
		case errors.As(err, &mre):
			report.MalformedRingCount++
		}
		report.SkippedFeatures++
		if cfg.Strict {
			return fmt.Errorf("feature %d: %w", fi, err)
		}
		return nil
	}

	value := f.Value
	featIdx := int32(fi)

	var burn scanfill.Burn
	if arr != nil {
		burn = func(row, col int) { arr.Append(band, row, col, value, featIdx) }
	} else {
		slab := slabs[band]
		burn = func(row, col int) { slab.Burn(row, col, value, featIdx) }
	}

	for _, p := range primitives {
		switch p.Kind {
		case geomtree.PrimPolygon:
			scanfill.Fill(cfg.Transform, p.Rings, cfg.Rows, cfg.Cols, cfg.AllTouched, burn)
		case geomtree.PrimLine:
			lineraster.Chain(cfg.Transform, p.Line, cfg.Rows, cfg.Cols, burn)
		case geomtree.PrimPoint:
			lineraster.Point(cfg.Transform, p.Point.X, p.Point.Y, cfg.Rows, cfg.Cols, burn)
		}
	}
	return nil
}

// hilbertOrderFor computes a spatial-locality processing order over
// features' bbox centers. Geometries that fail to produce a bbox (empty
// collections) keep their natural relative position by falling back to
// center (0,0) — they sort together but never disappear from the order.
func hilbertOrderFor(features []Feature, cfg Config) []int {
	n := len(features)
	if n <= 1 {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		return order
	}

	rows := make([]float64, n)
	cols := make([]float64, n)
	for i, f := range features {
		minX, minY, maxX, maxY, ok := geomtree.BBox(f.Geometry)
		var cx, cy float64
		if ok {
			cx, cy = (minX+maxX)/2, (minY+maxY)/2
		}
		r, c := cfg.Transform.WorldToPixel(cx, cy)
		rows[i], cols[i] = r, c
	}
	return hilbertFeatureOrder(rows, cols, cfg.Rows, cfg.Cols)
}
