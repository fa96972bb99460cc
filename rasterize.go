// Package rasterize converts vector geometries into raster pixel buffers:
// a polygon/line/point scan converter driven by a configurable, associative
// per-pixel reducer, parallelized across a worker pool with deterministic
// ordering guarantees for order-sensitive reducers.
//
// The package does not read or write any geometry exchange format (WKB,
// WKT, shapefiles, ...) or raster file format (GeoTIFF, ...); callers hand
// it an in-memory geometry tree and get back a typed pixel buffer or a
// sparse coordinate list.
package rasterize

import (
	"errors"
	"log"

	"github.com/vectorraster/rasterize/internal/accum"
	"github.com/vectorraster/rasterize/internal/affine"
	"github.com/vectorraster/rasterize/internal/dtype"
	"github.com/vectorraster/rasterize/internal/geomtree"
	"github.com/vectorraster/rasterize/internal/orchestrate"
	"github.com/vectorraster/rasterize/internal/sparse"
)

var (
	errNoFeatures          = errors.New("no features supplied")
	errBadShape            = errors.New("rows and cols must be positive")
	errDegenerateTransform = errors.New("transform is not invertible")
)

// Re-exported leaf types so callers never need to import internal/*
// themselves.
type (
	// GeometryKind discriminates Geometry variants (KindPoint, ...). The
	// name Kind belongs to the error taxonomy in errors.go.
	GeometryKind = geomtree.Kind
	Coord        = geomtree.Coord
	Ring         = geomtree.Ring
	// Geometry is the tagged-variant input tree: build one with the
	// NewPoint/NewLineString/NewPolygon/NewMulti*/NewCollection
	// constructors from internal/geomtree, re-exported below.
	Geometry = geomtree.Geometry

	// Reducer selects the per-pixel aggregation rule.
	Reducer = accum.Reducer
	// DType selects the output buffer's numeric type.
	DType = dtype.DType
)

const (
	KindPoint              = geomtree.KindPoint
	KindLineString         = geomtree.KindLineString
	KindPolygon            = geomtree.KindPolygon
	KindMultiPoint         = geomtree.KindMultiPoint
	KindMultiLineString    = geomtree.KindMultiLineString
	KindMultiPolygon       = geomtree.KindMultiPolygon
	KindGeometryCollection = geomtree.KindGeometryCollection
)

const (
	Sum   = accum.Sum
	First = accum.First
	Last  = accum.Last
	Min   = accum.Min
	Max   = accum.Max
	Count = accum.Count
	Any   = accum.Any
)

const (
	U8  = dtype.U8
	U16 = dtype.U16
	U32 = dtype.U32
	U64 = dtype.U64
	I8  = dtype.I8
	I16 = dtype.I16
	I32 = dtype.I32
	I64 = dtype.I64
	F32 = dtype.F32
	F64 = dtype.F64
)

var (
	NewPoint           = geomtree.NewPoint
	NewLineString      = geomtree.NewLineString
	NewPolygon         = geomtree.NewPolygon
	NewMultiPoint      = geomtree.NewMultiPoint
	NewMultiLineString = geomtree.NewMultiLineString
	NewMultiPolygon    = geomtree.NewMultiPolygon
	NewCollection      = geomtree.NewCollection
	NewAffine          = affine.New
)

// Transform is the six-parameter world<->pixel affine map. Build one with
// NewAffine(xmin, ymax, xres, yres) for the canonical north-up case.
type Transform = affine.Transform

// Feature is one geometry/value pair to burn. Position in the input slice
// is the feature's index — the value first/last ordering guarantees are
// defined against. GroupKey, if non-nil, routes the feature's contribution
// to the output band assigned to that key; Rasterize derives the band
// count and assignment from the distinct set of keys across all features,
// in first-appearance order. A nil GroupKey groups with every other
// ungrouped feature into one shared band.
type Feature struct {
	Geometry Geometry
	Value    float64
	GroupKey *string
}

// Options configures one Rasterize call.
type Options struct {
	Transform  Transform
	Rows, Cols int

	Reducer    Reducer
	DType      DType
	Background float64
	// AllTouched burns every pixel touched by a polygon edge in addition
	// to the interior fill.
	AllTouched bool
	// Strict turns recoverable per-feature geometry errors into a hard
	// error from Rasterize instead of a skip-and-count in Report.
	Strict bool

	// Workers bounds worker pool size; 0 means runtime.NumCPU().
	Workers int
	Verbose bool

	// Sparse forces the accumulation path (true = sparse COO, false =
	// dense buffer) instead of letting Rasterize auto-select based on
	// estimated memory pressure.
	Sparse *bool
}

// Report summarizes recoverable problems encountered while rasterizing,
// alongside the output.
type Report struct {
	SkippedFeatures          int
	UnsupportedGeometryCount int
	MalformedRingCount       int
}

// Result holds Rasterize's output. Exactly one of Dense or Sparse is set,
// mirroring UsedSparse.
type Result struct {
	UsedSparse bool
	// Bands is the output band count Rasterize derived from the features'
	// group keys.
	Bands int
	// Dense is bands*rows*cols, row-major within each band, already
	// saturating-cast into Options.DType's range.
	Dense []float64
	// Sparse holds unmaterialized (band,row,col,value) triplets; call
	// sparse.Array.ToDense or ToFrame on it (re-exported as SparseArray).
	Sparse *SparseArray
	Report Report
}

// SparseArray is the coordinate-list accumulation result for callers that
// requested (or were auto-routed to) the sparse path.
type SparseArray = sparse.Array

// Rasterize burns features into a rows*cols (*bands) raster using the
// configured reducer and dtype. It fails fast, before any feature is
// processed, on a degenerate transform or a non-positive shape; per-feature
// geometry errors are otherwise counted in the returned Report unless
// Options.Strict is set.
func Rasterize(features []Feature, opts Options) (Result, error) {
	if len(features) == 0 {
		return Result{}, newError(EmptyInput, -1, errNoFeatures)
	}
	if opts.Rows <= 0 || opts.Cols <= 0 {
		return Result{}, newError(ShapeMismatch, -1, errBadShape)
	}
	if !opts.Transform.Invertible() {
		return Result{}, newError(InvalidTransform, -1, errDegenerateTransform)
	}

	orchFeatures := make([]orchestrate.Feature, len(features))
	for i, f := range features {
		orchFeatures[i] = orchestrate.Feature{Geometry: f.Geometry, Value: f.Value, GroupKey: f.GroupKey}
	}

	cfg := orchestrate.Config{
		Transform:  opts.Transform,
		Rows:       opts.Rows,
		Cols:       opts.Cols,
		Reducer:    opts.Reducer,
		DType:      opts.DType,
		Background: opts.Background,
		AllTouched: opts.AllTouched,
		Strict:     opts.Strict,
		Workers:    opts.Workers,
		Verbose:    opts.Verbose,
		Sparse:     opts.Sparse,
	}

	res, err := orchestrate.Run(orchFeatures, cfg)
	if err != nil {
		return Result{}, newError(classifyOrchestrateError(err), -1, err)
	}

	if opts.Verbose {
		log.Printf("rasterize: %d features, %d band(s), %dx%d, reducer=%s dtype=%s",
			len(features), res.Bands, opts.Rows, opts.Cols, opts.Reducer, opts.DType)
	}

	return Result{
		UsedSparse: res.UsedSparse,
		Bands:      res.Bands,
		Dense:      res.Dense,
		Sparse:     res.Sparse,
		Report: Report{
			SkippedFeatures:          res.Report.SkippedFeatures,
			UnsupportedGeometryCount: res.Report.UnsupportedGeometryCount,
			MalformedRingCount:       res.Report.MalformedRingCount,
		},
	}, nil
}

func classifyOrchestrateError(err error) Kind {
	// Strict-mode geometry errors surface as plain errors from orchestrate;
	// everything else it returns is a configuration problem already
	// validated above, so the only remaining case worth naming here is the
	// per-feature one.
	return UnsupportedGeometry
}
