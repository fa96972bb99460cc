package rasterize

import (
	"errors"
	"math"
	"testing"
)

func rect(x0, y0, x1, y1, value float64) Feature {
	ring := Ring{Coords: []Coord{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	}}
	return Feature{Geometry: NewPolygon(ring), Value: value}
}

func TestRasterizeOverlappingSquaresSum(t *testing.T) {
	features := []Feature{
		rect(0, 0, 2, 2, 3),
		rect(1, 1, 3, 3, 5),
	}
	res, err := Rasterize(features, Options{
		Transform: NewAffine(0, 3, 1, 1),
		Rows:      3, Cols: 3,
		Reducer: Sum, DType: F64,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 5, 5, 3, 8, 5, 3, 3, 0}
	for i := range want {
		if res.Dense[i] != want[i] {
			t.Errorf("index %d = %v, want %v\ngot: %v", i, res.Dense[i], want[i], res.Dense)
		}
	}
}

func TestRasterizeIntegerBackgroundSubstitutesNaN(t *testing.T) {
	features := []Feature{rect(0, 0, 1, 1, 7)}
	res, err := Rasterize(features, Options{
		Transform:  NewAffine(0, 2, 1, 1),
		Rows:       2, Cols: 2,
		Reducer:    Last,
		DType:      U8,
		Background: math.NaN(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Untouched pixels should fall back to u8's default fill (0), not NaN.
	for i, v := range res.Dense {
		if math.IsNaN(v) {
			t.Errorf("index %d is NaN, integral dtype must substitute default fill", i)
		}
	}
}

func TestRasterizeEmptyInputIsHardError(t *testing.T) {
	_, err := Rasterize(nil, Options{
		Transform: NewAffine(0, 1, 1, 1),
		Rows:      1, Cols: 1,
	})
	if err == nil {
		t.Fatalf("expected EmptyInput error")
	}
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != EmptyInput {
		t.Fatalf("expected Kind=EmptyInput, got %v", err)
	}
}

func TestRasterizeDegenerateTransformIsHardError(t *testing.T) {
	_, err := Rasterize([]Feature{rect(0, 0, 1, 1, 1)}, Options{
		Transform: Transform{},
		Rows:      1, Cols: 1,
	})
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != InvalidTransform {
		t.Fatalf("expected Kind=InvalidTransform, got %v", err)
	}
}

func TestRasterizeGroupedBandsIsolateContributions(t *testing.T) {
	keyA, keyB := "A", "B"
	features := []Feature{
		{Geometry: rect(0, 0, 1, 1, 1).Geometry, Value: 1, GroupKey: &keyA},
		{Geometry: rect(0, 0, 1, 1, 99).Geometry, Value: 99, GroupKey: &keyB},
	}
	res, err := Rasterize(features, Options{
		Transform: NewAffine(0, 1, 1, 1),
		Rows:      1, Cols: 1,
		Reducer: Sum, DType: F64,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Bands != 2 {
		t.Fatalf("expected 2 bands derived from group keys A and B, got %d", res.Bands)
	}
	if res.Dense[0] != 1 || res.Dense[1] != 99 {
		t.Fatalf("expected per-band isolation, got %v", res.Dense)
	}
}

func TestRasterizeSparseDenseEquivalence(t *testing.T) {
	features := []Feature{
		rect(0, 0, 2, 2, 3),
		rect(1, 1, 3, 3, 5),
	}
	denseFlag := false
	sparseFlag := true

	denseRes, err := Rasterize(features, Options{
		Transform: NewAffine(0, 3, 1, 1),
		Rows:      3, Cols: 3,
		Reducer: Sum, DType: F64, Sparse: &denseFlag,
	})
	if err != nil {
		t.Fatalf("dense: %v", err)
	}
	sparseRes, err := Rasterize(features, Options{
		Transform: NewAffine(0, 3, 1, 1),
		Rows:      3, Cols: 3,
		Reducer: Sum, DType: F64, Sparse: &sparseFlag,
	})
	if err != nil {
		t.Fatalf("sparse: %v", err)
	}
	if !sparseRes.UsedSparse {
		t.Fatalf("expected sparse path")
	}
	got := sparseRes.Sparse.ToDense(Sum, F64, 0)
	for i := range denseRes.Dense {
		if denseRes.Dense[i] != got[i] {
			t.Errorf("index %d: dense=%v sparse=%v", i, denseRes.Dense[i], got[i])
		}
	}
}
