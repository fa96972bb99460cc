package geomtree

import (
	"errors"
	"testing"
)

func square(x0, y0, x1, y1 float64) Ring {
	return Ring{Coords: []Coord{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func TestFlattenSimple(t *testing.T) {
	g := NewPoint(1, 2)
	prims, err := Flatten(g)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(prims) != 1 || prims[0].Kind != PrimPoint || prims[0].Point != (Coord{1, 2}) {
		t.Errorf("unexpected primitives: %+v", prims)
	}
}

func TestFlattenNestedCollection(t *testing.T) {
	inner := NewCollection(NewPoint(0, 0), NewLineString([]Coord{{0, 0}, {1, 1}}))
	outer := NewCollection(inner, NewPolygon(square(0, 0, 1, 1)))

	prims, err := Flatten(outer)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(prims) != 3 {
		t.Fatalf("want 3 primitives, got %d: %+v", len(prims), prims)
	}
	if prims[0].Kind != PrimPoint || prims[1].Kind != PrimLine || prims[2].Kind != PrimPolygon {
		t.Errorf("unexpected primitive order/kinds: %+v", prims)
	}
}

func TestFlattenDeeplyNested(t *testing.T) {
	g := NewPoint(0, 0)
	for i := 0; i < 10000; i++ {
		g = NewCollection(g)
	}
	prims, err := Flatten(g)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(prims) != 1 {
		t.Fatalf("want 1 primitive after unwrapping, got %d", len(prims))
	}
}

func TestFlattenMalformedRing(t *testing.T) {
	bad := Ring{Coords: []Coord{{0, 0}, {1, 0}, {1, 1}}} // 3 points, not closed
	_, err := Flatten(NewPolygon(bad))
	if err == nil {
		t.Fatal("expected malformed ring error")
	}
	var mre *MalformedRingError
	if !errors.As(err, &mre) {
		t.Errorf("expected *MalformedRingError, got %T: %v", err, err)
	}
}

func TestFlattenUnsupportedKind(t *testing.T) {
	bad := Geometry{Kind: Kind(99)}
	_, err := Flatten(bad)
	if err == nil {
		t.Fatal("expected unsupported geometry error")
	}
	var uge *UnsupportedGeometryError
	if !errors.As(err, &uge) {
		t.Errorf("expected *UnsupportedGeometryError, got %T: %v", err, err)
	}
}

func TestFlattenHoles(t *testing.T) {
	ext := square(0, 0, 4, 4)
	hole := square(1, 1, 3, 3)
	prims, err := Flatten(NewPolygon(ext, hole))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(prims) != 1 || len(prims[0].Rings) != 2 {
		t.Fatalf("expected 1 polygon primitive with 2 rings, got %+v", prims)
	}
}
