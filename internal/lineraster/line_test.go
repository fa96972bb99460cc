package lineraster

import (
	"testing"

	"github.com/vectorraster/rasterize/internal/affine"
	"github.com/vectorraster/rasterize/internal/geomtree"
)

func collect(burned *[][2]int) Burn {
	return func(row, col int) {
		*burned = append(*burned, [2]int{row, col})
	}
}

func TestChainDiagonal(t *testing.T) {
	tr := affine.New(0, 3, 1, 1)
	var burned [][2]int
	coords := []geomtree.Coord{{0.1, 2.9}, {2.9, 0.1}} // (0,3)-(3,0) roughly diagonal
	Chain(tr, coords, 3, 3, collect(&burned))

	want := map[[2]int]bool{{0, 0}: true, {1, 1}: true, {2, 2}: true}
	if len(burned) != 3 {
		t.Fatalf("got %d pixels, want 3: %v", len(burned), burned)
	}
	for _, p := range burned {
		if !want[p] {
			t.Errorf("unexpected pixel %v", p)
		}
	}
}

func TestChainDedupCoincidentEndpoints(t *testing.T) {
	tr := affine.New(0, 3, 1, 1)
	var burned [][2]int
	coords := []geomtree.Coord{{0.5, 2.5}, {0.5, 2.5}, {0.5, 2.5}}
	Chain(tr, coords, 3, 3, collect(&burned))
	if len(burned) != 1 {
		t.Fatalf("expected single deduped pixel, got %v", burned)
	}
}

func TestChainClipsOutOfBounds(t *testing.T) {
	tr := affine.New(0, 3, 1, 1)
	var burned [][2]int
	coords := []geomtree.Coord{{-5, 2.5}, {0.5, 2.5}}
	Chain(tr, coords, 3, 3, collect(&burned))
	for _, p := range burned {
		if p[0] < 0 || p[0] >= 3 || p[1] < 0 || p[1] >= 3 {
			t.Errorf("pixel %v out of bounds", p)
		}
	}
}

func TestPointInsideAndOutside(t *testing.T) {
	tr := affine.New(0, 3, 1, 1)
	var burned [][2]int
	Point(tr, 1.5, 1.5, 3, 3, collect(&burned))
	if len(burned) != 1 || burned[0] != [2]int{1, 1} {
		t.Fatalf("expected pixel (1,1), got %v", burned)
	}

	burned = nil
	Point(tr, 100, 100, 3, 3, collect(&burned))
	if len(burned) != 0 {
		t.Fatalf("expected no pixel outside window, got %v", burned)
	}
}
