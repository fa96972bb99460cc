package scanfill

import (
	"testing"

	"github.com/vectorraster/rasterize/internal/affine"
	"github.com/vectorraster/rasterize/internal/geomtree"
)

func ring(coords ...[2]float64) geomtree.Ring {
	cs := make([]geomtree.Coord, len(coords))
	for i, c := range coords {
		cs[i] = geomtree.Coord{X: c[0], Y: c[1]}
	}
	return geomtree.Ring{Coords: cs}
}

func grid(rows, cols int, burned map[[2]int]bool) (Burn, func() [][]int) {
	b := func(row, col int) { burned[[2]int{row, col}] = true }
	snapshot := func() [][]int {
		g := make([][]int, rows)
		for r := range g {
			g[r] = make([]int, cols)
			for c := 0; c < cols; c++ {
				if burned[[2]int{r, c}] {
					g[r][c] = 1
				}
			}
		}
		return g
	}
	return b, snapshot
}

func TestFillTriangle(t *testing.T) {
	// Right triangle with the right angle at world (0,0); under the
	// canonical transform (row = (ymax-y)/yres) the apex (0,4) sits at
	// pixel row 0, so the fill is narrowest at the top and widens toward
	// the bottom row.
	tr := affine.New(0, 4, 1, 1)
	r := ring([2]float64{0, 0}, [2]float64{4, 0}, [2]float64{0, 4}, [2]float64{0, 0})

	burned := map[[2]int]bool{}
	burn, snapshot := grid(4, 4, burned)
	Fill(tr, []geomtree.Ring{r}, 4, 4, false, burn)

	want := [][]int{
		{0, 0, 0, 0},
		{1, 0, 0, 0},
		{1, 1, 0, 0},
		{1, 1, 1, 0},
	}
	got := snapshot()
	for row := range want {
		for col := range want[row] {
			if got[row][col] != want[row][col] {
				t.Errorf("pixel (%d,%d) = %d, want %d\ngot:  %v\nwant: %v", row, col, got[row][col], want[row][col], got, want)
			}
		}
	}
}

func TestFillOverlappingSquaresSum(t *testing.T) {
	tr := affine.New(0, 3, 1, 1)
	sq1 := ring([2]float64{0, 0}, [2]float64{2, 0}, [2]float64{2, 2}, [2]float64{0, 2}, [2]float64{0, 0})
	sq2 := ring([2]float64{1, 1}, [2]float64{3, 1}, [2]float64{3, 3}, [2]float64{1, 3}, [2]float64{1, 1})

	sum := make([][]float64, 3)
	for i := range sum {
		sum[i] = make([]float64, 3)
	}
	burnValue := func(v float64) Burn {
		return func(row, col int) { sum[row][col] += v }
	}

	Fill(tr, []geomtree.Ring{sq1}, 3, 3, false, burnValue(3))
	Fill(tr, []geomtree.Ring{sq2}, 3, 3, false, burnValue(5))

	want := [][]float64{
		{0, 5, 5},
		{3, 8, 5},
		{3, 3, 0},
	}
	for row := range want {
		for col := range want[row] {
			if sum[row][col] != want[row][col] {
				t.Errorf("pixel (%d,%d) = %v, want %v\ngot:  %v\nwant: %v", row, col, sum[row][col], want[row][col], sum, want)
			}
		}
	}
}

func TestFillHoleCancellation(t *testing.T) {
	tr := affine.New(0, 4, 1, 1)
	ext := ring([2]float64{0, 0}, [2]float64{4, 0}, [2]float64{4, 4}, [2]float64{0, 4}, [2]float64{0, 0})
	hole := ring([2]float64{1, 1}, [2]float64{3, 1}, [2]float64{3, 3}, [2]float64{1, 3}, [2]float64{1, 1})

	burned := map[[2]int]bool{}
	burn, snapshot := grid(4, 4, burned)
	Fill(tr, []geomtree.Ring{ext, hole}, 4, 4, false, burn)

	got := snapshot()
	// Border should be filled, central 2x2 should be empty.
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			onBorder := row == 0 || row == 3 || col == 0 || col == 3
			if onBorder && got[row][col] != 1 {
				t.Errorf("border pixel (%d,%d) should be filled", row, col)
			}
			if !onBorder && got[row][col] != 0 {
				t.Errorf("interior pixel (%d,%d) should be hollow (hole)", row, col)
			}
		}
	}
}

func TestFillAllTouchedSuperset(t *testing.T) {
	tr := affine.New(0, 4, 1, 1)
	r := ring([2]float64{0.5, 0.5}, [2]float64{3.5, 0.5}, [2]float64{3.5, 3.5}, [2]float64{0.5, 3.5}, [2]float64{0.5, 0.5})

	defaultBurned := map[[2]int]bool{}
	burn, _ := grid(4, 4, defaultBurned)
	Fill(tr, []geomtree.Ring{r}, 4, 4, false, burn)

	allBurned := map[[2]int]bool{}
	burnAT, _ := grid(4, 4, allBurned)
	Fill(tr, []geomtree.Ring{r}, 4, 4, true, burnAT)

	for p := range defaultBurned {
		if !allBurned[p] {
			t.Errorf("all_touched result missing default-covered pixel %v", p)
		}
	}
}

func TestFillRectanglePixelCenterRule(t *testing.T) {
	// [1,3] x [1,3] rectangle on a unit grid; pixel centers at x_c in
	// {0.5,1.5,2.5,3.5}. Only centers with 1 <= x_c < 3 should be filled.
	tr := affine.New(0, 4, 1, 1)
	r := ring([2]float64{1, 1}, [2]float64{3, 1}, [2]float64{3, 3}, [2]float64{1, 3}, [2]float64{1, 1})

	burned := map[[2]int]bool{}
	burn, snapshot := grid(4, 4, burned)
	Fill(tr, []geomtree.Ring{r}, 4, 4, false, burn)
	got := snapshot()

	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			xc := float64(col) + 0.5
			yc := 4 - (float64(row) + 0.5) // ymax=4, yres=1
			want := 0
			if xc >= 1 && xc < 3 && yc > 1 && yc <= 3 {
				want = 1
			}
			if got[row][col] != want {
				t.Errorf("pixel (%d,%d)=%d, want %d", row, col, got[row][col], want)
			}
		}
	}
}
