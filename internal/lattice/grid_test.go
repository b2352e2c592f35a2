package lattice

import (
	"math"
	"testing"

	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/model"
)

// Helper to create horizontal lines
func makeHLine(y, x1, x2 float64) graphicsstate.ExtractedLine {
	return graphicsstate.ExtractedLine{
		Start:        model.Point{X: x1, Y: y},
		End:          model.Point{X: x2, Y: y},
		IsHorizontal: true,
	}
}

// Helper to create vertical lines
func makeVLine(x, y1, y2 float64) graphicsstate.ExtractedLine {
	return graphicsstate.ExtractedLine{
		Start:      model.Point{X: x, Y: y1},
		End:        model.Point{X: x, Y: y2},
		IsVertical: true,
	}
}

func TestBuildRulingsFiltersShortLines(t *testing.T) {
	lines := []graphicsstate.ExtractedLine{
		makeHLine(100, 0, 200),
		makeHLine(50, 0, 5), // underline noise
	}
	rulings := BuildRulings(lines, true, 10, DefaultGridConfig())
	if len(rulings) != 1 {
		t.Fatalf("expected 1 ruling, got %d", len(rulings))
	}
	if rulings[0].Pos != 100 {
		t.Errorf("Pos = %f, want 100", rulings[0].Pos)
	}
}

func TestBuildRulingsSnapsNearbyPositions(t *testing.T) {
	// Two strokes of the same visual rule, 1pt apart.
	lines := []graphicsstate.ExtractedLine{
		makeHLine(100, 0, 200),
		makeHLine(101, 0, 200),
	}
	rulings := BuildRulings(lines, true, 10, DefaultGridConfig())
	if len(rulings) != 1 {
		t.Fatalf("expected 1 merged ruling, got %d", len(rulings))
	}
	if math.Abs(rulings[0].Pos-100.5) > 0.001 {
		t.Errorf("Pos = %f, want 100.5", rulings[0].Pos)
	}
}

func TestBuildRulingsJoinsCollinearSegments(t *testing.T) {
	// One rule drawn as two segments with a 1pt gap.
	lines := []graphicsstate.ExtractedLine{
		makeHLine(100, 0, 99),
		makeHLine(100, 100, 200),
	}
	rulings := BuildRulings(lines, true, 10, DefaultGridConfig())
	if len(rulings) != 1 {
		t.Fatalf("expected 1 joined ruling, got %d", len(rulings))
	}
	if rulings[0].Lo != 0 || rulings[0].Hi != 200 {
		t.Errorf("span = [%f, %f], want [0, 200]", rulings[0].Lo, rulings[0].Hi)
	}
}

func TestBuildRulingsKeepsSeparatedSegments(t *testing.T) {
	// Two distinct rules at the same Y, far apart: side-by-side tables.
	lines := []graphicsstate.ExtractedLine{
		makeHLine(100, 0, 90),
		makeHLine(100, 300, 400),
	}
	rulings := BuildRulings(lines, true, 10, DefaultGridConfig())
	if len(rulings) != 2 {
		t.Fatalf("expected 2 rulings, got %d", len(rulings))
	}
}

func TestBuildRulingsIgnoresWrongOrientation(t *testing.T) {
	lines := []graphicsstate.ExtractedLine{
		makeVLine(50, 0, 100),
	}
	if rulings := BuildRulings(lines, true, 10, DefaultGridConfig()); len(rulings) != 0 {
		t.Errorf("expected no horizontal rulings from vertical input, got %d", len(rulings))
	}
}

// grid2x2 returns rulings for a 2x2-cell lattice spanning (0,0)-(200,100).
func grid2x2() (hs, vs []Ruling) {
	hs = []Ruling{
		{Pos: 100, Lo: 0, Hi: 200},
		{Pos: 50, Lo: 0, Hi: 200},
		{Pos: 0, Lo: 0, Hi: 200},
	}
	vs = []Ruling{
		{Pos: 0, Lo: 0, Hi: 100},
		{Pos: 100, Lo: 0, Hi: 100},
		{Pos: 200, Lo: 0, Hi: 100},
	}
	return hs, vs
}

func TestAssembleGridsSimple(t *testing.T) {
	hs, vs := grid2x2()
	grids := AssembleGrids(hs, vs, DefaultGridConfig())
	if len(grids) != 1 {
		t.Fatalf("expected 1 grid, got %d", len(grids))
	}

	g := grids[0]
	if g.RowCount() != 2 || g.ColCount() != 2 {
		t.Errorf("grid is %dx%d, want 2x2", g.RowCount(), g.ColCount())
	}
	// Rows top to bottom.
	if g.RowYs[0] != 100 || g.RowYs[2] != 0 {
		t.Errorf("RowYs = %v, want descending from 100", g.RowYs)
	}
	if g.ColXs[0] != 0 || g.ColXs[2] != 200 {
		t.Errorf("ColXs = %v, want ascending to 200", g.ColXs)
	}
}

func TestAssembleGridsSeparatesDisjointTables(t *testing.T) {
	hs, vs := grid2x2()
	// A second lattice far below the first.
	hs = append(hs,
		Ruling{Pos: -200, Lo: 0, Hi: 200},
		Ruling{Pos: -250, Lo: 0, Hi: 200},
	)
	vs = append(vs,
		Ruling{Pos: 0, Lo: -250, Hi: -200},
		Ruling{Pos: 200, Lo: -250, Hi: -200},
	)

	grids := AssembleGrids(hs, vs, DefaultGridConfig())
	if len(grids) != 2 {
		t.Fatalf("expected 2 grids, got %d", len(grids))
	}
	// Reading order: higher on the page first.
	if grids[0].Top() != 100 {
		t.Errorf("first grid top = %f, want 100", grids[0].Top())
	}
	if grids[1].Top() != -200 {
		t.Errorf("second grid top = %f, want -200", grids[1].Top())
	}
}

func TestAssembleGridsRejectsDegenerate(t *testing.T) {
	// A single horizontal rule crossing a single vertical rule bounds
	// no cell.
	hs := []Ruling{{Pos: 50, Lo: 0, Hi: 100}}
	vs := []Ruling{{Pos: 50, Lo: 0, Hi: 100}}
	if grids := AssembleGrids(hs, vs, DefaultGridConfig()); len(grids) != 0 {
		t.Errorf("expected no grids, got %d", len(grids))
	}
}

func TestAssembleGridsIgnoresStrayRule(t *testing.T) {
	hs, vs := grid2x2()
	// A page-width separator rule that touches nothing vertical.
	hs = append(hs, Ruling{Pos: 400, Lo: 0, Hi: 600})

	grids := AssembleGrids(hs, vs, DefaultGridConfig())
	if len(grids) != 1 {
		t.Fatalf("expected 1 grid, got %d", len(grids))
	}
	if len(grids[0].RowYs) != 3 {
		t.Errorf("stray rule leaked into grid: RowYs = %v", grids[0].RowYs)
	}
}

func TestGridBBox(t *testing.T) {
	g := &Grid{RowYs: []float64{100, 50, 0}, ColXs: []float64{0, 100, 200}}
	bbox := g.BBox()
	if bbox.Left() != 0 || bbox.Bottom() != 0 || bbox.Right() != 200 || bbox.Top() != 100 {
		t.Errorf("BBox = %+v", bbox)
	}
}

func TestSnapPositions(t *testing.T) {
	got := snapPositions([]float64{0, 0.5, 100, 101, 200}, 2)
	want := []float64{0.25, 100.5, 200}
	if len(got) != len(want) {
		t.Fatalf("snapPositions = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 0.001 {
			t.Errorf("snapPositions[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}
