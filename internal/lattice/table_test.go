package lattice

import (
	"testing"

	"github.com/tsawler/tabula/text"
)

// frag places a text fragment by its lower-left corner.
func frag(s string, x, y float64) text.TextFragment {
	return text.TextFragment{
		Text:   s,
		X:      x,
		Y:      y,
		Width:  float64(len([]rune(s))) * 10,
		Height: 10,
	}
}

func testGrid() *Grid {
	return &Grid{
		RowYs: []float64{100, 50, 0},
		ColXs: []float64{0, 100, 200},
	}
}

func TestBuildTableAssignsByMidpoint(t *testing.T) {
	frags := []text.TextFragment{
		frag("a", 10, 80), // top-left cell
		frag("b", 110, 80),
		frag("c", 10, 20),
		frag("d", 110, 20),
	}
	tbl := BuildTable(testGrid(), frags, nil, "")
	if tbl.RowCount() != 2 || tbl.ColCount() != 2 {
		t.Fatalf("table is %dx%d", tbl.RowCount(), tbl.ColCount())
	}
	want := [][]string{{"a", "b"}, {"c", "d"}}
	for i, row := range want {
		for j, cell := range row {
			if got := tbl.GetCell(i, j).Text; got != cell {
				t.Errorf("cell (%d,%d) = %q, want %q", i, j, got, cell)
			}
		}
	}
}

func TestBuildTableMultiLineCell(t *testing.T) {
	// Two lines stacked in the top-left cell join with a space.
	frags := []text.TextFragment{
		frag("サリチル酸", 10, 85),
		frag("安息香酸", 10, 70),
	}
	tbl := BuildTable(testGrid(), frags, nil, "")
	if got := tbl.GetCell(0, 0).Text; got != "サリチル酸 安息香酸" {
		t.Errorf("cell (0,0) = %q", got)
	}
}

func TestBuildTableJoinsAdjacentFragments(t *testing.T) {
	// A word split into two fragments on the same baseline joins
	// without a separator.
	frags := []text.TextFragment{
		frag("サリチ", 10, 80),
		frag("ル酸", 40, 80),
	}
	tbl := BuildTable(testGrid(), frags, nil, "")
	if got := tbl.GetCell(0, 0).Text; got != "サリチル酸" {
		t.Errorf("cell (0,0) = %q, want joined word", got)
	}
}

func TestBuildTableStripText(t *testing.T) {
	frags := []text.TextFragment{
		frag("\nサリチル酸\n", 10, 80),
	}
	tbl := BuildTable(testGrid(), frags, nil, "\n")
	if got := tbl.GetCell(0, 0).Text; got != "サリチル酸" {
		t.Errorf("cell (0,0) = %q", got)
	}
}

func TestBuildTableIgnoresOutsideFragments(t *testing.T) {
	frags := []text.TextFragment{
		frag("inside", 10, 80),
		frag("footer", 10, -40),
		frag("margin", 300, 80),
	}
	tbl := BuildTable(testGrid(), frags, nil, "")
	if got := tbl.GetCell(0, 0).Text; got != "inside" {
		t.Errorf("cell (0,0) = %q", got)
	}
	for i := 0; i < tbl.RowCount(); i++ {
		for j := 0; j < tbl.ColCount(); j++ {
			if i == 0 && j == 0 {
				continue
			}
			if got := tbl.GetCell(i, j).Text; got != "" {
				t.Errorf("cell (%d,%d) = %q, want empty", i, j, got)
			}
		}
	}
}

func TestBuildTableCopyVertical(t *testing.T) {
	// A value spanning two rows is drawn once in the upper cell.
	frags := []text.TextFragment{
		frag("条件", 10, 80),
		frag("0.2", 110, 80),
		frag("0.3", 110, 20),
	}
	tbl := BuildTable(testGrid(), frags, []CopyDirection{CopyVertical}, "")
	if got := tbl.GetCell(1, 0).Text; got != "条件" {
		t.Errorf("cell (1,0) = %q, want inherited 条件", got)
	}
	// Filled cells are not overwritten.
	if got := tbl.GetCell(1, 1).Text; got != "0.3" {
		t.Errorf("cell (1,1) = %q, want 0.3", got)
	}
}

func TestBuildTableCopyHorizontal(t *testing.T) {
	frags := []text.TextFragment{
		frag("0.2", 10, 80),
	}
	tbl := BuildTable(testGrid(), frags, []CopyDirection{CopyHorizontal}, "")
	if got := tbl.GetCell(0, 1).Text; got != "0.2" {
		t.Errorf("cell (0,1) = %q, want copied 0.2", got)
	}
	// The lower row stays empty: nothing to copy from on its left edge.
	if got := tbl.GetCell(1, 0).Text; got != "" {
		t.Errorf("cell (1,0) = %q, want empty", got)
	}
}

func TestBuildTableBoundaryMidpoint(t *testing.T) {
	// A fragment whose midpoint lands exactly on the grid's right and
	// bottom edges belongs to the last cell, not the void outside.
	frags := []text.TextFragment{
		frag("z", 195, -5), // midpoint (200, 0)
	}
	tbl := BuildTable(testGrid(), frags, nil, "")
	if got := tbl.GetCell(1, 1).Text; got != "z" {
		t.Errorf("cell (1,1) = %q, want z", got)
	}
}

func TestBuildTableEmptyGrid(t *testing.T) {
	g := &Grid{}
	tbl := BuildTable(g, nil, nil, "")
	if tbl.RowCount() != 0 {
		t.Errorf("expected empty table, got %d rows", tbl.RowCount())
	}
}

func TestTableRows(t *testing.T) {
	frags := []text.TextFragment{
		frag("a", 10, 80),
		frag("b", 110, 20),
	}
	rows := TableRows(BuildTable(testGrid(), frags, nil, ""))
	if len(rows) != 2 || len(rows[0]) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][0] != "a" || rows[1][1] != "b" {
		t.Errorf("rows = %v", rows)
	}
}
