package lattice

import (
	"sort"
	"strings"

	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/text"
)

// CopyDirection names an axis along which empty cells inherit text from
// a filled neighbor. Spanned cells in bordered tables are drawn once
// but apply to every cell they cover; copying restores the value to
// each covered cell.
type CopyDirection int

const (
	// CopyHorizontal copies a cell's text into empty cells to its right.
	CopyHorizontal CopyDirection = iota
	// CopyVertical copies a cell's text into empty cells below it.
	CopyVertical
)

// charJoinTolerance is the horizontal gap (points) under which two
// fragments on the same baseline are treated as one word and joined
// without a separator.
const charJoinTolerance = 1.0

// BuildTable assigns text fragments to the grid's cells and returns the
// assembled table. Fragments are taken in reading order; fragments on
// the same baseline closer than the join tolerance concatenate
// directly, all others join with a single space. Characters of strip
// are trimmed from each fragment before assembly.
func BuildTable(g *Grid, frags []text.TextFragment, copyDirs []CopyDirection, strip string) *model.Table {
	rows, cols := g.RowCount(), g.ColCount()
	if rows == 0 || cols == 0 {
		return model.NewTable(0, 0)
	}

	table := model.NewTable(rows, cols)
	table.HasGrid = true
	table.BBox = g.BBox()

	cells := make([][][]placed, rows)
	for i := range cells {
		cells[i] = make([][]placed, cols)
	}

	ordered := append([]text.TextFragment(nil), frags...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y > ordered[j].Y
		}
		return ordered[i].X < ordered[j].X
	})

	for _, f := range ordered {
		t := f.Text
		if strip != "" {
			t = strings.Trim(t, strip)
		}
		if t == "" {
			continue
		}
		midX := f.X + f.Width/2
		midY := f.Y + f.Height/2
		row, col, ok := g.locate(midX, midY)
		if !ok {
			continue
		}
		cells[row][col] = append(cells[row][col], placed{frag: f, text: t})
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			table.Rows[i][j].Text = assembleCell(cells[i][j])
		}
	}

	for _, dir := range copyDirs {
		copyText(table, dir)
	}

	return table
}

// placed is a fragment assigned to a cell, with strip characters
// already removed from its text.
type placed struct {
	frag text.TextFragment
	text string
}

// assembleCell joins a cell's fragments. Fragments sharing a baseline
// within half a line height join without a space when nearly adjacent,
// otherwise with one space; a baseline change also inserts a space.
func assembleCell(frags []placed) string {
	if len(frags) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(frags[0].text)
	for i := 1; i < len(frags); i++ {
		prev, cur := frags[i-1], frags[i]

		sameLine := sameBaseline(prev.frag, cur.frag)
		gap := cur.frag.X - (prev.frag.X + prev.frag.Width)
		if sameLine && gap <= charJoinTolerance {
			sb.WriteString(cur.text)
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(cur.text)
	}
	return strings.TrimSpace(sb.String())
}

func sameBaseline(a, b text.TextFragment) bool {
	h := a.Height
	if b.Height > h {
		h = b.Height
	}
	if h == 0 {
		h = 1
	}
	d := a.Y - b.Y
	if d < 0 {
		d = -d
	}
	return d <= h/2
}

// locate returns the cell containing the point, if any. Row zero is the
// top row; rows span (RowYs[i+1], RowYs[i]] going down the page. The
// grid's outer right and bottom edges belong to the last column and
// row, so a point exactly on the border is not lost.
func (g *Grid) locate(x, y float64) (row, col int, ok bool) {
	nr, nc := g.RowCount(), g.ColCount()

	col = -1
	for j := 0; j < nc; j++ {
		if x >= g.ColXs[j] && x < g.ColXs[j+1] {
			col = j
			break
		}
	}
	if col < 0 && nc > 0 && x == g.ColXs[nc] {
		col = nc - 1
	}

	row = -1
	for i := 0; i < nr; i++ {
		if y <= g.RowYs[i] && y > g.RowYs[i+1] {
			row = i
			break
		}
	}
	if row < 0 && nr > 0 && y == g.RowYs[nr] {
		row = nr - 1
	}

	if row < 0 || col < 0 {
		return 0, 0, false
	}
	return row, col, true
}

// copyText fills empty cells from the neighbor above (CopyVertical) or
// to the left (CopyHorizontal).
func copyText(t *model.Table, dir CopyDirection) {
	switch dir {
	case CopyHorizontal:
		for i := range t.Rows {
			for j := 1; j < len(t.Rows[i]); j++ {
				if t.Rows[i][j].Text == "" {
					t.Rows[i][j].Text = t.Rows[i][j-1].Text
				}
			}
		}
	case CopyVertical:
		for i := 1; i < len(t.Rows); i++ {
			for j := range t.Rows[i] {
				if t.Rows[i][j].Text == "" {
					t.Rows[i][j].Text = t.Rows[i-1][j].Text
				}
			}
		}
	}
}

// TableRows flattens a table into row/cell text.
func TableRows(t *model.Table) [][]string {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = cell.Text
		}
	}
	return rows
}
