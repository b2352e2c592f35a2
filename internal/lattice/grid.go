package lattice

import (
	"math"
	"sort"

	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/model"
)

// GridConfig controls ruling merge and lattice assembly.
type GridConfig struct {
	// SnapTolerance merges rulings whose axis positions differ by no
	// more than this many points.
	SnapTolerance float64

	// JoinGap closes gaps between collinear segments: segments of one
	// ruling separated by at most this many points are joined.
	JoinGap float64

	// IntersectTolerance is the slack allowed when testing whether a
	// horizontal and a vertical ruling cross.
	IntersectTolerance float64
}

// DefaultGridConfig returns the tolerances that work for print-quality
// PDFs.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		SnapTolerance:      2.0,
		JoinGap:            2.0,
		IntersectTolerance: 2.0,
	}
}

// Ruling is a merged axis-aligned line: a horizontal ruling has Pos on
// the Y axis and Lo..Hi spanning X; a vertical ruling the reverse.
type Ruling struct {
	Pos    float64
	Lo, Hi float64
}

// Length returns the ruling's extent.
func (r Ruling) Length() float64 {
	return r.Hi - r.Lo
}

// BuildRulings merges raw stroked segments into rulings. Segments
// shorter than minLen are discarded; survivors are grouped by axis
// position within the snap tolerance, and segments of a group whose
// gaps do not exceed JoinGap are joined into continuous spans.
func BuildRulings(lines []graphicsstate.ExtractedLine, horizontal bool, minLen float64, cfg GridConfig) []Ruling {
	segs := make([]segment, 0, len(lines))
	for _, ln := range lines {
		var s segment
		if horizontal {
			if !ln.IsHorizontal {
				continue
			}
			s.pos = (ln.Start.Y + ln.End.Y) / 2
			s.lo = math.Min(ln.Start.X, ln.End.X)
			s.hi = math.Max(ln.Start.X, ln.End.X)
		} else {
			if !ln.IsVertical {
				continue
			}
			s.pos = (ln.Start.X + ln.End.X) / 2
			s.lo = math.Min(ln.Start.Y, ln.End.Y)
			s.hi = math.Max(ln.Start.Y, ln.End.Y)
		}
		if s.hi-s.lo < minLen {
			continue
		}
		segs = append(segs, s)
	}
	if len(segs) == 0 {
		return nil
	}

	sort.Slice(segs, func(i, j int) bool { return segs[i].pos < segs[j].pos })

	// Group segments whose positions agree within the snap tolerance.
	var rulings []Ruling
	group := []segment{segs[0]}
	flush := func() {
		rulings = append(rulings, joinGroup(group, cfg.JoinGap)...)
	}
	for _, s := range segs[1:] {
		if s.pos-group[len(group)-1].pos <= cfg.SnapTolerance {
			group = append(group, s)
			continue
		}
		flush()
		group = []segment{s}
	}
	flush()

	return rulings
}

// segment is one raw stroked line before merging.
type segment struct {
	pos    float64
	lo, hi float64
}

// joinGroup merges the segments of one position group into spans. Each
// span of segments separated by at most joinGap becomes a single
// ruling at the group's mean position.
func joinGroup(group []segment, joinGap float64) []Ruling {
	var pos float64
	for _, s := range group {
		pos += s.pos
	}
	pos /= float64(len(group))

	sort.Slice(group, func(i, j int) bool { return group[i].lo < group[j].lo })

	var out []Ruling
	cur := Ruling{Pos: pos, Lo: group[0].lo, Hi: group[0].hi}
	for _, s := range group[1:] {
		if s.lo-cur.Hi <= joinGap {
			if s.hi > cur.Hi {
				cur.Hi = s.hi
			}
			continue
		}
		out = append(out, cur)
		cur = Ruling{Pos: pos, Lo: s.lo, Hi: s.hi}
	}
	out = append(out, cur)
	return out
}

// Grid is one detected table lattice. RowYs runs top to bottom
// (descending PDF Y), ColXs left to right.
type Grid struct {
	RowYs []float64
	ColXs []float64
}

// RowCount returns the number of cell rows.
func (g *Grid) RowCount() int {
	if len(g.RowYs) <= 1 {
		return 0
	}
	return len(g.RowYs) - 1
}

// ColCount returns the number of cell columns.
func (g *Grid) ColCount() int {
	if len(g.ColXs) <= 1 {
		return 0
	}
	return len(g.ColXs) - 1
}

// BBox returns the grid's bounding box.
func (g *Grid) BBox() model.BBox {
	if len(g.RowYs) == 0 || len(g.ColXs) == 0 {
		return model.BBox{}
	}
	return model.NewBBoxFromPoints(
		model.Point{X: g.ColXs[0], Y: g.RowYs[len(g.RowYs)-1]},
		model.Point{X: g.ColXs[len(g.ColXs)-1], Y: g.RowYs[0]},
	)
}

// Top returns the Y coordinate of the grid's top edge.
func (g *Grid) Top() float64 {
	if len(g.RowYs) == 0 {
		return 0
	}
	return g.RowYs[0]
}

// Left returns the X coordinate of the grid's left edge.
func (g *Grid) Left() float64 {
	if len(g.ColXs) == 0 {
		return 0
	}
	return g.ColXs[0]
}

// AssembleGrids groups rulings into connected lattices. A horizontal
// and a vertical ruling belong to the same lattice when they cross
// (within the intersect tolerance). Every connected component with at
// least two rulings on each axis yields a Grid; anything less cannot
// bound a cell.
func AssembleGrids(hs, vs []Ruling, cfg GridConfig) []*Grid {
	n := len(hs) + len(vs)
	if n == 0 {
		return nil
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	tol := cfg.IntersectTolerance
	for i, h := range hs {
		for j, v := range vs {
			crossesX := v.Pos >= h.Lo-tol && v.Pos <= h.Hi+tol
			crossesY := h.Pos >= v.Lo-tol && h.Pos <= v.Hi+tol
			if crossesX && crossesY {
				union(i, len(hs)+j)
			}
		}
	}

	type component struct {
		hPos []float64
		vPos []float64
	}
	comps := make(map[int]*component)
	for i, h := range hs {
		root := find(i)
		if comps[root] == nil {
			comps[root] = &component{}
		}
		comps[root].hPos = append(comps[root].hPos, h.Pos)
	}
	for j, v := range vs {
		root := find(len(hs) + j)
		if comps[root] == nil {
			comps[root] = &component{}
		}
		comps[root].vPos = append(comps[root].vPos, v.Pos)
	}

	var grids []*Grid
	for _, c := range comps {
		rows := snapPositions(c.hPos, cfg.SnapTolerance)
		cols := snapPositions(c.vPos, cfg.SnapTolerance)
		if len(rows) < 2 || len(cols) < 2 {
			continue
		}
		// Rows top to bottom: descending Y.
		sort.Sort(sort.Reverse(sort.Float64Slice(rows)))
		sort.Float64s(cols)
		grids = append(grids, &Grid{RowYs: rows, ColXs: cols})
	}

	// Reading order: top to bottom, then left to right.
	sort.Slice(grids, func(i, j int) bool {
		if grids[i].Top() != grids[j].Top() {
			return grids[i].Top() > grids[j].Top()
		}
		return grids[i].Left() < grids[j].Left()
	})
	return grids
}

// snapPositions deduplicates positions that agree within tol, averaging
// each cluster. The result is sorted ascending.
func snapPositions(values []float64, tol float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var out []float64
	sum, count := sorted[0], 1.0
	last := sorted[0]
	for _, v := range sorted[1:] {
		if v-last <= tol {
			sum += v
			count++
			last = v
			continue
		}
		out = append(out, sum/count)
		sum, count = v, 1
		last = v
	}
	out = append(out, sum/count)
	return out
}
