// Package lattice extracts bordered tables from PDF pages.
//
// Lattice extraction targets tables whose cells are delimited by drawn
// ruling lines, the dominant style of government-published standards
// documents. Detection works purely from the page's vector graphics:
//
//  1. Stroked line segments are harvested from the content stream.
//  2. Segments are merged into rulings: collinear segments within the
//     snap tolerance collapse to one axis position, and small gaps
//     between them are closed.
//  3. Rulings that intersect form connected lattices; each lattice with
//     at least two rulings per axis becomes a table grid.
//  4. Text fragments are assigned to grid cells by midpoint, and empty
//     cells optionally inherit text from a neighbor to resolve spanned
//     cells (the copy-text rule).
//
// The line-scale parameter controls how short a segment may be and
// still count as a ruling: the minimum length is the page dimension
// divided by the scale, so larger values admit smaller tables.
//
// Usage follows the fluent style of the tabula extractor:
//
//	tables, warnings, err := lattice.Open("standards.pdf").
//	    Pages("2-12").
//	    LineScale(40).
//	    CopyText(lattice.CopyHorizontal, lattice.CopyVertical).
//	    StripText("\n").
//	    Tables()
package lattice
