// Package pipeline wires the full extraction runs: fetch a source
// document, detect its tables, normalize the Japanese text, map rows to
// records and append them to the spreadsheet.
//
// Two runs exist. The PDF run extracts lattice tables from the
// ministry's published PDF. The HTML run reads the same standards from
// the online document viewer.
package pipeline
