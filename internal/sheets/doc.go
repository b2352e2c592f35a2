// Package sheets appends extracted records to a Google Sheets
// spreadsheet.
//
// Records are written below the last occupied row of the worksheet so
// repeated runs accumulate rather than overwrite. The worksheet is
// created on first use when it does not exist.
package sheets
