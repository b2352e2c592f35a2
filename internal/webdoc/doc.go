// Package webdoc reads concentration-standard tables from the MHLW
// HTML publication (the t_doc document viewer).
//
// The viewer nests the document body in a #contents division and wraps
// each standards table in a div.table_frame, with the table itself
// carrying the b-on class. Data rows are the class-less <tr> elements
// of the tbody; styled rows are spacers. Cell text lives in <p>
// elements inside each <td>.
//
// The parser is intentionally specific to this layout. It tolerates the
// site's historic "table_wrpper" misspelling alongside the corrected
// wrapper class names.
package webdoc
