// Package record maps cleaned table rows onto flat ingredient records
// and renders them as spreadsheet rows.
//
// Two mappings exist, matching the two source layouts:
//
//   - [FromLatticeRows] handles rows extracted from bordered PDF tables,
//     where one visual row packs several ingredients as whitespace
//     separated tokens and may carry a leading usage condition.
//   - [FromHTMLRow] handles rows read from the HTML publication, where
//     each row is a single ingredient with one, two or four value cells.
//
// A record's Unit is 国際単位 when any contributing raw cell mentions
// it, otherwise grams; rows flagged 配合負荷/配合不可 get an empty unit.
package record
