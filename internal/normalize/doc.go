// Package normalize cleans Japanese cell text extracted from MHLW
// concentration-standard tables.
//
// Extracted cells carry artifacts of the source layout: ideographic
// spaces, spaces injected inside full-width parentheses by line breaks,
// and tokens that belong to a neighboring column. The functions here
// repair cell text, drop structural rows (digit-only page rows and
// repeated 成分名 caption rows), and rearrange tokens so that each row
// can be mapped one-to-one onto records.
//
// All operations work on [][]string row data and are idempotent.
package normalize
