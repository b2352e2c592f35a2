package record

import (
	"regexp"
	"strings"

	"sheetfeed/internal/normalize"
)

// Unit values recorded in the 単位 column.
const (
	UnitGram          = "g"
	UnitInternational = "国際単位"
)

// totalPhrase marks an amount that applies to the sum of several
// ingredients; it moves from the value into the note column.
const totalPhrase = "合計量として"

// Record is one ingredient row bound for the spreadsheet.
type Record struct {
	Ingredient string `json:"ingredient"`
	Condition  string `json:"condition,omitempty"`
	// Amounts holds up to four concentration limits: general,
	// non-mucosal rinse-off, non-mucosal leave-on, mucosal.
	Amounts   [4]string `json:"amounts"`
	Unit      string    `json:"unit"`
	Note      string    `json:"note,omitempty"`
	SourceURL string    `json:"url"`
}

// HasValues reports whether the record carries any value beyond the
// ingredient name. Records without values are layout artifacts and are
// not written to the sheet.
func (r Record) HasValues() bool {
	for _, a := range r.Amounts {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return strings.TrimSpace(r.Unit) != "" || strings.TrimSpace(r.Note) != ""
}

// SheetRow renders the record as one spreadsheet row, columns A through
// O. Column layout: A change flag, B date, C group ID, D ingredient,
// E regulation class (blank), F general limit, G usage condition,
// H non-mucosal rinse-off limit, I non-mucosal leave-on limit,
// J mucosal limit, K unit, L note, M/N reserved, O source URL.
func (r Record) SheetRow(date string) []interface{} {
	return []interface{}{
		0,
		date,
		0,
		r.Ingredient,
		"",
		r.Amounts[0],
		r.Condition,
		r.Amounts[1],
		r.Amounts[2],
		r.Amounts[3],
		r.Unit,
		r.Note,
		"",
		"",
		r.SourceURL,
	}
}

var (
	reUnitChars  = regexp.MustCompile(`(?:\s*ｇ\s*|\s*国際単位\s*)`)
	reAnyGram    = regexp.MustCompile(`[gｇ]`)
	reBareNumber = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// stripTotal removes the 合計量として phrase and reports whether it was
// present.
func stripTotal(s string) (string, bool) {
	if strings.Contains(s, totalPhrase) {
		return strings.TrimSpace(strings.ReplaceAll(s, totalPhrase, "")), true
	}
	return s, false
}

// stripAmountUnits removes full-width gram and 国際単位 markers from a
// lattice amount token.
func stripAmountUnits(s string) string {
	return strings.TrimSpace(reUnitChars.ReplaceAllString(s, ""))
}

func containsInternational(values ...string) bool {
	for _, v := range values {
		if strings.Contains(v, UnitInternational) {
			return true
		}
	}
	return false
}

// incompatiblePhrase reports whether the value carries a 配合負荷 or
// 配合不可 flag, which voids the unit.
func incompatiblePhrase(s string) bool {
	return strings.Contains(s, "配合負荷") || strings.Contains(s, "配合不可")
}

// FromLatticeRows expands cleaned lattice table rows into records. Each
// visual row may hold several ingredients as tokens of column one paired
// positionally with amount tokens of column two. When column one has
// more tokens than column two, its first token is a usage condition
// shared by the row. Tables of four or more columns carry three extra
// per-target limits; a 合計量として amount found in any value column
// becomes the general limit with a note.
func FromLatticeRows(rows [][]string, srcURL string) []Record {
	var recs []Record
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}

		ncols := len(row)
		use4 := ncols >= 4

		c1 := normalize.SplitTokens(row[0])
		var c2, c3, c4 []string
		if ncols >= 2 {
			c2 = normalize.SplitTokens(row[1])
		}
		if ncols >= 3 {
			c3 = normalize.SplitTokens(row[2])
		}
		if ncols >= 4 {
			c4 = normalize.SplitTokens(row[3])
		}

		equalLen := len(c1) == len(c2)
		cond := ""
		if !equalLen && len(c1) > 0 {
			cond = c1[0]
			c1 = c1[1:]
		}

		for i := range c1 {
			rec := Record{
				Ingredient: c1[i],
				SourceURL:  srcURL,
			}
			if !equalLen {
				rec.Condition = cond
			}

			if !use4 {
				r1Raw := tokenAt(c2, i)
				r1NoTotal, hadTotal := stripTotal(r1Raw)
				rec.Amounts[0] = stripAmountUnits(r1NoTotal)
				rec.Unit = UnitGram
				if containsInternational(r1Raw) {
					rec.Unit = UnitInternational
				}
				if incompatiblePhrase(rec.Amounts[0]) {
					rec.Unit = ""
				}
				if hadTotal {
					rec.Note = totalPhrase
				}
			} else {
				v2 := tokenAt(c2, i)
				v3 := tokenAt(c3, i)
				v4 := tokenAt(c4, i)

				r1Raw := ""
				hadTotal := false
				for _, cand := range []string{v2, v3, v4} {
					if strings.Contains(cand, totalPhrase) {
						r1Raw = cand
						_, hadTotal = stripTotal(cand)
						break
					}
				}

				if r1Raw != "" {
					noTotal, _ := stripTotal(r1Raw)
					rec.Amounts[0] = stripAmountUnits(noTotal)
				}
				rec.Amounts[1] = stripAmountUnits(v2)
				rec.Amounts[2] = stripAmountUnits(v3)
				rec.Amounts[3] = stripAmountUnits(v4)

				rec.Unit = UnitGram
				if containsInternational(r1Raw, v2, v3, v4) {
					rec.Unit = UnitInternational
				}
				if incompatiblePhrase(rec.Amounts[0]) {
					rec.Unit = ""
				}
				if hadTotal {
					rec.Note = totalPhrase
				}
			}

			recs = append(recs, rec)
		}
	}
	return recs
}

func tokenAt(tokens []string, i int) string {
	if i < len(tokens) {
		return tokens[i]
	}
	return ""
}

// splitValueUnitNote splits an HTML value cell into its numeric value,
// unit and note components.
func splitValueUnitNote(val string) (clean, unit, note string) {
	s := normalize.NormalizeSpace(val)
	if strings.Contains(s, totalPhrase) {
		s = strings.TrimSpace(strings.ReplaceAll(s, totalPhrase, ""))
		note = totalPhrase
	}
	if strings.Contains(s, UnitInternational) {
		unit = UnitInternational
		s = strings.ReplaceAll(s, UnitInternational, "")
	}
	if reAnyGram.MatchString(s) {
		if unit == "" {
			unit = UnitGram
		}
		s = reAnyGram.ReplaceAllString(s, "")
	}
	s = normalize.NormalizeSpace(s)
	if reBareNumber.MatchString(s) && unit == "" {
		unit = UnitGram
	}
	return s, unit, note
}

// valueOnly strips units and the total phrase from an HTML value cell,
// keeping just the number.
func valueOnly(val string) string {
	s := normalize.NormalizeSpace(val)
	s = strings.ReplaceAll(s, totalPhrase, "")
	s = strings.ReplaceAll(s, UnitInternational, "")
	s = reAnyGram.ReplaceAllString(s, "")
	return normalize.NormalizeSpace(s)
}

// FromHTMLRow maps one HTML table row onto a record. Rows come in three
// shapes: name only, name plus one general limit, or name plus three
// per-target limits (rinse-off, leave-on, mucosal) where the first value
// cell also determines unit and note. Any other width falls back to the
// two-cell handling.
func FromHTMLRow(cells []string, srcURL string) Record {
	rec := Record{SourceURL: srcURL}
	if len(cells) == 0 {
		return rec
	}
	rec.Ingredient = normalize.NormalizeSpace(cells[0])

	switch len(cells) {
	case 1:
		return rec
	case 4:
		clean, unit, note := splitValueUnitNote(cells[1])
		rec.Amounts[1] = clean
		rec.Unit = unit
		rec.Note = note
		rec.Amounts[2] = valueOnly(cells[2])
		rec.Amounts[3] = valueOnly(cells[3])
		return rec
	default:
		clean, unit, note := splitValueUnitNote(cells[1])
		rec.Amounts[0] = clean
		rec.Unit = unit
		rec.Note = note
		return rec
	}
}
