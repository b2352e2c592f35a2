package normalize

import (
	"regexp"
	"strings"
)

// spaceReplacer converts the non-ASCII spaces the source documents use
// (ideographic space U+3000, no-break space U+00A0) to ASCII spaces.
// Go's \s is ASCII-only, so these must be handled before the regexes.
var spaceReplacer = strings.NewReplacer("\u3000", " ", "\u00a0", " ")

var (
	reFullParen     = regexp.MustCompile(`（([^）]*)）`)
	reParenSpaces   = regexp.MustCompile(`[ \t\x{3000}]+`)
	reAfterGokei    = regexp.MustCompile(`(合計量として)\s+`)
	reBeforeKokusai = regexp.MustCompile(`\s+国際単位`)
	reEthylComma    = regexp.MustCompile(`(^|[^,])\s2－エチル`)
	reSpaceRun      = regexp.MustCompile(`[ \t]+`)
	reWhitespace    = regexp.MustCompile(`\s+`)
	reDigits        = regexp.MustCompile(`^\d+$`)
)

// CleanCell normalizes a single cell of extracted text. Ideographic
// spaces become ASCII spaces, spaces inside full-width parentheses are
// removed ("（８ ～ 10 E.O. ）" becomes "（８～10E.O.）"), spacing around
// the fixed phrases 合計量として and 国際単位 is repaired, and runs of
// whitespace collapse to a single space.
func CleanCell(s string) string {
	y := spaceReplacer.Replace(s)

	y = reFullParen.ReplaceAllStringFunc(y, func(m string) string {
		inner := strings.TrimSuffix(strings.TrimPrefix(m, "（"), "）")
		return "（" + reParenSpaces.ReplaceAllString(inner, "") + "）"
	})

	y = reAfterGokei.ReplaceAllString(y, "$1")
	y = reBeforeKokusai.ReplaceAllString(y, "国際単位")
	y = reEthylComma.ReplaceAllString(y, "${1},2－エチル")

	y = reSpaceRun.ReplaceAllString(y, " ")
	return strings.TrimSpace(y)
}

// CleanRows applies CleanCell to every cell.
func CleanRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = CleanCell(cell)
		}
	}
	return out
}

// NormalizeSpace collapses all whitespace (including U+3000 and U+00A0)
// to single ASCII spaces and trims the result.
func NormalizeSpace(s string) string {
	s = spaceReplacer.Replace(s)
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// stripAllSpace removes every whitespace character. Used for caption
// comparison where the source splits words arbitrarily.
func stripAllSpace(s string) string {
	s = spaceReplacer.Replace(s)
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, ""))
}

// digitRowMinRatio is the fraction of non-empty cells that must be
// integer-only for a row to be treated as a page-number artifact.
const digitRowMinRatio = 0.8

// IsDigitRow reports whether a row consists (mostly) of bare integers.
// Such rows are column-number rulers emitted by the source layout.
func IsDigitRow(cells []string) bool {
	var nonEmpty, digitOnly int
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		nonEmpty++
		if reDigits.MatchString(c) {
			digitOnly++
		}
	}
	if nonEmpty == 0 {
		return false
	}
	return float64(digitOnly)/float64(nonEmpty) >= digitRowMinRatio
}

// IsCaptionRow reports whether the row is a repeated 成分名 column
// caption rather than data.
func IsCaptionRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	return stripAllSpace(cells[0]) == "成分名"
}

// FilterRows drops digit-only rows and 成分名 caption rows.
func FilterRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if IsDigitRow(row) || IsCaptionRow(row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// SplitTokens splits a cell on whitespace, dropping empty tokens.
func SplitTokens(s string) []string {
	return strings.Fields(s)
}

// JoinTokens joins tokens with single spaces, skipping empty entries.
func JoinTokens(tokens []string) string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// reAmountToken matches an amount token that belongs in the value
// column: digits (optionally decimal) immediately followed by a
// full-width ｇ or 国際単位.
var reAmountToken = regexp.MustCompile(`^\d+(?:\.\d+)?(?:ｇ|国際単位)$`)

// MoveAmountTokens migrates amount tokens that the extraction placed in
// the first column into the second column. A token found at position i
// of column one is inserted at position i-1 of column two, preserving
// the pairing between ingredient names and their amounts. Tokens at
// position zero stay put.
func MoveAmountTokens(rows [][]string) [][]string {
	out := copyRows(rows)
	for r := range out {
		if len(out[r]) < 2 {
			continue
		}
		c1 := SplitTokens(out[r][0])
		c2 := SplitTokens(out[r][1])

		var hits []int
		for i, tok := range c1 {
			if reAmountToken.MatchString(tok) {
				hits = append(hits, i)
			}
		}
		for k := len(hits) - 1; k >= 0; k-- {
			i := hits[k]
			insertPos := i - 1
			if insertPos < 0 {
				continue
			}
			moved := c1[i]
			c1 = append(c1[:i], c1[i+1:]...)
			if insertPos > len(c2) {
				pad := make([]string, insertPos-len(c2))
				c2 = append(c2, pad...)
			}
			c2 = append(c2[:insertPos], append([]string{moved}, c2[insertPos:]...)...)
		}
		out[r][0] = JoinTokens(c1)
		out[r][1] = JoinTokens(c2)
	}
	return out
}

// SquashLeftColumn collapses the first column to a single token when it
// holds three or more tokens while the second column holds exactly one.
// That shape means one ingredient name was broken across lines, not
// several ingredients sharing one amount.
func SquashLeftColumn(rows [][]string) [][]string {
	out := copyRows(rows)
	for r := range out {
		if len(out[r]) < 2 {
			continue
		}
		c1 := SplitTokens(out[r][0])
		c2 := SplitTokens(out[r][1])
		if len(c1) >= 3 && len(c2) == 1 {
			out[r][0] = strings.Join(c1, "")
		}
	}
	return out
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		copy(out[i], row)
	}
	return out
}
