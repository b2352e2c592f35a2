package lattice

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PageSpecAll selects every page of the document.
const PageSpecAll = "all"

// ParsePages resolves a page specification against a document's page
// count. Accepted forms are "all", single pages ("3"), ranges ("2-10"),
// and comma-separated mixes ("2,5-7,12"). Pages are 1-indexed in the
// spec; the result is a sorted list of unique 0-indexed page numbers.
func ParsePages(spec string, pageCount int) ([]int, error) {
	if pageCount < 0 {
		return nil, fmt.Errorf("negative page count %d", pageCount)
	}

	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, PageSpecAll) {
		out := make([]int, pageCount)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, err := parsePart(part)
		if err != nil {
			return nil, err
		}
		if lo < 1 || hi > pageCount {
			return nil, fmt.Errorf("page range %q outside document (1-%d)", part, pageCount)
		}
		for p := lo; p <= hi; p++ {
			seen[p-1] = true
		}
	}

	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out, nil
}

func parsePart(part string) (lo, hi int, err error) {
	if i := strings.Index(part, "-"); i >= 0 {
		lo, err = strconv.Atoi(strings.TrimSpace(part[:i]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid page range %q", part)
		}
		hi, err = strconv.Atoi(strings.TrimSpace(part[i+1:]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid page range %q", part)
		}
		if hi < lo {
			return 0, 0, fmt.Errorf("descending page range %q", part)
		}
		return lo, hi, nil
	}

	p, err := strconv.Atoi(part)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page %q", part)
	}
	return p, p, nil
}
