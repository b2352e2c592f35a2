package webdoc

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"sheetfeed/internal/normalize"
)

// Table holds the rows of one standards table, cells as cleaned text.
type Table struct {
	Rows [][]string
}

// Reader provides access to a parsed MHLW document page.
type Reader struct {
	doc *html.Node
}

// Parse parses an HTML document from r.
func Parse(r io.Reader) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Reader{doc: doc}, nil
}

// ParseString parses an HTML document held in memory.
func ParseString(s string) (*Reader, error) {
	return Parse(strings.NewReader(s))
}

// Contents locates the document body node: the element with
// id="contents", or failing that the first element with a "contents"
// class. Returns nil when the page has neither.
func (r *Reader) Contents() *html.Node {
	if n := findNode(r.doc, func(n *html.Node) bool {
		return getAttr(n, "id") == "contents"
	}); n != nil {
		return n
	}
	return findNode(r.doc, func(n *html.Node) bool {
		return hasClass(n, "contents")
	})
}

// Tables collects the standards tables under the contents node. It
// returns an error when the page has no contents node at all; a page
// with a contents node but no tables yields an empty slice.
func (r *Reader) Tables() ([]*Table, error) {
	contents := r.Contents()
	if contents == nil {
		return nil, fmt.Errorf("no #contents or .contents node in document")
	}

	// Document sections are divs with an id. Prefer direct children;
	// some revisions of the viewer add an intermediate wrapper.
	blocks := directChildren(contents, func(n *html.Node) bool {
		return n.Data == "div" && getAttr(n, "id") != ""
	})
	if len(blocks) == 0 {
		blocks = findAll(contents, func(n *html.Node) bool {
			return n.Data == "div" && getAttr(n, "id") != ""
		})
	}

	var tables []*Table
	for _, block := range blocks {
		for _, frame := range findAll(block, func(n *html.Node) bool {
			return n.Data == "div" && hasClass(n, "table_frame")
		}) {
			wrappers := findAll(frame, isTableWrapper)
			if len(wrappers) > 0 {
				for _, wp := range wrappers {
					tables = append(tables, collectTables(wp)...)
				}
			} else {
				tables = append(tables, collectTables(frame)...)
			}
		}
	}
	return tables, nil
}

func isTableWrapper(n *html.Node) bool {
	if n.Data != "div" {
		return false
	}
	return hasClass(n, "table_wrpper") || hasClass(n, "table_wrapper") || hasClass(n, "table-wrapper")
}

// collectTables reads every table.b-on under n.
func collectTables(n *html.Node) []*Table {
	var out []*Table
	for _, tbl := range findAll(n, func(n *html.Node) bool {
		return n.Data == "table" && hasClass(n, "b-on")
	}) {
		out = append(out, readTable(tbl))
	}
	return out
}

// readTable extracts the data rows of one table. Only class-less <tr>
// elements directly under the tbody count; rows with a class are
// decoration.
func readTable(tbl *html.Node) *Table {
	body := firstChildElement(tbl, "tbody")
	if body == nil {
		body = tbl
	}

	t := &Table{}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "tr" {
			continue
		}
		if getAttr(c, "class") != "" {
			continue
		}
		t.Rows = append(t.Rows, readRow(c))
	}
	return t
}

// readRow joins the <p> texts of each direct <td> into one cell string.
func readRow(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "td" {
			continue
		}
		var texts []string
		for _, p := range findAll(c, func(n *html.Node) bool { return n.Data == "p" }) {
			if t := strippedText(p); t != "" {
				texts = append(texts, t)
			}
		}
		cells = append(cells, strings.Join(texts, " "))
	}
	return cells
}

// expectedHeader is the caption row of every standards table; it is
// skipped by callers via IsHeaderRow.
var expectedHeader = []string{
	"粘膜に使用されることがない化粧品のうち洗い流すもの",
	"粘膜に使用されることがない化粧品のうち洗い流さないもの",
	"粘膜に使用されることがある化粧品",
}

// IsHeaderRow reports whether cells are the per-target column captions.
func IsHeaderRow(cells []string) bool {
	if len(cells) != len(expectedHeader) {
		return false
	}
	for i, c := range cells {
		if normalize.NormalizeSpace(c) != normalize.NormalizeSpace(expectedHeader[i]) {
			return false
		}
	}
	return true
}

// IframeSrc returns the src of the first iframe in the document. The
// t_doc viewer serves the actual document in an iframe of the outer
// page.
func (r *Reader) IframeSrc() (string, bool) {
	n := findNode(r.doc, func(n *html.Node) bool {
		return n.Data == "iframe" && getAttr(n, "src") != ""
	})
	if n == nil {
		return "", false
	}
	return getAttr(n, "src"), true
}

// ---- DOM helpers ----

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// findNode returns the first element node (depth-first) matching pred.
func findNode(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every element node (depth-first) matching pred,
// excluding n itself.
func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && pred(c) {
			out = append(out, c)
		}
		out = append(out, findAll(c, pred)...)
	}
	return out
}

func directChildren(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func firstChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

// strippedText mirrors stripped-string extraction: each text node is
// trimmed, empties are dropped, and the pieces join with single spaces.
// Ideographic spaces become ASCII spaces.
func strippedText(n *html.Node) string {
	var pieces []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			t := strings.TrimSpace(strings.ReplaceAll(n.Data, "　", " "))
			if t != "" {
				pieces = append(pieces, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(strings.Join(pieces, " "))
}
