package lattice

import (
	"fmt"
	"sort"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
)

// DefaultLineScale matches the typical ruling length of standards
// tables: rulings shorter than 1/40 of the page dimension are noise.
const DefaultLineScale = 40.0

// Warning reports a non-fatal extraction problem on one page.
type Warning struct {
	Page    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("page %d: %s", w.Page, w.Message)
}

// PageTable is one detected table with its position in the document.
type PageTable struct {
	Page  int // 1-indexed source page
	Order int // reading order within the page
	Table *model.Table
}

// options holds extractor configuration. Each fluent method operates on
// a copy, making chained extractors safe to fork.
type options struct {
	pages     string
	exclude   map[int]bool
	lineScale float64
	copyDirs  []CopyDirection
	stripText string
	minRows   int
	minCols   int
	grid      GridConfig
}

func defaultExtractOptions() options {
	return options{
		pages:     PageSpecAll,
		lineScale: DefaultLineScale,
		minRows:   2,
		minCols:   2,
		grid:      DefaultGridConfig(),
	}
}

func (o options) clone() options {
	newOpts := o
	if o.exclude != nil {
		newOpts.exclude = make(map[int]bool, len(o.exclude))
		for k, v := range o.exclude {
			newOpts.exclude[k] = v
		}
	}
	if o.copyDirs != nil {
		newOpts.copyDirs = append([]CopyDirection(nil), o.copyDirs...)
	}
	return newOpts
}

// Extractor provides a fluent interface for lattice table extraction.
// Configuration methods return a new Extractor, so a configured chain
// can be shared safely.
type Extractor struct {
	filename   string
	r          *reader.Reader
	ownsReader bool
	opened     bool
	opts       options
	err        error
}

// Open prepares an extractor for the given PDF file. The file is opened
// lazily by the first terminal operation.
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		opts:     defaultExtractOptions(),
	}
}

// FromReader wraps an already-open PDF reader. The caller keeps
// ownership and must close it.
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{
		r:      r,
		opened: true,
		opts:   defaultExtractOptions(),
	}
}

func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:   e.filename,
		r:          e.r,
		ownsReader: e.ownsReader,
		opened:     e.opened,
		opts:       e.opts.clone(),
		err:        e.err,
	}
}

func (e *Extractor) ensureReader() error {
	if e.opened {
		return nil
	}
	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}
	r, err := reader.Open(e.filename)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	e.r = r
	e.ownsReader = true
	e.opened = true
	return nil
}

// Close releases the underlying reader if this extractor owns it. It is
// safe to call multiple times.
func (e *Extractor) Close() error {
	if e.ownsReader && e.r != nil {
		err := e.r.Close()
		e.r = nil
		e.ownsReader = false
		return err
	}
	return nil
}

// Pages restricts extraction to a page specification: "all", "2-10",
// "2,4,9" or mixes thereof (1-indexed).
func (e *Extractor) Pages(spec string) *Extractor {
	newExt := e.clone()
	newExt.opts.pages = spec
	return newExt
}

// Exclude skips the given pages (1-indexed) even when the page
// specification selects them.
func (e *Extractor) Exclude(pages ...int) *Extractor {
	newExt := e.clone()
	if newExt.opts.exclude == nil {
		newExt.opts.exclude = make(map[int]bool, len(pages))
	}
	for _, p := range pages {
		newExt.opts.exclude[p] = true
	}
	return newExt
}

// LineScale sets the ruling sensitivity. The minimum ruling length is
// the page dimension divided by the scale; larger values detect
// smaller tables. Non-positive values fall back to the default.
func (e *Extractor) LineScale(scale float64) *Extractor {
	newExt := e.clone()
	if scale <= 0 {
		scale = DefaultLineScale
	}
	newExt.opts.lineScale = scale
	return newExt
}

// CopyText enables spanned-cell filling along the given directions.
func (e *Extractor) CopyText(dirs ...CopyDirection) *Extractor {
	newExt := e.clone()
	newExt.opts.copyDirs = append(newExt.opts.copyDirs, dirs...)
	return newExt
}

// StripText trims the given characters from every text fragment before
// cell assembly.
func (e *Extractor) StripText(chars string) *Extractor {
	newExt := e.clone()
	newExt.opts.stripText = chars
	return newExt
}

// MinSize drops detected tables smaller than rows x cols.
func (e *Extractor) MinSize(rows, cols int) *Extractor {
	newExt := e.clone()
	newExt.opts.minRows = rows
	newExt.opts.minCols = cols
	return newExt
}

// WithGridConfig overrides the ruling merge tolerances.
func (e *Extractor) WithGridConfig(cfg GridConfig) *Extractor {
	newExt := e.clone()
	newExt.opts.grid = cfg
	return newExt
}

// PageCount returns the number of pages in the document. The reader
// remains open.
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureReader(); err != nil {
		return 0, err
	}
	return e.r.PageCount()
}

// Tables runs lattice extraction over the selected pages. This is a
// terminal operation that closes an owned reader. Pages that fail to
// parse produce warnings rather than aborting the run; the error return
// covers failures that invalidate the whole document.
func (e *Extractor) Tables() ([]PageTable, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	if err := e.ensureReader(); err != nil {
		return nil, nil, err
	}
	defer e.Close()

	count, err := e.r.PageCount()
	if err != nil {
		return nil, nil, fmt.Errorf("page count: %w", err)
	}
	pageIdx, err := ParsePages(e.opts.pages, count)
	if err != nil {
		return nil, nil, err
	}

	var (
		out      []PageTable
		warnings []Warning
	)
	for _, idx := range pageIdx {
		pageNo := idx + 1
		if e.opts.exclude[pageNo] {
			continue
		}
		tables, err := e.extractPage(idx)
		if err != nil {
			warnings = append(warnings, Warning{Page: pageNo, Message: err.Error()})
			continue
		}
		for order, t := range tables {
			out = append(out, PageTable{Page: pageNo, Order: order, Table: t})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Order < out[j].Order
	})
	return out, warnings, nil
}

// extractPage detects tables on a single page (0-indexed).
func (e *Extractor) extractPage(idx int) ([]*model.Table, error) {
	page, err := e.r.GetPage(idx)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}

	frags, err := e.r.ExtractTextFragments(page)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}

	data, err := pageContentBytes(page)
	if err != nil {
		return nil, fmt.Errorf("decoding content stream: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	ge := graphicsstate.NewGraphicsExtractor()
	if err := ge.ExtractFromBytes(data); err != nil {
		return nil, fmt.Errorf("extracting graphics: %w", err)
	}

	width, err := page.Width()
	if err != nil || width <= 0 {
		width = 612 // US Letter fallback
	}
	height, err := page.Height()
	if err != nil || height <= 0 {
		height = 792
	}

	hr := BuildRulings(ge.GetHorizontalLines(), true, width/e.opts.lineScale, e.opts.grid)
	vr := BuildRulings(ge.GetVerticalLines(), false, height/e.opts.lineScale, e.opts.grid)

	var tables []*model.Table
	for _, g := range AssembleGrids(hr, vr, e.opts.grid) {
		t := BuildTable(g, frags, e.opts.copyDirs, e.opts.stripText)
		if t.RowCount() < e.opts.minRows || t.ColCount() < e.opts.minCols {
			continue
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// pageContentBytes decodes and concatenates a page's content streams.
func pageContentBytes(page *pages.Page) ([]byte, error) {
	contents, err := page.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to get contents: %w", err)
	}

	var allData []byte
	for _, contentObj := range contents {
		stream, ok := contentObj.(*core.Stream)
		if !ok {
			continue
		}
		data, err := stream.Decode()
		if err != nil {
			return nil, fmt.Errorf("failed to decode content stream: %w", err)
		}
		allData = append(allData, data...)
	}
	return allData, nil
}
