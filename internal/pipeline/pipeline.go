package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tsawler/tabula/format"

	"sheetfeed/internal/config"
	"sheetfeed/internal/fetch"
	"sheetfeed/internal/lattice"
	"sheetfeed/internal/normalize"
	"sheetfeed/internal/record"
	"sheetfeed/internal/webdoc"
)

// PagesAuto selects every page from the configured start page onward,
// skipping the cover page.
const PagesAuto = "auto"

// Sink receives the extracted records. *sheets.Client satisfies it.
type Sink interface {
	AppendRecords(ctx context.Context, records []record.Record) (int, error)
}

// Pipeline runs document extractions against one sink.
type Pipeline struct {
	log     *slog.Logger
	fetcher fetch.Fetcher
	sink    Sink
}

// New assembles a pipeline. A nil logger discards output.
func New(log *slog.Logger, fetcher fetch.Fetcher, sink Sink) *Pipeline {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{log: log, fetcher: fetcher, sink: sink}
}

// PDFOptions parameterizes one PDF run.
type PDFOptions struct {
	URL     string
	Lattice config.LatticeSettings
	JSONOut string // write extracted records as JSON to this path; empty disables
	DryRun  bool   // extract but do not append
}

// RunPDF downloads the PDF, extracts its lattice tables and appends the
// resulting records. It returns the number of appended rows.
func (p *Pipeline) RunPDF(ctx context.Context, opts PDFOptions) (int, error) {
	p.log.Info("fetching PDF", "url", opts.URL)
	data, err := p.fetcher.Fetch(ctx, opts.URL)
	if err != nil {
		return 0, err
	}
	if got := fetch.Sniff(data); got != format.PDF {
		return 0, fmt.Errorf("document at %s is not a PDF (detected %v)", opts.URL, got)
	}

	tmp, err := os.CreateTemp("", "sheetfeed-*.pdf")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}

	tables, warnings, err := p.extractTables(tmp.Name(), opts.Lattice)
	if err != nil {
		return 0, err
	}
	for _, w := range warnings {
		p.log.Warn("page skipped", "page", w.Page, "reason", w.Message)
	}
	if len(tables) == 0 {
		return 0, fmt.Errorf("no tables detected in %s; try a larger line scale or a narrower page range", opts.URL)
	}
	p.log.Info("tables detected", "count", len(tables))

	var records []record.Record
	for _, pt := range tables {
		rows := lattice.TableRows(pt.Table)
		rows = normalize.CleanRows(rows)
		rows = normalize.FilterRows(rows)
		rows = normalize.MoveAmountTokens(rows)
		rows = normalize.SquashLeftColumn(rows)
		recs := record.FromLatticeRows(rows, opts.URL)
		p.log.Debug("table mapped", "page", pt.Page, "order", pt.Order, "records", len(recs))
		records = append(records, recs...)
	}

	if opts.JSONOut != "" {
		if err := writeJSON(opts.JSONOut, records); err != nil {
			return 0, err
		}
		p.log.Info("records dumped", "path", opts.JSONOut, "count", len(records))
	}
	if opts.DryRun {
		p.log.Info("dry run, skipping append", "records", len(records))
		return 0, nil
	}
	return p.append(ctx, records)
}

// extractTables runs the lattice chain over the stored PDF.
func (p *Pipeline) extractTables(path string, ls config.LatticeSettings) ([]lattice.PageTable, []lattice.Warning, error) {
	ext := lattice.Open(path).
		LineScale(ls.LineScale).
		CopyText(lattice.CopyHorizontal, lattice.CopyVertical).
		StripText(ls.StripText)

	pagesSpec := ls.Pages
	if pagesSpec == PagesAuto {
		count, err := ext.PageCount()
		if err != nil {
			return nil, nil, fmt.Errorf("counting pages: %w", err)
		}
		if count < ls.AutoStartPage {
			return nil, nil, fmt.Errorf("document has %d pages, auto range starts at %d", count, ls.AutoStartPage)
		}
		pagesSpec = fmt.Sprintf("%d-%d", ls.AutoStartPage, count)
	}
	ext = ext.Pages(pagesSpec)
	if len(ls.ExcludePages) > 0 {
		ext = ext.Exclude(ls.ExcludePages...)
	}
	return ext.Tables()
}

// HTMLOptions parameterizes one HTML run.
type HTMLOptions struct {
	URL         string
	IframeFirst bool
	DryRun      bool
}

// RunHTML fetches the document viewer page, reads its standards tables
// and appends the resulting records. It returns the number of appended
// rows.
func (p *Pipeline) RunHTML(ctx context.Context, opts HTMLOptions) (int, error) {
	p.log.Info("fetching HTML", "url", opts.URL, "iframe_first", opts.IframeFirst)
	page, err := fetch.FetchHTML(ctx, p.fetcher, opts.URL, opts.IframeFirst)
	if err != nil {
		return 0, err
	}

	rd, err := webdoc.ParseString(page)
	if err != nil {
		return 0, fmt.Errorf("parsing document: %w", err)
	}
	tables, err := rd.Tables()
	if err != nil {
		return 0, err
	}
	if len(tables) == 0 {
		return 0, fmt.Errorf("no standards tables found at %s", opts.URL)
	}
	p.log.Info("tables detected", "count", len(tables))

	var records []record.Record
	for _, t := range tables {
		for _, cells := range t.Rows {
			if webdoc.IsHeaderRow(cells) {
				continue
			}
			rec := record.FromHTMLRow(cells, opts.URL)
			if rec.Ingredient == "" || !rec.HasValues() {
				continue
			}
			records = append(records, rec)
		}
	}

	if opts.DryRun {
		p.log.Info("dry run, skipping append", "records", len(records))
		return 0, nil
	}
	return p.append(ctx, records)
}

func (p *Pipeline) append(ctx context.Context, records []record.Record) (int, error) {
	if len(records) == 0 {
		p.log.Info("no records to append")
		return 0, nil
	}
	n, err := p.sink.AppendRecords(ctx, records)
	if err != nil {
		return 0, err
	}
	p.log.Info("records appended", "count", n)
	return n, nil
}

func writeJSON(path string, records []record.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	return nil
}
