package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetfeed/internal/record"
)

// fakeFetcher serves canned pages by URL.
type fakeFetcher struct {
	pages map[string][]byte
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	page, ok := f.pages[rawURL]
	if !ok {
		return nil, errors.New("not found: " + rawURL)
	}
	return page, nil
}

// fakeSink collects appended records.
type fakeSink struct {
	records []record.Record
	err     error
}

func (s *fakeSink) AppendRecords(_ context.Context, records []record.Record) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.records = append(s.records, records...)
	return len(records), nil
}

const viewerPage = `<html><body><div id="contents">
<div id="sec1"><div class="table_frame"><div class="table_wrpper">
<table class="b-on"><tbody>
<tr><td><p>粘膜に使用されることがない化粧品のうち洗い流すもの</p></td><td><p>粘膜に使用されることがない化粧品のうち洗い流さないもの</p></td><td><p>粘膜に使用されることがある化粧品</p></td></tr>
<tr><td><p>サリチル酸</p></td><td><p>0.20ｇ</p></td><td><p>0.20</p></td><td><p>0.20</p></td></tr>
<tr><td><p>安息香酸</p></td><td><p>合計量として 1.0ｇ</p></td><td><p>1.0</p></td><td><p>1.0</p></td></tr>
<tr><td><p>ラベルのみの成分</p></td></tr>
</tbody></table>
</div></div></div>
</div></body></html>`

func TestRunHTMLAppendsRecords(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://example.com/doc": []byte(viewerPage),
	}}
	sink := &fakeSink{}
	p := New(nil, fetcher, sink)

	n, err := p.RunHTML(context.Background(), HTMLOptions{URL: "https://example.com/doc"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, sink.records, 2)

	first := sink.records[0]
	assert.Equal(t, "サリチル酸", first.Ingredient)
	assert.Equal(t, "0.20", first.Amounts[1])
	assert.Equal(t, record.UnitGram, first.Unit)
	assert.Equal(t, "https://example.com/doc", first.SourceURL)

	second := sink.records[1]
	assert.Equal(t, "安息香酸", second.Ingredient)
	assert.Equal(t, "合計量として", second.Note)
}

func TestRunHTMLResolvesIframe(t *testing.T) {
	outer := `<html><body><iframe src="https://example.com/inner"></iframe></body></html>`
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://example.com/doc":   []byte(outer),
		"https://example.com/inner": []byte(viewerPage),
	}}
	sink := &fakeSink{}
	p := New(nil, fetcher, sink)

	n, err := p.RunHTML(context.Background(), HTMLOptions{URL: "https://example.com/doc", IframeFirst: true})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRunHTMLDryRun(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://example.com/doc": []byte(viewerPage),
	}}
	sink := &fakeSink{}
	p := New(nil, fetcher, sink)

	n, err := p.RunHTML(context.Background(), HTMLOptions{URL: "https://example.com/doc", DryRun: true})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sink.records)
}

func TestRunHTMLNoTables(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://example.com/doc": []byte(`<html><body><div id="contents"></div></body></html>`),
	}}
	p := New(nil, fetcher, &fakeSink{})

	_, err := p.RunHTML(context.Background(), HTMLOptions{URL: "https://example.com/doc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no standards tables")
}

func TestRunHTMLFetchError(t *testing.T) {
	p := New(nil, &fakeFetcher{}, &fakeSink{})

	_, err := p.RunHTML(context.Background(), HTMLOptions{URL: "https://example.com/absent"})
	require.Error(t, err)
}

func TestRunHTMLSinkError(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://example.com/doc": []byte(viewerPage),
	}}
	sink := &fakeSink{err: errors.New("quota exceeded")}
	p := New(nil, fetcher, sink)

	_, err := p.RunHTML(context.Background(), HTMLOptions{URL: "https://example.com/doc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestRunPDFRejectsNonPDF(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://example.com/doc.pdf": []byte("<html>not a pdf</html>"),
	}}
	p := New(nil, fetcher, &fakeSink{})

	_, err := p.RunPDF(context.Background(), PDFOptions{URL: "https://example.com/doc.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF")
}

func TestRunPDFFetchError(t *testing.T) {
	p := New(nil, &fakeFetcher{}, &fakeSink{})

	_, err := p.RunPDF(context.Background(), PDFOptions{URL: "https://example.com/absent.pdf"})
	require.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	records := []record.Record{
		{Ingredient: "サリチル酸", Amounts: [4]string{"0.2", "", "", ""}, Unit: record.UnitGram, SourceURL: "https://example.com/doc.pdf?a=1&b=2"},
	}
	require.NoError(t, writeJSON(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []record.Record
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "サリチル酸", got[0].Ingredient)
	// URLs keep their ampersands readable.
	assert.Contains(t, string(data), "a=1&b=2")
}
