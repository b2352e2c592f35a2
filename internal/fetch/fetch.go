package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tsawler/tabula/format"
	"golang.org/x/net/html/charset"

	"sheetfeed/internal/webdoc"
)

// DefaultTimeout bounds a single document download.
const DefaultTimeout = 30 * time.Second

// Fetcher retrieves a document's raw bytes.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher fetches documents with a plain HTTP GET.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher returns a fetcher with the given timeout; zero means
// DefaultTimeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		Client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads rawURL and returns the response body. Non-2xx
// responses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return body, nil
}

// Sniff identifies the format of downloaded bytes from magic numbers.
func Sniff(data []byte) format.Format {
	return format.DetectFromMagic(data)
}

// DecodeHTML converts a fetched HTML document to UTF-8. The encoding is
// determined from a byte-order mark, a meta tag, or content heuristics,
// covering the Shift_JIS pages the MHLW viewer still serves.
func DecodeHTML(data []byte) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(data), "")
	if err != nil {
		return "", fmt.Errorf("detecting charset: %w", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decoding HTML: %w", err)
	}
	return string(decoded), nil
}

// FetchHTML retrieves an HTML page as UTF-8 text. With iframeFirst set,
// a page whose body is served inside an iframe is resolved one level:
// the iframe's src (relative to the page URL) is fetched and returned
// in place of the outer page.
func FetchHTML(ctx context.Context, f Fetcher, pageURL string, iframeFirst bool) (string, error) {
	outer, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	outerHTML, err := DecodeHTML(outer)
	if err != nil {
		return "", err
	}
	if !iframeFirst {
		return outerHTML, nil
	}

	rd, err := webdoc.ParseString(outerHTML)
	if err != nil {
		return outerHTML, nil
	}
	src, ok := rd.IframeSrc()
	if !ok {
		return outerHTML, nil
	}

	innerURL, err := resolveRef(pageURL, src)
	if err != nil {
		return "", fmt.Errorf("resolving iframe src %q: %w", src, err)
	}
	inner, err := f.Fetch(ctx, innerURL)
	if err != nil {
		return "", err
	}
	return DecodeHTML(inner)
}

func resolveRef(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}
