// Package fetch retrieves source documents over HTTP.
//
// Two fetchers are provided: a plain HTTP client for static documents,
// and a headless-browser fetcher for pages that assemble their content
// with JavaScript. Both return raw bytes; [DecodeHTML] converts
// legacy-encoded Japanese pages (Shift_JIS, EUC-JP) to UTF-8 using
// charset detection from HTTP headers, meta tags and content sniffing.
//
// [FetchHTML] implements the iframe-first rule of the MHLW document
// viewer: when the outer page embeds the document in an iframe, the
// iframe's document is fetched and returned instead.
package fetch
