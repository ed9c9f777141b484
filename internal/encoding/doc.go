// Package encoding renders structured values into response bodies.
//
// The encoding package implements one renderer per output format:
//
//   - JSON (application/json)
//   - CSV (text/csv), RFC 4180 quoting with an explicit "\r\n" terminator
//   - Table (text/plain), a boxed text table drawn with box-drawing runes
//   - HTML (text/html), a dark terminal-themed document
//
// The Table and HTML renderers share a single layout routine, Layout,
// which fixes column order and column widths, so both present the same
// grid.
//
// It also provides format selection from the format query parameter
// and the Accept header.
//
// # Example Usage
//
//	selector := encoding.NewSelector()
//	sel, err := selector.Select(r.Header.Get("Accept"), r.URL.Query().Get("format"))
//	if err != nil {
//	    // 400: unsupported format
//	}
//
//	renderer, err := encoding.NewRenderer(sel.Format, encoding.WithTitle("version"))
//	body, err := renderer.Render(v)
//
// # Thread Safety
//
// Renderers and selectors hold no mutable state and are safe for
// concurrent use.
package encoding
