package encoding

import (
	"bytes"
	"html/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vyrodovalexey/svcinfo/internal/value"
)

// defaultHTMLTitle is used when no title is configured.
const defaultHTMLTitle = "svcinfo"

// htmlDocument is the terminal-themed page. Column widths come from the
// shared Layout so the page lines up like the text table.
var htmlDocument = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body {
    font-family: 'Fira Code', 'Courier New', monospace;
    background: #1a1a1a;
    color: #e0e0e0;
    padding: 40px;
    line-height: 1.6;
}
.terminal {
    background: #252525;
    border-radius: 6px;
    padding: 20px;
    box-shadow: 0 4px 6px rgba(0, 0, 0, 0.3);
    border: 1px solid #333;
}
.info-title {
    color: #6ba2ff;
    font-size: 24px;
    margin: 0 0 20px 0;
}
table {
    border-collapse: collapse;
    table-layout: fixed;
}
th {
    text-align: left;
    color: #a0a0a0;
    border-bottom: 1px solid #404040;
    padding: 4px 12px;
}
td {
    color: #6ba2ff;
    border-bottom: 1px solid #2a2a2a;
    padding: 4px 12px;
    white-space: pre;
    vertical-align: top;
}
td table {
    background: #1a1a1a;
    border: 1px solid #404040;
}
</style>
</head>
<body>
<div class="terminal">
<h1 class="info-title">{{.Title}}</h1>
{{template "grid" .Grid}}
</div>
</body>
</html>
{{define "grid"}}<table>
<colgroup>{{range .Widths}}<col style="width: {{.}}ch">{{end}}</colgroup>
{{- if .Headers}}
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
{{- end}}
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{if .Nested}}{{template "grid" .Nested}}{{else}}{{.Text}}{{end}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>{{end}}`))

// htmlRenderer implements Renderer for HTML documents.
type htmlRenderer struct {
	title string
}

// NewHTMLRenderer creates a new HTML renderer. The title is shown in
// title case, e.g. "version" becomes "Version".
func NewHTMLRenderer(title string) Renderer {
	if title == "" {
		title = defaultHTMLTitle
	}
	return &htmlRenderer{
		title: cases.Title(language.English).String(title),
	}
}

// Render wraps the grid for v in a themed document. Every value is
// HTML-escaped; nested records and tables become nested tables.
func (r *htmlRenderer) Render(v value.Value) ([]byte, error) {
	g, err := Layout(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = htmlDocument.Execute(&buf, struct {
		Title string
		Grid  *Grid
	}{
		Title: r.title,
		Grid:  g,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentType returns the HTML content type.
func (r *htmlRenderer) ContentType() string {
	return ContentTypeHTML
}

// Format returns FormatHTML.
func (r *htmlRenderer) Format() Format {
	return FormatHTML
}
