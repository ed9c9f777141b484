package encoding

import (
	"strings"

	"github.com/vyrodovalexey/svcinfo/internal/value"
)

// Rounded box-drawing runes.
const (
	boxHorizontal  = "─"
	boxVertical    = "│"
	boxTopLeft     = "╭"
	boxTopRight    = "╮"
	boxTopTee      = "┬"
	boxBottomLeft  = "╰"
	boxBottomRight = "╯"
	boxBottomTee   = "┴"
	boxLeftTee     = "├"
	boxRightTee    = "┤"
	boxCross       = "┼"
)

// tableRenderer implements Renderer for boxed text tables.
type tableRenderer struct {
	noHeader bool
}

// TableOption configures the table renderer.
type TableOption func(*tableRenderer)

// WithoutHeader drops the header row and its rule. Column widths are
// then measured from the body cells alone.
func WithoutHeader() TableOption {
	return func(r *tableRenderer) {
		r.noHeader = true
	}
}

// NewTableRenderer creates a new boxed text table renderer:
//
//	╭──────────┬────────╮
//	│ endpoint │ status │
//	├──────────┼────────┤
//	│ /version │ OK     │
//	╰──────────┴────────╯
//
// Every cell in a column is padded to the column width from Layout.
// A record is drawn as a key/value table. An empty table keeps its
// header and borders.
func NewTableRenderer(opts ...TableOption) Renderer {
	r := tableRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Render draws v as a box.
func (r tableRenderer) Render(v value.Value) ([]byte, error) {
	g, err := Layout(v)
	if err != nil {
		return nil, err
	}
	if r.noHeader && g.Headers != nil {
		g.Headers = nil
		g.Widths = columnWidths(g)
	}
	return []byte(strings.Join(drawBox(g), "\n") + "\n"), nil
}

// ContentType returns the plain-text content type.
func (tableRenderer) ContentType() string {
	return ContentTypeTable
}

// Format returns FormatTable.
func (tableRenderer) Format() Format {
	return FormatTable
}

func drawBox(g *Grid) []string {
	lines := make([]string, 0, len(g.Rows)+4)
	lines = append(lines, rule(g.Widths, boxTopLeft, boxTopTee, boxTopRight))

	if g.Headers != nil {
		lines = append(lines, boxLine(g.Headers, g.Widths))
		lines = append(lines, rule(g.Widths, boxLeftTee, boxCross, boxRightTee))
	}

	for _, row := range g.Rows {
		height := 1
		for _, cell := range row {
			if len(cell.Lines) > height {
				height = len(cell.Lines)
			}
		}
		for n := 0; n < height; n++ {
			texts := make([]string, len(row))
			for i, cell := range row {
				if n < len(cell.Lines) {
					texts[i] = cell.Lines[n]
				}
			}
			lines = append(lines, boxLine(texts, g.Widths))
		}
	}

	lines = append(lines, rule(g.Widths, boxBottomLeft, boxBottomTee, boxBottomRight))
	return lines
}

func rule(widths []int, left, tee, right string) string {
	segments := make([]string, len(widths))
	for i, w := range widths {
		segments[i] = strings.Repeat(boxHorizontal, w+2)
	}
	return left + strings.Join(segments, tee) + right
}

func boxLine(texts []string, widths []int) string {
	var b strings.Builder
	b.WriteString(boxVertical)
	for i, w := range widths {
		b.WriteString(" ")
		b.WriteString(padRight(texts[i], w))
		b.WriteString(" ")
		b.WriteString(boxVertical)
	}
	return b.String()
}
