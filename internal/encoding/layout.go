package encoding

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vyrodovalexey/svcinfo/internal/value"
)

// widthCond measures cell width with East Asian ambiguous runes counted
// as one cell. runewidth.NewCondition would inherit that setting from
// LANG, LC_ALL and RUNEWIDTH_EASTASIAN.
var widthCond = &runewidth.Condition{
	EastAsianWidth:     false,
	StrictEmojiNeutral: true,
}

// Record layouts use these two header names.
const (
	keyHeader   = "key"
	valueHeader = "value"
)

// Grid is the shared two-dimensional layout of a value. The Table and
// HTML renderers both draw from a Grid, so they agree on column order and
// column widths.
type Grid struct {
	// Headers holds the column titles. It is nil for a bare scalar.
	Headers []string

	// Rows holds the cells in display order.
	Rows [][]Cell

	// Widths holds, per column, the widest header or cell line.
	Widths []int
}

// Cell is one laid-out cell.
type Cell struct {
	// Lines holds the display text split at line breaks. Nested values
	// hold their drawn box.
	Lines []string

	// Nested is set when the cell holds a record or table.
	Nested *Grid
}

// Text returns the cell lines joined with newlines.
func (c Cell) Text() string {
	return strings.Join(c.Lines, "\n")
}

// Width returns the widest line of the cell.
func (c Cell) Width() int {
	w := 0
	for _, line := range c.Lines {
		if lw := textWidth(line); lw > w {
			w = lw
		}
	}
	return w
}

// Layout computes the grid for v.
//
// A table lays out one column per table column. A record lays out as a
// two-column key/value grid. Any other value is a single headerless cell.
func Layout(v value.Value) (*Grid, error) {
	g := &Grid{}

	switch v.Kind() {
	case value.KindTable:
		table, ok := v.AsTable()
		if !ok {
			return nil, invalid(v)
		}
		g.Headers = table.Columns()
		g.Rows = make([][]Cell, 0, table.Len())
		for i := 0; i < table.Len(); i++ {
			row := table.Row(i)
			cells := make([]Cell, row.Len())
			for j := range cells {
				cell, err := layoutCell(row.Field(j).Value)
				if err != nil {
					return nil, err
				}
				cells[j] = cell
			}
			g.Rows = append(g.Rows, cells)
		}

	case value.KindRecord:
		rec, ok := v.AsRecord()
		if !ok {
			return nil, invalid(v)
		}
		g.Headers = []string{keyHeader, valueHeader}
		g.Rows = make([][]Cell, 0, rec.Len())
		for i := 0; i < rec.Len(); i++ {
			f := rec.Field(i)
			cell, err := layoutCell(f.Value)
			if err != nil {
				return nil, err
			}
			g.Rows = append(g.Rows, []Cell{{Lines: splitLines(f.Name)}, cell})
		}

	default:
		cell, err := layoutCell(v)
		if err != nil {
			return nil, err
		}
		g.Rows = [][]Cell{{cell}}
	}

	g.Widths = columnWidths(g)
	return g, nil
}

// Columns returns the number of columns.
func (g *Grid) Columns() int {
	if g.Headers != nil {
		return len(g.Headers)
	}
	if len(g.Rows) > 0 {
		return len(g.Rows[0])
	}
	return 0
}

func layoutCell(v value.Value) (Cell, error) {
	if text, ok := displayScalar(v); ok {
		return Cell{Lines: splitLines(text)}, nil
	}

	nested, err := Layout(v)
	if err != nil {
		return Cell{}, err
	}
	return Cell{Lines: drawBox(nested), Nested: nested}, nil
}

func columnWidths(g *Grid) []int {
	widths := make([]int, g.Columns())
	for i, h := range g.Headers {
		widths[i] = textWidth(h)
	}
	for _, row := range g.Rows {
		for i, cell := range row {
			if w := cell.Width(); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// splitLines normalizes line breaks and tabs and splits text into lines.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\t", "    ")
	return strings.Split(s, "\n")
}

// textWidth returns the display width of a single line.
func textWidth(s string) int {
	return widthCond.StringWidth(s)
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	if gap := width - textWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
