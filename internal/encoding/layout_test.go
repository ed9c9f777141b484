package encoding

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/svcinfo/internal/value"
)

func TestLayout_Table(t *testing.T) {
	t.Parallel()

	g, err := Layout(value.TableOf(metricsTable(t)))
	require.NoError(t, err)

	assert.Equal(t, []string{"metric_name", "value", "unit"}, g.Headers)
	assert.Len(t, g.Rows, 4)
	assert.Equal(t, 3, g.Columns())
	assert.Equal(t, []int{14, 5, 8}, g.Widths)
	assert.Equal(t, "3h12m", g.Rows[1][1].Text())
}

func TestLayout_Record(t *testing.T) {
	t.Parallel()

	rec := value.MustRecord(
		value.F("service_name", value.String("svcinfo")),
		value.F("build_commit", value.Null()),
	)

	g, err := Layout(value.RecordOf(rec))
	require.NoError(t, err)

	assert.Equal(t, []string{"key", "value"}, g.Headers)
	require.Len(t, g.Rows, 2)
	assert.Equal(t, "service_name", g.Rows[0][0].Text())
	assert.Equal(t, "svcinfo", g.Rows[0][1].Text())
	assert.Equal(t, "", g.Rows[1][1].Text())
	assert.Equal(t, []int{12, 7}, g.Widths)
}

func TestLayout_Scalar(t *testing.T) {
	t.Parallel()

	g, err := Layout(value.Bool(false))
	require.NoError(t, err)

	assert.Nil(t, g.Headers)
	require.Len(t, g.Rows, 1)
	assert.Equal(t, 1, g.Columns())
	require.NotEmpty(t, g.Widths)
	assert.Equal(t, 5, g.Widths[0])
}

func TestLayout_EmptyTable(t *testing.T) {
	t.Parallel()

	g, err := Layout(value.TableOf(emptyMetricsTable(t)))
	require.NoError(t, err)

	assert.Empty(t, g.Rows)
	assert.Equal(t, 3, g.Columns())
	assert.Equal(t, []int{11, 5, 4}, g.Widths)
}

func TestLayout_EmptyRecord(t *testing.T) {
	t.Parallel()

	g, err := Layout(value.RecordOf(value.MustRecord()))
	require.NoError(t, err)

	assert.Empty(t, g.Rows)
	assert.Equal(t, []int{3, 5}, g.Widths)
}

func TestLayout_NestedCell(t *testing.T) {
	t.Parallel()

	rec := value.MustRecord(
		value.F("inner", value.RecordOf(value.MustRecord(value.F("a", value.Int(1))))),
	)

	g, err := Layout(value.RecordOf(rec))
	require.NoError(t, err)

	cell := g.Rows[0][1]
	require.NotNil(t, cell.Nested)
	assert.Equal(t, []string{"key", "value"}, cell.Nested.Headers)
	assert.Len(t, cell.Lines, 5)
	assert.Equal(t, textWidth(cell.Lines[0]), g.Widths[1])
}

func TestCell_Width(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Cell{}.Width())
	assert.Equal(t, 4, Cell{Lines: []string{"ab", "abcd", ""}}.Width())
	assert.Equal(t, 4, Cell{Lines: []string{"日本"}}.Width())
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b", "c", "d"}, splitLines("a\r\nb\rc\nd"))
	assert.Equal(t, []string{"    x"}, splitLines("\tx"))
	assert.Equal(t, []string{""}, splitLines(""))
}

func TestPadRight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcd", padRight("abcd", 2))
	assert.Equal(t, "日 ", padRight("日", 3))
}

func TestLayout_WidthIgnoresEastAsianLocale(t *testing.T) {
	// Not parallel: flips the package-level runewidth setting that
	// NewCondition reads from the locale.
	saved := runewidth.EastAsianWidth
	runewidth.EastAsianWidth = true
	t.Cleanup(func() { runewidth.EastAsianWidth = saved })
	require.Equal(t, 7, runewidth.NewCondition().StringWidth("café─"))

	g, err := Layout(value.String("café─"))
	require.NoError(t, err)
	require.NotEmpty(t, g.Widths)
	assert.Equal(t, 5, g.Widths[0])
	assert.Equal(t, 1, widthCond.RuneWidth('╭'))
}
