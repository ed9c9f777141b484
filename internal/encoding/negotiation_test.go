package encoding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		opts          []SelectorOption
		wantDefault   Format
		wantPrecedent bool
	}{
		{
			name:          "defaults",
			wantDefault:   FormatHTML,
			wantPrecedent: true,
		},
		{
			name:          "custom default",
			opts:          []SelectorOption{WithDefaultFormat(FormatJSON)},
			wantDefault:   FormatJSON,
			wantPrecedent: true,
		},
		{
			name:          "unknown default falls back to html",
			opts:          []SelectorOption{WithDefaultFormat(Format("xml"))},
			wantDefault:   FormatHTML,
			wantPrecedent: true,
		},
		{
			name:          "accept wins",
			opts:          []SelectorOption{WithQueryPrecedence(false)},
			wantDefault:   FormatHTML,
			wantPrecedent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewSelector(tt.opts...)
			require.NotNil(t, s)
			assert.Equal(t, tt.wantDefault, s.DefaultFormat())
			assert.Equal(t, tt.wantPrecedent, s.QueryOverridesAccept())
		})
	}
}

func TestSelector_Select(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		accept     string
		query      string
		wantFormat Format
		wantSource Source
	}{
		{name: "nothing", wantFormat: FormatHTML, wantSource: SourceDefault},
		{name: "accept json", accept: "application/json", wantFormat: FormatJSON, wantSource: SourceAccept},
		{name: "accept csv", accept: "text/csv", wantFormat: FormatCSV, wantSource: SourceAccept},
		{name: "accept html", accept: "text/html", wantFormat: FormatHTML, wantSource: SourceAccept},
		{name: "accept case insensitive", accept: "Application/JSON", wantFormat: FormatJSON, wantSource: SourceAccept},
		{name: "accept with charset", accept: "application/json; charset=utf-8", wantFormat: FormatJSON, wantSource: SourceAccept},
		{name: "any type", accept: "*/*", wantFormat: FormatHTML, wantSource: SourceDefault},
		{name: "text wildcard", accept: "text/*", wantFormat: FormatHTML, wantSource: SourceAccept},
		{name: "application wildcard", accept: "application/*", wantFormat: FormatJSON, wantSource: SourceAccept},
		{name: "plain text never selects table", accept: "text/plain", wantFormat: FormatHTML, wantSource: SourceDefault},
		{name: "unknown media type", accept: "application/xml", wantFormat: FormatHTML, wantSource: SourceDefault},
		{
			name:       "quality ordering",
			accept:     "text/html;q=0.5, application/json;q=0.9",
			wantFormat: FormatJSON,
			wantSource: SourceAccept,
		},
		{
			name:       "equal quality keeps header order",
			accept:     "text/csv, application/json",
			wantFormat: FormatCSV,
			wantSource: SourceAccept,
		},
		{
			name:       "zero quality excludes",
			accept:     "application/json;q=0, text/csv;q=0.1",
			wantFormat: FormatCSV,
			wantSource: SourceAccept,
		},
		{
			name:       "browser header",
			accept:     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			wantFormat: FormatHTML,
			wantSource: SourceAccept,
		},
		{name: "query table", query: "table", wantFormat: FormatTable, wantSource: SourceQuery},
		{name: "query overrides accept", accept: "application/json", query: "table", wantFormat: FormatTable, wantSource: SourceQuery},
		{name: "query case insensitive", query: "CSV", wantFormat: FormatCSV, wantSource: SourceQuery},
		{name: "empty query is absent", accept: "application/json", query: "", wantFormat: FormatJSON, wantSource: SourceAccept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sel, err := NewSelector().Select(tt.accept, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, sel.Format)
			assert.Equal(t, tt.wantSource, sel.Source)
		})
	}
}

func TestSelector_SelectUnsupportedFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		accept string
		query  string
	}{
		{name: "bogus without accept", query: "bogus"},
		{name: "bogus with matching accept", accept: "application/json", query: "bogus"},
		{name: "xml", query: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewSelector().Select(tt.accept, tt.query)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedFormat)

			var ufe *UnsupportedFormatError
			require.True(t, errors.As(err, &ufe))
			assert.Equal(t, tt.query, ufe.Got)
		})
	}
}

func TestSelector_AcceptPrecedence(t *testing.T) {
	t.Parallel()

	s := NewSelector(WithQueryPrecedence(false))

	sel, err := s.Select("application/json", "csv")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, sel.Format)
	assert.Equal(t, SourceAccept, sel.Source)

	sel, err = s.Select("*/*", "csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, sel.Format)
	assert.Equal(t, SourceQuery, sel.Source)

	_, err = s.Select("application/json", "bogus")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSelector_CustomDefault(t *testing.T) {
	t.Parallel()

	s := NewSelector(WithDefaultFormat(FormatJSON))

	sel, err := s.Select("*/*", "")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, sel.Format)
	assert.Equal(t, SourceDefault, sel.Source)
}

func TestSelector_WithLogger(t *testing.T) {
	t.Parallel()

	s := NewSelector(WithSelectorLogger(newTestLogger()))

	sel, err := s.Select("text/csv", "")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, sel.Format)

	_, err = s.Select("", "nope")
	assert.Error(t, err)
}

func TestParseAcceptHeader(t *testing.T) {
	t.Parallel()

	ranges := parseAcceptHeader("text/html, application/json;q=0.9, ,*/*;level=1;q=0.8, text/csv;q=bad")
	require.Len(t, ranges, 4)

	assert.Equal(t, mediaRange{mediaType: "text/html", quality: 1.0}, ranges[0])
	assert.Equal(t, mediaRange{mediaType: "application/json", quality: 0.9}, ranges[1])
	assert.Equal(t, mediaRange{mediaType: "*/*", quality: 0.8}, ranges[2])
	assert.Equal(t, mediaRange{mediaType: "text/csv", quality: 1.0}, ranges[3])
}
