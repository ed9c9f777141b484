package encoding

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

// Source tells which request hint decided the format.
type Source string

// Selection sources.
const (
	SourceQuery   Source = "query"
	SourceAccept  Source = "accept"
	SourceDefault Source = "default"
)

// Selection is the outcome of format selection.
type Selection struct {
	Format Format
	Source Source
}

// mediaTypeFormats maps negotiable media types to formats. The table
// format has no standard media type and is only reachable by name.
var mediaTypeFormats = map[string]Format{
	MediaTypeJSON: FormatJSON,
	MediaTypeCSV:  FormatCSV,
	MediaTypeHTML: FormatHTML,
}

// Selector resolves the output format for a request.
type Selector struct {
	logger               observability.Logger
	defaultFormat        Format
	queryOverridesAccept bool
}

// SelectorOption is a functional option for configuring the selector.
type SelectorOption func(*Selector)

// WithDefaultFormat sets the format used when no hint matches.
func WithDefaultFormat(f Format) SelectorOption {
	return func(s *Selector) {
		s.defaultFormat = f
	}
}

// WithQueryPrecedence sets whether an explicit format parameter wins over
// a matching Accept header. It does by default.
func WithQueryPrecedence(queryWins bool) SelectorOption {
	return func(s *Selector) {
		s.queryOverridesAccept = queryWins
	}
}

// WithSelectorLogger sets the logger for the selector.
func WithSelectorLogger(logger observability.Logger) SelectorOption {
	return func(s *Selector) {
		s.logger = logger
	}
}

// NewSelector creates a new format selector. Without options it prefers
// the format parameter, then the Accept header, then HTML.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{
		logger:               observability.NopLogger(),
		defaultFormat:        FormatHTML,
		queryOverridesAccept: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	if _, err := ParseFormat(string(s.defaultFormat)); err != nil {
		s.defaultFormat = FormatHTML
	}

	return s
}

// DefaultFormat returns the fallback format.
func (s *Selector) DefaultFormat() Format {
	return s.defaultFormat
}

// QueryOverridesAccept reports the configured precedence.
func (s *Selector) QueryOverridesAccept() bool {
	return s.queryOverridesAccept
}

// Select picks a format from the Accept header and the format parameter.
// An empty parameter counts as absent. A non-empty unknown parameter
// fails with *UnsupportedFormatError regardless of the Accept header.
func (s *Selector) Select(acceptHeader, queryFormat string) (Selection, error) {
	m := GetEncodingMetrics()

	var (
		explicit    Format
		hasExplicit bool
	)
	if queryFormat != "" {
		f, err := ParseFormat(queryFormat)
		if err != nil {
			m.RecordNegotiation("invalid", string(SourceQuery))
			s.logger.Debug("unsupported format requested",
				observability.String("format", queryFormat))
			return Selection{}, err
		}
		explicit, hasExplicit = f, true
	}

	if hasExplicit && s.queryOverridesAccept {
		return s.selected(Selection{Format: explicit, Source: SourceQuery}, acceptHeader), nil
	}

	if f, ok := s.Negotiate(acceptHeader); ok {
		return s.selected(Selection{Format: f, Source: SourceAccept}, acceptHeader), nil
	}

	if hasExplicit {
		return s.selected(Selection{Format: explicit, Source: SourceQuery}, acceptHeader), nil
	}

	return s.selected(Selection{Format: s.defaultFormat, Source: SourceDefault}, acceptHeader), nil
}

func (s *Selector) selected(sel Selection, acceptHeader string) Selection {
	GetEncodingMetrics().RecordNegotiation(string(sel.Format), string(sel.Source))
	s.logger.Debug("format selected",
		observability.String("accept", acceptHeader),
		observability.String("format", string(sel.Format)),
		observability.String("source", string(sel.Source)))
	return sel
}

// Negotiate matches the Accept header against the negotiable media types.
// The second result is false when the header is empty or names nothing
// specific; wildcard ranges are left to the default format.
func (s *Selector) Negotiate(acceptHeader string) (Format, bool) {
	if strings.TrimSpace(acceptHeader) == "" {
		return "", false
	}

	ranges := parseAcceptHeader(acceptHeader)

	// Stable so that equal quality keeps header order.
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].quality > ranges[j].quality
	})

	for _, mr := range ranges {
		if mr.quality <= 0 {
			continue
		}
		if f, ok := s.matchMediaRange(mr.mediaType); ok {
			return f, true
		}
	}

	return "", false
}

// matchMediaRange resolves a single media range.
func (s *Selector) matchMediaRange(mediaType string) (Format, bool) {
	if f, ok := mediaTypeFormats[mediaType]; ok {
		return f, true
	}

	switch mediaType {
	case "application/*":
		return FormatJSON, true
	case "text/*":
		return FormatHTML, true
	default:
		return "", false
	}
}

// mediaRange represents a parsed media range from the Accept header.
type mediaRange struct {
	mediaType string
	quality   float64
}

// parseAcceptHeader parses an Accept header into media ranges with quality values.
// Example: "text/html, application/json;q=0.9, */*;q=0.8"
func parseAcceptHeader(header string) []mediaRange {
	parts := strings.Split(header, ",")
	result := make([]mediaRange, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		mr := mediaRange{quality: 1.0}

		segments := strings.Split(part, ";")
		mr.mediaType = strings.ToLower(strings.TrimSpace(segments[0]))

		for _, segment := range segments[1:] {
			segment = strings.TrimSpace(segment)
			key, val, found := strings.Cut(segment, "=")
			if !found || strings.ToLower(strings.TrimSpace(key)) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
				mr.quality = q
			}
		}

		result = append(result, mr)
	}

	return result
}
