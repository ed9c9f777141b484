// Package encoding renders structured values into response bodies.
package encoding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vyrodovalexey/svcinfo/internal/observability"
	"github.com/vyrodovalexey/svcinfo/internal/value"
)

// Common encoding errors.
var (
	// ErrUnsupportedFormat indicates an unknown explicit format name.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidValue indicates a value that violates the model invariants.
	// Renderers never produce partial output for such a value.
	ErrInvalidValue = errors.New("invalid value")
)

// UnsupportedFormatError carries the rejected format name.
type UnsupportedFormatError struct {
	Got string
}

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q", e.Got)
}

// Is checks if the error matches the target.
func (e *UnsupportedFormatError) Is(target error) bool {
	if target == ErrUnsupportedFormat {
		return true
	}
	_, ok := target.(*UnsupportedFormatError)
	return ok
}

// Format names an output format.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
	FormatHTML  Format = "html"
)

// Media types matched during Accept negotiation.
const (
	MediaTypeJSON = "application/json"
	MediaTypeCSV  = "text/csv"
	MediaTypeHTML = "text/html"
	MediaTypeText = "text/plain"
)

// Response content types.
const (
	ContentTypeJSON  = MediaTypeJSON + "; charset=utf-8"
	ContentTypeCSV   = MediaTypeCSV + "; charset=utf-8"
	ContentTypeHTML  = MediaTypeHTML + "; charset=utf-8"
	ContentTypeTable = MediaTypeText + "; charset=utf-8"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatHTML, FormatJSON, FormatTable, FormatCSV}
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatTable:
		return FormatTable, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", &UnsupportedFormatError{Got: name}
	}
}

// ContentType returns the response Content-Type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return ContentTypeJSON
	case FormatCSV:
		return ContentTypeCSV
	case FormatTable:
		return ContentTypeTable
	case FormatHTML:
		return ContentTypeHTML
	default:
		return ContentTypeJSON
	}
}

// Renderer turns a structured value into a response body.
type Renderer interface {
	// Render serializes v. It fails only with ErrInvalidValue.
	Render(v value.Value) ([]byte, error)

	// ContentType returns the Content-Type for rendered bodies.
	ContentType() string

	// Format returns the format this renderer produces.
	Format() Format
}

// rendererOptions holds options shared by renderer constructors.
type rendererOptions struct {
	title  string
	logger observability.Logger
}

// RendererOption is a functional option for configuring renderers.
type RendererOption func(*rendererOptions)

// WithTitle sets the document title used by the HTML renderer.
func WithTitle(title string) RendererOption {
	return func(o *rendererOptions) {
		o.title = title
	}
}

// WithRendererLogger sets the logger used to report invariant violations.
func WithRendererLogger(logger observability.Logger) RendererOption {
	return func(o *rendererOptions) {
		o.logger = logger
	}
}

// NewRenderer returns the renderer for a format.
func NewRenderer(f Format, opts ...RendererOption) (Renderer, error) {
	o := &rendererOptions{
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}

	var r Renderer
	switch f {
	case FormatJSON:
		r = NewJSONRenderer()
	case FormatCSV:
		r = NewCSVRenderer()
	case FormatTable:
		r = NewTableRenderer()
	case FormatHTML:
		r = NewHTMLRenderer(o.title)
	default:
		return nil, &UnsupportedFormatError{Got: string(f)}
	}

	return &instrumentedRenderer{Renderer: r, logger: o.logger}, nil
}

// instrumentedRenderer records render outcomes.
type instrumentedRenderer struct {
	Renderer
	logger observability.Logger
}

// Render delegates to the wrapped renderer and records the outcome.
func (r *instrumentedRenderer) Render(v value.Value) ([]byte, error) {
	body, err := r.Renderer.Render(v)
	m := GetEncodingMetrics()
	if err != nil {
		m.RecordRender(string(r.Format()), "error")
		r.logger.Error("render failed",
			observability.String("format", string(r.Format())),
			observability.String("kind", v.Kind().String()),
			observability.Error(err),
		)
		return nil, err
	}
	m.RecordRender(string(r.Format()), "success")
	return body, nil
}

// invalid reports an invariant violation for v.
func invalid(v value.Value) error {
	return fmt.Errorf("%w: %s payload missing", ErrInvalidValue, v.Kind())
}
