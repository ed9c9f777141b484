package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/svcinfo/internal/encoding"
	"github.com/vyrodovalexey/svcinfo/internal/middleware"
	"github.com/vyrodovalexey/svcinfo/internal/observability"
	"github.com/vyrodovalexey/svcinfo/internal/value"
)

const headerVary = "Vary"

// negotiated returns a handler running the response pipeline: select the
// format, build the value, render it. The format is selected first so a
// bad format parameter never reaches the builder.
func (s *Server) negotiated(title string, build buildFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		policy := s.policy.Load()

		sel, err := policy.selector.Select(c.GetHeader("Accept"), c.Query(policy.queryParam))
		if err != nil {
			s.respondUnsupportedFormat(c, err)
			return
		}

		status, v, err := build(c)
		if err != nil {
			s.respondInternalError(c, "failed to build response", err)
			return
		}

		s.respond(c, title, sel.Format, status, v)
	}
}

// respond renders v in format f inside a render span.
func (s *Server) respond(c *gin.Context, title string, f encoding.Format, status int, v value.Value) {
	renderer, err := encoding.NewRenderer(f,
		encoding.WithTitle(title),
		encoding.WithRendererLogger(s.logger.WithContext(c.Request.Context())),
	)
	if err != nil {
		s.respondInternalError(c, "failed to create renderer", err)
		return
	}

	_, span := s.tracer.StartSpan(c.Request.Context(), "render",
		trace.WithAttributes(
			attribute.String("format", string(f)),
			attribute.String("kind", v.Kind().String()),
		),
	)
	body, err := renderer.Render(v)
	observability.RecordError(span, err)
	span.End()

	if err != nil {
		s.respondInternalError(c, "failed to render response", err)
		return
	}

	c.Header(headerVary, "Accept")
	c.Data(status, renderer.ContentType(), body)
}

// respondUnsupportedFormat answers 400 with a JSON body echoing the
// rejected format name, whatever the negotiated format would have been.
func (s *Server) respondUnsupportedFormat(c *gin.Context, err error) {
	got := ""
	var ufe *encoding.UnsupportedFormatError
	if errors.As(err, &ufe) {
		got = ufe.Got
	}

	body, renderErr := encoding.NewJSONRenderer().Render(value.RecordOf(value.MustRecord(
		value.F("error", value.String("unsupported format")),
		value.F("got", value.String(got)),
	)))
	if renderErr != nil {
		s.respondInternalError(c, "failed to render error response", renderErr)
		return
	}

	c.Data(http.StatusBadRequest, middleware.ContentTypeJSON, body)
}

// respondInternalError logs err and answers 500 without detail.
func (s *Server) respondInternalError(c *gin.Context, msg string, err error) {
	s.logger.WithContext(c.Request.Context()).Error(msg,
		observability.String("path", c.Request.URL.Path),
		observability.Error(err),
	)
	c.Data(http.StatusInternalServerError, middleware.ContentTypeJSON, []byte(middleware.ErrInternalServerError))
}
