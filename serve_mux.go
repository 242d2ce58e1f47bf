package bserve

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/advdv/bserve"

// ServeMux is the http.Handler of a single worker. It matches requests against the matcher it was
// built with, dispatches them and writes the result through a buffered response so any failure
// still turns into a complete fallback response with the header set applied.
type ServeMux struct {
	logs       Logger
	bufLimit   int
	matcher    *Matcher
	headers    *HeaderSet
	dispatcher *Dispatcher
	observer   Observer
	tracer     trace.Tracer
}

// NewServeMux builds a matcher from the current routes and returns a handler serving from it.
func NewServeMux(opts ...Option) *ServeMux {
	cfg := newConfig(opts...)

	return newServeMux(cfg, BuildMatcher(cfg.routes, cfg.logs))
}

func newServeMux(cfg config, matcher *Matcher) *ServeMux {
	return &ServeMux{
		logs:       cfg.logs,
		bufLimit:   cfg.bufLimit,
		matcher:    matcher,
		headers:    cfg.headers,
		dispatcher: NewDispatcher(cfg.token, cfg.maxBodySize),
		observer:   cfg.observer,
		tracer:     cfg.tracerProvider.Tracer(tracerName),
	}
}

// Matcher returns the immutable route index this mux serves from.
func (m *ServeMux) Matcher() *Matcher { return m.matcher }

// ServeHTTP implements the http.Handler interface.
func (m *ServeMux) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	start := time.Now()

	ctx, span := m.tracer.Start(req.Context(), "bserve.dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		))
	defer span.End()

	bresp := newBufferResponse(resp, m.bufLimit)
	defer bresp.Free()

	if err := m.serve(bresp, req.WithContext(ctx), span); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		code := CodeOf(err)
		if code == CodeUnknown {
			code = CodeInternalServerError
		}

		if code >= CodeInternalServerError {
			m.logs.LogUnhandledServeError(err)
		}

		bresp.Reset()
		http.Error(bresp, http.StatusText(int(code)), int(code))
		m.headers.Apply(bresp.Header())
	}

	if err := bresp.FlushBuffer(); err != nil {
		m.logs.LogImplicitFlushError(err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", bresp.Status()))
	m.observer.ObserveDispatch(req.Method, bresp.Status(), time.Since(start))
}

func (m *ServeMux) serve(w *ResponseBuffer, r *http.Request, span trace.Span) error {
	match, ok := m.matcher.Match(r.Method, r.URL.Path)
	span.SetAttributes(attribute.Bool("bserve.route_found", ok))

	if !ok {
		return dispatchErrorf(ErrRouteNotFound, "%s %s", r.Method, r.URL.Path)
	}

	span.SetAttributes(
		attribute.String("http.route", match.Pattern),
		attribute.String("bserve.variant", match.Handler.Variant().String()),
	)

	resp, err := m.dispatcher.Dispatch(match.Handler, r)
	if err != nil {
		return err
	}

	if err := resp.render(w, r); err != nil {
		return err
	}

	m.headers.Apply(w.Header())

	return nil
}
