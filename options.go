package bserve

import (
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observer gets informed about every request that was served.
type Observer interface {
	ObserveDispatch(method string, status int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveDispatch(string, int, time.Duration) {}

type config struct {
	logs           Logger
	maxBodySize    int
	bufLimit       int
	token          *Token
	observer       Observer
	tracerProvider trace.TracerProvider
	maxConns       int
	routes         *RouteTable
	headers        *HeaderSet

	readHeaderTimeout time.Duration
	idleTimeout       time.Duration
}

func newConfig(opts ...Option) config {
	cfg := config{
		logs:           NewStdLogger(log.Default()),
		maxBodySize:    DefaultMaxBodySize,
		bufLimit:       -1,
		token:          DefaultToken(),
		observer:       nopObserver{},
		tracerProvider: noop.NewTracerProvider(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.routes == nil {
		cfg.routes = NewRouteTable()
	}

	if cfg.headers == nil {
		cfg.headers = NewHeaderSet()
	}

	return cfg
}

// Option configures a [Server] or [ServeMux].
type Option func(*config)

// WithLogger sets the logger that is informed about important states.
func WithLogger(l Logger) Option {
	return func(c *config) { c.logs = l }
}

// WithMaxBodySize sets the largest request body in bytes that is passed to a handler.
func WithMaxBodySize(n int) Option {
	return func(c *config) { c.maxBodySize = n }
}

// WithBufferLimit limits how many bytes of a response are buffered, negative means no limit.
func WithBufferLimit(n int) Option {
	return func(c *config) { c.bufLimit = n }
}

// WithToken sets the execution token held while calling into handlers.
func WithToken(t *Token) Option {
	return func(c *config) { c.token = t }
}

// WithObserver sets the observer that is told about every served request.
func WithObserver(o Observer) Option {
	return func(c *config) { c.observer = o }
}

// WithTracerProvider sets the provider of the tracer that records a span per request.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tracerProvider = tp }
}

// WithMaxConnections caps the number of simultaneously accepted connections, zero means no cap.
func WithMaxConnections(n int) Option {
	return func(c *config) { c.maxConns = n }
}

// WithServerTimeouts sets how long to wait for request headers and on idle keep-alive connections.
func WithServerTimeouts(readHeader, idle time.Duration) Option {
	return func(c *config) { c.readHeaderTimeout, c.idleTimeout = readHeader, idle }
}

// WithRouteTable shares a route table, for example between several instances on one socket.
func WithRouteTable(t *RouteTable) Option {
	return func(c *config) { c.routes = t }
}

// WithHeaderSet shares a header set, for example between several instances on one socket.
func WithHeaderSet(s *HeaderSet) Option {
	return func(c *config) { c.headers = s }
}
