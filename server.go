package bserve

import (
	"context"
	"net"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/netutil"
)

// Server is one serving instance. Routes and headers can be registered before and after it was
// started, but routes added after start are not matched by the running instance.
type Server struct {
	cfg     config
	started atomic.Bool
	binding sync.Mutex

	mu   sync.Mutex
	srv  *http.Server
	mux  *ServeMux
	addr net.Addr
	done chan struct{}
}

// NewServer inits a server that is not yet started.
func NewServer(opts ...Option) *Server {
	return &Server{cfg: newConfig(opts...)}
}

// AddRoute registers host code for the method and pattern. When isAsync is set the callable must
// return an [Awaitable].
func (s *Server) AddRoute(method, pattern string, fn Callable, isAsync bool) error {
	return s.cfg.routes.AddRoute(method, pattern, fn, isAsync)
}

// AddHeader sets a header on every later response.
func (s *Server) AddHeader(name, value string) { s.cfg.headers.Add(name, value) }

// RemoveHeader stops setting a header on later responses.
func (s *Server) RemoveHeader(name string) { s.cfg.headers.Remove(name) }

func (s *Server) Routes() *RouteTable { return s.cfg.routes }
func (s *Server) Headers() *HeaderSet { return s.cfg.headers }

// Start spawns the serving goroutine. It returns once the listener is bound, a failure to bind is
// returned and the server may be started again. A concurrent call waits for that outcome. Any call
// after a successful start is a no-op that only logs.
func (s *Server) Start(src ListenerSource) error {
	s.binding.Lock()
	defer s.binding.Unlock()

	if !s.started.CompareAndSwap(false, true) {
		s.cfg.logs.LogAlreadyRunning()
		return nil
	}

	ready := make(chan error, 1)
	go s.serve(src, ready)

	if err := <-ready; err != nil {
		s.started.Store(false)
		return err
	}

	return nil
}

// serve binds and accepts on a goroutine that has its own OS thread. The matcher is built here, so
// it holds exactly the routes registered when the instance started.
func (s *Server) serve(src ListenerSource, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ln, err := src.Listen()
	if err != nil {
		ready <- errors.Wrap(err, "bind")
		return
	}

	if s.cfg.maxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.maxConns)
	}

	mux := newServeMux(s.cfg, BuildMatcher(s.cfg.routes, s.cfg.logs))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: s.cfg.readHeaderTimeout,
		IdleTimeout:       s.cfg.idleTimeout,
	}

	done := make(chan struct{})
	defer close(done)

	s.mu.Lock()
	s.srv, s.mux, s.addr, s.done = srv, mux, ln.Addr(), done
	s.mu.Unlock()

	s.cfg.logs.LogServing(ln.Addr().String())
	ready <- nil

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.cfg.logs.LogUnhandledServeError(errors.Wrap(err, "serve"))
	}
}

// Addr returns the address the server is accepting on, nil when it is not running.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addr
}

// Matcher returns the route index of the running instance, nil when it is not running.
func (s *Server) Matcher() *Matcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mux == nil {
		return nil
	}

	return s.mux.Matcher()
}

// Shutdown gracefully stops accepting and waits for in-flight requests. The server cannot be
// started again afterwards.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "shutdown")
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait for serving goroutine")
	}
}
