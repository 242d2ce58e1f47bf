package bserve

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogUnhandledServeError(err error)
	LogImplicitFlushError(err error)
	LogRouteRejected(method, pattern string, err error)
	LogAlreadyRunning()
	LogServing(addr string)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogUnhandledServeError(err error) {
	l.Logger.Printf("bserve: unhandled server error: %s", err)
}

func (l stdLogger) LogImplicitFlushError(err error) {
	l.Logger.Printf("bserve: error while flushing implicitly: %s", err)
}

func (l stdLogger) LogRouteRejected(method, pattern string, err error) {
	l.Logger.Printf("bserve: route %s %s rejected: %s", method, pattern, err)
}

func (l stdLogger) LogAlreadyRunning() {
	l.Logger.Printf("bserve: already running")
}

func (l stdLogger) LogServing(addr string) {
	l.Logger.Printf("bserve: serving on %s", addr)
}

func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

type TestLogger struct {
	tb testing.TB

	NumLogUnhandledServeError int64
	NumLogImplicitFlushError  int64
	NumLogRouteRejected       int64
	NumLogAlreadyRunning      int64
	NumLogServing             int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogUnhandledServeError(err error) {
	atomic.AddInt64(&l.NumLogUnhandledServeError, 1)
	l.tb.Logf("bserve: unhandled server error: %s", err)
}

func (l *TestLogger) LogImplicitFlushError(err error) {
	atomic.AddInt64(&l.NumLogImplicitFlushError, 1)
	l.tb.Logf("bserve: error while flushing implicitly: %s", err)
}

func (l *TestLogger) LogRouteRejected(method, pattern string, err error) {
	atomic.AddInt64(&l.NumLogRouteRejected, 1)
	l.tb.Logf("bserve: route %s %s rejected: %s", method, pattern, err)
}

func (l *TestLogger) LogAlreadyRunning() {
	atomic.AddInt64(&l.NumLogAlreadyRunning, 1)
	l.tb.Logf("bserve: already running")
}

func (l *TestLogger) LogServing(addr string) {
	atomic.AddInt64(&l.NumLogServing, 1)
	l.tb.Logf("bserve: serving on %s", addr)
}

var _ Logger = &TestLogger{}
