package bservefxtest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [bservefx.BaseEnvironment] env vars
// via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets all [bservefx.BaseEnvironment] env vars to sensible test defaults.
// Port is required because each test must use a unique port to avoid collisions.
//
// Defaults:
//   - BSERVE_HOST: "127.0.0.1"
//   - BSERVE_SERVICE_NAME: "test"
//   - BSERVE_INSTANCES: "1"
//   - BSERVE_OTEL_EXPORTER: "none"
//   - BSERVE_LOG_LEVEL: "warn"
//
// Use the returned [Env] to override individual values:
//
//	bservefxtest.SetBaseEnv(t, 18085).Instances(4).MetricsAddr("127.0.0.1:19085")
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("BSERVE_HOST", "127.0.0.1")
	t.Setenv("BSERVE_PORT", strconv.Itoa(port))
	t.Setenv("BSERVE_SERVICE_NAME", "test")
	t.Setenv("BSERVE_INSTANCES", "1")
	t.Setenv("BSERVE_OTEL_EXPORTER", "none")
	t.Setenv("BSERVE_LOG_LEVEL", "warn")

	return &Env{t: t}
}

// ServiceName overrides BSERVE_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BSERVE_SERVICE_NAME", name)

	return e
}

// Instances overrides BSERVE_INSTANCES.
func (e *Env) Instances(n int) *Env {
	e.t.Helper()
	e.t.Setenv("BSERVE_INSTANCES", strconv.Itoa(n))

	return e
}

// MetricsAddr sets BSERVE_METRICS_ADDR.
func (e *Env) MetricsAddr(addr string) *Env {
	e.t.Helper()
	e.t.Setenv("BSERVE_METRICS_ADDR", addr)

	return e
}

// HeadersFile sets BSERVE_HEADERS_FILE.
func (e *Env) HeadersFile(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BSERVE_HEADERS_FILE", path)

	return e
}

// LogFile sets BSERVE_LOG_FILE.
func (e *Env) LogFile(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BSERVE_LOG_FILE", path)

	return e
}
