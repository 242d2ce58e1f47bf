package bservefx

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Metrics records every dispatched request. It implements the observer a server reports to.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	responseTime *prometheus.HistogramVec
}

// NewMetrics registers the dispatch collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "bserve_requests_total", Help: "http requests by code, and method"},
			[]string{"code", "method"},
		),
		responseTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bserve_response_time_seconds",
				Help:    "http response time.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method"},
		),
	}

	m.registry.MustRegister(m.requests, m.responseTime)

	return m
}

// ObserveDispatch implements the bserve observer.
func (m *Metrics) ObserveDispatch(method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(strconv.Itoa(status), method).Inc()
	m.responseTime.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collected metrics in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// metricsServerHook serves the metrics on BSERVE_METRICS_ADDR, if it is set.
func metricsServerHook(lc fx.Lifecycle, env Environment, m *Metrics, logger *zap.Logger) {
	if env.metricsAddr() == "" {
		return
	}

	srv := &http.Server{Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var lc net.ListenConfig

			ln, err := lc.Listen(ctx, "tcp", env.metricsAddr())
			if err != nil {
				return errors.Wrapf(err, "listen for metrics on %q", env.metricsAddr())
			}

			logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))

			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
