package bservefx

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	host() string
	port() int
	instances() int
	serviceName() string
	logLevel() zapcore.Level
	logFile() string
	headersFile() string
	metricsAddr() string
	otelExporter() string
	maxConnections() int
	maxBodySize() int
}

// BaseEnvironment contains the environment variables every bserve application reads.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	Host        string `env:"BSERVE_HOST" envDefault:"0.0.0.0"`
	Port        int    `env:"BSERVE_PORT,required"`
	Instances   int    `env:"BSERVE_INSTANCES" envDefault:"1"`
	ServiceName string `env:"BSERVE_SERVICE_NAME,required"`

	LogLevel zapcore.Level `env:"BSERVE_LOG_LEVEL" envDefault:"info"`
	// LogFile additionally writes logs to a rotated file when set.
	LogFile string `env:"BSERVE_LOG_FILE"`
	// HeadersFile is a TOML file with headers that are set on every response.
	HeadersFile string `env:"BSERVE_HEADERS_FILE"`
	// MetricsAddr serves prometheus metrics on a separate listener when set.
	MetricsAddr  string `env:"BSERVE_METRICS_ADDR"`
	OtelExporter string `env:"BSERVE_OTEL_EXPORTER" envDefault:"none"`

	MaxConnections int `env:"BSERVE_MAX_CONNECTIONS" envDefault:"0"`
	MaxBodySize    int `env:"BSERVE_MAX_BODY_SIZE" envDefault:"10000"`
}

func (e BaseEnvironment) host() string            { return e.Host }
func (e BaseEnvironment) port() int               { return e.Port }
func (e BaseEnvironment) instances() int          { return e.Instances }
func (e BaseEnvironment) serviceName() string     { return e.ServiceName }
func (e BaseEnvironment) logLevel() zapcore.Level { return e.LogLevel }
func (e BaseEnvironment) logFile() string         { return e.LogFile }
func (e BaseEnvironment) headersFile() string     { return e.HeadersFile }
func (e BaseEnvironment) metricsAddr() string     { return e.MetricsAddr }
func (e BaseEnvironment) otelExporter() string    { return e.OtelExporter }
func (e BaseEnvironment) maxConnections() int     { return e.MaxConnections }
func (e BaseEnvironment) maxBodySize() int        { return e.MaxBodySize }

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}

		if e.instances() < 1 {
			return e, errors.Newf("BSERVE_INSTANCES must be at least 1, got %d", e.instances())
		}

		return e, nil
	}
}
