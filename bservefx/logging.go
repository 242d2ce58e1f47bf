package bservefx

import (
	"os"

	"github.com/advdv/bserve"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a zap logger configured from the environment. It logs JSON to stderr and,
// when BSERVE_LOG_FILE is set, also to a size-rotated file.
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if env.logFile() == "" {
		logs, err := cfg.Build()
		if err != nil {
			return nil, errors.Wrap(err, "build logger")
		}

		return logs, nil
	}

	enc := zapcore.NewJSONEncoder(cfg.EncoderConfig)
	file := zapcore.AddSync(&lumberjack.Logger{
		Filename:   env.logFile(),
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), cfg.Level),
		zapcore.NewCore(enc, file, cfg.Level),
	)

	return zap.New(core, zap.AddCaller()), nil
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogUnhandledServeError(err error) {
	l.Logger.Error("unhandled server error", zap.Error(err))
}

func (l zapLogger) LogImplicitFlushError(err error) {
	l.Logger.Error("error while flushing implicitly", zap.Error(err))
}

func (l zapLogger) LogRouteRejected(method, pattern string, err error) {
	l.Logger.Warn("route rejected", zap.String("method", method), zap.String("pattern", pattern), zap.Error(err))
}

func (l zapLogger) LogAlreadyRunning() {
	l.Logger.Info("already running")
}

func (l zapLogger) LogServing(addr string) {
	l.Logger.Info("serving", zap.String("addr", addr))
}

// NewBserveLogger adapts a zap logger to the logger that a server reports its states to.
func NewBserveLogger(l *zap.Logger, instance string) bserve.Logger {
	return zapLogger{l.Named("bserve").Named(instance)}
}
