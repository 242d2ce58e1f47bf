package bservefx

import (
	"context"

	"github.com/advdv/bserve"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithToken sets the execution token that every instance holds while calling into handlers.
func WithToken(t *bserve.Token) Option {
	return func(c *AppConfig) {
		c.Token = t
	}
}

// WithServerOptions passes options to every serving instance.
func WithServerOptions(opts ...bserve.Option) Option {
	return func(c *AppConfig) {
		c.Options = append(c.Options, opts...)
	}
}

// FxOptions returns the fx options making up the app's dependency graph.
func FxOptions[E Environment](routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 14+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func(e E) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewMetrics),
		fx.Provide(bserve.NewRouteTable),
		fx.Provide(NewHeaderSet),
		fx.Supply(cfg.ServerConfig),
		fx.Provide(NewInstances),
		fx.Invoke(routing),
		fx.Invoke(metricsServerHook),
		fx.Invoke(startInstancesHook),
	}...)

	return append(baseOpts, cfg.FxOptions...)
}

// NewApp creates a batteries-included app with dependency injection.
//
// The routing function can request any types that are provided via fx options. It runs before the
// instances start, so every route it registers is visible to their matchers.
//
// Example:
//
//	bservefx.NewApp[Env](func(r *bserve.RouteTable, h *Handlers) error {
//	    return r.AddRoute(http.MethodGet, "/items/:id", h.GetItem, false)
//	},
//	    bservefx.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	return &App{
		app: fx.New(FxOptions[E](routing, opts...)...),
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application with the given context.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}
