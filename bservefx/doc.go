// Package bservefx wires bserve servers into an fx application.
//
// # Overview
//
// bservefx handles the boilerplate of running bserve in production: environment parsing,
// structured logging, tracing, prometheus metrics and graceful shutdown. A complete
// application is created in a single call:
//
//	bservefx.NewApp[Env](func(r *bserve.RouteTable, h *Handlers) error {
//	    return r.AddRoute(http.MethodGet, "/items/:id", h.GetItem, false)
//	},
//	    bservefx.WithFx(fx.Provide(NewHandlers)),
//	).Run()
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    bservefx.BaseEnvironment
//	    Greeting string `env:"GREETING" envDefault:"hello"`
//	}
//
// BaseEnvironment provides the following environment variables:
//
//	| Variable               | Required | Default | Description                                    |
//	|------------------------|----------|---------|------------------------------------------------|
//	| BSERVE_HOST            | No       | 0.0.0.0 | Host the shared socket binds to                |
//	| BSERVE_PORT            | Yes      | -       | Port the shared socket binds to                |
//	| BSERVE_INSTANCES       | No       | 1       | Number of servers accepting on the socket      |
//	| BSERVE_SERVICE_NAME    | Yes      | -       | Service name for logging and tracing           |
//	| BSERVE_LOG_LEVEL       | No       | info    | Log level (debug, info, warn, error)           |
//	| BSERVE_LOG_FILE        | No       | -       | Also log to this size-rotated file             |
//	| BSERVE_HEADERS_FILE    | No       | -       | TOML file with headers set on every response   |
//	| BSERVE_METRICS_ADDR    | No       | -       | Serve prometheus metrics on this address       |
//	| BSERVE_OTEL_EXPORTER   | No       | none    | Trace exporter: "none" or "stdout"             |
//	| BSERVE_MAX_CONNECTIONS | No       | 0       | Accepted connections per instance, 0 is no cap |
//	| BSERVE_MAX_BODY_SIZE   | No       | 10000   | Largest POST body passed to a handler          |
//
// # Instances
//
// The app binds one listening socket with SO_REUSEADDR and SO_REUSEPORT, then starts
// BSERVE_INSTANCES servers that each accept on a duplicated descriptor of it. All instances
// share the [bserve.RouteTable] and [bserve.HeaderSet], so the routing function registers
// every route once. It runs before the instances start.
//
// # Testing
//
// The bservefxtest package builds the same graph on top of fxtest.
package bservefx
