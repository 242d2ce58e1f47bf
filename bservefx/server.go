package bservefx

import (
	"context"
	"net"
	"strconv"

	"github.com/advdv/bserve"
	"github.com/advdv/bserve/sockshare"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig holds optional configuration for the serving instances.
type ServerConfig struct {
	Token   *bserve.Token
	Options []bserve.Option
}

// Instances are the independent servers that accept on one shared socket. They share the route
// table and header set, but each builds its own matcher when it starts.
type Instances struct {
	Servers []*bserve.Server
	Socket  *sockshare.Socket

	clones []*sockshare.Socket
	source func(clone *sockshare.Socket) bserve.ListenerSource
}

// InstancesParams holds the dependencies for creating the serving instances.
type InstancesParams struct {
	fx.In

	Env        Environment
	Routes     *bserve.RouteTable
	Headers    *bserve.HeaderSet
	Logger     *zap.Logger
	Metrics    *Metrics
	TracerProv trace.TracerProvider
}

// NewInstances creates BSERVE_INSTANCES servers. They are started by the app's lifecycle.
func NewInstances(params InstancesParams, cfg ServerConfig) *Instances {
	token := cfg.Token
	if token == nil {
		token = bserve.DefaultToken()
	}

	inst := &Instances{}
	for i := range params.Env.instances() {
		opts := []bserve.Option{
			bserve.WithRouteTable(params.Routes),
			bserve.WithHeaderSet(params.Headers),
			bserve.WithLogger(NewBserveLogger(params.Logger, "instance-"+strconv.Itoa(i))),
			bserve.WithObserver(params.Metrics),
			bserve.WithTracerProvider(params.TracerProv),
			bserve.WithToken(token),
			bserve.WithMaxConnections(params.Env.maxConnections()),
			bserve.WithMaxBodySize(params.Env.maxBodySize()),
		}

		inst.Servers = append(inst.Servers, bserve.NewServer(append(opts, cfg.Options...)...))
	}

	return inst
}

// startInstancesHook binds the shared socket and starts every instance on it.
func startInstancesHook(lc fx.Lifecycle, env Environment, inst *Instances, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return inst.start(ctx, net.JoinHostPort(env.host(), strconv.Itoa(env.port())), logger)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping instances")
			return inst.stop(ctx)
		},
	})
}

// start binds the shared socket and starts the instances in order. When one fails, the ones that
// already started are stopped and every descriptor is closed again.
func (i *Instances) start(ctx context.Context, addr string, logger *zap.Logger) error {
	sock, err := sockshare.Listen(ctx, addr)
	if err != nil {
		return err
	}

	i.Socket = sock
	logger.Info("starting instances", zap.String("addr", sock.Addr().String()), zap.Int("instances", len(i.Servers)))

	// every instance accepts on its own descriptor of the one listening socket
	for n, srv := range i.Servers {
		if err := i.startOne(srv, sock); err != nil {
			err = errors.Wrapf(err, "start instance %d", n)
			return errors.CombineErrors(err, i.stop(ctx))
		}
	}

	return nil
}

func (i *Instances) startOne(srv *bserve.Server, sock *sockshare.Socket) error {
	clone, err := sock.Clone()
	if err != nil {
		return errors.Wrap(err, "clone socket")
	}

	i.clones = append(i.clones, clone)

	src := bserve.SharedSocket(clone.File())
	if i.source != nil {
		src = i.source(clone)
	}

	return srv.Start(src)
}

// stop shuts down every instance and closes the shared socket and its clones.
func (i *Instances) stop(ctx context.Context) error {
	var errs error
	for _, srv := range i.Servers {
		errs = errors.CombineErrors(errs, srv.Shutdown(ctx))
	}

	for _, clone := range i.clones {
		errs = errors.CombineErrors(errs, clone.Close())
	}

	if i.Socket != nil {
		errs = errors.CombineErrors(errs, i.Socket.Close())
	}

	i.clones, i.Socket = nil, nil

	return errs
}

// Addr returns the address of the shared socket, nil before the app started.
func (i *Instances) Addr() net.Addr {
	if i.Socket == nil {
		return nil
	}

	return i.Socket.Addr()
}
