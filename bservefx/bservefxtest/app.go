// Package bservefxtest provides test helpers for bservefx applications.
//
// It constructs the identical DI graph as [bservefx.NewApp] but uses
// [fxtest.App] which fails the test immediately on DI errors.
//
// Example:
//
//	bservefxtest.SetBaseEnv(t, 18081)
//	app := bservefxtest.New[TestEnv](t, routing)
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package bservefxtest

import (
	"testing"

	"github.com/advdv/bserve/bservefx"
	"go.uber.org/fx/fxtest"
)

// App embeds *fxtest.App for testing bservefx applications.
type App struct {
	*fxtest.App
}

// New creates a test app with the same DI graph as [bservefx.NewApp].
func New[E bservefx.Environment](t testing.TB, routing any, opts ...bservefx.Option) *App {
	return &App{App: fxtest.New(t, bservefx.FxOptions[E](routing, opts...)...)}
}
