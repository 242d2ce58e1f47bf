// Command bserve-hello serves a handful of demo routes on a shared socket.
package main

import (
	"net/http"
	"time"

	"github.com/advdv/bserve"
	"github.com/advdv/bserve/bservefx"
	"go.uber.org/zap"
)

type env struct {
	bservefx.BaseEnvironment
	Greeting string `env:"HELLO_GREETING" envDefault:"hello"`
}

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func routing(r *bserve.RouteTable, e env, logs *zap.Logger) error {
	rev := bserve.NewReverser()
	api := bserve.NewRouteTable()
	for _, route := range []struct {
		method, pattern string
		fn              bserve.CallableFunc
		isAsync         bool
	}{
		{http.MethodGet, rev.Named("item", "/items/:id"), func(...any) (any, error) {
			return bserve.JSON(item{ID: 1, Name: "Example Item"})
		}, false},
		{http.MethodGet, "/latest", func(...any) (any, error) {
			loc, err := rev.Reverse("item", "1")
			if err != nil {
				return nil, err
			}

			return bserve.Text("/api" + loc), nil
		}, false},
		{http.MethodGet, "/slow", func(...any) (any, error) {
			return bserve.Go(func() (any, error) {
				time.Sleep(100 * time.Millisecond)
				return bserve.Text("done"), nil
			}), nil
		}, true},
		{http.MethodPost, "/echo", func(args ...any) (any, error) {
			body, _ := args[0].([]byte)
			logs.Debug("echo", zap.Int("size", len(body)))

			return body, nil
		}, false},
		{http.MethodGet, "/robots.txt", func(...any) (any, error) {
			return bserve.StaticFile("static/robots.txt"), nil
		}, false},
	} {
		if err := api.AddRoute(route.method, route.pattern, route.fn, route.isAsync); err != nil {
			return err
		}
	}

	if err := r.AddRoute(http.MethodGet, "/", bserve.CallableFunc(func(...any) (any, error) {
		return e.Greeting, nil
	}), false); err != nil {
		return err
	}

	return r.Mount("/api", api)
}

func main() {
	bservefx.NewApp[env](routing).Run()
}
