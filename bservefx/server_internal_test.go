package bservefx

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/advdv/bserve"
	"github.com/advdv/bserve/sockshare"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInstancesStartRollsBack(t *testing.T) {
	routes := bserve.NewRouteTable()
	require.NoError(t, routes.AddRoute(http.MethodGet, "/", bserve.CallableFunc(func(...any) (any, error) {
		return "ok", nil
	}), false))

	inst := &Instances{}
	for range 3 {
		inst.Servers = append(inst.Servers, bserve.NewServer(
			bserve.WithRouteTable(routes),
			bserve.WithLogger(bserve.NewTestLogger(t))))
	}

	var addr net.Addr

	started := 0
	inst.source = func(clone *sockshare.Socket) bserve.ListenerSource {
		addr = clone.Addr()
		if started == 1 {
			return bserve.ListenerSourceFunc(func() (net.Listener, error) {
				return nil, errors.New("bind refused")
			})
		}

		started++

		return bserve.SharedSocket(clone.File())
	}

	err := inst.start(context.Background(), "127.0.0.1:0", zap.NewNop())
	require.ErrorContains(t, err, "start instance 1")
	require.ErrorContains(t, err, "bind refused")

	require.NotNil(t, inst.Servers[0].Addr(), "first instance did start")
	require.Nil(t, inst.Socket)
	require.Empty(t, inst.clones)

	_, err = net.Dial("tcp", addr.String())
	require.Error(t, err, "nothing may accept on the socket after the rollback")
}
