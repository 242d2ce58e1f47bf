package bserve_test

import (
	"testing"

	"github.com/advdv/bserve"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	err1 := bserve.NewDispatchError(bserve.CodeBadRequest, errors.New("foo"))
	require.Equal(t, bserve.Code(400), err1.Code())
	require.Equal(t, bserve.CodeBadRequest, bserve.CodeOf(err1))
	require.Equal(t, "Bad Request: foo", err1.Error())

	require.Equal(t, bserve.CodeUnknown, bserve.CodeOf(errors.New("bar")))
	require.Equal(t, "Unknown: rab", bserve.NewDispatchError(900, errors.New("rab")).Error())
}

func TestErrorCodeThroughWrapping(t *testing.T) {
	err := errors.Wrap(bserve.NewDispatchError(bserve.CodeNotFound, bserve.ErrRouteNotFound), "GET /x")
	require.Equal(t, bserve.CodeNotFound, bserve.CodeOf(err))
	require.ErrorIs(t, err, bserve.ErrRouteNotFound)
}
