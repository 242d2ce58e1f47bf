package bserve

import (
	"net"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
)

// ListenerSource provides the listener a server accepts connections on.
type ListenerSource interface {
	Listen() (net.Listener, error)
}

// ListenerSourceFunc allow casting a function to implement [ListenerSource].
type ListenerSourceFunc func() (net.Listener, error)

// Listen implements the [ListenerSource] interface.
func (f ListenerSourceFunc) Listen() (net.Listener, error) { return f() }

// Port opens a fresh TCP listener on the port, on all interfaces.
func Port(port int) ListenerSource {
	return Addr(":" + strconv.Itoa(port))
}

// Addr opens a fresh TCP listener on the address.
func Addr(addr string) ListenerSource {
	return ListenerSourceFunc(func() (net.Listener, error) {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, errors.Wrapf(err, "listen on %q", addr)
		}

		return ln, nil
	})
}

// SharedSocket accepts on an already bound and listening socket that is owned by the caller. The
// descriptor is duplicated so the server never closes the caller's file.
func SharedSocket(f *os.File) ListenerSource {
	return ListenerSourceFunc(func() (net.Listener, error) {
		ln, err := net.FileListener(f)
		if err != nil {
			return nil, errors.Wrapf(err, "listener from shared socket %q", f.Name())
		}

		return ln, nil
	})
}

// Listener accepts on the given listener. It is closed when the server shuts down.
func Listener(ln net.Listener) ListenerSource {
	return ListenerSourceFunc(func() (net.Listener, error) { return ln, nil })
}
