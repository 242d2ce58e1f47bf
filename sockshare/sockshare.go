// Package sockshare opens listening sockets that several serving instances accept on at once.
package sockshare

import (
	"context"
	"net"
	"os"
	"syscall"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Socket is a bound, listening TCP socket held as a file so its descriptor can be handed out.
type Socket struct {
	file *os.File
	addr net.Addr
}

// Listen binds a listening socket on the address with SO_REUSEADDR and SO_REUSEPORT set.
func Listen(ctx context.Context, addr string) (*Socket, error) {
	lc := net.ListenConfig{Control: func(_, _ string, rawConn syscall.RawConn) error {
		return setReuse(rawConn)
	}}

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %q", addr)
	}

	defer ln.Close()

	tcpln, ok := ln.(*net.TCPListener)
	if !ok {
		return nil, errors.Newf("unexpected listener type %T", ln)
	}

	// File duplicates the descriptor, closing ln afterwards leaves the socket listening.
	file, err := tcpln.File()
	if err != nil {
		return nil, errors.Wrap(err, "socket file")
	}

	return &Socket{file: file, addr: ln.Addr()}, nil
}

func setReuse(rawConn syscall.RawConn) error {
	var serr error
	if err := rawConn.Control(func(fd uintptr) {
		if serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); serr != nil {
			return
		}

		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	}); err != nil {
		return errors.Wrap(err, "control")
	}

	return errors.Wrap(serr, "setsockopt")
}

// Addr returns the address the socket is bound to.
func (s *Socket) Addr() net.Addr { return s.addr }

// File returns the file holding the descriptor. It remains owned by the socket.
func (s *Socket) File() *os.File { return s.file }

// Clone duplicates the descriptor. The clone refers to the same listening socket and has to be
// closed independently.
func (s *Socket) Clone() (*Socket, error) {
	rawConn, err := s.file.SyscallConn()
	if err != nil {
		return nil, errors.Wrap(err, "syscall conn")
	}

	nfd, derr := -1, error(nil)
	if err := rawConn.Control(func(fd uintptr) {
		nfd, derr = unix.Dup(int(fd))
	}); err != nil {
		return nil, errors.Wrap(err, "control")
	}

	if derr != nil {
		return nil, errors.Wrap(derr, "dup")
	}

	unix.CloseOnExec(nfd)

	return &Socket{file: os.NewFile(uintptr(nfd), s.file.Name()), addr: s.addr}, nil
}

// Listener returns a listener accepting on the socket. Closing the listener leaves the socket open.
func (s *Socket) Listener() (net.Listener, error) {
	ln, err := net.FileListener(s.file)
	if err != nil {
		return nil, errors.Wrap(err, "file listener")
	}

	return ln, nil
}

// Close releases this descriptor. The socket stops listening once every clone is closed as well.
func (s *Socket) Close() error {
	return s.file.Close()
}
