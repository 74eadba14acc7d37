package bridge

import (
	"errors"
	"io"
	"io/fs"
	"net"
	"syscall"
)

// normalizeCloseError maps errors that occur during normal session
// teardown to nil. Once the lifecycle manager closes the pipes and the
// client connection, surviving loops fail with one of these instead of
// a clean EOF; none of them is worth reporting as a forwarding error.
func normalizeCloseError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) || errors.Is(err, fs.ErrClosed) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return nil
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && (errno == syscall.EPIPE || errno == syscall.ECONNRESET) {
		return nil
	}
	return err
}
