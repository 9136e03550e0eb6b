// Package transport provides the serial link to the arm: the
// Communicator interface the controller dispatches through, and the
// go.bug.st/serial implementation for real hardware.
package transport

import (
	"errors"
	"time"
)

// DefaultBaud is the line rate the arm firmware listens at.
const DefaultBaud = 115200

// ErrTimeout reports that no reply line arrived in time. It is distinct
// from transport failures so callers can tell a slow or busy arm from a
// broken link.
var ErrTimeout = errors.New("reply timeout")

// Options configures a connection.
type Options struct {
	// Baud overrides DefaultBaud when positive.
	Baud int
	// ReadTimeout bounds a single reply wait when the caller passes no
	// explicit timeout to SendCommand.
	ReadTimeout time.Duration
}

// Communicator is the wire link used by the controller. Implementations
// carry one device connection; concurrent use is serialized internally.
type Communicator interface {
	Connect(port string, opts Options) error
	Disconnect() error
	// SendCommand writes one command line and waits for one reply line.
	// The reply is returned without its line terminator.
	SendCommand(line []byte, timeout time.Duration) ([]byte, error)
	// SendRaw writes a line without waiting for a reply.
	SendRaw(line []byte) error
}
