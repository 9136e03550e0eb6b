package transport

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Serial talks to an arm over a serial port, one newline-terminated JSON
// command out, one newline-terminated reply back.
type Serial struct {
	mu   sync.Mutex
	port serial.Port
	opts Options
}

// NewSerial returns an unconnected Serial.
func NewSerial() *Serial {
	return &Serial{}
}

// Connect opens the port at the configured baud rate.
func (s *Serial) Connect(portName string, opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port != nil {
		return fmt.Errorf("already connected")
	}

	baud := opts.Baud
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", portName, err)
	}

	s.port = port
	s.opts = opts
	return nil
}

// Disconnect closes the port. Disconnecting an unconnected Serial is a
// no-op.
func (s *Serial) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	if err != nil {
		return fmt.Errorf("close port: %w", err)
	}
	return nil
}

// SendCommand writes line and waits up to timeout for a reply line. When
// timeout is zero the connection's ReadTimeout applies.
func (s *Serial) SendCommand(line []byte, timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil, fmt.Errorf("not connected")
	}
	if timeout <= 0 {
		timeout = s.opts.ReadTimeout
	}
	if err := s.write(line); err != nil {
		return nil, err
	}
	return s.readLine(timeout)
}

// SendRaw writes line without waiting for a reply.
func (s *Serial) SendRaw(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return fmt.Errorf("not connected")
	}
	return s.write(line)
}

func (s *Serial) write(line []byte) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	if len(buf) == 0 || buf[len(buf)-1] != '\n' {
		buf = append(buf, '\n')
	}
	if _, err := s.port.Write(buf); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// readLine reads one byte at a time so nothing past the newline is
// consumed; asynchronous lines the firmware emits later stay in the
// buffer for the next read.
func (s *Serial) readLine(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	var line []byte
	buf := make([]byte, 1)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("no reply within %v: %w", timeout, ErrTimeout)
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			return nil, fmt.Errorf("set read timeout: %w", err)
		}

		n, err := s.port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		if n == 0 {
			// go.bug.st returns a zero-length read when the deadline hits.
			return nil, fmt.Errorf("no reply within %v: %w", timeout, ErrTimeout)
		}

		if buf[0] == '\n' {
			return bytes.TrimRight(line, "\r"), nil
		}
		line = append(line, buf[0])
	}
}
