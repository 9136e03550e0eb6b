package robot

import "errors"

var (
	// ErrNotConnected rejects operations that need an open serial link.
	ErrNotConnected = errors.New("robot not connected")
	// ErrNoPort rejects Connect on a controller configured without a
	// serial port.
	ErrNoPort = errors.New("no serial port specified")
	// ErrAlreadyTeaching rejects StartTeaching while a session runs.
	ErrAlreadyTeaching = errors.New("teaching session already active")
	// ErrNotTeaching rejects StopTeaching without a session.
	ErrNotTeaching = errors.New("no teaching session active")
	// ErrNotRegistered reports a name the registry does not know.
	ErrNotRegistered = errors.New("robot not registered")
	// ErrClosed reports use of a controller after Close.
	ErrClosed = errors.New("controller closed")
)
