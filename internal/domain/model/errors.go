package model

import "errors"

var (
	// ErrNotConnected is returned when a message is sent before the channel
	// is connected or after it has gone away
	ErrNotConnected = errors.New("channel not connected")
	// ErrChannelClosed is reported through the disconnect handler when the
	// channel is closed deliberately
	ErrChannelClosed = errors.New("channel closed")
	// ErrTimeout fulfills a pending request whose deadline elapsed before
	// the peer replied
	ErrTimeout = errors.New("request timed out")
	// ErrShuttingDown fulfills every pending request drained at shutdown
	ErrShuttingDown = errors.New("bridge shutting down")
	// ErrDuplicateID indicates a registration for an id that is already
	// pending; ids must be allocator-issued so this is a programmer error
	ErrDuplicateID = errors.New("duplicate request id")
	// ErrTooManyPending indicates the pending-request cap was reached
	ErrTooManyPending = errors.New("too many pending requests")
	// ErrIDExhausted indicates the request id space wrapped; the process
	// must not silently reuse identifiers
	ErrIDExhausted = errors.New("request id space exhausted")
)
