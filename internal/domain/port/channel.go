package port

import (
	"context"

	"github.com/bridgeport/bridgeport-go/internal/domain/model"
)

// MessageHandler processes a single inbound channel message
type MessageHandler func(msg *model.Message) error

// Channel is the message-passing link to the single peer process. It is a
// dumb, ordered, asynchronous pipe: no request/response pairing logic lives
// here. Inbound messages are delivered one at a time in the order the peer
// sent them.
type Channel interface {
	// Connect establishes the link to the peer
	Connect(ctx context.Context) error

	// Send delivers a message to the peer; it fails when the peer is
	// unreachable
	Send(msg *model.Message) error

	// OnMessage registers the handler invoked for every inbound message of
	// the given type; handlers must be registered before Connect
	OnMessage(msgType model.MessageType, handler MessageHandler)

	// OnDisconnect registers the handler invoked exactly once when the
	// channel goes away, whether closed deliberately or by the peer
	OnDisconnect(handler func(err error))

	// IsConnected returns the connection status
	IsConnected() bool

	// Close terminates the channel; no further messages are delivered and
	// outstanding sends fail
	Close() error
}
