package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bridgeport/bridgeport-go/internal/domain/model"
	"github.com/bridgeport/bridgeport-go/internal/domain/port"
)

// Channel is the websocket implementation of port.Channel. It dials the peer
// once; there is no reconnect. When the link goes away, for any reason, the
// disconnect handler fires exactly once and the channel stays dead.
type Channel struct {
	peerURL   string
	keepalive time.Duration
	logger    port.Logger

	mutex       sync.Mutex
	conn        *websocket.Conn
	isConnected bool
	closed      bool
	sessionID   string
	done        chan struct{}

	handlers       map[model.MessageType]port.MessageHandler
	onDisconnect   func(err error)
	disconnectOnce sync.Once
}

// NewChannel creates a channel for the peer endpoint in config
func NewChannel(config *model.Config, logger port.Logger) *Channel {
	return &Channel{
		peerURL:   config.PeerURL,
		keepalive: config.KeepaliveInterval,
		logger:    logger,
		handlers:  make(map[model.MessageType]port.MessageHandler),
	}
}

// Connect dials the peer websocket endpoint and starts the read pump
func (c *Channel) Connect(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.isConnected {
		return nil
	}
	if c.closed {
		return model.ErrChannelClosed
	}

	u, err := url.Parse(c.peerURL)
	if err != nil {
		return fmt.Errorf("invalid peer URL: %w", err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to peer: %w", err)
	}

	c.conn = conn
	c.isConnected = true
	c.sessionID = uuid.NewString()
	c.done = make(chan struct{})

	go c.readPump()
	if c.keepalive > 0 {
		go c.keepalivePump()
	}

	c.logger.Info("Connected to peer %s (session %s)", c.peerURL, c.sessionID)

	return nil
}

// Send delivers one message to the peer, in call order
func (c *Channel) Send(msg *model.Message) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.isConnected || c.conn == nil {
		return model.ErrNotConnected
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to convert message to JSON: %w", err)
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Error("Failed to send message: %v", err)
		c.isConnected = false
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// OnMessage registers the handler for a message type. Must be called before
// Connect; inbound messages with no handler are dropped with a warning.
func (c *Channel) OnMessage(msgType model.MessageType, handler port.MessageHandler) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.handlers[msgType] = handler
}

// OnDisconnect registers the handler fired exactly once when the link dies
func (c *Channel) OnDisconnect(handler func(err error)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.onDisconnect = handler
}

// IsConnected returns whether the channel is connected to the peer
func (c *Channel) IsConnected() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isConnected
}

// SessionID returns the id assigned to the current connection
func (c *Channel) SessionID() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.sessionID
}

// Close terminates the channel deliberately
func (c *Channel) Close() error {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.isConnected = false
	c.mutex.Unlock()

	c.logger.Info("Closing channel")

	if conn != nil {
		// Unblocks the read pump, which performs the teardown.
		conn.Close()
	} else {
		c.teardown(model.ErrChannelClosed)
	}
	return nil
}

// readPump reads messages from the peer and dispatches them in receive order
func (c *Channel) readPump() {
	var pumpErr error

	defer func() {
		c.mutex.Lock()
		c.isConnected = false
		closed := c.closed
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		if c.done != nil {
			close(c.done)
			c.done = nil
		}
		c.mutex.Unlock()

		if closed {
			pumpErr = model.ErrChannelClosed
		}
		c.teardown(pumpErr)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !c.isClosed() {
				c.logger.Error("Failed to read message: %v", err)
			}
			pumpErr = err
			return
		}

		var msg model.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Error("Failed to parse message: %v", err)
			continue
		}

		switch msg.Type {
		case model.MessageTypePong:
			continue
		case model.MessageTypePing:
			if pong, err := model.NewMessage(model.MessageTypePong, nil); err == nil {
				if err := c.Send(pong); err != nil {
					c.logger.Warn("Failed to answer ping: %v", err)
				}
			}
			continue
		}

		c.mutex.Lock()
		handler, exists := c.handlers[msg.Type]
		c.mutex.Unlock()

		if !exists {
			c.logger.Warn("No handler for message type: %s", msg.Type)
			continue
		}
		if err := handler(&msg); err != nil {
			c.logger.Error("Error handling message %s: %v", msg.Type, err)
		}
	}
}

// keepalivePump pings the peer on a fixed interval; a failed ping kills the
// connection so the read pump can tear the channel down.
func (c *Channel) keepalivePump() {
	ticker := time.NewTicker(c.keepalive)
	defer ticker.Stop()

	done := c.doneChan()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ping, err := model.NewMessage(model.MessageTypePing, nil)
			if err != nil {
				c.logger.Error("Failed to create ping message: %v", err)
				continue
			}
			if err := c.Send(ping); err != nil {
				c.logger.Error("Failed to send ping: %v", err)
				c.mutex.Lock()
				if c.conn != nil {
					c.conn.Close()
				}
				c.mutex.Unlock()
				return
			}
		}
	}
}

func (c *Channel) teardown(err error) {
	c.disconnectOnce.Do(func() {
		c.mutex.Lock()
		handler := c.onDisconnect
		c.mutex.Unlock()
		if handler != nil {
			handler(err)
		}
	})
}

func (c *Channel) isClosed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.closed
}

func (c *Channel) doneChan() chan struct{} {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.done
}

var _ port.Channel = (*Channel)(nil)
