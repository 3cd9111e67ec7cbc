package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeport/bridgeport-go/internal/domain/model"
	"github.com/bridgeport/bridgeport-go/internal/infrastructure/logger"
)

var upgrader = websocket.Upgrader{}

// echoPeer answers every request message with a response carrying the same
// request id and the request path as body.
func echoPeer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg model.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if msg.Type != model.MessageTypeRequest {
				continue
			}
			event, err := msg.ParseRequestPayload()
			if err != nil {
				continue
			}
			reply, err := model.NewResponseMessage(&model.ResponseEvent{
				RequestID: event.RequestID,
				Status:    200,
				Body:      event.Path,
			})
			if err != nil {
				continue
			}
			payload, _ := json.Marshal(reply)
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testChannel(t *testing.T, peerURL string) *Channel {
	t.Helper()
	config := model.NewConfig()
	config.PeerURL = peerURL
	config.KeepaliveInterval = 0
	ch := NewChannel(config, logger.NewLogger(io.Discard, "error"))
	t.Cleanup(func() { ch.Close() })
	return ch
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestChannelConnect(t *testing.T) {
	t.Run("connect establishes the link", func(t *testing.T) {
		ch := testChannel(t, wsURL(echoPeer(t)))

		require.NoError(t, ch.Connect(context.Background()))
		assert.True(t, ch.IsConnected())
		assert.NotEmpty(t, ch.SessionID())

		// Connecting again is a no-op
		assert.NoError(t, ch.Connect(context.Background()))
	})

	t.Run("send before connect fails", func(t *testing.T) {
		ch := testChannel(t, "ws://127.0.0.1:1/channel")

		msg, err := model.NewMessage(model.MessageTypePing, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, ch.Send(msg), model.ErrNotConnected)
	})

	t.Run("unreachable peer fails to connect", func(t *testing.T) {
		ch := testChannel(t, "ws://127.0.0.1:1/channel")
		assert.Error(t, ch.Connect(context.Background()))
		assert.False(t, ch.IsConnected())
	})
}

func TestChannelMessages(t *testing.T) {
	t.Run("inbound messages are dispatched in receive order", func(t *testing.T) {
		ch := testChannel(t, wsURL(echoPeer(t)))

		var mu sync.Mutex
		var received []uint64
		got := make(chan struct{}, 16)
		ch.OnMessage(model.MessageTypeResponse, func(msg *model.Message) error {
			event, err := msg.ParseResponsePayload()
			if err != nil {
				return err
			}
			mu.Lock()
			received = append(received, event.RequestID)
			mu.Unlock()
			got <- struct{}{}
			return nil
		})

		require.NoError(t, ch.Connect(context.Background()))

		const count = 5
		for id := uint64(1); id <= count; id++ {
			msg, err := model.NewRequestMessage(&model.RequestEvent{RequestID: id, Method: "GET", Path: "/"})
			require.NoError(t, err)
			require.NoError(t, ch.Send(msg))
		}

		for i := 0; i < count; i++ {
			select {
			case <-got:
			case <-time.After(2 * time.Second):
				t.Fatal("missing reply from peer")
			}
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []uint64{1, 2, 3, 4, 5}, received)
	})
}

func TestChannelDisconnect(t *testing.T) {
	t.Run("close fires the disconnect handler exactly once", func(t *testing.T) {
		ch := testChannel(t, wsURL(echoPeer(t)))

		var fired atomic.Int32
		errCh := make(chan error, 1)
		ch.OnDisconnect(func(err error) {
			fired.Add(1)
			errCh <- err
		})

		require.NoError(t, ch.Connect(context.Background()))
		require.NoError(t, ch.Close())
		require.NoError(t, ch.Close())

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, model.ErrChannelClosed)
		case <-time.After(2 * time.Second):
			t.Fatal("disconnect handler never fired")
		}

		// Give a second teardown a chance to misfire before asserting
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int32(1), fired.Load())
		assert.False(t, ch.IsConnected())

		msg, err := model.NewMessage(model.MessageTypePing, nil)
		require.NoError(t, err)
		assert.Error(t, ch.Send(msg))
	})

	t.Run("peer closing the link fires the disconnect handler", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			conn.Close()
		}))
		t.Cleanup(ts.Close)

		ch := testChannel(t, wsURL(ts))

		fired := make(chan error, 1)
		ch.OnDisconnect(func(err error) { fired <- err })

		require.NoError(t, ch.Connect(context.Background()))

		select {
		case err := <-fired:
			assert.Error(t, err)
			assert.NotErrorIs(t, err, model.ErrChannelClosed)
		case <-time.After(2 * time.Second):
			t.Fatal("disconnect handler never fired")
		}
		assert.False(t, ch.IsConnected())
	})
}
