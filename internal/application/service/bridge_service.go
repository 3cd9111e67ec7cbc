package service

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bridgeport/bridgeport-go/internal/domain/model"
	"github.com/bridgeport/bridgeport-go/internal/domain/port"
)

// BridgeService orchestrates the two halves of the bridge: the accept path
// (allocate, register, send, await) and the dispatch path (inbound response
// messages resolving pending entries). The two paths join only through the
// correlation table.
type BridgeService struct {
	channel port.Channel
	table   *CorrelationTable
	alloc   *Allocator
	timeout time.Duration
	logger  port.Logger

	stale atomic.Uint64
}

// NewBridgeService wires the dispatch and disconnect handlers onto the
// channel and returns the ready service. timeout is the per-request deadline.
func NewBridgeService(channel port.Channel, table *CorrelationTable, logger port.Logger, timeout time.Duration) *BridgeService {
	s := &BridgeService{
		channel: channel,
		table:   table,
		alloc:   NewAllocator(),
		timeout: timeout,
		logger:  logger,
	}

	channel.OnMessage(model.MessageTypeResponse, s.handleResponse)
	channel.OnDisconnect(func(err error) {
		if n := table.Drain(); n > 0 {
			s.logger.Warn("Channel closed, failed %d pending requests: %v", n, err)
		}
	})

	return s
}

// Forward ships one HTTP request across the channel and suspends until the
// peer's reply resolves it, the deadline elapses, or the channel goes away.
// The returned id identifies the request even when the error is non-nil; it
// is 0 only when allocation itself failed.
func (s *BridgeService) Forward(ctx context.Context, r *http.Request) (*model.ResponseEvent, uint64, error) {
	id, err := s.alloc.Next()
	if err != nil {
		return nil, 0, err
	}

	event, err := TranslateRequest(id, r)
	if err != nil {
		return nil, id, err
	}

	pending, err := s.table.Register(id, s.timeout)
	if err != nil {
		return nil, id, err
	}

	msg, err := model.NewRequestMessage(event)
	if err != nil {
		s.table.Fail(id, err)
		return nil, id, err
	}

	// Single attempt: a send failure cancels the entry immediately, it is
	// never left to time out.
	if err := s.channel.Send(msg); err != nil {
		s.table.Fail(id, err)
		return nil, id, fmt.Errorf("failed to send request %d: %w", id, err)
	}
	s.logger.Debug("Forwarded request %d: %s %s", id, event.Method, event.Path)

	resp, err := pending.Await(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Caller went away before the peer answered; the entry is
			// removed so a late reply is dropped as stale.
			s.table.Fail(id, err)
		}
		return nil, id, err
	}
	return resp, id, nil
}

// PendingCount returns the number of requests currently awaiting a reply
func (s *BridgeService) PendingCount() int {
	return s.table.Len()
}

// StaleResponses returns how many replies arrived after their request had
// already been given up on
func (s *BridgeService) StaleResponses() uint64 {
	return s.stale.Load()
}

// Shutdown fails every pending request so no caller is left hanging, then
// closes the channel.
func (s *BridgeService) Shutdown() error {
	if n := s.table.Drain(); n > 0 {
		s.logger.Info("Drained %d pending requests at shutdown", n)
	}
	return s.channel.Close()
}

// handleResponse is the dispatch path: one inbound ResponseEvent resolves at
// most one pending entry. A reply with no matching entry is expected under
// races with timeout and is dropped silently.
func (s *BridgeService) handleResponse(msg *model.Message) error {
	resp, err := msg.ParseResponsePayload()
	if err != nil {
		s.logger.Warn("Failed to parse response payload: %v", err)
		return err
	}

	if !s.table.Resolve(resp.RequestID, resp) {
		s.stale.Add(1)
		s.logger.Debug("Dropped stale response for request %d", resp.RequestID)
	}
	return nil
}
