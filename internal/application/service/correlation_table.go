package service

import (
	"context"
	"sync"
	"time"

	"github.com/bridgeport/bridgeport-go/internal/domain/model"
)

type outcome struct {
	resp *model.ResponseEvent
	err  error
}

// Pending is the single-use completion handle for one in-flight request.
// It is fulfilled exactly once, by resolution, timeout, failure, or drain.
type Pending struct {
	id       uint64
	deadline time.Time
	done     chan outcome
	timer    *time.Timer
}

// ID returns the request identifier this handle belongs to
func (p *Pending) ID() uint64 {
	return p.id
}

// Deadline returns the absolute time after which the entry is cancelled
func (p *Pending) Deadline() time.Time {
	return p.deadline
}

// Await blocks until the completion is fulfilled or ctx is done. At most one
// of the two returns is non-zero.
func (p *Pending) Await(ctx context.Context) (*model.ResponseEvent, error) {
	select {
	case out := <-p.done:
		return out.resp, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CorrelationTable owns the mapping from request identifier to its pending
// completion. It is the only shared mutable state between the accept path and
// the dispatch path; all operations are safe under concurrent invocation, and
// for a given id at most one of Resolve/Cancel/Fail/Drain ever succeeds.
type CorrelationTable struct {
	mu         sync.Mutex
	entries    map[uint64]*Pending
	maxPending int
}

// NewCorrelationTable creates an empty table. maxPending caps the number of
// concurrently pending entries; 0 disables the cap.
func NewCorrelationTable(maxPending int) *CorrelationTable {
	return &CorrelationTable{
		entries:    make(map[uint64]*Pending),
		maxPending: maxPending,
	}
}

// Register creates a pending entry for id with a deadline of now+timeout and
// arms its cancellation timer. Registering an id that is already present is a
// programmer error and fails with ErrDuplicateID.
func (t *CorrelationTable) Register(id uint64, timeout time.Duration) (*Pending, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[id]; exists {
		return nil, model.ErrDuplicateID
	}
	if t.maxPending > 0 && len(t.entries) >= t.maxPending {
		return nil, model.ErrTooManyPending
	}

	pending := &Pending{
		id:       id,
		deadline: time.Now().Add(timeout),
		done:     make(chan outcome, 1),
	}
	pending.timer = time.AfterFunc(timeout, func() {
		t.Cancel(id)
	})
	t.entries[id] = pending

	return pending, nil
}

// Resolve removes the entry for id and fulfills its completion with resp.
// It reports whether an entry existed; a false result is expected under races
// with timeout and is not an error.
func (t *CorrelationTable) Resolve(id uint64, resp *model.ResponseEvent) bool {
	pending := t.remove(id)
	if pending == nil {
		return false
	}
	pending.done <- outcome{resp: resp}
	return true
}

// Cancel removes the entry for id and fulfills its completion with a timeout
// failure. Used by the per-entry deadline timer.
func (t *CorrelationTable) Cancel(id uint64) bool {
	return t.Fail(id, model.ErrTimeout)
}

// Fail removes the entry for id and fulfills its completion with err. Used
// when the outbound send fails after registration.
func (t *CorrelationTable) Fail(id uint64, err error) bool {
	pending := t.remove(id)
	if pending == nil {
		return false
	}
	pending.done <- outcome{err: err}
	return true
}

// Drain atomically empties the table and fulfills every still-pending
// completion with a shutdown failure, so no caller is left to time out
// individually after the channel has gone away. It returns the number of
// entries drained.
func (t *CorrelationTable) Drain() int {
	t.mu.Lock()
	drained := t.entries
	t.entries = make(map[uint64]*Pending)
	t.mu.Unlock()

	for _, pending := range drained {
		pending.timer.Stop()
		pending.done <- outcome{err: model.ErrShuttingDown}
	}
	return len(drained)
}

// Len returns the number of currently pending entries
func (t *CorrelationTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// remove detaches the entry for id and stops its timer. The caller fulfills
// the completion outside the lock; the buffered channel makes that safe.
func (t *CorrelationTable) remove(id uint64) *Pending {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending, exists := t.entries[id]
	if !exists {
		return nil
	}
	delete(t.entries, id)
	pending.timer.Stop()
	return pending
}
