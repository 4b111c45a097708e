// File: bootstrap/deferred.go
package bootstrap

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

type deferredState int

const (
	deferredDisabled deferredState = iota
	deferredBuffering
	deferredDrained
)

// DeferredHandler is a slog.Handler that can buffer records emitted before
// the real logging backend exists and replay them, in emission order, once
// it does.
//
// The handler starts disabled and passes records straight through to its
// backing handler. Enable switches it to buffering; Drain replays the buffer
// to the backing handler and permanently returns to pass-through. Drain is
// idempotent and a no-op when buffering was never enabled.
type DeferredHandler struct {
	core *deferredCore

	// ops reproduces the WithAttrs/WithGroup derivation chain of this
	// handler so replay can rebuild the same structure on the real backend.
	ops []handlerOp
}

type handlerOp struct {
	group string
	attrs []slog.Attr
}

type deferredCore struct {
	mu      sync.Mutex
	state   deferredState
	next    slog.Handler
	records []bufferedRecord
}

type bufferedRecord struct {
	record slog.Record
	ops    []handlerOp
}

// NewDeferredHandler creates a handler backed by next. A nil next defaults
// to a text handler on stderr.
func NewDeferredHandler(next slog.Handler) *DeferredHandler {
	if next == nil {
		next = slog.NewTextHandler(os.Stderr, nil)
	}
	return &DeferredHandler{core: &deferredCore{next: next}}
}

// Enable starts buffering. Records handled after Enable are held in memory
// until Drain. Calling Enable after Drain is a no-op: once drained the
// handler stays pass-through for the life of the process.
func (h *DeferredHandler) Enable() {
	h.core.mu.Lock()
	defer h.core.mu.Unlock()
	if h.core.state == deferredDisabled {
		h.core.state = deferredBuffering
	}
}

// Drain replays buffered records to the backing handler in emission order
// and switches to pass-through. Safe to call repeatedly and before Enable.
func (h *DeferredHandler) Drain() {
	h.core.drainTo(nil)
}

// DrainTo installs next as the backing handler and drains to it. It lets
// the host hand over the real logging backend only once it exists.
func (h *DeferredHandler) DrainTo(next slog.Handler) {
	h.core.drainTo(next)
}

// Redirect swaps the backing handler without draining. Hosts call this once
// the real logging backend exists so a later Drain replays into it.
func (h *DeferredHandler) Redirect(next slog.Handler) {
	if next == nil {
		return
	}
	h.core.mu.Lock()
	h.core.next = next
	h.core.mu.Unlock()
}

func (c *deferredCore) drainTo(next slog.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if next != nil {
		c.next = next
	}
	if c.state != deferredBuffering {
		return
	}

	for _, buffered := range c.records {
		target := resolveHandler(c.next, buffered.ops)
		_ = target.Handle(context.Background(), buffered.record)
	}
	c.records = nil
	c.state = deferredDrained
}

// Enabled reports all levels as enabled while buffering, since the eventual
// backend's level is unknown until drain time.
func (h *DeferredHandler) Enabled(ctx context.Context, level slog.Level) bool {
	h.core.mu.Lock()
	buffering := h.core.state == deferredBuffering
	next := h.core.next
	h.core.mu.Unlock()

	if buffering {
		return true
	}
	return resolveHandler(next, h.ops).Enabled(ctx, level)
}

func (h *DeferredHandler) Handle(ctx context.Context, record slog.Record) error {
	h.core.mu.Lock()
	if h.core.state == deferredBuffering {
		h.core.records = append(h.core.records, bufferedRecord{
			record: record.Clone(),
			ops:    h.ops,
		})
		h.core.mu.Unlock()
		return nil
	}
	next := h.core.next
	h.core.mu.Unlock()

	return resolveHandler(next, h.ops).Handle(ctx, record)
}

func (h *DeferredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return &DeferredHandler{core: h.core, ops: appendOp(h.ops, handlerOp{attrs: attrs})}
}

func (h *DeferredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &DeferredHandler{core: h.core, ops: appendOp(h.ops, handlerOp{group: name})}
}

func appendOp(ops []handlerOp, op handlerOp) []handlerOp {
	out := make([]handlerOp, len(ops), len(ops)+1)
	copy(out, ops)
	return append(out, op)
}

func resolveHandler(base slog.Handler, ops []handlerOp) slog.Handler {
	h := base
	for _, op := range ops {
		if op.group != "" {
			h = h.WithGroup(op.group)
		} else {
			h = h.WithAttrs(op.attrs)
		}
	}
	return h
}
