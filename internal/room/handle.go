package room

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hearts/internal/bus"
	"hearts/internal/directory"
	"hearts/internal/logging"
)

// Handle is the registry's handle onto one room: its bus, and the lifecycle
// of its actor task. The actor itself is never exposed directly — callers
// only ever Subscribe to the bus or Restart a dead actor.
type Handle struct {
	id  uuid.UUID
	dir directory.Directory

	mu     sync.Mutex
	bus    *bus.Bus
	cancel context.CancelFunc
	done   chan struct{}
}

func newHandle(id uuid.UUID, dir directory.Directory) *Handle {
	return &Handle{id: id, dir: dir}
}

func (h *Handle) start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.spawn(ctx)
}

// spawn builds a fresh bus and actor and runs it in a new goroutine. Caller
// must hold h.mu.
func (h *Handle) spawn(ctx context.Context) {
	b := bus.New(BusCapacity)
	actorCtx, cancel := context.WithCancel(ctx)
	recv, err := b.Subscribe()
	if err != nil {
		// Unreachable: b was just constructed and cannot be closed yet.
		cancel()
		return
	}
	a := newActor(h.id, b, recv, h.dir)

	h.bus = b
	h.cancel = cancel
	done := make(chan struct{})
	h.done = done

	go func() {
		defer close(done)
		if err := a.Run(actorCtx); err != nil {
			logging.Error(actorCtx, "room actor exited", zap.String("room_id", h.id.String()), zap.Error(err))
		}
	}()
}

func (h *Handle) alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Bus returns the room's current bus. Callers that hold a reference across
// a Restart should re-fetch it rather than caching it.
func (h *Handle) Bus() *bus.Bus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bus
}

// Subscribe joins the room's current bus as an active receiver.
func (h *Handle) Subscribe() (*bus.Receiver, error) {
	return h.Bus().Subscribe()
}

// Restart rebuilds the room's bus and spawns a fresh actor if the previous
// one terminated; otherwise it is a no-op. Idempotent.
func (h *Handle) Restart(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.alive() {
		return
	}
	h.spawn(ctx)
}

// Stop cancels the actor's context, causing Run to return on its next
// suspension point.
func (h *Handle) Stop() {
	h.mu.Lock()
	cancel := h.cancel
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
