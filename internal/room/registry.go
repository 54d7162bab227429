package room

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"hearts/internal/directory"
	"hearts/internal/metrics"
)

// ErrRoomFull is returned by Create once MaxRooms rooms already exist.
var ErrRoomFull = errors.New("room: registry at capacity")

// ErrNotFound is returned by Get for an unknown RoomId.
var ErrNotFound = errors.New("room: not found")

// Registry is the concurrent, soft-bounded mapping from RoomId to room
// Handle. Lookups never block the rooms they name; only Create is guarded
// by the MaxRooms cap.
type Registry struct {
	dir directory.Directory

	mu    sync.RWMutex
	rooms map[uuid.UUID]*Handle
}

// NewRegistry constructs an empty Registry backed by dir for participant
// resolution.
func NewRegistry(dir directory.Directory) *Registry {
	return &Registry{
		dir:   dir,
		rooms: make(map[uuid.UUID]*Handle),
	}
}

// Create constructs a fresh Waiting room, spins up its actor, and returns
// its id and handle. Fails with ErrRoomFull at the MaxRooms cap.
func (r *Registry) Create(ctx context.Context) (uuid.UUID, *Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rooms) >= MaxRooms {
		return uuid.Nil, nil, ErrRoomFull
	}
	id := uuid.New()
	h := newHandle(id, r.dir)
	h.start(ctx)
	r.rooms[id] = h
	metrics.ActiveRooms.Set(float64(len(r.rooms)))
	return id, h, nil
}

// Get looks up a room's handle by id.
func (r *Registry) Get(id uuid.UUID) (*Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

// Count returns the number of rooms currently held by the registry. There
// is no automatic eviction: Done rooms linger until an administrative sweep
// (out of scope) removes them.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
