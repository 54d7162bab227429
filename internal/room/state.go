package room

import (
	"github.com/google/uuid"

	"hearts/internal/directory"
	"hearts/internal/engine"
)

// Phase tags which variant of RoomState is active. Transitions are
// monotonic: Waiting < Started < Done, never reversed within one room.
type Phase int

const (
	Waiting Phase = iota
	Started
	Done
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "WAITING"
	case Started:
		return "STARTED"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// roomState is the room actor's exclusively-owned, single-writer state. It
// mirrors the data model's tagged RoomState plus the bookkeeping (bots,
// viewers) that exists across every phase.
type roomState struct {
	phase Phase

	// Waiting-phase seating; nil entries are empty seats. Once Started,
	// users mirrors the same four seats resolved to full User records.
	seats [engine.PlayerNumber]*uuid.UUID
	users [engine.PlayerNumber]*directory.User

	bots    [engine.PlayerNumber]*uuid.UUID
	viewers map[uuid.UUID]struct{}

	eng engine.Engine

	// currentMarker is the TurnMarker of the most recently broadcast
	// turn-advancing message; supervisors compare against it to detect a
	// stale timeout.
	currentMarker uuid.UUID
}

func newRoomState() *roomState {
	return &roomState{
		phase:   Waiting,
		viewers: make(map[uuid.UUID]struct{}),
	}
}

// role reports whether id already occupies a seat, a bot seat, or a viewer
// slot. A UserId occupies at most one of these per the data model invariant.
type role int

const (
	roleNone role = iota
	roleSeated
	roleViewer
)

func (s *roomState) roleOf(id uuid.UUID) role {
	for _, seat := range s.seats {
		if seat != nil && *seat == id {
			return roleSeated
		}
	}
	if _, ok := s.viewers[id]; ok {
		return roleViewer
	}
	return roleNone
}

// lowestEmptySeat returns the index of the first nil seat, or -1 if full.
func (s *roomState) lowestEmptySeat() int {
	for i, seat := range s.seats {
		if seat == nil {
			return i
		}
	}
	return -1
}

func (s *roomState) seatCount() int {
	n := 0
	for _, seat := range s.seats {
		if seat != nil {
			n++
		}
	}
	return n
}

func (s *roomState) isBot(id uuid.UUID) bool {
	for _, b := range s.bots {
		if b != nil && *b == id {
			return true
		}
	}
	return false
}
