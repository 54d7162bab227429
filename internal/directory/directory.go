// Package directory resolves UserIds into display-ready User records when a
// room transitions from waiting to started. A real deployment backs this
// with the persistent user store (out of scope here); this package only
// owns the resolution contract and a guest-fallback in-memory implementation.
package directory

import (
	"sync"

	"github.com/google/uuid"
)

// MaxDisplayNameLen is the data model's bound on a User's display name.
const MaxDisplayNameLen = 12

// User is an immutable participant record, resolved once per room.
type User struct {
	ID          uuid.UUID
	DisplayName string
	IsGuest     bool
	IsBot       bool
}

// Directory resolves a UserId to a User, registered or not.
type Directory interface {
	// Resolve returns the registered User for id if one exists, otherwise a
	// synthesized guest User with that id.
	Resolve(id uuid.UUID) User

	// Register records a display name for id so future Resolve calls
	// return a non-guest User. Used by the session layer when it knows a
	// real account is behind id.
	Register(id uuid.UUID, displayName string)
}

type memDirectory struct {
	mu    sync.RWMutex
	names map[uuid.UUID]string
}

// New constructs an in-memory Directory with no registered users; every
// Resolve call falls back to a synthesized guest.
func New() Directory {
	return &memDirectory{names: make(map[uuid.UUID]string)}
}

func (d *memDirectory) Resolve(id uuid.UUID) User {
	d.mu.RLock()
	name, ok := d.names[id]
	d.mu.RUnlock()
	if ok {
		return User{ID: id, DisplayName: name, IsGuest: false}
	}
	return User{ID: id, DisplayName: guestName(id), IsGuest: true}
}

func (d *memDirectory) Register(id uuid.UUID, displayName string) {
	if len(displayName) > MaxDisplayNameLen {
		displayName = displayName[:MaxDisplayNameLen]
	}
	d.mu.Lock()
	d.names[id] = displayName
	d.mu.Unlock()
}

func guestName(id uuid.UUID) string {
	s := "Guest-" + id.String()[:4]
	if len(s) > MaxDisplayNameLen {
		s = s[:MaxDisplayNameLen]
	}
	return s
}

// Bot synthesizes a bot User record; bots are never directory-registered.
func Bot(id uuid.UUID) User {
	return User{ID: id, DisplayName: "Bot-" + id.String()[:4], IsBot: true}
}
