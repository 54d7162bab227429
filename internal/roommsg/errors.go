package roommsg

import "hearts/internal/engine"

// GameErrorKind is the wire-level counterpart of engine.ErrKind, sent to a
// single player when a move the server rejected needs explaining.
type GameErrorKind string

const (
	GameErrorNotYourTurn GameErrorKind = "notYourTurn"
	GameErrorWrongPhase  GameErrorKind = "wrongPhase"
	GameErrorIllegalMove GameErrorKind = "illegalMove"
	GameErrorUnknownCard GameErrorKind = "unknownCard"
	// GameErrorStateError covers join-policy and seat-authorisation
	// violations: rejoining a seat already held, joining or adding a bot
	// when no seat is free, an action sent in a room phase that does not
	// accept it, and similar caller-state mistakes that never reach the
	// engine. A viewer's player-only action is dropped without any error.
	GameErrorStateError GameErrorKind = "stateError"
	GameErrorUnknown    GameErrorKind = "unknown"
)

// ErrKindToWire maps an engine error kind to its wire tag.
func ErrKindToWire(kind engine.ErrKind) GameErrorKind {
	switch kind {
	case engine.ErrNotYourTurn:
		return GameErrorNotYourTurn
	case engine.ErrWrongPhase:
		return GameErrorWrongPhase
	case engine.ErrIllegalMove:
		return GameErrorIllegalMove
	case engine.ErrUnknownCard:
		return GameErrorUnknownCard
	default:
		return GameErrorUnknown
	}
}
