// Package engine defines the GameEngine contract the room actor drives, and
// ships a deterministic in-memory implementation of it.
//
// The real Hearts rules engine (scoring, legal-move enforcement, card
// dealing) is an external collaborator per the room actor's specification:
// only its interface is owned here. Fixture is a complete, legal-Hearts
// implementation of that interface so the rest of the module is runnable
// and testable without a separate rules engine dependency.
package engine

import "github.com/google/uuid"

// SubState is the engine's observable phase within a Started room.
type SubState int

const (
	ExchangeCards SubState = iota
	PlayingHand
	ComputeScore
	EndHand
	End
)

func (s SubState) String() string {
	switch s {
	case ExchangeCards:
		return "EXCHANGE_CARDS"
	case PlayingHand:
		return "PLAYING_HAND"
	case ComputeScore:
		return "COMPUTE_SCORE"
	case EndHand:
		return "END_HAND"
	case End:
		return "END"
	default:
		return "UNKNOWN"
	}
}

const (
	PlayerNumber           = 4
	PlayerCardSize         = 13
	NumberReplaceableCards = 3
)

// Seat describes one of the four fixed seats passed to New.
type Seat struct {
	UserID uuid.UUID
	IsBot  bool
}

// PlayerScore pairs a seat's user with an accumulated score.
type PlayerScore struct {
	UserID uuid.UUID
	Score  int
}

// ErrKind enumerates the ways an engine operation can be rejected. It is the
// domain-level counterpart of roommsg's wire-level GameErrorKind.
type ErrKind int

const (
	ErrNone ErrKind = iota
	ErrNotYourTurn
	ErrWrongPhase
	ErrIllegalMove
	ErrUnknownCard
)

type Error struct {
	Kind ErrKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func NewError(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Engine is the opaque Hearts engine the room actor calls into. Every
// method that can fail because of the caller's mistake (wrong phase, wrong
// turn, illegal card) returns an *Error with an ErrKind the actor can map to
// a PlayerError; anything else is a genuine bug and surfaces as a plain
// error.
type Engine interface {
	// CurrentPlayerID is the seat expected to act next, valid during
	// ExchangeCards and PlayingHand.
	CurrentPlayerID() uuid.UUID

	// PlayerIDsInOrder returns the four seats in turn order for the
	// current hand.
	PlayerIDsInOrder() [PlayerNumber]uuid.UUID

	// PlayerScoreByID is the running match score (sum across prior hands).
	PlayerScoreByID() [PlayerNumber]PlayerScore

	// CurrentScoreByID is the in-progress hand's score, valid once
	// ComputeScore has run for this hand.
	CurrentScoreByID() [PlayerNumber]PlayerScore

	// GetPlayerCards returns user's 13 hand slots; a slot is nil once its
	// card has been played.
	GetPlayerCards(user uuid.UUID) [PlayerCardSize]*Card

	// ExchangeCards submits the three cards user is passing. Valid only
	// while State() == ExchangeCards.
	ExchangeCards(user uuid.UUID, positions [NumberReplaceableCards]PositionInDeck) *Error

	// Play plays the single card at position from user's hand. Valid
	// only while State() == PlayingHand and user == CurrentPlayerID().
	Play(user uuid.UUID, position PositionInDeck) *Error

	// PlayBot plays on behalf of the current player using the engine's
	// own heuristic, used by the timeout supervisor's fallback and by
	// bot seats.
	PlayBot()

	// ReplaceCardsBot performs the current exchanging player's pass
	// using the engine's own heuristic.
	ReplaceCardsBot()

	// DealCards starts a fresh hand: shuffles, deals, and resets State()
	// to ExchangeCards (or directly to PlayingHand if the hand has no
	// exchange, e.g. a multiple-of-four hand in some Hearts variants —
	// this fixture always exchanges).
	DealCards()

	// ComputeScore resolves the just-completed trick, adding its penalty
	// points to the winner's CurrentScoreByID, and returns State() to
	// PlayingHand with the winner to lead. After the hand's last trick it
	// instead folds the hand into PlayerScoreByID and advances State() to
	// EndHand (more hands remain) or End (match over).
	ComputeScore()

	// Stack is the current trick in progress, indexed by seat.
	Stack() [PlayerNumber]*Card

	// State is the engine's current observable phase.
	State() SubState

	// CurrentHand is the 1-based index of the hand in progress.
	CurrentHand() uint8

	// Hands is the total number of hands this match will play.
	Hands() uint8
}

// New constructs a fresh Fixture engine for the given seats, ready in
// ExchangeCards for hand 1.
func New(seats [PlayerNumber]Seat, hands uint8) Engine {
	return newFixture(seats, hands)
}
