package roommsg

import (
	"github.com/google/uuid"

	"hearts/internal/engine"
)

// PlayerCard is the wire representation of engine.Card.
type PlayerCard struct {
	TypeCard       string `json:"typeCard"`
	Emoji          string `json:"emoji"`
	PositionInDeck int    `json:"positionInDeck"`
}

func CardToWire(c *engine.Card) *PlayerCard {
	if c == nil {
		return nil
	}
	return &PlayerCard{
		TypeCard:       c.TypeCard.String(),
		Emoji:          c.Emoji(),
		PositionInDeck: int(c.PositionInDeck),
	}
}

func HandToWire(hand [engine.PlayerCardSize]*engine.Card) [engine.PlayerCardSize]*PlayerCard {
	var out [engine.PlayerCardSize]*PlayerCard
	for i, c := range hand {
		out[i] = CardToWire(c)
	}
	return out
}

func StackToWire(stack [engine.PlayerNumber]*engine.Card) [engine.PlayerNumber]*PlayerCard {
	var out [engine.PlayerNumber]*PlayerCard
	for i, c := range stack {
		out[i] = CardToWire(c)
	}
	return out
}

// PlayerScoreWire is the wire shape of one seat's running score.
type PlayerScoreWire struct {
	UserID uuid.UUID `json:"userId"`
	Score  int        `json:"score"`
}

func ScoresToWire(scores [engine.PlayerNumber]engine.PlayerScore) [engine.PlayerNumber]PlayerScoreWire {
	var out [engine.PlayerNumber]PlayerScoreWire
	for i, s := range scores {
		out[i] = PlayerScoreWire{UserID: s.UserID, Score: s.Score}
	}
	return out
}

// JoinedPayload is carried by KindJoined and KindViewerJoined.
type JoinedPayload struct {
	UserID uuid.UUID `json:"userId"`
}

// WaitingForPlayersPayload is carried by KindWaitingForPlayers.
type WaitingForPlayersPayload struct {
	Seats [4]*uuid.UUID `json:"seats"`
}

// ReceiveCardsPayload is carried by KindReceiveCards (unicast).
type ReceiveCardsPayload struct {
	Hand [engine.PlayerCardSize]*PlayerCard `json:"hand"`
}

// ReplaceCardsPayload is carried by KindReplaceCards (inbound).
type ReplaceCardsPayload struct {
	Cards [engine.NumberReplaceableCards]PlayerCard `json:"cards"`
}

// NewHandPayload is carried by KindNewHand.
type NewHandPayload struct {
	PlayerIDsInOrder [4]uuid.UUID                          `json:"playerIdsInOrder"`
	CurrentPlayerID  uuid.UUID                              `json:"currentPlayerId"`
	CurrentHand      uint8                                  `json:"currentHand"`
	Hands            uint8                                  `json:"hands"`
	PlayerScores     [engine.PlayerNumber]PlayerScoreWire    `json:"playerScores"`
	UUID             uuid.UUID                               `json:"uuid"`
}

// StartHandPayload / NextPlayerToReplaceCardsPayload are carried by
// KindStartHand / KindNextPlayerToReplaceCards.
type StartHandPayload struct {
	CurrentPlayerID uuid.UUID `json:"currentPlayerId"`
	UUID            uuid.UUID `json:"uuid"`
}

type NextPlayerToReplaceCardsPayload struct {
	CurrentPlayerID uuid.UUID `json:"currentPlayerId"`
	UUID            uuid.UUID `json:"uuid"`
}

// NextPlayerToPlayPayload is carried by KindNextPlayerToPlay.
type NextPlayerToPlayPayload struct {
	CurrentPlayerID uuid.UUID                              `json:"currentPlayerId"`
	CurrentCards    *[engine.PlayerCardSize]*PlayerCard     `json:"currentCards,omitempty"`
	Stack           [engine.PlayerNumber]*PlayerCard        `json:"stack"`
	UUID            uuid.UUID                               `json:"uuid"`
}

// UpdateStackAndScorePayload is carried by KindUpdateStackAndScore.
type UpdateStackAndScorePayload struct {
	Stack         [engine.PlayerNumber]*PlayerCard     `json:"stack"`
	PlayerScores  [engine.PlayerNumber]PlayerScoreWire `json:"playerScores"`
	CurrentScores *[engine.PlayerNumber]PlayerScoreWire `json:"currentScores,omitempty"`
}

// EndPayload is carried by KindEnd.
type EndPayload struct {
	PlayerScores [engine.PlayerNumber]PlayerScoreWire `json:"playerScores"`
}

// PlayPayload is carried by KindPlay (inbound).
type PlayPayload struct {
	Card PlayerCard `json:"card"`
}

// StatePayload is carried by KindState.
type StatePayload struct {
	Mode            string                               `json:"mode"`
	Seats           [4]*uuid.UUID                        `json:"seats,omitempty"`
	PlayerScores    [engine.PlayerNumber]PlayerScoreWire `json:"playerScores"`
	CurrentScores   [engine.PlayerNumber]PlayerScoreWire `json:"currentScores"`
	CurrentCards    [engine.PlayerCardSize]*PlayerCard    `json:"currentCards"`
	CurrentStack    [engine.PlayerNumber]*PlayerCard      `json:"currentStack"`
	CurrentHand     uint8                                `json:"currentHand"`
	CurrentPlayerID *uuid.UUID                            `json:"currentPlayerId,omitempty"`
	Hands           uint8                                `json:"hands"`
}

// PlayerErrorPayload is carried by KindPlayerError.
type PlayerErrorPayload struct {
	Kind GameErrorKind `json:"kind"`
}
