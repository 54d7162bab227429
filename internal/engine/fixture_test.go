package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeats() [PlayerNumber]Seat {
	var seats [PlayerNumber]Seat
	for i := range seats {
		seats[i] = Seat{UserID: uuid.New()}
	}
	return seats
}

func TestNewDealsExchangePhase(t *testing.T) {
	seats := newTestSeats()
	eng := New(seats, 3)

	require.Equal(t, ExchangeCards, eng.State())
	require.Equal(t, uint8(1), eng.CurrentHand())
	require.Equal(t, uint8(3), eng.Hands())
	require.Equal(t, seats[0].UserID, eng.CurrentPlayerID())

	for _, seat := range seats {
		hand := eng.GetPlayerCards(seat.UserID)
		count := 0
		for _, c := range hand {
			if c != nil {
				count++
			}
		}
		assert.Equal(t, PlayerCardSize, count)
	}
}

// exchangeAll drives every seat's card exchange in CurrentPlayerID order,
// always passing the first three non-nil cards in hand, and returns once
// the engine has left ExchangeCards.
func exchangeAll(t *testing.T, eng Engine, seats [PlayerNumber]Seat) {
	t.Helper()
	for i := 0; i < PlayerNumber; i++ {
		current := eng.CurrentPlayerID()
		hand := eng.GetPlayerCards(current)
		var positions [NumberReplaceableCards]PositionInDeck
		picked := 0
		for _, c := range hand {
			if c == nil {
				continue
			}
			positions[picked] = c.PositionInDeck
			picked++
			if picked == NumberReplaceableCards {
				break
			}
		}
		require.Nil(t, eng.ExchangeCards(current, positions))
	}
}

func TestExchangeCardsWrongTurnRejected(t *testing.T) {
	seats := newTestSeats()
	eng := New(seats, 3)

	notCurrent := seats[1].UserID
	hand := eng.GetPlayerCards(notCurrent)
	var positions [NumberReplaceableCards]PositionInDeck
	for i := range positions {
		positions[i] = hand[i].PositionInDeck
	}

	err := eng.ExchangeCards(notCurrent, positions)
	require.NotNil(t, err)
	assert.Equal(t, ErrNotYourTurn, err.Kind)
}

func TestExchangeCardsThenPlayingHand(t *testing.T) {
	seats := newTestSeats()
	eng := New(seats, 3)

	exchangeAll(t, eng, seats)

	require.Equal(t, PlayingHand, eng.State())
}

func TestPlayWrongPhaseRejected(t *testing.T) {
	seats := newTestSeats()
	eng := New(seats, 3)

	current := eng.CurrentPlayerID()
	hand := eng.GetPlayerCards(current)
	err := eng.Play(current, hand[0].PositionInDeck)
	require.NotNil(t, err)
	assert.Equal(t, ErrWrongPhase, err.Kind)
}

func TestPlayUnheldCardRejectedAsIllegalMove(t *testing.T) {
	seats := newTestSeats()
	eng := New(seats, 3)
	exchangeAll(t, eng, seats)

	current := eng.CurrentPlayerID()
	err := eng.Play(current, PositionInDeck(999))
	require.NotNil(t, err)
	assert.Equal(t, ErrIllegalMove, err.Kind)
}

func TestPlayBotAdvancesTrick(t *testing.T) {
	seats := newTestSeats()
	eng := New(seats, 3)
	exchangeAll(t, eng, seats)

	for i := 0; i < PlayerNumber-1; i++ {
		require.Equal(t, PlayingHand, eng.State())
		eng.PlayBot()
	}
	eng.PlayBot()
	require.Equal(t, ComputeScore, eng.State())
}

func TestComputeScoreAdvancesToEndHandOrPlayingHand(t *testing.T) {
	seats := newTestSeats()
	eng := New(seats, 3)
	exchangeAll(t, eng, seats)

	for trick := 0; trick < PlayerCardSize; trick++ {
		for i := 0; i < PlayerNumber; i++ {
			eng.PlayBot()
		}
		require.Equal(t, ComputeScore, eng.State())
		eng.ComputeScore()
	}

	require.Equal(t, EndHand, eng.State())

	var total int
	for _, s := range eng.PlayerScoreByID() {
		total += s.Score
	}
	assert.Equal(t, 26, total) // 13 hearts (1pt) + queen of spades (13pt)
}

func TestDealCardsStartsFreshHand(t *testing.T) {
	seats := newTestSeats()
	eng := New(seats, 3)
	exchangeAll(t, eng, seats)
	for trick := 0; trick < PlayerCardSize; trick++ {
		for i := 0; i < PlayerNumber; i++ {
			eng.PlayBot()
		}
		eng.ComputeScore()
	}
	require.Equal(t, EndHand, eng.State())

	eng.DealCards()
	require.Equal(t, ExchangeCards, eng.State())
	require.Equal(t, uint8(2), eng.CurrentHand())
}
