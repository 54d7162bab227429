package engine

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// fixture is the default, complete implementation of Engine. It enforces
// the classic Hearts rules (follow suit, hearts-broken gate, penalty
// scoring) well enough to drive a real match end to end; it does not
// implement shoot-the-moon.
type fixture struct {
	seats [PlayerNumber]Seat
	order [PlayerNumber]uuid.UUID

	hands       uint8
	currentHand uint8
	state       SubState

	rng *rand.Rand

	playerHands [PlayerNumber][PlayerCardSize]*Card // slot index is arbitrary; nil once played
	stack       [PlayerNumber]*Card
	leadSuit    *TypeCard
	heartsBroke bool
	leaderIdx   int // seat index that led the current trick
	currentIdx  int // seat index whose turn it is

	handCaptured  [PlayerNumber]int // penalty points captured this hand, by seat index
	matchScore    [PlayerNumber]int

	exchangeOut   [PlayerNumber][NumberReplaceableCards]PositionInDeck
	exchangeDone  [PlayerNumber]bool
	exchangeCount int
	exchangeIdx   int // seat index currently expected to submit
}

func newFixture(seats [PlayerNumber]Seat, hands uint8) *fixture {
	f := &fixture{
		seats: seats,
		hands: hands,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for i, s := range seats {
		f.order[i] = s.UserID
	}
	f.currentHand = 1
	f.dealHand()
	f.state = ExchangeCards
	f.exchangeIdx = 0
	return f
}

func (f *fixture) seatIndex(user uuid.UUID) int {
	for i, id := range f.order {
		if id == user {
			return i
		}
	}
	return -1
}

func (f *fixture) dealHand() {
	deck := newDeck()
	f.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	for seat := 0; seat < PlayerNumber; seat++ {
		for slot := 0; slot < PlayerCardSize; slot++ {
			f.playerHands[seat][slot] = deck[seat*PlayerCardSize+slot]
		}
	}
	f.stack = [PlayerNumber]*Card{}
	f.leadSuit = nil
	f.heartsBroke = false
	f.handCaptured = [PlayerNumber]int{}
	f.exchangeOut = [PlayerNumber][NumberReplaceableCards]PositionInDeck{}
	f.exchangeDone = [PlayerNumber]bool{}
	f.exchangeCount = 0
	f.exchangeIdx = 0

	// The holder of the two of clubs leads the first trick; until the
	// exchange completes currentIdx tracks who exchanges next instead.
	for seat := 0; seat < PlayerNumber; seat++ {
		for _, c := range f.playerHands[seat] {
			if c.PositionInDeck == twoOfClubs {
				f.leaderIdx = seat
			}
		}
	}
	f.currentIdx = f.exchangeIdx
}

func (f *fixture) exchangeDirection() int {
	switch f.currentHand % 4 {
	case 1:
		return 1 // pass left
	case 2:
		return 3 // pass right
	case 3:
		return 2 // pass across
	default:
		return 0 // no pass
	}
}

func (f *fixture) CurrentPlayerID() uuid.UUID {
	if f.state == ExchangeCards {
		return f.order[f.exchangeIdx]
	}
	return f.order[f.currentIdx]
}

func (f *fixture) PlayerIDsInOrder() [PlayerNumber]uuid.UUID { return f.order }

func (f *fixture) PlayerScoreByID() [PlayerNumber]PlayerScore {
	var out [PlayerNumber]PlayerScore
	for i := range out {
		out[i] = PlayerScore{UserID: f.order[i], Score: f.matchScore[i]}
	}
	return out
}

func (f *fixture) CurrentScoreByID() [PlayerNumber]PlayerScore {
	var out [PlayerNumber]PlayerScore
	for i := range out {
		out[i] = PlayerScore{UserID: f.order[i], Score: f.handCaptured[i]}
	}
	return out
}

func (f *fixture) GetPlayerCards(user uuid.UUID) [PlayerCardSize]*Card {
	idx := f.seatIndex(user)
	if idx < 0 {
		return [PlayerCardSize]*Card{}
	}
	return f.playerHands[idx]
}

func (f *fixture) Stack() [PlayerNumber]*Card { return f.stack }
func (f *fixture) State() SubState            { return f.state }
func (f *fixture) CurrentHand() uint8         { return f.currentHand }
func (f *fixture) Hands() uint8               { return f.hands }

func (f *fixture) takeCard(seat int, pos PositionInDeck) *Card {
	for slot, c := range f.playerHands[seat] {
		if c != nil && c.PositionInDeck == pos {
			f.playerHands[seat][slot] = nil
			return c
		}
	}
	return nil
}

func (f *fixture) hasCard(seat int, pos PositionInDeck) bool {
	for _, c := range f.playerHands[seat] {
		if c != nil && c.PositionInDeck == pos {
			return true
		}
	}
	return false
}

func (f *fixture) hasSuit(seat int, suit TypeCard) bool {
	for _, c := range f.playerHands[seat] {
		if c != nil && c.TypeCard == suit {
			return true
		}
	}
	return false
}

func (f *fixture) onlyPenaltyCards(seat int) bool {
	for _, c := range f.playerHands[seat] {
		if c != nil && !isPenaltyCard(c) {
			return false
		}
	}
	return true
}

// ExchangeCards records user's pass. Turn-based: exchangeIdx advances after
// each submission, and the actual card movement happens once all four seats
// have submitted.
func (f *fixture) ExchangeCards(user uuid.UUID, positions [NumberReplaceableCards]PositionInDeck) *Error {
	if f.state != ExchangeCards {
		return NewError(ErrWrongPhase, "not in exchange phase")
	}
	seat := f.seatIndex(user)
	if seat < 0 || seat != f.exchangeIdx {
		return NewError(ErrNotYourTurn, "not your turn to exchange")
	}
	seen := map[PositionInDeck]bool{}
	for _, pos := range positions {
		if seen[pos] {
			return NewError(ErrIllegalMove, "duplicate card in exchange")
		}
		seen[pos] = true
		if !f.hasCard(seat, pos) {
			return NewError(ErrUnknownCard, "card not in hand")
		}
	}
	f.exchangeOut[seat] = positions
	f.exchangeDone[seat] = true
	f.exchangeCount++
	f.exchangeIdx = (f.exchangeIdx + 1) % PlayerNumber

	if f.exchangeCount == PlayerNumber {
		f.finishExchange()
	}
	return nil
}

func (f *fixture) ReplaceCardsBot() {
	seat := f.exchangeIdx
	var chosen [NumberReplaceableCards]PositionInDeck
	picked := 0
	// pick the highest-ranked cards available, a simple greedy heuristic
	hand := append([]*Card{}, f.cardsOf(seat)...)
	sortDescByRank(hand)
	for _, c := range hand {
		if picked == NumberReplaceableCards {
			break
		}
		chosen[picked] = c.PositionInDeck
		picked++
	}
	_ = f.ExchangeCards(f.order[seat], chosen)
}

func (f *fixture) cardsOf(seat int) []*Card {
	out := make([]*Card, 0, PlayerCardSize)
	for _, c := range f.playerHands[seat] {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func sortDescByRank(cards []*Card) {
	for i := 1; i < len(cards); i++ {
		for j := i; j > 0 && cards[j].Rank > cards[j-1].Rank; j-- {
			cards[j], cards[j-1] = cards[j-1], cards[j]
		}
	}
}

func (f *fixture) finishExchange() {
	direction := f.exchangeDirection()
	if direction != 0 {
		received := make([][NumberReplaceableCards]*Card, PlayerNumber)
		for seat := 0; seat < PlayerNumber; seat++ {
			var cards [NumberReplaceableCards]*Card
			for i, pos := range f.exchangeOut[seat] {
				cards[i] = f.takeCard(seat, pos)
			}
			to := (seat + direction) % PlayerNumber
			received[to] = cards
		}
		for seat := 0; seat < PlayerNumber; seat++ {
			for _, c := range received[seat] {
				if c == nil {
					continue
				}
				for slot, existing := range f.playerHands[seat] {
					if existing == nil {
						f.playerHands[seat][slot] = c
						break
					}
				}
			}
		}
	}
	// The two of clubs may have changed hands in the pass.
	for seat := 0; seat < PlayerNumber; seat++ {
		if f.hasCard(seat, twoOfClubs) {
			f.leaderIdx = seat
		}
	}
	f.state = PlayingHand
	f.currentIdx = f.leaderIdx
	f.leadSuit = nil
}

func (f *fixture) Play(user uuid.UUID, position PositionInDeck) *Error {
	if f.state != PlayingHand {
		return NewError(ErrWrongPhase, "not in playing phase")
	}
	seat := f.seatIndex(user)
	if seat < 0 || seat != f.currentIdx {
		return NewError(ErrNotYourTurn, "not your turn")
	}
	if !f.hasCard(seat, position) {
		return NewError(ErrIllegalMove, "card not in hand")
	}
	card := f.cardAt(seat, position)
	if err := f.checkLegal(seat, card); err != nil {
		return err
	}
	f.takeCard(seat, position)
	f.applyPlay(seat, card)
	return nil
}

func (f *fixture) cardAt(seat int, pos PositionInDeck) *Card {
	for _, c := range f.playerHands[seat] {
		if c != nil && c.PositionInDeck == pos {
			return c
		}
	}
	return nil
}

func (f *fixture) checkLegal(seat int, card *Card) *Error {
	leading := f.leadSuit == nil
	if leading {
		if card.TypeCard == Hearts && !f.heartsBroke && !f.onlyPenaltyCards(seat) {
			return NewError(ErrIllegalMove, "hearts not broken yet")
		}
		return nil
	}
	if card.TypeCard != *f.leadSuit && f.hasSuit(seat, *f.leadSuit) {
		return NewError(ErrIllegalMove, "must follow suit")
	}
	return nil
}

func (f *fixture) applyPlay(seat int, card *Card) {
	if f.leadSuit == nil {
		suit := card.TypeCard
		f.leadSuit = &suit
	}
	if isPenaltyCard(card) {
		f.heartsBroke = true
	}
	f.stack[seat] = card

	if f.trickComplete() {
		f.state = ComputeScore
		return
	}
	f.currentIdx = (seat + 1) % PlayerNumber
}

func (f *fixture) trickComplete() bool {
	for _, c := range f.stack {
		if c == nil {
			return false
		}
	}
	return true
}

func (f *fixture) PlayBot() {
	seat := f.currentIdx
	hand := f.cardsOf(seat)
	var legal []*Card
	for _, c := range hand {
		if f.checkLegal(seat, c) == nil {
			legal = append(legal, c)
		}
	}
	if len(legal) == 0 {
		legal = hand
	}
	sortDescByRank(legal)
	choice := legal[len(legal)-1] // lowest ranked legal card
	_ = f.Play(f.order[seat], choice.PositionInDeck)
}

// ComputeScore resolves the just-completed trick: awards penalty points to
// the winner's running hand tally, and if all 13 tricks have been played,
// folds the hand into the match score and advances to EndHand or End.
func (f *fixture) ComputeScore() {
	winner := f.trickWinner()
	points := 0
	for _, c := range f.stack {
		points += penaltyValue(c)
	}
	f.handCaptured[winner] += points

	f.stack = [PlayerNumber]*Card{}
	f.leadSuit = nil
	f.leaderIdx = winner
	f.currentIdx = winner

	if f.handFinished() {
		for i := 0; i < PlayerNumber; i++ {
			f.matchScore[i] += f.handCaptured[i]
		}
		if f.currentHand >= f.hands {
			f.state = End
		} else {
			f.state = EndHand
		}
		return
	}
	f.state = PlayingHand
}

func (f *fixture) trickWinner() int {
	best := -1
	var bestCard *Card
	for seat, c := range f.stack {
		if c == nil || c.TypeCard != *f.leadSuit {
			continue
		}
		if bestCard == nil || c.Rank > bestCard.Rank {
			bestCard = c
			best = seat
		}
	}
	return best
}

func (f *fixture) handFinished() bool {
	for _, c := range f.playerHands[0] {
		if c != nil {
			return false
		}
	}
	return true
}

func (f *fixture) DealCards() {
	if f.state != EndHand {
		return
	}
	f.currentHand++
	f.dealHand()
	f.state = ExchangeCards
}
