// Package room implements the room actor: the single-writer state machine
// that owns one Hearts match's RoomState and broadcast bus, the Timeout
// Supervisor it spawns per human turn, and the concurrent Room Registry
// that holds every room in the process.
package room

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hearts/internal/bus"
	"hearts/internal/directory"
	"hearts/internal/engine"
	"hearts/internal/logging"
	"hearts/internal/metrics"
	"hearts/internal/roommsg"
)

// actor is the sole writer to a room's state. It consumes inbound messages
// from its own subscription on the room's bus and reacts sequentially, one
// message at a time, which is what gives engine mutation its total order.
type actor struct {
	id    uuid.UUID
	bus   *bus.Bus
	recv  *bus.Receiver
	dir   directory.Directory
	state *roomState

	// fatal records a publish failure; the run loop exits once this is
	// set, matching the specification's "bus errors are fatal" rule.
	fatal error
}

func newActor(id uuid.UUID, b *bus.Bus, recv *bus.Receiver, dir directory.Directory) *actor {
	return &actor{
		id:    id,
		bus:   b,
		recv:  recv,
		dir:   dir,
		state: newRoomState(),
	}
}

// Run is the actor's event loop. It returns once the bus closes, the
// context is cancelled, or a publish fails.
func (a *actor) Run(ctx context.Context) error {
	ctx = logging.WithRoom(ctx, a.id.String())
	defer a.recv.Close()

	for {
		msg, err := a.recv.Recv(ctx)
		if err != nil {
			return err
		}
		a.handle(ctx, msg)
		metrics.BusQueueDepth.WithLabelValues(a.id.String()).Set(float64(a.recv.Pending()))
		if a.fatal != nil {
			return a.fatal
		}
	}
}

func (a *actor) handle(ctx context.Context, msg roommsg.Message) {
	switch msg.Type {
	case roommsg.KindJoin:
		a.handleJoin(ctx, msg)
	case roommsg.KindJoinBot:
		if a.filteredAsViewer(msg) {
			return
		}
		a.handleJoinBot(ctx, msg)
	case roommsg.KindGetCards:
		if a.filteredAsViewer(msg) {
			return
		}
		a.handleGetCards(ctx, msg)
	case roommsg.KindReplaceCards:
		if a.filteredAsViewer(msg) {
			return
		}
		a.handleReplaceCards(ctx, msg)
	case roommsg.KindPlay:
		if a.filteredAsViewer(msg) {
			return
		}
		a.handlePlay(ctx, msg)
	case roommsg.KindGetCurrentState:
		a.handleGetCurrentState(ctx, msg)
	case roommsg.KindPlayBotFallback:
		a.handlePlayBotFallback(ctx, msg)
	case roommsg.KindReplaceCardsBotFallback:
		a.handleReplaceCardsBotFallback(ctx, msg)
	default:
		// Either one of the actor's own outbound broadcasts looping back
		// on its own subscription, or an outbound-only kind a client
		// mistakenly echoed. Neither needs a reaction.
	}
}

// filteredAsViewer implements the viewer rule: a viewer may only send Join
// and GetCurrentState; every other inbound kind is silently dropped.
func (a *actor) filteredAsViewer(msg roommsg.Message) bool {
	if msg.FromUserID == nil {
		return false
	}
	return a.state.roleOf(*msg.FromUserID) == roleViewer
}

func (a *actor) publish(ctx context.Context, msg roommsg.Message) {
	if err := a.bus.Publish(ctx, msg); err != nil {
		logging.Error(ctx, "actor: publish failed", zap.Error(err))
		a.fatal = err
	}
}

func (a *actor) unicastError(ctx context.Context, to uuid.UUID, kind roommsg.GameErrorKind) {
	a.publish(ctx, roommsg.System(&to, roommsg.KindPlayerError, roommsg.PlayerErrorPayload{Kind: kind}))
}

// --- Join policy -----------------------------------------------------------

func (a *actor) handleJoin(ctx context.Context, msg roommsg.Message) {
	if msg.FromUserID == nil {
		return
	}
	id := *msg.FromUserID

	if a.state.phase == Waiting {
		if a.state.roleOf(id) != roleNone {
			a.unicastError(ctx, id, roommsg.GameErrorStateError)
			return
		}
		slot := a.state.lowestEmptySeat()
		if slot == -1 {
			a.unicastError(ctx, id, roommsg.GameErrorStateError)
			return
		}
		a.state.seats[slot] = &id
		a.publish(ctx, roommsg.Broadcast(roommsg.KindJoined, roommsg.JoinedPayload{UserID: id}))
		a.broadcastWaitingForPlayers(ctx)
		a.maybeStartGame(ctx)
		return
	}

	switch a.state.roleOf(id) {
	case roleSeated:
		a.unicastError(ctx, id, roommsg.GameErrorStateError)
	case roleViewer:
		// already a viewer; re-joining is a no-op.
	default:
		a.state.viewers[id] = struct{}{}
		a.publish(ctx, roommsg.Broadcast(roommsg.KindViewerJoined, roommsg.JoinedPayload{UserID: id}))
	}
}

func (a *actor) handleJoinBot(ctx context.Context, msg roommsg.Message) {
	if msg.FromUserID == nil {
		return
	}
	caller := *msg.FromUserID
	if a.state.phase != Waiting {
		a.unicastError(ctx, caller, roommsg.GameErrorStateError)
		return
	}
	slot := a.state.lowestEmptySeat()
	if slot == -1 {
		a.unicastError(ctx, caller, roommsg.GameErrorStateError)
		return
	}
	botID := uuid.New()
	a.state.seats[slot] = &botID
	a.state.bots[slot] = &botID
	a.publish(ctx, roommsg.Broadcast(roommsg.KindJoined, roommsg.JoinedPayload{UserID: botID}))
	a.broadcastWaitingForPlayers(ctx)
	a.maybeStartGame(ctx)
}

// broadcastWaitingForPlayers reports the room's current seating so a late
// joiner (or anyone re-requesting state) can see who else is waiting.
func (a *actor) broadcastWaitingForPlayers(ctx context.Context) {
	a.publish(ctx, roommsg.Broadcast(roommsg.KindWaitingForPlayers, roommsg.WaitingForPlayersPayload{
		Seats: a.state.seats,
	}))
}

// maybeStartGame transitions Waiting -> Started once the fourth seat fills:
// it resolves every seat's User via the directory, instantiates the engine,
// and emits the first NewHand.
func (a *actor) maybeStartGame(ctx context.Context) {
	if a.state.seatCount() != engine.PlayerNumber {
		return
	}

	var seats [engine.PlayerNumber]engine.Seat
	for i, seatID := range a.state.seats {
		isBot := a.state.bots[i] != nil
		var user directory.User
		if isBot {
			user = directory.Bot(*seatID)
		} else {
			user = a.dir.Resolve(*seatID)
		}
		a.state.users[i] = &user
		seats[i] = engine.Seat{UserID: *seatID, IsBot: isBot}
	}

	a.state.eng = engine.New(seats, DefaultHands)
	a.state.phase = Started
	metrics.RoomPhaseTransitions.WithLabelValues(Started.String()).Inc()

	a.broadcastNewHand(ctx)
}

// --- Player actions ---------------------------------------------------------

func (a *actor) handleGetCards(ctx context.Context, msg roommsg.Message) {
	if msg.FromUserID == nil {
		return
	}
	id := *msg.FromUserID
	if a.state.phase != Started {
		a.unicastError(ctx, id, roommsg.GameErrorStateError)
		return
	}
	hand := a.state.eng.GetPlayerCards(id)
	a.publish(ctx, roommsg.System(&id, roommsg.KindReceiveCards, roommsg.ReceiveCardsPayload{
		Hand: roommsg.HandToWire(hand),
	}))
}

func (a *actor) handleReplaceCards(ctx context.Context, msg roommsg.Message) {
	if msg.FromUserID == nil {
		return
	}
	id := *msg.FromUserID
	if a.state.phase != Started {
		a.unicastError(ctx, id, roommsg.GameErrorStateError)
		return
	}
	var payload roommsg.ReplaceCardsPayload
	if err := msg.Decode(&payload); err != nil {
		a.unicastError(ctx, id, roommsg.GameErrorUnknownCard)
		return
	}
	var positions [engine.NumberReplaceableCards]engine.PositionInDeck
	for i, c := range payload.Cards {
		positions[i] = engine.PositionInDeck(c.PositionInDeck)
	}
	if gameErr := a.state.eng.ExchangeCards(id, positions); gameErr != nil {
		a.unicastError(ctx, id, roommsg.ErrKindToWire(gameErr.Kind))
		return
	}
	a.sendAfterCardsReplaced(ctx)
}

func (a *actor) handlePlay(ctx context.Context, msg roommsg.Message) {
	if msg.FromUserID == nil {
		return
	}
	id := *msg.FromUserID
	if a.state.phase != Started {
		a.unicastError(ctx, id, roommsg.GameErrorStateError)
		return
	}
	var payload roommsg.PlayPayload
	if err := msg.Decode(&payload); err != nil {
		a.unicastError(ctx, id, roommsg.GameErrorUnknownCard)
		return
	}
	position := engine.PositionInDeck(payload.Card.PositionInDeck)
	if gameErr := a.state.eng.Play(id, position); gameErr != nil {
		a.unicastError(ctx, id, roommsg.ErrKindToWire(gameErr.Kind))
		return
	}
	a.sendAfterPlayed(ctx)
}

func (a *actor) handleGetCurrentState(ctx context.Context, msg roommsg.Message) {
	if msg.FromUserID == nil {
		return
	}
	id := *msg.FromUserID
	a.publish(ctx, roommsg.System(&id, roommsg.KindState, a.snapshot(id)))
}

func (a *actor) snapshot(caller uuid.UUID) roommsg.StatePayload {
	if a.state.phase == Waiting {
		return roommsg.StatePayload{Mode: Waiting.String(), Seats: a.state.seats}
	}
	eng := a.state.eng
	payload := roommsg.StatePayload{
		Mode:          eng.State().String(),
		PlayerScores:  roommsg.ScoresToWire(eng.PlayerScoreByID()),
		CurrentScores: roommsg.ScoresToWire(eng.CurrentScoreByID()),
		CurrentCards:  roommsg.HandToWire(eng.GetPlayerCards(caller)),
		CurrentStack:  roommsg.StackToWire(eng.Stack()),
		CurrentHand:   eng.CurrentHand(),
		Hands:         eng.Hands(),
	}
	if eng.State() != engine.End {
		current := eng.CurrentPlayerID()
		payload.CurrentPlayerID = &current
	}
	return payload
}

// --- Bot fallback (timeouts and genuine bot turns share this path) --------

func (a *actor) handlePlayBotFallback(ctx context.Context, msg roommsg.Message) {
	if a.state.phase != Started || a.state.eng.State() != engine.PlayingHand {
		return
	}
	a.state.eng.PlayBot()
	a.sendAfterPlayed(ctx)
}

func (a *actor) handleReplaceCardsBotFallback(ctx context.Context, msg roommsg.Message) {
	if a.state.phase != Started || a.state.eng.State() != engine.ExchangeCards {
		return
	}
	a.state.eng.ReplaceCardsBot()
	a.sendAfterCardsReplaced(ctx)
}

// --- Post-action emission (spec's send_message_after_played /
//     send_message_after_cards_replaced) ------------------------------------

func (a *actor) sendAfterPlayed(ctx context.Context) {
	eng := a.state.eng
	switch eng.State() {
	case engine.PlayingHand:
		a.broadcastNextPlayerToPlay(ctx)
	case engine.ComputeScore:
		stack := eng.Stack()
		eng.ComputeScore()
		a.broadcastUpdateStackAndScore(ctx, stack)

		select {
		case <-time.After(computeScoreDelayDuration):
		case <-ctx.Done():
			return
		}

		switch eng.State() {
		case engine.PlayingHand:
			a.broadcastNextPlayerToPlay(ctx)
		case engine.EndHand, engine.ExchangeCards:
			eng.DealCards()
			a.broadcastNewHand(ctx)
		case engine.End:
			a.state.phase = Done
			metrics.RoomPhaseTransitions.WithLabelValues(Done.String()).Inc()
			a.broadcastEnd(ctx)
		default:
			logging.Error(ctx, "actor: unexpected engine state after compute_score", zap.String("state", eng.State().String()))
		}
	default:
		logging.Error(ctx, "actor: unexpected engine state after play", zap.String("state", eng.State().String()))
	}
}

func (a *actor) sendAfterCardsReplaced(ctx context.Context) {
	eng := a.state.eng
	switch eng.State() {
	case engine.ExchangeCards:
		marker := uuid.New()
		a.state.currentMarker = marker
		current := eng.CurrentPlayerID()
		a.publish(ctx, roommsg.Broadcast(roommsg.KindNextPlayerToReplaceCards, roommsg.NextPlayerToReplaceCardsPayload{
			CurrentPlayerID: current,
			UUID:            marker,
		}))
		a.maybeSpawnSupervisor(ctx, current, marker, fallbackReplaceCards)
	case engine.PlayingHand:
		marker := uuid.New()
		a.state.currentMarker = marker
		current := eng.CurrentPlayerID()
		a.publish(ctx, roommsg.Broadcast(roommsg.KindStartHand, roommsg.StartHandPayload{
			CurrentPlayerID: current,
			UUID:            marker,
		}))
		a.maybeSpawnSupervisor(ctx, current, marker, fallbackPlay)
	default:
		logging.Error(ctx, "actor: unexpected engine state after cards replaced", zap.String("state", eng.State().String()))
	}
}

func (a *actor) broadcastNextPlayerToPlay(ctx context.Context) {
	eng := a.state.eng
	marker := uuid.New()
	a.state.currentMarker = marker
	current := eng.CurrentPlayerID()
	a.publish(ctx, roommsg.Broadcast(roommsg.KindNextPlayerToPlay, roommsg.NextPlayerToPlayPayload{
		CurrentPlayerID: current,
		Stack:           roommsg.StackToWire(eng.Stack()),
		UUID:            marker,
	}))
	a.maybeSpawnSupervisor(ctx, current, marker, fallbackPlay)
}

func (a *actor) broadcastUpdateStackAndScore(ctx context.Context, stack [engine.PlayerNumber]*engine.Card) {
	eng := a.state.eng
	currentScores := roommsg.ScoresToWire(eng.CurrentScoreByID())
	a.publish(ctx, roommsg.Broadcast(roommsg.KindUpdateStackAndScore, roommsg.UpdateStackAndScorePayload{
		Stack:         roommsg.StackToWire(stack),
		PlayerScores:  roommsg.ScoresToWire(eng.PlayerScoreByID()),
		CurrentScores: &currentScores,
	}))
}

func (a *actor) broadcastNewHand(ctx context.Context) {
	eng := a.state.eng
	marker := uuid.New()
	a.state.currentMarker = marker
	a.publish(ctx, roommsg.Broadcast(roommsg.KindNewHand, roommsg.NewHandPayload{
		PlayerIDsInOrder: eng.PlayerIDsInOrder(),
		CurrentPlayerID:  eng.CurrentPlayerID(),
		CurrentHand:      eng.CurrentHand(),
		Hands:            eng.Hands(),
		PlayerScores:     roommsg.ScoresToWire(eng.PlayerScoreByID()),
		UUID:             marker,
	}))
	a.maybeSpawnSupervisor(ctx, eng.CurrentPlayerID(), marker, fallbackReplaceCards)
}

func (a *actor) broadcastEnd(ctx context.Context) {
	a.publish(ctx, roommsg.Broadcast(roommsg.KindEnd, roommsg.EndPayload{
		PlayerScores: roommsg.ScoresToWire(a.state.eng.PlayerScoreByID()),
	}))
}

// --- Turn supervision --------------------------------------------------------

// maybeSpawnSupervisor arranges for playerID's turn to have a deadline. A
// bot seat never needs a human-timeout supervisor: instead its move is
// scheduled after a UX pacing delay, funnelled through the same fallback
// path a timed-out human uses.
func (a *actor) maybeSpawnSupervisor(ctx context.Context, playerID, marker uuid.UUID, fb fallbackKind) {
	if a.state.isBot(playerID) {
		a.scheduleBotAction(ctx, playerID, fb)
		return
	}
	recv, err := a.bus.Subscribe()
	if err != nil {
		logging.Error(ctx, "actor: could not subscribe supervisor", zap.Error(err))
		return
	}
	go superviseTurn(ctx, a.id, a.bus, recv, playerID, marker, fb)
}

func (a *actor) scheduleBotAction(ctx context.Context, botID uuid.UUID, fb fallbackKind) {
	kind := roommsg.KindPlayBotFallback
	if fb == fallbackReplaceCards {
		kind = roommsg.KindReplaceCardsBotFallback
	}
	go func() {
		select {
		case <-time.After(botSleepDuration):
		case <-ctx.Done():
			return
		}
		_ = a.bus.Publish(ctx, roommsg.FromUser(botID, kind, nil))
	}()
}
