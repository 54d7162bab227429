package room

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hearts/internal/bus"
	"hearts/internal/logging"
	"hearts/internal/metrics"
	"hearts/internal/roommsg"
)

// fallbackKind distinguishes which bot heuristic a timed-out turn falls
// back to: a trick play, or a card-exchange pass.
type fallbackKind int

const (
	fallbackPlay fallbackKind = iota
	fallbackReplaceCards
)

// superviseTurn watches the bus for TIMEOUT_SECS waiting for the turn
// identified by marker to move on. If it doesn't, it deactivates its own
// receiver, publishes a unicast TimedOut notice to expected, then publishes
// an actor-internal fallback message naming the configured bot action, and
// exits. It never mutates room state directly.
func superviseTurn(ctx context.Context, roomID uuid.UUID, b *bus.Bus, recv *bus.Receiver, expected, marker uuid.UUID, fb fallbackKind) {
	defer recv.Close()

	deadline := time.Now().Add(timeoutDuration)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			fireTimeout(ctx, roomID, b, recv, expected, fb)
			return
		}

		recvCtx, cancel := context.WithTimeout(ctx, remaining)
		msg, err := recv.Recv(recvCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return // parent room shutting down
			}
			// our own deadline elapsed (context.DeadlineExceeded) or the
			// bus closed; either way re-check the wall clock deadline.
			if time.Now().After(deadline) {
				fireTimeout(ctx, roomID, b, recv, expected, fb)
				return
			}
			continue
		}

		if superseded(msg, marker) {
			return
		}
	}
}

// superseded reports whether msg tells this supervisor its turn has already
// moved on: a fresh turn-advance with a different TurnMarker, or the match
// ending outright.
func superseded(msg roommsg.Message, ourMarker uuid.UUID) bool {
	switch msg.Type {
	case roommsg.KindEnd:
		return true
	case roommsg.KindNewHand, roommsg.KindStartHand, roommsg.KindNextPlayerToReplaceCards, roommsg.KindNextPlayerToPlay:
		var withMarker struct {
			UUID uuid.UUID `json:"uuid"`
		}
		if err := msg.Decode(&withMarker); err != nil {
			return false
		}
		return withMarker.UUID != ourMarker
	default:
		return false
	}
}

func fireTimeout(ctx context.Context, roomID uuid.UUID, b *bus.Bus, recv *bus.Receiver, expected uuid.UUID, fb fallbackKind) {
	recv.Deactivate()
	metrics.SupervisorTimeoutsFired.WithLabelValues(roomID.String()).Inc()

	if err := b.Publish(ctx, roommsg.System(&expected, roommsg.KindTimedOut, nil)); err != nil {
		logging.Warn(ctx, "supervisor: publish timedOut failed", zap.Error(err))
		return
	}

	kind := roommsg.KindPlayBotFallback
	if fb == fallbackReplaceCards {
		kind = roommsg.KindReplaceCardsBotFallback
	}
	if err := b.Publish(ctx, roommsg.FromUser(expected, kind, nil)); err != nil {
		logging.Warn(ctx, "supervisor: publish fallback failed", zap.Error(err))
	}
}
