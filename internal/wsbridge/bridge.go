// Package wsbridge adapts one client's web-socket connection onto a room's
// broadcast bus: an Outbound task filters the bus for this client and
// writes frames, an Inbound task decodes client frames and publishes them.
package wsbridge

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"hearts/internal/bus"
	"hearts/internal/logging"
	"hearts/internal/metrics"
	"hearts/internal/room"
	"hearts/internal/roommsg"
	"hearts/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameBytes  = 1 << 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Bridge owns one client's connection for the lifetime of the socket.
type Bridge struct {
	conn     *websocket.Conn
	roomID   uuid.UUID
	userID   uuid.UUID
	registry *room.Registry
	limiter  *limiter.Limiter
}

// Serve upgrades r to a web-socket, resolves the caller's identity via
// resolver, and bridges it to the room named by roomID until the socket
// closes. It blocks for the connection's lifetime.
func Serve(w http.ResponseWriter, r *http.Request, roomID uuid.UUID, registry *room.Registry, resolver session.Resolver, lim *limiter.Limiter) error {
	userID, err := resolver.Resolve(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return err
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	b := &Bridge{
		conn:     conn,
		roomID:   roomID,
		userID:   userID,
		registry: registry,
		limiter:  lim,
	}
	b.run(r.Context())
	return nil
}

// run obtains a fresh receiver on the room's bus, restarting a dead actor
// first if needed, then forks the outbound/inbound task pair and waits for
// either to finish before tearing the connection down.
func (b *Bridge) run(ctx context.Context) {
	ctx = logging.WithUser(logging.WithRoom(ctx, b.roomID.String()), b.userID.String())
	defer b.conn.Close()

	h, err := b.registry.Get(b.roomID)
	if err != nil {
		logging.Warn(ctx, "bridge: unknown room", zap.Error(err))
		return
	}
	h.Restart(ctx)

	recv, err := h.Subscribe()
	if err != nil {
		logging.Warn(ctx, "bridge: subscribe failed", zap.Error(err))
		return
	}
	defer recv.Close()

	metrics.BridgeConnections.Inc()
	defer metrics.BridgeConnections.Dec()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{}, 2)
	go func() { b.outbound(connCtx, recv); done <- struct{}{} }()
	go func() { b.inbound(connCtx, h.Bus()); done <- struct{}{} }()

	<-done
	cancel()
	<-done
}

// outbound pulls every message delivered to this client from recv and
// writes it to the socket, plus a periodic ping for liveness.
func (b *Bridge) outbound(ctx context.Context, recv *bus.Receiver) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		recvCtx, cancel := context.WithTimeout(ctx, pingPeriod)
		msg, err := recv.Recv(recvCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// recvCtx's own deadline elapsed: send a liveness ping.
			b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := b.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}

		if !msg.DeliverableTo(b.userID) {
			continue
		}

		raw, err := json.Marshal(msg)
		if err != nil {
			logging.Error(ctx, "bridge: marshal outbound message failed", zap.Error(err))
			return
		}
		b.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := b.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			return
		}
	}
}

// inbound reads client frames, stamps them with the authenticated user,
// rate-limits, and publishes them on the room's bus.
func (b *Bridge) inbound(ctx context.Context, bs *bus.Bus) {
	b.conn.SetReadLimit(maxFrameBytes)
	b.conn.SetReadDeadline(time.Now().Add(pongWait))
	b.conn.SetPongHandler(func(string) error {
		b.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := b.conn.ReadMessage()
		if err != nil {
			return
		}

		if b.limiter != nil {
			lctx, lerr := b.limiter.Get(ctx, b.userID.String())
			if lerr == nil && lctx.Reached {
				metrics.BridgeRateLimited.WithLabelValues(b.roomID.String()).Inc()
				continue
			}
		}

		var msg roommsg.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			logging.Warn(ctx, "bridge: malformed frame, closing", zap.Error(err))
			return
		}
		msg.FromUserID = &b.userID

		if err := bs.Publish(ctx, msg); err != nil {
			return
		}
	}
}
