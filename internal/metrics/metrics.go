// Package metrics declares the room actor's Prometheus instrumentation.
//
// Naming convention: namespace_subsystem_name.
//   - namespace: hearts (application-level grouping)
//   - subsystem: room, bus, supervisor, bridge (feature-level grouping)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hearts",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of rooms held by the registry.",
	})

	RoomPhaseTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hearts",
		Subsystem: "room",
		Name:      "phase_transitions_total",
		Help:      "Total room phase transitions (waiting->started, started->done).",
	}, []string{"to"})

	BusQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hearts",
		Subsystem: "bus",
		Name:      "subscriber_queue_depth",
		Help:      "Buffered message count on a bus subscriber's channel.",
	}, []string{"room_id"})

	SupervisorTimeoutsFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hearts",
		Subsystem: "supervisor",
		Name:      "timeouts_fired_total",
		Help:      "Total turns that expired and fell back to a bot move.",
	}, []string{"room_id"})

	BridgeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hearts",
		Subsystem: "bridge",
		Name:      "connections_active",
		Help:      "Current number of connected web-socket bridges.",
	})

	BridgeRateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hearts",
		Subsystem: "bridge",
		Name:      "rate_limited_total",
		Help:      "Total inbound frames dropped for exceeding the per-user rate limit.",
	}, []string{"room_id"})
)
