package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestActiveRoomsGaugeSettable(t *testing.T) {
	ActiveRooms.Set(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(ActiveRooms))
}

func TestRoomPhaseTransitionsCountsPerLabel(t *testing.T) {
	before := testutil.ToFloat64(RoomPhaseTransitions.WithLabelValues("STARTED"))
	RoomPhaseTransitions.WithLabelValues("STARTED").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RoomPhaseTransitions.WithLabelValues("STARTED")))
}

func TestBridgeRateLimitedCountsPerRoom(t *testing.T) {
	before := testutil.ToFloat64(BridgeRateLimited.WithLabelValues("room-a"))
	BridgeRateLimited.WithLabelValues("room-a").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(BridgeRateLimited.WithLabelValues("room-a")))
}
