package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLNeverNilBeforeInit(t *testing.T) {
	assert.NotNil(t, L())
}

func TestWithRoomAndUserAttachContextValues(t *testing.T) {
	ctx := WithRoom(context.Background(), "room-1")
	ctx = WithUser(ctx, "user-1")

	assert.Equal(t, "room-1", ctx.Value(RoomIDKey))
	assert.Equal(t, "user-1", ctx.Value(UserIDKey))
}

func TestInfoWarnErrorNeverPanicOnBareContext(t *testing.T) {
	assert.NotPanics(t, func() {
		Info(context.Background(), "test info")
		Warn(context.Background(), "test warn")
		Error(context.Background(), "test error")
	})
}

func TestLoggingHelpersToleratesNilContext(t *testing.T) {
	assert.NotPanics(t, func() {
		Info(nil, "test info with nil context")
	})
}
