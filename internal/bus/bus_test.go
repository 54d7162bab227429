package bus

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hearts/internal/roommsg"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishDeliversToAllActiveSubscribers(t *testing.T) {
	b := New(0) // below-minimum capacity raised to DefaultCapacity
	defer b.Close()

	r1, err := b.Subscribe()
	require.NoError(t, err)
	defer r1.Close()
	r2, err := b.Subscribe()
	require.NoError(t, err)
	defer r2.Close()

	msg := roommsg.Broadcast(roommsg.KindJoin, nil)
	require.NoError(t, b.Publish(context.Background(), msg))

	got1, err := r1.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, roommsg.KindJoin, got1.Type)

	got2, err := r2.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, roommsg.KindJoin, got2.Type)
}

func TestDeactivateMutesWithoutDroppingPosition(t *testing.T) {
	b := New(DefaultCapacity)
	defer b.Close()

	r, err := b.Subscribe()
	require.NoError(t, err)
	defer r.Close()

	r.Deactivate()
	require.NoError(t, b.Publish(context.Background(), roommsg.Broadcast(roommsg.KindTimedOut, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = r.Recv(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	r.Activate()
	require.NoError(t, b.Publish(context.Background(), roommsg.Broadcast(roommsg.KindEnd, nil)))
	got, err := r.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, roommsg.KindEnd, got.Type)
}

func TestPublishAfterCloseReturnsErrClosed(t *testing.T) {
	b := New(DefaultCapacity)
	r, err := b.Subscribe()
	require.NoError(t, err)

	b.Close()
	defer r.Close()

	err = b.Publish(context.Background(), roommsg.Broadcast(roommsg.KindJoin, nil))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = r.Recv(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSubscribeAfterCloseFails(t *testing.T) {
	b := New(DefaultCapacity)
	b.Close()

	_, err := b.Subscribe()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestUnsubscribedReceiverNoLongerDelivered(t *testing.T) {
	b := New(DefaultCapacity)
	defer b.Close()

	r, err := b.Subscribe()
	require.NoError(t, err)
	r.Close()

	require.NoError(t, b.Publish(context.Background(), roommsg.Broadcast(roommsg.KindJoin, nil)))
	assert.Equal(t, 0, r.Pending())
}

func TestPendingReportsQueueDepth(t *testing.T) {
	b := New(DefaultCapacity)
	defer b.Close()

	r, err := b.Subscribe()
	require.NoError(t, err)
	defer r.Close()

	r.Deactivate()
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Publish(context.Background(), roommsg.FromUser(uuid.New(), roommsg.KindPlay, nil)))
	}
	assert.Equal(t, 0, r.Pending()) // deactivated receiver never enqueues

	r.Activate()
	require.NoError(t, b.Publish(context.Background(), roommsg.Broadcast(roommsg.KindJoin, nil)))
	assert.Equal(t, 1, r.Pending())
}
