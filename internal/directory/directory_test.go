package directory

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveUnregisteredReturnsGuest(t *testing.T) {
	d := New()
	id := uuid.New()

	user := d.Resolve(id)

	assert.Equal(t, id, user.ID)
	assert.True(t, user.IsGuest)
	assert.False(t, user.IsBot)
	assert.True(t, strings.HasPrefix(user.DisplayName, "Guest-"))
	assert.LessOrEqual(t, len(user.DisplayName), MaxDisplayNameLen)
}

func TestRegisterThenResolveReturnsNonGuest(t *testing.T) {
	d := New()
	id := uuid.New()

	d.Register(id, "Ada")
	user := d.Resolve(id)

	assert.False(t, user.IsGuest)
	assert.Equal(t, "Ada", user.DisplayName)
}

func TestRegisterTruncatesOverlongDisplayName(t *testing.T) {
	d := New()
	id := uuid.New()

	d.Register(id, "WayTooLongADisplayNameForSure")
	user := d.Resolve(id)

	assert.Len(t, user.DisplayName, MaxDisplayNameLen)
}

func TestGuestNamesAreStableAndDistinctPerUser(t *testing.T) {
	d := New()
	a, b := uuid.New(), uuid.New()

	first := d.Resolve(a)
	second := d.Resolve(a)
	other := d.Resolve(b)

	assert.Equal(t, first.DisplayName, second.DisplayName)
	assert.NotEqual(t, first.DisplayName, other.DisplayName)
}

func TestBotSynthesizesUnregisteredRecord(t *testing.T) {
	id := uuid.New()
	user := Bot(id)

	assert.Equal(t, id, user.ID)
	assert.True(t, user.IsBot)
	assert.False(t, user.IsGuest)
	assert.True(t, strings.HasPrefix(user.DisplayName, "Bot-"))

	// Registering the directory separately never affects Bot's output:
	// bots never consult the directory.
	d := New()
	d.Register(id, "Ada")
	assert.True(t, strings.HasPrefix(Bot(id).DisplayName, "Bot-"))
}
