package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "hearts_session"

func TestIssueThenResolveRoundTrips(t *testing.T) {
	secret := []byte("test-secret")
	resolver := NewJWTResolver(secret, cookieName)
	userID := uuid.New()

	token, err := Issue(secret, userID, false, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/ws/room", nil)
	r.AddCookie(&http.Cookie{Name: cookieName, Value: token})

	got, err := resolver.Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestResolveMissingCookieReturnsErrNoSession(t *testing.T) {
	resolver := NewJWTResolver([]byte("test-secret"), cookieName)
	r := httptest.NewRequest(http.MethodGet, "/ws/room", nil)

	_, err := resolver.Resolve(r)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestResolveWrongSecretRejected(t *testing.T) {
	resolver := NewJWTResolver([]byte("server-secret"), cookieName)
	token, err := Issue([]byte("attacker-secret"), uuid.New(), false, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/ws/room", nil)
	r.AddCookie(&http.Cookie{Name: cookieName, Value: token})

	_, err = resolver.Resolve(r)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveExpiredTokenRejected(t *testing.T) {
	secret := []byte("test-secret")
	resolver := NewJWTResolver(secret, cookieName)

	token, err := Issue(secret, uuid.New(), false, -time.Minute)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/ws/room", nil)
	r.AddCookie(&http.Cookie{Name: cookieName, Value: token})

	_, err = resolver.Resolve(r)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveRejectsUnsignedAlgNone(t *testing.T) {
	secret := []byte("test-secret")
	resolver := NewJWTResolver(secret, cookieName)

	claims := &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/ws/room", nil)
	r.AddCookie(&http.Cookie{Name: cookieName, Value: token})

	_, err = resolver.Resolve(r)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuePreservesGuestFlag(t *testing.T) {
	secret := []byte("test-secret")
	userID := uuid.New()

	token, err := Issue(secret, userID, true, time.Hour)
	require.NoError(t, err)

	parsed := &Claims{}
	_, err = jwt.ParseWithClaims(token, parsed, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.IsGuest)
}
