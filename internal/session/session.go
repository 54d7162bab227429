// Package session resolves the authenticated UserId behind a web-socket
// upgrade request. Full account issuance (registration, login, password
// storage) is out of scope for the room actor core; this package owns only
// the minimal "given a request, who is this" contract the bridge needs.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrNoSession is returned when a request carries no resolvable identity.
	ErrNoSession = errors.New("session: no identity on request")
	// ErrInvalidToken is returned when a token is present but rejected.
	ErrInvalidToken = errors.New("session: invalid token")
)

// Claims is the JWT payload a session cookie/header carries.
type Claims struct {
	UserID  uuid.UUID `json:"userId"`
	IsGuest bool      `json:"isGuest"`
	jwt.RegisteredClaims
}

// Resolver extracts the authenticated UserId from an incoming HTTP request
// (the web-socket upgrade request, before it becomes a socket).
type Resolver interface {
	Resolve(r *http.Request) (uuid.UUID, error)
}

// jwtResolver reads a signed session cookie and validates it with a shared
// secret. Issuance of that cookie happens upstream of this module.
type jwtResolver struct {
	secret     []byte
	cookieName string
}

// NewJWTResolver builds a Resolver that reads cookieName and validates it as
// an HMAC-signed JWT (any HS* method) with the given secret.
func NewJWTResolver(secret []byte, cookieName string) Resolver {
	return &jwtResolver{secret: secret, cookieName: cookieName}
}

func (s *jwtResolver) Resolve(r *http.Request) (uuid.UUID, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return uuid.Nil, ErrNoSession
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	return claims.UserID, nil
}

// Issue mints a session token for userID, valid for ttl. Exposed so tests
// and local tooling can mint cookies without a separate login flow.
func Issue(secret []byte, userID uuid.UUID, guest bool, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID:  userID,
		IsGuest: guest,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
