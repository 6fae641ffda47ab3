package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	token string
}

func (m *memStore) Load() (string, error) { return m.token, nil }

func (m *memStore) Save(token string) error { m.token = token; return nil }

func (m *memStore) Clear() error { m.token = ""; return nil }

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestTokenRoundTrip(t *testing.T) {
	store := &memStore{}
	s := New(store)

	token := signToken(t, Claims{
		UserID: "u-1",
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, s.SignIn(token))

	got, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, token, got)

	claims, err := s.Claims()
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestTokenAbsent(t *testing.T) {
	s := New(&memStore{})
	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = s.Claims()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestTokenExpired(t *testing.T) {
	store := &memStore{}
	store.token = signToken(t, Claims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	s := New(store)

	_, err := s.Token()
	assert.ErrorIs(t, err, ErrExpired)

	// Claims stay readable after expiry.
	claims, err := s.Claims()
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}

func TestTokenWithoutExpiryIsLive(t *testing.T) {
	store := &memStore{token: signToken(t, Claims{UserID: "u-1"})}
	s := New(store)

	_, err := s.Token()
	assert.NoError(t, err)
}

func TestSignInRejectsGarbage(t *testing.T) {
	s := New(&memStore{})
	assert.Error(t, s.SignIn("not-a-jwt"))
}

func TestSignOut(t *testing.T) {
	store := &memStore{token: signToken(t, Claims{UserID: "u-1"})}
	s := New(store)

	require.NoError(t, s.SignOut())
	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNoToken)
}
