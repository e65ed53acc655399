package messaging

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessCredentialEmpty(t *testing.T) {
	_, err := NewAccessCredential("")
	require.ErrorIs(t, err, ErrEmptyToken)
}

func TestNewAccessCredentialOpaque(t *testing.T) {
	cred, err := NewAccessCredential("T1")
	require.NoError(t, err)

	assert.Equal(t, "T1", cred.Token())
	assert.Nil(t, cred.Claims())
	assert.Empty(t, cred.Identity())
	assert.True(t, cred.ExpiresAt().IsZero())
	assert.False(t, cred.IsExpired(time.Now()))
}

func TestNewAccessCredentialDecodesJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims := AccessClaims{
		Identity: "alice",
		Device:   "dev-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice-subject",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	cred, err := NewAccessCredential(signed)
	require.NoError(t, err)
	require.NotNil(t, cred.Claims())

	assert.Equal(t, "alice", cred.Identity())
	assert.Equal(t, "dev-1", cred.Claims().Device)
	assert.True(t, cred.ExpiresAt().Equal(exp))
	assert.False(t, cred.IsExpired(time.Now()))
	assert.True(t, cred.IsExpired(exp.Add(time.Minute)))
}

func TestCredentialIdentityFallsBackToSubject(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "bob"},
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	cred, err := NewAccessCredential(signed)
	require.NoError(t, err)
	assert.Equal(t, "bob", cred.Identity())
}

func TestEventSink(t *testing.T) {
	var got []Event
	sink := EventSink(func(ev Event) { got = append(got, ev) })

	msg := &Message{Author: "alice", Body: "hi"}
	sink.SynchronizationStatusChanged(nil, SyncStatusCompleted)
	sink.MessageAdded(nil, nil, msg)

	require.Len(t, got, 2)
	assert.Equal(t, SyncStatusChanged{Status: SyncStatusCompleted}, got[0])
	added, ok := got[1].(MessageAdded)
	require.True(t, ok)
	assert.Same(t, msg, added.Message)
}
