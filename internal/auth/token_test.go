package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, "homeboard", time.Minute)

	token, err := tm.Issue("u1")
	require.NoError(t, err)
	require.NoError(t, tm.Validate(token, "u1"))
}

func TestTokenManager_WrongActor(t *testing.T) {
	tm := NewTokenManager(testSecret, "homeboard", time.Minute)

	token, err := tm.Issue("u1")
	require.NoError(t, err)
	require.ErrorIs(t, tm.Validate(token, "u2"), ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret, "homeboard", -time.Minute)

	token, err := tm.Issue("u1")
	require.NoError(t, err)
	require.ErrorIs(t, tm.Validate(token, "u1"), ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issued, err := NewTokenManager(testSecret, "homeboard", time.Minute).Issue("u1")
	require.NoError(t, err)

	other := NewTokenManager("another-secret-another-secret-32", "homeboard", time.Minute)
	require.ErrorIs(t, other.Validate(issued, "u1"), ErrInvalidToken)
}

func TestTokenManager_EmptyToken(t *testing.T) {
	tm := NewTokenManager(testSecret, "homeboard", time.Minute)
	require.ErrorIs(t, tm.Validate("", "u1"), ErrInvalidToken)
}

func TestStaticAuthorizer(t *testing.T) {
	a := NewStaticAuthorizer(map[string]Actor{
		"key-one": {ActorID: "u1", Name: "Pat", Capabilities: []string{"use_dashboard"}},
	})

	actor, err := a.Authorize(t.Context(), "key-one", "use_dashboard")
	require.NoError(t, err)
	require.Equal(t, "u1", actor.ActorID)

	_, err = a.Authorize(t.Context(), "key-one", "manage_site")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = a.Authorize(t.Context(), "bogus", "use_dashboard")
	require.ErrorIs(t, err, ErrInvalidAPIKey)
}
