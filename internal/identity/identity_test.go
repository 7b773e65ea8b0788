package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewService("test-secret", "monopoly", time.Hour)

	token, err := svc.Issue("player-1")
	require.NoError(t, err)

	account, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "player-1", account)
}

func TestVerifyRejects(t *testing.T) {
	svc := NewService("test-secret", "monopoly", time.Hour)
	valid, err := svc.Issue("player-1")
	require.NoError(t, err)

	otherSecret, err := NewService("other-secret", "monopoly", time.Hour).Issue("player-1")
	require.NoError(t, err)
	otherIssuer, err := NewService("test-secret", "someone-else", time.Hour).Issue("player-1")
	require.NoError(t, err)

	expiredSvc := NewService("test-secret", "monopoly", time.Minute)
	expiredSvc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredSvc.Issue("player-1")
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "monopoly",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"tampered":     valid + "x",
		"wrong secret": otherSecret,
		"wrong issuer": otherIssuer,
		"expired":      expired,
		"no subject":   noSubject,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(token)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidToken), "err = %v", err)
		})
	}
}

func TestIssueRequiresConfig(t *testing.T) {
	_, err := NewService("", "monopoly", 0).Issue("player-1")
	require.ErrorIs(t, err, ErrMissingConfig)

	_, err = NewService("secret", "monopoly", 0).Issue("")
	require.Error(t, err)
}

func TestDefaultTTL(t *testing.T) {
	svc := NewService("secret", "monopoly", 0)
	require.Equal(t, DefaultTTL, svc.ttl)
}
