package authtoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseRoundTrips(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	token, err := issuer.Issue("scanner", "cycle-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "scanner", claims.Service)
	assert.Equal(t, "cycle-123", claims.CycleID)
}

func TestParseRejectsTokenSignedWithDifferentSecret(t *testing.T) {
	issuer := NewIssuer("secret-a", time.Minute)
	other := NewIssuer("secret-b", time.Minute)

	token, err := issuer.Issue("news-collector", "")
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := &Issuer{secret: []byte("test-secret"), ttl: -time.Second}

	token, err := issuer.Issue("coordinator", "")
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.Error(t, err)
}

func TestNewIssuerDefaultsTTLWhenNonPositive(t *testing.T) {
	issuer := NewIssuer("test-secret", 0)
	assert.Equal(t, 5*time.Minute, issuer.ttl)
}

func TestHashAndVerifyServiceKeyRoundTrips(t *testing.T) {
	hashed, err := HashServiceKey("catalyst-core-service-key")
	require.NoError(t, err)
	assert.NotEqual(t, "catalyst-core-service-key", hashed)

	assert.True(t, VerifyServiceKey(hashed, "catalyst-core-service-key"))
	assert.False(t, VerifyServiceKey(hashed, "wrong-key"))
}
