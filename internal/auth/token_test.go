package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = strings.Repeat("k", 64)

func newTestIssuer(t *testing.T, now time.Time) *JWTIssuer {
	t.Helper()
	j, err := NewJWTIssuer(testKey, "store-test", 0)
	require.NoError(t, err)
	j.now = func() time.Time { return now }
	return j
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	j := newTestIssuer(t, now)

	tok, err := j.Issue(Identity{Username: "bob", Email: "bob@test.com"}, []string{RoleMember})
	require.NoError(t, err)

	p, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Principal{Username: "bob", Email: "bob@test.com", Roles: []string{RoleMember}}, p)
	assert.True(t, p.HasAnyRole(RoleAdmin, RoleMember))
	assert.False(t, p.HasAnyRole(RoleAdmin))

	parsed, _, err := jwt.NewParser().ParseUnverified(tok, &claims{})
	require.NoError(t, err)
	assert.Equal(t, "HS512", parsed.Method.Alg())
	exp, err := parsed.Claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, now.Add(7*24*time.Hour), exp.Time.UTC())
}

func TestVerifyRejects(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	j := newTestIssuer(t, now)
	tok, err := j.Issue(Identity{Username: "bob"}, nil)
	require.NoError(t, err)

	other, err := NewJWTIssuer(strings.Repeat("x", 64), "store-test", time.Hour)
	require.NoError(t, err)
	otherTok, err := other.Issue(Identity{Username: "bob"}, nil)
	require.NoError(t, err)

	expired := newTestIssuer(t, now.Add(8*24*time.Hour))

	tests := []struct {
		name     string
		verifier *JWTIssuer
		token    string
	}{
		{name: "garbage", verifier: j, token: "not-a-token"},
		{name: "wrong key", verifier: j, token: otherTok},
		{name: "expired", verifier: expired, token: tok},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.verifier.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewJWTIssuerShortKey(t *testing.T) {
	_, err := NewJWTIssuer("short", "x", time.Hour)
	assert.Error(t, err)
}
