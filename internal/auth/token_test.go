package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokenConfig = TokenConfig{
	Key:    "test-signing-key-0123456789abcdef",
	Issuer: "educonnect",
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTokenPair(t *testing.T, cfg TokenConfig, clock *fakeClock) (*Issuer, *Validator) {
	t.Helper()
	iss, err := NewIssuer(cfg, WithClock(clock.Now))
	require.NoError(t, err)
	val, err := NewValidator(cfg, WithClock(clock.Now))
	require.NoError(t, err)
	return iss, val
}

func TestTokenConfig_MissingKey(t *testing.T) {
	_, err := NewIssuer(TokenConfig{Issuer: "x"})
	assert.ErrorIs(t, err, ErrConfigurationMissing)

	_, err = NewValidator(TokenConfig{Key: "k"})
	assert.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestIssueThenValidate(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	iss, val := newTokenPair(t, testTokenConfig, clock)

	for _, tc := range []struct {
		id   string
		role Role
	}{
		{"u1", RoleTeacher},
		{"0b8e7c1e-2f1d-4c55-9a52-4fd0f5ab4d3e", RoleStudent},
		{"root", RoleAdmin},
	} {
		token, exp, err := iss.Issue(tc.id, tc.role)
		require.NoError(t, err)
		assert.Equal(t, clock.t.Add(30*time.Minute), exp)

		claims, err := val.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, tc.id, claims.Identity())
		assert.Equal(t, tc.role, claims.Role)
		assert.Equal(t, "educonnect", claims.Issuer)
		assert.Equal(t, jwt.ClaimStrings{"educonnect"}, claims.Audience)
		assert.Equal(t, clock.t, claims.IssuedAt.Time.UTC())
	}
}

func TestIssue_RejectsBadInput(t *testing.T) {
	iss, err := NewIssuer(testTokenConfig)
	require.NoError(t, err)

	_, _, err = iss.Issue("", RoleStudent)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = iss.Issue("u1", Role("Janitor"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start}
	iss, val := newTokenPair(t, testTokenConfig, clock)

	token, exp, err := iss.Issue("u1", RoleStudent)
	require.NoError(t, err)
	require.Equal(t, start.Add(30*time.Minute), exp)

	clock.t = exp.Add(-time.Second)
	_, err = val.Validate(token)
	require.NoError(t, err, "valid one second before expiry")

	clock.t = exp
	_, err = val.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired, "expired at exactly iat+30m")

	clock.t = exp.Add(time.Hour)
	_, err = val.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_BeforeIssuedAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start}
	iss, val := newTokenPair(t, testTokenConfig, clock)

	token, _, err := iss.Issue("u1", RoleStudent)
	require.NoError(t, err)

	clock.t = start.Add(-time.Minute)
	_, err = val.Validate(token)
	assert.ErrorIs(t, err, ErrTokenClaimsInvalid)
}

func TestValidate_WrongKey(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	other := testTokenConfig
	other.Key = "another-signing-key-0123456789abcdef"

	iss, _ := newTokenPair(t, other, clock)
	_, val := newTokenPair(t, testTokenConfig, clock)

	token, _, err := iss.Issue("u1", RoleAdmin)
	require.NoError(t, err)

	_, err = val.Validate(token)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestValidate_TamperedPayload(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	iss, val := newTokenPair(t, testTokenConfig, clock)

	token, _, err := iss.Issue("u1", RoleStudent)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"role":"Student"`, `"role":"Admin"`, 1)
	require.NotEqual(t, string(payload), forged)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	_, err = val.Validate(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestValidate_AlgNone(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	_, val := newTokenPair(t, testTokenConfig, clock)

	now := clock.t
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    testTokenConfig.Issuer,
			Audience:  jwt.ClaimStrings{testTokenConfig.Issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = val.Validate(signed)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestValidate_IssuerAndAudience(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	_, val := newTokenPair(t, testTokenConfig, clock)

	otherIssuer := testTokenConfig
	otherIssuer.Issuer = "someone-else"
	otherIssuer.Audience = "educonnect"
	iss, _ := newTokenPair(t, otherIssuer, clock)
	token, _, err := iss.Issue("u1", RoleStudent)
	require.NoError(t, err)
	_, err = val.Validate(token)
	assert.ErrorIs(t, err, ErrTokenClaimsInvalid)

	otherAudience := testTokenConfig
	otherAudience.Audience = "web"
	iss, _ = newTokenPair(t, otherAudience, clock)
	token, _, err = iss.Issue("u1", RoleStudent)
	require.NoError(t, err)
	_, err = val.Validate(token)
	assert.ErrorIs(t, err, ErrTokenClaimsInvalid)
}

func TestValidate_UnknownRoleClaim(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	_, val := newTokenPair(t, testTokenConfig, clock)

	now := clock.t.Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: Role("Superuser"),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    testTokenConfig.Issuer,
			Audience:  jwt.ClaimStrings{testTokenConfig.Issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := tok.SignedString([]byte(testTokenConfig.Key))
	require.NoError(t, err)

	_, err = val.Validate(signed)
	assert.ErrorIs(t, err, ErrTokenClaimsInvalid)
}

func TestValidate_Garbage(t *testing.T) {
	_, val := newTokenPair(t, testTokenConfig, &fakeClock{t: time.Now()})

	for _, s := range []string{"", "abc", "a.b.c", "Bearer x.y.z"} {
		_, err := val.Validate(s)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", s)
	}
}
