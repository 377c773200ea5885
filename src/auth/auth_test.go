package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", digest)
	assert.True(t, h.Verify("password123", digest))
	assert.False(t, h.Verify("password124", digest))
}

func TestPasswordHasherSalts(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("password123")
	require.NoError(t, err)
	second, err := h.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPasswordHasherMalformedDigest(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, digest := range []string{"", "plaintext", "$2a$10$short"} {
		assert.False(t, h.Verify("plaintext", digest), "digest %q", digest)
	}
}

func TestPasswordHasherCost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewPasswordHasher(0).Cost())
	assert.Equal(t, bcrypt.MinCost, NewPasswordHasher(1).Cost())
	assert.Equal(t, bcrypt.MaxCost, NewPasswordHasher(99).Cost())

	h := NewPasswordHasher(bcrypt.MinCost + 1)
	digest, err := h.Hash("password123")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestTokenIssueVerify(t *testing.T) {
	s := NewTokenService([]byte("test-secret"))

	token, err := s.Issue("alice")
	require.NoError(t, err)

	subject, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenUniquePerIssue(t *testing.T) {
	s := NewTokenService([]byte("test-secret"))

	first, err := s.Issue("alice")
	require.NoError(t, err)
	second, err := s.Issue("alice")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenExpiry(t *testing.T) {
	s := NewTokenService([]byte("test-secret"))
	issuedAt := time.Now()
	s.now = func() time.Time { return issuedAt }

	token, err := s.Issue("alice")
	require.NoError(t, err)

	s.now = func() time.Time { return issuedAt.Add(TokenTTL - time.Second) }
	subject, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)

	s.now = func() time.Time { return issuedAt.Add(TokenTTL + time.Second) }
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenService([]byte("secret-a")).Issue("alice")
	require.NoError(t, err)

	_, err = NewTokenService([]byte("secret-b")).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenTampered(t *testing.T) {
	s := NewTokenService([]byte("test-secret"))
	token, err := s.Issue("alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "mallory",
		"iss": issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other"))
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	_, err = s.Verify(parts[0] + "." + forgedParts[1] + "." + parts[2])
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenMalformed(t *testing.T) {
	s := NewTokenService([]byte("test-secret"))

	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := s.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	s := NewTokenService([]byte("test-secret"))
	claims := jwt.MapClaims{
		"sub": "alice",
		"iss": issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(none)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = s.Verify(hs512)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenRequiresExpiryAndSubject(t *testing.T) {
	s := NewTokenService([]byte("test-secret"))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"iss": issuer,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = s.Verify(noExp)
	assert.True(t, errors.Is(err, ErrTokenInvalid))

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = s.Verify(noSub)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = s.Issue("")
	assert.Error(t, err)
}
