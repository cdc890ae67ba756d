package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSigner mints and verifies the HS256-signed bearer tokens used for
// sessions. Access and refresh tokens are signed with independent secrets so
// one cannot be presented in place of the other.
type TokenSigner struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

// NewTokenSigner constructs a TokenSigner with the provided secrets and TTLs.
func NewTokenSigner(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenSigner {
	if accessSecret == "" || refreshSecret == "" {
		panic("auth: token secrets must not be empty")
	}
	return &TokenSigner{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SignAccess returns a signed access token for the user id and its expiry.
func (s *TokenSigner) SignAccess(userID string) (string, time.Time, error) {
	return s.sign(userID, s.accessSecret, s.accessTTL)
}

// SignRefresh returns a signed refresh token for the user id and its expiry.
func (s *TokenSigner) SignRefresh(userID string) (string, time.Time, error) {
	return s.sign(userID, s.refreshSecret, s.refreshTTL)
}

func (s *TokenSigner) sign(userID string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(ttl)

	// The jti claim keeps every signed token unique. Without it two tokens
	// minted within the same second are byte-identical, which would let a
	// superseded refresh token keep matching the stored slot.
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expires, nil
}

// VerifyAccess validates an access token and returns the subject user id.
func (s *TokenSigner) VerifyAccess(token string) (string, error) {
	return s.verify(token, s.accessSecret)
}

// VerifyRefresh validates a refresh token and returns the subject user id.
// Validity here covers signature and expiry only; the caller is responsible
// for comparing the token against the identity's stored slot.
func (s *TokenSigner) VerifyRefresh(token string) (string, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenSigner) verify(token string, secret []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
