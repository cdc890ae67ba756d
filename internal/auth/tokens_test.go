package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenSignerRoundTrip(t *testing.T) {
	signer := testSigner()

	access, expires, err := signer.SignAccess("user-1")
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	if !expires.After(time.Now()) {
		t.Fatal("access expiry should be in the future")
	}

	subject, err := signer.VerifyAccess(access)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if subject != "user-1" {
		t.Fatalf("expected subject user-1 got %q", subject)
	}
}

func TestTokenSignerMintsUniqueTokens(t *testing.T) {
	signer := testSigner()
	// Freeze the clock so iat and exp cannot tell the tokens apart.
	frozen := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return frozen }

	first, _, err := signer.SignRefresh("user-1")
	if err != nil {
		t.Fatalf("sign first refresh: %v", err)
	}
	second, _, err := signer.SignRefresh("user-1")
	if err != nil {
		t.Fatalf("sign second refresh: %v", err)
	}
	if first == second {
		t.Fatal("two refresh tokens minted at the same instant must differ")
	}
}

func TestTokenSignerRejectsCrossUse(t *testing.T) {
	signer := testSigner()

	refresh, _, err := signer.SignRefresh("user-1")
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}

	// A refresh token must not verify as an access token and vice versa.
	if _, err := signer.VerifyAccess(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token got %v", err)
	}

	access, _, err := signer.SignAccess("user-1")
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	if _, err := signer.VerifyRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token got %v", err)
	}
}

func TestTokenSignerRejectsExpired(t *testing.T) {
	signer := NewTokenSigner("access-secret", "refresh-secret", -time.Minute, time.Hour)

	access, _, err := signer.SignAccess("user-1")
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	if _, err := signer.VerifyAccess(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for expired access got %v", err)
	}
}
