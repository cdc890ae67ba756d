package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// IdentityStore is the persistence surface the session manager needs. The
// refresh-token slot is a single field on the user record; saving it
// overwrites whatever token was stored before.
type IdentityStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	SaveRefreshToken(ctx context.Context, userID, token string) error
}

// Manager owns password verification and the access/refresh token pair
// lifecycle: issue, rotate, revoke.
type Manager struct {
	users  IdentityStore
	signer *TokenSigner
}

// NewManager constructs a Manager over the provided identity store and signer.
func NewManager(users IdentityStore, signer *TokenSigner) *Manager {
	if users == nil {
		panic("auth: identity store must not be nil")
	}
	if signer == nil {
		panic("auth: token signer must not be nil")
	}
	return &Manager{users: users, signer: signer}
}

// VerifyCredentials resolves an identity by username or email and checks the
// password against the stored hash. At least one identifier is required.
func (m *Manager) VerifyCredentials(ctx context.Context, username, email, password string) (models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := m.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Issue mints a fresh access/refresh token pair for the user and persists the
// refresh token into the user's slot, overwriting any prior value. Logging in
// elsewhere therefore invalidates other sessions.
func (m *Manager) Issue(ctx context.Context, userID string) (models.TokenPair, error) {
	if userID == "" {
		return models.TokenPair{}, errors.New("user id must be provided")
	}

	access, accessExp, err := m.signer.SignAccess(userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, refreshExp, err := m.signer.SignRefresh(userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := m.users.SaveRefreshToken(ctx, userID, refresh); err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Rotate exchanges a presented refresh token for a fresh pair. The presented
// value must verify against the refresh secret AND equal the identity's
// currently stored token byte for byte; a verified-but-superseded token is
// rejected with ErrStaleToken so reuse after an intervening rotation is
// detectable. A failed rotation leaves the stored slot unchanged.
func (m *Manager) Rotate(ctx context.Context, presented string) (models.TokenPair, error) {
	if presented == "" {
		return models.TokenPair{}, ErrMissingToken
	}

	userID, err := m.signer.VerifyRefresh(presented)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.TokenPair{}, ErrIdentityNotFound
		}
		return models.TokenPair{}, err
	}

	if user.RefreshToken != presented {
		return models.TokenPair{}, ErrStaleToken
	}

	return m.Issue(ctx, user.ID)
}

// Revoke clears the user's stored refresh token. Idempotent: revoking an
// already-empty slot succeeds.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return m.users.SaveRefreshToken(ctx, userID, "")
}
