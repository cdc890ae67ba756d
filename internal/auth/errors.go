package auth

import "errors"

var (
	// ErrInvalidCredentials indicates the supplied password does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken indicates no refresh token was presented.
	ErrMissingToken = errors.New("refresh token missing")
	// ErrInvalidToken indicates the token failed signature or expiry verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrIdentityNotFound indicates the token's subject no longer exists.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrStaleToken indicates a verified refresh token that no longer matches the
	// identity's stored slot, i.e. it was superseded by a later issue or rotation.
	ErrStaleToken = errors.New("stale refresh token")
	// ErrNotOwner indicates the acting identity does not own the target resource.
	ErrNotOwner = errors.New("unauthorized request")
)
