package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// RefreshTokenCookie is the cookie carrying the long-lived refresh token.
const RefreshTokenCookie = "refreshToken"

const multipartMemory = 32 << 20

// UserHandler implements registration, session, and profile endpoints.
type UserHandler struct {
	Users          UserStore
	Sessions       SessionManager
	Media          MediaHost
	LoginLimiter   RateLimiter
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type registerRequest struct {
	FullName string `validate:"required,max=120"`
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=40"`
	Password string `validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

// currentUserView is the owner-facing user projection; it includes the email
// but never credential material.
type currentUserView struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	AvatarURL  string    `json:"avatar"`
	CoverURL   string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"updatedAt"`
}

func viewOfUser(u models.User) currentUserView {
	return currentUserView{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		AvatarURL:  u.AvatarURL,
		CoverURL:   u.CoverURL,
		CreatedAt:  u.CreatedAt,
		ModifiedAt: u.UpdatedAt,
	}
}

type loginResponse struct {
	User         currentUserView `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

// Register handles POST /api/v1/users/register. The payload is multipart:
// text fields plus a required avatar image and an optional cover image.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.LoginLimiter != nil && !h.LoginLimiter.Allow(clientIP(r)) {
		logger.Warn("registration rate limited", "remote", r.RemoteAddr)
		respondJSON(ctx, w, http.StatusTooManyRequests, nil, "too many attempts, slow down")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		logger.Warn("invalid registration payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, nil, "expected multipart form data")
		return
	}

	req := registerRequest{
		FullName: strings.TrimSpace(r.FormValue("fullName")),
		Email:    strings.ToLower(strings.TrimSpace(r.FormValue("email"))),
		Username: strings.ToLower(strings.TrimSpace(r.FormValue("username"))),
		Password: r.FormValue("password"),
	}
	if err := validateStruct(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, err.Error())
		return
	}

	if _, err := h.Users.FindByUsernameOrEmail(ctx, req.Username, req.Email); err == nil {
		respondJSON(ctx, w, http.StatusConflict, nil, "username or email already registered")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		respondError(ctx, w, err, "failed to check existing users")
		return
	}

	avatarFile, avatarHeader, err := r.FormFile("avatar")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "avatar image is required")
		return
	}
	defer avatarFile.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, err, "failed to process password")
		return
	}

	avatar, err := h.uploadImage(r, avatarFile, avatarHeader)
	if err != nil {
		logger.Error("avatar upload failed", "error", err)
		respondJSON(ctx, w, http.StatusBadGateway, nil, "failed to store avatar image")
		return
	}

	var cover media.Asset
	if coverFile, coverHeader, err := r.FormFile("coverImage"); err == nil {
		defer coverFile.Close()
		cover, err = h.uploadImage(r, coverFile, coverHeader)
		if err != nil {
			logger.Error("cover upload failed", "error", err)
			h.discardAsset(r, avatar)
			respondJSON(ctx, w, http.StatusBadGateway, nil, "failed to store cover image")
			return
		}
	}

	now := h.now()
	user := models.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		PasswordHash:   string(hash),
		AvatarURL:      avatar.URL,
		AvatarPublicID: avatar.PublicID,
		CoverURL:       cover.URL,
		CoverPublicID:  cover.PublicID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		h.discardAsset(r, avatar)
		h.discardAsset(r, cover)
		if errors.Is(err, repositories.ErrConflict) {
			respondJSON(ctx, w, http.StatusConflict, nil, "username or email already registered")
			return
		}
		respondError(ctx, w, err, "failed to create user")
		return
	}

	logger.Info("user registered", "userId", user.ID, "username", user.Username)
	respondJSON(ctx, w, http.StatusCreated, viewOfUser(user), "user registered")
}

// Login handles POST /api/v1/users/login. Attempts are rate limited per
// client address before any credential work happens.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.LoginLimiter != nil && !h.LoginLimiter.Allow(clientIP(r)) {
		logger.Warn("login rate limited", "remote", r.RemoteAddr)
		respondJSON(ctx, w, http.StatusTooManyRequests, nil, "too many login attempts, slow down")
		return
	}

	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, err.Error())
		return
	}
	if req.Username == "" && req.Email == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "username or email is required")
		return
	}

	user, err := h.Sessions.VerifyCredentials(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, nil, "user does not exist")
			return
		}
		logger.Warn("login rejected", "username", req.Username, "error", err)
		respondError(ctx, w, err, "invalid credentials")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err, "failed to create session")
		return
	}

	setAuthCookies(w, tokens)
	logger.Info("user logged in", "userId", user.ID)
	respondJSON(ctx, w, http.StatusOK, loginResponse{
		User:         viewOfUser(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "login successful")
}

// Logout handles POST /api/v1/users/logout for authenticated callers.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.IdentityFrom(ctx)

	if err := h.Sessions.Revoke(ctx, userID); err != nil {
		respondError(ctx, w, err, "failed to end session")
		return
	}

	clearAuthCookies(w)
	respondJSON(ctx, w, http.StatusOK, nil, "logged out")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/v1/users/refresh-token. The token is read from
// the refresh cookie or, failing that, the JSON body. Every rotation failure
// surfaces as 401 so clients fall back to a fresh login.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := ""
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}

	tokens, err := h.Sessions.Rotate(ctx, token)
	if err != nil {
		logging.FromContext(ctx).Warn("refresh rejected", "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, nil, refreshFailureMessage(err))
		return
	}

	setAuthCookies(w, tokens)
	respondJSON(ctx, w, http.StatusOK, models.TokenPair{
		AccessToken:      tokens.AccessToken,
		AccessExpiresAt:  tokens.AccessExpiresAt,
		RefreshToken:     tokens.RefreshToken,
		RefreshExpiresAt: tokens.RefreshExpiresAt,
	}, "session refreshed")
}

func refreshFailureMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "refresh token is required"
	case errors.Is(err, auth.ErrStaleToken):
		return "refresh token has been superseded"
	case errors.Is(err, auth.ErrIdentityNotFound):
		return "account no longer exists"
	default:
		return "invalid or expired refresh token"
	}
}

// Current handles GET /api/v1/users/current.
func (h UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Users.FindByID(ctx, middleware.IdentityFrom(ctx))
	if err != nil {
		respondError(ctx, w, err, "user not found")
		return
	}

	respondJSON(ctx, w, http.StatusOK, viewOfUser(user), "current user")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar",
		func(u models.User) media.Asset {
			return media.Asset{URL: u.AvatarURL, PublicID: u.AvatarPublicID}
		},
		h.Users.UpdateAvatar)
}

// UpdateCover handles PATCH /api/v1/users/cover.
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage",
		func(u models.User) media.Asset {
			return media.Asset{URL: u.CoverURL, PublicID: u.CoverPublicID}
		},
		h.Users.UpdateCover)
}

// replaceImage uploads the new image, persists the reference, then removes
// the replaced blob. That final removal is best effort: the database already
// points at the new asset, so a failed cleanup is logged and the request
// still succeeds.
func (h UserHandler) replaceImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	current func(models.User) media.Asset,
	save func(ctx context.Context, userID, url, publicID string) error,
) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID := middleware.IdentityFrom(ctx)

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		respondError(ctx, w, err, "user not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "expected multipart form data")
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, field+" image is required")
		return
	}
	defer file.Close()

	uploaded, err := h.uploadImage(r, file, header)
	if err != nil {
		logger.Error("image upload failed", "field", field, "error", err)
		respondJSON(ctx, w, http.StatusBadGateway, nil, "failed to store image")
		return
	}

	if err := save(ctx, userID, uploaded.URL, uploaded.PublicID); err != nil {
		h.discardAsset(r, uploaded)
		respondError(ctx, w, err, "failed to update profile image")
		return
	}

	if old := current(user); old.PublicID != "" {
		if err := h.Media.Delete(ctx, old.PublicID, media.KindImage); err != nil {
			logger.Error("failed to delete replaced image", "publicId", old.PublicID, "error", err)
		}
	}

	updated, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		respondError(ctx, w, err, "failed to reload user")
		return
	}

	respondJSON(ctx, w, http.StatusOK, viewOfUser(updated), "image updated")
}

// Channel handles GET /api/v1/users/channel/{username}. Authentication is
// optional; an authenticated viewer additionally learns whether they are
// subscribed.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.ToLower(strings.TrimSpace(r.PathValue("username")))
	if username == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "username is required")
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, username, middleware.IdentityFrom(ctx))
	if err != nil {
		respondError(ctx, w, err, "channel not found")
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile, "channel profile")
}

// DeleteAccount handles DELETE /api/v1/users/account. Profile images are
// removed from the media host first; a host failure aborts the deletion so
// no row disappears while its blobs survive unreferenced.
func (h UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	userID := middleware.IdentityFrom(ctx)

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		respondError(ctx, w, err, "user not found")
		return
	}

	for _, publicID := range []string{user.AvatarPublicID, user.CoverPublicID} {
		if publicID == "" {
			continue
		}
		if err := h.Media.Delete(ctx, publicID, media.KindImage); err != nil {
			logger.Error("failed to delete profile image", "publicId", publicID, "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, nil, "failed to remove profile media")
			return
		}
	}

	if err := h.Users.Delete(ctx, userID); err != nil {
		respondError(ctx, w, err, "failed to delete account")
		return
	}

	clearAuthCookies(w)
	logger.Info("account deleted", "userId", userID)
	respondJSON(ctx, w, http.StatusOK, nil, "account deleted")
}

func (h UserHandler) uploadImage(r *http.Request, file multipart.File, header *multipart.FileHeader) (media.Asset, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	return h.Media.Upload(r.Context(), media.KindImage, name, file)
}

// discardAsset removes a blob uploaded during a request whose later steps
// failed. Cleanup failures are logged, not surfaced; the request error that
// triggered the cleanup is the one the client sees.
func (h UserHandler) discardAsset(r *http.Request, asset media.Asset) {
	if asset.PublicID == "" {
		return
	}
	if err := h.Media.Delete(r.Context(), asset.PublicID, media.KindImage); err != nil {
		logging.FromContext(r.Context()).Error("failed to clean up uploaded asset", "publicId", asset.PublicID, "error", err)
	}
}

func setAuthCookies(w http.ResponseWriter, tokens models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
