package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/models"
)

func newSessionManager(store *fakeUserStore) *auth.Manager {
	signer := auth.NewTokenSigner("access-secret", "refresh-secret", time.Minute, time.Hour)
	return auth.NewManager(store, signer)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create file part %s: %v", field, err)
		}
		if _, err := io.Copy(part, strings.NewReader("fake-bytes")); err != nil {
			t.Fatalf("write file part %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func seedUser(t *testing.T, store *fakeUserStore, id, username, email, password string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		ID:             id,
		Username:       username,
		Email:          email,
		FullName:       username + " example",
		PasswordHash:   string(hash),
		AvatarURL:      "https://cdn.example.com/image/" + id + ".png",
		AvatarPublicID: "image/" + id + ".png",
	}
	store.users[id] = user
	return user
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()

	var resp apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestUserHandlerRegister(t *testing.T) {
	store := newFakeUserStore()
	host := &fakeMediaHost{}
	handler := UserHandler{Users: store, Sessions: newSessionManager(store), Media: host, MaxUploadBytes: 1 << 20}

	body, contentType := multipartBody(t,
		map[string]string{
			"fullName": "Alice Example",
			"email":    "Alice@Example.com",
			"username": "Alice",
			"password": "supersafe123",
		},
		map[string]string{"avatar": "alice.png"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	stored, err := store.FindByUsernameOrEmail(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if stored.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", stored.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("supersafe123")) != nil {
		t.Fatal("stored password is not hashed")
	}
	if stored.AvatarPublicID == "" {
		t.Fatal("expected avatar to be uploaded and referenced")
	}
	if len(host.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(host.uploads))
	}

	resp := decodeEnvelope(t, rec)
	if !resp.Success || resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestUserHandlerRegisterDuplicate(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user-1", "alice", "alice@example.com", "password123")
	host := &fakeMediaHost{}
	handler := UserHandler{Users: store, Sessions: newSessionManager(store), Media: host, MaxUploadBytes: 1 << 20}

	body, contentType := multipartBody(t,
		map[string]string{
			"fullName": "Alice Again",
			"email":    "alice@example.com",
			"username": "alice",
			"password": "password123",
		},
		map[string]string{"avatar": "alice.png"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
	}
	if len(host.uploads) != 0 {
		t.Fatalf("expected no uploads for a rejected registration, got %d", len(host.uploads))
	}
}

func TestUserHandlerRegisterRejectsMissingAvatar(t *testing.T) {
	store := newFakeUserStore()
	handler := UserHandler{Users: store, Sessions: newSessionManager(store), Media: &fakeMediaHost{}, MaxUploadBytes: 1 << 20}

	body, contentType := multipartBody(t,
		map[string]string{
			"fullName": "Alice Example",
			"email":    "alice@example.com",
			"username": "alice",
			"password": "supersafe123",
		},
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUserHandlerLogin(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user-1", "alice", "alice@example.com", "password123")
	handler := UserHandler{Users: store, Sessions: newSessionManager(store), LoginLimiter: allowAllLimiter{}}

	body, _ := json.Marshal(loginRequest{Username: "alice", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	var haveAccess, haveRefresh bool
	for _, cookie := range cookies {
		switch cookie.Name {
		case "accessToken":
			haveAccess = cookie.Value != ""
		case "refreshToken":
			haveRefresh = cookie.Value != ""
		}
	}
	if !haveAccess || !haveRefresh {
		t.Fatalf("expected both auth cookies, got %v", cookies)
	}

	if store.users["user-1"].RefreshToken == "" {
		t.Fatal("expected refresh token to be persisted on the user record")
	}
}

func TestUserHandlerLoginWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user-1", "alice", "alice@example.com", "password123")
	handler := UserHandler{Users: store, Sessions: newSessionManager(store), LoginLimiter: allowAllLimiter{}}

	body, _ := json.Marshal(loginRequest{Username: "alice", Password: "wrong-password"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
	if store.users["user-1"].RefreshToken != "" {
		t.Fatal("failed login must not persist a refresh token")
	}
}

func TestUserHandlerLoginUnknownUser(t *testing.T) {
	store := newFakeUserStore()
	handler := UserHandler{Users: store, Sessions: newSessionManager(store), LoginLimiter: allowAllLimiter{}}

	body, _ := json.Marshal(loginRequest{Username: "ghost", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestUserHandlerLoginRateLimited(t *testing.T) {
	store := newFakeUserStore()
	handler := UserHandler{Users: store, Sessions: newSessionManager(store), LoginLimiter: denyLimiter{}}

	body, _ := json.Marshal(loginRequest{Username: "alice", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d got %d", http.StatusTooManyRequests, rec.Code)
	}
}

func TestUserHandlerRegisterRateLimited(t *testing.T) {
	store := newFakeUserStore()
	host := &fakeMediaHost{}
	handler := UserHandler{Users: store, Media: host, LoginLimiter: denyLimiter{}, MaxUploadBytes: 1 << 20}

	body, contentType := multipartBody(t, map[string]string{
		"fullName": "Alice Example",
		"email":    "alice@example.com",
		"username": "alice",
		"password": "password123",
	}, map[string]string{"avatar": "avatar.png"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d got %d", http.StatusTooManyRequests, rec.Code)
	}
	if len(store.users) != 0 {
		t.Fatalf("expected no user created, got %d", len(store.users))
	}
	if len(host.uploads) != 0 {
		t.Fatalf("expected no uploads, got %d", len(host.uploads))
	}
}

func TestUserHandlerRefreshRotatesPair(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user-1", "alice", "alice@example.com", "password123")
	sessions := newSessionManager(store)
	handler := UserHandler{Users: store, Sessions: sessions}

	issued, err := sessions.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: issued.RefreshToken})
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if store.users["user-1"].RefreshToken == issued.RefreshToken {
		t.Fatal("expected the stored refresh token to rotate")
	}

	// The superseded token must now be rejected.
	replay := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	replay.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: issued.RefreshToken})
	replayRec := httptest.NewRecorder()

	handler.Refresh(replayRec, replay)

	if replayRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, replayRec.Code)
	}
}

func TestUserHandlerRefreshMissingToken(t *testing.T) {
	store := newFakeUserStore()
	handler := UserHandler{Users: store, Sessions: newSessionManager(store)}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", strings.NewReader("{}"))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserHandlerLogoutClearsSlot(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user-1", "alice", "alice@example.com", "password123")
	sessions := newSessionManager(store)
	handler := UserHandler{Users: store, Sessions: sessions}

	if _, err := sessions.Issue(context.Background(), "user-1"); err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), "user-1")
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if store.users["user-1"].RefreshToken != "" {
		t.Fatal("expected refresh token slot to be cleared")
	}
}

func TestUserHandlerCurrent(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user-1", "alice", "alice@example.com", "password123")
	handler := UserHandler{Users: store, Sessions: newSessionManager(store)}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/users/current", nil), "user-1")
	rec := httptest.NewRecorder()

	handler.Current(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "alice@example.com") {
		t.Fatalf("expected email in current-user response, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "passwordHash") {
		t.Fatal("credential material leaked into response")
	}
}

func TestUserHandlerUpdateAvatarReplacesBlob(t *testing.T) {
	store := newFakeUserStore()
	user := seedUser(t, store, "user-1", "alice", "alice@example.com", "password123")
	host := &fakeMediaHost{}
	handler := UserHandler{Users: store, Sessions: newSessionManager(store), Media: host, MaxUploadBytes: 1 << 20}

	body, contentType := multipartBody(t, nil, map[string]string{"avatar": "new.png"})
	req := asUser(httptest.NewRequest(http.MethodPatch, "/api/v1/users/avatar", body), "user-1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UpdateAvatar(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if store.users["user-1"].AvatarPublicID == user.AvatarPublicID {
		t.Fatal("expected avatar reference to change")
	}
	if len(host.deleted) != 1 || host.deleted[0] != user.AvatarPublicID {
		t.Fatalf("expected old avatar blob to be removed, deleted=%v", host.deleted)
	}
}

func TestUserHandlerDeleteAccountAbortsOnBlobFailure(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user-1", "alice", "alice@example.com", "password123")
	host := &fakeMediaHost{failDelete: true}
	handler := UserHandler{Users: store, Sessions: newSessionManager(store), Media: host}

	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/users/account", nil), "user-1")
	rec := httptest.NewRecorder()

	handler.DeleteAccount(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d got %d", http.StatusInternalServerError, rec.Code)
	}
	if _, ok := store.users["user-1"]; !ok {
		t.Fatal("account must survive when blob removal fails")
	}
}

func TestUserHandlerDeleteAccount(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user-1", "alice", "alice@example.com", "password123")
	host := &fakeMediaHost{}
	handler := UserHandler{Users: store, Sessions: newSessionManager(store), Media: host}

	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/users/account", nil), "user-1")
	rec := httptest.NewRecorder()

	handler.DeleteAccount(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if _, ok := store.users["user-1"]; ok {
		t.Fatal("expected account to be deleted")
	}
	if len(host.deleted) != 1 {
		t.Fatalf("expected avatar blob removal, deleted=%v", host.deleted)
	}
}
