package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// PlaylistHandler implements playlist CRUD and video membership endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	NowFunc   func() time.Time
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type playlistRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.IdentityFrom(ctx)

	var req playlistRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, err.Error())
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, err, "failed to create playlist")
		return
	}

	created, err := h.Playlists.FindByID(ctx, playlist.ID)
	if err != nil {
		respondError(ctx, w, err, "failed to reload playlist")
		return
	}

	logging.FromContext(ctx).Info("playlist created", "playlistId", playlist.ID, "ownerId", ownerID)
	respondJSON(ctx, w, http.StatusCreated, created, "playlist created")
}

// Get handles GET /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistId"))
	if err != nil {
		respondError(ctx, w, err, "playlist not found")
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlist, "playlist fetched")
}

// ListForUser handles GET /api/v1/playlists/user/{userId}.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlists, err := h.Playlists.ListForUser(ctx, r.PathValue("userId"))
	if err != nil {
		respondError(ctx, w, err, "failed to list playlists")
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	respondJSON(ctx, w, http.StatusOK, playlists, "playlists fetched")
}

// Update handles PATCH /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistId"))
	if err != nil {
		respondError(ctx, w, err, "playlist not found")
		return
	}
	if err := auth.AssertOwner(middleware.IdentityFrom(ctx), playlist.OwnerID); err != nil {
		respondError(ctx, w, err, "you do not own this playlist")
		return
	}

	var req playlistRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, err.Error())
		return
	}

	updated, err := h.Playlists.Update(ctx, playlist.ID, req.Name, req.Description)
	if err != nil {
		respondError(ctx, w, err, "failed to update playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated, "playlist updated")
}

// Delete handles DELETE /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistId"))
	if err != nil {
		respondError(ctx, w, err, "playlist not found")
		return
	}
	if err := auth.AssertOwner(middleware.IdentityFrom(ctx), playlist.OwnerID); err != nil {
		respondError(ctx, w, err, "you do not own this playlist")
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondError(ctx, w, err, "failed to delete playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "playlist deleted")
}

// AddVideo handles POST /api/v1/playlists/{playlistId}/videos/{videoId}.
// Adding a video that is already present is a conflict, not a no-op.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistId"))
	if err != nil {
		respondError(ctx, w, err, "playlist not found")
		return
	}
	if err := auth.AssertOwner(middleware.IdentityFrom(ctx), playlist.OwnerID); err != nil {
		respondError(ctx, w, err, "you do not own this playlist")
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, video.ID); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondJSON(ctx, w, http.StatusConflict, nil, "video is already in this playlist")
			return
		}
		respondError(ctx, w, err, "failed to add video to playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "video added to playlist")
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistId}/videos/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("playlistId"))
	if err != nil {
		respondError(ctx, w, err, "playlist not found")
		return
	}
	if err := auth.AssertOwner(middleware.IdentityFrom(ctx), playlist.OwnerID); err != nil {
		respondError(ctx, w, err, "you do not own this playlist")
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, r.PathValue("videoId")); err != nil {
		respondError(ctx, w, err, "video is not in this playlist")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "video removed from playlist")
}
