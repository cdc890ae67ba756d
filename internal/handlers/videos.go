package handlers

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// VideoHandler implements the video catalog endpoints.
type VideoHandler struct {
	Videos         VideoStore
	Media          MediaHost
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type videoPage struct {
	Videos []models.Video `json:"videos"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// List handles GET /api/v1/videos. Only published videos appear regardless
// of who asks.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	opts := repositories.VideoListOptions{
		Query:    strings.TrimSpace(q.Get("query")),
		OwnerID:  strings.TrimSpace(q.Get("userId")),
		Username: strings.ToLower(strings.TrimSpace(q.Get("username"))),
		SortBy:   strings.TrimSpace(q.Get("sortBy")),
		SortAsc:  strings.EqualFold(q.Get("sortType"), "asc"),
		Page:     parseIntParam(q.Get("page"), 1),
		Limit:    parseIntParam(q.Get("limit"), 10),
	}

	videos, total, err := h.Videos.List(ctx, opts)
	if err != nil {
		respondError(ctx, w, err, "failed to list videos")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondJSON(ctx, w, http.StatusOK, videoPage{
		Videos: videos,
		Total:  total,
		Page:   max(opts.Page, 1),
		Limit:  normalizedLimit(opts.Limit),
	}, "videos fetched")
}

// Publish handles POST /api/v1/videos. The multipart payload carries the
// video file, a thumbnail image, and the title and description fields. Both
// blobs are stored before the record is written; a failure at any later step
// removes whatever was already uploaded.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	ownerID := middleware.IdentityFrom(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		logger.Warn("invalid publish payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, nil, "expected multipart form data")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "title is required")
		return
	}

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "videoFile is required")
		return
	}
	defer videoFile.Close()

	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "thumbnail is required")
		return
	}
	defer thumbFile.Close()

	videoAsset, err := h.uploadBlob(r, media.KindVideo, videoFile, videoHeader)
	if err != nil {
		logger.Error("video upload failed", "error", err)
		respondJSON(ctx, w, http.StatusBadGateway, nil, "failed to store video file")
		return
	}

	thumbAsset, err := h.uploadBlob(r, media.KindImage, thumbFile, thumbHeader)
	if err != nil {
		logger.Error("thumbnail upload failed", "error", err)
		h.discardBlob(r, videoAsset, media.KindVideo)
		respondJSON(ctx, w, http.StatusBadGateway, nil, "failed to store thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Title:         title,
		Description:   description,
		VideoURL:      videoAsset.URL,
		VideoPublicID: videoAsset.PublicID,
		ThumbnailURL:  thumbAsset.URL,
		ThumbPublicID: thumbAsset.PublicID,
		IsPublished:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.discardBlob(r, videoAsset, media.KindVideo)
		h.discardBlob(r, thumbAsset, media.KindImage)
		respondError(ctx, w, err, "failed to save video")
		return
	}

	created, err := h.Videos.FindByID(ctx, video.ID)
	if err != nil {
		respondError(ctx, w, err, "failed to reload video")
		return
	}

	logger.Info("video published", "videoId", video.ID, "ownerId", ownerID)
	respondJSON(ctx, w, http.StatusCreated, created, "video published")
}

// Get handles GET /api/v1/videos/{videoId}. Unpublished videos are visible
// in full only to their owner; everyone else receives the metadata without
// the playable file reference. Views increment only for non-owner fetches.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.IdentityFrom(ctx)

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}

	if !video.IsPublished && video.OwnerID != viewerID {
		respondJSON(ctx, w, http.StatusOK, video.Metadata(), "this video is private")
		return
	}

	if video.OwnerID != viewerID {
		if err := h.Videos.IncrementViews(ctx, video.ID); err != nil {
			logging.FromContext(ctx).Error("failed to record view", "videoId", video.ID, "error", err)
		} else {
			video.Views++
		}
	}

	respondJSON(ctx, w, http.StatusOK, video, "video fetched")
}

// Update handles PATCH /api/v1/videos/{videoId}. Title, description, and the
// thumbnail may each change independently; a replaced thumbnail's old blob is
// removed best effort once the record is saved.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}
	if err := auth.AssertOwner(middleware.IdentityFrom(ctx), video.OwnerID); err != nil {
		respondError(ctx, w, err, "you do not own this video")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "expected multipart form data")
		return
	}

	changed := false
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		video.Title = title
		changed = true
	}
	if _, ok := r.MultipartForm.Value["description"]; ok {
		video.Description = strings.TrimSpace(r.FormValue("description"))
		changed = true
	}

	oldThumb := media.Asset{URL: video.ThumbnailURL, PublicID: video.ThumbPublicID}
	newThumb := media.Asset{}
	if thumbFile, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
		defer thumbFile.Close()
		newThumb, err = h.uploadBlob(r, media.KindImage, thumbFile, thumbHeader)
		if err != nil {
			logger.Error("thumbnail upload failed", "error", err)
			respondJSON(ctx, w, http.StatusBadGateway, nil, "failed to store thumbnail")
			return
		}
		video.ThumbnailURL = newThumb.URL
		video.ThumbPublicID = newThumb.PublicID
		changed = true
	}

	if !changed {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "no fields to update")
		return
	}

	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		h.discardBlob(r, newThumb, media.KindImage)
		respondError(ctx, w, err, "failed to update video")
		return
	}

	if newThumb.PublicID != "" && oldThumb.PublicID != "" {
		if err := h.Media.Delete(ctx, oldThumb.PublicID, media.KindImage); err != nil {
			logger.Error("failed to delete replaced thumbnail", "publicId", oldThumb.PublicID, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, video, "video updated")
}

// Delete handles DELETE /api/v1/videos/{videoId}. Blob removal happens
// before the record delete and a media host failure aborts the whole
// operation, so the database never loses track of a blob that still exists.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}
	if err := auth.AssertOwner(middleware.IdentityFrom(ctx), video.OwnerID); err != nil {
		respondError(ctx, w, err, "you do not own this video")
		return
	}

	blobs := []struct {
		publicID string
		kind     media.Kind
	}{
		{video.VideoPublicID, media.KindVideo},
		{video.ThumbPublicID, media.KindImage},
	}
	for _, blob := range blobs {
		if blob.publicID == "" {
			continue
		}
		if err := h.Media.Delete(ctx, blob.publicID, blob.kind); err != nil {
			logger.Error("failed to delete video blob", "publicId", blob.publicID, "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, nil, "failed to remove video media")
			return
		}
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondError(ctx, w, err, "failed to delete video")
		return
	}

	logger.Info("video deleted", "videoId", video.ID)
	respondJSON(ctx, w, http.StatusOK, nil, "video deleted")
}

// TogglePublish handles POST /api/v1/videos/{videoId}/toggle-publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.Videos.FindByID(ctx, r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}
	if err := auth.AssertOwner(middleware.IdentityFrom(ctx), video.OwnerID); err != nil {
		respondError(ctx, w, err, "you do not own this video")
		return
	}

	video.IsPublished = !video.IsPublished
	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		respondError(ctx, w, err, "failed to update publish state")
		return
	}

	message := "video unpublished"
	if video.IsPublished {
		message = "video published"
	}
	respondJSON(ctx, w, http.StatusOK, video, message)
}

func (h VideoHandler) uploadBlob(r *http.Request, kind media.Kind, file multipart.File, header *multipart.FileHeader) (media.Asset, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	return h.Media.Upload(r.Context(), kind, name, file)
}

func (h VideoHandler) discardBlob(r *http.Request, asset media.Asset, kind media.Kind) {
	if asset.PublicID == "" {
		return
	}
	if err := h.Media.Delete(r.Context(), asset.PublicID, kind); err != nil {
		logging.FromContext(r.Context()).Error("failed to clean up uploaded blob", "publicId", asset.PublicID, "error", err)
	}
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func normalizedLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > 100:
		return 100
	default:
		return limit
	}
}
