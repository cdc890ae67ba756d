package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/models"
)

// CommentHandler implements the per-video comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	NowFunc  func() time.Time
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type commentPage struct {
	Comments []models.Comment `json:"comments"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// List handles GET /api/v1/comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}

	page := parseIntParam(q.Get("page"), 1)
	limit := normalizedLimit(parseIntParam(q.Get("limit"), 10))

	comments, total, err := h.Comments.ListForVideo(ctx, videoID, page, limit)
	if err != nil {
		respondError(ctx, w, err, "failed to list comments")
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	respondJSON(ctx, w, http.StatusOK, commentPage{
		Comments: comments,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, "comments fetched")
}

// Create handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.IdentityFrom(ctx)

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err, "video not found")
		return
	}

	var req commentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, err.Error())
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   ownerID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, err, "failed to add comment")
		return
	}

	created, err := h.Comments.FindByID(ctx, comment.ID, videoID)
	if err != nil {
		respondError(ctx, w, err, "failed to reload comment")
		return
	}

	logging.FromContext(ctx).Info("comment added", "commentId", comment.ID, "videoId", videoID)
	respondJSON(ctx, w, http.StatusCreated, created, "comment added")
}

// Update handles PATCH /api/v1/comments/{videoId}/{commentId}. The comment
// must belong to the addressed video and to the caller.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, err := h.Comments.FindByID(ctx, r.PathValue("commentId"), r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, err, "comment not found")
		return
	}
	if err := auth.AssertOwner(middleware.IdentityFrom(ctx), comment.OwnerID); err != nil {
		respondError(ctx, w, err, "you do not own this comment")
		return
	}

	var req commentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, err.Error())
		return
	}

	updated, err := h.Comments.UpdateContent(ctx, comment.ID, req.Content)
	if err != nil {
		respondError(ctx, w, err, "failed to update comment")
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated, "comment updated")
}

// Delete handles DELETE /api/v1/comments/{videoId}/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, err := h.Comments.FindByID(ctx, r.PathValue("commentId"), r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, err, "comment not found")
		return
	}
	if err := auth.AssertOwner(middleware.IdentityFrom(ctx), comment.OwnerID); err != nil {
		respondError(ctx, w, err, "you do not own this comment")
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondError(ctx, w, err, "failed to delete comment")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "comment deleted")
}
