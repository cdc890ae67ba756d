package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// LikeHandler implements toggle-like endpoints for videos, comments, and
// tweets, plus the caller's liked-video listing.
type LikeHandler struct {
	Likes   LikeStore
	NowFunc func() time.Time
}

func (h LikeHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type toggleResult struct {
	IsLiked bool `json:"isLiked"`
}

// ToggleVideo handles POST /api/v1/likes/toggle/video/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetVideo, r.PathValue("videoId"))
}

// ToggleComment handles POST /api/v1/likes/toggle/comment/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetComment, r.PathValue("commentId"))
}

// ToggleTweet handles POST /api/v1/likes/toggle/tweet/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetTweet, r.PathValue("tweetId"))
}

// toggle flips the caller's like on the target: present becomes absent and
// vice versa. The response always reports the resulting state.
func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget, targetID string) {
	ctx := r.Context()
	likedBy := middleware.IdentityFrom(ctx)

	if targetID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "target id is required")
		return
	}

	existing, err := h.Likes.Find(ctx, likedBy, target, targetID)
	switch {
	case err == nil:
		if err := h.Likes.Delete(ctx, existing.ID); err != nil {
			respondError(ctx, w, err, "failed to remove like")
			return
		}
		respondJSON(ctx, w, http.StatusOK, toggleResult{IsLiked: false}, "like removed")
	case errors.Is(err, repositories.ErrNotFound):
		like := models.Like{
			ID:        uuid.NewString(),
			LikedBy:   likedBy,
			Target:    target,
			TargetID:  targetID,
			CreatedAt: h.now(),
		}
		if err := h.Likes.Create(ctx, like); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				// A concurrent toggle won the race; the like exists.
				respondJSON(ctx, w, http.StatusOK, toggleResult{IsLiked: true}, "like added")
				return
			}
			respondError(ctx, w, err, "failed to add like")
			return
		}
		logging.FromContext(ctx).Info("like toggled on", "target", target, "targetId", targetID)
		respondJSON(ctx, w, http.StatusOK, toggleResult{IsLiked: true}, "like added")
	default:
		respondError(ctx, w, err, "failed to toggle like")
	}
}

// LikedVideos handles GET /api/v1/likes/videos, listing the videos the
// caller has liked, newest like first.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	page := parseIntParam(q.Get("page"), 1)
	limit := normalizedLimit(parseIntParam(q.Get("limit"), 10))

	videos, total, err := h.Likes.ListLikedVideos(ctx, middleware.IdentityFrom(ctx), q.Get("query"), page, limit)
	if err != nil {
		respondError(ctx, w, err, "failed to list liked videos")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondJSON(ctx, w, http.StatusOK, videoPage{
		Videos: videos,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}, "liked videos fetched")
}
