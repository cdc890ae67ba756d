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

// TweetHandler implements the short text post endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	Users   UserStore
	NowFunc func() time.Time
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type tweetRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.IdentityFrom(ctx)

	var req tweetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, err.Error())
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, err, "failed to create tweet")
		return
	}

	created, err := h.Tweets.FindByID(ctx, tweet.ID)
	if err != nil {
		respondError(ctx, w, err, "failed to reload tweet")
		return
	}

	logging.FromContext(ctx).Info("tweet created", "tweetId", tweet.ID, "ownerId", ownerID)
	respondJSON(ctx, w, http.StatusCreated, created, "tweet created")
}

// ListForUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userId")
	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		respondError(ctx, w, err, "user not found")
		return
	}

	tweets, err := h.Tweets.ListForUser(ctx, userID)
	if err != nil {
		respondError(ctx, w, err, "failed to list tweets")
		return
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}

	respondJSON(ctx, w, http.StatusOK, tweets, "tweets fetched")
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("tweetId"))
	if err != nil {
		respondError(ctx, w, err, "tweet not found")
		return
	}
	if err := auth.AssertOwner(middleware.IdentityFrom(ctx), tweet.OwnerID); err != nil {
		respondError(ctx, w, err, "you do not own this tweet")
		return
	}

	var req tweetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, nil, err.Error())
		return
	}

	updated, err := h.Tweets.UpdateContent(ctx, tweet.ID, req.Content)
	if err != nil {
		respondError(ctx, w, err, "failed to update tweet")
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated, "tweet updated")
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("tweetId"))
	if err != nil {
		respondError(ctx, w, err, "tweet not found")
		return
	}
	if err := auth.AssertOwner(middleware.IdentityFrom(ctx), tweet.OwnerID); err != nil {
		respondError(ctx, w, err, "you do not own this tweet")
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondError(ctx, w, err, "failed to delete tweet")
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "tweet deleted")
}
