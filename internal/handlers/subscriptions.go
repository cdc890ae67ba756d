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

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
	NowFunc       func() time.Time
}

func (h SubscriptionHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type subscribeResult struct {
	IsSubscribed bool `json:"isSubscribed"`
}

// Toggle handles POST /api/v1/subscriptions/channel/{channelId}. Subscribing
// to your own channel is rejected.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscriberID := middleware.IdentityFrom(ctx)
	channelID := r.PathValue("channelId")

	if channelID == subscriberID {
		respondJSON(ctx, w, http.StatusBadRequest, nil, "you cannot subscribe to your own channel")
		return
	}
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondError(ctx, w, err, "channel not found")
		return
	}

	existing, err := h.Subscriptions.Find(ctx, subscriberID, channelID)
	switch {
	case err == nil:
		if err := h.Subscriptions.Delete(ctx, existing.ID); err != nil {
			respondError(ctx, w, err, "failed to unsubscribe")
			return
		}
		respondJSON(ctx, w, http.StatusOK, subscribeResult{IsSubscribed: false}, "unsubscribed")
	case errors.Is(err, repositories.ErrNotFound):
		sub := models.Subscription{
			ID:           uuid.NewString(),
			SubscriberID: subscriberID,
			ChannelID:    channelID,
			CreatedAt:    h.now(),
		}
		if err := h.Subscriptions.Create(ctx, sub); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				respondJSON(ctx, w, http.StatusOK, subscribeResult{IsSubscribed: true}, "subscribed")
				return
			}
			respondError(ctx, w, err, "failed to subscribe")
			return
		}
		logging.FromContext(ctx).Info("subscription toggled on", "channelId", channelID, "subscriberId", subscriberID)
		respondJSON(ctx, w, http.StatusOK, subscribeResult{IsSubscribed: true}, "subscribed")
	default:
		respondError(ctx, w, err, "failed to toggle subscription")
	}
}

// Subscribers handles GET /api/v1/subscriptions/channel/{channelId},
// listing the users subscribed to the channel.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID := r.PathValue("channelId")
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondError(ctx, w, err, "channel not found")
		return
	}

	subscribers, err := h.Subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		respondError(ctx, w, err, "failed to list subscribers")
		return
	}
	if subscribers == nil {
		subscribers = []models.PublicUser{}
	}

	respondJSON(ctx, w, http.StatusOK, subscribers, "subscribers fetched")
}

// Subscribed handles GET /api/v1/subscriptions/user/{subscriberId}, listing
// the channels the user subscribes to.
func (h SubscriptionHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID := r.PathValue("subscriberId")
	if _, err := h.Users.FindByID(ctx, subscriberID); err != nil {
		respondError(ctx, w, err, "user not found")
		return
	}

	channels, err := h.Subscriptions.ListChannels(ctx, subscriberID)
	if err != nil {
		respondError(ctx, w, err, "failed to list subscriptions")
		return
	}
	if channels == nil {
		channels = []models.PublicUser{}
	}

	respondJSON(ctx, w, http.StatusOK, channels, "subscribed channels fetched")
}
