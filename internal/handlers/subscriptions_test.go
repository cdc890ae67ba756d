package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func toggleSubscription(t *testing.T, handler SubscriptionHandler, userID, channelID string) (int, bool) {
	t.Helper()

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/channel/"+channelID, nil), userID)
	req.SetPathValue("channelId", channelID)
	rec := httptest.NewRecorder()

	handler.Toggle(rec, req)

	var resp struct {
		Data subscribeResult `json:"data"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	return rec.Code, resp.Data.IsSubscribed
}

func TestSubscriptionHandlerToggleTwice(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "channel-1", "bob", "bob@example.com", "password123")
	subs := newFakeSubscriptionStore()
	handler := SubscriptionHandler{Subscriptions: subs, Users: users}

	code, isSubscribed := toggleSubscription(t, handler, "user-1", "channel-1")
	if code != http.StatusOK || !isSubscribed {
		t.Fatalf("first toggle: code=%d isSubscribed=%v", code, isSubscribed)
	}

	code, isSubscribed = toggleSubscription(t, handler, "user-1", "channel-1")
	if code != http.StatusOK || isSubscribed {
		t.Fatalf("second toggle: code=%d isSubscribed=%v", code, isSubscribed)
	}
	if len(subs.subs) != 0 {
		t.Fatalf("expected subscription removed, got %d", len(subs.subs))
	}
}

func TestSubscriptionHandlerRejectsSelfSubscribe(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "user-1", "alice", "alice@example.com", "password123")
	handler := SubscriptionHandler{Subscriptions: newFakeSubscriptionStore(), Users: users}

	code, _ := toggleSubscription(t, handler, "user-1", "user-1")
	if code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, code)
	}
}

func TestSubscriptionHandlerToggleUnknownChannel(t *testing.T) {
	handler := SubscriptionHandler{Subscriptions: newFakeSubscriptionStore(), Users: newFakeUserStore()}

	code, _ := toggleSubscription(t, handler, "user-1", "ghost-channel")
	if code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, code)
	}
}

func TestSubscriptionHandlerListings(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "channel-1", "bob", "bob@example.com", "password123")
	seedUser(t, users, "user-1", "alice", "alice@example.com", "password123")
	subs := newFakeSubscriptionStore()
	handler := SubscriptionHandler{Subscriptions: subs, Users: users}

	if code, _ := toggleSubscription(t, handler, "user-1", "channel-1"); code != http.StatusOK {
		t.Fatalf("subscribe failed with %d", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/channel/channel-1", nil)
	req.SetPathValue("channelId", "channel-1")
	rec := httptest.NewRecorder()
	handler.Subscribers(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("subscribers: expected %d got %d", http.StatusOK, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/user/user-1", nil)
	req.SetPathValue("subscriberId", "user-1")
	rec = httptest.NewRecorder()
	handler.Subscribed(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("subscribed channels: expected %d got %d", http.StatusOK, rec.Code)
	}
}
