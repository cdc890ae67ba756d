package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Patterns use
// the method-and-wildcard syntax so the mux enforces verbs and extracts path
// parameters.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{
		Users:          deps.Users,
		Sessions:       deps.Sessions,
		Media:          deps.Media,
		LoginLimiter:   deps.LoginLimiter,
		MaxUploadBytes: deps.MaxUploadBytes,
	}
	videos := VideoHandler{Videos: deps.Videos, Media: deps.Media, MaxUploadBytes: deps.MaxUploadBytes}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	likes := LikeHandler{Likes: deps.Likes}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users}
	tweets := TweetHandler{Tweets: deps.Tweets, Users: deps.Users}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.Refresh)
	mux.Handle("POST /api/v1/users/logout", requireAuth(deps, users.Logout))
	mux.Handle("GET /api/v1/users/current", requireAuth(deps, users.Current))
	mux.Handle("PATCH /api/v1/users/avatar", requireAuth(deps, users.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/cover", requireAuth(deps, users.UpdateCover))
	mux.Handle("GET /api/v1/users/channel/{username}", optionalAuth(deps, users.Channel))
	mux.Handle("DELETE /api/v1/users/account", requireAuth(deps, users.DeleteAccount))

	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.Handle("POST /api/v1/videos", requireAuth(deps, videos.Publish))
	mux.Handle("GET /api/v1/videos/{videoId}", optionalAuth(deps, videos.Get))
	mux.Handle("PATCH /api/v1/videos/{videoId}", requireAuth(deps, videos.Update))
	mux.Handle("DELETE /api/v1/videos/{videoId}", requireAuth(deps, videos.Delete))
	mux.Handle("POST /api/v1/videos/{videoId}/toggle-publish", requireAuth(deps, videos.TogglePublish))

	mux.HandleFunc("GET /api/v1/comments/{videoId}", comments.List)
	mux.Handle("POST /api/v1/comments/{videoId}", requireAuth(deps, comments.Create))
	mux.Handle("PATCH /api/v1/comments/{videoId}/{commentId}", requireAuth(deps, comments.Update))
	mux.Handle("DELETE /api/v1/comments/{videoId}/{commentId}", requireAuth(deps, comments.Delete))

	mux.Handle("POST /api/v1/likes/toggle/video/{videoId}", requireAuth(deps, likes.ToggleVideo))
	mux.Handle("POST /api/v1/likes/toggle/comment/{commentId}", requireAuth(deps, likes.ToggleComment))
	mux.Handle("POST /api/v1/likes/toggle/tweet/{tweetId}", requireAuth(deps, likes.ToggleTweet))
	mux.Handle("GET /api/v1/likes/videos", requireAuth(deps, likes.LikedVideos))

	mux.Handle("POST /api/v1/playlists", requireAuth(deps, playlists.Create))
	mux.HandleFunc("GET /api/v1/playlists/{playlistId}", playlists.Get)
	mux.HandleFunc("GET /api/v1/playlists/user/{userId}", playlists.ListForUser)
	mux.Handle("PATCH /api/v1/playlists/{playlistId}", requireAuth(deps, playlists.Update))
	mux.Handle("DELETE /api/v1/playlists/{playlistId}", requireAuth(deps, playlists.Delete))
	mux.Handle("POST /api/v1/playlists/{playlistId}/videos/{videoId}", requireAuth(deps, playlists.AddVideo))
	mux.Handle("DELETE /api/v1/playlists/{playlistId}/videos/{videoId}", requireAuth(deps, playlists.RemoveVideo))

	mux.Handle("POST /api/v1/subscriptions/channel/{channelId}", requireAuth(deps, subscriptions.Toggle))
	mux.HandleFunc("GET /api/v1/subscriptions/channel/{channelId}", subscriptions.Subscribers)
	mux.HandleFunc("GET /api/v1/subscriptions/user/{subscriberId}", subscriptions.Subscribed)

	mux.Handle("POST /api/v1/tweets", requireAuth(deps, tweets.Create))
	mux.HandleFunc("GET /api/v1/tweets/user/{userId}", tweets.ListForUser)
	mux.Handle("PATCH /api/v1/tweets/{tweetId}", requireAuth(deps, tweets.Update))
	mux.Handle("DELETE /api/v1/tweets/{tweetId}", requireAuth(deps, tweets.Delete))
}
