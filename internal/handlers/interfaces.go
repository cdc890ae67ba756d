package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// UserStore describes the persistence operations user handlers rely on.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, userID, url, publicID string) error
	UpdateCover(ctx context.Context, userID, url, publicID string) error
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	Delete(ctx context.Context, id string) error
}

// SessionManager issues, rotates, and revokes credential-backed sessions.
type SessionManager interface {
	VerifyCredentials(ctx context.Context, username, email, password string) (models.User, error)
	Issue(ctx context.Context, userID string) (models.TokenPair, error)
	Rotate(ctx context.Context, refreshToken string) (models.TokenPair, error)
	Revoke(ctx context.Context, userID string) error
}

type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, opts repositories.VideoListOptions) ([]models.Video, int64, error)
	Update(ctx context.Context, video models.Video) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, commentID, videoID string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, int64, error)
	UpdateContent(ctx context.Context, commentID, content string) (models.Comment, error)
	Delete(ctx context.Context, commentID string) error
}

type LikeStore interface {
	Find(ctx context.Context, likedBy string, target models.LikeTarget, targetID string) (models.Like, error)
	Create(ctx context.Context, like models.Like) error
	Delete(ctx context.Context, id string) error
	ListLikedVideos(ctx context.Context, likedBy, query string, page, limit int) ([]models.Video, int64, error)
}

type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListForUser(ctx context.Context, userID string) ([]models.Playlist, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

type SubscriptionStore interface {
	Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
	Create(ctx context.Context, sub models.Subscription) error
	Delete(ctx context.Context, id string) error
	ListSubscribers(ctx context.Context, channelID string) ([]models.PublicUser, error)
	ListChannels(ctx context.Context, subscriberID string) ([]models.PublicUser, error)
}

type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForUser(ctx context.Context, userID string) ([]models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// MediaHost stores and removes uploaded blobs.
type MediaHost interface {
	Upload(ctx context.Context, kind media.Kind, name string, r io.Reader) (media.Asset, error)
	Delete(ctx context.Context, publicID string, kind media.Kind) error
}

// RateLimiter gates login attempts per client key.
type RateLimiter interface {
	Allow(key string) bool
}

// Dependencies carries every collaborator the HTTP layer needs. The app
// wires concrete implementations; tests substitute fakes.
type Dependencies struct {
	Users          UserStore
	Sessions       SessionManager
	Videos         VideoStore
	Comments       CommentStore
	Likes          LikeStore
	Playlists      PlaylistStore
	Subscriptions  SubscriptionStore
	Tweets         TweetStore
	Media          MediaHost
	Verifier       middleware.TokenVerifier
	LoginLimiter   RateLimiter
	MaxUploadBytes int64
}

func requireAuth(deps Dependencies, h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(deps.Verifier)(h)
}

func optionalAuth(deps Dependencies, h http.HandlerFunc) http.Handler {
	return middleware.OptionalAuth(deps.Verifier)(h)
}
