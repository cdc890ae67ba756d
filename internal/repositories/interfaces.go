package repositories

import (
	"context"

	"github.com/clipstream/backend/internal/models"
)

// UserRepository defines the data access contract for user identities.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	SaveRefreshToken(ctx context.Context, userID, token string) error
	UpdateAvatar(ctx context.Context, userID, url, publicID string) error
	UpdateCover(ctx context.Context, userID, url, publicID string) error
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	Delete(ctx context.Context, id string) error
}

// VideoListOptions filters and paginates the public video listing.
type VideoListOptions struct {
	Query    string
	OwnerID  string
	Username string
	SortBy   string
	SortAsc  bool
	Page     int
	Limit    int
}

// VideoRepository defines the data access contract for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, opts VideoListOptions) ([]models.Video, int64, error)
	Update(ctx context.Context, video models.Video) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository defines the data access contract for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, commentID, videoID string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, int64, error)
	UpdateContent(ctx context.Context, commentID, content string) (models.Comment, error)
	Delete(ctx context.Context, commentID string) error
}

// LikeRepository defines the data access contract for likes across target kinds.
type LikeRepository interface {
	Find(ctx context.Context, likedBy string, target models.LikeTarget, targetID string) (models.Like, error)
	Create(ctx context.Context, like models.Like) error
	Delete(ctx context.Context, id string) error
	ListLikedVideos(ctx context.Context, likedBy, query string, page, limit int) ([]models.Video, int64, error)
}

// PlaylistRepository defines the data access contract for playlists and their
// video membership.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListForUser(ctx context.Context, userID string) ([]models.Playlist, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// SubscriptionRepository defines the data access contract for channel subscriptions.
type SubscriptionRepository interface {
	Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
	Create(ctx context.Context, sub models.Subscription) error
	Delete(ctx context.Context, id string) error
	ListSubscribers(ctx context.Context, channelID string) ([]models.PublicUser, error)
	ListChannels(ctx context.Context, subscriberID string) ([]models.PublicUser, error)
}

// TweetRepository defines the data access contract for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForUser(ctx context.Context, userID string) ([]models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}
