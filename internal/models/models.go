package models

import "time"

// User represents a registered account on the clipstream platform.
// PasswordHash and RefreshToken never leave the process; handlers serialize
// users through Public().
type User struct {
	ID             string
	Username       string
	Email          string
	FullName       string
	PasswordHash   string
	AvatarURL      string
	AvatarPublicID string
	CoverURL       string
	CoverPublicID  string
	RefreshToken   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PublicUser is the projection of a user embedded in responses and joins.
type PublicUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// Public strips credential material from a user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
	}
}

// ChannelProfile is the aggregated public view of a user's channel.
type ChannelProfile struct {
	PublicUser
	CoverURL        string `json:"coverImage"`
	SubscriberCount int64  `json:"subscriberCount"`
	SubscribedTo    int64  `json:"channelsSubscribedTo"`
	IsSubscribed    bool   `json:"isSubscribed"`
}

// Video is a published or draft upload owned by a single user.
type Video struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"-"`
	Owner         PublicUser `json:"owner"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	VideoURL      string     `json:"videoFile,omitempty"`
	VideoPublicID string     `json:"-"`
	ThumbnailURL  string     `json:"thumbnail"`
	ThumbPublicID string     `json:"-"`
	Views         int64      `json:"views"`
	IsPublished   bool       `json:"isPublished"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Metadata returns the reduced projection served to non-owners of an
// unpublished video. The playable media reference is withheld.
func (v Video) Metadata() Video {
	v.VideoURL = ""
	return v
}

// Comment is a user remark attached to a video.
type Comment struct {
	ID        string     `json:"id"`
	VideoID   string     `json:"videoId"`
	OwnerID   string     `json:"-"`
	Owner     PublicUser `json:"owner"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// LikeTarget enumerates the entity kinds a like may attach to.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Like marks a single user's approval of exactly one target entity.
type Like struct {
	ID        string     `json:"id"`
	LikedBy   string     `json:"likedBy"`
	Target    LikeTarget `json:"target"`
	TargetID  string     `json:"targetId"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Playlist is a named collection of videos owned by a single user.
type Playlist struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"-"`
	Owner       PublicUser `json:"owner"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Videos      []Video    `json:"videos,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Subscription is a directed edge from a subscriber to a channel owner.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Tweet is a short text post owned by a single user.
type Tweet struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"-"`
	Owner     PublicUser `json:"owner"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TokenPair groups the bearer credentials issued to authenticated users.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
