package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

type fakeUserStore struct {
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (models.User, error) {
	for _, user := range s.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) SaveRefreshToken(_ context.Context, userID, token string) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = token
	s.users[userID] = user
	return nil
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, userID, url, publicID string) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.AvatarURL = url
	user.AvatarPublicID = publicID
	s.users[userID] = user
	return nil
}

func (s *fakeUserStore) UpdateCover(_ context.Context, userID, url, publicID string) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.CoverURL = url
	user.CoverPublicID = publicID
	s.users[userID] = user
	return nil
}

func (s *fakeUserStore) ChannelProfile(_ context.Context, username, viewerID string) (models.ChannelProfile, error) {
	for _, user := range s.users {
		if user.Username == username {
			return models.ChannelProfile{PublicUser: user.Public(), CoverURL: user.CoverURL}, nil
		}
	}
	return models.ChannelProfile{}, repositories.ErrNotFound
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type fakeVideoStore struct {
	videos map[string]models.Video
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[string]models.Video)}
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) List(_ context.Context, opts repositories.VideoListOptions) ([]models.Video, int64, error) {
	var out []models.Video
	for _, video := range s.videos {
		if !video.IsPublished {
			continue
		}
		if opts.Query != "" && !strings.Contains(strings.ToLower(video.Title), strings.ToLower(opts.Query)) {
			continue
		}
		out = append(out, video)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *fakeVideoStore) Update(_ context.Context, video models.Video) error {
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, id string) error {
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

type fakeCommentStore struct {
	comments map[string]models.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]models.Comment)}
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, commentID, videoID string) (models.Comment, error) {
	comment, ok := s.comments[commentID]
	if !ok || comment.VideoID != videoID {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *fakeCommentStore) ListForVideo(_ context.Context, videoID string, page, limit int) ([]models.Comment, int64, error) {
	var out []models.Comment
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			out = append(out, comment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *fakeCommentStore) UpdateContent(_ context.Context, commentID, content string) (models.Comment, error) {
	comment, ok := s.comments[commentID]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[commentID] = comment
	return comment, nil
}

func (s *fakeCommentStore) Delete(_ context.Context, commentID string) error {
	if _, ok := s.comments[commentID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, commentID)
	return nil
}

type fakeLikeStore struct {
	likes  map[string]models.Like
	videos *fakeVideoStore
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[string]models.Like)}
}

func (s *fakeLikeStore) Find(_ context.Context, likedBy string, target models.LikeTarget, targetID string) (models.Like, error) {
	for _, like := range s.likes {
		if like.LikedBy == likedBy && like.Target == target && like.TargetID == targetID {
			return like, nil
		}
	}
	return models.Like{}, repositories.ErrNotFound
}

func (s *fakeLikeStore) Create(_ context.Context, like models.Like) error {
	for _, existing := range s.likes {
		if existing.LikedBy == like.LikedBy && existing.Target == like.Target && existing.TargetID == like.TargetID {
			return repositories.ErrConflict
		}
	}
	s.likes[like.ID] = like
	return nil
}

func (s *fakeLikeStore) Delete(_ context.Context, id string) error {
	if _, ok := s.likes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.likes, id)
	return nil
}

func (s *fakeLikeStore) ListLikedVideos(_ context.Context, likedBy, query string, page, limit int) ([]models.Video, int64, error) {
	var out []models.Video
	for _, like := range s.likes {
		if like.LikedBy != likedBy || like.Target != models.LikeTargetVideo {
			continue
		}
		if s.videos != nil {
			if video, ok := s.videos.videos[like.TargetID]; ok {
				out = append(out, video)
			}
		}
	}
	return out, int64(len(out)), nil
}

type fakePlaylistStore struct {
	playlists map[string]models.Playlist
	members   map[string][]string
}

func newFakePlaylistStore() *fakePlaylistStore {
	return &fakePlaylistStore{
		playlists: make(map[string]models.Playlist),
		members:   make(map[string][]string),
	}
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *fakePlaylistStore) ListForUser(_ context.Context, userID string) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, playlist := range s.playlists {
		if playlist.OwnerID == userID {
			out = append(out, playlist)
		}
	}
	return out, nil
}

func (s *fakePlaylistStore) Update(_ context.Context, id, name, description string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, id string) error {
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	delete(s.members, id)
	return nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	for _, member := range s.members[playlistID] {
		if member == videoID {
			return repositories.ErrConflict
		}
	}
	s.members[playlistID] = append(s.members[playlistID], videoID)
	return nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	members := s.members[playlistID]
	for i, member := range members {
		if member == videoID {
			s.members[playlistID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeSubscriptionStore struct {
	subs map[string]models.Subscription
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string]models.Subscription)}
}

func (s *fakeSubscriptionStore) Find(_ context.Context, subscriberID, channelID string) (models.Subscription, error) {
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID && sub.ChannelID == channelID {
			return sub, nil
		}
	}
	return models.Subscription{}, repositories.ErrNotFound
}

func (s *fakeSubscriptionStore) Create(_ context.Context, sub models.Subscription) error {
	s.subs[sub.ID] = sub
	return nil
}

func (s *fakeSubscriptionStore) Delete(_ context.Context, id string) error {
	if _, ok := s.subs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.subs, id)
	return nil
}

func (s *fakeSubscriptionStore) ListSubscribers(_ context.Context, channelID string) ([]models.PublicUser, error) {
	var out []models.PublicUser
	for _, sub := range s.subs {
		if sub.ChannelID == channelID {
			out = append(out, models.PublicUser{ID: sub.SubscriberID})
		}
	}
	return out, nil
}

func (s *fakeSubscriptionStore) ListChannels(_ context.Context, subscriberID string) ([]models.PublicUser, error) {
	var out []models.PublicUser
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID {
			out = append(out, models.PublicUser{ID: sub.ChannelID})
		}
	}
	return out, nil
}

type fakeTweetStore struct {
	tweets map[string]models.Tweet
}

func newFakeTweetStore() *fakeTweetStore {
	return &fakeTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *fakeTweetStore) ListForUser(_ context.Context, userID string) ([]models.Tweet, error) {
	var out []models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == userID {
			out = append(out, tweet)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeTweetStore) UpdateContent(_ context.Context, id, content string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return tweet, nil
}

func (s *fakeTweetStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

// fakeMediaHost records uploads and deletes so tests can assert on
// compensating cleanup. Setting failDelete or failUpload simulates an
// unavailable host.
type fakeMediaHost struct {
	uploads    []media.Asset
	deleted    []string
	failUpload bool
	failDelete bool
}

func (m *fakeMediaHost) Upload(_ context.Context, kind media.Kind, name string, r io.Reader) (media.Asset, error) {
	if m.failUpload {
		return media.Asset{}, errors.New("host rejected upload")
	}
	_, _ = io.Copy(io.Discard, r)
	asset := media.Asset{
		URL:      "https://cdn.example.com/" + string(kind) + "/" + name,
		PublicID: string(kind) + "/" + name,
	}
	m.uploads = append(m.uploads, asset)
	return asset, nil
}

func (m *fakeMediaHost) Delete(_ context.Context, publicID string, _ media.Kind) error {
	if m.failDelete {
		return errors.New("host rejected delete")
	}
	m.deleted = append(m.deleted, publicID)
	return nil
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(string) bool { return true }

type denyLimiter struct{}

func (denyLimiter) Allow(string) bool { return false }

// asUser primes the request context with an authenticated identity, the way
// the auth middleware would after verifying a token.
func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), userID))
}
