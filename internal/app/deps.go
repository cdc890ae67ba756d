package app

import (
	"context"
	"time"

	"github.com/clipstream/backend/internal/auth"
	"github.com/clipstream/backend/internal/config"
	"github.com/clipstream/backend/internal/db"
	"github.com/clipstream/backend/internal/handlers"
	"github.com/clipstream/backend/internal/media"
	"github.com/clipstream/backend/internal/middleware"
	"github.com/clipstream/backend/internal/repositories"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup releases anything that outlives a request.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, func(context.Context) error, error) {
	host, err := media.NewS3Host(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	users := repositories.NewPostgresUserRepository(pool)
	signer := auth.NewTokenSigner(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	deps := handlers.Dependencies{
		Users:          users,
		Sessions:       auth.NewManager(users, signer),
		Videos:         repositories.NewPostgresVideoRepository(pool),
		Comments:       repositories.NewPostgresCommentRepository(pool),
		Likes:          repositories.NewPostgresLikeRepository(pool),
		Playlists:      repositories.NewPostgresPlaylistRepository(pool),
		Subscriptions:  repositories.NewPostgresSubscriptionRepository(pool),
		Tweets:         repositories.NewPostgresTweetRepository(pool),
		Media:          host,
		Verifier:       signer,
		LoginLimiter:   middleware.NewKeyRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow, cfg.LoginRateLimit, 10*time.Minute),
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	cleanup := func(context.Context) error { return nil }
	return deps, cleanup, nil
}
