package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clipstream/backend/internal/db"
	"github.com/clipstream/backend/internal/models"
)

const userColumns = `id, username, email, full_name, password_hash,
        avatar_url, avatar_public_id, cover_url, cover_public_id,
        refresh_token, created_at, updated_at`

// PostgresUserRepository provides PostgreSQL-backed persistence for user identities.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, password_hash,
                avatar_url, avatar_public_id, cover_url, cover_public_id,
                refresh_token, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `, user.ID, user.Username, user.Email, user.FullName, user.PasswordHash,
		user.AvatarURL, user.AvatarPublicID, user.CoverURL, user.CoverPublicID,
		user.RefreshToken, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByID fetches a user by its identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByUsernameOrEmail fetches a user matching either identifier. At least
// one must be non-empty.
func (r *PostgresUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error) {
	if username == "" && email == "" {
		return models.User{}, ErrNotFound
	}
	return r.findOne(ctx, `WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)`, username, email)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, where string, args ...any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where, args...)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.PasswordHash,
		&user.AvatarURL, &user.AvatarPublicID, &user.CoverURL, &user.CoverPublicID,
		&user.RefreshToken, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

// SaveRefreshToken overwrites the user's single refresh-token slot. An empty
// token clears the slot (revocation).
func (r *PostgresUserRepository) SaveRefreshToken(ctx context.Context, userID, token string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users SET refresh_token = $2, updated_at = NOW()
        WHERE id = $1
    `, userID, token)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateAvatar replaces the user's avatar reference.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, userID, url, publicID string) error {
	return r.updateImage(ctx, `avatar_url`, `avatar_public_id`, userID, url, publicID)
}

// UpdateCover replaces the user's cover-image reference.
func (r *PostgresUserRepository) UpdateCover(ctx context.Context, userID, url, publicID string) error {
	return r.updateImage(ctx, `cover_url`, `cover_public_id`, userID, url, publicID)
}

func (r *PostgresUserRepository) updateImage(ctx context.Context, urlCol, idCol, userID, url, publicID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users SET `+urlCol+` = $2, `+idCol+` = $3, updated_at = NOW()
        WHERE id = $1
    `, userID, url, publicID)
	if err != nil {
		return fmt.Errorf("update user image: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ChannelProfile aggregates a user's public fields with the counts of its
// incoming and outgoing subscription edges. When viewerID is non-empty the
// profile reports whether that viewer subscribes to the channel.
func (r *PostgresUserRepository) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url, u.cover_url,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id),
               (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
               ($2 <> '' AND EXISTS (
                       SELECT 1 FROM subscriptions s
                       WHERE s.channel_id = u.id AND s.subscriber_id = $2
               ))
        FROM users u
        WHERE u.username = $1
    `, username, viewerID)

	var profile models.ChannelProfile
	if err := row.Scan(&profile.ID, &profile.Username, &profile.FullName, &profile.AvatarURL,
		&profile.CoverURL, &profile.SubscriberCount, &profile.SubscribedTo, &profile.IsSubscribed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, ErrNotFound
		}
		return models.ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}

	return profile, nil
}

// Delete removes a user record.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
