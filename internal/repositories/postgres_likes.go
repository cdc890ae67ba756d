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

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Find fetches the like a user holds on a specific target, if any.
func (r *PostgresLikeRepository) Find(ctx context.Context, likedBy string, target models.LikeTarget, targetID string) (models.Like, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Like{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, liked_by, target, target_id, created_at
        FROM likes
        WHERE liked_by = $1 AND target = $2 AND target_id = $3
    `, likedBy, target, targetID)

	var like models.Like
	if err := row.Scan(&like.ID, &like.LikedBy, &like.Target, &like.TargetID, &like.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Like{}, ErrNotFound
		}
		return models.Like{}, fmt.Errorf("select like: %w", err)
	}

	return like, nil
}

// Create persists a new like. A duplicate (likedBy, target, targetID) triple
// reports ErrConflict.
func (r *PostgresLikeRepository) Create(ctx context.Context, like models.Like) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, liked_by, target, target_id, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, like.ID, like.LikedBy, like.Target, like.TargetID, like.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert like: %w", err)
	}

	return nil
}

// Delete removes a like by id.
func (r *PostgresLikeRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM likes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListLikedVideos returns the videos a user has liked, owner joined, newest
// like first, with an optional title filter.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, likedBy, query string, page, limit int) ([]models.Video, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where := `
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.target = 'video'
          AND ($2 = '' OR v.title ILIKE '%' || $2 || '%')`

	var total int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*)`+where, likedBy, query).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count liked videos: %w", err)
	}

	page, limit = normalizePage(page, limit)

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.video_public_id,
               v.thumb_url, v.thumb_public_id, v.views, v.is_published, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url`+where+`
        ORDER BY l.created_at DESC
        LIMIT $3 OFFSET $4
    `, likedBy, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan liked video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate liked videos: %w", err)
	}

	return videos, total, nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
