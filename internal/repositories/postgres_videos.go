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

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// videoSortColumns whitelists the columns the public listing may sort by.
var videoSortColumns = map[string]string{
	"createdAt": "v.created_at",
	"title":     "v.title",
	"views":     "v.views",
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_url, video_public_id,
                thumb_url, thumb_public_id, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.VideoURL, video.VideoPublicID,
		video.ThumbnailURL, video.ThumbPublicID, video.Views, video.IsPublished, video.CreatedAt, video.UpdatedAt)
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
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

const videoSelect = `
        SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.video_public_id,
               v.thumb_url, v.thumb_public_id, v.views, v.is_published, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM videos v
        JOIN users u ON u.id = v.owner_id`

func scanVideo(row pgx.Row) (models.Video, error) {
	var v models.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.VideoPublicID,
		&v.ThumbnailURL, &v.ThumbPublicID, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
		&v.Owner.ID, &v.Owner.Username, &v.Owner.FullName, &v.Owner.AvatarURL)
	return v, err
}

// FindByID fetches a video with its owner's public fields joined.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, videoSelect+` WHERE v.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// List returns published videos matching the options along with the total
// match count for pagination.
func (r *PostgresVideoRepository) List(ctx context.Context, opts VideoListOptions) ([]models.Video, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where := ` WHERE v.is_published
          AND ($1 = '' OR v.title ILIKE '%' || $1 || '%')
          AND ($2 = '' OR v.owner_id = $2)
          AND ($3 = '' OR u.username = $3)`

	sortCol, ok := videoSortColumns[opts.SortBy]
	if !ok {
		sortCol = "v.created_at"
	}
	direction := "DESC"
	if opts.SortAsc {
		direction = "ASC"
	}

	page, limit := normalizePage(opts.Page, opts.Limit)

	var total int64
	countRow := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM videos v JOIN users u ON u.id = v.owner_id`+where,
		opts.Query, opts.OwnerID, opts.Username)
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	rows, err := conn.Query(ctx, videoSelect+where+
		` ORDER BY `+sortCol+` `+direction+` LIMIT $4 OFFSET $5`,
		opts.Query, opts.OwnerID, opts.Username, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, total, nil
}

// Update rewrites a video's mutable fields.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumb_url = $4, thumb_public_id = $5,
            is_published = $6, updated_at = NOW()
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.ThumbnailURL, video.ThumbPublicID, video.IsPublished)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// IncrementViews bumps the view counter by one.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	return nil
}

// Delete removes a video record.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
